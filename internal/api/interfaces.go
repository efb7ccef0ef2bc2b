// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package api

import (
	"context"
	"encoding/json"
	"net/url"
)

// TransportInterface is the upstream console API seen by the store: routes in,
// decoded JSON out. URL construction and auth are the client's business.
type TransportInterface interface {
	Get(ctx context.Context, route string, params url.Values) (json.RawMessage, error)
	Post(ctx context.Context, route string, body interface{}) (json.RawMessage, error)
	Patch(ctx context.Context, route string, body interface{}) (json.RawMessage, error)
}
