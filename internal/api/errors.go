// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package api

import (
	"errors"
	"fmt"
)

// Error is a failed upstream API call. Detail carries the machine-readable
// "detail" field some error responses include; it is empty otherwise.
type Error struct {
	StatusCode int
	Detail     string
	Body       string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Body)
}

// Detail returns the structured detail of an upstream error when present,
// falling back to the raw error message.
func Detail(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return err.Error()
}
