// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package config

import (
	"time"
)

// EnvSpec is the basic environment configuration setup needed for the app to start
type EnvSpec struct {
	OtelGRPCEndpoint string `envconfig:"otel_grpc_endpoint"`
	OtelHTTPEndpoint string `envconfig:"otel_http_endpoint"`
	TracingEnabled   bool   `envconfig:"tracing_enabled" default:"true"`

	APIEndpoint string        `envconfig:"api_endpoint" required:"true"`
	APITimeout  time.Duration `envconfig:"api_timeout" default:"30s"`

	// SnapshotPath points at the bootstrap snapshot (licence terms, regions,
	// teams, user) that must be readable before the store starts.
	SnapshotPath string `envconfig:"snapshot_path" required:"true"`

	LogLevel string `envconfig:"log_level" default:"error"`
	Debug    bool   `envconfig:"debug" default:"false"`

	Port int `envconfig:"port" default:"8080"`
}
