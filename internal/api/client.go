// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/canonical/console-sync/internal/logging"
	"github.com/canonical/console-sync/internal/monitoring"
	"github.com/canonical/console-sync/internal/tracing"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const dependencyName = "console-api"

type Client struct {
	endpoint string
	client   *http.Client

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

var _ TransportInterface = (*Client)(nil)

func NewClient(endpoint string, timeout time.Duration, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Client {
	if !strings.HasPrefix(endpoint, "http") {
		endpoint = "http://" + endpoint
	}
	endpoint = strings.TrimSuffix(endpoint, "/")

	return &Client{
		endpoint: endpoint,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}

func (c *Client) Get(ctx context.Context, route string, params url.Values) (json.RawMessage, error) {
	ctx, span := c.tracer.Start(ctx, "api.Client.Get")
	defer span.End()

	target := c.endpoint + route
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	return c.do(ctx, http.MethodGet, target, nil)
}

func (c *Client) Post(ctx context.Context, route string, body interface{}) (json.RawMessage, error) {
	ctx, span := c.tracer.Start(ctx, "api.Client.Post")
	defer span.End()

	return c.do(ctx, http.MethodPost, c.endpoint+route, body)
}

func (c *Client) Patch(ctx context.Context, route string, body interface{}) (json.RawMessage, error) {
	ctx, span := c.tracer.Start(ctx, "api.Client.Patch")
	defer span.End()

	return c.do(ctx, http.MethodPatch, c.endpoint+route, body)
}

func (c *Client) do(ctx context.Context, method, target string, body interface{}) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.setAvailability(0)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	c.setAvailability(1)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, newError(resp.StatusCode, data)
	}

	return data, nil
}

func (c *Client) setAvailability(value float64) {
	tags := map[string]string{"dependency": dependencyName}
	if err := c.monitor.SetDependencyAvailability(tags, value); err != nil {
		c.logger.Errorf("failed to set dependency availability: %v", err)
	}
}

// newError extracts the structured detail field from an error body when the
// server provided one.
func newError(statusCode int, body []byte) *Error {
	var payload struct {
		Detail string `json:"detail"`
	}
	_ = json.Unmarshal(body, &payload)

	return &Error{
		StatusCode: statusCode,
		Detail:     payload.Detail,
		Body:       string(body),
	}
}
