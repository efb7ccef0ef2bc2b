// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package format

import (
	"testing"
	"time"
)

func TestBytes(t *testing.T) {
	testCases := []struct {
		name     string
		n        float64
		decimals int
		expected string
	}{
		{"zero", 0, 2, "0"},
		{"kilobytes", 1500, 2, "1.5 KB"},
		{"bytes", 999, 2, "999 Bytes"},
		{"megabytes", 1500000, 2, "1.5 MB"},
		{"gigabytes rounded", 123456789000, 1, "123.5 GB"},
		{"negative decimals clamp to zero", 1500, -3, "2 KB"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Bytes(tc.n, tc.decimals); got != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestMinutesSince(t *testing.T) {
	if got := MinutesSince(time.Now().Add(-10 * time.Minute)); got != 10 {
		t.Errorf("expected 10 minutes, got %d", got)
	}
}
