// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package format

import (
	"math"
	"strconv"
	"strings"
	"time"
)

var sizes = []string{"Bytes", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

// Bytes renders a storage size human friendly, using base-1000 units.
func Bytes(n float64, decimals int) string {
	if n == 0 {
		return "0"
	}
	if decimals < 0 {
		decimals = 0
	}

	const unit = 1000
	i := int(math.Floor(math.Log(n) / math.Log(unit)))
	if i >= len(sizes) {
		i = len(sizes) - 1
	}

	v := strconv.FormatFloat(n/math.Pow(unit, float64(i)), 'f', decimals, 64)
	if strings.Contains(v, ".") {
		v = strings.TrimRight(strings.TrimRight(v, "0"), ".")
	}

	return v + " " + sizes[i]
}

// MinutesSince returns the whole minutes elapsed since t.
func MinutesSince(t time.Time) int {
	return int(math.Round(time.Since(t).Minutes()))
}
