// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/canonical/console-sync/pkg/store"
)

// loadSnapshot reads the bootstrap snapshot from disk. A missing or malformed
// snapshot is a startup error, the store cannot run without its baseline
// state.
func loadSnapshot(path string) (store.Snapshot, error) {
	var snap store.Snapshot

	data, err := os.ReadFile(path)
	if err != nil {
		return snap, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	return snap, nil
}
