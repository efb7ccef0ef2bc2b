// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package store

import (
	"context"

	"github.com/canonical/console-sync/internal/types"
	"golang.org/x/sync/errgroup"
)

// Snapshot is the bootstrap data guaranteed available before the store
// starts: no network is involved in producing it, and a malformed snapshot is
// a fatal startup error for the caller, not something the store recovers
// from.
type Snapshot struct {
	LicenceTerms string         `json:"licenceTerms"`
	Regions      []types.Region `json:"regions"`
	Teams        []types.Team   `json:"teams"`
	User         types.User     `json:"user"`
}

// Initialize hydrates the store from the snapshot synchronously, then runs
// the supplementary fetches (key pairs, hypervisor stats, announcements,
// FAQs) concurrently. The fetches are independent; the first failure is
// returned while the others run to completion and keep their results.
func (s *Store) Initialize(ctx context.Context, snap Snapshot) error {
	ctx, span := s.tracer.Start(ctx, "store.Store.Initialize")
	defer span.End()

	s.mu.Lock()
	s.licenceTerms = snap.LicenceTerms
	s.regions = append([]types.Region(nil), snap.Regions...)
	s.teams = make([]*types.Team, len(snap.Teams))
	for i := range snap.Teams {
		team := snap.Teams[i].Clone()
		s.teams[i] = &team
	}
	user := snap.User
	s.user = &user
	s.mu.Unlock()

	g := new(errgroup.Group)
	g.Go(func() error { return s.FetchKeyPairs(ctx) })
	g.Go(func() error { return s.FetchHypervisorStats(ctx) })
	g.Go(func() error { return s.FetchAnnouncements(ctx) })
	g.Go(func() error { return s.FetchFAQs(ctx) })
	return g.Wait()
}
