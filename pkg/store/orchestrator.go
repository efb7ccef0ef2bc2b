// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/canonical/console-sync/internal/api"
	"github.com/canonical/console-sync/internal/types"
	"golang.org/x/sync/errgroup"
)

// ErrNoTenants is raised before any network call when a bulk sync is asked of
// a team that has no tenants.
var ErrNoTenants = errors.New("the current team has no tenants")

const (
	StatusFulfilled = "fulfilled"
	StatusRejected  = "rejected"
)

// TenantOutcome is the per-tenant result of a bulk sync: either the tenant's
// five resource fetches all landed, or the first failure is recorded here.
type TenantOutcome struct {
	Status   string `json:"status"`
	Reason   string `json:"reason,omitempty"`
	TenantID int    `json:"tenant"`

	Err error `json:"-"`
}

// FetchTenantData pulls all five resource collections for one tenant of the
// active team concurrently. The join is all-or-nothing: the first failure is
// returned, but sibling fetches are never cancelled and their results still
// land in the store when they resolve.
func (s *Store) FetchTenantData(ctx context.Context, tenant types.Tenant) error {
	ctx, span := s.tracer.Start(ctx, "store.Store.FetchTenantData")
	defer span.End()

	team, ok := s.ActiveTeam()
	if !ok {
		return ErrNoActiveTeam
	}

	// A plain errgroup, not errgroup.WithContext: siblings must run to
	// completion even after the first failure.
	g := new(errgroup.Group)
	g.Go(func() error { return s.flavors.FetchForTeam(ctx, team, &tenant) })
	g.Go(func() error { return s.images.FetchForTeam(ctx, team, &tenant) })
	g.Go(func() error { return s.instances.FetchForTeam(ctx, team, &tenant) })
	g.Go(func() error { return s.volumeTypes.FetchForTeam(ctx, team, &tenant) })
	g.Go(func() error { return s.volumes.FetchForTeam(ctx, team, &tenant) })

	if err := g.Wait(); err != nil {
		return fmt.Errorf("Error fetching data from %s tenant: %s", s.RegionNameForTenant(tenant), api.Detail(err))
	}
	return nil
}

// FetchAllTenantData syncs every tenant of the active team concurrently with
// per-tenant fault isolation: one tenant's outage never blocks another's
// data. The outcomes follow the tenant order at call time, not completion
// order. It fails only on its precondition, an empty tenant set.
func (s *Store) FetchAllTenantData(ctx context.Context) ([]TenantOutcome, error) {
	ctx, span := s.tracer.Start(ctx, "store.Store.FetchAllTenantData")
	defer span.End()

	team, ok := s.ActiveTeam()
	if !ok {
		return nil, ErrNoActiveTeam
	}

	// The active team may change while fetches are pending; this snapshot is
	// the set we report on.
	tenants := team.Tenants
	if len(tenants) == 0 {
		return nil, ErrNoTenants
	}

	outcomes := make([]TenantOutcome, len(tenants))
	var wg sync.WaitGroup
	for i, tenant := range tenants {
		wg.Add(1)
		go func(i int, tenant types.Tenant) {
			defer wg.Done()
			if err := s.FetchTenantData(ctx, tenant); err != nil {
				outcomes[i] = TenantOutcome{
					Status:   StatusRejected,
					Reason:   err.Error(),
					TenantID: tenant.ID,
					Err:      err,
				}
				return
			}
			outcomes[i] = TenantOutcome{
				Status:   StatusFulfilled,
				TenantID: tenant.ID,
			}
		}(i, tenant)
	}
	wg.Wait()

	return outcomes, nil
}

// FetchTeamData loads the active team's members and invitations, once per
// session. Members are fetched before invitations, invitations reference
// settled membership state. The team is marked initialized only after both
// succeed, so a failure leaves the operation retryable.
func (s *Store) FetchTeamData(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "store.Store.FetchTeamData")
	defer span.End()

	team, ok := s.ActiveTeam()
	if !ok {
		return ErrNoActiveTeam
	}
	if team.Initialized {
		return nil
	}

	if err := s.FetchTeamMembers(ctx); err != nil {
		return fmt.Errorf("Error fetching team data for %s: %s", team.Name, api.Detail(err))
	}
	if err := s.FetchInvitations(ctx); err != nil {
		return fmt.Errorf("Error fetching team data for %s: %s", team.Name, api.Detail(err))
	}

	s.setTeamInitialized(team.ID)
	return nil
}
