// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/canonical/console-sync/internal/api"
	"github.com/canonical/console-sync/internal/types"
	"github.com/canonical/console-sync/pkg/scope"
	"github.com/google/uuid"
)

// Collection is the store module for one resource type: a flat collection of
// every known resource across all teams, plus loading and polling flags. The
// same shape serves volumes, instances, images, flavors and volume types;
// only the name and route differ.
type Collection[R scope.Resource] struct {
	root  *Store
	name  string
	route string

	mu                  sync.RWMutex
	all                 []R
	loading             bool
	pollingID           uuid.UUID
	pollingTargetStatus []string
}

func newCollection[R scope.Resource](root *Store, name, route string) *Collection[R] {
	return &Collection[R]{
		root:  root,
		name:  name,
		route: route,
	}
}

// All returns a copy of the whole flat collection, every team and tenant.
func (c *Collection[R]) All() []R {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]R, len(c.all))
	copy(out, c.all)
	return out
}

// Create persists a new resource and appends the server's representation to
// the collection. The payload must carry the owning tenant; transport errors
// propagate unmodified.
func (c *Collection[R]) Create(ctx context.Context, payload interface{}) (R, error) {
	ctx, span := c.root.tracer.Start(ctx, fmt.Sprintf("store.Collection.Create %s", c.name))
	defer span.End()

	var zero R

	if err := c.root.validate.Struct(payload); err != nil {
		return zero, fmt.Errorf("invalid %s payload: %w", c.name, err)
	}

	data, err := c.root.api.Post(ctx, c.route, payload)
	if err != nil {
		return zero, err
	}

	var created R
	if err := json.Unmarshal(data, &created); err != nil {
		return zero, fmt.Errorf("failed to decode %s response: %w", c.name, err)
	}

	c.mu.Lock()
	c.all = append(c.all, created)
	c.mu.Unlock()

	return created, nil
}

// FetchOne refreshes a single resource in place. The resource must already be
// in the collection, there is nothing to merge onto otherwise.
func (c *Collection[R]) FetchOne(ctx context.Context, resource R) error {
	ctx, span := c.root.tracer.Start(ctx, fmt.Sprintf("store.Collection.FetchOne %s", c.name))
	defer span.End()

	data, err := c.root.api.Get(ctx, api.ItemRoute(c.route, resource.ResourceTenant(), resource.ResourceID()), nil)
	if err != nil {
		return err
	}

	var fetched R
	if err := json.Unmarshal(data, &fetched); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", c.name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.all {
		if existing.ResourceID() == resource.ResourceID() {
			c.all[i] = fetched
			return nil
		}
	}
	return fmt.Errorf("%s %s is not in the local collection", c.name, resource.ResourceID())
}

// FetchForTeam lists the resources of a team scope, a whole team or one of
// its tenants, and merge-replaces exactly that scope. The loading flag is
// released on every path so a failed fetch cannot wedge the module.
func (c *Collection[R]) FetchForTeam(ctx context.Context, team types.Team, tenant *types.Tenant) error {
	ctx, span := c.root.tracer.Start(ctx, fmt.Sprintf("store.Collection.FetchForTeam %s", c.name))
	defer span.End()

	c.setLoading(true)
	defer c.setLoading(false)

	params := url.Values{}
	params.Set("team", strconv.Itoa(team.ID))

	var tenantID int
	if tenant != nil {
		tenantID = tenant.ID
		params.Set("tenant", strconv.Itoa(tenantID))
	}

	data, err := c.root.api.Get(ctx, c.route, params)
	if err != nil {
		return err
	}

	var fetched []R
	if err := json.Unmarshal(data, &fetched); err != nil {
		return fmt.Errorf("failed to decode %s list response: %w", c.name, err)
	}

	c.mu.Lock()
	c.all = scope.MergeTeamCollection(c.all, fetched, team.TenantIDs(), tenantID)
	c.mu.Unlock()
	return nil
}

// ForTenant returns the resources of a single tenant.
func (c *Collection[R]) ForTenant(tenant types.Tenant) []R {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return scope.TenantFilter(c.all)(tenant.ID)
}

// ForActiveTeam returns the resources of every tenant of the active team.
func (c *Collection[R]) ForActiveTeam() []R {
	team, ok := c.root.ActiveTeam()
	if !ok {
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return scope.ForTeam(c.all, team.TenantIDs())
}

// ForFilterScope is the canonical "what should the UI show" query: the filter
// tenant's resources when a filter is set, the whole active team otherwise.
func (c *Collection[R]) ForFilterScope() []R {
	if tenant, ok := c.root.FilterTenant(); ok {
		return c.ForTenant(tenant)
	}
	return c.ForActiveTeam()
}

func (c *Collection[R]) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// SetPolling arms the status-watch flags for this module and returns an
// opaque handle identifying the watch. The polling loop itself lives in the
// UI layer.
func (c *Collection[R]) SetPolling(targetStatus []string) uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pollingID = uuid.New()
	c.pollingTargetStatus = append([]string(nil), targetStatus...)
	return c.pollingID
}

func (c *Collection[R]) ClearPolling() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pollingID = uuid.Nil
	c.pollingTargetStatus = nil
}

// Polling reports the current watch handle and target statuses, if armed.
func (c *Collection[R]) Polling() (uuid.UUID, []string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.pollingID == uuid.Nil {
		return uuid.Nil, nil, false
	}
	return c.pollingID, append([]string(nil), c.pollingTargetStatus...), true
}

func (c *Collection[R]) setLoading(loading bool) {
	c.mu.Lock()
	c.loading = loading
	c.mu.Unlock()
}
