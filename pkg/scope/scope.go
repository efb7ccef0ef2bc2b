// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package scope holds the pure collection algebra of the store: filtering and
// merging flat resource collections by (team, tenant) scope.
package scope

// Resource is anything that lives in a tenant and can be addressed by id.
type Resource interface {
	ResourceID() string
	ResourceTenant() int
}

// ForTeam returns the resources whose tenant is one of tenantIDs, preserving
// their relative order.
func ForTeam[R Resource](all []R, tenantIDs []int) []R {
	members := make(map[int]struct{}, len(tenantIDs))
	for _, id := range tenantIDs {
		members[id] = struct{}{}
	}

	var out []R
	for _, r := range all {
		if _, ok := members[r.ResourceTenant()]; ok {
			out = append(out, r)
		}
	}
	return out
}

// TenantFilter returns a closure narrowing all to a single tenant.
func TenantFilter[R Resource](all []R) func(tenantID int) []R {
	return func(tenantID int) []R {
		var out []R
		for _, r := range all {
			if r.ResourceTenant() == tenantID {
				out = append(out, r)
			}
		}
		return out
	}
}

// MergeTeamCollection replaces one scope of the collection with fetched. The
// scope is the single tenant when tenantID is non-zero, otherwise every tenant
// in tenantIDs (a whole-team refresh). Resources outside the scope keep their
// order; fetched is appended in its own order. A narrower fetch never evicts
// sibling tenants' resources.
func MergeTeamCollection[R Resource](all, fetched []R, tenantIDs []int, tenantID int) []R {
	inScope := make(map[int]struct{})
	if tenantID != 0 {
		inScope[tenantID] = struct{}{}
	} else {
		for _, id := range tenantIDs {
			inScope[id] = struct{}{}
		}
	}

	out := make([]R, 0, len(all)+len(fetched))
	for _, r := range all {
		if _, ok := inScope[r.ResourceTenant()]; !ok {
			out = append(out, r)
		}
	}
	return append(out, fetched...)
}
