// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package scope

import (
	"testing"
)

type record struct {
	id     string
	tenant int
}

func (r record) ResourceID() string  { return r.id }
func (r record) ResourceTenant() int { return r.tenant }

func ids(rs []record) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.id
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestForTeam(t *testing.T) {
	all := []record{
		{"a1", 1}, {"b1", 2}, {"a2", 1}, {"c1", 3},
	}

	got := ForTeam(all, []int{1, 2})
	if !equal(ids(got), []string{"a1", "b1", "a2"}) {
		t.Errorf("unexpected team collection: %v", ids(got))
	}

	if got := ForTeam(all, nil); len(got) != 0 {
		t.Errorf("expected empty collection for no tenants, got %v", ids(got))
	}
}

func TestTenantFilter(t *testing.T) {
	all := []record{
		{"a1", 1}, {"b1", 2}, {"a2", 1},
	}

	forTenant := TenantFilter(all)
	if !equal(ids(forTenant(1)), []string{"a1", "a2"}) {
		t.Errorf("unexpected tenant filter result: %v", ids(forTenant(1)))
	}
	if len(forTenant(9)) != 0 {
		t.Error("expected no resources for unknown tenant")
	}
}

func TestMergeTeamCollection(t *testing.T) {
	teamTenants := []int{1, 2}

	testCases := []struct {
		name     string
		all      []record
		fetched  []record
		tenantID int
		expected []string
	}{
		{
			name:     "single tenant refresh keeps siblings",
			all:      []record{{"a1", 1}, {"b1", 2}, {"a2", 1}, {"c1", 3}},
			fetched:  []record{{"a3", 1}},
			tenantID: 1,
			expected: []string{"b1", "c1", "a3"},
		},
		{
			name:     "team wide refresh replaces every team tenant",
			all:      []record{{"a1", 1}, {"b1", 2}, {"c1", 3}},
			fetched:  []record{{"a2", 1}, {"b2", 2}},
			tenantID: 0,
			expected: []string{"c1", "a2", "b2"},
		},
		{
			name:     "empty fetched empties the scope",
			all:      []record{{"a1", 1}, {"b1", 2}},
			fetched:  nil,
			tenantID: 1,
			expected: []string{"b1"},
		},
		{
			name:     "no matching entries is a pure append",
			all:      []record{{"c1", 3}},
			fetched:  []record{{"a1", 1}},
			tenantID: 1,
			expected: []string{"c1", "a1"},
		},
		{
			name:     "fetched order is preserved",
			all:      nil,
			fetched:  []record{{"a3", 1}, {"a1", 1}, {"a2", 1}},
			tenantID: 1,
			expected: []string{"a3", "a1", "a2"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := MergeTeamCollection(tc.all, tc.fetched, teamTenants, tc.tenantID)
			if !equal(ids(got), tc.expected) {
				t.Errorf("expected %v, got %v", tc.expected, ids(got))
			}
		})
	}
}

func TestMergeTeamCollectionIdempotent(t *testing.T) {
	all := []record{{"a1", 1}, {"b1", 2}}
	fetched := []record{{"a2", 1}, {"a3", 1}}

	once := MergeTeamCollection(all, fetched, []int{1, 2}, 1)
	twice := MergeTeamCollection(once, fetched, []int{1, 2}, 1)

	if !equal(ids(once), ids(twice)) {
		t.Errorf("merge is not idempotent: %v vs %v", ids(once), ids(twice))
	}
}
