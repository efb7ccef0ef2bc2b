// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/canonical/console-sync/internal/api"
	"github.com/canonical/console-sync/internal/logging"
	"github.com/canonical/console-sync/internal/monitoring"
	"github.com/canonical/console-sync/internal/tracing"
	"github.com/canonical/console-sync/internal/types"
	"go.uber.org/mock/gomock"
)

//go:generate mockgen -build_flags=--mod=mod -package store -destination ./mock_transport.go -source=../../internal/api/interfaces.go

func newTestStore(t *testing.T) (*Store, *MockTransportInterface) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockAPI := NewMockTransportInterface(ctrl)
	s := New(mockAPI, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("console-sync"), logging.NewNoopLogger())
	return s, mockAPI
}

func seedTeams(s *Store) {
	s.mu.Lock()
	s.regions = []types.Region{
		{ID: 1, Name: "warwick"},
		{ID: 2, Name: "birmingham"},
	}
	s.teams = []*types.Team{
		{ID: 1, Name: "Genomics Lab", Tenants: []types.Tenant{{ID: 101, Region: 1}, {ID: 102, Region: 2}}},
		{ID: 2, Name: "Proteomics Lab", Tenants: []types.Tenant{{ID: 201, Region: 1}}},
		{ID: 3, Name: "Empty Lab"},
	}
	s.mu.Unlock()
}

func TestSetActiveTeam(t *testing.T) {
	s, _ := newTestStore(t)
	seedTeams(s)

	if err := s.SetActiveTeam(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	team, ok := s.ActiveTeam()
	if !ok || team.ID != 1 {
		t.Fatalf("expected team 1 active, got %v %v", team.ID, ok)
	}

	if err := s.SetActiveTeam(99); !errors.Is(err, ErrUnknownTeam) {
		t.Errorf("expected ErrUnknownTeam, got %v", err)
	}
}

func TestSetActiveTeamClearsFilterTenant(t *testing.T) {
	s, _ := newTestStore(t)
	seedTeams(s)

	if err := s.SetActiveTeam(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.SetFilterTenant(101); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := s.FilterTenant(); !ok {
		t.Fatal("expected filter tenant to be set")
	}

	if err := s.SetActiveTeam(2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := s.FilterTenant(); ok {
		t.Error("changing the active team must clear the filter tenant")
	}
}

func TestSetFilterTenant(t *testing.T) {
	s, _ := newTestStore(t)
	seedTeams(s)

	if err := s.SetFilterTenant(101); !errors.Is(err, ErrNoActiveTeam) {
		t.Errorf("expected ErrNoActiveTeam, got %v", err)
	}

	if err := s.SetActiveTeam(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := s.SetFilterTenant(201); !errors.Is(err, ErrUnknownTenant) {
		t.Errorf("expected ErrUnknownTenant for other team's tenant, got %v", err)
	}

	if err := s.SetFilterTenant(102); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tenant, ok := s.FilterTenant()
	if !ok || tenant.ID != 102 {
		t.Errorf("expected tenant 102, got %v %v", tenant.ID, ok)
	}

	if err := s.SetFilterTenant(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := s.FilterTenant(); ok {
		t.Error("expected filter tenant cleared")
	}
}

func TestFetchTeamMergesServerFields(t *testing.T) {
	s, mockAPI := newTestStore(t)
	seedTeams(s)
	if err := s.SetActiveTeam(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.setTeamInitialized(1)

	mockAPI.EXPECT().
		Get(gomock.Any(), api.TeamRoute(1), gomock.Any()).
		Return(json.RawMessage(`{"id":1,"name":"Genomics Lab (renamed)","verified":true}`), nil)

	if err := s.FetchTeam(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	team, _ := s.ActiveTeam()
	if team.Name != "Genomics Lab (renamed)" || !team.Verified {
		t.Errorf("server fields not merged: %+v", team)
	}
	if !team.Initialized {
		t.Error("client-side initialized flag must survive a team refresh")
	}
	if len(team.Tenants) != 2 {
		t.Errorf("tenants must survive a payload without them, got %d", len(team.Tenants))
	}
}

func TestUpdateUser(t *testing.T) {
	s, mockAPI := newTestStore(t)

	var sent map[string]interface{}
	mockAPI.EXPECT().
		Patch(gomock.Any(), api.RouteUserProfile, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, body interface{}) (json.RawMessage, error) {
			sent = body.(map[string]interface{})
			return json.RawMessage(`{"id":5,"firstName":"Ada","lastName":"Lovelace","email":"ada@example.org"}`), nil
		})

	update := types.UserUpdate{
		FirstName:             "Ada",
		LastName:              "Lovelace",
		Email:                 "ada@example.org",
		DefaultTeamMembership: 3,
	}
	if err := s.UpdateUser(context.Background(), update); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	profile, ok := sent["profile"].(map[string]interface{})
	if !ok || profile["defaultTeamMembership"] != 3 {
		t.Errorf("default team membership must be nested under profile, got %v", sent)
	}

	user, ok := s.User()
	if !ok || user.FirstName != "Ada" {
		t.Errorf("user not replaced: %+v", user)
	}
}

func TestUpdateUserValidation(t *testing.T) {
	s, _ := newTestStore(t)

	err := s.UpdateUser(context.Background(), types.UserUpdate{FirstName: "Ada"})
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
}

func TestCreateLicenceAcceptance(t *testing.T) {
	s, mockAPI := newTestStore(t)
	seedTeams(s)
	if err := s.SetActiveTeam(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	gomock.InOrder(
		mockAPI.EXPECT().
			Post(gomock.Any(), api.LicenceAcceptancesRoute(1), nil).
			Return(json.RawMessage(`{}`), nil),
		mockAPI.EXPECT().
			Get(gomock.Any(), api.TeamRoute(1), gomock.Any()).
			Return(json.RawMessage(`{"id":1,"name":"Genomics Lab"}`), nil),
	)

	if err := s.CreateLicenceAcceptance(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateServerLeaseRequest(t *testing.T) {
	s, mockAPI := newTestStore(t)
	seedTeams(s)
	if err := s.SetActiveTeam(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	instance := types.Instance{ID: "i-1", Tenant: 101}
	mockAPI.EXPECT().
		Post(gomock.Any(), api.ServerLeaseRequestRoute(1, 101, "i-1"), map[string]string{"message": "more time please"}).
		Return(json.RawMessage(`{}`), nil)

	if err := s.CreateServerLeaseRequest(context.Background(), instance, "more time please"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRegionNameForTenant(t *testing.T) {
	s, _ := newTestStore(t)
	seedTeams(s)

	if got := s.RegionNameForTenant(types.Tenant{ID: 101, Region: 1}); got != "warwick" {
		t.Errorf("expected warwick, got %q", got)
	}
	if got := s.RegionNameForTenant(types.Tenant{ID: 999, Region: 9}); got != "region 9" {
		t.Errorf("expected fallback name, got %q", got)
	}
}
