// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/canonical/console-sync/internal/api"
	"go.uber.org/mock/gomock"
)

var resourceRoutes = []string{
	api.RouteFlavors,
	api.RouteImages,
	api.RouteInstances,
	api.RouteVolumeTypes,
	api.RouteVolumes,
}

// expectTenantList stubs one resource route for any tenant of the active
// team, answering with a single resource tagged with the requesting tenant.
func expectTenantList(t *testing.T, mockAPI *MockTransportInterface, route string, times int) {
	t.Helper()
	mockAPI.EXPECT().
		Get(gomock.Any(), route, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, params url.Values) (json.RawMessage, error) {
			tenant := params.Get("tenant")
			return json.RawMessage(fmt.Sprintf(`[{"id":"%s-%s","tenant":%s}]`, strings.Trim(route, "/"), tenant, tenant)), nil
		}).
		Times(times)
}

func TestFetchTenantDataSuccess(t *testing.T) {
	s, mockAPI := newTestStore(t)
	seedTeams(s)
	if err := s.SetActiveTeam(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, route := range resourceRoutes {
		expectTenantList(t, mockAPI, route, 1)
	}

	team, _ := s.ActiveTeam()
	if err := s.FetchTenantData(context.Background(), team.Tenants[0]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := s.Flavors().All(); len(got) != 1 || got[0].Tenant != 101 {
		t.Errorf("flavors not merged: %v", got)
	}
	if got := s.Volumes().All(); len(got) != 1 || got[0].Tenant != 101 {
		t.Errorf("volumes not merged: %v", got)
	}
}

func TestFetchTenantDataWrapsErrorWithRegion(t *testing.T) {
	s, mockAPI := newTestStore(t)
	seedTeams(s)
	if err := s.SetActiveTeam(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mockAPI.EXPECT().
		Get(gomock.Any(), api.RouteFlavors, gomock.Any()).
		Return(nil, &api.Error{StatusCode: 403, Detail: "quota exceeded"})
	for _, route := range resourceRoutes[1:] {
		expectTenantList(t, mockAPI, route, 1)
	}

	team, _ := s.ActiveTeam()
	err := s.FetchTenantData(context.Background(), team.Tenants[0])
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "Error fetching data from warwick tenant: quota exceeded" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestFetchTenantDataFallsBackToRawMessage(t *testing.T) {
	s, mockAPI := newTestStore(t)
	seedTeams(s)
	if err := s.SetActiveTeam(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mockAPI.EXPECT().
		Get(gomock.Any(), api.RouteFlavors, gomock.Any()).
		Return(nil, errors.New("connection refused"))
	for _, route := range resourceRoutes[1:] {
		expectTenantList(t, mockAPI, route, 1)
	}

	team, _ := s.ActiveTeam()
	err := s.FetchTenantData(context.Background(), team.Tenants[0])
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "Error fetching data from warwick tenant: connection refused" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestFetchAllTenantDataNoActiveTeam(t *testing.T) {
	s, _ := newTestStore(t)
	seedTeams(s)

	if _, err := s.FetchAllTenantData(context.Background()); !errors.Is(err, ErrNoActiveTeam) {
		t.Errorf("expected ErrNoActiveTeam, got %v", err)
	}
}

func TestFetchAllTenantDataNoTenants(t *testing.T) {
	s, _ := newTestStore(t)
	seedTeams(s)
	if err := s.SetActiveTeam(3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The precondition fails before any network call; the mock would reject
	// any unexpected request.
	if _, err := s.FetchAllTenantData(context.Background()); !errors.Is(err, ErrNoTenants) {
		t.Errorf("expected ErrNoTenants, got %v", err)
	}
}

func TestFetchAllTenantDataFaultIsolation(t *testing.T) {
	s, mockAPI := newTestStore(t)
	seedTeams(s)
	if err := s.SetActiveTeam(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Tenant 101's flavor fetch fails; everything else succeeds.
	mockAPI.EXPECT().
		Get(gomock.Any(), api.RouteFlavors, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, params url.Values) (json.RawMessage, error) {
			if params.Get("tenant") == "101" {
				return nil, &api.Error{StatusCode: 403, Detail: "quota exceeded"}
			}
			return json.RawMessage(`[{"id":"f-102","tenant":102}]`), nil
		}).
		Times(2)
	for _, route := range resourceRoutes[1:] {
		expectTenantList(t, mockAPI, route, 2)
	}

	outcomes, err := s.FetchAllTenantData(context.Background())
	if err != nil {
		t.Fatalf("bulk sync must not fail on individual tenants: %v", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("expected an outcome per tenant, got %d", len(outcomes))
	}

	// Outcomes follow the input tenant order.
	if outcomes[0].TenantID != 101 || outcomes[1].TenantID != 102 {
		t.Errorf("unexpected outcome order: %+v", outcomes)
	}
	if outcomes[0].Status != StatusRejected {
		t.Errorf("expected tenant 101 rejected, got %+v", outcomes[0])
	}
	if outcomes[0].Reason != "Error fetching data from warwick tenant: quota exceeded" {
		t.Errorf("unexpected reason: %q", outcomes[0].Reason)
	}
	if outcomes[1].Status != StatusFulfilled || outcomes[1].Err != nil {
		t.Errorf("expected tenant 102 fulfilled, got %+v", outcomes[1])
	}

	// Tenant 102's flavors are in the store; tenant 101's are not. Siblings
	// of the failed fetch that resolved successfully still land.
	flavors := s.Flavors().All()
	if len(flavors) != 1 || flavors[0].Tenant != 102 {
		t.Errorf("unexpected flavors: %v", flavors)
	}
	volumes := s.Volumes().All()
	if len(volumes) != 2 {
		t.Errorf("expected volumes for both tenants, got %v", volumes)
	}
}

func TestFetchTeamData(t *testing.T) {
	s, mockAPI := newTestStore(t)
	seedTeams(s)
	if err := s.SetActiveTeam(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Members strictly before invitations.
	gomock.InOrder(
		mockAPI.EXPECT().
			Get(gomock.Any(), api.TeamMembersRoute(1), gomock.Any()).
			Return(json.RawMessage(`[{"id":1,"isAdmin":true}]`), nil),
		mockAPI.EXPECT().
			Get(gomock.Any(), api.InvitationsRoute(1), gomock.Any()).
			Return(json.RawMessage(`[{"uuid":"inv-1","email":"new@example.org"}]`), nil),
	)

	if err := s.FetchTeamData(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	team, _ := s.ActiveTeam()
	if !team.Initialized {
		t.Error("team must be marked initialized after both fetches succeed")
	}
	if len(s.TeamMembers()) != 1 || len(s.Invitations()) != 1 {
		t.Error("team data not stored")
	}

	// Second call: initialized, so zero network calls. The mock controller
	// fails the test on any unexpected request.
	if err := s.FetchTeamData(context.Background()); err != nil {
		t.Fatalf("unexpected error on guarded call: %v", err)
	}
}

func TestFetchTeamDataMemberFailure(t *testing.T) {
	s, mockAPI := newTestStore(t)
	seedTeams(s)
	if err := s.SetActiveTeam(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Invitations are never requested when the member fetch fails.
	mockAPI.EXPECT().
		Get(gomock.Any(), api.TeamMembersRoute(1), gomock.Any()).
		Return(nil, &api.Error{StatusCode: 403, Detail: "not a member"})

	err := s.FetchTeamData(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "Error fetching team data for Genomics Lab: not a member" {
		t.Errorf("unexpected message: %q", err.Error())
	}

	team, _ := s.ActiveTeam()
	if team.Initialized {
		t.Error("a failed fetch must leave the team uninitialized for retry")
	}
}

func TestFetchTeamDataInvitationFailure(t *testing.T) {
	s, mockAPI := newTestStore(t)
	seedTeams(s)
	if err := s.SetActiveTeam(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	gomock.InOrder(
		mockAPI.EXPECT().
			Get(gomock.Any(), api.TeamMembersRoute(1), gomock.Any()).
			Return(json.RawMessage(`[]`), nil),
		mockAPI.EXPECT().
			Get(gomock.Any(), api.InvitationsRoute(1), gomock.Any()).
			Return(nil, errors.New("boom")),
	)

	err := s.FetchTeamData(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "Error fetching team data for Genomics Lab: boom" {
		t.Errorf("unexpected message: %q", err.Error())
	}

	team, _ := s.ActiveTeam()
	if team.Initialized {
		t.Error("a failed fetch must leave the team uninitialized for retry")
	}
}
