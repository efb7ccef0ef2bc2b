// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package store implements the scoped state store of the console: a single
// shared truth for teams, tenants and cloud resources, mutated only through
// the named operations defined here and read through snapshot accessors.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/canonical/console-sync/internal/api"
	"github.com/canonical/console-sync/internal/logging"
	"github.com/canonical/console-sync/internal/monitoring"
	"github.com/canonical/console-sync/internal/tracing"
	"github.com/canonical/console-sync/internal/types"
	"github.com/go-playground/validator/v10"
)

var (
	ErrNoActiveTeam  = errors.New("no active team selected")
	ErrUnknownTeam   = errors.New("unknown team")
	ErrUnknownTenant = errors.New("tenant does not belong to the active team")
)

type Store struct {
	api      api.TransportInterface
	validate *validator.Validate
	tracer   tracing.TracingInterface
	monitor  monitoring.MonitorInterface
	logger   logging.LoggerInterface

	mu              sync.RWMutex
	licenceTerms    string
	regions         []types.Region
	teams           []*types.Team
	user            *types.User
	activeTeamID    int
	filterTenantID  int
	teamMembers     []types.TeamMember
	invitations     []types.Invitation
	keyPairs        []types.KeyPair
	hypervisorStats []types.HypervisorStats
	announcements   []types.Announcement
	faqs            []types.FAQ

	volumes     *Collection[types.Volume]
	instances   *Collection[types.Instance]
	images      *Collection[types.Image]
	flavors     *Collection[types.Flavor]
	volumeTypes *Collection[types.VolumeType]
}

func New(
	transport api.TransportInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Store {
	s := &Store{
		api:      transport,
		validate: validator.New(),
		tracer:   tracer,
		monitor:  monitor,
		logger:   logger,
	}

	s.volumes = newCollection[types.Volume](s, "volume", api.RouteVolumes)
	s.instances = newCollection[types.Instance](s, "instance", api.RouteInstances)
	s.images = newCollection[types.Image](s, "image", api.RouteImages)
	s.flavors = newCollection[types.Flavor](s, "flavor", api.RouteFlavors)
	s.volumeTypes = newCollection[types.VolumeType](s, "volume type", api.RouteVolumeTypes)

	return s
}

func (s *Store) Volumes() *Collection[types.Volume]         { return s.volumes }
func (s *Store) Instances() *Collection[types.Instance]     { return s.instances }
func (s *Store) Images() *Collection[types.Image]           { return s.images }
func (s *Store) Flavors() *Collection[types.Flavor]         { return s.flavors }
func (s *Store) VolumeTypes() *Collection[types.VolumeType] { return s.volumeTypes }

// SetActiveTeam switches the active scope to the given team. The filter
// tenant is always reset, it is only meaningful within one team.
func (s *Store) SetActiveTeam(teamID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findTeam(teamID) == nil {
		return fmt.Errorf("%w: %d", ErrUnknownTeam, teamID)
	}

	s.activeTeamID = teamID
	s.filterTenantID = 0
	return nil
}

// SetFilterTenant narrows visible resources to one tenant of the active team.
// A zero id clears the filter.
func (s *Store) SetFilterTenant(tenantID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tenantID == 0 {
		s.filterTenantID = 0
		return nil
	}

	team := s.findTeam(s.activeTeamID)
	if team == nil {
		return ErrNoActiveTeam
	}
	if _, ok := team.Tenant(tenantID); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTenant, tenantID)
	}

	s.filterTenantID = tenantID
	return nil
}

// ActiveTeam returns a copy of the currently selected team.
func (s *Store) ActiveTeam() (types.Team, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	team := s.findTeam(s.activeTeamID)
	if team == nil {
		return types.Team{}, false
	}
	return team.Clone(), true
}

// FilterTenant returns the tenant the view is narrowed to, if any.
func (s *Store) FilterTenant() (types.Tenant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.filterTenantID == 0 {
		return types.Tenant{}, false
	}
	team := s.findTeam(s.activeTeamID)
	if team == nil {
		return types.Tenant{}, false
	}
	return team.Tenant(s.filterTenantID)
}

// Tenants returns the tenants of the active team.
func (s *Store) Tenants() []types.Tenant {
	team, ok := s.ActiveTeam()
	if !ok {
		return nil
	}
	return team.Tenants
}

func (s *Store) Teams() []types.Team {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Team, len(s.teams))
	for i, t := range s.teams {
		out[i] = t.Clone()
	}
	return out
}

func (s *Store) User() (types.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return types.User{}, false
	}
	return *s.user, true
}

func (s *Store) LicenceTerms() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.licenceTerms
}

func (s *Store) Regions() []types.Region {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Region, len(s.regions))
	copy(out, s.regions)
	return out
}

// RegionNameForTenant resolves the display name of a tenant's region, falling
// back to the numeric id when the region is not in the store.
func (s *Store) RegionNameForTenant(tenant types.Tenant) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, region := range s.regions {
		if region.ID == tenant.Region {
			return region.Name
		}
	}
	return fmt.Sprintf("region %d", tenant.Region)
}

func (s *Store) TeamMembers() []types.TeamMember {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.TeamMember, len(s.teamMembers))
	copy(out, s.teamMembers)
	return out
}

func (s *Store) Invitations() []types.Invitation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Invitation, len(s.invitations))
	copy(out, s.invitations)
	return out
}

func (s *Store) KeyPairs() []types.KeyPair {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.KeyPair, len(s.keyPairs))
	copy(out, s.keyPairs)
	return out
}

func (s *Store) HypervisorStats() []types.HypervisorStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.HypervisorStats, len(s.hypervisorStats))
	copy(out, s.hypervisorStats)
	return out
}

func (s *Store) Announcements() []types.Announcement {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Announcement, len(s.announcements))
	copy(out, s.announcements)
	return out
}

func (s *Store) FAQs() []types.FAQ {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.FAQ, len(s.faqs))
	copy(out, s.faqs)
	return out
}

// FetchTeam refreshes the active team from the server. Server fields are
// merged in place, client-side state survives.
func (s *Store) FetchTeam(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "store.Store.FetchTeam")
	defer span.End()

	team, ok := s.ActiveTeam()
	if !ok {
		return ErrNoActiveTeam
	}

	data, err := s.api.Get(ctx, api.TeamRoute(team.ID), nil)
	if err != nil {
		return err
	}

	var fetched types.Team
	if err := json.Unmarshal(data, &fetched); err != nil {
		return fmt.Errorf("failed to decode team response: %w", err)
	}

	s.modifyTeam(team.ID, fetched)
	return nil
}

// UpdateTeam patches the active team on the server and merges the response.
func (s *Store) UpdateTeam(ctx context.Context, payload interface{}) error {
	ctx, span := s.tracer.Start(ctx, "store.Store.UpdateTeam")
	defer span.End()

	team, ok := s.ActiveTeam()
	if !ok {
		return ErrNoActiveTeam
	}

	data, err := s.api.Patch(ctx, api.TeamRoute(team.ID), payload)
	if err != nil {
		return err
	}

	var updated types.Team
	if err := json.Unmarshal(data, &updated); err != nil {
		return fmt.Errorf("failed to decode team response: %w", err)
	}

	s.modifyTeam(team.ID, updated)
	return nil
}

// FetchUser refreshes the user profile, replacing it wholesale.
func (s *Store) FetchUser(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "store.Store.FetchUser")
	defer span.End()

	data, err := s.api.Get(ctx, api.RouteUserProfile, nil)
	if err != nil {
		return err
	}
	return s.setUserFromJSON(data)
}

// UpdateUser patches the user profile on the server.
func (s *Store) UpdateUser(ctx context.Context, update types.UserUpdate) error {
	ctx, span := s.tracer.Start(ctx, "store.Store.UpdateUser")
	defer span.End()

	if err := s.validate.Struct(update); err != nil {
		return fmt.Errorf("invalid user update: %w", err)
	}

	payload := map[string]interface{}{
		"firstName": update.FirstName,
		"lastName":  update.LastName,
		"email":     update.Email,
		"profile": map[string]interface{}{
			"defaultTeamMembership": update.DefaultTeamMembership,
		},
	}

	data, err := s.api.Patch(ctx, api.RouteUserProfile, payload)
	if err != nil {
		return err
	}
	return s.setUserFromJSON(data)
}

// CreateLicenceAcceptance records the user's acceptance of the current
// licence terms for the active team, then refreshes the team so licence
// state is current.
func (s *Store) CreateLicenceAcceptance(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "store.Store.CreateLicenceAcceptance")
	defer span.End()

	team, ok := s.ActiveTeam()
	if !ok {
		return ErrNoActiveTeam
	}

	if _, err := s.api.Post(ctx, api.LicenceAcceptancesRoute(team.ID), nil); err != nil {
		return err
	}
	return s.FetchTeam(ctx)
}

// CreateServerLeaseRequest asks for an extension of an instance's lease.
func (s *Store) CreateServerLeaseRequest(ctx context.Context, instance types.Instance, message string) error {
	ctx, span := s.tracer.Start(ctx, "store.Store.CreateServerLeaseRequest")
	defer span.End()

	team, ok := s.ActiveTeam()
	if !ok {
		return ErrNoActiveTeam
	}

	route := api.ServerLeaseRequestRoute(team.ID, instance.Tenant, instance.ID)
	_, err := s.api.Post(ctx, route, map[string]string{"message": message})
	return err
}

// FetchTeamMembers refreshes the member list of the active team.
func (s *Store) FetchTeamMembers(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "store.Store.FetchTeamMembers")
	defer span.End()

	team, ok := s.ActiveTeam()
	if !ok {
		return ErrNoActiveTeam
	}

	data, err := s.api.Get(ctx, api.TeamMembersRoute(team.ID), nil)
	if err != nil {
		return err
	}

	var members []types.TeamMember
	if err := json.Unmarshal(data, &members); err != nil {
		return fmt.Errorf("failed to decode team members response: %w", err)
	}

	s.mu.Lock()
	s.teamMembers = members
	s.mu.Unlock()
	return nil
}

// FetchInvitations refreshes the pending invitations of the active team.
func (s *Store) FetchInvitations(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "store.Store.FetchInvitations")
	defer span.End()

	team, ok := s.ActiveTeam()
	if !ok {
		return ErrNoActiveTeam
	}

	data, err := s.api.Get(ctx, api.InvitationsRoute(team.ID), nil)
	if err != nil {
		return err
	}

	var invitations []types.Invitation
	if err := json.Unmarshal(data, &invitations); err != nil {
		return fmt.Errorf("failed to decode invitations response: %w", err)
	}

	s.mu.Lock()
	s.invitations = invitations
	s.mu.Unlock()
	return nil
}

func (s *Store) FetchKeyPairs(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "store.Store.FetchKeyPairs")
	defer span.End()

	data, err := s.api.Get(ctx, api.RouteKeyPairs, nil)
	if err != nil {
		return err
	}

	var keyPairs []types.KeyPair
	if err := json.Unmarshal(data, &keyPairs); err != nil {
		return fmt.Errorf("failed to decode key pairs response: %w", err)
	}

	s.mu.Lock()
	s.keyPairs = keyPairs
	s.mu.Unlock()
	return nil
}

func (s *Store) FetchHypervisorStats(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "store.Store.FetchHypervisorStats")
	defer span.End()

	data, err := s.api.Get(ctx, api.RouteHypervisorStats, nil)
	if err != nil {
		return err
	}

	var stats []types.HypervisorStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return fmt.Errorf("failed to decode hypervisor stats response: %w", err)
	}

	s.mu.Lock()
	s.hypervisorStats = stats
	s.mu.Unlock()
	return nil
}

func (s *Store) FetchAnnouncements(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "store.Store.FetchAnnouncements")
	defer span.End()

	data, err := s.api.Get(ctx, api.RouteAnnouncements, nil)
	if err != nil {
		return err
	}

	var announcements []types.Announcement
	if err := json.Unmarshal(data, &announcements); err != nil {
		return fmt.Errorf("failed to decode announcements response: %w", err)
	}

	s.mu.Lock()
	s.announcements = announcements
	s.mu.Unlock()
	return nil
}

func (s *Store) FetchFAQs(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "store.Store.FetchFAQs")
	defer span.End()

	data, err := s.api.Get(ctx, api.RouteFAQs, nil)
	if err != nil {
		return err
	}

	var faqs []types.FAQ
	if err := json.Unmarshal(data, &faqs); err != nil {
		return fmt.Errorf("failed to decode faqs response: %w", err)
	}

	s.mu.Lock()
	s.faqs = faqs
	s.mu.Unlock()
	return nil
}

func (s *Store) setUserFromJSON(data json.RawMessage) error {
	var user types.User
	if err := json.Unmarshal(data, &user); err != nil {
		return fmt.Errorf("failed to decode user response: %w", err)
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	return nil
}

func (s *Store) modifyTeam(teamID int, fetched types.Team) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if team := s.findTeam(teamID); team != nil {
		team.Merge(fetched)
	}
}

func (s *Store) setTeamInitialized(teamID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if team := s.findTeam(teamID); team != nil {
		team.Initialized = true
	}
}

// findTeam must be called with the store lock held.
func (s *Store) findTeam(teamID int) *types.Team {
	for _, team := range s.teams {
		if team.ID == teamID {
			return team
		}
	}
	return nil
}
