// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package api

import (
	"fmt"
)

// Collection routes of the upstream console API.
const (
	RouteVolumes         = "/volumes/"
	RouteInstances       = "/instances/"
	RouteImages          = "/images/"
	RouteFlavors         = "/flavors/"
	RouteVolumeTypes     = "/volumetypes/"
	RouteTeams           = "/teams/"
	RouteKeyPairs        = "/keypairs/"
	RouteHypervisorStats = "/hypervisorstats/"
	RouteAnnouncements   = "/announcements/"
	RouteFAQs            = "/faqs/"
	RouteUserProfile     = "/userprofile/"
)

// ItemRoute addresses a single resource within a tenant.
func ItemRoute(collection string, tenantID int, id string) string {
	return fmt.Sprintf("%s%d/%s", collection, tenantID, id)
}

func TeamRoute(teamID int) string {
	return fmt.Sprintf("%s%d", RouteTeams, teamID)
}

func TeamMembersRoute(teamID int) string {
	return fmt.Sprintf("%s%d/members/", RouteTeams, teamID)
}

func InvitationsRoute(teamID int) string {
	return fmt.Sprintf("%s%d/invitations/", RouteTeams, teamID)
}

func LicenceAcceptancesRoute(teamID int) string {
	return fmt.Sprintf("%s%d/licence_acceptances/", RouteTeams, teamID)
}

func ServerLeaseRequestRoute(teamID, tenantID int, instanceID string) string {
	return fmt.Sprintf("%s%d/tenants/%d/instances/%s/lease_request/", RouteTeams, teamID, tenantID, instanceID)
}
