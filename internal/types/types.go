// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"time"
)

// Region is a deployment region of the cloud, referenced by tenants.
type Region struct {
	ID                  int    `json:"id"`
	Name                string `json:"name"`
	Description         string `json:"description"`
	Disabled            bool   `json:"disabled"`
	DisableNewInstances bool   `json:"disableNewInstances"`
}

// Tenant is a regional cloud account belonging to exactly one team.
type Tenant struct {
	ID     int `json:"id"`
	Region int `json:"region"`
}

// Team is a billing/organizational unit owning one or more tenants.
//
// Initialized is client-side state: it flips to true once team members and
// invitations have been fetched for the session. It is excluded from JSON so
// server payloads can never clobber it.
type Team struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	Verified      bool      `json:"verified"`
	DefaultRegion int       `json:"defaultRegion"`
	CreatedAt     time.Time `json:"createdAt"`
	LicenceExpiry time.Time `json:"licenceExpiry"`
	Tenants       []Tenant  `json:"tenants"`

	Initialized bool `json:"-"`
}

// Merge applies a team payload fetched from the server onto t, preserving the
// client-side fields the server knows nothing about.
func (t *Team) Merge(u Team) {
	u.Initialized = t.Initialized
	if u.Tenants == nil {
		u.Tenants = t.Tenants
	}
	*t = u
}

// TenantIDs returns the ids of all tenants of the team, in order.
func (t Team) TenantIDs() []int {
	ids := make([]int, len(t.Tenants))
	for i, tenant := range t.Tenants {
		ids[i] = tenant.ID
	}
	return ids
}

// Tenant returns the team's tenant with the given id.
func (t Team) Tenant(id int) (Tenant, bool) {
	for _, tenant := range t.Tenants {
		if tenant.ID == id {
			return tenant, true
		}
	}
	return Tenant{}, false
}

// Clone returns a copy of the team that shares no mutable state with t.
func (t Team) Clone() Team {
	tenants := make([]Tenant, len(t.Tenants))
	copy(tenants, t.Tenants)
	t.Tenants = tenants
	return t
}

type Profile struct {
	DefaultTeamMembership int  `json:"defaultTeamMembership"`
	EmailValidated        bool `json:"emailValidated"`
}

// User is the profile of the signed-in user, replaced wholesale on fetch.
type User struct {
	ID        int     `json:"id"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	Profile   Profile `json:"profile"`
}

// UserUpdate is the payload accepted by the user profile update operation.
type UserUpdate struct {
	FirstName             string `json:"firstName" validate:"required"`
	LastName              string `json:"lastName" validate:"required"`
	Email                 string `json:"email" validate:"required,email"`
	DefaultTeamMembership int    `json:"defaultTeamMembership"`
}

type TeamMember struct {
	ID      int  `json:"id"`
	User    User `json:"user"`
	IsAdmin bool `json:"isAdmin"`
}

type Invitation struct {
	UUID     string    `json:"uuid"`
	Email    string    `json:"email"`
	Message  string    `json:"message"`
	Accepted bool      `json:"accepted"`
	Date     time.Time `json:"date"`
}

type KeyPair struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PublicKey   string `json:"publicKey"`
	Fingerprint string `json:"fingerprint"`
}

type HypervisorStats struct {
	Region       int `json:"region"`
	VCPUs        int `json:"vcpus"`
	VCPUsUsed    int `json:"vcpusUsed"`
	MemoryMB     int `json:"memoryMb"`
	MemoryMBUsed int `json:"memoryMbUsed"`
	LocalGB      int `json:"localGb"`
	LocalGBUsed  int `json:"localGbUsed"`
	RunningVMs   int `json:"runningVms"`
}

type Announcement struct {
	ID      int       `json:"id"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Date    time.Time `json:"date"`
}

type FAQ struct {
	ID       int    `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Volume is a block storage volume owned by a tenant.
type Volume struct {
	ID         string `json:"id"`
	Tenant     int    `json:"tenant"`
	Name       string `json:"name"`
	Size       int    `json:"size"`
	Status     string `json:"status"`
	VolumeType string `json:"volumeType"`
	Bootable   bool   `json:"bootable"`
	AttachedTo string `json:"attachedTo"`
}

func (v Volume) ResourceID() string  { return v.ID }
func (v Volume) ResourceTenant() int { return v.Tenant }

// Instance is a running (or stopped) server owned by a tenant.
type Instance struct {
	ID          string     `json:"id"`
	Tenant      int        `json:"tenant"`
	Name        string     `json:"name"`
	Flavor      string     `json:"flavor"`
	Image       string     `json:"image"`
	Status      string     `json:"status"`
	IP          string     `json:"ip"`
	KeyPair     string     `json:"keypair"`
	Created     time.Time  `json:"created"`
	LeaseExpiry *time.Time `json:"leaseExpiry"`
}

func (i Instance) ResourceID() string  { return i.ID }
func (i Instance) ResourceTenant() int { return i.Tenant }

type Image struct {
	ID     string `json:"id"`
	Tenant int    `json:"tenant"`
	Name   string `json:"name"`
	Size   int64  `json:"size"`
	Status string `json:"status"`
}

func (i Image) ResourceID() string  { return i.ID }
func (i Image) ResourceTenant() int { return i.Tenant }

type Flavor struct {
	ID     string `json:"id"`
	Tenant int    `json:"tenant"`
	Name   string `json:"name"`
	VCPUs  int    `json:"vcpus"`
	RAM    int    `json:"ram"`
	Disk   int    `json:"disk"`
}

func (f Flavor) ResourceID() string  { return f.ID }
func (f Flavor) ResourceTenant() int { return f.Tenant }

type VolumeType struct {
	ID        string `json:"id"`
	Tenant    int    `json:"tenant"`
	Name      string `json:"name"`
	IsDefault bool   `json:"isDefault"`
}

func (v VolumeType) ResourceID() string  { return v.ID }
func (v VolumeType) ResourceTenant() int { return v.Tenant }

// VolumeCreate is the payload for creating a volume. The owning tenant is
// mandatory, a volume cannot exist outside a tenant scope.
type VolumeCreate struct {
	Tenant     int    `json:"tenant" validate:"required"`
	VolumeType string `json:"volumeType" validate:"required"`
	Size       int    `json:"size" validate:"required,gt=0"`
	Name       string `json:"name" validate:"required"`
}

// InstanceCreate is the payload for launching an instance.
type InstanceCreate struct {
	Tenant  int    `json:"tenant" validate:"required"`
	Name    string `json:"name" validate:"required"`
	Flavor  string `json:"flavor" validate:"required"`
	Image   string `json:"image" validate:"required"`
	KeyPair string `json:"keypair"`
	Volume  string `json:"volume"`
}
