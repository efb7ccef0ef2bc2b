// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/canonical/console-sync/internal/api"
	"github.com/canonical/console-sync/internal/logging"
	"github.com/canonical/console-sync/internal/monitoring"
	"github.com/canonical/console-sync/internal/tracing"
	"github.com/canonical/console-sync/internal/types"
	"github.com/canonical/console-sync/pkg/scope"
	"github.com/canonical/console-sync/pkg/store"
	chi "github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// API is the local HTTP surface of the store: read endpoints return the
// store's current view, dispatch endpoints invoke the named store operations.
type API struct {
	store   *store.Store
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewAPI(
	s *store.Store,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *API {
	return &API{
		store:   s,
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}

func (a *API) RegisterEndpoints(mux *chi.Mux) {
	mux.Get("/api/v1/teams", a.listTeams)
	mux.Get("/api/v1/regions", a.listRegions)
	mux.Get("/api/v1/licence-terms", a.licenceTerms)
	mux.Get("/api/v1/announcements", a.listAnnouncements)
	mux.Get("/api/v1/faqs", a.listFAQs)
	mux.Get("/api/v1/keypairs", a.listKeyPairs)
	mux.Get("/api/v1/hypervisor-stats", a.listHypervisorStats)
	mux.Get("/api/v1/members", a.listTeamMembers)
	mux.Get("/api/v1/invitations", a.listInvitations)

	mux.Get("/api/v1/user", a.getUser)
	mux.Patch("/api/v1/user", a.updateUser)

	mux.Get("/api/v1/active-team", a.getActiveTeam)
	mux.Put("/api/v1/active-team", a.setActiveTeam)
	mux.Put("/api/v1/filter-tenant", a.setFilterTenant)

	mux.Get("/api/v1/volumes", listCollection(a, a.store.Volumes()))
	mux.Get("/api/v1/instances", listCollection(a, a.store.Instances()))
	mux.Get("/api/v1/images", listCollection(a, a.store.Images()))
	mux.Get("/api/v1/flavors", listCollection(a, a.store.Flavors()))
	mux.Get("/api/v1/volume-types", listCollection(a, a.store.VolumeTypes()))

	mux.Post("/api/v1/volumes", a.createVolume)
	mux.Post("/api/v1/instances", a.createInstance)
	mux.Post("/api/v1/instances/{tenantID}/{instanceID}/lease-request", a.createLeaseRequest)
	mux.Post("/api/v1/licence-acceptance", a.createLicenceAcceptance)

	mux.Post("/api/v1/sync", a.syncAll)
	mux.Post("/api/v1/sync/team", a.syncTeam)
}

func (a *API) listTeams(w http.ResponseWriter, r *http.Request) {
	_, span := a.tracer.Start(r.Context(), "web.API.listTeams")
	defer span.End()

	a.writeResponse(w, http.StatusOK, a.store.Teams())
}

func (a *API) listRegions(w http.ResponseWriter, r *http.Request) {
	_, span := a.tracer.Start(r.Context(), "web.API.listRegions")
	defer span.End()

	a.writeResponse(w, http.StatusOK, a.store.Regions())
}

func (a *API) licenceTerms(w http.ResponseWriter, r *http.Request) {
	_, span := a.tracer.Start(r.Context(), "web.API.licenceTerms")
	defer span.End()

	a.writeResponse(w, http.StatusOK, map[string]string{"licenceTerms": a.store.LicenceTerms()})
}

func (a *API) listAnnouncements(w http.ResponseWriter, r *http.Request) {
	_, span := a.tracer.Start(r.Context(), "web.API.listAnnouncements")
	defer span.End()

	a.writeResponse(w, http.StatusOK, a.store.Announcements())
}

func (a *API) listFAQs(w http.ResponseWriter, r *http.Request) {
	_, span := a.tracer.Start(r.Context(), "web.API.listFAQs")
	defer span.End()

	a.writeResponse(w, http.StatusOK, a.store.FAQs())
}

func (a *API) listKeyPairs(w http.ResponseWriter, r *http.Request) {
	_, span := a.tracer.Start(r.Context(), "web.API.listKeyPairs")
	defer span.End()

	a.writeResponse(w, http.StatusOK, a.store.KeyPairs())
}

func (a *API) listHypervisorStats(w http.ResponseWriter, r *http.Request) {
	_, span := a.tracer.Start(r.Context(), "web.API.listHypervisorStats")
	defer span.End()

	a.writeResponse(w, http.StatusOK, a.store.HypervisorStats())
}

func (a *API) listTeamMembers(w http.ResponseWriter, r *http.Request) {
	_, span := a.tracer.Start(r.Context(), "web.API.listTeamMembers")
	defer span.End()

	a.writeResponse(w, http.StatusOK, a.store.TeamMembers())
}

func (a *API) listInvitations(w http.ResponseWriter, r *http.Request) {
	_, span := a.tracer.Start(r.Context(), "web.API.listInvitations")
	defer span.End()

	a.writeResponse(w, http.StatusOK, a.store.Invitations())
}

func (a *API) getUser(w http.ResponseWriter, r *http.Request) {
	_, span := a.tracer.Start(r.Context(), "web.API.getUser")
	defer span.End()

	user, ok := a.store.User()
	if !ok {
		a.writeError(w, http.StatusNotFound, "no user loaded")
		return
	}
	a.writeResponse(w, http.StatusOK, user)
}

func (a *API) updateUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "web.API.updateUser")
	defer span.End()

	var update types.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := a.store.UpdateUser(ctx, update); err != nil {
		a.writeStoreError(w, err)
		return
	}

	user, _ := a.store.User()
	a.writeResponse(w, http.StatusOK, user)
}

func (a *API) getActiveTeam(w http.ResponseWriter, r *http.Request) {
	_, span := a.tracer.Start(r.Context(), "web.API.getActiveTeam")
	defer span.End()

	team, ok := a.store.ActiveTeam()
	if !ok {
		a.writeError(w, http.StatusNotFound, "no active team selected")
		return
	}
	a.writeResponse(w, http.StatusOK, team)
}

func (a *API) setActiveTeam(w http.ResponseWriter, r *http.Request) {
	_, span := a.tracer.Start(r.Context(), "web.API.setActiveTeam")
	defer span.End()

	var body struct {
		Team int `json:"team"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := a.store.SetActiveTeam(body.Team); err != nil {
		a.writeStoreError(w, err)
		return
	}

	team, _ := a.store.ActiveTeam()
	a.writeResponse(w, http.StatusOK, team)
}

func (a *API) setFilterTenant(w http.ResponseWriter, r *http.Request) {
	_, span := a.tracer.Start(r.Context(), "web.API.setFilterTenant")
	defer span.End()

	// A zero (or absent) tenant clears the filter.
	var body struct {
		Tenant int `json:"tenant"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := a.store.SetFilterTenant(body.Tenant); err != nil {
		a.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type collectionResponse[R any] struct {
	Items   []R  `json:"items"`
	Loading bool `json:"loading"`
}

// listCollection serves one resource collection narrowed to the current
// filter scope.
func listCollection[R scope.Resource](a *API, c *store.Collection[R]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := a.tracer.Start(r.Context(), "web.API.listCollection")
		defer span.End()

		items := c.ForFilterScope()
		if items == nil {
			items = []R{}
		}
		a.writeResponse(w, http.StatusOK, collectionResponse[R]{Items: items, Loading: c.Loading()})
	}
}

func (a *API) createVolume(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "web.API.createVolume")
	defer span.End()

	var payload types.VolumeCreate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := a.store.Volumes().Create(ctx, payload)
	if err != nil {
		a.writeStoreError(w, err)
		return
	}
	a.writeResponse(w, http.StatusCreated, created)
}

func (a *API) createInstance(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "web.API.createInstance")
	defer span.End()

	var payload types.InstanceCreate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := a.store.Instances().Create(ctx, payload)
	if err != nil {
		a.writeStoreError(w, err)
		return
	}
	a.writeResponse(w, http.StatusCreated, created)
}

func (a *API) createLeaseRequest(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "web.API.createLeaseRequest")
	defer span.End()

	tenantID, err := strconv.Atoi(chi.URLParam(r, "tenantID"))
	if err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid tenant id")
		return
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	instance := types.Instance{ID: chi.URLParam(r, "instanceID"), Tenant: tenantID}
	if err := a.store.CreateServerLeaseRequest(ctx, instance, body.Message); err != nil {
		a.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) createLicenceAcceptance(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "web.API.createLicenceAcceptance")
	defer span.End()

	if err := a.store.CreateLicenceAcceptance(ctx); err != nil {
		a.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type syncResponse struct {
	Sync     string                `json:"sync"`
	Outcomes []store.TenantOutcome `json:"outcomes"`
}

// syncAll runs the full sync for the active team: team members and
// invitations first, then every tenant's resources with per-tenant fault
// isolation. Individual tenant failures are reported in the outcomes, not as
// an HTTP error.
func (a *API) syncAll(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "web.API.syncAll")
	defer span.End()

	if err := a.store.FetchTeamData(ctx); err != nil {
		a.writeStoreError(w, err)
		return
	}

	outcomes, err := a.store.FetchAllTenantData(ctx)
	if err != nil {
		a.writeStoreError(w, err)
		return
	}

	for _, outcome := range outcomes {
		if outcome.Status == store.StatusRejected {
			a.logger.Warnf("tenant %d sync rejected: %s", outcome.TenantID, outcome.Reason)
		}
	}

	a.writeResponse(w, http.StatusOK, syncResponse{Sync: uuid.NewString(), Outcomes: outcomes})
}

func (a *API) syncTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "web.API.syncTeam")
	defer span.End()

	if err := a.store.FetchTeamData(ctx); err != nil {
		a.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) writeResponse(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		a.logger.Errorf("failed to encode response: %v", err)
	}
}

func (a *API) writeError(w http.ResponseWriter, status int, message string) {
	a.writeResponse(w, status, map[string]string{"error": message})
}

// writeStoreError maps store and transport errors onto HTTP statuses.
func (a *API) writeStoreError(w http.ResponseWriter, err error) {
	var apiErr *api.Error
	var validationErrs validator.ValidationErrors

	switch {
	case errors.Is(err, store.ErrUnknownTeam), errors.Is(err, store.ErrUnknownTenant):
		a.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrNoActiveTeam), errors.Is(err, store.ErrNoTenants):
		a.writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &validationErrs):
		a.writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &apiErr):
		a.logger.Errorf("upstream api error: %v", err)
		a.writeError(w, http.StatusBadGateway, err.Error())
	default:
		a.logger.Errorf("store operation failed: %v", err)
		a.writeError(w, http.StatusInternalServerError, err.Error())
	}
}
