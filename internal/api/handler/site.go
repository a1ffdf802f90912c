package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/airsight/airsight/internal/api/response"
	"github.com/airsight/airsight/internal/site"
)

// defaultApproximateDistanceKm is used when the caller does not say how
// far to displace the coordinates.
const defaultApproximateDistanceKm = 0.5

// RoadMetadataProvider fetches per-field spatial road metadata for a
// position.
type RoadMetadataProvider interface {
	Metadata(ctx context.Context, lat, lon float64) (map[string]json.RawMessage, error)
}

// SiteHandler handles site registry endpoints.
type SiteHandler struct {
	sites *site.Service
	roads RoadMetadataProvider
}

// NewSiteHandler creates a new SiteHandler.
func NewSiteHandler(sites *site.Service, roads RoadMetadataProvider) *SiteHandler {
	return &SiteHandler{sites: sites, roads: roads}
}

// ListSites handles GET /v1/sites.
func (h *SiteHandler) ListSites(w http.ResponseWriter, r *http.Request) {
	sites, err := h.sites.List(r.Context(), tenantParam(r), siteFilter(r))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.OK(w, r, "successfully retrieved the site details", sites)
}

// CreateSite handles POST /v1/sites.
func (h *SiteHandler) CreateSite(w http.ResponseWriter, r *http.Request) {
	var req site.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body")
		return
	}

	created, err := h.sites.Create(r.Context(), tenantParam(r), req)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	location := fmt.Sprintf("/v1/sites/%s", created.ID)
	response.Created(w, r, location, "site created", created)
}

// UpdateSite handles PUT /v1/sites/{siteId}.
func (h *SiteHandler) UpdateSite(w http.ResponseWriter, r *http.Request) {
	var s site.Site
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		response.BadRequest(w, r, "invalid JSON body")
		return
	}
	s.ID = chi.URLParam(r, "siteId")
	s.Tenant = tenantParam(r)

	updated, err := h.sites.Update(r.Context(), &s)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.OK(w, r, "site updated", updated)
}

// DeleteSite handles DELETE /v1/sites/{siteId}. Deletion is switched off;
// the endpoint always reports the feature as disabled.
func (h *SiteHandler) DeleteSite(w http.ResponseWriter, r *http.Request) {
	err := h.sites.Delete(r.Context(), tenantParam(r), site.Filter{ID: chi.URLParam(r, "siteId")})
	if errors.Is(err, site.ErrDeletionDisabled) {
		response.ServiceUnavailable(w, r, "feature temporarily disabled",
			"the site deletion feature is temporarily disabled")
		return
	}
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.OK(w, r, "site deleted", nil)
}

// RefreshSite handles POST /v1/sites/{siteId}/refresh.
func (h *SiteHandler) RefreshSite(w http.ResponseWriter, r *http.Request) {
	refreshed, err := h.sites.Refresh(r.Context(), tenantParam(r), chi.URLParam(r, "siteId"))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.OK(w, r, "site refreshed successfully", refreshed)
}

// ApproximateCoordinates handles GET /v1/sites/approximate.
func (h *SiteHandler) ApproximateCoordinates(w http.ResponseWriter, r *http.Request) {
	lat, ok := floatParam(r, "latitude")
	if !ok {
		response.BadRequest(w, r, "latitude is required")
		return
	}
	lon, ok := floatParam(r, "longitude")
	if !ok {
		response.BadRequest(w, r, "longitude is required")
		return
	}

	distanceKm := defaultApproximateDistanceKm
	if d, ok := floatParam(r, "approximate_distance_in_km"); ok {
		distanceKm = d
	}
	var bearing *float64
	if b, ok := floatParam(r, "bearing"); ok {
		bearing = &b
	}

	approx, err := h.sites.ApproximateCoordinates(lat, lon, distanceKm, bearing)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.OK(w, r, "successfully approximated the GPS coordinates", approx)
}

// NearestSites handles GET /v1/sites/nearest.
func (h *SiteHandler) NearestSites(w http.ResponseWriter, r *http.Request) {
	lat, ok := floatParam(r, "latitude")
	if !ok {
		response.BadRequest(w, r, "latitude is required")
		return
	}
	lon, ok := floatParam(r, "longitude")
	if !ok {
		response.BadRequest(w, r, "longitude is required")
		return
	}
	radius, ok := floatParam(r, "radius")
	if !ok {
		response.BadRequest(w, r, "radius is required")
		return
	}

	nearest, err := h.sites.FindNearestSites(r.Context(), tenantParam(r), lat, lon, radius)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.OK(w, r, "successfully retrieved the nearest sites", nearest)
}

// SiteAirQlouds handles GET /v1/sites/airqlouds. The filter must resolve
// to exactly one site.
func (h *SiteHandler) SiteAirQlouds(w http.ResponseWriter, r *http.Request) {
	ids, err := h.sites.FindAirQlouds(r.Context(), tenantParam(r), siteFilter(r))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.OK(w, r, "successfully retrieved the associated airqlouds", ids)
}

// NearestWeatherStation handles GET /v1/sites/weather-station/nearest.
func (h *SiteHandler) NearestWeatherStation(w http.ResponseWriter, r *http.Request) {
	station, err := h.sites.FindNearestStation(r.Context(), tenantParam(r), siteFilter(r))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.OK(w, r, "successfully retrieved the nearest weather station", station)
}

// RoadMetadata handles GET /v1/sites/road-metadata.
func (h *SiteHandler) RoadMetadata(w http.ResponseWriter, r *http.Request) {
	lat, ok := floatParam(r, "latitude")
	if !ok {
		response.BadRequest(w, r, "latitude is required")
		return
	}
	lon, ok := floatParam(r, "longitude")
	if !ok {
		response.BadRequest(w, r, "longitude is required")
		return
	}

	fields, err := h.roads.Metadata(r.Context(), lat, lon)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.OK(w, r, "successfully retrieved the road metadata", fields)
}
