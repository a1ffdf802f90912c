package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/airsight/airsight/internal/airqloud"
	"github.com/airsight/airsight/internal/api/response"
	"github.com/airsight/airsight/internal/apperr"
	"github.com/airsight/airsight/internal/geo"
)

// AirQloudHandler handles AirQloud endpoints.
type AirQloudHandler struct {
	airqlouds airqloud.Repository
}

// NewAirQloudHandler creates a new AirQloudHandler.
func NewAirQloudHandler(airqlouds airqloud.Repository) *AirQloudHandler {
	return &AirQloudHandler{airqlouds: airqlouds}
}

// airQloudCreateRequest is the payload for registering an AirQloud.
type airQloudCreateRequest struct {
	Name       string   `json:"name"`
	AdminLevel string   `json:"admin_level,omitempty"`
	Ring       geo.Ring `json:"location"`
}

// ListAirQlouds handles GET /v1/airqlouds.
func (h *AirQloudHandler) ListAirQlouds(w http.ResponseWriter, r *http.Request) {
	airqlouds, err := h.airqlouds.List(r.Context(), tenantParam(r))
	if err != nil {
		response.Err(w, r, apperr.Internal("unable to list airqlouds", err))
		return
	}
	response.OK(w, r, "successfully retrieved the airqlouds", airqlouds)
}

// CreateAirQloud handles POST /v1/airqlouds.
func (h *AirQloudHandler) CreateAirQloud(w http.ResponseWriter, r *http.Request) {
	var req airQloudCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body")
		return
	}
	if req.Name == "" {
		response.BadRequest(w, r, "airqloud name is required")
		return
	}
	if len(req.Ring) < 3 {
		response.BadRequest(w, r, "location must be a polygon ring of at least three vertices")
		return
	}

	created, err := h.airqlouds.Insert(r.Context(), &airqloud.AirQloud{
		Tenant:     tenantParam(r),
		Name:       req.Name,
		AdminLevel: req.AdminLevel,
		Ring:       req.Ring,
	})
	if err != nil {
		response.Err(w, r, apperr.Internal("unable to create airqloud", err))
		return
	}

	location := fmt.Sprintf("/v1/airqlouds/%s", created.ID)
	response.Created(w, r, location, "airqloud created", created)
}
