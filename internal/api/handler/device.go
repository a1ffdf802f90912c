package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/airsight/airsight/internal/api/response"
	"github.com/airsight/airsight/internal/device"
)

// DeviceHandler handles monitor registry endpoints.
type DeviceHandler struct {
	devices *device.Service
}

// NewDeviceHandler creates a new DeviceHandler.
func NewDeviceHandler(devices *device.Service) *DeviceHandler {
	return &DeviceHandler{devices: devices}
}

// ListDevices handles GET /v1/devices.
func (h *DeviceHandler) ListDevices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := device.ListOptions{
		SiteID: q.Get("site_id"),
		Status: device.Status(q.Get("status")),
		Limit:  intParam(r, "limit"),
	}

	devices, err := h.devices.List(r.Context(), tenantParam(r), opts)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.OK(w, r, "successfully retrieved the devices", devices)
}

// RegisterDevice handles POST /v1/devices.
func (h *DeviceHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	var req device.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body")
		return
	}

	created, err := h.devices.Register(r.Context(), tenantParam(r), req)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	location := fmt.Sprintf("/v1/devices/%s", created.ID)
	response.Created(w, r, location, "device registered", created)
}

// UpdateDevice handles PUT /v1/devices/{deviceId}.
func (h *DeviceHandler) UpdateDevice(w http.ResponseWriter, r *http.Request) {
	var req device.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body")
		return
	}

	updated, err := h.devices.Update(r.Context(), tenantParam(r), chi.URLParam(r, "deviceId"), req)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.OK(w, r, "device updated", updated)
}

// DeleteDevice handles DELETE /v1/devices/{deviceId}.
func (h *DeviceHandler) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	if err := h.devices.Delete(r.Context(), tenantParam(r), chi.URLParam(r, "deviceId")); err != nil {
		response.Err(w, r, err)
		return
	}
	response.OK(w, r, "device deleted", nil)
}
