// Package response writes the uniform API envelope.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/airsight/airsight/internal/api/middleware"
	"github.com/airsight/airsight/internal/api/models"
	"github.com/airsight/airsight/internal/apperr"
)

// write serializes an envelope with the given HTTP status.
// Includes X-Request-Id header for correlation.
func write(w http.ResponseWriter, r *http.Request, env models.Envelope) {
	requestID := middleware.GetRequestID(r.Context())
	if requestID != "" {
		w.Header().Set("X-Request-Id", requestID)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(env.Status)
	_ = json.NewEncoder(w).Encode(env)
}

// OK writes a success envelope with status 200.
func OK(w http.ResponseWriter, r *http.Request, message string, data interface{}) {
	write(w, r, models.Envelope{
		Success: true,
		Message: message,
		Data:    data,
		Status:  http.StatusOK,
	})
}

// Created writes a success envelope with status 201 and a Location header.
func Created(w http.ResponseWriter, r *http.Request, location, message string, data interface{}) {
	if location != "" {
		w.Header().Set("Location", location)
	}
	write(w, r, models.Envelope{
		Success: true,
		Message: message,
		Data:    data,
		Status:  http.StatusCreated,
	})
}

// Err writes a failure envelope from a service error, mapping the error
// kind to the HTTP status. Unclassified errors become 500s with a generic
// message so internals never leak.
func Err(w http.ResponseWriter, r *http.Request, err error) {
	msg := apperr.MessageOf(err)
	Fail(w, r, apperr.StatusOf(err), msg, msg)
}

// Fail writes a failure envelope with an explicit status, message and
// error detail.
func Fail(w http.ResponseWriter, r *http.Request, status int, message, detail string) {
	write(w, r, models.Envelope{
		Success: false,
		Message: message,
		Status:  status,
		Errors:  &models.ErrorDetail{Message: detail},
	})
}

// BadRequest writes a 400 failure envelope.
func BadRequest(w http.ResponseWriter, r *http.Request, detail string) {
	Fail(w, r, http.StatusBadRequest, "bad request", detail)
}

// ServiceUnavailable writes a 503 failure envelope.
func ServiceUnavailable(w http.ResponseWriter, r *http.Request, message, detail string) {
	Fail(w, r, http.StatusServiceUnavailable, message, detail)
}
