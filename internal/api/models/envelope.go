// Package models defines the request and response types for the registry API.
package models

import (
	"encoding/json"
	"net/http"
)

// ErrorDetail carries the failure message inside an envelope.
type ErrorDetail struct {
	Message string `json:"message"`
}

// Envelope is the uniform response structure returned by every endpoint.
// Clients branch on Success only; Status mirrors the HTTP status code.
type Envelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    interface{}  `json:"data,omitempty"`
	Status  int          `json:"status"`
	Errors  *ErrorDetail `json:"errors,omitempty"`
}

// NewError builds a failure envelope.
func NewError(status int, message string) Envelope {
	return Envelope{
		Success: false,
		Message: message,
		Status:  status,
		Errors:  &ErrorDetail{Message: message},
	}
}

// Write serializes the envelope to the response writer. Used by
// middleware that cannot depend on the response package.
func (e Envelope) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(e)
}
