// Package device provides registration and management of the physical
// air-quality monitors deployed at sites.
package device

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrDeviceNotFound = errors.New("device not found")
)

// Status represents a monitor's deployment state.
type Status string

const (
	StatusNotDeployed Status = "not deployed"
	StatusDeployed    Status = "deployed"
	StatusRecalled    Status = "recalled"
)

// Device represents a registered air-quality monitor.
type Device struct {
	ID     string `json:"_id"`
	Tenant string `json:"-"`

	Name    string `json:"name"`
	SiteID  string `json:"site_id,omitempty"`
	Network string `json:"network,omitempty"`
	Status  Status `json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ListOptions narrows device listings. Zero-value fields are ignored.
type ListOptions struct {
	SiteID string
	Status Status
	Limit  int
}
