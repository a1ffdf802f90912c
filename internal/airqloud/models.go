// Package airqloud provides the named polygon geofences that group sites
// by region.
package airqloud

import (
	"errors"
	"time"

	"github.com/airsight/airsight/internal/geo"
)

// Repository errors.
var (
	ErrAirQloudNotFound = errors.New("airqloud not found")
)

// AirQloud is a named polygon region. A site belongs to the AirQloud when
// its point falls inside Ring, the polygon's first coordinate ring.
type AirQloud struct {
	ID         string    `json:"_id"`
	Tenant     string    `json:"-"`
	Name       string    `json:"name"`
	AdminLevel string    `json:"admin_level,omitempty"`
	Ring       geo.Ring  `json:"location"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
