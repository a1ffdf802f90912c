package geo

import (
	"math"
	"math/rand"

	"github.com/airsight/airsight/internal/apperr"
)

// Approximation is a displaced, privacy-preserving version of a true GPS
// position. The bearing and distance actually used are echoed so the
// displacement is auditable and reversible by privileged callers.
type Approximation struct {
	Latitude         float64 `json:"approximate_latitude"`
	Longitude        float64 `json:"approximate_longitude"`
	BearingInRadians float64 `json:"bearing_in_radians"`
	DistanceInKm     float64 `json:"approximate_distance_in_km"`
}

// Approximate displaces (lat, lon) by distanceKm along bearing. A nil
// bearing is drawn from rng, so callers that need reproducibility seed
// the source themselves.
func Approximate(lat, lon, distanceKm float64, bearing *float64, rng *rand.Rand) (*Approximation, error) {
	if lat < -90 || lat > 90 {
		return nil, apperr.Validation("latitude must be between -90 and 90")
	}
	if lon < -180 || lon > 180 {
		return nil, apperr.Validation("longitude must be between -180 and 180")
	}
	if distanceKm <= 0 {
		return nil, apperr.Validation("approximate_distance_in_km must be greater than zero")
	}

	b := 0.0
	if bearing != nil {
		b = *bearing
	} else {
		b = rng.Float64() * 2 * math.Pi
	}

	dest := Destination(Point{Lat: lat, Lon: lon}, b, distanceKm)
	return &Approximation{
		Latitude:         dest.Lat,
		Longitude:        dest.Lon,
		BearingInRadians: b,
		DistanceInKm:     distanceKm,
	}, nil
}
