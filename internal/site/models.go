// Package site provides monitoring-site registration, refresh and lookup.
//
// A site is a physical monitoring location. Its true GPS position is kept
// alongside a displaced approximate position that is safe to publish, a
// generated sequential name minted from a per-tenant counter, and metadata
// enriched from the reverse geocoder and elevation vendor. Sites are
// associated with the AirQlouds whose polygons contain them and with the
// nearest weather station from the vendor roster.
package site

import (
	"errors"
	"strconv"
	"time"
)

// Service errors.
var (
	ErrSiteNotFound = errors.New("site not found")

	// ErrDeletionDisabled is returned by Delete unconditionally; the
	// feature is switched off pending a product decision.
	ErrDeletionDisabled = errors.New("feature temporarily disabled")
)

// LatLongSentinel marks clearly incomplete default records. Sites whose
// lat_long equals this value are filtered out of every listing.
const LatLongSentinel = "4_4"

// StationRef is the trimmed nearest-weather-station record stored on a
// site: only identity and position survive from the vendor roster entry.
type StationRef struct {
	ID        string  `json:"id"`
	Code      string  `json:"code"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Station is a full vendor weather-station roster entry. Stations are
// fetched fresh per request and never persisted.
type Station struct {
	ID             string  `json:"id"`
	Code           string  `json:"code"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	Elevation      float64 `json:"elevation"`
	CountryCode    string  `json:"countrycode"`
	Timezone       string  `json:"timezone"`
	TimezoneOffset int     `json:"timezoneoffset"`
	Name           string  `json:"name"`
	Type           string  `json:"type"`
}

// Site represents a monitoring location record.
type Site struct {
	ID     string `json:"_id"`
	Tenant string `json:"-"`

	// Name is caller supplied; GeneratedName is the minted sequential
	// identity (site_<n>) and is immutable once assigned.
	Name          string `json:"name"`
	GeneratedName string `json:"generated_name"`

	// True position.
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	// Privacy-preserving public position.
	ApproximateLatitude     float64 `json:"approximate_latitude"`
	ApproximateLongitude    float64 `json:"approximate_longitude"`
	BearingInRadians        float64 `json:"bearing_in_radians"`
	ApproximateDistanceInKm float64 `json:"approximate_distance_in_km"`

	// LatLong is the composite natural dedup key "<lat>_<lon>".
	LatLong string `json:"lat_long"`

	// Geocoder-derived naming fields.
	Country       string `json:"country,omitempty"`
	Region        string `json:"region,omitempty"`
	District      string `json:"district,omitempty"`
	County        string `json:"county,omitempty"`
	SubCounty     string `json:"sub_county,omitempty"`
	Parish        string `json:"parish,omitempty"`
	Village       string `json:"village,omitempty"`
	City          string `json:"city,omitempty"`
	Town          string `json:"town,omitempty"`
	Street        string `json:"street,omitempty"`
	SearchName    string `json:"search_name,omitempty"`
	FormattedName string `json:"formatted_name,omitempty"`
	LocationName  string `json:"location_name,omitempty"`
	GooglePlaceID string `json:"google_place_id,omitempty"`

	SiteTags []string `json:"site_tags,omitempty"`

	// Altitude is nil when the elevation lookup failed or never ran.
	Altitude *float64 `json:"altitude,omitempty"`

	Network      string `json:"network,omitempty"`
	DataProvider string `json:"data_provider,omitempty"`

	// AirQlouds holds the ids of polygon regions containing the site.
	AirQlouds []string `json:"airqlouds,omitempty"`

	// NearestStation is the trimmed nearest vendor station, if resolved.
	NearestStation *StationRef `json:"nearest_tahmo_station,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SiteWithDistance annotates a site with its distance from a query point.
type SiteWithDistance struct {
	*Site
	DistanceKm float64 `json:"distance"`
}

// LatLong formats the composite "<lat>_<lon>" key.
func LatLong(lat, lon float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "_" + strconv.FormatFloat(lon, 'f', -1, 64)
}
