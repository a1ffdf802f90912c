// Package metadata enriches a site payload with reverse-geocoded naming
// fields, altitude and a derived data-provider tag.
//
// The two vendor lookups carry different weight: a failed altitude lookup
// is logged and the field omitted, while a failed reverse geocode fails the
// whole generation. A site without an address is useless; a site without
// an altitude is merely incomplete.
package metadata

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/site"
)

// Address holds the components parsed from a reverse-geocode result.
type Address struct {
	Country       string
	Region        string
	District      string
	County        string
	SubCounty     string
	Parish        string
	Division      string
	Village       string
	City          string
	Town          string
	Street        string
	SearchName    string
	FormattedName string
	PlaceID       string
	SiteTags      []string
}

// Geocoder resolves a coordinate to address components.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (*Address, error)
}

// AltitudeProvider resolves a coordinate to an elevation in meters.
type AltitudeProvider interface {
	Altitude(ctx context.Context, lat, lon float64) (float64, error)
}

// DefaultHomeCountry controls the asymmetric location-name rule: inside
// the home country a site is named by district, elsewhere by region.
const DefaultHomeCountry = "Uganda"

// DefaultDataProviders maps a monitoring network to the display name of
// the organization providing its data.
var DefaultDataProviders = map[string]string{
	"airsight":  "AirSight",
	"kcca":      "KCCA",
	"usembassy": "US Embassy",
	"urban":     "Urban Better",
}

// GeneratorConfig holds configuration for the metadata generator.
type GeneratorConfig struct {
	Geocoder Geocoder
	Altitude AltitudeProvider

	// HomeCountry defaults to DefaultHomeCountry.
	HomeCountry string

	// DataProviders defaults to DefaultDataProviders.
	DataProviders map[string]string

	Logger zerolog.Logger
}

// Generator produces enriched site payloads.
type Generator struct {
	geocoder      Geocoder
	altitude      AltitudeProvider
	homeCountry   string
	dataProviders map[string]string
	logger        zerolog.Logger
}

// NewGenerator creates a metadata generator.
func NewGenerator(cfg GeneratorConfig) *Generator {
	homeCountry := cfg.HomeCountry
	if homeCountry == "" {
		homeCountry = DefaultHomeCountry
	}
	providers := cfg.DataProviders
	if providers == nil {
		providers = DefaultDataProviders
	}
	return &Generator{
		geocoder:      cfg.Geocoder,
		altitude:      cfg.Altitude,
		homeCountry:   homeCountry,
		dataProviders: providers,
		logger:        cfg.Logger,
	}
}

// Generate returns a copy of s enriched with vendor metadata. Fields the
// caller already supplied win over geocoder-derived values; site tags are
// the union of both with the geocoder's first. Nothing is persisted here.
func (g *Generator) Generate(ctx context.Context, s *site.Site) (*site.Site, error) {
	out := *s

	altitude, err := g.altitude.Altitude(ctx, s.Latitude, s.Longitude)
	if err != nil {
		g.logger.Error().Err(err).
			Float64("latitude", s.Latitude).
			Float64("longitude", s.Longitude).
			Msg("unable to retrieve the altitude for this site")
	} else {
		out.Altitude = &altitude
	}

	addr, err := g.geocoder.ReverseGeocode(ctx, s.Latitude, s.Longitude)
	if err != nil {
		return nil, err
	}

	mergeAddress(&out, addr)
	out.SiteTags = append(append([]string{}, addr.SiteTags...), s.SiteTags...)
	out.LocationName = g.locationName(&out)
	out.DataProvider = g.dataProviders[out.Network]

	return &out, nil
}

// locationName derives the display location. Only the home country gets
// district-level naming; everywhere else uses the region.
func (g *Generator) locationName(s *site.Site) string {
	if s.Country == g.homeCountry {
		return s.District + ", " + s.Country
	}
	return s.Region + ", " + s.Country
}

func mergeAddress(s *site.Site, addr *Address) {
	setIfEmpty(&s.Country, addr.Country)
	setIfEmpty(&s.Region, addr.Region)
	setIfEmpty(&s.District, addr.District)
	setIfEmpty(&s.County, addr.County)
	setIfEmpty(&s.SubCounty, addr.SubCounty)
	setIfEmpty(&s.Parish, addr.Parish)
	setIfEmpty(&s.Village, addr.Village)
	setIfEmpty(&s.City, addr.City)
	setIfEmpty(&s.Town, addr.Town)
	setIfEmpty(&s.Street, addr.Street)
	setIfEmpty(&s.SearchName, addr.SearchName)
	setIfEmpty(&s.FormattedName, addr.FormattedName)
	setIfEmpty(&s.GooglePlaceID, addr.PlaceID)
}

func setIfEmpty(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}
