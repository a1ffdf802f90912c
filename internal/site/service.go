package site

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/airqloud"
	"github.com/airsight/airsight/internal/apperr"
	"github.com/airsight/airsight/internal/counter"
	"github.com/airsight/airsight/internal/geo"
)

// MetadataGenerator enriches a site payload with vendor metadata.
type MetadataGenerator interface {
	Generate(ctx context.Context, s *Site) (*Site, error)
}

// StationLister fetches the full vendor weather-station roster. There is
// no caching layer; every call re-fetches.
type StationLister interface {
	ListStations(ctx context.Context) ([]Station, error)
}

// EventPublisher publishes created site records to the sites topic.
type EventPublisher interface {
	PublishSiteCreated(ctx context.Context, s *Site) error
}

// CreateRequest is the payload for registering a site.
type CreateRequest struct {
	Name                    string   `json:"name"`
	Latitude                float64  `json:"latitude"`
	Longitude               float64  `json:"longitude"`
	ApproximateDistanceInKm float64  `json:"approximate_distance_in_km"`
	Bearing                 *float64 `json:"bearing,omitempty"`
	Network                 string   `json:"network,omitempty"`
	SiteTags                []string `json:"site_tags,omitempty"`
}

// ServiceConfig holds the dependencies of the site service. Vendor
// clients are injected, never global.
type ServiceConfig struct {
	Sites     Repository
	Counters  counter.Repository
	AirQlouds airqloud.Repository
	Metadata  MetadataGenerator
	Stations  StationLister
	Publisher EventPublisher

	// Rand supplies bearings when callers omit one. Seed it in tests.
	Rand *rand.Rand

	Logger zerolog.Logger
}

// Service orchestrates site registration, refresh and lookups.
type Service struct {
	sites     Repository
	counters  counter.Repository
	airqlouds airqloud.Repository
	metadata  MetadataGenerator
	stations  StationLister
	publisher EventPublisher
	rand      *rand.Rand
	logger    zerolog.Logger
}

// NewService creates a new site service.
func NewService(cfg ServiceConfig) *Service {
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		sites:     cfg.Sites,
		counters:  cfg.Counters,
		airqlouds: cfg.AirQlouds,
		metadata:  cfg.Metadata,
		stations:  cfg.Stations,
		publisher: cfg.Publisher,
		rand:      rng,
		logger:    cfg.Logger,
	}
}

// ApproximateCoordinates displaces the given position for public display.
func (s *Service) ApproximateCoordinates(lat, lon, distanceKm float64, bearing *float64) (*geo.Approximation, error) {
	return geo.Approximate(lat, lon, distanceKm, bearing, s.rand)
}

// Create registers a new site. The pipeline short-circuits on the first
// failing step; persistence is the commit point and the event publish
// afterwards is best-effort.
func (s *Service) Create(ctx context.Context, tenant string, req CreateRequest) (*Site, error) {
	if !ValidName(req.Name) {
		return nil, apperr.Validation("site name is invalid, please check documentation")
	}

	approx, err := s.ApproximateCoordinates(req.Latitude, req.Longitude, req.ApproximateDistanceInKm, req.Bearing)
	if err != nil {
		return nil, err
	}

	count, err := s.counters.Next(ctx, tenant)
	if err != nil {
		if errors.Is(err, counter.ErrCounterNotFound) {
			s.logger.Error().Str("tenant", tenant).Msg("counter document missing, create it before registering sites")
			return nil, apperr.Validation("unable to generate unique name for this site, contact support")
		}
		return nil, apperr.Internal("unable to generate unique name for this site", err)
	}

	candidate := &Site{
		Tenant:                  tenant,
		Name:                    req.Name,
		GeneratedName:           SequentialName(count),
		Latitude:                req.Latitude,
		Longitude:               req.Longitude,
		ApproximateLatitude:     approx.Latitude,
		ApproximateLongitude:    approx.Longitude,
		BearingInRadians:        approx.BearingInRadians,
		ApproximateDistanceInKm: approx.DistanceInKm,
		LatLong:                 LatLong(req.Latitude, req.Longitude),
		Network:                 req.Network,
		SiteTags:                req.SiteTags,
	}

	enriched, err := s.metadata.Generate(ctx, candidate)
	if err != nil {
		return nil, err
	}

	created, err := s.sites.Insert(ctx, enriched)
	if err != nil {
		return nil, apperr.Internal("unable to create site", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishSiteCreated(ctx, created); err != nil {
			s.logger.Error().Err(err).
				Str("site", created.ID).
				Msg("failed to publish site creation event")
		}
	}

	return created, nil
}

// List retrieves sites matching the filter, excluding sentinel records.
func (s *Service) List(ctx context.Context, tenant string, f Filter) ([]*Site, error) {
	sites, err := s.sites.List(ctx, tenant, f)
	if err != nil {
		return nil, apperr.Internal("unable to list sites", err)
	}

	out := make([]*Site, 0, len(sites))
	for _, site := range sites {
		if site.LatLong == LatLongSentinel {
			continue
		}
		out = append(out, site)
	}
	return out, nil
}

// Update modifies a stored site directly.
func (s *Service) Update(ctx context.Context, site *Site) (*Site, error) {
	updated, err := s.sites.Update(ctx, site)
	if err != nil {
		if errors.Is(err, ErrSiteNotFound) {
			return nil, apperr.NotFound("site not found")
		}
		return nil, apperr.Internal("unable to update site", err)
	}
	return updated, nil
}

// Delete is disabled; it fails unconditionally.
func (s *Service) Delete(_ context.Context, _ string, _ Filter) error {
	return ErrDeletionDisabled
}

// resolveOne resolves a filter to exactly one site. Zero and multiple
// matches are both resolution failures; ambiguity is not disambiguated.
func (s *Service) resolveOne(ctx context.Context, tenant string, f Filter) (*Site, error) {
	sites, err := s.List(ctx, tenant, f)
	if err != nil {
		return nil, err
	}
	if len(sites) != 1 {
		return nil, apperr.NotFound("unable to find one match for this site")
	}
	return sites[0], nil
}

// FindAirQlouds returns the ids of every AirQloud whose polygon contains
// the resolved site's position. An empty result is a success.
func (s *Service) FindAirQlouds(ctx context.Context, tenant string, f Filter) ([]string, error) {
	resolved, err := s.resolveOne(ctx, tenant, f)
	if err != nil {
		return nil, err
	}

	airqlouds, err := s.airqlouds.List(ctx, tenant)
	if err != nil {
		return nil, apperr.Internal("unable to list airqlouds", err)
	}

	point := geo.Point{Lat: resolved.Latitude, Lon: resolved.Longitude}
	ids := []string{}
	for _, a := range airqlouds {
		if a.Ring.Contains(point) {
			ids = append(ids, a.ID)
		}
	}
	return ids, nil
}

// FindNearestStation resolves the site and returns the vendor station
// nearest to it, trimmed to identity and position. Roster order breaks
// ties: the first minimal-distance station wins.
func (s *Service) FindNearestStation(ctx context.Context, tenant string, f Filter) (*StationRef, error) {
	resolved, err := s.resolveOne(ctx, tenant, f)
	if err != nil {
		return nil, err
	}

	stations, err := s.stations.ListStations(ctx)
	if err != nil {
		return nil, err
	}
	if len(stations) == 0 {
		return nil, apperr.NotFound("List of stations is empty")
	}

	point := geo.Point{Lat: resolved.Latitude, Lon: resolved.Longitude}
	nearest := stations[0]
	best := geo.DistanceKm(point, geo.Point{Lat: nearest.Latitude, Lon: nearest.Longitude})
	for _, st := range stations[1:] {
		d := geo.DistanceKm(point, geo.Point{Lat: st.Latitude, Lon: st.Longitude})
		if d < best {
			best = d
			nearest = st
		}
	}

	return &StationRef{
		ID:        nearest.ID,
		Code:      nearest.Code,
		Latitude:  nearest.Latitude,
		Longitude: nearest.Longitude,
	}, nil
}

// FindNearestSites returns all sites within radiusKm of the given point,
// each annotated with its distance.
func (s *Service) FindNearestSites(ctx context.Context, tenant string, lat, lon, radiusKm float64) ([]*SiteWithDistance, error) {
	sites, err := s.List(ctx, tenant, Filter{})
	if err != nil {
		return nil, err
	}

	point := geo.Point{Lat: lat, Lon: lon}
	out := []*SiteWithDistance{}
	for _, site := range sites {
		d := geo.DistanceKm(point, geo.Point{Lat: site.Latitude, Lon: site.Longitude})
		if d < radiusKm {
			out = append(out, &SiteWithDistance{Site: site, DistanceKm: d})
		}
	}
	return out, nil
}

// Refresh re-derives a site's name, approximate position, metadata and
// associations, then persists the result as an update. AirQloud and
// station resolution degrade gracefully; metadata generation does not.
func (s *Service) Refresh(ctx context.Context, tenant, id string) (*Site, error) {
	resolved, err := s.resolveOne(ctx, tenant, Filter{ID: id})
	if err != nil {
		return nil, err
	}

	working := *resolved

	if working.Name == "" {
		available := PickAvailableName(working.Parish, working.County, working.District)
		working.Name = SanitizeName(available)
	}

	if working.ApproximateDistanceInKm > 0 {
		bearing := working.BearingInRadians
		approx, err := s.ApproximateCoordinates(working.Latitude, working.Longitude, working.ApproximateDistanceInKm, &bearing)
		if err != nil {
			return nil, err
		}
		working.ApproximateLatitude = approx.Latitude
		working.ApproximateLongitude = approx.Longitude
		working.BearingInRadians = approx.BearingInRadians
	}

	working.LatLong = LatLong(working.Latitude, working.Longitude)

	if working.GeneratedName == "" {
		count, err := s.counters.Next(ctx, tenant)
		if err != nil {
			if errors.Is(err, counter.ErrCounterNotFound) {
				return nil, apperr.Validation("unable to generate unique name for this site, contact support")
			}
			return nil, apperr.Internal("unable to generate unique name for this site", err)
		}
		working.GeneratedName = SequentialName(count)
	}

	if ids, err := s.FindAirQlouds(ctx, tenant, Filter{ID: id}); err != nil {
		s.logger.Warn().Err(err).Str("site", id).Msg("unable to resolve airqlouds during refresh")
	} else {
		working.AirQlouds = ids
	}

	if station, err := s.FindNearestStation(ctx, tenant, Filter{ID: id}); err != nil {
		s.logger.Warn().Err(err).Str("site", id).Msg("unable to find the nearest weather station during refresh")
	} else {
		working.NearestStation = station
	}

	enriched, err := s.metadata.Generate(ctx, &working)
	if err != nil {
		return nil, err
	}

	return s.Update(ctx, enriched)
}
