package site

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/airqloud"
	"github.com/airsight/airsight/internal/apperr"
	"github.com/airsight/airsight/internal/counter"
	"github.com/airsight/airsight/internal/geo"
)

// passthroughMetadata returns the site with a country stamped, or a
// configured error.
type passthroughMetadata struct {
	err error
}

func (m *passthroughMetadata) Generate(_ context.Context, s *Site) (*Site, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := *s
	if out.Country == "" {
		out.Country = "Uganda"
	}
	if out.District == "" {
		out.District = "Kampala"
	}
	out.LocationName = out.District + ", " + out.Country
	return &out, nil
}

type mockStations struct {
	stations []Station
	err      error
}

func (m *mockStations) ListStations(_ context.Context) ([]Station, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.stations, nil
}

type recordingPublisher struct {
	published []*Site
	err       error
}

func (p *recordingPublisher) PublishSiteCreated(_ context.Context, s *Site) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, s)
	return nil
}

type fixture struct {
	service   *Service
	sites     *InMemoryRepository
	counters  *counter.InMemoryRepository
	airqlouds *airqloud.InMemoryRepository
	stations  *mockStations
	publisher *recordingPublisher
	metadata  *passthroughMetadata
}

func newFixture() *fixture {
	f := &fixture{
		sites:     NewInMemoryRepository(),
		counters:  counter.NewInMemoryRepository(),
		airqlouds: airqloud.NewInMemoryRepository(),
		stations:  &mockStations{},
		publisher: &recordingPublisher{},
		metadata:  &passthroughMetadata{},
	}
	f.counters.Seed("airsight", 0)
	f.service = NewService(ServiceConfig{
		Sites:     f.sites,
		Counters:  f.counters,
		AirQlouds: f.airqlouds,
		Metadata:  f.metadata,
		Stations:  f.stations,
		Publisher: f.publisher,
		Rand:      rand.New(rand.NewSource(1)),
		Logger:    zerolog.Nop(),
	})
	return f
}

func validCreateRequest() CreateRequest {
	return CreateRequest{
		Name:                    "Kololo rooftop",
		Latitude:                0.3,
		Longitude:               32.5,
		ApproximateDistanceInKm: 1,
		Network:                 "airsight",
	}
}

func TestCreate_RegistersSite(t *testing.T) {
	f := newFixture()
	f.counters.Seed("airsight", 7)

	created, err := f.service.Create(context.Background(), "airsight", validCreateRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.GeneratedName != "site_8" {
		t.Errorf("expected generated name site_8 after counter 7, got %q", created.GeneratedName)
	}
	if created.LatLong != "0.3_32.5" {
		t.Errorf("expected lat_long 0.3_32.5, got %q", created.LatLong)
	}

	displacement := geo.DistanceKm(
		geo.Point{Lat: 0.3, Lon: 32.5},
		geo.Point{Lat: created.ApproximateLatitude, Lon: created.ApproximateLongitude},
	)
	if math.Abs(displacement-1) > 0.02 {
		t.Errorf("expected ~1km displacement, got %.4f", displacement)
	}

	if len(f.publisher.published) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(f.publisher.published))
	}
	if f.publisher.published[0].ID != created.ID {
		t.Error("published record should be the created site")
	}
}

func TestCreate_InvalidNameShortCircuits(t *testing.T) {
	f := newFixture()

	req := validCreateRequest()
	req.Name = "abc" // too short

	_, err := f.service.Create(context.Background(), "airsight", req)
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	// The counter must not have been touched.
	if n, _ := f.counters.Next(context.Background(), "airsight"); n != 1 {
		t.Errorf("counter was incremented by a failed registration, next=%d", n)
	}
}

func TestCreate_MetadataFailureNeverPersists(t *testing.T) {
	f := newFixture()
	f.metadata.err = apperr.BadGateway("unable to get the site address details", errors.New("geocoder down"))

	_, err := f.service.Create(context.Background(), "airsight", validCreateRequest())
	if apperr.KindOf(err) != apperr.KindBadGateway {
		t.Fatalf("expected bad gateway, got %v", err)
	}

	sites, _ := f.sites.List(context.Background(), "airsight", Filter{})
	if len(sites) != 0 {
		t.Error("registrar persisted a site despite metadata failure")
	}
	if len(f.publisher.published) != 0 {
		t.Error("registrar published despite metadata failure")
	}
}

func TestCreate_MissingCounterFails(t *testing.T) {
	f := newFixture()

	_, err := f.service.Create(context.Background(), "othertenant", validCreateRequest())
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for missing counter, got %v", err)
	}
}

func TestCreate_PublishFailureDoesNotFailRegistration(t *testing.T) {
	f := newFixture()
	f.publisher.err = errors.New("broker unreachable")

	created, err := f.service.Create(context.Background(), "airsight", validCreateRequest())
	if err != nil {
		t.Fatalf("registration failed on publish error: %v", err)
	}

	sites, _ := f.sites.List(context.Background(), "airsight", Filter{ID: created.ID})
	if len(sites) != 1 {
		t.Error("site should be persisted even when the event publish fails")
	}
}

func TestList_FiltersSentinelRecords(t *testing.T) {
	f := newFixture()

	_, _ = f.sites.Insert(context.Background(), &Site{Tenant: "airsight", Name: "good site", LatLong: "0.3_32.5"})
	_, _ = f.sites.Insert(context.Background(), &Site{Tenant: "airsight", Name: "placeholder", LatLong: LatLongSentinel})

	sites, err := f.service.List(context.Background(), "airsight", Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sites) != 1 || sites[0].Name != "good site" {
		t.Errorf("expected only the non-sentinel site, got %d records", len(sites))
	}
}

func TestFindAirQlouds_EmptyRegionListIsSuccess(t *testing.T) {
	f := newFixture()
	s, _ := f.sites.Insert(context.Background(), &Site{Tenant: "airsight", Latitude: 0.5, Longitude: 32.5, LatLong: "0.5_32.5"})

	ids, err := f.service.FindAirQlouds(context.Background(), "airsight", Filter{ID: s.ID})
	if err != nil {
		t.Fatalf("expected success with no airqlouds, got %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected empty id list, got %v", ids)
	}
}

func TestFindAirQlouds_AmbiguousSiteIsNotFound(t *testing.T) {
	f := newFixture()

	// Zero matches.
	_, err := f.service.FindAirQlouds(context.Background(), "airsight", Filter{ID: "missing"})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("expected not found for zero matches, got %v", err)
	}

	// Multiple matches.
	_, _ = f.sites.Insert(context.Background(), &Site{Tenant: "airsight", Name: "dup", LatLong: "1_1"})
	_, _ = f.sites.Insert(context.Background(), &Site{Tenant: "airsight", Name: "dup", LatLong: "2_2"})
	_, err = f.service.FindAirQlouds(context.Background(), "airsight", Filter{Name: "dup"})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("expected not found for multiple matches, got %v", err)
	}
}

func TestFindAirQlouds_ReturnsContainingRegions(t *testing.T) {
	f := newFixture()
	s, _ := f.sites.Insert(context.Background(), &Site{Tenant: "airsight", Latitude: 0.5, Longitude: 32.5, LatLong: "0.5_32.5"})

	inside, _ := f.airqlouds.Insert(context.Background(), &airqloud.AirQloud{
		Tenant: "airsight",
		Name:   "kampala",
		Ring:   geo.Ring{{32, 0}, {33, 0}, {33, 1}, {32, 1}, {32, 0}},
	})
	_, _ = f.airqlouds.Insert(context.Background(), &airqloud.AirQloud{
		Tenant: "airsight",
		Name:   "gulu",
		Ring:   geo.Ring{{32, 2}, {33, 2}, {33, 3}, {32, 3}, {32, 2}},
	})

	ids, err := f.service.FindAirQlouds(context.Background(), "airsight", Filter{ID: s.ID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 1 || ids[0] != inside.ID {
		t.Errorf("expected only the containing airqloud, got %v", ids)
	}
}

func TestFindNearestStation_PicksMinimalDistance(t *testing.T) {
	f := newFixture()
	s, _ := f.sites.Insert(context.Background(), &Site{Tenant: "airsight", Latitude: 0.3, Longitude: 32.5, LatLong: "0.3_32.5"})

	f.stations.stations = []Station{
		{ID: "TA001", Code: "TA001", Latitude: 1.0, Longitude: 33.0, Elevation: 1100, Name: "far"},
		{ID: "TA002", Code: "TA002", Latitude: 0.31, Longitude: 32.51, Elevation: 1200, Name: "near"},
	}

	ref, err := f.service.FindNearestStation(context.Background(), "airsight", Filter{ID: s.ID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.ID != "TA002" {
		t.Errorf("expected nearest station TA002, got %s", ref.ID)
	}
	if ref.Code == "" || ref.Latitude == 0 || ref.Longitude == 0 {
		t.Error("trimmed station should keep code and position")
	}
}

func TestFindNearestStation_TieGoesToRosterOrder(t *testing.T) {
	f := newFixture()
	s, _ := f.sites.Insert(context.Background(), &Site{Tenant: "airsight", Latitude: 0, Longitude: 32, LatLong: "0_32"})

	// Both stations equidistant from the site.
	f.stations.stations = []Station{
		{ID: "first", Latitude: 0, Longitude: 32.1},
		{ID: "second", Latitude: 0, Longitude: 31.9},
	}

	ref, err := f.service.FindNearestStation(context.Background(), "airsight", Filter{ID: s.ID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.ID != "first" {
		t.Errorf("tie should go to the first roster entry, got %s", ref.ID)
	}
}

func TestFindNearestStation_VendorFailures(t *testing.T) {
	f := newFixture()
	s, _ := f.sites.Insert(context.Background(), &Site{Tenant: "airsight", Latitude: 0.3, Longitude: 32.5, LatLong: "0.3_32.5"})

	f.stations.err = apperr.BadGateway("Bad Gateway Error", errors.New("connection refused"))
	if _, err := f.service.FindNearestStation(context.Background(), "airsight", Filter{ID: s.ID}); apperr.KindOf(err) != apperr.KindBadGateway {
		t.Errorf("expected bad gateway, got %v", err)
	}

	f.stations.err = nil
	f.stations.stations = nil
	if _, err := f.service.FindNearestStation(context.Background(), "airsight", Filter{ID: s.ID}); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("expected not found for empty roster, got %v", err)
	}
}

func TestFindNearestSites_RadiusFilter(t *testing.T) {
	f := newFixture()
	_, _ = f.sites.Insert(context.Background(), &Site{Tenant: "airsight", Name: "close", Latitude: 0.305, Longitude: 32.5, LatLong: "0.305_32.5"})
	_, _ = f.sites.Insert(context.Background(), &Site{Tenant: "airsight", Name: "distant", Latitude: 2, Longitude: 33, LatLong: "2_33"})

	near, err := f.service.FindNearestSites(context.Background(), "airsight", 0.3, 32.5, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(near) != 1 || near[0].Name != "close" {
		t.Fatalf("expected only the close site, got %d", len(near))
	}
	if near[0].DistanceKm <= 0 || near[0].DistanceKm >= 5 {
		t.Errorf("distance annotation out of range: %f", near[0].DistanceKm)
	}
}

func TestDelete_IsDisabled(t *testing.T) {
	f := newFixture()
	if err := f.service.Delete(context.Background(), "airsight", Filter{ID: "any"}); !errors.Is(err, ErrDeletionDisabled) {
		t.Errorf("expected ErrDeletionDisabled, got %v", err)
	}
}

func TestRefresh_DerivesSanitizedNameFromDistrict(t *testing.T) {
	f := newFixture()
	s, _ := f.sites.Insert(context.Background(), &Site{
		Tenant:        "airsight",
		GeneratedName: "site_3",
		District:      "Kampala",
		Latitude:      0.3,
		Longitude:     32.5,
		LatLong:       "0.3_32.5",
	})
	f.stations.stations = []Station{{ID: "TA001", Latitude: 0.31, Longitude: 32.51}}

	refreshed, err := f.service.Refresh(context.Background(), "airsight", s.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if refreshed.Name != "kampala" {
		t.Errorf("expected sanitized name kampala, got %q", refreshed.Name)
	}
	if refreshed.GeneratedName != "site_3" {
		t.Errorf("existing generated name must be kept, got %q", refreshed.GeneratedName)
	}
	if refreshed.NearestStation == nil || refreshed.NearestStation.ID != "TA001" {
		t.Errorf("expected nearest station association, got %+v", refreshed.NearestStation)
	}
}

func TestRefresh_MintsGeneratedNameWhenAbsent(t *testing.T) {
	f := newFixture()
	f.counters.Seed("airsight", 11)
	s, _ := f.sites.Insert(context.Background(), &Site{
		Tenant:    "airsight",
		Name:      "valid name here",
		Latitude:  0.3,
		Longitude: 32.5,
		LatLong:   "0.3_32.5",
	})

	refreshed, err := f.service.Refresh(context.Background(), "airsight", s.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if refreshed.GeneratedName != "site_12" {
		t.Errorf("expected minted name site_12, got %q", refreshed.GeneratedName)
	}
}

func TestRefresh_DegradesWhenResolversFail(t *testing.T) {
	f := newFixture()
	s, _ := f.sites.Insert(context.Background(), &Site{
		Tenant:        "airsight",
		Name:          "valid name here",
		GeneratedName: "site_1",
		Latitude:      0.3,
		Longitude:     32.5,
		LatLong:       "0.3_32.5",
	})
	f.stations.err = apperr.BadGateway("Bad Gateway Error", errors.New("vendor down"))

	refreshed, err := f.service.Refresh(context.Background(), "airsight", s.ID)
	if err != nil {
		t.Fatalf("refresh should degrade gracefully, got %v", err)
	}
	if refreshed.NearestStation != nil {
		t.Error("failed station lookup must not set an association")
	}
}

func TestRefresh_FailsHardOnMetadataFailure(t *testing.T) {
	f := newFixture()
	s, _ := f.sites.Insert(context.Background(), &Site{
		Tenant:        "airsight",
		Name:          "valid name here",
		GeneratedName: "site_1",
		Latitude:      0.3,
		Longitude:     32.5,
		LatLong:       "0.3_32.5",
	})
	f.metadata.err = apperr.BadGateway("unable to get the site address details", errors.New("geocoder down"))

	if _, err := f.service.Refresh(context.Background(), "airsight", s.ID); apperr.KindOf(err) != apperr.KindBadGateway {
		t.Errorf("expected metadata failure to propagate, got %v", err)
	}
}
