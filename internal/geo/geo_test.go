package geo

import (
	"math"
	"math/rand"
	"testing"
)

func TestDistanceKm_KnownPoints(t *testing.T) {
	// Kampala city center to Entebbe airport, roughly 35 km.
	kampala := Point{Lat: 0.3476, Lon: 32.5825}
	entebbe := Point{Lat: 0.0424, Lon: 32.4435}

	d := DistanceKm(kampala, entebbe)
	if d < 33 || d > 38 {
		t.Errorf("expected ~35km, got %.2f", d)
	}
}

func TestDistanceKm_ZeroForSamePoint(t *testing.T) {
	p := Point{Lat: 0.3, Lon: 32.5}
	if d := DistanceKm(p, p); d != 0 {
		t.Errorf("expected 0, got %f", d)
	}
}

func TestDestination_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		origin  Point
		bearing float64
		distKm  float64
	}{
		{"due north equator", Point{Lat: 0.3, Lon: 32.5}, 0, 1},
		{"due east equator", Point{Lat: 0.3, Lon: 32.5}, math.Pi / 2, 1},
		{"southwest mid-latitude", Point{Lat: 52.37, Lon: 4.89}, 4.1, 12.5},
		{"long hop", Point{Lat: -1.29, Lon: 36.82}, 1.0, 250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest := Destination(tt.origin, tt.bearing, tt.distKm)

			gotDist := DistanceKm(tt.origin, dest)
			if math.Abs(gotDist-tt.distKm) > 0.01*tt.distKm+0.001 {
				t.Errorf("distance round trip: want %.4f got %.4f", tt.distKm, gotDist)
			}

			gotBearing := InitialBearing(tt.origin, dest)
			diff := math.Abs(gotBearing - tt.bearing)
			if diff > math.Pi {
				diff = 2*math.Pi - diff
			}
			if diff > 0.01 {
				t.Errorf("bearing round trip: want %.4f got %.4f", tt.bearing, gotBearing)
			}
		})
	}
}

func TestRing_Contains(t *testing.T) {
	// Square around Kampala, ring vertices in [lon, lat] order.
	ring := Ring{
		{32.0, 0.0},
		{33.0, 0.0},
		{33.0, 1.0},
		{32.0, 1.0},
		{32.0, 0.0},
	}

	if !ring.Contains(Point{Lat: 0.5, Lon: 32.5}) {
		t.Error("expected interior point to be contained")
	}
	if ring.Contains(Point{Lat: 1.5, Lon: 32.5}) {
		t.Error("expected point north of ring to be outside")
	}
	if ring.Contains(Point{Lat: 0.5, Lon: 31.9}) {
		t.Error("expected point west of ring to be outside")
	}
}

func TestRing_Contains_DegenerateRing(t *testing.T) {
	ring := Ring{{32.0, 0.0}, {33.0, 0.0}}
	if ring.Contains(Point{Lat: 0.0, Lon: 32.5}) {
		t.Error("a two-vertex ring contains nothing")
	}
}

func TestApproximate_Validation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	if _, err := Approximate(91, 32.5, 1, nil, rng); err == nil {
		t.Error("expected error for latitude out of range")
	}
	if _, err := Approximate(0.3, 181, 1, nil, rng); err == nil {
		t.Error("expected error for longitude out of range")
	}
	if _, err := Approximate(0.3, 32.5, 0, nil, rng); err == nil {
		t.Error("expected error for zero distance")
	}
}

func TestApproximate_DisplacesByRequestedDistance(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	approx, err := Approximate(0.3, 32.5, 1, nil, rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d := DistanceKm(Point{Lat: 0.3, Lon: 32.5}, Point{Lat: approx.Latitude, Lon: approx.Longitude})
	if math.Abs(d-1) > 0.02 {
		t.Errorf("expected ~1km displacement, got %.4f", d)
	}
	if approx.DistanceInKm != 1 {
		t.Errorf("expected echoed distance 1, got %f", approx.DistanceInKm)
	}
}

func TestApproximate_ExplicitBearingIsUsed(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	bearing := math.Pi / 2

	approx, err := Approximate(0.3, 32.5, 2, &bearing, rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if approx.BearingInRadians != bearing {
		t.Errorf("expected echoed bearing %.4f, got %.4f", bearing, approx.BearingInRadians)
	}
	// Due east keeps latitude almost unchanged.
	if math.Abs(approx.Latitude-0.3) > 0.001 {
		t.Errorf("due east displacement moved latitude to %.4f", approx.Latitude)
	}
	if approx.Longitude <= 32.5 {
		t.Errorf("due east displacement should increase longitude, got %.4f", approx.Longitude)
	}
}

func TestApproximate_SeededSourceIsReproducible(t *testing.T) {
	a1, err := Approximate(0.3, 32.5, 1, nil, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a2, err := Approximate(0.3, 32.5, 1, nil, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a1.BearingInRadians != a2.BearingInRadians || a1.Latitude != a2.Latitude {
		t.Error("same seed should produce the same approximation")
	}
}
