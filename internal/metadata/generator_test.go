package metadata

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/apperr"
	"github.com/airsight/airsight/internal/site"
)

type mockGeocoder struct {
	addr *Address
	err  error
}

func (m *mockGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (*Address, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.addr, nil
}

type mockAltitude struct {
	altitude float64
	err      error
}

func (m *mockAltitude) Altitude(_ context.Context, _, _ float64) (float64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.altitude, nil
}

func kampalaAddress() *Address {
	return &Address{
		Country:       "Uganda",
		Region:        "Central Region",
		District:      "Kampala",
		Parish:        "Kololo",
		FormattedName: "Kololo, Kampala, Uganda",
		PlaceID:       "ChIJexample",
		SiteTags:      []string{"political", "sublocality"},
	}
}

func newGenerator(gc Geocoder, alt AltitudeProvider) *Generator {
	return NewGenerator(GeneratorConfig{
		Geocoder: gc,
		Altitude: alt,
		Logger:   zerolog.Nop(),
	})
}

func TestGenerate_MergesAddressAndAltitude(t *testing.T) {
	gen := newGenerator(
		&mockGeocoder{addr: kampalaAddress()},
		&mockAltitude{altitude: 1190.5},
	)

	in := &site.Site{
		Latitude:  0.3,
		Longitude: 32.5,
		Network:   "airsight",
		SiteTags:  []string{"rooftop"},
	}

	out, err := gen.Generate(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.Country != "Uganda" || out.District != "Kampala" {
		t.Errorf("address not merged: %+v", out)
	}
	if out.Altitude == nil || *out.Altitude != 1190.5 {
		t.Errorf("expected altitude 1190.5, got %v", out.Altitude)
	}
	if out.DataProvider != "AirSight" {
		t.Errorf("expected data provider AirSight, got %q", out.DataProvider)
	}
	// Google tags come first, caller tags after.
	want := []string{"political", "sublocality", "rooftop"}
	if len(out.SiteTags) != len(want) {
		t.Fatalf("expected %d tags, got %v", len(want), out.SiteTags)
	}
	for i, tag := range want {
		if out.SiteTags[i] != tag {
			t.Errorf("tag %d: want %q got %q", i, tag, out.SiteTags[i])
		}
	}
	// Input must be untouched.
	if in.Country != "" || in.Altitude != nil {
		t.Error("Generate mutated its input")
	}
}

func TestGenerate_AltitudeFailureIsNonFatal(t *testing.T) {
	gen := newGenerator(
		&mockGeocoder{addr: kampalaAddress()},
		&mockAltitude{err: errors.New("elevation vendor down")},
	)

	out, err := gen.Generate(context.Background(), &site.Site{Latitude: 0.3, Longitude: 32.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Altitude != nil {
		t.Errorf("expected altitude omitted, got %v", *out.Altitude)
	}
	if out.Country != "Uganda" {
		t.Error("address merge should still happen when altitude fails")
	}
}

func TestGenerate_GeocodeFailureIsFatal(t *testing.T) {
	gen := newGenerator(
		&mockGeocoder{err: apperr.BadGateway("unable to get the site address details", errors.New("timeout"))},
		&mockAltitude{altitude: 1000},
	)

	_, err := gen.Generate(context.Background(), &site.Site{Latitude: 0.3, Longitude: 32.5})
	if err == nil {
		t.Fatal("expected error when reverse geocode fails")
	}
	if apperr.KindOf(err) != apperr.KindBadGateway {
		t.Errorf("expected bad gateway kind, got %v", apperr.KindOf(err))
	}
}

func TestGenerate_LocationNameRule(t *testing.T) {
	tests := []struct {
		name string
		addr *Address
		want string
	}{
		{
			"home country uses district",
			&Address{Country: "Uganda", Region: "Central Region", District: "Wakiso"},
			"Wakiso, Uganda",
		},
		{
			"foreign country uses region",
			&Address{Country: "Kenya", Region: "Nairobi County", District: "Westlands"},
			"Nairobi County, Kenya",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := newGenerator(&mockGeocoder{addr: tt.addr}, &mockAltitude{altitude: 1})
			out, err := gen.Generate(context.Background(), &site.Site{Latitude: 0.3, Longitude: 32.5})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.LocationName != tt.want {
				t.Errorf("want %q got %q", tt.want, out.LocationName)
			}
		})
	}
}

func TestGenerate_CallerFieldsWin(t *testing.T) {
	gen := newGenerator(&mockGeocoder{addr: kampalaAddress()}, &mockAltitude{altitude: 1})

	out, err := gen.Generate(context.Background(), &site.Site{
		Latitude:  0.3,
		Longitude: 32.5,
		District:  "Mukono",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.District != "Mukono" {
		t.Errorf("caller-supplied district should win, got %q", out.District)
	}
}
