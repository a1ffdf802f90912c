package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/apperr"
)

const kampalaResponse = `{
	"status": "OK",
	"results": [
		{
			"formatted_address": "Kampala Road, Kampala, Uganda",
			"place_id": "ChIJc9p1cZa7fRcR",
			"types": ["establishment", "point_of_interest"],
			"address_components": [
				{"long_name": "Kampala Road", "short_name": "Kampala Rd", "types": ["route"]},
				{"long_name": "Kampala", "short_name": "Kampala", "types": ["locality", "political"]},
				{"long_name": "Central Division", "short_name": "Central", "types": ["sublocality_level_1", "sublocality", "political"]},
				{"long_name": "Kampala", "short_name": "Kampala", "types": ["administrative_area_level_2", "political"]},
				{"long_name": "Central Region", "short_name": "Central Region", "types": ["administrative_area_level_1", "political"]},
				{"long_name": "Uganda", "short_name": "UG", "types": ["country", "political"]}
			]
		}
	]
}`

func testGeocoder(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(ClientConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Logger:     zerolog.Nop(),
	})
}

func TestReverseGeocode_ParsesComponents(t *testing.T) {
	client := testGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("expected api key in query, got %q", got)
		}
		if got := r.URL.Query().Get("latlng"); got == "" {
			t.Error("expected latlng in query")
		}
		w.Write([]byte(kampalaResponse))
	})

	addr, err := client.ReverseGeocode(context.Background(), 0.3136, 32.5811)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if addr.Country != "Uganda" {
		t.Errorf("country = %q", addr.Country)
	}
	if addr.Region != "Central Region" {
		t.Errorf("region = %q", addr.Region)
	}
	if addr.District != "Kampala" || addr.County != "Kampala" {
		t.Errorf("district = %q, county = %q", addr.District, addr.County)
	}
	if addr.Parish != "Central Division" || addr.SubCounty != "Central Division" {
		t.Errorf("parish = %q, sub_county = %q", addr.Parish, addr.SubCounty)
	}
	if addr.Street != "Kampala Road" {
		t.Errorf("street = %q", addr.Street)
	}
	if addr.Town != "Kampala" || addr.City != "Kampala" {
		t.Errorf("town = %q, city = %q", addr.Town, addr.City)
	}
	if addr.SearchName != "Kampala" {
		t.Errorf("search_name should prefer the town, got %q", addr.SearchName)
	}
	if addr.FormattedName != "Kampala Road, Kampala, Uganda" {
		t.Errorf("formatted_name = %q", addr.FormattedName)
	}
	if addr.PlaceID != "ChIJc9p1cZa7fRcR" {
		t.Errorf("place_id = %q", addr.PlaceID)
	}
	if len(addr.SiteTags) != 2 || addr.SiteTags[0] != "establishment" {
		t.Errorf("site tags = %v", addr.SiteTags)
	}
}

func TestReverseGeocode_EmptyResultsIsNotFound(t *testing.T) {
	client := testGeocoder(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	})

	_, err := client.ReverseGeocode(context.Background(), 0, 0)
	if err == nil {
		t.Fatal("expected error for empty results")
	}
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("expected not-found kind, got %v", apperr.KindOf(err))
	}
}

func TestReverseGeocode_VendorFailureIsBadGateway(t *testing.T) {
	client := testGeocoder(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.ReverseGeocode(context.Background(), 0.3, 32.5)
	if err == nil {
		t.Fatal("expected error for vendor 5xx")
	}
	if apperr.KindOf(err) != apperr.KindBadGateway {
		t.Errorf("expected bad-gateway kind, got %v", apperr.KindOf(err))
	}
}

func TestParseAddress_SearchNameFallsBackToStreet(t *testing.T) {
	addr := parseAddress(geocodeResult{
		AddressComponents: []addressComponent{
			{LongName: "Jinja Road", Types: []string{"route"}},
			{LongName: "Uganda", Types: []string{"country"}},
		},
	})
	if addr.SearchName != "Jinja Road" {
		t.Errorf("search_name = %q, want street fallback", addr.SearchName)
	}
}
