package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/apperr"
)

const rosterBody = `{
	"data": [
		{
			"id": "st-1",
			"code": "TA00001",
			"location": {
				"latitude": 0.33,
				"longitude": 32.57,
				"elevationmsl": 1200,
				"countrycode": "UG",
				"timezone": "Africa/Kampala",
				"timezoneoffset": 3,
				"name": "Makerere",
				"type": "weather"
			}
		},
		{
			"id": "st-2",
			"code": "TA00002",
			"location": {
				"latitude": -1.29,
				"longitude": 36.82,
				"countrycode": "KE"
			}
		}
	]
}`

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(ClientConfig{
		Username:   "user",
		Password:   "secret",
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Logger:     zerolog.Nop(),
	})
}

func TestListStations(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "user" || pass != "secret" {
			t.Error("expected basic auth credentials")
		}
		if r.URL.Path != stationsPath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(rosterBody))
	})

	stations, err := client.ListStations(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stations) != 2 {
		t.Fatalf("expected 2 stations, got %d", len(stations))
	}

	first := stations[0]
	if first.ID != "st-1" || first.Code != "TA00001" {
		t.Errorf("identity not mapped: %+v", first)
	}
	if first.Latitude != 0.33 || first.Longitude != 32.57 {
		t.Errorf("coordinates not flattened: %+v", first)
	}
	if first.Elevation != 1200 || first.Timezone != "Africa/Kampala" {
		t.Errorf("location fields not flattened: %+v", first)
	}
}

func TestListStations_VendorFailure(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.ListStations(context.Background())
	if err == nil {
		t.Fatal("expected error for vendor 5xx")
	}
	if apperr.KindOf(err) != apperr.KindBadGateway {
		t.Errorf("expected bad-gateway kind, got %v", apperr.KindOf(err))
	}
}

func TestListStations_EmptyRosterIsNotAnError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"data": []}`))
	})

	stations, err := client.ListStations(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stations) != 0 {
		t.Errorf("expected empty roster, got %d", len(stations))
	}
}
