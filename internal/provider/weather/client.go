// Package weather provides a client for the external weather-station
// network whose roster is used for nearest-station resolution.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/apperr"
	"github.com/airsight/airsight/internal/provider/resilience"
	"github.com/airsight/airsight/internal/site"
	"github.com/airsight/airsight/internal/telemetry"
)

const (
	// ProviderName identifies this weather provider.
	ProviderName = "tahmo"

	// DefaultBaseURL is the station network API base URL.
	DefaultBaseURL = "https://datahub.tahmo.org"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 15 * time.Second

	stationsPath = "/services/assets/v2/stations"
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the station roster client.
type ClientConfig struct {
	// Username and Password authenticate against the vendor API.
	Username string
	Password string

	// BaseURL overrides the API base URL (tests).
	BaseURL string

	// HTTPClient overrides the HTTP client. If nil, a resilient client
	// with defaults is used.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 15s).
	Timeout time.Duration

	// Metrics records vendor call metrics (optional).
	Metrics *telemetry.ProviderMetrics

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client fetches the vendor weather-station roster.
type Client struct {
	username   string
	password   string
	baseURL    string
	httpClient HTTPDoer
	metrics    *telemetry.ProviderMetrics
	logger     zerolog.Logger
}

// NewClient creates a new station roster client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		if cfg.Timeout > 0 {
			clientCfg.Timeout = cfg.Timeout
		} else {
			clientCfg.Timeout = DefaultTimeout
		}
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		username:   cfg.Username,
		password:   cfg.Password,
		baseURL:    baseURL,
		httpClient: httpClient,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
	}
}

// rosterResponse mirrors the vendor response shape: each entry nests its
// coordinates under a location object.
type rosterResponse struct {
	Data []rosterStation `json:"data"`
}

type rosterStation struct {
	ID       string `json:"id"`
	Code     string `json:"code"`
	Location struct {
		Latitude     float64 `json:"latitude"`
		Longitude    float64 `json:"longitude"`
		ElevationMSL float64 `json:"elevationmsl"`
		CountryCode  string  `json:"countrycode"`
		Timezone     string  `json:"timezone"`
		TimezoneOff  int     `json:"timezoneoffset"`
		Name         string  `json:"name"`
		Type         string  `json:"type"`
	} `json:"location"`
}

// ListStations fetches the full station roster and flattens each entry
// into a Station.
func (c *Client) ListStations(ctx context.Context) ([]site.Station, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+stationsPath, nil)
	if err != nil {
		return nil, apperr.Internal("creating station roster request", err)
	}
	req.SetBasicAuth(c.username, c.password)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.RecordRequest(ProviderName, "list_stations", time.Since(start), err)
	if err != nil {
		return nil, apperr.BadGateway("unable to list the weather stations", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.BadGateway("unable to list the weather stations", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.BadGateway("unable to list the weather stations",
			fmt.Errorf("station API returned status %d", resp.StatusCode))
	}

	var decoded rosterResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, apperr.BadGateway("unable to list the weather stations", err)
	}

	stations := make([]site.Station, 0, len(decoded.Data))
	for _, entry := range decoded.Data {
		stations = append(stations, site.Station{
			ID:             entry.ID,
			Code:           entry.Code,
			Latitude:       entry.Location.Latitude,
			Longitude:      entry.Location.Longitude,
			Elevation:      entry.Location.ElevationMSL,
			CountryCode:    entry.Location.CountryCode,
			Timezone:       entry.Location.Timezone,
			TimezoneOffset: entry.Location.TimezoneOff,
			Name:           entry.Location.Name,
			Type:           entry.Location.Type,
		})
	}

	c.logger.Debug().Int("stations", len(stations)).Msg("fetched weather station roster")
	return stations, nil
}
