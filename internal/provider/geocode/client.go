// Package geocode provides a reverse-geocoding client for the Google
// Maps geocoding API.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/apperr"
	"github.com/airsight/airsight/internal/metadata"
	"github.com/airsight/airsight/internal/provider/resilience"
	"github.com/airsight/airsight/internal/telemetry"
)

const (
	// ProviderName identifies this geocoding provider.
	ProviderName = "google-geocode"

	// DefaultBaseURL is the Google Maps API base URL.
	DefaultBaseURL = "https://maps.googleapis.com"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the geocoding client.
type ClientConfig struct {
	// APIKey is the Maps API key (required).
	APIKey string

	// BaseURL overrides the API base URL (tests).
	BaseURL string

	// HTTPClient overrides the HTTP client. If nil, a resilient client
	// with defaults is used.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 10s).
	Timeout time.Duration

	// Metrics records vendor call metrics (optional).
	Metrics *telemetry.ProviderMetrics

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a reverse-geocoding API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	metrics    *telemetry.ProviderMetrics
	logger     zerolog.Logger
}

// NewClient creates a new geocoding client.
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
		}
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
	}
}

// geocodeResponse mirrors the vendor response shape.
type geocodeResponse struct {
	Results []geocodeResult `json:"results"`
	Status  string          `json:"status"`
}

type geocodeResult struct {
	AddressComponents []addressComponent `json:"address_components"`
	FormattedAddress  string             `json:"formatted_address"`
	PlaceID           string             `json:"place_id"`
	Types             []string           `json:"types"`
}

type addressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

// ReverseGeocode resolves a coordinate to address components. An empty
// result set means the coordinates have no corresponding metadata and is
// reported as not found.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (*metadata.Address, error) {
	endpoint := fmt.Sprintf("%s/maps/api/geocode/json?latlng=%s&key=%s",
		c.baseURL,
		url.QueryEscape(fmt.Sprintf("%f,%f", lat, lon)),
		url.QueryEscape(c.apiKey),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperr.Internal("creating geocode request", err)
	}

	c.logger.Debug().
		Float64("latitude", lat).
		Float64("longitude", lon).
		Msg("reverse geocoding site coordinates")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.RecordRequest(ProviderName, "reverse_geocode", time.Since(start), err)
	if err != nil {
		return nil, apperr.BadGateway("unable to get the site address details", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.BadGateway("unable to get the site address details", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.BadGateway("unable to get the site address details",
			fmt.Errorf("geocode API returned status %d", resp.StatusCode))
	}

	var decoded geocodeResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, apperr.BadGateway("unable to get the site address details", err)
	}

	if len(decoded.Results) == 0 {
		return nil, apperr.NotFound("review the GPS coordinates provided, we cannot get corresponding metadata")
	}

	return parseAddress(decoded.Results[0]), nil
}
