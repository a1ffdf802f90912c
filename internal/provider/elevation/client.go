// Package elevation provides an altitude lookup client for the Google
// Maps elevation API.
//
// Unlike the geocode client this one is deliberately plain: no retries
// and a short timeout. Altitude is a non-fatal enrichment and a slow
// lookup must never hold up site registration.
package elevation

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
)

const (
	// DefaultBaseURL is the Google Maps API base URL.
	DefaultBaseURL = "https://maps.googleapis.com"

	// DefaultTimeout bounds the whole lookup.
	DefaultTimeout = time.Second
)

// ClientConfig holds configuration for the elevation client.
type ClientConfig struct {
	// APIKey is the Maps API key (required).
	APIKey string

	// BaseURL overrides the API base URL (tests).
	BaseURL string

	// Timeout defaults to DefaultTimeout.
	Timeout time.Duration

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an elevation API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a new elevation client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     cfg.Logger,
	}
}

type elevationResponse struct {
	Results []struct {
		Elevation float64 `json:"elevation"`
	} `json:"results"`
	Status string `json:"status"`
}

// Altitude resolves a coordinate to an elevation in meters.
func (c *Client) Altitude(ctx context.Context, lat, lon float64) (float64, error) {
	endpoint := fmt.Sprintf("%s/maps/api/elevation/json?locations=%s&key=%s",
		c.baseURL,
		url.QueryEscape(fmt.Sprintf("%f,%f", lat, lon)),
		url.QueryEscape(c.apiKey),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, apperr.Internal("creating elevation request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, apperr.BadGateway("unable to retrieve the altitude for this site", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, apperr.BadGateway("unable to retrieve the altitude for this site", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, apperr.BadGateway("unable to retrieve the altitude for this site",
			fmt.Errorf("elevation API returned status %d", resp.StatusCode))
	}

	var decoded elevationResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return 0, apperr.BadGateway("unable to retrieve the altitude for this site", err)
	}
	if len(decoded.Results) == 0 {
		return 0, apperr.BadGateway("unable to retrieve the altitude for this site",
			fmt.Errorf("elevation API returned no results, status %s", decoded.Status))
	}

	return decoded.Results[0].Elevation, nil
}
