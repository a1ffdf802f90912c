// Package roads fetches road and terrain metadata for a coordinate from
// the spatial data service.
//
// Each metadata field lives behind its own endpoint, so a single lookup
// fans out one request per configured path and keeps whatever succeeds.
// Only a complete miss across every endpoint is an error.
package roads

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/apperr"
	"github.com/airsight/airsight/internal/provider/resilience"
)

// ProviderName identifies the spatial data provider.
const ProviderName = "spatial-roads"

// DefaultTimeout is the default per-request timeout.
const DefaultTimeout = 10 * time.Second

// DefaultPaths maps metadata field names to their endpoint paths.
var DefaultPaths = map[string]string{
	"greenness":                            "/api/v1/spatial/greenness",
	"altitude":                             "/api/v1/spatial/altitude",
	"aspect":                               "/api/v1/spatial/aspect",
	"landform_90":                          "/api/v1/spatial/landform-90",
	"landform_270":                         "/api/v1/spatial/landform-270",
	"bearing_to_kampala":                   "/api/v1/spatial/bearing",
	"distance_to_kampala":                  "/api/v1/spatial/distance/kampala",
	"distance_to_nearest_road":             "/api/v1/spatial/distance/road",
	"distance_to_nearest_residential_road": "/api/v1/spatial/distance/residential/road",
}

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the road metadata client.
type ClientConfig struct {
	// BaseURL of the spatial data service (required).
	BaseURL string

	// Paths overrides the field-to-endpoint mapping.
	Paths map[string]string

	// HTTPClient overrides the HTTP client. If nil, a resilient client
	// with defaults is used.
	HTTPClient HTTPDoer

	// Timeout is the per-request timeout (optional, defaults to 10s).
	Timeout time.Duration

	// Now overrides the clock (tests).
	Now func() time.Time

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client fetches road metadata by fanning out across per-field endpoints.
type Client struct {
	baseURL    string
	paths      map[string]string
	httpClient HTTPDoer
	now        func() time.Time
	logger     zerolog.Logger
}

// NewClient creates a new road metadata client.
func NewClient(cfg ClientConfig) *Client {
	paths := cfg.Paths
	if paths == nil {
		paths = DefaultPaths
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		if cfg.Timeout > 0 {
			clientCfg.Timeout = cfg.Timeout
		}
		httpClient = resilience.NewClient(clientCfg)
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		paths:      paths,
		httpClient: httpClient,
		now:        now,
		logger:     cfg.Logger,
	}
}

// Metadata fetches every configured field for the coordinate. Individual
// endpoint failures are logged and skipped; an error is returned only
// when no endpoint produced a value.
func (c *Client) Metadata(ctx context.Context, lat, lon float64) (map[string]json.RawMessage, error) {
	start, end := monthRange(c.now())

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]json.RawMessage)
	)

	for field, path := range c.paths {
		wg.Add(1)
		go func(field, path string) {
			defer wg.Done()

			value, err := c.fetchField(ctx, path, lat, lon, start, end)
			if err != nil {
				c.logger.Warn().Err(err).
					Str("field", field).
					Msg("road metadata endpoint failed")
				return
			}

			mu.Lock()
			results[field] = value
			mu.Unlock()
		}(field, path)
	}
	wg.Wait()

	if len(results) == 0 {
		return nil, apperr.NotFound("unable to retrieve any road metadata for this site")
	}
	return results, nil
}

func (c *Client) fetchField(ctx context.Context, path string, lat, lon float64, start, end time.Time) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("latitude", fmt.Sprintf("%f", lat))
	query.Set("longitude", fmt.Sprintf("%f", lon))
	query.Set("start_date", start.Format(time.RFC3339))
	query.Set("end_date", end.Format(time.RFC3339))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("spatial API returned status %d", resp.StatusCode)
	}

	var decoded struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, err
	}
	if len(decoded.Data) == 0 || string(decoded.Data) == "null" {
		return nil, fmt.Errorf("spatial API returned no data")
	}
	return decoded.Data, nil
}

// monthRange returns the first instant of the current month and of the
// next month, the window the spatial service aggregates over.
func monthRange(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 1, 0)
}
