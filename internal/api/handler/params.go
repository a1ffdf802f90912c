// Package handler provides HTTP handlers for the airsight registry API.
package handler

import (
	"net/http"
	"strconv"

	"github.com/airsight/airsight/internal/site"
)

// defaultTenant is assumed when the caller omits the tenant query param.
const defaultTenant = "airsight"

// tenantParam extracts the tenant from the query string.
func tenantParam(r *http.Request) string {
	if t := r.URL.Query().Get("tenant"); t != "" {
		return t
	}
	return defaultTenant
}

// floatParam parses a required float query parameter. The bool reports
// whether the parameter was present and well formed.
func floatParam(r *http.Request, name string) (float64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// intParam parses an optional integer query parameter, returning 0 when
// absent or malformed.
func intParam(r *http.Request, name string) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return v
}

// siteFilter builds a site lookup filter from the query string.
func siteFilter(r *http.Request) site.Filter {
	q := r.URL.Query()
	return site.Filter{
		ID:            q.Get("id"),
		Name:          q.Get("name"),
		GeneratedName: q.Get("generated_name"),
		LatLong:       q.Get("lat_long"),
		Limit:         intParam(r, "limit"),
		Skip:          intParam(r, "skip"),
	}
}
