// Package geomet is a client for the MSC GeoMet OGC API Features
// endpoint serving hydrometric station metadata and near-real-time
// readings. Both operations use a two-step query strategy: a
// server-side attribute filter first, then an unfiltered bulk query
// matched locally when the server fails or ignores the filter.
package geomet

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"hydromap/pkg/geo"
)

// HTTPClient interface for HTTP operations
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client provides access to the GeoMet hydrometric collections.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	logger     *slog.Logger

	// DefaultToFirstOnNoMatch controls what a fallback query does when
	// no feature matches the requested station: fall back to the first
	// feature of the result set (the source system's historical
	// behavior) or report NotFoundError.
	DefaultToFirstOnNoMatch bool
}

// NewClient creates a hydrometric data client. The logger receives
// non-fatal diagnostics (fallback triggered, empty results); pass a
// disabled logger rather than nil to silence them.
func NewClient(baseURL string, httpClient HTTPClient, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:                 baseURL,
		httpClient:              httpClient,
		logger:                  logger,
		DefaultToFirstOnNoMatch: true,
	}
}

// queryError carries the HTTP status of a failed collection query so
// the operations can surface it in TransportError.
type queryError struct {
	status int
	err    error
}

func (e *queryError) Error() string { return e.err.Error() }
func (e *queryError) Unwrap() error { return e.err }

// fetchItems queries one collection's items endpoint. filter is a CQL
// text expression applied server-side, or empty for an unfiltered
// query.
func (c *Client) fetchItems(collection, filter string, limit int) (*geo.FeatureCollection, error) {
	params := url.Values{}
	params.Set("f", "json")
	params.Set("limit", fmt.Sprintf("%d", limit))
	if filter != "" {
		params.Set("filter", filter)
		params.Set("filter-lang", "cql-text")
	}

	requestURL := fmt.Sprintf("%s/collections/%s/items?%s", c.baseURL, collection, params.Encode())

	req, err := http.NewRequest(http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, &queryError{err: fmt.Errorf("failed to create request: %w", err)}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &queryError{err: fmt.Errorf("failed to execute request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &queryError{
			status: resp.StatusCode,
			err:    fmt.Errorf("unexpected status %d from %s", resp.StatusCode, requestURL),
		}
	}

	var fc geo.FeatureCollection
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return nil, &queryError{err: fmt.Errorf("failed to decode feature collection: %w", err)}
	}

	return &fc, nil
}

// stationFilter builds the server-side attribute filter for one station.
func stationFilter(stationID string) string {
	return fmt.Sprintf("%s='%s'", PropStationNumber, stationID)
}

// stationNumber extracts a feature's station identifier coerced to a
// string. ok is false when the property is absent.
func stationNumber(f geo.Feature) (string, bool) {
	v, exists := f.Properties[PropStationNumber]
	if !exists || v == nil {
		return "", false
	}
	if s, isString := v.(string); isString {
		return s, true
	}
	return fmt.Sprint(v), true
}

// transportError wraps a failed fallback query into the typed error
// surfaced to callers.
func transportError(stationID string, err error) error {
	te := &TransportError{StationID: stationID, Err: err}
	if qe, ok := err.(*queryError); ok {
		te.Status = qe.status
		te.Err = qe.err
	}
	return te
}
