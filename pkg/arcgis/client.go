// Package arcgis fetches bounding-box-clipped feature collections from
// ArcGIS FeatureServer layer endpoints. The server does all spatial
// filtering and reprojection; responses are relayed verbatim.
package arcgis

import (
	"fmt"
	"io"
	"net/http"
	"net/url"

	"hydromap/pkg/geo"
)

// HTTPClient interface for HTTP operations
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// LayerFetchError reports a failed feature layer query.
type LayerFetchError struct {
	Endpoint string
	// Status is the HTTP status code, or 0 when the failure happened
	// before a response arrived.
	Status int
	Err    error
}

func (e *LayerFetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("layer %s: fetch failed with status %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("layer %s: fetch failed: %v", e.Endpoint, e.Err)
}

func (e *LayerFetchError) Unwrap() error { return e.Err }

// Client queries ArcGIS FeatureServer layers.
type Client struct {
	httpClient HTTPClient
}

// NewClient creates a feature layer client.
func NewClient(httpClient HTTPClient) *Client {
	return &Client{httpClient: httpClient}
}

// FetchFeatureLayer issues a single spatial query against the layer
// endpoint: features intersecting the bounding box envelope, all
// attribute fields, geometry in lon/lat degrees, GeoJSON output. The
// response body is returned untouched; there is no pagination handling,
// no fallback and no retry.
func (c *Client) FetchFeatureLayer(layerURL string, bbox geo.BBox) ([]byte, error) {
	params := url.Values{}
	params.Set("geometry", bbox.String())
	params.Set("geometryType", "esriGeometryEnvelope")
	params.Set("spatialRel", "esriSpatialRelIntersects")
	params.Set("inSR", "4326")
	params.Set("outSR", "4326")
	params.Set("outFields", "*")
	params.Set("f", "geojson")

	requestURL := fmt.Sprintf("%s/query?%s", layerURL, params.Encode())

	req, err := http.NewRequest(http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, &LayerFetchError{Endpoint: layerURL, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &LayerFetchError{Endpoint: layerURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &LayerFetchError{
			Endpoint: layerURL,
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &LayerFetchError{Endpoint: layerURL, Err: err}
	}
	return body, nil
}
