package layers

import (
	"time"

	"hydromap/pkg/geo"
)

// Fetcher retrieves a bounding-box-clipped feature collection from a
// layer endpoint.
type Fetcher interface {
	FetchFeatureLayer(layerURL string, bbox geo.BBox) ([]byte, error)
}

// Manager defines the interface for the feature layer store
type Manager interface {
	// LoadAll fetches every configured layer; failed layers are logged
	// and omitted so one broken endpoint never blocks the rest
	LoadAll()

	// GetLayer returns a fetched layer by name
	GetLayer(name string) (Layer, bool)

	// ListLayers returns metadata for every successfully fetched layer
	ListLayers() []Info
}

// Layer holds one fetched feature collection, byte-for-byte as the
// endpoint returned it.
type Layer struct {
	Name      string
	URL       string
	Data      []byte
	FetchedAt time.Time
}

// Info is the listing view of a fetched layer.
type Info struct {
	Name      string    `json:"name"`
	FetchedAt time.Time `json:"fetched_at"`
}
