package stations

import (
	"context"
	"time"

	"hydromap/pkg/geo"
	"hydromap/pkg/geomet"
)

// Resolver resolves station locations and readings from the
// hydrometric data API.
type Resolver interface {
	ResolveStationLocation(stationID string) (*geomet.StationLocation, error)
	ResolveLatestObservations(stationID string) ([]geomet.Observation, error)
}

// Manager defines the interface for the in-memory station view
type Manager interface {
	// Start begins the periodic refresh loop
	Start(ctx context.Context) error

	// Stop stops the refresh loop
	Stop() error

	// GetAllStations returns every station that has been resolved so far
	GetAllStations() []Station

	// GetStation returns a specific resolved station by ID
	GetStation(stationID string) (Station, bool)

	// GeoJSON returns the resolved stations as a GeoJSON feature
	// collection for the map layer
	GeoJSON() geo.FeatureCollection
}

// Station is the rendered view of one monitoring station: its resolved
// location plus the latest observation per parameter.
type Station struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Latitude     float64              `json:"latitude"`
	Longitude    float64              `json:"longitude"`
	Attributes   map[string]any       `json:"attributes,omitempty"`
	Observations []geomet.Observation `json:"observations"`
	UpdatedAt    time.Time            `json:"updated_at"`
}
