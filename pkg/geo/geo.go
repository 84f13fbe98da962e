// Package geo holds the geographic value types shared by the data
// source clients: GeoJSON feature collections and bounding boxes.
package geo

import "fmt"

// FeatureCollection is a standard GeoJSON feature collection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is a single GeoJSON feature with geometry and free-form properties.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   *Geometry      `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Geometry holds a point geometry. Coordinates are [lon, lat].
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// BBox represents a geographic bounding box in lon/lat degrees.
type BBox struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// String returns the bounding box as a comma-separated string for API queries.
func (b BBox) String() string {
	return fmt.Sprintf("%.4f,%.4f,%.4f,%.4f", b.MinLon, b.MinLat, b.MaxLon, b.MaxLat)
}

// Valid reports whether the box spans a non-empty area.
func (b BBox) Valid() bool {
	return b.MinLon < b.MaxLon && b.MinLat < b.MaxLat
}
