package geomet

import "hydromap/pkg/geo"

// ResolveStationLocation resolves a station identifier to its location
// and source attributes. The primary query asks the server to filter
// by station number; when that fails or the first returned feature is
// not the requested station, an unfiltered bulk query is matched
// locally. With DefaultToFirstOnNoMatch set, a fallback set containing
// no match yields the set's first feature instead of an error.
func (c *Client) ResolveStationLocation(stationID string) (*StationLocation, error) {
	primary := func() (*geo.FeatureCollection, error) {
		return c.fetchItems(StationsCollection, stationFilter(stationID), 1)
	}
	fallback := func() (*geo.FeatureCollection, error) {
		return c.fetchItems(StationsCollection, "", stationFallbackLimit)
	}
	accept := func(fc *geo.FeatureCollection) bool {
		if len(fc.Features) == 0 {
			return false
		}
		id, ok := stationNumber(fc.Features[0])
		return ok && id == stationID
	}

	fc, usedFallback, err := runWithFallback(primary, fallback, accept, func(reason string, err error) {
		c.logger.Warn("station metadata query falling back to bulk fetch",
			"station", stationID, "reason", reason, "error", err)
	})
	if err != nil {
		return nil, transportError(stationID, err)
	}

	var feature *geo.Feature
	if usedFallback {
		feature, err = c.matchStation(fc, stationID)
		if err != nil {
			return nil, err
		}
	} else {
		feature = &fc.Features[0]
	}

	if feature.Geometry == nil || len(feature.Geometry.Coordinates) != 2 {
		return nil, &NoGeometryError{StationID: stationID}
	}

	// GeoJSON coordinate order is [lon, lat].
	return &StationLocation{
		StationID:  stationID,
		Latitude:   feature.Geometry.Coordinates[1],
		Longitude:  feature.Geometry.Coordinates[0],
		Attributes: feature.Properties,
	}, nil
}

// matchStation finds the requested station in a fallback result set by
// exact identifier match, applying the first-result default policy
// when nothing matches.
func (c *Client) matchStation(fc *geo.FeatureCollection, stationID string) (*geo.Feature, error) {
	for i := range fc.Features {
		if id, ok := stationNumber(fc.Features[i]); ok && id == stationID {
			return &fc.Features[i], nil
		}
	}

	if c.DefaultToFirstOnNoMatch && len(fc.Features) > 0 {
		c.logger.Warn("station not present in fallback result set, defaulting to first feature",
			"station", stationID, "features", len(fc.Features))
		return &fc.Features[0], nil
	}

	return nil, &NotFoundError{StationID: stationID}
}
