package geomet

import (
	"fmt"
	"time"

	"hydromap/pkg/geo"
)

// Timestamp layouts seen in the realtime collection's DATE attribute.
var observationTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ResolveLatestObservations returns the latest reading per measured
// parameter for one station. An empty result is valid and means "no
// data available"; only a failed fallback fetch is an error. The same
// primary/fallback strategy as ResolveStationLocation applies, except
// that an empty primary result is accepted as-is.
func (c *Client) ResolveLatestObservations(stationID string) ([]Observation, error) {
	primary := func() (*geo.FeatureCollection, error) {
		return c.fetchItems(RealtimeCollection, stationFilter(stationID), realtimeFallbackLimit)
	}
	fallback := func() (*geo.FeatureCollection, error) {
		return c.fetchItems(RealtimeCollection, "", realtimeFallbackLimit)
	}
	accept := func(fc *geo.FeatureCollection) bool {
		if len(fc.Features) == 0 {
			// Zero rows means the station has no current data, not
			// that the filter was ignored.
			return true
		}
		id, ok := stationNumber(fc.Features[0])
		return ok && id == stationID
	}

	fc, usedFallback, err := runWithFallback(primary, fallback, accept, func(reason string, err error) {
		c.logger.Warn("realtime query falling back to bulk fetch",
			"station", stationID, "reason", reason, "error", err)
	})
	if err != nil {
		return nil, transportError(stationID, err)
	}

	rows := fc.Features
	if usedFallback {
		rows = filterRowsByStation(rows, stationID)
	}

	observations := latestPerParameter(rows, stationID)
	if len(observations) == 0 {
		c.logger.Warn("no observations returned for station", "station", stationID)
	}
	return observations, nil
}

// filterRowsByStation keeps the rows whose station number matches. When
// the first row carries no station number attribute at all the server
// is assumed non-conformant and every row is kept.
func filterRowsByStation(rows []geo.Feature, stationID string) []geo.Feature {
	if len(rows) == 0 {
		return rows
	}
	if _, ok := stationNumber(rows[0]); !ok {
		return rows
	}

	filtered := make([]geo.Feature, 0, len(rows))
	for _, row := range rows {
		if id, ok := stationNumber(row); ok && id == stationID {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// latestPerParameter folds raw rows into one observation per parameter
// key, keeping the row with the latest parsable timestamp. Rows whose
// timestamp cannot be parsed compare earlier than any valid timestamp;
// on an exact timestamp tie the first row folded wins. Result order is
// first-seen parameter order.
func latestPerParameter(rows []geo.Feature, stationID string) []Observation {
	type candidate struct {
		row   geo.Feature
		ts    time.Time
		valid bool
	}

	best := make(map[string]*candidate)
	var order []string

	for _, row := range rows {
		key := parameterKey(row)
		ts, valid := parseObservationTime(row.Properties[PropDate])

		current, seen := best[key]
		if !seen {
			best[key] = &candidate{row: row, ts: ts, valid: valid}
			order = append(order, key)
			continue
		}
		if valid && (!current.valid || ts.After(current.ts)) {
			best[key] = &candidate{row: row, ts: ts, valid: valid}
		}
	}

	observations := make([]Observation, 0, len(order))
	for _, key := range order {
		observations = append(observations, toObservation(best[key].row, key, stationID, best[key].ts))
	}
	return observations
}

func parameterKey(row geo.Feature) string {
	v, exists := row.Properties[PropParameter]
	if !exists || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func parseObservationTime(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	for _, layout := range observationTimeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func toObservation(row geo.Feature, parameter, stationID string, ts time.Time) Observation {
	obs := Observation{
		StationID:  stationID,
		Parameter:  parameter,
		Timestamp:  ts,
		Attributes: row.Properties,
	}
	if v, ok := row.Properties[PropValue].(float64); ok {
		obs.Value = &v
	}
	if u, ok := row.Properties[PropUnit].(string); ok {
		obs.Unit = u
	}
	return obs
}
