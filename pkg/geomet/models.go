package geomet

import "time"

// Collection names on the GeoMet OGC API Features endpoint.
const (
	StationsCollection = "hydrometric-stations"
	RealtimeCollection = "hydrometric-realtime"
)

// Property names used by the hydrometric collections.
const (
	PropStationNumber = "STATION_NUMBER"
	PropParameter     = "PARAMETER"
	PropValue         = "VALUE"
	PropUnit          = "UNIT"
	PropDate          = "DATE"
)

// Result set ceilings for the unfiltered fallback queries. The realtime
// ceiling reflects the practical size of one station's recent history,
// not a protocol limit.
const (
	stationFallbackLimit  = 1000
	realtimeFallbackLimit = 5000
)

// StationLocation is the resolved position of one monitoring station,
// together with all attributes the source reported for it.
type StationLocation struct {
	StationID  string         `json:"station_id"`
	Latitude   float64        `json:"latitude"`
	Longitude  float64        `json:"longitude"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Observation is the latest reading of one measured parameter at one
// station. Value is nil when the source row carried no numeric value,
// Unit is empty when it carried no unit. Timestamp is the zero time
// when the row's date attribute was missing or unparsable.
type Observation struct {
	StationID  string         `json:"station_id"`
	Parameter  string         `json:"parameter"`
	Value      *float64       `json:"value,omitempty"`
	Unit       string         `json:"unit,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
	Attributes map[string]any `json:"attributes,omitempty"`
}
