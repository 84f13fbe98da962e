package geomet

import "fmt"

// TransportError reports a failed fetch against the data API. It is
// only produced once the fallback attempt has also failed; primary
// failures are logged and swallowed.
type TransportError struct {
	StationID string
	// Status is the HTTP status code, or 0 when the failure happened
	// before a response arrived.
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("station %s: fetch failed with status %d: %v", e.StationID, e.Status, e.Err)
	}
	return fmt.Sprintf("station %s: fetch failed: %v", e.StationID, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NoGeometryError reports that the matched station record has no
// usable coordinate pair.
type NoGeometryError struct {
	StationID string
}

func (e *NoGeometryError) Error() string {
	return fmt.Sprintf("station %s: matched record has no valid geometry", e.StationID)
}

// NotFoundError reports that the fallback result set contained no
// feature for the requested station and first-result defaulting was
// disabled or impossible (empty set).
type NotFoundError struct {
	StationID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("station %s: not found in result set", e.StationID)
}
