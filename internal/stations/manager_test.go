package stations

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"hydromap/internal/metrics"
	"hydromap/internal/sse"
	"hydromap/pkg/geomet"
)

type fakeResolver struct {
	locations     map[string]*geomet.StationLocation
	observations  map[string][]geomet.Observation
	locationErrs  map[string]error
	locationCalls map[string]int
}

func (f *fakeResolver) ResolveStationLocation(stationID string) (*geomet.StationLocation, error) {
	if f.locationCalls == nil {
		f.locationCalls = make(map[string]int)
	}
	f.locationCalls[stationID]++
	if err, exists := f.locationErrs[stationID]; exists {
		return nil, err
	}
	location, exists := f.locations[stationID]
	if !exists {
		return nil, &geomet.NotFoundError{StationID: stationID}
	}
	return location, nil
}

func (f *fakeResolver) ResolveLatestObservations(stationID string) ([]geomet.Observation, error) {
	return f.observations[stationID], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func value(v float64) *float64 { return &v }

func newTestManager(resolver Resolver, ids []string) *manager {
	mgr := NewManager(resolver, sse.NewManager(testLogger()), metrics.New(), testLogger(), ids, time.Minute)
	return mgr.(*manager)
}

func TestRefreshAllPopulatesStations(t *testing.T) {
	resolver := &fakeResolver{
		locations: map[string]*geomet.StationLocation{
			"05JF003": {
				StationID:  "05JF003",
				Latitude:   50.445,
				Longitude:  -104.617,
				Attributes: map[string]any{"STATION_NAME": "WASCANA CREEK AT REGINA"},
			},
		},
		observations: map[string][]geomet.Observation{
			"05JF003": {{StationID: "05JF003", Parameter: "Level", Value: value(1.5)}},
		},
	}
	mgr := newTestManager(resolver, []string{"05JF003"})

	mgr.refreshAll()

	station, exists := mgr.GetStation("05JF003")
	if !exists {
		t.Fatal("Expected station to be resolved")
	}
	if station.Name != "WASCANA CREEK AT REGINA" {
		t.Errorf("Unexpected station name %q", station.Name)
	}
	if station.Latitude != 50.445 || station.Longitude != -104.617 {
		t.Errorf("Unexpected coordinates %g, %g", station.Latitude, station.Longitude)
	}
	if len(station.Observations) != 1 {
		t.Errorf("Expected 1 observation, got %d", len(station.Observations))
	}
}

func TestRefreshAllIsolatesFailures(t *testing.T) {
	resolver := &fakeResolver{
		locations: map[string]*geomet.StationLocation{
			"B": {StationID: "B", Latitude: 51, Longitude: -101},
		},
		locationErrs: map[string]error{
			"A": errors.New("upstream down"),
		},
	}
	mgr := newTestManager(resolver, []string{"A", "B"})

	mgr.refreshAll()

	if _, exists := mgr.GetStation("A"); exists {
		t.Error("Failed station must be omitted")
	}
	if _, exists := mgr.GetStation("B"); !exists {
		t.Error("One failing station must not block the others")
	}
	if got := len(mgr.GetAllStations()); got != 1 {
		t.Errorf("Expected 1 resolved station, got %d", got)
	}
}

func TestRefreshStationCachesLocation(t *testing.T) {
	resolver := &fakeResolver{
		locations: map[string]*geomet.StationLocation{
			"B": {StationID: "B", Latitude: 51, Longitude: -101},
		},
	}
	mgr := newTestManager(resolver, []string{"B"})

	mgr.refreshAll()
	mgr.refreshAll()

	if calls := resolver.locationCalls["B"]; calls != 1 {
		t.Errorf("Expected location resolved once, got %d calls", calls)
	}
}

func TestGeoJSONView(t *testing.T) {
	resolver := &fakeResolver{
		locations: map[string]*geomet.StationLocation{
			"05JF003": {
				StationID:  "05JF003",
				Latitude:   50.445,
				Longitude:  -104.617,
				Attributes: map[string]any{"NAME": "Wascana Creek"},
			},
		},
	}
	mgr := newTestManager(resolver, []string{"05JF003"})
	mgr.refreshAll()

	fc := mgr.GeoJSON()
	if fc.Type != "FeatureCollection" {
		t.Errorf("Unexpected collection type %q", fc.Type)
	}
	if len(fc.Features) != 1 {
		t.Fatalf("Expected 1 feature, got %d", len(fc.Features))
	}

	feature := fc.Features[0]
	// GeoJSON coordinate order is [lon, lat].
	if feature.Geometry.Coordinates[0] != -104.617 || feature.Geometry.Coordinates[1] != 50.445 {
		t.Errorf("Unexpected coordinates %v", feature.Geometry.Coordinates)
	}
	if feature.Properties["station_id"] != "05JF003" {
		t.Errorf("Unexpected station_id %v", feature.Properties["station_id"])
	}
	if feature.Properties["NAME"] != "Wascana Creek" {
		t.Errorf("Source attributes must be carried into properties, got %v", feature.Properties)
	}
}

func TestObservationsChanged(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)

	tests := []struct {
		name     string
		previous []geomet.Observation
		current  []geomet.Observation
		changed  bool
	}{
		{"First_Data", nil, []geomet.Observation{{Parameter: "Level", Timestamp: t0}}, true},
		{
			"Same_Readings",
			[]geomet.Observation{{Parameter: "Level", Timestamp: t0}},
			[]geomet.Observation{{Parameter: "Level", Timestamp: t0}},
			false,
		},
		{
			"Newer_Reading",
			[]geomet.Observation{{Parameter: "Level", Timestamp: t0}},
			[]geomet.Observation{{Parameter: "Level", Timestamp: t1}},
			true,
		},
		{
			"New_Parameter",
			[]geomet.Observation{{Parameter: "Level", Timestamp: t0}},
			[]geomet.Observation{{Parameter: "Flow", Timestamp: t0}},
			true,
		},
		{"Both_Empty", nil, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := observationsChanged(tt.previous, tt.current); got != tt.changed {
				t.Errorf("observationsChanged = %v, expected %v", got, tt.changed)
			}
		})
	}
}
