package stations

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"hydromap/internal/metrics"
	"hydromap/internal/sse"
	"hydromap/pkg/geo"
	"hydromap/pkg/geomet"
)

// manager implements the station Manager interface
type manager struct {
	resolver Resolver
	sseMgr   sse.Manager
	metrics  *metrics.Metrics
	logger   *slog.Logger

	stationIDs []string
	interval   time.Duration

	stations map[string]Station
	mu       sync.RWMutex

	ctx       context.Context
	cancel    context.CancelFunc
	stopCh    chan struct{}
	isRunning bool
	runningMu sync.Mutex
}

// NewManager creates a station manager that refreshes the given
// stations on the given interval.
func NewManager(resolver Resolver, sseMgr sse.Manager, m *metrics.Metrics, logger *slog.Logger, stationIDs []string, interval time.Duration) Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &manager{
		resolver:   resolver,
		sseMgr:     sseMgr,
		metrics:    m,
		logger:     logger,
		stationIDs: stationIDs,
		interval:   interval,
		stations:   make(map[string]Station),
		stopCh:     make(chan struct{}),
	}
}

// Start begins the periodic refresh loop
func (m *manager) Start(ctx context.Context) error {
	m.runningMu.Lock()
	defer m.runningMu.Unlock()

	if m.isRunning {
		return fmt.Errorf("station manager is already running")
	}

	m.ctx, m.cancel = context.WithCancel(ctx)

	// Push the current snapshot to every newly connected map client
	m.sseMgr.SetClientConnectCallback(func(clientID string) {
		for _, station := range m.GetAllStations() {
			m.sseMgr.SendToClient(clientID, sse.Message{
				Type:      "station",
				StationID: station.ID,
				Data:      station,
			})
		}
	})

	go m.runRefreshLoop()

	m.isRunning = true
	m.logger.Info("station manager started", "stations", len(m.stationIDs), "interval", m.interval)
	return nil
}

// Stop stops the refresh loop
func (m *manager) Stop() error {
	m.runningMu.Lock()
	defer m.runningMu.Unlock()

	if !m.isRunning {
		return nil
	}

	m.cancel()
	close(m.stopCh)
	m.isRunning = false

	m.logger.Info("station manager stopped")
	return nil
}

// GetAllStations returns every station that has been resolved so far
func (m *manager) GetAllStations() []Station {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Station, 0, len(m.stations))
	for _, id := range m.stationIDs {
		if station, exists := m.stations[id]; exists {
			result = append(result, station)
		}
	}
	return result
}

// GetStation returns a specific resolved station by ID
func (m *manager) GetStation(stationID string) (Station, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	station, exists := m.stations[stationID]
	return station, exists
}

// GeoJSON returns the resolved stations as a GeoJSON feature collection
func (m *manager) GeoJSON() geo.FeatureCollection {
	all := m.GetAllStations()

	fc := geo.FeatureCollection{Type: "FeatureCollection", Features: make([]geo.Feature, 0, len(all))}
	for _, station := range all {
		properties := map[string]any{
			"station_id":   station.ID,
			"name":         station.Name,
			"observations": station.Observations,
			"updated_at":   station.UpdatedAt,
		}
		for k, v := range station.Attributes {
			properties[k] = v
		}

		fc.Features = append(fc.Features, geo.Feature{
			Type: "Feature",
			Geometry: &geo.Geometry{
				Type:        "Point",
				Coordinates: []float64{station.Longitude, station.Latitude},
			},
			Properties: properties,
		})
	}
	return fc
}

// runRefreshLoop refreshes all stations immediately and then on every tick
func (m *manager) runRefreshLoop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.refreshAll()

	for {
		select {
		case <-ticker.C:
			m.refreshAll()
		case <-m.ctx.Done():
			return
		case <-m.stopCh:
			return
		}
	}
}

// refreshAll refreshes every configured station, isolating failures so
// one broken station never blocks the rest.
func (m *manager) refreshAll() {
	for _, stationID := range m.stationIDs {
		if err := m.refreshStation(stationID); err != nil {
			m.metrics.RefreshFailures.Inc()
			m.logger.Error("station refresh failed, station omitted", "station", stationID, "error", err)
			continue
		}
		m.metrics.RefreshSuccess.Inc()
	}

	m.metrics.StationsWithData.Set(float64(m.countWithData()))
	m.metrics.SSEClients.Set(float64(m.sseMgr.ClientCount()))
}

// refreshStation resolves one station's location (once, cached after
// the first success) and its latest observations.
func (m *manager) refreshStation(stationID string) error {
	m.mu.RLock()
	station, known := m.stations[stationID]
	m.mu.RUnlock()

	if !known {
		location, err := m.resolver.ResolveStationLocation(stationID)
		if err != nil {
			return err
		}
		station = Station{
			ID:         stationID,
			Name:       stationName(location.Attributes, stationID),
			Latitude:   location.Latitude,
			Longitude:  location.Longitude,
			Attributes: location.Attributes,
		}
	}

	observations, err := m.resolver.ResolveLatestObservations(stationID)
	if err != nil {
		return err
	}

	changed := !known || observationsChanged(station.Observations, observations)
	station.Observations = observations
	station.UpdatedAt = time.Now()

	m.mu.Lock()
	m.stations[stationID] = station
	m.mu.Unlock()

	if changed {
		m.sseMgr.Broadcast(sse.Message{
			Type:      "station",
			StationID: stationID,
			Data:      station,
		})
	}
	return nil
}

func (m *manager) countWithData() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, station := range m.stations {
		if len(station.Observations) > 0 {
			count++
		}
	}
	return count
}

// observationsChanged reports whether any parameter gained a newer
// reading or the parameter set itself changed.
func observationsChanged(previous, current []geomet.Observation) bool {
	if len(previous) != len(current) {
		return true
	}
	byParam := make(map[string]geomet.Observation, len(previous))
	for _, obs := range previous {
		byParam[obs.Parameter] = obs
	}
	for _, obs := range current {
		old, exists := byParam[obs.Parameter]
		if !exists || !old.Timestamp.Equal(obs.Timestamp) {
			return true
		}
	}
	return false
}

// stationName picks a display name from the source attributes.
func stationName(attributes map[string]any, fallback string) string {
	for _, key := range []string{"STATION_NAME", "NAME"} {
		if name, ok := attributes[key].(string); ok && name != "" {
			return name
		}
	}
	return fallback
}
