package layers

import (
	"log/slog"
	"sync"
	"time"

	"hydromap/internal/config"
	"hydromap/internal/metrics"
	"hydromap/pkg/geo"
)

// manager implements the layer Manager interface
type manager struct {
	fetcher Fetcher
	metrics *metrics.Metrics
	logger  *slog.Logger

	definitions []config.LayerConfig
	bbox        geo.BBox

	layers map[string]Layer
	mu     sync.RWMutex
}

// NewManager creates a layer manager for the configured layer
// endpoints, clipped to the configured bounding box.
func NewManager(fetcher Fetcher, m *metrics.Metrics, logger *slog.Logger, definitions []config.LayerConfig, bbox geo.BBox) Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &manager{
		fetcher:     fetcher,
		metrics:     m,
		logger:      logger,
		definitions: definitions,
		bbox:        bbox,
		layers:      make(map[string]Layer),
	}
}

// LoadAll fetches every configured layer
func (m *manager) LoadAll() {
	for _, def := range m.definitions {
		data, err := m.fetcher.FetchFeatureLayer(def.URL, m.bbox)
		if err != nil {
			m.metrics.LayerFailures.Inc()
			m.logger.Error("feature layer fetch failed, layer omitted", "layer", def.Name, "error", err)
			continue
		}

		m.mu.Lock()
		m.layers[def.Name] = Layer{
			Name:      def.Name,
			URL:       def.URL,
			Data:      data,
			FetchedAt: time.Now(),
		}
		m.mu.Unlock()

		m.logger.Info("feature layer loaded", "layer", def.Name, "bytes", len(data))
	}
}

// GetLayer returns a fetched layer by name
func (m *manager) GetLayer(name string) (Layer, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	layer, exists := m.layers[name]
	return layer, exists
}

// ListLayers returns metadata for every successfully fetched layer
func (m *manager) ListLayers() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Info, 0, len(m.layers))
	for _, def := range m.definitions {
		if layer, exists := m.layers[def.Name]; exists {
			result = append(result, Info{Name: layer.Name, FetchedAt: layer.FetchedAt})
		}
	}
	return result
}
