package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"hydromap/internal/config"
	"hydromap/internal/httpx"
	"hydromap/internal/layers"
	"hydromap/internal/logging"
	"hydromap/internal/metrics"
	"hydromap/internal/sse"
	"hydromap/internal/stations"
	"hydromap/pkg/arcgis"
	"hydromap/pkg/geomet"
)

// Build metadata - injected at build time
var (
	BuildDate    = "unknown"
	BuildCommit  = "unknown"
	BuildVersion = "dev"
)

var (
	configFile = flag.String("config", "", "Path to YAML configuration file (empty = defaults)")
	listenAddr = flag.String("listen", "", "Listen address override (default from config)")
	debug      = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}

	logger, logSink, err := logging.New(cfg.LogFile, *debug)
	if err != nil {
		log.Fatalf("failed to set up logging: %v", err)
	}
	if logSink != nil {
		defer logSink.Close()
	}

	logger.Info("hydromap starting",
		"addr", cfg.ListenAddr,
		"version", BuildVersion, "commit", BuildCommit, "build_date", BuildDate)

	httpClient := &http.Client{Timeout: cfg.GeoMet.Timeout}
	geometClient := geomet.NewClient(cfg.GeoMet.BaseURL, httpClient, logger)
	arcgisClient := arcgis.NewClient(httpClient)

	m := metrics.New()
	sseManager := sse.NewManager(logger)
	stationManager := stations.NewManager(geometClient, sseManager, m, logger, cfg.Stations, cfg.RefreshInterval)
	layerManager := layers.NewManager(arcgisClient, m, logger, cfg.Layers, cfg.BoundingBox())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.Get("/", handleIndex(cfg))
	router.Get("/health", handleHealth(stationManager, sseManager))
	router.Handle("/metrics", m.Handler())

	sse.RegisterHandlers(router, sseManager, logger)
	stations.RegisterHandlers(router, stationManager)
	layers.RegisterHandlers(router, layerManager)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	// Feature layers are fetched once at startup; stations refresh on a ticker
	go layerManager.LoadAll()

	if err := stationManager.Start(ctx); err != nil {
		logger.Error("failed to start station manager", "error", err)
		os.Exit(1)
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down")
		cancel()

		if err := stationManager.Stop(); err != nil {
			logger.Error("failed to stop station manager", "error", err)
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		server.Shutdown(shutdownCtx)
	}()

	logger.Info("server listening", "addr", cfg.ListenAddr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func handleHealth(stationMgr stations.Manager, sseMgr sse.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"status":      "ok",
			"stations":    len(stationMgr.GetAllStations()),
			"sse_clients": sseMgr.ClientCount(),
			"build": map[string]string{
				"version": BuildVersion,
				"commit":  BuildCommit,
				"date":    BuildDate,
			},
		})
	}
}

// handleIndex serves the interactive map page.
func handleIndex(cfg *config.Config) http.HandlerFunc {
	bbox := cfg.BoundingBox()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, indexHTML, bbox.MinLat, bbox.MinLon, bbox.MaxLat, bbox.MaxLon)
	}
}

// The %f verbs receive the configured bounding box as
// minLat, minLon, maxLat, maxLon.
const indexHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Hydromap</title>
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
    <script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
    <style>
        html, body, #map { height: 100%%; margin: 0; }
        .popup-obs { margin: 2px 0; }
    </style>
</head>
<body>
    <div id="map"></div>
    <script>
        const map = L.map('map').fitBounds([[%f, %f], [%f, %f]]);
        L.tileLayer('https://tile.openstreetmap.org/{z}/{x}/{y}.png', {
            attribution: '&copy; OpenStreetMap contributors'
        }).addTo(map);

        const markers = {};

        function popupHTML(props) {
            let html = '<strong>' + (props.name || props.station_id) + '</strong>';
            for (const obs of props.observations || []) {
                const when = obs.timestamp ? new Date(obs.timestamp).toLocaleString() : 'n/a';
                html += '<div class="popup-obs">' + obs.parameter + ': ' +
                    (obs.value ?? 'n/a') + ' ' + (obs.unit || '') + ' (' + when + ')</div>';
            }
            return html;
        }

        function upsertStation(station) {
            const props = {
                station_id: station.id,
                name: station.name,
                observations: station.observations
            };
            if (markers[station.id]) {
                markers[station.id].setPopupContent(popupHTML(props));
                return;
            }
            markers[station.id] = L.marker([station.latitude, station.longitude])
                .addTo(map)
                .bindPopup(popupHTML(props));
        }

        // Station markers arrive over SSE: a snapshot on connect,
        // then live updates.
        fetch('/api/layers')
            .then(resp => resp.json())
            .then(list => {
                for (const info of list) {
                    fetch('/api/layers/' + info.name)
                        .then(resp => resp.json())
                        .then(fc => L.geoJSON(fc, { style: { weight: 1, opacity: 0.6 } }).addTo(map));
                }
            });

        const events = new EventSource('/events');
        events.addEventListener('station', e => upsertStation(JSON.parse(e.data)));
    </script>
</body>
</html>`
