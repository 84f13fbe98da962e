package stations

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hydromap/internal/httpx"
)

// RegisterHandlers registers the station HTTP handlers
func RegisterHandlers(r chi.Router, mgr Manager) {
	r.Get("/api/stations", handleStations(mgr))
	r.Get("/api/stations.geojson", handleStationsGeoJSON(mgr))
	r.Get("/api/stations/{stationID}", handleStation(mgr))
	r.Get("/api/stations/{stationID}/observations", handleObservations(mgr))
}

// handleStations handles the stations list endpoint
func handleStations(mgr Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, mgr.GetAllStations())
	}
}

// handleStationsGeoJSON serves the stations as a map-ready feature collection
func handleStationsGeoJSON(mgr Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/geo+json")
		_ = json.NewEncoder(w).Encode(mgr.GeoJSON())
	}
}

// handleStation handles individual station lookup
func handleStation(mgr Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stationID := chi.URLParam(r, "stationID")

		station, exists := mgr.GetStation(stationID)
		if !exists {
			httpx.Error(w, http.StatusNotFound, "station not found")
			return
		}
		httpx.WriteJSON(w, http.StatusOK, station)
	}
}

// handleObservations serves a station's latest observation per parameter
func handleObservations(mgr Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stationID := chi.URLParam(r, "stationID")

		station, exists := mgr.GetStation(stationID)
		if !exists {
			httpx.Error(w, http.StatusNotFound, "station not found")
			return
		}
		httpx.WriteJSON(w, http.StatusOK, station.Observations)
	}
}
