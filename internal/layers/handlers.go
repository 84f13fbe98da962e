package layers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hydromap/internal/httpx"
)

// RegisterHandlers registers the feature layer HTTP handlers
func RegisterHandlers(r chi.Router, mgr Manager) {
	r.Get("/api/layers", handleLayers(mgr))
	r.Get("/api/layers/{name}", handleLayer(mgr))
}

// handleLayers lists the successfully fetched layers
func handleLayers(mgr Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, mgr.ListLayers())
	}
}

// handleLayer serves one layer's feature collection exactly as the
// source endpoint returned it
func handleLayer(mgr Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")

		layer, exists := mgr.GetLayer(name)
		if !exists {
			httpx.Error(w, http.StatusNotFound, "layer not found")
			return
		}

		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = w.Write(layer.Data)
	}
}
