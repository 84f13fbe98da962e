package layers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"hydromap/internal/config"
	"hydromap/internal/metrics"
)

func TestHandleLayer(t *testing.T) {
	const body = `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":null,"properties":{"ZONE":"A"}}]}`

	fetcher := &fakeFetcher{
		responses: map[string][]byte{
			"https://example.com/Flood/FeatureServer/0": []byte(body),
		},
	}
	mgr := NewManager(fetcher, metrics.New(), testLogger(), []config.LayerConfig{
		{Name: "flood-zones", URL: "https://example.com/Flood/FeatureServer/0"},
	}, testBBox)
	mgr.LoadAll()

	router := chi.NewRouter()
	RegisterHandlers(router, mgr)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/layers/flood-zones", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != body {
		t.Errorf("Layer must be served verbatim, got %s", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/geo+json" {
		t.Errorf("Expected geo+json content type, got %s", ct)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/layers/unknown", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown layer, got %d", rec.Code)
	}
}
