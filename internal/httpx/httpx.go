// Package httpx holds small JSON response helpers shared by the HTTP
// handlers.
package httpx

import (
	"encoding/json"
	"net/http"
)

// WriteJSON serializes v as JSON with the provided status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a structured error response.
func Error(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}
