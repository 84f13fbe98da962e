package sse

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// RegisterHandlers registers the SSE HTTP handlers
func RegisterHandlers(r chi.Router, mgr Manager, logger *slog.Logger) {
	r.Get("/events", handleSSE(mgr, logger))
}

// handleSSE handles Server-Sent Events connections
func handleSSE(mgr Manager, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no") // Disable Nginx buffering

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "Streaming not supported", http.StatusInternalServerError)
			return
		}

		clientID := r.Header.Get("X-Client-Id")
		if clientID == "" {
			clientID = fmt.Sprintf("%s-%d", r.RemoteAddr, time.Now().UnixNano())
		}

		messageChan := mgr.AddClient(clientID)
		defer mgr.RemoveClient(clientID)

		initialMsg := Message{
			Type: "connected",
			Data: map[string]any{"client_id": clientID},
		}
		if err := writeMessage(w, initialMsg); err != nil {
			logger.Error("failed to send initial sse message", "client", clientID, "error", err)
			return
		}
		flusher.Flush()

		// Triggers the snapshot push for this client
		mgr.NotifyClientConnected(clientID)

		keepalive := time.NewTicker(30 * time.Second)
		defer keepalive.Stop()

		for {
			select {
			case <-r.Context().Done():
				return

			case msg, ok := <-messageChan:
				if !ok {
					return
				}
				if err := writeMessage(w, msg); err != nil {
					logger.Error("failed to send sse message", "client", clientID, "error", err)
					return
				}
				flusher.Flush()

			case <-keepalive.C:
				if _, err := fmt.Fprintf(w, ": keepalive\n\n"); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

// writeMessage writes a message in SSE wire format
func writeMessage(w http.ResponseWriter, msg Message) error {
	if msg.ID == 0 {
		msg.ID = time.Now().UnixNano()
	}

	if _, err := fmt.Fprintf(w, "id: %d\n", msg.ID); err != nil {
		return err
	}
	if msg.Type != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", msg.Type); err != nil {
			return err
		}
	}

	data := []byte("{}")
	if msg.Data != nil {
		encoded, err := json.Marshal(msg.Data)
		if err != nil {
			return fmt.Errorf("failed to marshal sse data: %w", err)
		}
		data = encoded
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	return nil
}
