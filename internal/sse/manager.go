package sse

import (
	"log/slog"
	"sync"
	"time"
)

// manager implements the SSE Manager interface
type manager struct {
	clients   map[string]chan Message
	onConnect func(clientID string)
	logger    *slog.Logger
	mu        sync.RWMutex
}

// NewManager creates a new SSE manager instance
func NewManager(logger *slog.Logger) Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &manager{
		clients: make(map[string]chan Message),
		logger:  logger,
	}
}

// AddClient registers a new SSE client and returns a channel for messages
func (m *manager) AddClient(clientID string) <-chan Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Replace an existing registration under the same ID
	if existing, exists := m.clients[clientID]; exists {
		close(existing)
		delete(m.clients, clientID)
	}

	// Buffered so a slow client does not stall broadcasts
	clientChan := make(chan Message, 100)
	m.clients[clientID] = clientChan

	m.logger.Info("sse client connected", "client", clientID, "total", len(m.clients))
	return clientChan
}

// RemoveClient unregisters an SSE client
func (m *manager) RemoveClient(clientID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if clientChan, exists := m.clients[clientID]; exists {
		close(clientChan)
		delete(m.clients, clientID)
		m.logger.Info("sse client disconnected", "client", clientID, "remaining", len(m.clients))
	}
}

// HasClients returns true if there are any connected clients
func (m *manager) HasClients() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.clients) > 0
}

// ClientCount returns the number of connected clients
func (m *manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.clients)
}

// Broadcast sends a message to all connected clients
func (m *manager) Broadcast(message Message) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stampMessage(&message)

	for clientID, clientChan := range m.clients {
		select {
		case clientChan <- message:
		default:
			// Channel full, client is slow or gone
			m.logger.Warn("sse client channel full, dropping message", "client", clientID)
		}
	}
}

// SendToClient sends a message to a specific client
func (m *manager) SendToClient(clientID string, message Message) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	clientChan, exists := m.clients[clientID]
	if !exists {
		return
	}

	stampMessage(&message)

	select {
	case clientChan <- message:
	default:
		m.logger.Warn("sse client channel full, dropping message", "client", clientID)
	}
}

// SetClientConnectCallback sets a callback invoked when a new client connects
func (m *manager) SetClientConnectCallback(callback func(clientID string)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.onConnect = callback
}

// NotifyClientConnected notifies about a new client connection
func (m *manager) NotifyClientConnected(clientID string) {
	m.mu.RLock()
	callback := m.onConnect
	m.mu.RUnlock()

	if callback != nil {
		callback(clientID)
	}
}

func stampMessage(message *Message) {
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now()
	}
	if message.ID == 0 {
		message.ID = message.Timestamp.UnixNano()
	}
}
