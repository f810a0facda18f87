package gateway

import (
	"log/slog"
	"sync"

	"browsermcp/pkg/api"
)

// ConnectionHolder owns the single active extension connection.
// At most one connection is live at a time: installing a new one closes
// the previous one first.
type ConnectionHolder struct {
	mu   sync.RWMutex
	conn api.Conn
}

// NewConnectionHolder returns an empty holder.
func NewConnectionHolder() *ConnectionHolder {
	return &ConnectionHolder{}
}

// Get returns the current connection, or ErrNoConnection if none is set.
func (h *ConnectionHolder) Get() (api.Conn, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.conn == nil {
		return nil, ErrNoConnection
	}
	return h.conn, nil
}

// Has reports whether a connection is installed.
func (h *ConnectionHolder) Has() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.conn != nil
}

// Set installs conn, closing any previous connection. A failure to close
// the old connection is logged and does not prevent the replacement.
func (h *ConnectionHolder) Set(conn api.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conn != nil && h.conn != conn {
		if err := h.conn.Close(); err != nil {
			slog.Warn("Failed to close replaced connection", "conn", h.conn.ID(), "error", err)
		}
	}
	h.conn = conn
}

// Release clears the holder only if conn is still the current connection.
// It reports whether it did. Use it when a peer goes away on its own so a
// stale read loop cannot evict its replacement.
func (h *ConnectionHolder) Release(conn api.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conn == nil || h.conn != conn {
		return false
	}
	h.conn = nil
	return true
}

// Close closes the current connection, if any, and clears the holder.
func (h *ConnectionHolder) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conn == nil {
		return nil
	}
	err := h.conn.Close()
	h.conn = nil
	return err
}
