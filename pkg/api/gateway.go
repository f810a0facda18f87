package api

import (
	"context"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// Conn is a single live duplex link to the browser extension.
// Implementations must allow Send to be called from several goroutines.
type Conn interface {
	// ID returns an identifier that is stable for the life of the connection.
	ID() string
	// Send writes one text frame to the peer.
	Send(data []byte) error
	// Close tears the link down. Calling it more than once is allowed.
	Close() error
}

// Channel defines the standardized lifecycle interface for the transports
// that accept extension connections.
type Channel interface {
	ID() string
	Start(ctx ChannelContext) error
	Stop() error
}

// ChannelContext is what a Channel reports back to the Gateway core.
// OnConnect is called for every accepted peer, OnMessage for every inbound
// frame, and OnDisconnect once the peer's read loop has ended.
type ChannelContext interface {
	OnConnect(conn Conn)
	OnMessage(conn Conn, data []byte)
	OnDisconnect(conn Conn)
}

// ActionRequest is one relayed browser action.
type ActionRequest struct {
	Action  string        // Action type understood by the extension, e.g. "browser_click"
	Params  any           // Payload marshalled into the envelope's data field (nil is sent as absent)
	Timeout time.Duration // Zero means the gateway default
}

// Controller relays an action to the connected browser and waits for its
// correlated reply. The raw reply data is returned undecoded.
type Controller interface {
	Execute(ctx context.Context, req ActionRequest) (jsoniter.RawMessage, error)
}
