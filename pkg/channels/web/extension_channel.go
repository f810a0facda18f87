package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"browsermcp/pkg/api"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ChannelName is the registry key of the extension websocket channel.
const ChannelName = "websocket"

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // the extension connects from a chrome-extension:// origin
	},
}

// ExtensionConfig configures the extension listener.
type ExtensionConfig struct {
	Addr    string       // host:port to listen on
	Metrics http.Handler // served at /metrics when non-nil
}

// SafeConn serializes writes on a websocket; gorilla allows one concurrent
// writer only, and many relay calls share the connection.
type SafeConn struct {
	*websocket.Conn
	id string
	mu sync.Mutex
}

func newSafeConn(c *websocket.Conn) *SafeConn {
	return &SafeConn{Conn: c, id: uuid.NewString()}
}

// ID returns the connection's unique id.
func (sc *SafeConn) ID() string {
	return sc.id
}

// WriteMessage writes one frame under the write lock.
func (sc *SafeConn) WriteMessage(messageType int, data []byte) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.Conn.WriteMessage(messageType, data)
}

// Send implements api.Conn with a text frame.
func (sc *SafeConn) Send(data []byte) error {
	return sc.WriteMessage(websocket.TextMessage, data)
}

// ExtensionChannel accepts browser extension connections on a websocket
// listener and feeds their frames to the gateway.
type ExtensionChannel struct {
	config   ExtensionConfig
	server   *http.Server
	listener net.Listener
	mu       sync.Mutex
}

func NewExtensionChannel(cfg ExtensionConfig) *ExtensionChannel {
	return &ExtensionChannel{config: cfg}
}

func (c *ExtensionChannel) ID() string {
	return ChannelName
}

// Handler returns the HTTP handler serving the websocket upgrade on "/"
// and, if configured, metrics on "/metrics".
func (c *ExtensionChannel) Handler(ctx api.ChannelContext) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		c.handleWebSocket(w, r, ctx)
	})
	if c.config.Metrics != nil {
		mux.Handle("/metrics", c.config.Metrics)
	}
	return mux
}

// Start binds the listener and serves in the background. A bind failure is
// returned to the caller.
func (c *ExtensionChannel) Start(ctx api.ChannelContext) error {
	ln, err := net.Listen("tcp", c.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", c.config.Addr, err)
	}

	c.mu.Lock()
	c.listener = ln
	c.server = &http.Server{Handler: c.Handler(ctx)}
	server := c.server
	c.mu.Unlock()

	slog.Info("Extension websocket listening", "addr", ln.Addr().String())

	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Extension websocket server error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound address, or "" before Start.
func (c *ExtensionChannel) Addr() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.listener == nil {
		return ""
	}
	return c.listener.Addr().String()
}

// Stop closes the listener. Upgraded connections are owned by the gateway's
// holder and are closed there.
func (c *ExtensionChannel) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.server != nil {
		return c.server.Close()
	}
	return nil
}

func (c *ExtensionChannel) handleWebSocket(w http.ResponseWriter, r *http.Request, ctx api.ChannelContext) {
	rawConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WS Upgrade failed", "error", err)
		return
	}

	conn := newSafeConn(rawConn)
	slog.Debug("Extension connection upgraded", "conn", conn.ID(), "remote", r.RemoteAddr)
	ctx.OnConnect(conn)

	defer func() {
		ctx.OnDisconnect(conn)
		conn.Close()
	}()

	for {
		msgType, msgBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("Extension connection read error", "conn", conn.ID(), "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage && msgType != websocket.BinaryMessage {
			continue
		}
		ctx.OnMessage(conn, msgBytes)
	}
}
