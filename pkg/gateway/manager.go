package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"browsermcp/pkg/api"
	"browsermcp/pkg/monitor"
	"browsermcp/pkg/utils"

	jsoniter "github.com/json-iterator/go"
)

// DefaultCallTimeout applies when neither the call nor the manager sets one.
const DefaultCallTimeout = 30 * time.Second

// result is what the dispatcher hands to a waiting call.
type result struct {
	data jsoniter.RawMessage
	err  error
}

// pendingCall is one outstanding request waiting for its reply.
type pendingCall struct {
	action string
	done   chan result // buffered(1), written at most once under the manager lock
}

// GatewayManager multiplexes correlated calls over the single extension
// connection. It owns the connection holder and the pending-call table,
// and implements api.ChannelContext for the channels feeding it.
type GatewayManager struct {
	holder   *ConnectionHolder
	channels map[string]api.Channel
	chMu     sync.RWMutex

	mu      sync.Mutex
	pending map[string]*pendingCall

	timeout time.Duration
	newID   func() string
	monitor monitor.Monitor
	metrics *monitor.Metrics
}

// NewGatewayManager builds a manager with an empty holder.
func NewGatewayManager() *GatewayManager {
	return &GatewayManager{
		holder:   NewConnectionHolder(),
		channels: make(map[string]api.Channel),
		pending:  make(map[string]*pendingCall),
		timeout:  DefaultCallTimeout,
		newID:    utils.NewCallID,
	}
}

// SetCallTimeout changes the default per-call timeout.
func (g *GatewayManager) SetCallTimeout(d time.Duration) {
	if d > 0 {
		g.timeout = d
	}
}

// SetMonitor sets the traffic monitor.
func (g *GatewayManager) SetMonitor(m monitor.Monitor) {
	g.monitor = m
}

// SetMetrics sets the Prometheus collectors.
func (g *GatewayManager) SetMetrics(m *monitor.Metrics) {
	g.metrics = m
}

// Holder exposes the connection holder.
func (g *GatewayManager) Holder() *ConnectionHolder {
	return g.holder
}

// Register adds a channel that will be started by StartAll.
func (g *GatewayManager) Register(c api.Channel) {
	g.chMu.Lock()
	defer g.chMu.Unlock()
	g.channels[c.ID()] = c
}

// StartAll starts every registered channel with the manager as its context.
func (g *GatewayManager) StartAll() error {
	g.chMu.RLock()
	defer g.chMu.RUnlock()

	for id, c := range g.channels {
		slog.Info("Starting channel", "channel", id)
		if err := c.Start(g); err != nil {
			return fmt.Errorf("failed to start channel %s: %w", id, err)
		}
	}
	return nil
}

// StopAll stops every channel and closes the live connection.
func (g *GatewayManager) StopAll() {
	g.chMu.RLock()
	for id, c := range g.channels {
		slog.Info("Stopping channel", "channel", id)
		if err := c.Stop(); err != nil {
			slog.Error("Error stopping channel", "channel", id, "error", err)
		}
	}
	g.chMu.RUnlock()

	if err := g.holder.Close(); err != nil {
		slog.Warn("Error closing extension connection", "error", err)
	}
}

// CallOption customizes a single Call.
type CallOption func(*callOptions)

type callOptions struct {
	timeout time.Duration
}

// WithTimeout overrides the timeout for one call.
func WithTimeout(d time.Duration) CallOption {
	return func(o *callOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// Execute implements api.Controller.
func (g *GatewayManager) Execute(ctx context.Context, req api.ActionRequest) (jsoniter.RawMessage, error) {
	return g.Call(ctx, req.Action, req.Params, WithTimeout(req.Timeout))
}

// Call sends action with payload to the extension and waits for the reply
// carrying the same correlation id. Exactly one of reply, timeout or
// context cancellation ends the call; the pending entry is gone afterwards.
func (g *GatewayManager) Call(ctx context.Context, action string, payload any, opts ...CallOption) (jsoniter.RawMessage, error) {
	o := callOptions{timeout: g.timeout}
	for _, opt := range opts {
		opt(&o)
	}

	conn, err := g.holder.Get()
	if err != nil {
		g.metrics.ObserveCall(action, monitor.OutcomeNoConnection, 0)
		return nil, err
	}

	id := g.newID()
	ctx = monitor.WithCallID(ctx, id)

	frame, err := json.Marshal(Envelope{ID: id, Type: action, Data: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", action, err)
	}

	call := &pendingCall{action: action, done: make(chan result, 1)}
	g.addPending(id, call)

	start := time.Now()
	g.observe(monitor.DirectionOut, conn.ID(), action, id, len(frame))
	slog.DebugContext(ctx, "Relaying action", "action", action, "conn", conn.ID())

	if err := conn.Send(frame); err != nil {
		g.removePending(id)
		err = translate(err)
		if errors.Is(err, ErrNoConnection) {
			g.metrics.ObserveCall(action, monitor.OutcomeNoConnection, time.Since(start))
			return nil, err
		}
		g.metrics.ObserveCall(action, monitor.OutcomeSendError, time.Since(start))
		return nil, fmt.Errorf("failed to send %s: %w", action, err)
	}

	timer := time.NewTimer(o.timeout)
	defer timer.Stop()

	select {
	case res := <-call.done:
		return g.finish(ctx, action, res, start)
	case <-timer.C:
		if res, ok := g.abandon(id, call); ok {
			return g.finish(ctx, action, res, start)
		}
		slog.WarnContext(ctx, "Relay call timed out", "action", action, "timeout", o.timeout)
		g.metrics.ObserveCall(action, monitor.OutcomeTimeout, time.Since(start))
		return nil, &TimeoutError{Action: action}
	case <-ctx.Done():
		if res, ok := g.abandon(id, call); ok {
			return g.finish(ctx, action, res, start)
		}
		g.metrics.ObserveCall(action, monitor.OutcomeCanceled, time.Since(start))
		return nil, ctx.Err()
	}
}

func (g *GatewayManager) finish(ctx context.Context, action string, res result, start time.Time) (jsoniter.RawMessage, error) {
	if res.err != nil {
		err := translate(res.err)
		outcome := monitor.OutcomeRemoteError
		if errors.Is(err, ErrNoConnection) {
			outcome = monitor.OutcomeNoConnection
		}
		slog.DebugContext(ctx, "Extension reported failure", "action", action, "error", err)
		g.metrics.ObserveCall(action, outcome, time.Since(start))
		return nil, err
	}
	g.metrics.ObserveCall(action, monitor.OutcomeOK, time.Since(start))
	return res.data, nil
}

// abandon removes the pending entry on timeout or cancellation. If the
// dispatcher got there first the reply is already buffered and is returned.
func (g *GatewayManager) abandon(id string, call *pendingCall) (result, bool) {
	g.mu.Lock()
	_, still := g.pending[id]
	if still {
		delete(g.pending, id)
	}
	n := len(g.pending)
	g.mu.Unlock()

	if still {
		g.metrics.SetPending(n)
		return result{}, false
	}
	return <-call.done, true
}

func (g *GatewayManager) addPending(id string, call *pendingCall) {
	g.mu.Lock()
	g.pending[id] = call
	n := len(g.pending)
	g.mu.Unlock()
	g.metrics.SetPending(n)
}

func (g *GatewayManager) removePending(id string) {
	g.mu.Lock()
	delete(g.pending, id)
	n := len(g.pending)
	g.mu.Unlock()
	g.metrics.SetPending(n)
}

// Pending returns the number of calls waiting for a reply.
func (g *GatewayManager) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}

// OnConnect installs a newly accepted extension connection, closing the
// previous one if present.
func (g *GatewayManager) OnConnect(conn api.Conn) {
	if g.holder.Has() {
		slog.Info("Replacing existing extension connection", "conn", conn.ID())
		g.metrics.ConnectionEvent("replaced")
	}
	g.holder.Set(conn)
	g.metrics.ConnectionEvent("accepted")
	slog.Info("Browser extension connected", "conn", conn.ID())
}

// OnMessage routes an inbound frame to the call waiting on its id.
// Frames that do not decode, or whose id matches nothing, are dropped.
func (g *GatewayManager) OnMessage(conn api.Conn, data []byte) {
	var reply Reply
	if err := json.Unmarshal(data, &reply); err != nil {
		slog.Debug("Dropping undecodable frame", "conn", conn.ID(), "error", err)
		return
	}
	if reply.ID == "" {
		slog.Debug("Dropping frame without id", "conn", conn.ID())
		return
	}

	g.mu.Lock()
	call, ok := g.pending[reply.ID]
	if ok {
		delete(g.pending, reply.ID)
		res := result{data: reply.Data}
		if text := reply.ErrorText(); text != "" {
			res.err = &RemoteError{Action: call.action, Message: text}
		}
		call.done <- res
	}
	n := len(g.pending)
	g.mu.Unlock()

	if !ok {
		slog.Debug("Dropping unmatched reply", "conn", conn.ID(), "id", reply.ID)
		return
	}
	g.metrics.SetPending(n)
	g.observe(monitor.DirectionIn, conn.ID(), call.action, reply.ID, len(data))
}

// OnDisconnect clears the holder if conn is still the current connection.
func (g *GatewayManager) OnDisconnect(conn api.Conn) {
	if g.holder.Release(conn) {
		slog.Info("Browser extension disconnected", "conn", conn.ID())
		g.metrics.ConnectionEvent("closed")
	}
}

func (g *GatewayManager) observe(direction, connID, action, id string, size int) {
	if g.monitor == nil {
		return
	}
	g.monitor.OnMessage(monitor.MonitorMessage{
		Timestamp: time.Now(),
		Direction: direction,
		ConnID:    connID,
		Action:    action,
		CallID:    id,
		Bytes:     size,
	})
}
