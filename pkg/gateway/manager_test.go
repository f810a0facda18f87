package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"browsermcp/pkg/api"
	"browsermcp/pkg/config"
	"browsermcp/pkg/monitor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(ids ...string) *GatewayManager {
	g := NewGatewayManager()
	if len(ids) > 0 {
		var mu sync.Mutex
		next := 0
		g.newID = func() string {
			mu.Lock()
			defer mu.Unlock()
			id := ids[next%len(ids)]
			next++
			return id
		}
	}
	return g
}

func reply(t *testing.T, g *GatewayManager, conn *fakeConn, id string, data any, errText string) {
	t.Helper()
	frame := map[string]any{"id": id, "type": "messageResponse", "data": data}
	if errText != "" {
		frame["error"] = errText
	}
	raw, err := json.Marshal(frame)
	require.NoError(t, err)
	g.OnMessage(conn, raw)
}

type recordingMonitor struct {
	mu   sync.Mutex
	msgs []monitor.MonitorMessage
}

func (m *recordingMonitor) Start() error { return nil }
func (m *recordingMonitor) Stop() error  { return nil }
func (m *recordingMonitor) OnMessage(msg monitor.MonitorMessage) {
	m.mu.Lock()
	m.msgs = append(m.msgs, msg)
	m.mu.Unlock()
}

func TestCallWithoutConnection(t *testing.T) {
	g := newTestManager()
	_, err := g.Call(context.Background(), "getUrl", nil)
	assert.ErrorIs(t, err, ErrNoConnection)
	assert.Zero(t, g.Pending())
}

func TestCallRoundTrip(t *testing.T) {
	g := newTestManager("abc123xyz")
	conn := newFakeConn("c1")
	g.OnConnect(conn)

	type out struct {
		data []byte
		err  error
	}
	done := make(chan out, 1)
	go func() {
		data, err := g.Call(context.Background(), "browser_navigate", map[string]any{"url": "https://example.com"})
		done <- out{data, err}
	}()

	env := conn.nextEnvelope(t)
	assert.Equal(t, "abc123xyz", env["id"])
	assert.Equal(t, "browser_navigate", env["type"])
	assert.Equal(t, map[string]any{"url": "https://example.com"}, env["data"])
	assert.Equal(t, 1, g.Pending())

	reply(t, g, conn, "abc123xyz", "ok", "")

	res := <-done
	require.NoError(t, res.err)
	assert.JSONEq(t, `"ok"`, string(res.data))
	assert.Zero(t, g.Pending())
}

func TestCallOmitsNilPayload(t *testing.T) {
	g := newTestManager("abc123xyz")
	conn := newFakeConn("c1")
	g.OnConnect(conn)

	go func() { _, _ = g.Call(context.Background(), "getTitle", nil) }()

	env := conn.nextEnvelope(t)
	_, hasData := env["data"]
	assert.False(t, hasData)
	reply(t, g, conn, "abc123xyz", "Example", "")
}

func TestConcurrentCallsResolveOutOfOrder(t *testing.T) {
	g := newTestManager("abc123xyz", "def456uvw")
	conn := newFakeConn("c1")
	g.OnConnect(conn)

	results := make(map[string]string)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, action := range []string{"getUrl", "getTitle"} {
		wg.Add(1)
		go func(action string) {
			defer wg.Done()
			data, err := g.Call(context.Background(), action, nil)
			if !assert.NoError(t, err) {
				return
			}
			var s string
			assert.NoError(t, json.Unmarshal(data, &s))
			mu.Lock()
			results[action] = s
			mu.Unlock()
		}(action)
	}

	first := conn.nextEnvelope(t)
	second := conn.nextEnvelope(t)

	// Answer in reverse order; each reply names the action it belongs to.
	reply(t, g, conn, second["id"].(string), "reply-to-"+second["type"].(string), "")
	reply(t, g, conn, first["id"].(string), "reply-to-"+first["type"].(string), "")
	wg.Wait()

	assert.Equal(t, "reply-to-getUrl", results["getUrl"])
	assert.Equal(t, "reply-to-getTitle", results["getTitle"])
	assert.Zero(t, g.Pending())
}

func TestCallTimeoutThenLateReply(t *testing.T) {
	g := newTestManager("abc123xyz")
	conn := newFakeConn("c1")
	g.OnConnect(conn)

	_, err := g.Call(context.Background(), "getUrl", nil, WithTimeout(30*time.Millisecond))

	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "Message timeout: getUrl", err.Error())
	assert.Zero(t, g.Pending())

	assert.NotPanics(t, func() { reply(t, g, conn, "abc123xyz", "late", "") })
	assert.Zero(t, g.Pending())
}

func TestManagerDefaultTimeout(t *testing.T) {
	g := newTestManager("abc123xyz")
	g.SetCallTimeout(20 * time.Millisecond)
	g.OnConnect(newFakeConn("c1"))

	start := time.Now()
	_, err := g.Execute(context.Background(), api.ActionRequest{Action: "getTitle"})
	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestCallContextCancel(t *testing.T) {
	g := newTestManager("abc123xyz")
	conn := newFakeConn("c1")
	g.OnConnect(conn)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := g.Call(ctx, "browser_wait", map[string]any{"time": 10})
		done <- err
	}()

	conn.nextEnvelope(t)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("call did not observe cancellation")
	}
	assert.Zero(t, g.Pending())
}

func TestRemoteNoConnectedTab(t *testing.T) {
	g := newTestManager("abc123xyz")
	conn := newFakeConn("c1")
	g.OnConnect(conn)

	done := make(chan error, 1)
	go func() {
		_, err := g.Call(context.Background(), "browser_snapshot", nil)
		done <- err
	}()
	conn.nextEnvelope(t)
	reply(t, g, conn, "abc123xyz", nil, NoConnectedTabMessage)

	assert.ErrorIs(t, <-done, ErrNoConnection)
}

func TestRemoteError(t *testing.T) {
	g := newTestManager("abc123xyz")
	conn := newFakeConn("c1")
	g.OnConnect(conn)

	done := make(chan error, 1)
	go func() {
		_, err := g.Call(context.Background(), "browser_click", map[string]any{"ref": "s1e4"})
		done <- err
	}()
	conn.nextEnvelope(t)
	reply(t, g, conn, "abc123xyz", nil, "Element not found")

	err := <-done
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "browser_click", remote.Action)
	assert.Equal(t, "Element not found", remote.Message)
}

func TestSendFailureClearsPending(t *testing.T) {
	g := newTestManager("abc123xyz")
	conn := newFakeConn("c1")
	conn.sendErr = errors.New("broken pipe")
	g.OnConnect(conn)

	_, err := g.Call(context.Background(), "getUrl", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken pipe")
	assert.Zero(t, g.Pending())
}

func TestOnMessageDropsJunk(t *testing.T) {
	g := newTestManager()
	conn := newFakeConn("c1")
	g.OnConnect(conn)

	assert.NotPanics(t, func() {
		g.OnMessage(conn, []byte("not json"))
		g.OnMessage(conn, []byte(`{"type":"ping"}`))
		g.OnMessage(conn, []byte(`{"id":"nobody","data":1}`))
	})
	assert.Zero(t, g.Pending())
}

func TestReconnectAndDisconnect(t *testing.T) {
	g := newTestManager()
	a, b := newFakeConn("a"), newFakeConn("b")

	g.OnConnect(a)
	g.OnConnect(b)
	assert.True(t, a.isClosed())

	g.OnDisconnect(a)
	assert.True(t, g.Holder().Has())

	g.OnDisconnect(b)
	assert.False(t, g.Holder().Has())

	_, err := g.Call(context.Background(), "getUrl", nil)
	assert.ErrorIs(t, err, ErrNoConnection)
}

func TestMonitorAndMetrics(t *testing.T) {
	g := newTestManager("abc123xyz", "def456uvw")
	mon := &recordingMonitor{}
	metrics := monitor.NewMetrics()
	g.SetMonitor(mon)
	g.SetMetrics(metrics)

	conn := newFakeConn("c1")
	g.OnConnect(conn)

	done := make(chan error, 1)
	go func() {
		_, err := g.Call(context.Background(), "getUrl", nil)
		done <- err
	}()
	conn.nextEnvelope(t)
	reply(t, g, conn, "abc123xyz", "https://example.com", "")
	require.NoError(t, <-done)

	_, err := g.Call(context.Background(), "getTitle", nil, WithTimeout(10*time.Millisecond))
	require.Error(t, err)

	mon.mu.Lock()
	require.Len(t, mon.msgs, 3)
	assert.Equal(t, monitor.DirectionOut, mon.msgs[0].Direction)
	assert.Equal(t, monitor.DirectionIn, mon.msgs[1].Direction)
	assert.Equal(t, "abc123xyz", mon.msgs[1].CallID)
	mon.mu.Unlock()

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `browsermcp_relay_calls_total{action="getUrl",outcome="ok"} 1`)
	assert.Contains(t, body, `browsermcp_relay_calls_total{action="getTitle",outcome="timeout"} 1`)
	assert.Contains(t, body, `browsermcp_extension_connections_total{event="accepted"} 1`)
}

type stubChannel struct {
	id       string
	startErr error
	started  bool
	stopped  bool
}

func (c *stubChannel) ID() string { return c.id }
func (c *stubChannel) Start(ctx api.ChannelContext) error {
	c.started = true
	return c.startErr
}
func (c *stubChannel) Stop() error {
	c.stopped = true
	return nil
}

func TestBuilder(t *testing.T) {
	cfg := config.DefaultSystemConfig()
	cfg.CallTimeoutMs = 1234
	ch := &stubChannel{id: "websocket"}

	gw, err := NewGatewayBuilder().
		WithSystemConfig(cfg).
		WithMonitor(&recordingMonitor{}).
		WithMetrics(monitor.NewMetrics()).
		WithChannel(ch).
		Build()
	require.NoError(t, err)
	assert.True(t, ch.started)
	assert.Equal(t, 1234*time.Millisecond, gw.timeout)

	gw.StopAll()
	assert.True(t, ch.stopped)
}

func TestBuilderStartFailure(t *testing.T) {
	ch := &stubChannel{id: "websocket", startErr: fmt.Errorf("address in use")}
	_, err := NewGatewayBuilder().WithChannel(ch).Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address in use")
}
