package web

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"browsermcp/pkg/channels"
	"browsermcp/pkg/config"
	"browsermcp/pkg/gateway"
	"browsermcp/pkg/monitor"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testJSON = jsoniter.ConfigCompatibleWithStandardLibrary

func dialExtension(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(url, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	return conn
}

// answerOne plays the extension side for a single request.
func answerOne(t *testing.T, conn *websocket.Conn, data any) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var req map[string]any
	require.NoError(t, testJSON.Unmarshal(raw, &req))

	resp, err := testJSON.Marshal(map[string]any{"id": req["id"], "type": "messageResponse", "data": data})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, resp))
	return req
}

func TestExtensionRoundTrip(t *testing.T) {
	gw := gateway.NewGatewayManager()
	ch := NewExtensionChannel(ExtensionConfig{})
	srv := httptest.NewServer(ch.Handler(gw))
	defer srv.Close()

	ext := dialExtension(t, srv.URL)
	defer ext.Close()
	require.Eventually(t, gw.Holder().Has, 2*time.Second, 10*time.Millisecond)

	done := make(chan string, 1)
	go func() {
		data, err := gw.Call(context.Background(), "getUrl", nil)
		if err != nil {
			done <- "error: " + err.Error()
			return
		}
		var s string
		_ = testJSON.Unmarshal(data, &s)
		done <- s
	}()

	req := answerOne(t, ext, "https://example.com/")
	assert.Equal(t, "getUrl", req["type"])

	select {
	case got := <-done:
		assert.Equal(t, "https://example.com/", got)
	case <-time.After(2 * time.Second):
		t.Fatal("call did not resolve")
	}
}

func TestExtensionReplaceAndDisconnect(t *testing.T) {
	gw := gateway.NewGatewayManager()
	ch := NewExtensionChannel(ExtensionConfig{})
	srv := httptest.NewServer(ch.Handler(gw))
	defer srv.Close()

	first := dialExtension(t, srv.URL)
	defer first.Close()
	require.Eventually(t, gw.Holder().Has, 2*time.Second, 10*time.Millisecond)
	firstConn, err := gw.Holder().Get()
	require.NoError(t, err)

	second := dialExtension(t, srv.URL)
	require.Eventually(t, func() bool {
		c, err := gw.Holder().Get()
		return err == nil && c.ID() != firstConn.ID()
	}, 2*time.Second, 10*time.Millisecond)

	// The first socket was closed by the replacement.
	require.NoError(t, first.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = first.ReadMessage()
	assert.Error(t, err)

	// The stale read loop ending must not evict the second connection.
	time.Sleep(50 * time.Millisecond)
	assert.True(t, gw.Holder().Has())

	require.NoError(t, second.Close())
	assert.Eventually(t, func() bool { return !gw.Holder().Has() }, 2*time.Second, 10*time.Millisecond)

	_, err = gw.Call(context.Background(), "getTitle", nil)
	assert.ErrorIs(t, err, gateway.ErrNoConnection)
}

func TestExtensionChannelStartServesMetrics(t *testing.T) {
	metrics := monitor.NewMetrics()
	cfg := config.DefaultSystemConfig()
	cfg.WSHost = "127.0.0.1"

	factory, ok := channels.GetChannelFactory(ChannelName)
	require.True(t, ok)
	created, err := factory.Create(cfg, channels.Resources{Metrics: metrics})
	require.NoError(t, err)
	assert.Equal(t, ChannelName, created.ID())

	// Bind an ephemeral port instead of the configured one.
	ch := NewExtensionChannel(ExtensionConfig{Addr: "127.0.0.1:0", Metrics: metrics.Handler()})
	gw := gateway.NewGatewayManager()
	gw.SetMetrics(metrics)
	require.NoError(t, ch.Start(gw))
	defer ch.Stop()

	base := "http://" + ch.Addr()
	ext := dialExtension(t, base)
	defer ext.Close()
	require.Eventually(t, gw.Holder().Has, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get(base + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `browsermcp_extension_connections_total{event="accepted"} 1`)
}

func TestExtensionChannelStartBindFailure(t *testing.T) {
	first := NewExtensionChannel(ExtensionConfig{Addr: "127.0.0.1:0"})
	require.NoError(t, first.Start(gateway.NewGatewayManager()))
	defer first.Stop()

	second := NewExtensionChannel(ExtensionConfig{Addr: first.Addr()})
	err := second.Start(gateway.NewGatewayManager())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}
