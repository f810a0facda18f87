package gateway

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeConn records outbound frames and lets tests push replies back.
type fakeConn struct {
	id       string
	sent     chan []byte
	sendErr  error
	closeErr error

	mu     sync.Mutex
	closed bool
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id, sent: make(chan []byte, 16)}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(data []byte) error {
	if c.sendErr != nil {
		return c.sendErr
	}
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return errors.New("use of closed connection")
	}
	c.sent <- data
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return c.closeErr
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// nextEnvelope waits for the next outbound frame and decodes it.
func (c *fakeConn) nextEnvelope(t *testing.T) map[string]any {
	t.Helper()
	select {
	case frame := <-c.sent:
		var env map[string]any
		require.NoError(t, json.Unmarshal(frame, &env))
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("no frame sent")
		return nil
	}
}
