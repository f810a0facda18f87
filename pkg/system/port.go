package system

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"
)

// pollInterval is how often WaitPortFree retries the bind.
const pollInterval = 100 * time.Millisecond

// PortInUse reports whether host:port cannot be bound right now.
func PortInUse(host string, port int) bool {
	ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return true
	}
	ln.Close()
	return false
}

// WaitPortFree polls until host:port can be bound, the wait elapses or ctx
// is done.
func WaitPortFree(ctx context.Context, host string, port int, wait time.Duration) error {
	deadline := time.NewTimer(wait)
	defer deadline.Stop()
	tick := time.NewTicker(pollInterval)
	defer tick.Stop()

	for PortInUse(host, port) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("port %d still in use after %s", port, wait)
		case <-tick.C:
		}
	}
	return nil
}

// ReclaimPort kills whatever process holds port, then waits for the port to
// become bindable. Kill failures are logged only; the wait decides success.
func ReclaimPort(ctx context.Context, host string, port int, wait time.Duration) error {
	if !PortInUse(host, port) {
		return nil
	}
	slog.Info("Port busy, reclaiming", "port", port)
	if err := killPortHolder(ctx, port); err != nil {
		slog.Warn("Failed to kill process on port", "port", port, "error", err)
	}
	return WaitPortFree(ctx, host, port, wait)
}
