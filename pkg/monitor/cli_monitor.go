package monitor

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// CLIMonitor implements the Monitor interface, printing every relayed
// frame to a terminal writer. It defaults to stderr since stdout is the
// protocol transport.
type CLIMonitor struct {
	mu     sync.Mutex
	writer io.Writer
}

// NewCLIMonitor creates a new CLI monitor writing to stderr.
func NewCLIMonitor() *CLIMonitor {
	return NewCLIMonitorTo(os.Stderr)
}

// NewCLIMonitorTo creates a CLI monitor writing to w.
func NewCLIMonitorTo(w io.Writer) *CLIMonitor {
	return &CLIMonitor{writer: w}
}

// Start starts the CLI monitor
func (m *CLIMonitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	fmt.Fprintln(m.writer, "----------------------------------------------------------------")
	fmt.Fprintln(m.writer, "Relay Monitor Active - extension traffic will appear here")
	fmt.Fprintln(m.writer, "----------------------------------------------------------------")
	return nil
}

// Stop stops the CLI monitor
func (m *CLIMonitor) Stop() error {
	return nil
}

// OnMessage receives and displays a monitoring message
func (m *CLIMonitor) OnMessage(msg MonitorMessage) {
	timestamp := msg.Timestamp.Format("2006-01-02 15:04:05")

	m.mu.Lock()
	defer m.mu.Unlock()
	// Use gray color for timestamp
	fmt.Fprintf(m.writer, "\033[90m[%s]\033[0m [%s] conn=%s action=%s id=%s bytes=%d\n",
		timestamp, msg.Direction, msg.ConnID, msg.Action, msg.CallID, msg.Bytes)
}
