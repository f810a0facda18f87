package monitor

import "time"

// Message directions.
const (
	DirectionOut = "OUT" // request sent to the extension
	DirectionIn  = "IN"  // reply received from the extension
)

// MonitorMessage describes one relayed frame.
type MonitorMessage struct {
	Timestamp time.Time
	Direction string // DirectionOut or DirectionIn
	ConnID    string
	Action    string
	CallID    string
	Bytes     int
}

// Monitor observes relay traffic.
type Monitor interface {
	Start() error
	Stop() error
	OnMessage(msg MonitorMessage)
}
