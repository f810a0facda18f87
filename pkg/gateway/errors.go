package gateway

import (
	"errors"
	"fmt"
)

// NoConnectedTabMessage is what the extension reports when it is connected
// but has no tab attached.
const NoConnectedTabMessage = "No connected tab"

// ErrNoConnection covers both "no extension ever connected" and "the
// extension has no target tab". The message tells the operator what to do.
var ErrNoConnection = errors.New("No connection to browser extension. In order to proceed, you must first connect a tab by clicking the Browser MCP extension icon in the browser toolbar and clicking the 'Connect' button.")

// TimeoutError is returned when no matching reply arrives in time.
type TimeoutError struct {
	Action string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("Message timeout: %s", e.Action)
}

// RemoteError is a failure reported by the extension in its reply.
type RemoteError struct {
	Action  string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Action, e.Message)
}

// translate folds the extension's no-tab signal into ErrNoConnection.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if err.Error() == NoConnectedTabMessage {
		return ErrNoConnection
	}
	var remote *RemoteError
	if errors.As(err, &remote) && remote.Message == NoConnectedTabMessage {
		return ErrNoConnection
	}
	return err
}
