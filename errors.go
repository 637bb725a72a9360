package chromatica

import "fmt"

// Error is a chromatica error, following the teacher's plain string-const
// error type instead of a package of wrapped struct errors.
type Error string

// Error satisfies the error interface.
func (err Error) Error() string {
	return string(err)
}

// Error types.
const (
	// ErrTransport signals a socket failure or malformed inbound JSON.
	ErrTransport Error = "transport error"

	// ErrTimeout is returned by any waiter whose deadline elapsed.
	ErrTimeout Error = "timeout"

	// ErrHandleInvalidated is returned when a weak reference (Element,
	// FrameInner, BrowserContext) is accessed after its owner is gone.
	ErrHandleInvalidated Error = "handle invalidated"

	// ErrInvalidArgument signals a caller error, e.g. an unknown waitUntil
	// value or a dialog that requires prompt text.
	ErrInvalidArgument Error = "invalid argument"

	// ErrNotAvailable signals a manager or target that has not attached yet.
	ErrNotAvailable Error = "not available"

	// ErrNavigationFailed is returned by waitForNavigation when a Document
	// resource reports Network.loadingFailed.
	ErrNavigationFailed Error = "navigation failed"

	// ErrShuttingDown is returned by send when the connection is already
	// disconnecting.
	ErrShuttingDown Error = "connection shutting down"

	// ErrConnectionClosed is delivered to all outstanding waiters once the
	// connection has torn down.
	ErrConnectionClosed Error = "connection closed"

	// ErrNoResults is returned by a selector query that matched nothing.
	ErrNoResults Error = "no results"

	// ErrInvalidBoxModel is the invalid box model error.
	ErrInvalidBoxModel Error = "invalid box model"

	// ErrInvalidWebsocketMessage is the invalid websocket message error.
	ErrInvalidWebsocketMessage Error = "invalid websocket message"
)

// ProtocolError wraps the {code,message} pair the browser returns on a
// failed command, so callers can type-assert via errors.As instead of
// string-matching.
type ProtocolError struct {
	Code    int64
	Message string
}

// Error satisfies the error interface.
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("cdp error %d: %s", e.Code, e.Message)
}
