package chromatica

import "time"

// Option configures a Connection at dial time.
type Option func(*Connection) error

// WithLogf is an option to specify a func to receive general logging.
func WithLogf(f LogFunc) Option {
	return func(c *Connection) error {
		c.logf = f
		return nil
	}
}

// WithErrorf is an option to specify a func to receive error logging.
func WithErrorf(f LogFunc) Option {
	return func(c *Connection) error {
		c.errf = f
		return nil
	}
}

// WithDebugf is an option to specify a func to receive raw protocol frame
// tracing (every message sent and received over the WebSocket).
func WithDebugf(f LogFunc) Option {
	return func(c *Connection) error {
		c.debugf = f
		return nil
	}
}

// WithLog sets the logging, error and debug funcs to f.
func WithLog(f LogFunc) Option {
	return func(c *Connection) error {
		c.logf = f
		c.errf = f
		c.debugf = f
		return nil
	}
}

// WithCommandTimeout overrides the default per-command response timeout.
func WithCommandTimeout(d time.Duration) Option {
	return func(c *Connection) error {
		c.cmdTimeout = d
		return nil
	}
}
