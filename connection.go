package chromatica

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultCommandTimeout is how long send waits for a response before giving
// up and returning ErrTimeout.
const DefaultCommandTimeout = 30 * time.Second

// disconnectGrace is how long disconnect waits for outstanding response
// waiters to drain before abandoning them.
const disconnectGrace = 3 * time.Second

// Connection owns the single WebSocket to the browser: a reader goroutine
// that demultiplexes inbound frames into response delivery or event
// dispatch, a writer goroutine that serializes outbound frames, and a
// dispatcher goroutine that fans events out to subscribers.
//
// The target manager is built after the transport is already running and
// published atomically via targetManager, rather than being written into a
// half-constructed Connection from inside connect — see DESIGN.md for why
// the eager, unsafely-published version does not hold up in Go.
type Connection struct {
	wc *wireConn

	outbound chan *Message

	nextID uint64

	waitersMu sync.Mutex
	waiters   map[uint64]chan *Message

	subsMu    sync.RWMutex
	subs      map[uint64]*Subscriber
	nextSubID uint64

	events chan *Message

	targetManager atomic.Pointer[TargetManager]

	disconnecting atomic.Bool
	done          chan struct{}
	closeOnce     sync.Once

	cmdTimeout time.Duration

	logf, errf, debugf LogFunc
}

// newConnection dials urlstr and starts the connection's goroutines. The
// returned Connection has no TargetManager yet; callers that need one call
// Connection.targets after construction, which lazily builds and publishes
// it, matching the deferred Arc<TargetManager> assignment in the design
// this is adapted from but without ever exposing a connection whose fields
// can be raced on by another goroutine.
func newConnection(ctx context.Context, wsURL string, opts ...Option) (*Connection, error) {
	wc, err := dialContext(ctx, forceIP(wsURL))
	if err != nil {
		return nil, err
	}

	c := &Connection{
		wc:       wc,
		outbound: make(chan *Message, 256),
		waiters:  make(map[uint64]chan *Message),
		subs:     make(map[uint64]*Subscriber),
		events:   make(chan *Message, 1024),
		done:     make(chan struct{}),

		cmdTimeout: DefaultCommandTimeout,

		logf:   defaultLogf,
		errf:   defaultErrf,
		debugf: defaultDebugf,
	}
	for _, o := range opts {
		if err := o(c); err != nil {
			wc.Close()
			return nil, err
		}
	}
	wc.dbgf = c.debugf

	go c.writeLoop()
	go c.readLoop()
	go c.dispatchLoop()

	return c, nil
}

// writeLoop drains outbound and writes each message to the wire.
func (c *Connection) writeLoop() {
	for msg := range c.outbound {
		if err := c.wc.writeMessage(msg); err != nil {
			c.errf("write: %v", err)
		}
	}
}

// readLoop reads frames off the wire and routes each one to either a
// waiting sender (by id) or the event channel.
func (c *Connection) readLoop() {
	defer c.teardown()
	for {
		msg := new(Message)
		if err := c.wc.readMessage(msg); err != nil {
			select {
			case <-c.done:
			default:
				c.errf("read: %v", err)
			}
			return
		}
		if msg.IsResponse() {
			c.waitersMu.Lock()
			ch, ok := c.waiters[msg.ID]
			if ok {
				delete(c.waiters, msg.ID)
			}
			c.waitersMu.Unlock()
			if ok {
				ch <- msg
			}
			continue
		}
		select {
		case c.events <- msg:
		case <-c.done:
			return
		}
	}
}

// dispatchLoop fans each event out to every matching subscriber, pruning
// subscribers whose channel is full or closed after the fan-out completes
// (never mid-fan-out, so one slow subscriber can't skew delivery to another).
func (c *Connection) dispatchLoop() {
	for {
		select {
		case msg, ok := <-c.events:
			if !ok {
				return
			}
			c.subsMu.RLock()
			var dead []uint64
			for id, s := range c.subs {
				if s.matches(msg) {
					if !s.send(msg) {
						dead = append(dead, id)
					}
				}
			}
			c.subsMu.RUnlock()
			for _, id := range dead {
				c.unsubscribe(id)
			}
		case <-c.done:
			return
		}
	}
}

// send issues method with the given raw-JSON params (nil for none) within
// sessionID (empty for the browser-level session) and decodes the result
// into out, if non-nil.
func (c *Connection) send(ctx context.Context, method string, sessionID string, params []byte, out interface{}) error {
	if c.disconnecting.Load() {
		return ErrShuttingDown
	}

	id := atomic.AddUint64(&c.nextID, 1)
	req := &Message{ID: id, Method: method, SessionID: sessionID, Params: params}

	ch := make(chan *Message, 1)
	c.waitersMu.Lock()
	c.waiters[id] = ch
	c.waitersMu.Unlock()

	select {
	case c.outbound <- req:
	case <-c.done:
		c.removeWaiter(id)
		return ErrConnectionClosed
	case <-ctx.Done():
		c.removeWaiter(id)
		return ctx.Err()
	}

	timeout := c.cmdTimeout
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case resp, ok := <-ch:
		if !ok {
			return ErrConnectionClosed
		}
		if resp.Error != nil {
			return resp.Error
		}
		if out != nil && len(resp.Result) != 0 {
			return unmarshalResult(resp.Result, out)
		}
		return nil
	case <-timer.C:
		c.removeWaiter(id)
		return ErrTimeout
	case <-c.done:
		return ErrConnectionClosed
	case <-ctx.Done():
		c.removeWaiter(id)
		return ctx.Err()
	}
}

func (c *Connection) removeWaiter(id uint64) {
	c.waitersMu.Lock()
	delete(c.waiters, id)
	c.waitersMu.Unlock()
}

// subscribe registers a new Subscriber matching methods (and, once any are
// added, sessionIDs). An empty methods slice matches nothing, mirroring the
// Rust EventSubscriber's behavior for an empty method set.
func (c *Connection) subscribe(methods []string, sessionIDs []string) *Subscriber {
	id := atomic.AddUint64(&c.nextSubID, 1)
	s := newSubscriber(c, id, methods, sessionIDs, 256)
	c.subsMu.Lock()
	c.subs[id] = s
	c.subsMu.Unlock()
	return s
}

func (c *Connection) unsubscribe(id uint64) {
	c.subsMu.Lock()
	delete(c.subs, id)
	c.subsMu.Unlock()
}

// targets lazily builds and atomically publishes this connection's
// TargetManager the first time it is needed, rather than at construction
// time, so no goroutine ever observes a Connection whose TargetManager
// field is set without having been fully initialized first.
func (c *Connection) targets() *TargetManager {
	if tm := c.targetManager.Load(); tm != nil {
		return tm
	}
	tm := newTargetManager(c)
	if !c.targetManager.CompareAndSwap(nil, tm) {
		return c.targetManager.Load()
	}
	return tm
}

// Disconnect marks the connection as shutting down, waits up to 3 seconds
// for outstanding response waiters to drain naturally, then tears down the
// transport and abandons whatever is left.
func (c *Connection) Disconnect() error {
	c.disconnecting.Store(true)

	deadline := time.Now().Add(disconnectGrace)
	for {
		c.waitersMu.Lock()
		n := len(c.waiters)
		c.waitersMu.Unlock()
		if n == 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	c.teardown()
	return c.wc.Close()
}

// teardown closes done exactly once, unblocking every goroutine selecting
// on it and failing every outstanding waiter with ErrConnectionClosed.
func (c *Connection) teardown() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.waitersMu.Lock()
		for id, ch := range c.waiters {
			close(ch)
			delete(c.waiters, id)
		}
		c.waitersMu.Unlock()
		if tm := c.targetManager.Load(); tm != nil {
			tm.teardownAll()
		}
	})
}

func unmarshalResult(data []byte, out interface{}) error {
	return json.Unmarshal(data, out)
}
