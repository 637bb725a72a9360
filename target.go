package chromatica

import (
	"context"
	"sync"

	"github.com/chromatica-go/chromatica/cdp"
)

// Target is a live, attached CDP target: a page, an out-of-process iframe,
// a webview or a tab. It owns the session multiplexed over the shared
// Connection and the frame tree rooted at it.
type Target struct {
	conn *Connection

	id        cdp.TargetID
	sessionID cdp.SessionID
	kind      string

	browserContextID cdp.BrowserContextID

	parent Weak[Target]

	// childrenMu guards children, the set of Weak[Target] handles (one per
	// iframe target sharing this target's parent weak ref) this target
	// clears at shutdown so a destroyed parent doesn't leave dangling
	// handles pointing back at it.
	childrenMu sync.Mutex
	children   []Weak[Target]

	framesMu sync.RWMutex
	frames   map[cdp.FrameID]*FrameInner
	rootID   cdp.FrameID

	shutdownOnce sync.Once

	// domMu serializes bind-nodeId/query/release sequences against this
	// target, since DOM.querySelector's NodeId handle is invalidated by
	// unrelated mutations elsewhere in the same target.
	domMu sync.Mutex

	network   *NetworkManager
	js        *JSManager
	emulation *EmulationManager

	// ownsManagers is false for an iframe target that shares its parent's
	// NetworkManager/JSManager/EmulationManager: shutdown must not close
	// managers another live target still depends on.
	ownsManagers bool
}

// newTarget constructs a Target. If parent is non-nil, the new target is an
// iframe that shares parent's NetworkManager, EmulationManager and JSManager
// instead of building its own, and registers its session id with each so
// interception, extra headers, dialogs and emulation overrides already
// established on the parent apply to it too.
func newTarget(ctx context.Context, conn *Connection, id cdp.TargetID, sessionID cdp.SessionID, kind string, browserContextID cdp.BrowserContextID, parent *Target) *Target {
	t := &Target{
		conn:             conn,
		id:               id,
		sessionID:        sessionID,
		kind:             kind,
		browserContextID: browserContextID,
		frames:           make(map[cdp.FrameID]*FrameInner),
	}
	if parent != nil {
		t.parent = newWeak(parent)
		parent.addChild(t.parent)

		t.network = parent.network
		t.js = parent.js
		t.emulation = parent.emulation
		t.network.addSession(ctx, sessionID)
		t.js.addSession(ctx, sessionID)
		t.emulation.addSession(ctx, sessionID)
		return t
	}

	t.ownsManagers = true
	t.network = newNetworkManager(conn, sessionID)
	t.js = newJSManager(conn, sessionID)
	t.emulation = newEmulationManager(conn, sessionID)
	return t
}

// addChild registers child (an iframe target's weak reference back to t) so
// t's shutdown invalidates it instead of leaving a dangling handle.
func (t *Target) addChild(child Weak[Target]) {
	t.childrenMu.Lock()
	t.children = append(t.children, child)
	t.childrenMu.Unlock()
}

// ID returns the target's identifier.
func (t *Target) ID() cdp.TargetID { return t.id }

// SessionID returns the session multiplexed channel this target attached on.
func (t *Target) SessionID() cdp.SessionID { return t.sessionID }

// Kind is one of "page", "iframe", "webview", "tab".
func (t *Target) Kind() string { return t.kind }

// Network returns the target's NetworkManager.
func (t *Target) Network() *NetworkManager { return t.network }

// JS returns the target's dialog/file-chooser manager.
func (t *Target) JS() *JSManager { return t.js }

// Emulation returns the target's EmulationManager.
func (t *Target) Emulation() *EmulationManager { return t.emulation }

func (t *Target) addFrame(f *FrameInner) {
	t.framesMu.Lock()
	t.frames[f.id] = f
	if f.parentID == cdp.EmptyFrameID {
		t.rootID = f.id
	}
	t.framesMu.Unlock()
}

func (t *Target) frame(id cdp.FrameID) *FrameInner {
	t.framesMu.RLock()
	defer t.framesMu.RUnlock()
	return t.frames[id]
}

func (t *Target) removeFrame(id cdp.FrameID) {
	t.framesMu.Lock()
	delete(t.frames, id)
	t.framesMu.Unlock()
}

// RootFrame returns the target's top-level frame.
func (t *Target) RootFrame() *FrameInner {
	t.framesMu.RLock()
	defer t.framesMu.RUnlock()
	return t.frames[t.rootID]
}

// withDOMLock serializes fn against every other DOM-handle user on this
// target.
func (t *Target) withDOMLock(fn func() error) error {
	t.domMu.Lock()
	defer t.domMu.Unlock()
	return fn()
}

// shutdown releases the resources this target owns, and invalidates every
// weak reference pointing at it: its children's parent handle and every
// Element built against one of its frames. Safe to call more than once (the
// connection's own teardown may shut down targets that already received
// their Target.targetDestroyed event).
func (t *Target) shutdown() {
	t.shutdownOnce.Do(func() {
		if t.ownsManagers {
			t.network.close()
			t.js.close()
		}

		t.childrenMu.Lock()
		children := t.children
		t.children = nil
		t.childrenMu.Unlock()
		for _, c := range children {
			c.clear()
		}

		t.framesMu.Lock()
		frames := t.frames
		t.frames = nil
		t.framesMu.Unlock()
		for _, f := range frames {
			f.invalidate()
		}
	})
}
