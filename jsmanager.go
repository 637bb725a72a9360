package chromatica

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/chromatica-go/chromatica/cdp"
	cdpdom "github.com/chromatica-go/chromatica/cdp/dom"
	cdppage "github.com/chromatica-go/chromatica/cdp/page"
)

// JSManager owns a target's dialog, file-chooser and DOM-mutation signal
// handling: the live event feed frame_inner.rs's wait_for_js_dialog,
// wait_for_file_chooser and the lazy retry loop inside wait_for_selector
// each need.
type JSManager struct {
	conn      *Connection
	sessionID cdp.SessionID

	domEnabled atomic.Bool

	mu       sync.Mutex
	watchers map[uint64]chan struct{}
	nextID   uint64
	sessions []cdp.SessionID

	// lastDialogSession records which session the most recently observed
	// dialog arrived on, so HandleJsDialog replies on the right target once
	// this manager is shared across a page and its iframes.
	lastDialogSession cdp.SessionID

	sub *Subscriber
}

func newJSManager(conn *Connection, sessionID cdp.SessionID) *JSManager {
	m := &JSManager{
		conn:      conn,
		sessionID: sessionID,
		sessions:  []cdp.SessionID{sessionID},
		watchers:  make(map[uint64]chan struct{}),
	}
	m.sub = conn.subscribe([]string{
		cdppage.EventJavascriptDialogOpen,
		cdppage.EventFileChooserOpened,
		cdpdom.EventChildNodeInserted,
		cdpdom.EventChildNodeRemoved,
		cdpdom.EventAttributeModified,
		cdpdom.EventDocumentUpdated,
	}, []string{string(sessionID)})
	go m.run()
	return m
}

// addSession registers an additional session sharing this manager (an
// iframe target attached under the same top-level page), subscribing it to
// dialog/file-chooser/DOM-mutation events and enabling the DOM domain on it
// if it is already enabled on the sessions registered so far.
func (m *JSManager) addSession(ctx context.Context, sessionID cdp.SessionID) {
	m.sub.AddSession(string(sessionID))

	m.mu.Lock()
	m.sessions = append(m.sessions, sessionID)
	m.mu.Unlock()

	if m.domEnabled.Load() {
		_ = m.conn.send(ctx, cdpdom.CommandEnable, string(sessionID), nil, nil)
	}
}

// Enable turns the DOM domain on up front, across every session sharing
// this manager, rather than waiting on subscribeDOMMutations's lazy trigger.
func (m *JSManager) Enable(ctx context.Context) error {
	if !m.domEnabled.CompareAndSwap(false, true) {
		return nil
	}
	m.mu.Lock()
	sessions := append([]cdp.SessionID(nil), m.sessions...)
	m.mu.Unlock()
	for _, sid := range sessions {
		if err := m.conn.send(ctx, cdpdom.CommandEnable, string(sid), nil, nil); err != nil {
			return err
		}
	}
	return nil
}

func (m *JSManager) run() {
	for msg := range m.sub.Events() {
		switch msg.Method {
		case cdpdom.EventChildNodeInserted, cdpdom.EventChildNodeRemoved,
			cdpdom.EventAttributeModified, cdpdom.EventDocumentUpdated:
			m.broadcastMutation()
		}
	}
}

func (m *JSManager) broadcastMutation() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// domMutationSub is a single subscription to this target's DOM mutation
// signal, used to retry a failed selector query when the document changes.
type domMutationSub struct {
	ch   chan struct{}
	drop func()
}

// subscribeDOMMutations lazily enables the DOM domain (mutation events are
// silent until it is) and returns a channel that receives a signal on every
// subsequent child-node or attribute mutation.
func (m *JSManager) subscribeDOMMutations() *domMutationSub {
	if m.domEnabled.CompareAndSwap(false, true) {
		m.mu.Lock()
		sessions := append([]cdp.SessionID(nil), m.sessions...)
		m.mu.Unlock()
		for _, sid := range sessions {
			_ = m.conn.send(context.Background(), cdpdom.CommandEnable, string(sid), nil, nil)
		}
	}

	m.mu.Lock()
	id := m.nextID
	m.nextID++
	ch := make(chan struct{}, 1)
	m.watchers[id] = ch
	m.mu.Unlock()

	return &domMutationSub{
		ch: ch,
		drop: func() {
			m.mu.Lock()
			delete(m.watchers, id)
			m.mu.Unlock()
		},
	}
}

// WaitForJsDialog blocks until any session sharing this manager opens a
// dialog and returns its parameters. The session the dialog arrived on is
// recorded so a subsequent HandleJsDialog replies on the right target.
func (m *JSManager) WaitForJsDialog(ctx context.Context) (*cdppage.JavascriptDialogOpeningParams, error) {
	m.mu.Lock()
	sessionStrs := sessionStrings(m.sessions)
	m.mu.Unlock()
	sub := m.conn.subscribe([]string{cdppage.EventJavascriptDialogOpen}, sessionStrs)
	defer sub.Drop()
	select {
	case msg, ok := <-sub.Events():
		if !ok {
			return nil, ErrConnectionClosed
		}
		var ev cdppage.JavascriptDialogOpeningParams
		if err := jsonUnmarshal(msg.Params, &ev); err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.lastDialogSession = cdp.SessionID(msg.SessionID)
		m.mu.Unlock()
		return &ev, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// HandleJsDialog accepts or dismisses the dialog most recently observed by
// WaitForJsDialog, on the session it actually opened on.
func (m *JSManager) HandleJsDialog(ctx context.Context, accept bool, promptText string) error {
	m.mu.Lock()
	sessionID := m.lastDialogSession
	if sessionID == "" {
		sessionID = m.sessionID
	}
	m.mu.Unlock()
	return m.conn.send(ctx, cdppage.CommandHandleJavaScriptDialog, string(sessionID),
		mustMarshal(&cdppage.HandleJavaScriptDialogParams{Accept: accept, PromptText: promptText}), nil)
}

// WaitForFileChooser enables file-chooser interception on every session
// sharing this manager, then blocks until any of them opens one. The
// session it arrived on is not recorded.
func (m *JSManager) WaitForFileChooser(ctx context.Context) (*cdppage.FileChooserOpenedParams, error) {
	m.mu.Lock()
	sessions := append([]cdp.SessionID(nil), m.sessions...)
	m.mu.Unlock()
	for _, sid := range sessions {
		if err := m.conn.send(ctx, cdppage.CommandSetInterceptFileChooserDialog, string(sid),
			mustMarshal(&cdppage.SetInterceptFileChooserDialogParams{Enabled: true}), nil); err != nil {
			return nil, err
		}
	}
	sub := m.conn.subscribe([]string{cdppage.EventFileChooserOpened}, sessionStrings(sessions))
	defer sub.Drop()
	select {
	case msg, ok := <-sub.Events():
		if !ok {
			return nil, ErrConnectionClosed
		}
		var ev cdppage.FileChooserOpenedParams
		if err := jsonUnmarshal(msg.Params, &ev); err != nil {
			return nil, err
		}
		return &ev, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// sessionStrings converts a session id slice to its string form for
// Connection.subscribe's session filter.
func sessionStrings(sessions []cdp.SessionID) []string {
	out := make([]string, len(sessions))
	for i, sid := range sessions {
		out[i] = string(sid)
	}
	return out
}

func (m *JSManager) close() {
	m.sub.Drop()
}
