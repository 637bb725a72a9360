package chromatica

import (
	"context"
	"sync"

	"github.com/chromatica-go/chromatica/cdp"
	cdpdom "github.com/chromatica-go/chromatica/cdp/dom"
	cdppage "github.com/chromatica-go/chromatica/cdp/page"
	cdptarget "github.com/chromatica-go/chromatica/cdp/target"
)

// TargetManager tracks every attached target and frame for one Connection,
// reconciling the CDP ordering hazard where a child iframe's targetCreated
// event can be delivered before its parent's targetCreated has finished
// being processed. Grounded on target_manager.rs's targets/frame_inners/
// pending_targets/pending_iframes indices, adapted to goroutines+channels
// and plain maps guarded by sync.RWMutex instead of DashMap.
type TargetManager struct {
	conn *Connection

	mu      sync.RWMutex
	targets map[cdp.TargetID]*Target
	frames  map[cdp.FrameID]*FrameInner

	browserContexts   map[cdp.BrowserContextID]*BrowserContext
	browserContextsMu sync.RWMutex

	// pendingTargets holds a oneshot waiter per target id awaiting its
	// Target.targetCreated event, used by createTarget's synchronous
	// create-then-wait round trip.
	pendingMu      sync.Mutex
	pendingTargets map[cdp.TargetID]chan *Target

	// pendingIframes holds not-yet-initialized child targets whose parent
	// target has not been observed yet, keyed by (parentID, childID).
	pendingIframesMu sync.Mutex
	pendingIframes   map[[2]cdp.TargetID]*pendingIframe

	sub *Subscriber
}

type pendingIframe struct {
	targetID         cdp.TargetID
	sessionID        cdp.SessionID
	browserContextID cdp.BrowserContextID
}

func newTargetManager(conn *Connection) *TargetManager {
	tm := &TargetManager{
		conn:            conn,
		targets:         make(map[cdp.TargetID]*Target),
		frames:          make(map[cdp.FrameID]*FrameInner),
		browserContexts: make(map[cdp.BrowserContextID]*BrowserContext),
		pendingTargets:  make(map[cdp.TargetID]chan *Target),
		pendingIframes:  make(map[[2]cdp.TargetID]*pendingIframe),
	}

	tm.sub = conn.subscribe([]string{
		cdptarget.EventTargetCreated,
		cdptarget.EventTargetDestroyed,
		cdptarget.EventTargetCrashed,
		cdppage.EventFrameAttached,
		cdppage.EventFrameDetached,
	}, nil)

	go tm.run()

	ctx := context.Background()
	_ = conn.send(ctx, cdptarget.CommandSetDiscoverTargets, "", mustMarshal(cdptarget.SetDiscoverTargets()), nil)

	return tm
}

func (tm *TargetManager) run() {
	for msg := range tm.sub.Events() {
		switch msg.Method {
		case cdptarget.EventTargetCreated:
			var ev cdptarget.EventCreated
			if err := jsonUnmarshal(msg.Params, &ev); err == nil {
				tm.onTargetCreated(context.Background(), &ev)
			}
		case cdptarget.EventTargetDestroyed:
			var ev cdptarget.EventDestroyed
			if err := jsonUnmarshal(msg.Params, &ev); err == nil {
				tm.onTargetDestroyed(&ev)
			}
		case cdptarget.EventTargetCrashed:
			var ev cdptarget.EventCrashed
			if err := jsonUnmarshal(msg.Params, &ev); err == nil {
				tm.onTargetDestroyed(&cdptarget.EventDestroyed{TargetID: ev.TargetID})
			}
		case cdppage.EventFrameAttached:
			var ev cdppage.EventFrameAttachedParams
			if err := jsonUnmarshal(msg.Params, &ev); err == nil {
				tm.onFrameAttached(context.Background(), &ev, cdp.SessionID(msg.SessionID))
			}
		case cdppage.EventFrameDetached:
			var ev cdppage.EventFrameDetachedParams
			if err := jsonUnmarshal(msg.Params, &ev); err == nil {
				tm.onFrameDetached(&ev)
			}
		}
	}
}

// Target returns the target for id, or nil.
func (tm *TargetManager) Target(id cdp.TargetID) *Target {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.targets[id]
}

// Targets returns every currently tracked target.
func (tm *TargetManager) Targets() []*Target {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	out := make([]*Target, 0, len(tm.targets))
	for _, t := range tm.targets {
		out = append(out, t)
	}
	return out
}

// Frame returns the frame for id, or nil.
func (tm *TargetManager) Frame(id cdp.FrameID) *FrameInner {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.frames[id]
}

func (tm *TargetManager) addTarget(t *Target) {
	tm.mu.Lock()
	tm.targets[t.id] = t
	tm.mu.Unlock()
}

func (tm *TargetManager) addFrame(f *FrameInner) {
	tm.mu.Lock()
	tm.frames[f.id] = f
	tm.mu.Unlock()
}

func (tm *TargetManager) removeFrame(id cdp.FrameID) *FrameInner {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	f := tm.frames[id]
	delete(tm.frames, id)
	return f
}

// onTargetCreated implements the target creation protocol: attach in
// flattened mode, fetch the frame tree, place the new target either
// directly (parent already known or this is a top-level target) or into
// pendingIframes (parent not seen yet), then concurrently bring up every
// domain a target needs live from the start — Page lifecycle events,
// Network, DOM and Fetch (with the always-on interception patterns) — so
// waitForResponse and the default auto-continue/auto-handle-auth policy
// work on a target nobody has touched yet. Any enable failing aborts
// placement for this target.
func (tm *TargetManager) onTargetCreated(ctx context.Context, ev *cdptarget.EventCreated) {
	info := ev.TargetInfo
	if !cdptarget.SupportedType(info.Type) {
		return
	}
	info.TargetID = cdp.InternTarget(string(info.TargetID))

	var attachRes cdptarget.AttachToTargetResult
	if err := tm.conn.send(ctx, cdptarget.CommandAttachToTarget, "", mustMarshal(cdptarget.AttachToTarget(info.TargetID)), &attachRes); err != nil {
		tm.conn.errf("attachToTarget %s: %v", info.TargetID, err)
		return
	}
	sessionID := cdp.InternSession(string(attachRes.SessionID))

	if err := tm.conn.send(ctx, cdppage.CommandEnable, string(sessionID), nil, nil); err != nil {
		tm.conn.errf("Page.enable %s: %v", info.TargetID, err)
		return
	}

	var frameTreeRes cdppage.GetFrameTreeResult
	if err := tm.conn.send(ctx, cdppage.CommandGetFrameTree, string(sessionID), nil, &frameTreeRes); err != nil {
		tm.conn.errf("getFrameTree %s: %v", info.TargetID, err)
		return
	}

	rootFrame := frameTreeRes.FrameTree.Frame
	var parentID cdp.TargetID
	if rootFrame.ParentID != cdp.EmptyFrameID {
		parentID = cdp.TargetID(rootFrame.ParentID)
	}

	if info.Type == "iframe" && parentID != "" {
		parent := tm.Target(parentID)
		if parent == nil {
			key := [2]cdp.TargetID{parentID, info.TargetID}
			tm.pendingIframesMu.Lock()
			tm.pendingIframes[key] = &pendingIframe{
				targetID:         info.TargetID,
				sessionID:        sessionID,
				browserContextID: info.BrowserContextID,
			}
			tm.pendingIframesMu.Unlock()
			return
		}
		if _, err := tm.placeTarget(ctx, info, sessionID, parent, frameTreeRes.FrameTree); err != nil {
			tm.conn.errf("init target %s: %v", info.TargetID, err)
			return
		}
		tm.drainPendingIframes(info.TargetID)
		return
	}

	if _, err := tm.placeTarget(ctx, info, sessionID, nil, frameTreeRes.FrameTree); err != nil {
		tm.conn.errf("init target %s: %v", info.TargetID, err)
		return
	}

	tm.pendingMu.Lock()
	if ch, ok := tm.pendingTargets[info.TargetID]; ok {
		delete(tm.pendingTargets, info.TargetID)
		tm.pendingMu.Unlock()
		t := tm.Target(info.TargetID)
		select {
		case ch <- t:
		default:
		}
		close(ch)
	} else {
		tm.pendingMu.Unlock()
	}

	tm.drainPendingIframes(info.TargetID)
}

// placeTarget constructs and registers a Target plus its root FrameInner,
// recurses the frame tree to register any frames already present in the
// snapshot, and — for a top-level target that owns its managers rather than
// sharing a parent's — concurrently enables Page lifecycle events, Network,
// DOM and Fetch.
func (tm *TargetManager) placeTarget(ctx context.Context, info cdptarget.Info, sessionID cdp.SessionID, parent *Target, tree cdppage.FrameTree) (*Target, error) {
	t := newTarget(ctx, tm.conn, info.TargetID, sessionID, info.Type, info.BrowserContextID, parent)
	tm.addTarget(t)

	var parentFrameID cdp.FrameID
	if parent != nil {
		parentFrameID = cdp.InternFrame(string(tree.Frame.ParentID))
	}
	root := newFrameInner(t, cdp.InternFrame(string(tree.Frame.ID)), parentFrameID, 0)
	t.addFrame(root)
	t.framesMu.Lock()
	t.rootID = root.id
	t.framesMu.Unlock()
	tm.addFrame(root)

	for _, child := range tree.ChildFrames {
		tm.registerFrameSubtree(t, child)
	}

	if t.ownsManagers {
		if err := concurrently(
			func() error {
				return tm.conn.send(ctx, cdppage.CommandSetLifecycleEventsEnabled, string(sessionID),
					mustMarshal(&cdppage.SetLifecycleEventsEnabledParams{Enabled: true}), nil)
			},
			func() error { return t.network.Enable(ctx) },
			func() error { return t.js.Enable(ctx) },
			func() error { return t.network.EnableFetch(ctx, sessionID) },
		); err != nil {
			return t, err
		}
	}
	return t, nil
}

// concurrently runs every fn to completion and returns the first error
// encountered, if any.
func concurrently(fns ...func() error) error {
	errs := make([]error, len(fns))
	var wg sync.WaitGroup
	wg.Add(len(fns))
	for i, fn := range fns {
		go func(i int, fn func() error) {
			defer wg.Done()
			errs[i] = fn()
		}(i, fn)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (tm *TargetManager) registerFrameSubtree(t *Target, tree *cdppage.FrameTree) {
	f := newFrameInner(t, cdp.InternFrame(string(tree.Frame.ID)), cdp.InternFrame(string(tree.Frame.ParentID)), 0)
	t.addFrame(f)
	tm.addFrame(f)
	for _, child := range tree.ChildFrames {
		tm.registerFrameSubtree(t, child)
	}
}

// drainPendingIframes places any pendingIframes whose parent is parentID,
// now that parentID's target has been placed.
func (tm *TargetManager) drainPendingIframes(parentID cdp.TargetID) {
	tm.pendingIframesMu.Lock()
	var keys [][2]cdp.TargetID
	for k := range tm.pendingIframes {
		if k[0] == parentID {
			keys = append(keys, k)
		}
	}
	var entries []*pendingIframe
	for _, k := range keys {
		entries = append(entries, tm.pendingIframes[k])
		delete(tm.pendingIframes, k)
	}
	tm.pendingIframesMu.Unlock()

	parent := tm.Target(parentID)
	if parent == nil {
		return
	}
	for _, e := range entries {
		ctx := context.Background()
		var frameTreeRes cdppage.GetFrameTreeResult
		if err := tm.conn.send(ctx, cdppage.CommandGetFrameTree, string(e.sessionID), nil, &frameTreeRes); err != nil {
			continue
		}
		info := cdptarget.Info{TargetID: e.targetID, Type: "iframe", BrowserContextID: e.browserContextID}
		child, err := tm.placeTarget(ctx, info, e.sessionID, parent, frameTreeRes.FrameTree)
		if err != nil {
			tm.conn.errf("init pending iframe %s: %v", e.targetID, err)
			continue
		}
		tm.drainPendingIframes(child.id)
	}
}

func (tm *TargetManager) onTargetDestroyed(ev *cdptarget.EventDestroyed) {
	tm.mu.Lock()
	t, ok := tm.targets[ev.TargetID]
	if ok {
		delete(tm.targets, ev.TargetID)
	}
	tm.mu.Unlock()
	if !ok {
		return
	}
	t.shutdown()
}

func (tm *TargetManager) onFrameAttached(ctx context.Context, ev *cdppage.EventFrameAttachedParams, sessionID cdp.SessionID) {
	t := tm.targetBySession(sessionID)
	if t == nil {
		return
	}
	var ownerRes cdpdom.GetFrameOwnerResult
	_ = tm.conn.send(ctx, cdpdom.CommandGetFrameOwner, string(sessionID), mustMarshal(&cdpdom.GetFrameOwnerParams{FrameID: ev.FrameID}), &ownerRes)

	frameID := cdp.InternFrame(string(ev.FrameID))
	parentFrameID := cdp.InternFrame(string(ev.ParentFrameID))
	f := newFrameInner(t, frameID, parentFrameID, ownerRes.BackendNodeID)
	t.addFrame(f)
	tm.addFrame(f)

	if parent := tm.Frame(ev.ParentFrameID); parent != nil {
		parent.addChild(ev.FrameID)
	}
}

func (tm *TargetManager) onFrameDetached(ev *cdppage.EventFrameDetachedParams) {
	f := tm.removeFrame(ev.FrameID)
	if f == nil {
		return
	}
	if parent := tm.Frame(f.parentID); parent != nil {
		parent.removeChild(ev.FrameID)
	}
	f.owner.removeFrame(ev.FrameID)
	f.invalidate()
}

// teardownAll shuts down every tracked target and invalidates every
// BrowserContext's weak reference back to the connection, called once from
// Connection.teardown so a dangling Element or BrowserContext handle reports
// ErrHandleInvalidated instead of operating on a closed connection.
func (tm *TargetManager) teardownAll() {
	tm.mu.Lock()
	targets := make([]*Target, 0, len(tm.targets))
	for _, t := range tm.targets {
		targets = append(targets, t)
	}
	tm.targets = make(map[cdp.TargetID]*Target)
	tm.mu.Unlock()
	for _, t := range targets {
		t.shutdown()
	}

	tm.browserContextsMu.Lock()
	contexts := make([]*BrowserContext, 0, len(tm.browserContexts))
	for _, bc := range tm.browserContexts {
		contexts = append(contexts, bc)
	}
	tm.browserContexts = make(map[cdp.BrowserContextID]*BrowserContext)
	tm.browserContextsMu.Unlock()
	for _, bc := range contexts {
		bc.conn.clear()
	}
}

func (tm *TargetManager) targetBySession(sessionID cdp.SessionID) *Target {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	for _, t := range tm.targets {
		if t.sessionID == sessionID {
			return t
		}
	}
	return nil
}

// CreateTarget opens about:blank (optionally inside browserContextID) and
// blocks until the resulting Target.targetCreated round trip has placed and
// initialized the new Target.
func (tm *TargetManager) CreateTarget(ctx context.Context, browserContextID cdp.BrowserContextID) (*Target, error) {
	tm.pendingMu.Lock()

	var createRes cdptarget.CreateTargetResult
	if err := tm.conn.send(ctx, cdptarget.CommandCreateTarget, "", mustMarshal(cdptarget.CreateTarget(browserContextID)), &createRes); err != nil {
		tm.pendingMu.Unlock()
		return nil, err
	}

	ch := make(chan *Target, 1)
	tm.pendingTargets[createRes.TargetID] = ch
	tm.pendingMu.Unlock()

	select {
	case t := <-ch:
		if t == nil {
			return nil, ErrNotAvailable
		}
		return t, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// CloseTarget closes the given target.
func (tm *TargetManager) CloseTarget(ctx context.Context, id cdp.TargetID) error {
	return tm.conn.send(ctx, cdptarget.CommandCloseTarget, "", mustMarshal(&cdptarget.CloseTargetParams{TargetID: id}), nil)
}

// CreateBrowserContext opens a new incognito-like isolated context.
func (tm *TargetManager) CreateBrowserContext(ctx context.Context) (*BrowserContext, error) {
	var res cdptarget.CreateBrowserContextResult
	if err := tm.conn.send(ctx, cdptarget.CommandCreateBrowserContext, "", mustMarshal(&cdptarget.CreateBrowserContextParams{}), &res); err != nil {
		return nil, err
	}
	bc := newBrowserContext(tm.conn, res.BrowserContextID)
	tm.browserContextsMu.Lock()
	tm.browserContexts[res.BrowserContextID] = bc
	tm.browserContextsMu.Unlock()
	return bc, nil
}

// DisposeBrowserContext tears down a browser context and every target in it.
func (tm *TargetManager) DisposeBrowserContext(ctx context.Context, id cdp.BrowserContextID) error {
	if err := tm.conn.send(ctx, cdptarget.CommandDisposeBrowserContext, "", mustMarshal(&cdptarget.DisposeBrowserContextParams{BrowserContextID: id}), nil); err != nil {
		return err
	}
	tm.browserContextsMu.Lock()
	delete(tm.browserContexts, id)
	tm.browserContextsMu.Unlock()
	return nil
}
