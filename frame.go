package chromatica

import (
	"context"
	"sync"
	"time"

	"github.com/chromatica-go/chromatica/cdp"
	cdpdom "github.com/chromatica-go/chromatica/cdp/dom"
	cdpinput "github.com/chromatica-go/chromatica/cdp/input"
	cdpnetwork "github.com/chromatica-go/chromatica/cdp/network"
	cdppage "github.com/chromatica-go/chromatica/cdp/page"
	cdptarget "github.com/chromatica-go/chromatica/cdp/target"
	"github.com/chromatica-go/chromatica/internal/kb"
)

// DefaultFrameTimeout is how long navigate/waitForSelector/waitForResponse
// wait by default, matching frame_inner.rs's 30-second default_timeout.
const DefaultFrameTimeout = 30 * time.Second

// lifecycleOrder is the lifecycle event sequence waitForNavigation matches
// against, grounded verbatim on frame_inner.rs's lifecycle_event_order.
var lifecycleOrder = []string{"init", "load", "DOMContentLoaded", "networkAlmostIdle", "networkIdle"}

// lifecycleAlias maps a public WaitUntil value to the Page.lifecycleEvent
// name it corresponds to.
var lifecycleAlias = map[string]string{
	"init":             "init",
	"load":             "load",
	"domcontentloaded": "DOMContentLoaded",
	"networkidle2":     "networkAlmostIdle",
	"networkidle0":     "networkIdle",
}

// FrameInner is a document-owning node in a target's frame tree: either the
// top-level frame of a page/OOPIF target, or an ordinary iframe embedded in
// one. Grounded on frame_inner.rs.
type FrameInner struct {
	owner *Target

	id            cdp.FrameID
	parentID      cdp.FrameID
	backendNodeID cdp.BackendNodeID

	childrenMu sync.RWMutex
	children   map[cdp.FrameID]struct{}

	defaultTimeout time.Duration

	// weaksMu guards weaks, the set of Weak[FrameInner] handles (one per
	// Element built against this frame) that invalidate reports when this
	// frame is detached or its target shuts down.
	weaksMu sync.Mutex
	weaks   []Weak[FrameInner]
}

func newFrameInner(owner *Target, id, parentID cdp.FrameID, backendNodeID cdp.BackendNodeID) *FrameInner {
	return &FrameInner{
		owner:          owner,
		id:             id,
		parentID:       parentID,
		backendNodeID:  backendNodeID,
		children:       make(map[cdp.FrameID]struct{}),
		defaultTimeout: DefaultFrameTimeout,
	}
}

// newWeakRef hands out a Weak[FrameInner] pointing at f, recording it so
// invalidate can clear every outstanding handle once f goes away.
func (f *FrameInner) newWeakRef() Weak[FrameInner] {
	w := newWeak(f)
	f.weaksMu.Lock()
	f.weaks = append(f.weaks, w)
	f.weaksMu.Unlock()
	return w
}

// invalidate clears every Weak[FrameInner] handle issued for f, so any
// Element built against it starts reporting ErrHandleInvalidated instead of
// operating on a detached frame.
func (f *FrameInner) invalidate() {
	f.weaksMu.Lock()
	weaks := f.weaks
	f.weaks = nil
	f.weaksMu.Unlock()
	for _, w := range weaks {
		w.clear()
	}
}

// ID returns the frame's identifier.
func (f *FrameInner) ID() cdp.FrameID { return f.id }

// Target returns the target this frame belongs to.
func (f *FrameInner) Target() *Target { return f.owner }

func (f *FrameInner) addChild(id cdp.FrameID) {
	f.childrenMu.Lock()
	f.children[id] = struct{}{}
	f.childrenMu.Unlock()
}

func (f *FrameInner) removeChild(id cdp.FrameID) {
	f.childrenMu.Lock()
	delete(f.children, id)
	f.childrenMu.Unlock()
}

// ChildFrames returns the frame's immediate children.
func (f *FrameInner) ChildFrames() []cdp.FrameID {
	f.childrenMu.RLock()
	defer f.childrenMu.RUnlock()
	out := make([]cdp.FrameID, 0, len(f.children))
	for id := range f.children {
		out = append(out, id)
	}
	return out
}

func (f *FrameInner) sessionID() string { return string(f.owner.sessionID) }

func (f *FrameInner) send(ctx context.Context, method string, params []byte, out interface{}) error {
	return f.owner.conn.send(ctx, method, f.sessionID(), params, out)
}

// BringToFront activates the frame's target in the browser UI.
func (f *FrameInner) BringToFront(ctx context.Context) error {
	return f.send(ctx, cdptarget.CommandActivateTarget, mustMarshal(&cdptarget.ActivateTargetParams{TargetID: cdp.TargetID(f.id)}), nil)
}

// Navigate sends the frame to url and waits for waitUntil (default "load"),
// running the navigate command and the lifecycle wait concurrently, exactly
// as frame_inner.rs's navigate does via tokio::join!, since the navigate
// response and the lifecycle events can arrive in either order.
func (f *FrameInner) Navigate(ctx context.Context, url, waitUntil string, timeout time.Duration) error {
	waitCh := make(chan error, 1)
	go func() { waitCh <- f.WaitForNavigation(ctx, waitUntil, timeout) }()

	navErr := f.send(ctx, cdppage.CommandNavigate, mustMarshal(cdppage.Navigate(url, f.id)), nil)
	waitErr := <-waitCh
	if navErr != nil {
		return navErr
	}
	return waitErr
}

// Reload reloads the frame's target and waits for waitUntil.
func (f *FrameInner) Reload(ctx context.Context, waitUntil string, timeout time.Duration) error {
	waitCh := make(chan error, 1)
	go func() { waitCh <- f.WaitForNavigation(ctx, waitUntil, timeout) }()

	reloadErr := f.send(ctx, cdppage.CommandReload, mustMarshal(&cdppage.ReloadParams{}), nil)
	waitErr := <-waitCh
	if reloadErr != nil {
		return reloadErr
	}
	return waitErr
}

// WaitForNavigation blocks until a Page.lifecycleEvent at or past waitUntil
// in the lifecycle order is observed for this frame, or until
// Network.loadingFailed is reported for the frame's document resource.
func (f *FrameInner) WaitForNavigation(ctx context.Context, waitUntil string, timeout time.Duration) error {
	if waitUntil == "" {
		waitUntil = "load"
	}
	if timeout <= 0 {
		timeout = f.defaultTimeout
	}
	expected, ok := lifecycleAlias[waitUntil]
	if !ok {
		return ErrInvalidArgument
	}
	targetIndex := -1
	for i, e := range lifecycleOrder {
		if e == expected {
			targetIndex = i
			break
		}
	}
	if targetIndex < 0 {
		return ErrInvalidArgument
	}

	sub := f.owner.conn.subscribe([]string{cdppage.EventLifecycleEvent, "Network.loadingFailed"}, []string{f.sessionID()})
	defer sub.Drop()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		select {
		case msg, ok := <-sub.Events():
			if !ok {
				return ErrConnectionClosed
			}
			switch msg.Method {
			case cdppage.EventLifecycleEvent:
				var ev cdppage.LifecycleEventParams
				if jsonUnmarshal(msg.Params, &ev) != nil || ev.FrameID != f.id {
					continue
				}
				idx := -1
				for i, e := range lifecycleOrder {
					if e == ev.Name {
						idx = i
						break
					}
				}
				if idx >= targetIndex {
					return nil
				}
			default:
				var ev struct {
					ResourceType string `json:"type"`
				}
				_ = jsonUnmarshal(msg.Params, &ev)
				if ev.ResourceType == "Document" {
					return ErrNavigationFailed
				}
			}
		case <-ctx.Done():
			return ErrTimeout
		}
	}
}

// QuerySelector runs the selector engine against this frame's document and
// returns the first match, serialized against the per-target DOM lock.
func (f *FrameInner) QuerySelector(ctx context.Context, selector string) (*Element, error) {
	var el *Element
	err := f.owner.withDOMLock(func() error {
		e, err := execSelector(ctx, f, selector, false)
		if err != nil {
			return err
		}
		el = e
		return nil
	})
	return el, err
}

// QuerySelectorAll runs the selector engine and returns every match across
// every alternative in the selector.
func (f *FrameInner) QuerySelectorAll(ctx context.Context, selector string) ([]*Element, error) {
	var els []*Element
	err := f.owner.withDOMLock(func() error {
		var firstErr error
		els, firstErr = execSelectorAll(ctx, f, selector)
		return firstErr
	})
	return els, err
}

// WaitForSelector runs an immediate query, so a selector that already
// matches resolves instantly, and otherwise retries on every DOM mutation
// signal and on a 10ms poll until it matches or the timeout expires.
func (f *FrameInner) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) (*Element, error) {
	if timeout <= 0 {
		timeout = f.defaultTimeout
	}
	if el, err := f.QuerySelector(ctx, selector); err == nil {
		return el, nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	mutations := f.owner.js.subscribeDOMMutations()
	defer mutations.drop()

	for {
		select {
		case <-mutations.ch:
			if el, err := f.QuerySelector(ctx, selector); err == nil {
				return el, nil
			}
		case <-time.After(10 * time.Millisecond):
			if el, err := f.QuerySelector(ctx, selector); err == nil {
				return el, nil
			}
		case <-ctx.Done():
			return nil, ErrTimeout
		}
	}
}

// clickBackendNode dispatches a synthetic left click at the center of the box model of
// the node identified by backendNodeID.
func (f *FrameInner) clickBackendNode(ctx context.Context, backendNodeID cdp.BackendNodeID) error {
	return f.owner.withDOMLock(func() error {
		nodeID, err := f.bindNode(ctx, backendNodeID)
		if err != nil {
			return err
		}
		// Best-effort: an element already in view, or one scrollIntoView
		// can't reach (position: fixed inside an overflow: hidden
		// ancestor, for example), is still legal to click.
		_ = f.send(ctx, cdpdom.CommandScrollIntoViewIfNeeded, mustMarshal(&cdpdom.ScrollIntoViewIfNeededParams{NodeID: nodeID}), nil)

		var box cdpdom.GetBoxModelResult
		if err := f.send(ctx, cdpdom.CommandGetBoxModel, mustMarshal(&cdpdom.GetBoxModelParams{NodeID: nodeID}), &box); err != nil {
			return err
		}
		x, y := box.Model.Content.Center()
		events := cdpinput.Click(x, y)
		for _, ev := range events[:2] {
			if err := f.send(ctx, cdpinput.CommandDispatchMouseEvent, mustMarshal(ev), nil); err != nil {
				return err
			}
		}
		// Best-effort: plenty of clickable elements (a plain <div> with a
		// click handler, for instance) are not focusable.
		_ = f.send(ctx, cdpdom.CommandFocus, mustMarshal(&cdpdom.FocusParams{NodeID: nodeID}), nil)
		for _, ev := range events[2:] {
			if err := f.send(ctx, cdpinput.CommandDispatchMouseEvent, mustMarshal(ev), nil); err != nil {
				return err
			}
		}
		return nil
	})
}

func (f *FrameInner) bindNode(ctx context.Context, backendNodeID cdp.BackendNodeID) (cdp.NodeID, error) {
	var res cdpdom.PushNodesByBackendIdsToFrontendResult
	if err := f.send(ctx, cdpdom.CommandPushNodesByBackendIdsToFrontend, mustMarshal(&cdpdom.PushNodesByBackendIdsToFrontendParams{BackendNodeIDs: []cdp.BackendNodeID{backendNodeID}}), &res); err != nil {
		return cdp.EmptyNodeID, err
	}
	if len(res.NodeIDs) == 0 {
		return cdp.EmptyNodeID, ErrNoResults
	}
	return res.NodeIDs[0], nil
}

// typeTextBackendNode focuses the node and dispatches, for each rune, the
// key events internal/kb's Encode produces: keyDown/char/keyUp for a
// printable rune, keyDown/keyUp with no char event otherwise.
func (f *FrameInner) typeTextBackendNode(ctx context.Context, backendNodeID cdp.BackendNodeID, text string) error {
	return f.owner.withDOMLock(func() error {
		nodeID, err := f.bindNode(ctx, backendNodeID)
		if err != nil {
			return err
		}
		if err := f.send(ctx, cdpdom.CommandFocus, mustMarshal(&cdpdom.FocusParams{NodeID: nodeID}), nil); err != nil {
			return err
		}
		for _, r := range text {
			for _, ev := range kb.Encode(r) {
				if err := f.send(ctx, cdpinput.CommandDispatchKeyEvent, mustMarshal(ev), nil); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// uploadFileBackendNode sets the files of the <input type=file> node identified by
// backendNodeID.
func (f *FrameInner) uploadFileBackendNode(ctx context.Context, backendNodeID cdp.BackendNodeID, files []string) error {
	return f.owner.withDOMLock(func() error {
		nodeID, err := f.bindNode(ctx, backendNodeID)
		if err != nil {
			return err
		}
		return f.send(ctx, cdpdom.CommandSetFileInputFiles, mustMarshal(&cdpdom.SetFileInputFilesParams{Files: files, NodeID: nodeID}), nil)
	})
}

// Screenshot captures a PNG/JPEG screenshot of the frame's target viewport.
// Page.captureScreenshot's "data" field is base64 text on the wire;
// encoding/json decodes it into raw bytes for a []byte-typed field, so the
// result needs no further decoding here.
func (f *FrameInner) Screenshot(ctx context.Context, format string, quality int) ([]byte, error) {
	var res cdppage.CaptureScreenshotResult
	params := &cdppage.CaptureScreenshotParams{Format: format, Quality: quality, FromSurface: true}
	if err := f.send(ctx, cdppage.CommandCaptureScreenshot, mustMarshal(params), &res); err != nil {
		return nil, err
	}
	return res.Data, nil
}

// PrintToPDF renders the frame's target as a PDF document.
func (f *FrameInner) PrintToPDF(ctx context.Context, params *cdppage.PrintToPDFParams) ([]byte, error) {
	if params == nil {
		params = &cdppage.PrintToPDFParams{PrintBackground: true}
	}
	var res cdppage.PrintToPDFResult
	if err := f.send(ctx, cdppage.CommandPrintToPDF, mustMarshal(params), &res); err != nil {
		return nil, err
	}
	return res.Data, nil
}

// getAttributesBackendNode returns the attribute map of the element identified by
// backendNodeID.
func (f *FrameInner) getAttributesBackendNode(ctx context.Context, backendNodeID cdp.BackendNodeID) (map[string]string, error) {
	return withDOMLockResult(f.owner, func() (map[string]string, error) {
		nodeID, err := f.bindNode(ctx, backendNodeID)
		if err != nil {
			return nil, err
		}
		var res cdpdom.GetAttributesResult
		if err := f.send(ctx, cdpdom.CommandGetAttributes, mustMarshal(&cdpdom.GetAttributesParams{NodeID: nodeID}), &res); err != nil {
			return nil, err
		}
		n := &cdpdom.Node{Attributes: res.Attributes}
		return n.AttrMap(), nil
	})
}

// WaitForResponse blocks until a response matching match arrives on this
// frame's target, failing with ErrTimeout after the frame's default timeout.
func (f *FrameInner) WaitForResponse(ctx context.Context, match func(url string) bool) (*cdpnetwork.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, f.defaultTimeout)
	defer cancel()
	res, err := f.owner.network.WaitForResponse(ctx, match)
	if err != nil && ctx.Err() == context.DeadlineExceeded {
		return nil, ErrTimeout
	}
	return res, err
}

// WaitForJsDialog blocks until a dialog opens on this frame's target.
func (f *FrameInner) WaitForJsDialog(ctx context.Context) (*cdppage.JavascriptDialogOpeningParams, error) {
	return f.owner.js.WaitForJsDialog(ctx)
}

// WaitForFileChooser blocks until a file chooser opens on this frame's
// target.
func (f *FrameInner) WaitForFileChooser(ctx context.Context) (*cdppage.FileChooserOpenedParams, error) {
	return f.owner.js.WaitForFileChooser(ctx)
}

// Close closes the frame's owning target.
func (f *FrameInner) Close(ctx context.Context) error {
	return f.owner.conn.targets().CloseTarget(ctx, cdp.TargetID(f.id))
}

// withDOMLockResult is withDOMLock generalized to a function returning a
// value, since Target.withDOMLock only threads through an error.
func withDOMLockResult[T any](t *Target, fn func() (T, error)) (T, error) {
	var out T
	var outErr error
	err := t.withDOMLock(func() error {
		v, e := fn()
		out, outErr = v, e
		return e
	})
	if err != nil {
		return out, err
	}
	return out, outErr
}
