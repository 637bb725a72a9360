package chromatica

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/chromatica-go/chromatica/cdp"
	cdpfetch "github.com/chromatica-go/chromatica/cdp/fetch"
	cdpnetwork "github.com/chromatica-go/chromatica/cdp/network"
)

// NetworkManager owns a target's Network domain enablement, extra-header
// overrides and the request/response event feed waitForResponse and the
// Fetch-domain interception layer read from, grounded on network_manager.rs's
// enable-then-replay-state pattern and its on_request_paused/on_auth_required
// auto-continue-when-uninterested policy.
type NetworkManager struct {
	conn      *Connection
	sessionID cdp.SessionID

	mu       sync.Mutex
	enabled  bool
	headers  cdpnetwork.Headers
	sessions []cdp.SessionID

	intercepting atomic.Bool
	requests     chan *InterceptedRequest

	sub      *Subscriber
	fetchSub *Subscriber
}

func newNetworkManager(conn *Connection, sessionID cdp.SessionID) *NetworkManager {
	n := &NetworkManager{
		conn:      conn,
		sessionID: sessionID,
		sessions:  []cdp.SessionID{sessionID},
		requests:  make(chan *InterceptedRequest, 64),
		sub: conn.subscribe([]string{
			cdpnetwork.EventRequestWillBeSent,
			cdpnetwork.EventResponseReceived,
			cdpnetwork.EventLoadingFinished,
			cdpnetwork.EventLoadingFailed,
		}, []string{string(sessionID)}),
		fetchSub: conn.subscribe([]string{
			cdpfetch.EventRequestPaused,
			cdpfetch.EventAuthRequired,
		}, []string{string(sessionID)}),
	}
	go n.runFetch()
	return n
}

// addSession registers an additional session sharing this manager (an
// iframe target attached under the same top-level page) so its events are
// delivered here too, and replays whatever enablement/headers/interception
// state is already established on the sessions registered so far.
func (n *NetworkManager) addSession(ctx context.Context, sessionID cdp.SessionID) {
	n.sub.AddSession(string(sessionID))
	n.fetchSub.AddSession(string(sessionID))

	n.mu.Lock()
	n.sessions = append(n.sessions, sessionID)
	enabled := n.enabled
	headers := n.headers
	n.mu.Unlock()

	if enabled {
		_ = n.conn.send(ctx, cdpnetwork.CommandEnable, string(sessionID), mustMarshal(&cdpnetwork.EnableParams{}), nil)
		if headers != nil {
			_ = n.conn.send(ctx, cdpnetwork.CommandSetExtraHTTPHeaders, string(sessionID),
				mustMarshal(&cdpnetwork.SetExtraHTTPHeadersParams{Headers: headers}), nil)
		}
	}
	_ = n.EnableFetch(ctx, sessionID)
}

// defaultFetchEnableParams matches every request and response stage with
// auth handling on, the interception surface every target enables
// unconditionally so Fetch.requestPaused/authRequired fire even when no
// caller has opted into SetRequestInterception yet — NetworkManager's
// auto-continue/auto-cancel policy (onRequestPaused, onAuthRequired) is what
// keeps the page moving until one does.
func defaultFetchEnableParams() *cdpfetch.EnableParams {
	return &cdpfetch.EnableParams{
		Patterns: []cdpfetch.RequestPattern{
			{RequestStage: "Request"},
			{RequestStage: "Response"},
		},
		HandleAuthRequests: true,
	}
}

// EnableFetch turns the Fetch domain on for sessionID with the default
// request/response interception patterns, auto-continued by
// onRequestPaused/onAuthRequired until a caller opts into interception.
func (n *NetworkManager) EnableFetch(ctx context.Context, sessionID cdp.SessionID) error {
	return n.conn.send(ctx, cdpfetch.CommandEnable, string(sessionID), mustMarshal(defaultFetchEnableParams()), nil)
}

// InterceptedRequest is a paused Fetch.requestPaused event, handed to
// callers over NetworkManager.Requests for inspection and resolution.
// sessionID is the session the event arrived on, which, once this manager
// is shared between a page and its iframes, may not be the manager's
// original session.
type InterceptedRequest struct {
	n         *NetworkManager
	sessionID cdp.SessionID
	requestID string
	Request   cdpnetwork.Request
	URL       string
	Method    string
}

// Continue lets the request proceed unmodified (or modified, if any field
// is set).
func (r *InterceptedRequest) Continue(ctx context.Context) error {
	return r.n.conn.send(ctx, cdpfetch.CommandContinueRequest, string(r.sessionID),
		mustMarshal(&cdpfetch.ContinueRequestParams{RequestID: r.requestID}), nil)
}

// Fail aborts the request with errorReason (e.g. "Failed", "Aborted").
func (r *InterceptedRequest) Fail(ctx context.Context, errorReason string) error {
	return r.n.conn.send(ctx, cdpfetch.CommandFailRequest, string(r.sessionID),
		mustMarshal(&cdpfetch.FailRequestParams{RequestID: r.requestID, ErrorReason: errorReason}), nil)
}

// Fulfill completes the request with a synthetic response instead of
// letting it reach the network.
func (r *InterceptedRequest) Fulfill(ctx context.Context, status int64, body []byte) error {
	return r.n.conn.send(ctx, cdpfetch.CommandFulfillRequest, string(r.sessionID),
		mustMarshal(&cdpfetch.FulfillRequestParams{RequestID: r.requestID, ResponseCode: status, Body: body}), nil)
}

func (n *NetworkManager) runFetch() {
	for msg := range n.fetchSub.Events() {
		sessionID := cdp.SessionID(msg.SessionID)
		switch msg.Method {
		case cdpfetch.EventRequestPaused:
			var ev cdpfetch.EventRequestPausedParams
			if jsonUnmarshal(msg.Params, &ev) != nil {
				continue
			}
			n.onRequestPaused(sessionID, &ev)
		case cdpfetch.EventAuthRequired:
			var ev cdpfetch.EventAuthRequiredParams
			if jsonUnmarshal(msg.Params, &ev) != nil {
				continue
			}
			n.onAuthRequired(sessionID, &ev)
		}
	}
}

// onRequestPaused implements network_manager.rs's on_request_paused:
// auto-continue whenever interception is off; otherwise deliver the paused
// request on Requests (dropped if that channel's buffer is full).
func (n *NetworkManager) onRequestPaused(sessionID cdp.SessionID, ev *cdpfetch.EventRequestPausedParams) {
	req := &InterceptedRequest{n: n, sessionID: sessionID, requestID: ev.RequestID, Request: ev.Request, URL: ev.Request.URL, Method: ev.Request.Method}
	if !n.intercepting.Load() {
		_ = req.Continue(context.Background())
		return
	}
	select {
	case n.requests <- req:
	default:
	}
}

// onAuthRequired auto-cancels challenges when interception is off, matching
// the uninterested-by-default policy for auth the same way requests are.
func (n *NetworkManager) onAuthRequired(sessionID cdp.SessionID, ev *cdpfetch.EventAuthRequiredParams) {
	if n.intercepting.Load() {
		return
	}
	_ = n.conn.send(context.Background(), cdpfetch.CommandContinueWithAuth, string(sessionID),
		mustMarshal(&cdpfetch.ContinueWithAuthParams{RequestID: ev.RequestID, AuthChallengeResponse: cdpfetch.AuthChallengeResponse{Response: "CancelAuth"}}), nil)
}

// SetRequestInterception switches between the default auto-continue policy
// and delivering paused requests on Requests for the caller to resolve. The
// Fetch domain itself is already enabled on every session sharing this
// manager (see defaultFetchEnableParams), so toggling interception is purely
// local bookkeeping, shared across every session the same as headers or the
// user-agent override.
func (n *NetworkManager) SetRequestInterception(ctx context.Context, enabled bool) error {
	n.intercepting.Store(enabled)
	return nil
}

// Requests returns the channel intercepted requests are delivered on while
// interception is enabled.
func (n *NetworkManager) Requests() <-chan *InterceptedRequest {
	return n.requests
}

// Enable turns on the Network domain, across every session sharing this
// manager.
func (n *NetworkManager) Enable(ctx context.Context) error {
	n.mu.Lock()
	if n.enabled {
		n.mu.Unlock()
		return nil
	}
	n.enabled = true
	sessions := append([]cdp.SessionID(nil), n.sessions...)
	headers := n.headers
	n.mu.Unlock()

	for _, sid := range sessions {
		if err := n.conn.send(ctx, cdpnetwork.CommandEnable, string(sid), mustMarshal(&cdpnetwork.EnableParams{}), nil); err != nil {
			return err
		}
		if headers != nil {
			_ = n.conn.send(ctx, cdpnetwork.CommandSetExtraHTTPHeaders, string(sid),
				mustMarshal(&cdpnetwork.SetExtraHTTPHeadersParams{Headers: headers}), nil)
		}
	}
	return nil
}

// SetExtraHTTPHeaders sets headers sent on every subsequent request, across
// every session sharing this manager, and replays them immediately on any
// session where the domain is already enabled.
func (n *NetworkManager) SetExtraHTTPHeaders(ctx context.Context, headers map[string]string) error {
	n.mu.Lock()
	n.headers = headers
	enabled := n.enabled
	sessions := append([]cdp.SessionID(nil), n.sessions...)
	n.mu.Unlock()
	if !enabled {
		return nil
	}
	for _, sid := range sessions {
		if err := n.conn.send(ctx, cdpnetwork.CommandSetExtraHTTPHeaders, string(sid),
			mustMarshal(&cdpnetwork.SetExtraHTTPHeadersParams{Headers: headers}), nil); err != nil {
			return err
		}
	}
	return nil
}

// WaitForResponse blocks until a response whose URL satisfies match arrives,
// on any session sharing this manager.
func (n *NetworkManager) WaitForResponse(ctx context.Context, match func(url string) bool) (*cdpnetwork.Response, error) {
	n.mu.Lock()
	sessionStrs := make([]string, len(n.sessions))
	for i, sid := range n.sessions {
		sessionStrs[i] = string(sid)
	}
	n.mu.Unlock()
	sub := n.conn.subscribe([]string{cdpnetwork.EventResponseReceived}, sessionStrs)
	defer sub.Drop()
	for {
		select {
		case msg, ok := <-sub.Events():
			if !ok {
				return nil, ErrConnectionClosed
			}
			var ev cdpnetwork.EventResponseReceivedParams
			if jsonUnmarshal(msg.Params, &ev) != nil {
				continue
			}
			if match == nil || match(ev.Response.URL) {
				return &ev.Response, nil
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (n *NetworkManager) close() {
	n.sub.Drop()
	n.fetchSub.Drop()
}
