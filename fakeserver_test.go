package chromatica

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/chromatica-go/chromatica/cdp"
	cdppage "github.com/chromatica-go/chromatica/cdp/page"
	cdptarget "github.com/chromatica-go/chromatica/cdp/target"
)

// rpcHandler answers one command method with either a result or a protocol
// error, the shape every CDP command in this package's tests needs.
type rpcHandler func(params json.RawMessage) (json.RawMessage, *ProtocolError)

// fakeServer is a minimal in-process stand-in for a browser's DevTools
// WebSocket endpoint: an httptest.Server upgraded to a single WebSocket,
// dispatching inbound commands to registered handlers and able to push
// spontaneous events, the way connection_test.go and frame_test.go need to
// drive Connection/TargetManager/FrameInner without a real browser.
type fakeServer struct {
	t   *testing.T
	srv *httptest.Server
	up  websocket.Upgrader

	mu              sync.Mutex
	conn            *websocket.Conn
	handlers        map[string]rpcHandler
	sessionHandlers map[string]sessionRPCHandler
}

// sessionRPCHandler is like rpcHandler but also sees the sessionId the
// command was sent within, for tests that need to tell apart requests
// issued on different targets' sessions (a manager shared between a page
// and an iframe, a drained pending iframe's own GetFrameTree call).
type sessionRPCHandler func(sessionID string, params json.RawMessage) (json.RawMessage, *ProtocolError)

func newFakeServer(t *testing.T) *fakeServer {
	fs := &fakeServer{
		t:               t,
		handlers:        make(map[string]rpcHandler),
		sessionHandlers: make(map[string]sessionRPCHandler),
	}
	fs.srv = httptest.NewServer(http.HandlerFunc(fs.serveHTTP))
	t.Cleanup(fs.srv.Close)
	return fs
}

// handleSession registers a session-aware handler for method, taking
// precedence over any plain handle registration for the same method.
func (fs *fakeServer) handleSession(method string, h sessionRPCHandler) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.sessionHandlers[method] = h
}

// debuggerURL returns a URL containing "/devtools/browser/", so Dial skips
// its bare-endpoint "/json/version" HTTP probe and connects directly.
func (fs *fakeServer) debuggerURL() string {
	return "ws" + strings.TrimPrefix(fs.srv.URL, "http") + "/devtools/browser/fake"
}

func (fs *fakeServer) handle(method string, h rpcHandler) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.handlers[method] = h
}

func okHandler(json.RawMessage) (json.RawMessage, *ProtocolError) {
	return json.RawMessage("{}"), nil
}

func jsonResult(v interface{}) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func (fs *fakeServer) serveHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := fs.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	fs.mu.Lock()
	fs.conn = c
	fs.mu.Unlock()

	for {
		var req struct {
			ID        uint64          `json:"id"`
			Method    string          `json:"method"`
			Params    json.RawMessage `json:"params,omitempty"`
			SessionID string          `json:"sessionId,omitempty"`
		}
		if err := c.ReadJSON(&req); err != nil {
			return
		}

		fs.mu.Lock()
		sh, sok := fs.sessionHandlers[req.Method]
		h, ok := fs.handlers[req.Method]
		fs.mu.Unlock()

		var result json.RawMessage
		var rpcErr *ProtocolError
		switch {
		case sok:
			result, rpcErr = sh(req.SessionID, req.Params)
		case ok:
			result, rpcErr = h(req.Params)
		default:
			result = json.RawMessage("{}")
		}

		resp := map[string]interface{}{"id": req.ID}
		if rpcErr != nil {
			resp["error"] = map[string]interface{}{"code": rpcErr.Code, "message": rpcErr.Message}
		} else {
			resp["result"] = result
		}

		fs.mu.Lock()
		err := c.WriteJSON(resp)
		fs.mu.Unlock()
		if err != nil {
			return
		}
	}
}

// emit pushes a spontaneous event frame to the connected client.
func (fs *fakeServer) emit(method, sessionID string, params interface{}) {
	b, err := json.Marshal(params)
	if err != nil {
		fs.t.Fatalf("marshal event params for %s: %v", method, err)
	}
	ev := map[string]interface{}{"method": method, "params": json.RawMessage(b)}
	if sessionID != "" {
		ev["sessionId"] = sessionID
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.conn == nil {
		fs.t.Fatalf("emit %s before a client connected", method)
	}
	if err := fs.conn.WriteJSON(ev); err != nil {
		fs.t.Fatalf("emit %s: %v", method, err)
	}
}

// withPageTarget registers the standard target-creation handshake (discover,
// createTarget/attachToTarget/Page.enable/setLifecycleEventsEnabled/
// getFrameTree) for a single top-level page target with targetID "T1",
// sessionID "S1" and root frame "F1", the sequence target_manager.rs's
// create-then-wait flow and onTargetCreated both drive.
func (fs *fakeServer) withPageTarget() {
	fs.handle(cdptarget.CommandSetDiscoverTargets, okHandler)
	fs.handle(cdptarget.CommandCreateTarget, func(json.RawMessage) (json.RawMessage, *ProtocolError) {
		fs.emit(cdptarget.EventTargetCreated, "", cdptarget.EventCreated{
			TargetInfo: cdptarget.Info{TargetID: cdp.TargetID("T1"), Type: "page"},
		})
		return jsonResult(cdptarget.CreateTargetResult{TargetID: "T1"}), nil
	})
	fs.handle(cdptarget.CommandAttachToTarget, func(json.RawMessage) (json.RawMessage, *ProtocolError) {
		return jsonResult(cdptarget.AttachToTargetResult{SessionID: "S1"}), nil
	})
	fs.handle(cdppage.CommandEnable, okHandler)
	fs.handle(cdppage.CommandSetLifecycleEventsEnabled, okHandler)
	fs.handle(cdppage.CommandGetFrameTree, func(json.RawMessage) (json.RawMessage, *ProtocolError) {
		return jsonResult(cdppage.GetFrameTreeResult{
			FrameTree: cdppage.FrameTree{
				Frame: cdppage.Frame{ID: "F1", LoaderID: "L1", URL: "about:blank", MimeType: "text/html"},
			},
		}), nil
	})
}
