package chromatica

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/chromatica-go/chromatica/cdp"
	cdpdom "github.com/chromatica-go/chromatica/cdp/dom"
	cdpfetch "github.com/chromatica-go/chromatica/cdp/fetch"
	cdpnetwork "github.com/chromatica-go/chromatica/cdp/network"
	cdppage "github.com/chromatica-go/chromatica/cdp/page"
)

// TestDialogAcceptRepliesOnOriginSession exercises the dialog-accept flow:
// WaitForJsDialog records which session a dialog actually opened on (S1
// here), and HandleJsDialog must reply on that session.
func TestDialogAcceptRepliesOnOriginSession(t *testing.T) {
	t.Parallel()
	fs := newFakeServer(t)
	fs.withPageTarget()

	var gotSession string
	var gotAccept bool
	var gotPrompt string
	fs.handleSession(cdppage.CommandHandleJavaScriptDialog, func(sessionID string, params json.RawMessage) (json.RawMessage, *ProtocolError) {
		var p cdppage.HandleJavaScriptDialogParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, &ProtocolError{Code: -32602, Message: err.Error()}
		}
		gotSession, gotAccept, gotPrompt = sessionID, p.Accept, p.PromptText
		return json.RawMessage("{}"), nil
	})

	browser, err := NewBrowser(context.Background(), fs.debuggerURL())
	if err != nil {
		t.Fatalf("NewBrowser: %v", err)
	}
	defer browser.Close()

	target, err := browser.NewPage(context.Background(), "")
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}

	dialogCh := make(chan *cdppage.JavascriptDialogOpeningParams, 1)
	errCh := make(chan error, 1)
	go func() {
		ev, err := target.JS().WaitForJsDialog(context.Background())
		if err != nil {
			errCh <- err
			return
		}
		dialogCh <- ev
	}()

	time.Sleep(20 * time.Millisecond)
	fs.emit(cdppage.EventJavascriptDialogOpen, "S1", cdppage.JavascriptDialogOpeningParams{
		Type: "alert", Message: "hello",
	})

	select {
	case ev := <-dialogCh:
		if ev.Message != "hello" {
			t.Fatalf("want message %q, got %q", "hello", ev.Message)
		}
	case err := <-errCh:
		t.Fatalf("WaitForJsDialog: %v", err)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for the dialog")
	}

	if err := target.JS().HandleJsDialog(context.Background(), true, "ok"); err != nil {
		t.Fatalf("HandleJsDialog: %v", err)
	}
	if gotSession != "S1" {
		t.Fatalf("want HandleJsDialog to reply on the session the dialog opened on (S1), got %q", gotSession)
	}
	if !gotAccept || gotPrompt != "ok" {
		t.Fatalf("want accept=true prompt=%q, got accept=%v prompt=%q", "ok", gotAccept, gotPrompt)
	}
}

// TestRequestInterceptionBlocksImageRequests exercises SetRequestInterception
// plus InterceptedRequest.Fail, the image-blocking pattern waitForResponse's
// Fetch-based auto-continue policy defers to once a caller opts in.
func TestRequestInterceptionBlocksImageRequests(t *testing.T) {
	t.Parallel()
	fs := newFakeServer(t)
	fs.withPageTarget()

	var gotRequestID, gotReason string
	fs.handle(cdpfetch.CommandFailRequest, func(params json.RawMessage) (json.RawMessage, *ProtocolError) {
		var p cdpfetch.FailRequestParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, &ProtocolError{Code: -32602, Message: err.Error()}
		}
		gotRequestID, gotReason = p.RequestID, p.ErrorReason
		return json.RawMessage("{}"), nil
	})

	browser, err := NewBrowser(context.Background(), fs.debuggerURL())
	if err != nil {
		t.Fatalf("NewBrowser: %v", err)
	}
	defer browser.Close()

	target, err := browser.NewPage(context.Background(), "")
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	network := target.Network()

	if err := network.SetRequestInterception(context.Background(), true); err != nil {
		t.Fatalf("SetRequestInterception: %v", err)
	}

	time.Sleep(20 * time.Millisecond)
	fs.emit(cdpfetch.EventRequestPaused, "S1", cdpfetch.EventRequestPausedParams{
		RequestID:    "R1",
		Request:      cdpnetwork.Request{URL: "https://example.com/logo.png", Method: "GET"},
		ResourceType: "Image",
	})

	select {
	case req := <-network.Requests():
		if req.URL != "https://example.com/logo.png" {
			t.Fatalf("want intercepted URL https://example.com/logo.png, got %s", req.URL)
		}
		if err := req.Fail(context.Background(), "BlockedByClient"); err != nil {
			t.Fatalf("Fail: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for the intercepted request")
	}

	if gotRequestID != "R1" || gotReason != "BlockedByClient" {
		t.Fatalf("want requestId R1 errorReason BlockedByClient, got %q/%q", gotRequestID, gotReason)
	}
}

// TestExtraHTTPHeadersLifecycle exercises SetExtraHTTPHeaders's replay
// behavior once Network is already enabled (placeTarget enables it up front
// for every top-level target), and that a later call sends the updated
// header value.
func TestExtraHTTPHeadersLifecycle(t *testing.T) {
	t.Parallel()
	fs := newFakeServer(t)
	fs.withPageTarget()

	var headerCalls []cdpnetwork.Headers
	fs.handle(cdpnetwork.CommandSetExtraHTTPHeaders, func(params json.RawMessage) (json.RawMessage, *ProtocolError) {
		var p cdpnetwork.SetExtraHTTPHeadersParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, &ProtocolError{Code: -32602, Message: err.Error()}
		}
		headerCalls = append(headerCalls, p.Headers)
		return json.RawMessage("{}"), nil
	})

	browser, err := NewBrowser(context.Background(), fs.debuggerURL())
	if err != nil {
		t.Fatalf("NewBrowser: %v", err)
	}
	defer browser.Close()

	target, err := browser.NewPage(context.Background(), "")
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	network := target.Network()

	if len(headerCalls) != 0 {
		t.Fatalf("want no header replay before any headers are set, got %v", headerCalls)
	}

	if err := network.SetExtraHTTPHeaders(context.Background(), map[string]string{"X-Test": "a"}); err != nil {
		t.Fatalf("SetExtraHTTPHeaders: %v", err)
	}
	if len(headerCalls) != 1 || headerCalls[0]["X-Test"] != "a" {
		t.Fatalf("want headers replayed immediately since Network is already enabled, got %v", headerCalls)
	}

	if err := network.SetExtraHTTPHeaders(context.Background(), map[string]string{"X-Test": "b"}); err != nil {
		t.Fatalf("SetExtraHTTPHeaders: %v", err)
	}
	if len(headerCalls) != 2 || headerCalls[1]["X-Test"] != "b" {
		t.Fatalf("want a second replay for the updated headers, got %v", headerCalls)
	}
}

// TestShadowDOMAndIframeQuery exercises a selector that pierces a shadow
// root nested one level below its host (distinguishing the deep ">>>"
// piercer from a direct ">>>>" one, which only looks at the host's own
// shadow roots) and then descends into an in-process iframe the pierced
// query matches.
func TestShadowDOMAndIframeQuery(t *testing.T) {
	t.Parallel()
	fs := newFakeServer(t)
	fs.withPageTarget()
	fs.handle(cdppage.CommandGetFrameTree, func(json.RawMessage) (json.RawMessage, *ProtocolError) {
		return jsonResult(cdppage.GetFrameTreeResult{
			FrameTree: cdppage.FrameTree{
				Frame: cdppage.Frame{ID: "F1", LoaderID: "L1", URL: "about:blank", MimeType: "text/html"},
				ChildFrames: []*cdppage.FrameTree{
					{Frame: cdppage.Frame{ID: "F2", ParentID: "F1", LoaderID: "L2", URL: "about:blank", MimeType: "text/html"}},
				},
			},
		}), nil
	})
	fs.handle(cdpdom.CommandGetDocument, func(json.RawMessage) (json.RawMessage, *ProtocolError) {
		return jsonResult(cdpdom.GetDocumentResult{Root: cdpdom.Node{NodeID: 1, BackendNodeID: 0, NodeName: "#document"}}), nil
	})
	fs.handle(cdpdom.CommandPushNodesByBackendIdsToFrontend, func(params json.RawMessage) (json.RawMessage, *ProtocolError) {
		var p cdpdom.PushNodesByBackendIdsToFrontendParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, &ProtocolError{Code: -32602, Message: err.Error()}
		}
		return jsonResult(cdpdom.PushNodesByBackendIdsToFrontendResult{NodeIDs: []cdp.NodeID{cdp.NodeID(p.BackendNodeIDs[0])}}), nil
	})
	fs.handle(cdpdom.CommandQuerySelector, func(params json.RawMessage) (json.RawMessage, *ProtocolError) {
		var p cdpdom.QuerySelectorParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, &ProtocolError{Code: -32602, Message: err.Error()}
		}
		switch {
		case p.NodeID == 1 && p.Selector == "div.host":
			return jsonResult(cdpdom.QuerySelectorResult{NodeID: 2}), nil
		case p.NodeID == 20 && p.Selector == "iframe":
			return jsonResult(cdpdom.QuerySelectorResult{NodeID: 21}), nil
		default:
			return jsonResult(cdpdom.QuerySelectorResult{NodeID: cdp.EmptyNodeID}), nil
		}
	})
	fs.handle(cdpdom.CommandDescribeNode, func(params json.RawMessage) (json.RawMessage, *ProtocolError) {
		var p cdpdom.DescribeNodeParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, &ProtocolError{Code: -32602, Message: err.Error()}
		}
		switch {
		case p.NodeID == 2:
			return jsonResult(cdpdom.DescribeNodeResult{Node: cdpdom.Node{NodeID: 2, BackendNodeID: 10, NodeName: "DIV"}}), nil
		case p.NodeID == 10 && p.Pierce:
			// The shadow root lives one level below the host itself, so a
			// direct (">>>>") piercer — which only reads the host's own
			// ShadowRoots — must not find it; only the deep (">>>") walk does.
			return jsonResult(cdpdom.DescribeNodeResult{Node: cdpdom.Node{
				NodeID: 10, BackendNodeID: 10, NodeName: "DIV",
				Children: []*cdpdom.Node{
					{BackendNodeID: 11, NodeName: "SPAN", ShadowRoots: []*cdpdom.Node{
						{BackendNodeID: 20, NodeName: "#document-fragment"},
					}},
				},
			}}), nil
		case p.NodeID == 21:
			return jsonResult(cdpdom.DescribeNodeResult{Node: cdpdom.Node{NodeID: 21, BackendNodeID: 30, FrameID: "F2", NodeName: "IFRAME"}}), nil
		default:
			return jsonResult(cdpdom.DescribeNodeResult{}), nil
		}
	})

	browser, err := NewBrowser(context.Background(), fs.debuggerURL())
	if err != nil {
		t.Fatalf("NewBrowser: %v", err)
	}
	defer browser.Close()

	target, err := browser.NewPage(context.Background(), "")
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	root := target.RootFrame()

	el, err := root.QuerySelector(context.Background(), "div.host >>> iframe")
	if err != nil {
		t.Fatalf("QuerySelector: %v", err)
	}
	got, err := el.frame.Get()
	if err != nil {
		t.Fatalf("resolve element frame: %v", err)
	}
	if got.ID() != "F2" {
		t.Fatalf("want the query to descend into iframe F2, got %s", got.ID())
	}

	if _, err := root.QuerySelector(context.Background(), "div.host >>>> iframe"); err != ErrNoResults {
		t.Fatalf("want a direct piercer to fail when the shadow root is one level deeper than the host, got %v", err)
	}
}

// TestElementUploadFile exercises Element.UploadFile end to end: binding the
// backend node id to a frontend NodeID and issuing DOM.setFileInputFiles.
func TestElementUploadFile(t *testing.T) {
	t.Parallel()
	fs := newFakeServer(t)
	fs.withPageTarget()

	fs.handle(cdpdom.CommandGetDocument, func(json.RawMessage) (json.RawMessage, *ProtocolError) {
		return jsonResult(cdpdom.GetDocumentResult{Root: cdpdom.Node{NodeID: 1, BackendNodeID: 0, NodeName: "#document"}}), nil
	})
	fs.handle(cdpdom.CommandQuerySelector, func(params json.RawMessage) (json.RawMessage, *ProtocolError) {
		var p cdpdom.QuerySelectorParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, &ProtocolError{Code: -32602, Message: err.Error()}
		}
		if p.Selector != "input[type=file]" {
			return jsonResult(cdpdom.QuerySelectorResult{NodeID: cdp.EmptyNodeID}), nil
		}
		return jsonResult(cdpdom.QuerySelectorResult{NodeID: 2}), nil
	})
	fs.handle(cdpdom.CommandDescribeNode, func(json.RawMessage) (json.RawMessage, *ProtocolError) {
		return jsonResult(cdpdom.DescribeNodeResult{Node: cdpdom.Node{NodeID: 2, BackendNodeID: 50, NodeName: "INPUT"}}), nil
	})
	fs.handle(cdpdom.CommandPushNodesByBackendIdsToFrontend, func(json.RawMessage) (json.RawMessage, *ProtocolError) {
		return jsonResult(cdpdom.PushNodesByBackendIdsToFrontendResult{NodeIDs: []cdp.NodeID{2}}), nil
	})

	var gotFiles []string
	var gotNodeID cdp.NodeID
	fs.handle(cdpdom.CommandSetFileInputFiles, func(params json.RawMessage) (json.RawMessage, *ProtocolError) {
		var p cdpdom.SetFileInputFilesParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, &ProtocolError{Code: -32602, Message: err.Error()}
		}
		gotFiles, gotNodeID = p.Files, p.NodeID
		return json.RawMessage("{}"), nil
	})

	browser, err := NewBrowser(context.Background(), fs.debuggerURL())
	if err != nil {
		t.Fatalf("NewBrowser: %v", err)
	}
	defer browser.Close()

	target, err := browser.NewPage(context.Background(), "")
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	root := target.RootFrame()

	el, err := root.QuerySelector(context.Background(), "input[type=file]")
	if err != nil {
		t.Fatalf("QuerySelector: %v", err)
	}

	if err := el.UploadFile(context.Background(), []string{"/tmp/report.pdf"}); err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if len(gotFiles) != 1 || gotFiles[0] != "/tmp/report.pdf" {
		t.Fatalf("want files [/tmp/report.pdf], got %v", gotFiles)
	}
	if gotNodeID != 2 {
		t.Fatalf("want the bound frontend node id 2, got %d", gotNodeID)
	}
}
