package chromatica

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/chromatica-go/chromatica/cdp"
	cdpdom "github.com/chromatica-go/chromatica/cdp/dom"
)

func TestBrowserNewPageBuildsFrameTree(t *testing.T) {
	t.Parallel()
	fs := newFakeServer(t)
	fs.withPageTarget()

	browser, err := NewBrowser(context.Background(), fs.debuggerURL())
	if err != nil {
		t.Fatalf("NewBrowser: %v", err)
	}
	defer browser.Close()

	target, err := browser.NewPage(context.Background(), "")
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	if target.ID() != "T1" {
		t.Fatalf("want target id T1, got %s", target.ID())
	}
	if target.SessionID() != "S1" {
		t.Fatalf("want session id S1, got %s", target.SessionID())
	}

	root := target.RootFrame()
	if root == nil {
		t.Fatal("RootFrame is nil")
	}
	if root.ID() != "F1" {
		t.Fatalf("want root frame F1, got %s", root.ID())
	}

	pages := browser.Pages()
	if len(pages) != 1 || pages[0].ID() != "T1" {
		t.Fatalf("want one page T1, got %+v", pages)
	}
}

func TestFrameQuerySelectorDescribesMatch(t *testing.T) {
	t.Parallel()
	fs := newFakeServer(t)
	fs.withPageTarget()

	fs.handle(cdpdom.CommandGetDocument, func(json.RawMessage) (json.RawMessage, *ProtocolError) {
		return jsonResult(cdpdom.GetDocumentResult{Root: cdpdom.Node{NodeID: 1, BackendNodeID: 1, NodeName: "#document"}}), nil
	})
	fs.handle(cdpdom.CommandQuerySelector, func(params json.RawMessage) (json.RawMessage, *ProtocolError) {
		var p cdpdom.QuerySelectorParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, &ProtocolError{Code: -32602, Message: err.Error()}
		}
		if p.Selector != "div.foo" {
			return jsonResult(cdpdom.QuerySelectorResult{NodeID: cdp.EmptyNodeID}), nil
		}
		return jsonResult(cdpdom.QuerySelectorResult{NodeID: 2}), nil
	})
	fs.handle(cdpdom.CommandDescribeNode, func(json.RawMessage) (json.RawMessage, *ProtocolError) {
		return jsonResult(cdpdom.DescribeNodeResult{Node: cdpdom.Node{NodeID: 2, BackendNodeID: 42, NodeName: "DIV"}}), nil
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

	el, err := root.QuerySelector(context.Background(), "div.foo")
	if err != nil {
		t.Fatalf("QuerySelector: %v", err)
	}
	if el.BackendNodeID() != 42 {
		t.Fatalf("want backend node id 42, got %d", el.BackendNodeID())
	}

	if _, err := root.QuerySelector(context.Background(), "span.bar"); err != ErrNoResults {
		t.Fatalf("want ErrNoResults for a non-matching selector, got %v", err)
	}
}
