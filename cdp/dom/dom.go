// Package dom holds the wire param/result shapes for the CDP DOM domain,
// grounded on query_builder.rs's bind/query/release sequence and on the
// subset of github.com/chromedp/cdproto/dom that query.go exercises.
package dom

import "github.com/chromatica-go/chromatica/cdp"

// Command method names.
const (
	CommandEnable                     = "DOM.enable"
	CommandGetDocument                = "DOM.getDocument"
	CommandDescribeNode               = "DOM.describeNode"
	CommandQuerySelector               = "DOM.querySelector"
	CommandQuerySelectorAll            = "DOM.querySelectorAll"
	CommandGetBoxModel                 = "DOM.getBoxModel"
	CommandGetAttributes               = "DOM.getAttributes"
	CommandScrollIntoViewIfNeeded       = "DOM.scrollIntoViewIfNeeded"
	CommandFocus                       = "DOM.focus"
	CommandSetFileInputFiles           = "DOM.setFileInputFiles"
	CommandPushNodesByBackendIdsToFrontend = "DOM.pushNodesByBackendIdsToFrontend"
	CommandGetFrameOwner               = "DOM.getFrameOwner"
	CommandPerformSearch                = "DOM.performSearch"
	CommandGetSearchResults             = "DOM.getSearchResults"
	CommandDiscardSearchResults          = "DOM.discardSearchResults"

	EventDocumentUpdated = "DOM.documentUpdated"
	EventChildNodeInserted = "DOM.childNodeInserted"
	EventChildNodeRemoved  = "DOM.childNodeRemoved"
	EventAttributeModified = "DOM.attributeModified"
)

// Node is the (trimmed) DOM.Node object the backend returns from
// getDocument/describeNode/search results.
type Node struct {
	NodeID        cdp.NodeID        `json:"nodeId"`
	BackendNodeID cdp.BackendNodeID `json:"backendNodeId"`
	NodeType      int64             `json:"nodeType"`
	NodeName      string            `json:"nodeName"`
	FrameID       cdp.FrameID       `json:"frameId,omitempty"`
	ContentDocument *Node           `json:"contentDocument,omitempty"`
	ShadowRoots   []*Node           `json:"shadowRoots,omitempty"`
	Children      []*Node           `json:"children,omitempty"`
	Attributes    []string          `json:"attributes,omitempty"`
}

// AttrMap pairs the flat Attributes slice CDP returns ([name, value, name,
// value, ...]) up into a map.
func (n *Node) AttrMap() map[string]string {
	m := make(map[string]string, len(n.Attributes)/2)
	for i := 0; i+1 < len(n.Attributes); i += 2 {
		m[n.Attributes[i]] = n.Attributes[i+1]
	}
	return m
}

// IsShadowRoot reports whether n is a #shadow-root node (nodeType 11 /
// DOCUMENT_FRAGMENT_NODE with the shadowRootType field the search treats
// opaquely — callers distinguish by nodeName "#document-fragment" plus the
// owning node's ShadowRoots slice rather than this flag alone).
func (n *Node) IsShadowRoot() bool { return n.NodeName == "#document-fragment" }

// IsFrameOwner reports whether n owns a child document (iframe, frame,
// object, embed, portal), per query_builder.rs's frame-descent check.
func (n *Node) IsFrameOwner() bool {
	switch n.NodeName {
	case "IFRAME", "FRAME", "OBJECT", "EMBED", "PORTAL":
		return true
	default:
		return n.ContentDocument != nil
	}
}

// GetDocumentParams is DOM.getDocument's parameters.
type GetDocumentParams struct {
	Depth         int  `json:"depth"`
	Pierce        bool `json:"pierce"`
}

// GetDocument requests the full document subtree with shadow roots pierced,
// matching query_builder.rs's default traversal depth.
func GetDocument() *GetDocumentParams {
	return &GetDocumentParams{Depth: -1, Pierce: true}
}

// GetDocumentResult is DOM.getDocument's result.
type GetDocumentResult struct {
	Root Node `json:"root"`
}

// DescribeNodeParams is DOM.describeNode's parameters. Exactly one of
// NodeID, BackendNodeID should be set; this mirrors the "bind
// backendNodeId -> nodeId" step of the per-target DOM lock sequence.
type DescribeNodeParams struct {
	NodeID        cdp.NodeID        `json:"nodeId,omitempty"`
	BackendNodeID cdp.BackendNodeID `json:"backendNodeId,omitempty"`
	Depth         int               `json:"depth,omitempty"`
	Pierce        bool              `json:"pierce,omitempty"`
}

// DescribeNodeResult is DOM.describeNode's result.
type DescribeNodeResult struct {
	Node Node `json:"node"`
}

// QuerySelectorParams is DOM.querySelector's parameters.
type QuerySelectorParams struct {
	NodeID   cdp.NodeID `json:"nodeId"`
	Selector string     `json:"selector"`
}

// QuerySelectorResult is DOM.querySelector's result. NodeID is
// cdp.EmptyNodeID when nothing matched.
type QuerySelectorResult struct {
	NodeID cdp.NodeID `json:"nodeId"`
}

// QuerySelectorAllParams is DOM.querySelectorAll's parameters.
type QuerySelectorAllParams struct {
	NodeID   cdp.NodeID `json:"nodeId"`
	Selector string     `json:"selector"`
}

// QuerySelectorAllResult is DOM.querySelectorAll's result.
type QuerySelectorAllResult struct {
	NodeIDs []cdp.NodeID `json:"nodeIds"`
}

// Quad is eight numbers, x1,y1,x2,y2,x3,y3,x4,y4, the four corners of a
// box-model quad going clockwise from the top-left.
type Quad []float64

// BoxModel is DOM.getBoxModel's reported geometry.
type BoxModel struct {
	Content Quad `json:"content"`
	Padding Quad `json:"padding"`
	Border  Quad `json:"border"`
	Margin  Quad `json:"margin"`
	Width   int64 `json:"width"`
	Height  int64 `json:"height"`
}

// Center returns the midpoint of the content quad, the point click uses as
// the dispatch coordinate.
func (q Quad) Center() (x, y float64) {
	if len(q) != 8 {
		return 0, 0
	}
	for i := 0; i < 8; i += 2 {
		x += q[i]
		y += q[i+1]
	}
	return x / 4, y / 4
}

// GetBoxModelParams is DOM.getBoxModel's parameters.
type GetBoxModelParams struct {
	NodeID cdp.NodeID `json:"nodeId"`
}

// GetBoxModelResult is DOM.getBoxModel's result.
type GetBoxModelResult struct {
	Model BoxModel `json:"model"`
}

// GetAttributesParams is DOM.getAttributes's parameters.
type GetAttributesParams struct {
	NodeID cdp.NodeID `json:"nodeId"`
}

// GetAttributesResult is DOM.getAttributes's result: a flat [name, value,
// ...] slice, identical in shape to Node.Attributes.
type GetAttributesResult struct {
	Attributes []string `json:"attributes"`
}

// ScrollIntoViewIfNeededParams is DOM.scrollIntoViewIfNeeded's parameters.
type ScrollIntoViewIfNeededParams struct {
	NodeID cdp.NodeID `json:"nodeId"`
}

// FocusParams is DOM.focus's parameters.
type FocusParams struct {
	NodeID cdp.NodeID `json:"nodeId"`
}

// SetFileInputFilesParams is DOM.setFileInputFiles's parameters.
type SetFileInputFilesParams struct {
	Files  []string   `json:"files"`
	NodeID cdp.NodeID `json:"nodeId"`
}

// PushNodesByBackendIdsToFrontendParams is
// DOM.pushNodesByBackendIdsToFrontend's parameters.
type PushNodesByBackendIdsToFrontendParams struct {
	BackendNodeIDs []cdp.BackendNodeID `json:"backendNodeIds"`
}

// PushNodesByBackendIdsToFrontendResult is
// DOM.pushNodesByBackendIdsToFrontend's result.
type PushNodesByBackendIdsToFrontendResult struct {
	NodeIDs []cdp.NodeID `json:"nodeIds"`
}

// GetFrameOwnerParams is DOM.getFrameOwner's parameters.
type GetFrameOwnerParams struct {
	FrameID cdp.FrameID `json:"frameId"`
}

// GetFrameOwnerResult is DOM.getFrameOwner's result.
type GetFrameOwnerResult struct {
	BackendNodeID cdp.BackendNodeID `json:"backendNodeId"`
	NodeID        cdp.NodeID        `json:"nodeId,omitempty"`
}

// PerformSearchParams is DOM.performSearch's parameters, used by the
// selector engine's text(LITERAL) matcher.
type PerformSearchParams struct {
	Query                       string `json:"query"`
	IncludeUserAgentShadowDOM    bool   `json:"includeUserAgentShadowDOM,omitempty"`
}

// PerformSearchResult is DOM.performSearch's result.
type PerformSearchResult struct {
	SearchID    string `json:"searchId"`
	ResultCount int64  `json:"resultCount"`
}

// GetSearchResultsParams is DOM.getSearchResults's parameters.
type GetSearchResultsParams struct {
	SearchID  string `json:"searchId"`
	FromIndex int64  `json:"fromIndex"`
	ToIndex   int64  `json:"toIndex"`
}

// GetSearchResultsResult is DOM.getSearchResults's result.
type GetSearchResultsResult struct {
	NodeIDs []cdp.NodeID `json:"nodeIds"`
}

// DiscardSearchResultsParams is DOM.discardSearchResults's parameters.
type DiscardSearchResultsParams struct {
	SearchID string `json:"searchId"`
}
