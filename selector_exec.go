package chromatica

import (
	"context"

	"github.com/chromatica-go/chromatica/cdp"
	cdpdom "github.com/chromatica-go/chromatica/cdp/dom"
)

// shadowMatch pairs a backend node id with the frame it was found in, the
// unit execStepsAll collects before wrapping each into an Element.
type shadowMatch struct {
	frame     *FrameInner
	backendID cdp.BackendNodeID
}

// resolveNodeID binds backendNodeID to a frontend NodeID for the duration
// of the caller's DOM operation. A zero backendNodeID is the sentinel for
// "this frame's document root", resolved via DOM.getDocument instead of
// pushNodesByBackendIdsToFrontend (which rejects a zero id).
func (f *FrameInner) resolveNodeID(ctx context.Context, backendNodeID cdp.BackendNodeID) (cdp.NodeID, error) {
	if backendNodeID == 0 {
		var res cdpdom.GetDocumentResult
		if err := f.send(ctx, cdpdom.CommandGetDocument, mustMarshal(cdpdom.GetDocument()), &res); err != nil {
			return cdp.EmptyNodeID, err
		}
		return res.Root.NodeID, nil
	}
	return f.bindNode(ctx, backendNodeID)
}

// describeByBackendID describes the node identified by backendNodeID,
// binding it to a NodeID first.
func (f *FrameInner) describeByBackendID(ctx context.Context, backendNodeID cdp.BackendNodeID) (*cdpdom.Node, error) {
	nodeID, err := f.resolveNodeID(ctx, backendNodeID)
	if err != nil {
		return nil, err
	}
	var res cdpdom.DescribeNodeResult
	if err := f.send(ctx, cdpdom.CommandDescribeNode, mustMarshal(&cdpdom.DescribeNodeParams{NodeID: nodeID}), &res); err != nil {
		return nil, err
	}
	return &res.Node, nil
}

// frameDescent follows a matched node into the frame it owns, if any
// (an iframe/frame/object/embed match descends into that document instead
// of returning the owner element itself), resolved through the target
// manager's frame index by id.
func (f *FrameInner) frameDescent(node *cdpdom.Node) (*FrameInner, cdp.BackendNodeID) {
	if node.FrameID == "" {
		return f, node.BackendNodeID
	}
	child := f.owner.conn.targets().Frame(node.FrameID)
	if child == nil {
		return f, node.BackendNodeID
	}
	return child, 0
}

// queryOne runs DOM.querySelector rooted at backendNodeID for a single CSS
// fragment, following frame descent when the match owns a child document.
func (f *FrameInner) queryOne(ctx context.Context, backendNodeID cdp.BackendNodeID, css string) (cdp.BackendNodeID, *FrameInner, error) {
	nodeID, err := f.resolveNodeID(ctx, backendNodeID)
	if err != nil {
		return 0, nil, err
	}
	var res cdpdom.QuerySelectorResult
	if err := f.send(ctx, cdpdom.CommandQuerySelector, mustMarshal(&cdpdom.QuerySelectorParams{NodeID: nodeID, Selector: css}), &res); err != nil {
		return 0, nil, err
	}
	if res.NodeID == cdp.EmptyNodeID {
		return 0, nil, ErrNoResults
	}
	var describeRes cdpdom.DescribeNodeResult
	if err := f.send(ctx, cdpdom.CommandDescribeNode, mustMarshal(&cdpdom.DescribeNodeParams{NodeID: res.NodeID, Depth: 0}), &describeRes); err != nil {
		return 0, nil, err
	}
	frame, backendID := f.frameDescent(&describeRes.Node)
	return backendID, frame, nil
}

// queryAll runs DOM.querySelectorAll rooted at backendNodeID for a single
// CSS fragment, following frame descent per match.
func (f *FrameInner) queryAll(ctx context.Context, backendNodeID cdp.BackendNodeID, css string) ([]shadowMatch, error) {
	nodeID, err := f.resolveNodeID(ctx, backendNodeID)
	if err != nil {
		return nil, err
	}
	var res cdpdom.QuerySelectorAllResult
	if err := f.send(ctx, cdpdom.CommandQuerySelectorAll, mustMarshal(&cdpdom.QuerySelectorAllParams{NodeID: nodeID, Selector: css}), &res); err != nil {
		return nil, err
	}
	out := make([]shadowMatch, 0, len(res.NodeIDs))
	for _, id := range res.NodeIDs {
		var describeRes cdpdom.DescribeNodeResult
		if err := f.send(ctx, cdpdom.CommandDescribeNode, mustMarshal(&cdpdom.DescribeNodeParams{NodeID: id, Depth: 0}), &describeRes); err != nil {
			continue
		}
		frame, backendID := f.frameDescent(&describeRes.Node)
		out = append(out, shadowMatch{frame: frame, backendID: backendID})
	}
	if len(out) == 0 {
		return nil, ErrNoResults
	}
	return out, nil
}

// enterShadowRoot moves into the shadow root a `>>>`/`>>>>` piercer steps
// across. A direct piercer (`>>>>`) only considers the current node's own
// shadow roots, an immediate child. A deep piercer (`>>>`) describes the
// current node's full subtree (depth -1, pierce true) and walks it in
// pre-order for the first shadow root found anywhere beneath it, since the
// current node itself need not be a shadow host.
func enterShadowRoot(ctx context.Context, frame *FrameInner, backendNodeID cdp.BackendNodeID, deep bool) (cdp.BackendNodeID, *FrameInner, error) {
	if !deep {
		node, err := frame.describeByBackendID(ctx, backendNodeID)
		if err != nil {
			return 0, nil, err
		}
		if len(node.ShadowRoots) == 0 {
			return 0, nil, ErrNoResults
		}
		return node.ShadowRoots[0].BackendNodeID, frame, nil
	}

	nodeID, err := frame.resolveNodeID(ctx, backendNodeID)
	if err != nil {
		return 0, nil, err
	}
	var res cdpdom.DescribeNodeResult
	if err := frame.send(ctx, cdpdom.CommandDescribeNode, mustMarshal(&cdpdom.DescribeNodeParams{NodeID: nodeID, Depth: -1, Pierce: true}), &res); err != nil {
		return 0, nil, err
	}
	found := firstShadowRoot(&res.Node)
	if found == nil {
		return 0, nil, ErrNoResults
	}
	return found.BackendNodeID, frame, nil
}

// firstShadowRoot walks node's subtree in pre-order — the node's own shadow
// roots first, then each child's subtree in turn — for the first shadow
// root found, the search order a deep piercer resolves against.
func firstShadowRoot(node *cdpdom.Node) *cdpdom.Node {
	if len(node.ShadowRoots) > 0 {
		return node.ShadowRoots[0]
	}
	for _, child := range node.Children {
		if found := firstShadowRoot(child); found != nil {
			return found
		}
	}
	return nil
}

// findByText runs DOM.performSearch for a literal text fragment across
// frame's document, returning every match as an Element.
func findByText(ctx context.Context, frame *FrameInner, text string) ([]*Element, error) {
	var search cdpdom.PerformSearchResult
	if err := frame.send(ctx, cdpdom.CommandPerformSearch, mustMarshal(&cdpdom.PerformSearchParams{Query: text, IncludeUserAgentShadowDOM: true}), &search); err != nil {
		return nil, err
	}
	defer frame.send(ctx, cdpdom.CommandDiscardSearchResults, mustMarshal(&cdpdom.DiscardSearchResultsParams{SearchID: search.SearchID}), nil)

	if search.ResultCount == 0 {
		return nil, ErrNoResults
	}
	var results cdpdom.GetSearchResultsResult
	if err := frame.send(ctx, cdpdom.CommandGetSearchResults, mustMarshal(&cdpdom.GetSearchResultsParams{SearchID: search.SearchID, FromIndex: 0, ToIndex: search.ResultCount}), &results); err != nil {
		return nil, err
	}

	out := make([]*Element, 0, len(results.NodeIDs))
	for _, id := range results.NodeIDs {
		var describeRes cdpdom.DescribeNodeResult
		if err := frame.send(ctx, cdpdom.CommandDescribeNode, mustMarshal(&cdpdom.DescribeNodeParams{NodeID: id, Depth: 0}), &describeRes); err != nil {
			continue
		}
		out = append(out, newElement(frame, describeRes.Node.BackendNodeID))
	}
	if len(out) == 0 {
		return nil, ErrNoResults
	}
	return out, nil
}
