package chromatica

import (
	"context"
	"strings"

	"github.com/chromatica-go/chromatica/cdp"
)

// selectorStep is one segment of a parsed selector path: either a plain CSS
// fragment to run DOM.querySelector(All) against, or a shadow-root piercer
// that moves the query root into the preceding match's shadow tree.
type selectorStep struct {
	piercerDeep   bool // >>>
	piercerDirect bool // >>>>
	css           string
}

// parseSelectorPath splits a single selector alternative (no top-level
// commas) into its `>>>`/`>>>>` piercer-separated CSS fragments, the longer
// piercer checked first since ">>>>" contains ">>>" as a prefix.
func parseSelectorPath(selector string) []selectorStep {
	var steps []selectorStep
	rest := selector
	for {
		rest = strings.TrimSpace(rest)
		if idx := strings.Index(rest, ">>>"); idx >= 0 && strings.HasPrefix(rest[idx:], ">>>>") {
			frag := strings.TrimSpace(rest[:idx])
			if frag != "" {
				steps = append(steps, selectorStep{css: frag})
			}
			steps = append(steps, selectorStep{piercerDirect: true})
			rest = rest[idx+len(">>>>"):]
			continue
		}
		if idx := strings.Index(rest, ">>>"); idx >= 0 {
			frag := strings.TrimSpace(rest[:idx])
			if frag != "" {
				steps = append(steps, selectorStep{css: frag})
			}
			steps = append(steps, selectorStep{piercerDeep: true})
			rest = rest[idx+len(">>>"):]
			continue
		}
		if rest != "" {
			steps = append(steps, selectorStep{css: rest})
		}
		break
	}
	return steps
}

// execSelector runs selector against frame's document and returns the first
// match across every comma-separated alternative.
func execSelector(ctx context.Context, frame *FrameInner, selector string, all bool) (*Element, error) {
	if text, ok := parseTextFinder(selector); ok {
		els, err := findByText(ctx, frame, text)
		if err != nil {
			return nil, err
		}
		if len(els) == 0 {
			return nil, ErrNoResults
		}
		return els[0], nil
	}

	for _, alt := range strings.Split(selector, ",") {
		alt = strings.TrimSpace(alt)
		if alt == "" {
			continue
		}
		el, err := execSteps(ctx, frame, parseSelectorPath(alt))
		if err == nil {
			return el, nil
		}
	}
	return nil, ErrNoResults
}

// execSelectorAll runs selector and collects every match across every
// alternative.
func execSelectorAll(ctx context.Context, frame *FrameInner, selector string) ([]*Element, error) {
	if text, ok := parseTextFinder(selector); ok {
		return findByText(ctx, frame, text)
	}

	var out []*Element
	for _, alt := range strings.Split(selector, ",") {
		alt = strings.TrimSpace(alt)
		if alt == "" {
			continue
		}
		els, err := execStepsAll(ctx, frame, parseSelectorPath(alt))
		if err == nil {
			out = append(out, els...)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoResults
	}
	return out, nil
}

func parseTextFinder(selector string) (string, bool) {
	selector = strings.TrimSpace(selector)
	if !strings.HasPrefix(selector, "text(") || !strings.HasSuffix(selector, ")") {
		return "", false
	}
	return selector[len("text(") : len(selector)-1], true
}

// execSteps resolves a single piercer-separated selector path down to one
// Element, starting at frame's document root.
func execSteps(ctx context.Context, frame *FrameInner, steps []selectorStep) (*Element, error) {
	return execStepsFrom(ctx, frame, frame.backendNodeID, steps)
}

// execStepsFrom is execSteps generalized to start from an arbitrary node
// instead of the frame's document root, used by Element.QuerySelector to
// scope a selector to a specific element's subtree.
func execStepsFrom(ctx context.Context, frame *FrameInner, start cdp.BackendNodeID, steps []selectorStep) (*Element, error) {
	cur := frame
	curBackendID := start
	for i, step := range steps {
		if step.piercerDeep || step.piercerDirect {
			shadowID, shadowFrame, err := enterShadowRoot(ctx, cur, curBackendID, step.piercerDeep)
			if err != nil {
				return nil, err
			}
			cur, curBackendID = shadowFrame, shadowID
			continue
		}
		backendID, nextFrame, err := cur.queryOne(ctx, curBackendID, step.css)
		if err != nil {
			return nil, err
		}
		cur, curBackendID = nextFrame, backendID
		if i == len(steps)-1 {
			return newElement(cur, curBackendID), nil
		}
	}
	return newElement(cur, curBackendID), nil
}

// execStepsAll resolves a single piercer-separated selector path, expanding
// to every match only at the final fragment.
func execStepsAll(ctx context.Context, frame *FrameInner, steps []selectorStep) ([]*Element, error) {
	cur := frame
	curBackendID := cur.backendNodeID
	for i, step := range steps {
		if step.piercerDeep || step.piercerDirect {
			shadowID, shadowFrame, err := enterShadowRoot(ctx, cur, curBackendID, step.piercerDeep)
			if err != nil {
				return nil, err
			}
			cur, curBackendID = shadowFrame, shadowID
			continue
		}
		if i == len(steps)-1 {
			matches, err := cur.queryAll(ctx, curBackendID, step.css)
			if err != nil {
				return nil, err
			}
			out := make([]*Element, 0, len(matches))
			for _, m := range matches {
				out = append(out, newElement(m.frame, m.backendID))
			}
			return out, nil
		}
		backendID, nextFrame, err := cur.queryOne(ctx, curBackendID, step.css)
		if err != nil {
			return nil, err
		}
		cur, curBackendID = nextFrame, backendID
	}
	return []*Element{newElement(cur, curBackendID)}, nil
}
