package chromatica

import (
	"context"

	"github.com/chromatica-go/chromatica/cdp"
)

// Element is a handle to a single DOM node, identified by its stable
// BackendNodeID within the frame that owns it. It holds only a weak
// reference to that frame, mirroring element.rs's Weak<FrameInner>
// backreference, so a handle that outlives its frame's navigation away
// reports ErrHandleInvalidated instead of operating on a stale node.
type Element struct {
	frame     Weak[FrameInner]
	backendID cdp.BackendNodeID
}

func newElement(frame *FrameInner, backendID cdp.BackendNodeID) *Element {
	return &Element{frame: frame.newWeakRef(), backendID: backendID}
}

// BackendNodeID returns the element's stable backend node id.
func (e *Element) BackendNodeID() cdp.BackendNodeID { return e.backendID }

// Click dispatches a synthetic click at the element's center.
func (e *Element) Click(ctx context.Context) error {
	f, err := e.frame.Get()
	if err != nil {
		return err
	}
	return f.clickBackendNode(ctx, e.backendID)
}

// Type focuses the element and dispatches a keyDown/char/keyUp sequence for
// each rune of text.
func (e *Element) Type(ctx context.Context, text string) error {
	f, err := e.frame.Get()
	if err != nil {
		return err
	}
	return f.typeTextBackendNode(ctx, e.backendID, text)
}

// UploadFile sets the files of the element, which must be an
// <input type=file>.
func (e *Element) UploadFile(ctx context.Context, files []string) error {
	f, err := e.frame.Get()
	if err != nil {
		return err
	}
	return f.uploadFileBackendNode(ctx, e.backendID, files)
}

// GetAttributes returns the element's attribute map.
func (e *Element) GetAttributes(ctx context.Context) (map[string]string, error) {
	f, err := e.frame.Get()
	if err != nil {
		return nil, err
	}
	return f.getAttributesBackendNode(ctx, e.backendID)
}

// QuerySelector runs selector rooted at this element instead of the
// document.
func (e *Element) QuerySelector(ctx context.Context, selector string) (*Element, error) {
	f, err := e.frame.Get()
	if err != nil {
		return nil, err
	}
	var el *Element
	descErr := f.owner.withDOMLock(func() error {
		found, err := execStepsFrom(ctx, f, e.backendID, parseSelectorPath(selector))
		if err != nil {
			return err
		}
		el = found
		return nil
	})
	if descErr != nil {
		return nil, descErr
	}
	return el, nil
}
