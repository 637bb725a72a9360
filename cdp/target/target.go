// Package target holds the wire param/result shapes for the CDP Target
// domain, grounded on cdp/domains/target.rs and on the subset of
// github.com/chromedp/cdproto/target that handler.go and target.go exercise.
package target

import "github.com/chromatica-go/chromatica/cdp"

// Command method names.
const (
	CommandSetDiscoverTargets    = "Target.setDiscoverTargets"
	CommandAttachToTarget        = "Target.attachToTarget"
	CommandCreateTarget          = "Target.createTarget"
	CommandCloseTarget           = "Target.closeTarget"
	CommandActivateTarget        = "Target.activateTarget"
	CommandCreateBrowserContext  = "Target.createBrowserContext"
	CommandDisposeBrowserContext = "Target.disposeBrowserContext"

	EventTargetCreated   = "Target.targetCreated"
	EventTargetDestroyed = "Target.targetDestroyed"
	EventTargetCrashed   = "Target.targetCrashed"
)

// Info mirrors the TargetInfo object the browser reports for every target.
type Info struct {
	TargetID         cdp.TargetID         `json:"targetId"`
	Type             string               `json:"type"`
	Title            string               `json:"title"`
	URL              string               `json:"url"`
	Attached         bool                 `json:"attached"`
	OpenerID         cdp.TargetID         `json:"openerId,omitempty"`
	BrowserContextID cdp.BrowserContextID `json:"browserContextId,omitempty"`
}

// SupportedType reports whether a TargetInfo.Type is one the target manager
// tracks: page, iframe, webview, tab. Workers and other auxiliary target
// types are ignored per the target creation protocol.
func SupportedType(t string) bool {
	switch t {
	case "page", "iframe", "webview", "tab":
		return true
	default:
		return false
	}
}

// SetDiscoverTargetsParams is Target.setDiscoverTargets's parameters.
type SetDiscoverTargetsParams struct {
	Discover bool `json:"discover"`
}

// SetDiscoverTargets enables target discovery.
func SetDiscoverTargets() *SetDiscoverTargetsParams {
	return &SetDiscoverTargetsParams{Discover: true}
}

// AttachToTargetParams is Target.attachToTarget's parameters.
type AttachToTargetParams struct {
	TargetID cdp.TargetID `json:"targetId"`
	Flatten  bool         `json:"flatten"`
}

// AttachToTarget attaches to targetID in flattened-session mode, per the
// target creation protocol (§4.2 step 2).
func AttachToTarget(targetID cdp.TargetID) *AttachToTargetParams {
	return &AttachToTargetParams{TargetID: targetID, Flatten: true}
}

// AttachToTargetResult is Target.attachToTarget's result.
type AttachToTargetResult struct {
	SessionID cdp.SessionID `json:"sessionId"`
}

// CreateTargetParams is Target.createTarget's parameters.
type CreateTargetParams struct {
	URL              string               `json:"url"`
	BrowserContextID cdp.BrowserContextID `json:"browserContextId,omitempty"`
}

// CreateTarget opens about:blank, optionally inside browserContextID.
func CreateTarget(browserContextID cdp.BrowserContextID) *CreateTargetParams {
	return &CreateTargetParams{URL: "about:blank", BrowserContextID: browserContextID}
}

// CreateTargetResult is Target.createTarget's result.
type CreateTargetResult struct {
	TargetID cdp.TargetID `json:"targetId"`
}

// CloseTargetParams is Target.closeTarget's parameters.
type CloseTargetParams struct {
	TargetID cdp.TargetID `json:"targetId"`
}

// ActivateTargetParams is Target.activateTarget's parameters.
type ActivateTargetParams struct {
	TargetID cdp.TargetID `json:"targetId"`
}

// CreateBrowserContextParams is Target.createBrowserContext's parameters.
type CreateBrowserContextParams struct {
	ProxyServer      string `json:"proxyServer,omitempty"`
	ProxyBypassList  string `json:"proxyBypassList,omitempty"`
	DisposeOnDetach  bool   `json:"disposeOnDetach,omitempty"`
}

// CreateBrowserContextResult is Target.createBrowserContext's result.
type CreateBrowserContextResult struct {
	BrowserContextID cdp.BrowserContextID `json:"browserContextId"`
}

// DisposeBrowserContextParams is Target.disposeBrowserContext's parameters.
type DisposeBrowserContextParams struct {
	BrowserContextID cdp.BrowserContextID `json:"browserContextId"`
}

// EventCreated is Target.targetCreated's params.
type EventCreated struct {
	TargetInfo Info `json:"targetInfo"`
}

// EventDestroyed is Target.targetDestroyed's params.
type EventDestroyed struct {
	TargetID cdp.TargetID `json:"targetId"`
}

// EventCrashed is Target.targetCrashed's params.
type EventCrashed struct {
	TargetID cdp.TargetID `json:"targetId"`
	Status   string       `json:"status"`
}
