// Package page holds the wire param/result shapes for the CDP Page domain,
// grounded on frame_inner.rs's navigate/reload/screenshot/printToPDF/dialog
// flows and on the subset of github.com/chromedp/cdproto/page that nav.go,
// screenshot.go and handler.go exercise.
package page

import "github.com/chromatica-go/chromatica/cdp"

// Command method names.
const (
	CommandEnable                        = "Page.enable"
	CommandDisable                       = "Page.disable"
	CommandGetFrameTree                  = "Page.getFrameTree"
	CommandNavigate                      = "Page.navigate"
	CommandReload                        = "Page.reload"
	CommandCaptureScreenshot             = "Page.captureScreenshot"
	CommandPrintToPDF                    = "Page.printToPDF"
	CommandHandleJavaScriptDialog        = "Page.handleJavaScriptDialog"
	CommandSetInterceptFileChooserDialog = "Page.setInterceptFileChooserDialog"
	CommandSetLifecycleEventsEnabled     = "Page.setLifecycleEventsEnabled"
	CommandAddScriptToEvaluateOnNewDoc   = "Page.addScriptToEvaluateOnNewDocument"
	CommandRemoveScriptToEvaluateOnNewDoc = "Page.removeScriptToEvaluateOnNewDocument"

	EventFrameAttached        = "Page.frameAttached"
	EventFrameDetached        = "Page.frameDetached"
	EventFrameNavigated       = "Page.frameNavigated"
	EventFrameStartedLoading  = "Page.frameStartedLoading"
	EventFrameStoppedLoading  = "Page.frameStoppedLoading"
	EventLifecycleEvent       = "Page.lifecycleEvent"
	EventJavascriptDialogOpen = "Page.javascriptDialogOpening"
	EventFileChooserOpened    = "Page.fileChooserOpened"
)

// Frame is a node in the Page.getFrameTree response: a document-owning
// element, either the top-level frame or an iframe.
type Frame struct {
	ID             cdp.FrameID `json:"id"`
	ParentID       cdp.FrameID `json:"parentId,omitempty"`
	LoaderID       string      `json:"loaderId"`
	Name           string      `json:"name,omitempty"`
	URL            string      `json:"url"`
	SecurityOrigin string      `json:"securityOrigin"`
	MimeType       string      `json:"mimeType"`
}

// FrameTree is the recursive frame-tree shape Page.getFrameTree returns.
type FrameTree struct {
	Frame       Frame        `json:"frame"`
	ChildFrames []*FrameTree `json:"childFrames,omitempty"`
}

// Flatten walks the tree depth-first and returns every frame it contains,
// the way frame_inner.rs's initial frame-tree ingestion does.
func (t *FrameTree) Flatten() []Frame {
	if t == nil {
		return nil
	}
	out := []Frame{t.Frame}
	for _, c := range t.ChildFrames {
		out = append(out, c.Flatten()...)
	}
	return out
}

// GetFrameTreeResult is Page.getFrameTree's result.
type GetFrameTreeResult struct {
	FrameTree FrameTree `json:"frameTree"`
}

// NavigateParams is Page.navigate's parameters.
type NavigateParams struct {
	URL      string      `json:"url"`
	Referrer string      `json:"referrer,omitempty"`
	FrameID  cdp.FrameID `json:"frameId,omitempty"`
}

// Navigate builds Page.navigate's parameters for the given frame; an empty
// frameID targets the session's top-level frame.
func Navigate(url string, frameID cdp.FrameID) *NavigateParams {
	return &NavigateParams{URL: url, FrameID: frameID}
}

// NavigateResult is Page.navigate's result.
type NavigateResult struct {
	FrameID   cdp.FrameID `json:"frameId"`
	LoaderID  string      `json:"loaderId,omitempty"`
	ErrorText string      `json:"errorText,omitempty"`
}

// ReloadParams is Page.reload's parameters.
type ReloadParams struct {
	IgnoreCache bool `json:"ignoreCache,omitempty"`
}

// CaptureScreenshotParams is Page.captureScreenshot's parameters.
type CaptureScreenshotParams struct {
	Format  string `json:"format,omitempty"`
	Quality int    `json:"quality,omitempty"`
	Clip    *Viewport `json:"clip,omitempty"`
	FromSurface bool `json:"fromSurface"`
	CaptureBeyondViewport bool `json:"captureBeyondViewport,omitempty"`
}

// Viewport describes a screenshot clip rectangle in CSS pixels.
type Viewport struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Scale  float64 `json:"scale"`
}

// CaptureScreenshotResult is Page.captureScreenshot's result.
type CaptureScreenshotResult struct {
	Data []byte `json:"data"`
}

// PrintToPDFParams is Page.printToPDF's parameters.
type PrintToPDFParams struct {
	Landscape           bool    `json:"landscape,omitempty"`
	PrintBackground      bool    `json:"printBackground,omitempty"`
	Scale                float64 `json:"scale,omitempty"`
	PaperWidth           float64 `json:"paperWidth,omitempty"`
	PaperHeight          float64 `json:"paperHeight,omitempty"`
	PreferCSSPageSize    bool    `json:"preferCSSPageSize,omitempty"`
}

// PrintToPDFResult is Page.printToPDF's result.
type PrintToPDFResult struct {
	Data []byte `json:"data"`
}

// HandleJavaScriptDialogParams is Page.handleJavaScriptDialog's parameters.
type HandleJavaScriptDialogParams struct {
	Accept     bool   `json:"accept"`
	PromptText string `json:"promptText,omitempty"`
}

// SetInterceptFileChooserDialogParams is Page.setInterceptFileChooserDialog's
// parameters.
type SetInterceptFileChooserDialogParams struct {
	Enabled bool `json:"enabled"`
}

// SetLifecycleEventsEnabledParams is Page.setLifecycleEventsEnabled's
// parameters.
type SetLifecycleEventsEnabledParams struct {
	Enabled bool `json:"enabled"`
}

// AddScriptToEvaluateOnNewDocumentParams is
// Page.addScriptToEvaluateOnNewDocument's parameters.
type AddScriptToEvaluateOnNewDocumentParams struct {
	Source string `json:"source"`
}

// AddScriptToEvaluateOnNewDocumentResult is
// Page.addScriptToEvaluateOnNewDocument's result.
type AddScriptToEvaluateOnNewDocumentResult struct {
	Identifier string `json:"identifier"`
}

// RemoveScriptToEvaluateOnNewDocumentParams is
// Page.removeScriptToEvaluateOnNewDocument's parameters.
type RemoveScriptToEvaluateOnNewDocumentParams struct {
	Identifier string `json:"identifier"`
}

// EventFrameAttachedParams is Page.frameAttached's params.
type EventFrameAttachedParams struct {
	FrameID       cdp.FrameID `json:"frameId"`
	ParentFrameID cdp.FrameID `json:"parentFrameId"`
}

// EventFrameDetachedParams is Page.frameDetached's params.
type EventFrameDetachedParams struct {
	FrameID cdp.FrameID `json:"frameId"`
	Reason  string      `json:"reason"`
}

// EventFrameNavigatedParams is Page.frameNavigated's params.
type EventFrameNavigatedParams struct {
	Frame Frame  `json:"frame"`
	Type  string `json:"type"`
}

// LifecycleEventParams is Page.lifecycleEvent's params. Name is one of
// "init", "DOMContentLoaded", "load", "networkIdle", among others the
// browser reports; waitForNavigation matches against these.
type LifecycleEventParams struct {
	FrameID   cdp.FrameID `json:"frameId"`
	LoaderID  string      `json:"loaderId"`
	Name      string      `json:"name"`
	Timestamp float64     `json:"timestamp"`
}

// JavascriptDialogOpeningParams is Page.javascriptDialogOpening's params.
type JavascriptDialogOpeningParams struct {
	URL          string `json:"url"`
	Message      string `json:"message"`
	Type         string `json:"type"`
	HasBrowserHandler bool `json:"hasBrowserHandler"`
	DefaultPrompt string `json:"defaultPrompt,omitempty"`
}

// FileChooserOpenedParams is Page.fileChooserOpened's params.
type FileChooserOpenedParams struct {
	FrameID        cdp.FrameID    `json:"frameId"`
	Mode           string         `json:"mode"`
	BackendNodeID  cdp.BackendNodeID `json:"backendNodeId"`
}
