// Package network holds the wire shapes for the CDP Network domain,
// grounded on network_manager.rs's credentials/extra-header/cache-control
// replay and on the subset of github.com/chromedp/cdproto/network that
// handler.go exercises.
package network

// Command method names.
const (
	CommandEnable              = "Network.enable"
	CommandSetCacheDisabled    = "Network.setCacheDisabled"
	CommandSetBypassServiceWorker = "Network.setBypassServiceWorker"
	CommandSetExtraHTTPHeaders = "Network.setExtraHTTPHeaders"

	EventRequestWillBeSent  = "Network.requestWillBeSent"
	EventResponseReceived   = "Network.responseReceived"
	EventLoadingFinished    = "Network.loadingFinished"
	EventLoadingFailed      = "Network.loadingFailed"
)

// EnableParams is Network.enable's parameters.
type EnableParams struct {
	MaxTotalBufferSize    int64 `json:"maxTotalBufferSize,omitempty"`
	MaxResourceBufferSize int64 `json:"maxResourceBufferSize,omitempty"`
}

// SetCacheDisabledParams is Network.setCacheDisabled's parameters.
type SetCacheDisabledParams struct {
	CacheDisabled bool `json:"cacheDisabled"`
}

// SetBypassServiceWorkerParams is Network.setBypassServiceWorker's
// parameters.
type SetBypassServiceWorkerParams struct {
	Bypass bool `json:"bypass"`
}

// Headers is the free-form object Network.setExtraHTTPHeaders and the
// request/response events carry.
type Headers map[string]string

// SetExtraHTTPHeadersParams is Network.setExtraHTTPHeaders's parameters.
type SetExtraHTTPHeadersParams struct {
	Headers Headers `json:"headers"`
}

// Request is the (trimmed) Request object carried by requestWillBeSent and
// by Fetch.requestPaused.
type Request struct {
	URL      string  `json:"url"`
	Method   string  `json:"method"`
	Headers  Headers `json:"headers"`
	PostData string  `json:"postData,omitempty"`
}

// Response is the (trimmed) Response object carried by responseReceived.
type Response struct {
	URL        string  `json:"url"`
	Status     int64   `json:"status"`
	StatusText string  `json:"statusText"`
	Headers    Headers `json:"headers"`
	MimeType   string  `json:"mimeType"`
}

// EventRequestWillBeSentParams is Network.requestWillBeSent's params.
type EventRequestWillBeSentParams struct {
	RequestID string  `json:"requestId"`
	FrameID   string  `json:"frameId,omitempty"`
	Request   Request `json:"request"`
}

// EventResponseReceivedParams is Network.responseReceived's params.
type EventResponseReceivedParams struct {
	RequestID string   `json:"requestId"`
	FrameID   string   `json:"frameId,omitempty"`
	Response  Response `json:"response"`
}

// EventLoadingFailedParams is Network.loadingFailed's params, the signal
// waitForNavigation treats as a terminal navigation error.
type EventLoadingFailedParams struct {
	RequestID     string `json:"requestId"`
	ErrorText     string `json:"errorText"`
	Canceled      bool   `json:"canceled,omitempty"`
	BlockedReason string `json:"blockedReason,omitempty"`
}
