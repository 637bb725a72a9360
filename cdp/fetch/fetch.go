// Package fetch holds the wire shapes for the CDP Fetch domain, grounded on
// network_manager.rs's interception auto-continue policy and on the subset
// of github.com/chromedp/cdproto/fetch that handler.go exercises.
package fetch

import "github.com/chromatica-go/chromatica/cdp/network"

// Command method names.
const (
	CommandEnable           = "Fetch.enable"
	CommandDisable          = "Fetch.disable"
	CommandContinueRequest  = "Fetch.continueRequest"
	CommandContinueWithAuth = "Fetch.continueWithAuth"
	CommandFailRequest      = "Fetch.failRequest"
	CommandFulfillRequest   = "Fetch.fulfillRequest"
	CommandGetResponseBody  = "Fetch.getResponseBody"

	EventRequestPaused = "Fetch.requestPaused"
	EventAuthRequired  = "Fetch.authRequired"
)

// RequestPattern restricts interception to matching URLs/resource types; an
// empty slice to Enable means "intercept everything".
type RequestPattern struct {
	URLPattern   string `json:"urlPattern,omitempty"`
	ResourceType string `json:"resourceType,omitempty"`
	RequestStage string `json:"requestStage,omitempty"`
}

// EnableParams is Fetch.enable's parameters.
type EnableParams struct {
	Patterns           []RequestPattern `json:"patterns,omitempty"`
	HandleAuthRequests bool             `json:"handleAuthRequests,omitempty"`
}

// HeaderEntry is one name/value pair in the array form Fetch.continueRequest
// and Fetch.fulfillRequest use for headers, unlike Network's plain object.
type HeaderEntry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ContinueRequestParams is Fetch.continueRequest's parameters.
type ContinueRequestParams struct {
	RequestID string        `json:"requestId"`
	URL       string        `json:"url,omitempty"`
	Method    string        `json:"method,omitempty"`
	PostData  string        `json:"postData,omitempty"`
	Headers   []HeaderEntry `json:"headers,omitempty"`
}

// AuthChallengeResponse is the response field of Fetch.continueWithAuth.
// Response is one of "Default", "CancelAuth", "ProvideCredentials".
type AuthChallengeResponse struct {
	Response string `json:"response"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// ContinueWithAuthParams is Fetch.continueWithAuth's parameters.
type ContinueWithAuthParams struct {
	RequestID              string                `json:"requestId"`
	AuthChallengeResponse  AuthChallengeResponse `json:"authChallengeResponse"`
}

// FailRequestParams is Fetch.failRequest's parameters.
type FailRequestParams struct {
	RequestID   string `json:"requestId"`
	ErrorReason string `json:"errorReason"`
}

// FulfillRequestParams is Fetch.fulfillRequest's parameters.
type FulfillRequestParams struct {
	RequestID       string        `json:"requestId"`
	ResponseCode    int64         `json:"responseCode"`
	ResponseHeaders []HeaderEntry `json:"responseHeaders,omitempty"`
	Body            []byte        `json:"body,omitempty"`
}

// GetResponseBodyParams is Fetch.getResponseBody's parameters.
type GetResponseBodyParams struct {
	RequestID string `json:"requestId"`
}

// GetResponseBodyResult is Fetch.getResponseBody's result.
type GetResponseBodyResult struct {
	Body          string `json:"body"`
	Base64Encoded bool   `json:"base64Encoded"`
}

// AuthChallenge is the authChallenge field of Fetch.authRequired.
type AuthChallenge struct {
	Source string `json:"source,omitempty"`
	Origin string `json:"origin"`
	Scheme string `json:"scheme"`
	Realm  string `json:"realm"`
}

// EventRequestPausedParams is Fetch.requestPaused's params.
type EventRequestPausedParams struct {
	RequestID          string          `json:"requestId"`
	Request            network.Request `json:"request"`
	FrameID             string         `json:"frameId"`
	ResourceType        string         `json:"resourceType"`
	ResponseStatusCode  int64          `json:"responseStatusCode,omitempty"`
	ResponseHeaders     []HeaderEntry  `json:"responseHeaders,omitempty"`
	NetworkID           string         `json:"networkId,omitempty"`
}

// EventAuthRequiredParams is Fetch.authRequired's params.
type EventAuthRequiredParams struct {
	RequestID     string          `json:"requestId"`
	Request       network.Request `json:"request"`
	FrameID       string          `json:"frameId"`
	ResourceType  string          `json:"resourceType"`
	AuthChallenge AuthChallenge   `json:"authChallenge"`
}
