// Package browser holds the minimal wire shapes for the CDP Browser domain
// chromatica needs: the Browser.getVersion call behind Browser.Version,
// grounded on the subset of github.com/chromedp/cdproto/browser.
package browser

// Command method names.
const (
	CommandGetVersion = "Browser.getVersion"
)

// GetVersionResult is Browser.getVersion's result.
type GetVersionResult struct {
	ProtocolVersion string `json:"protocolVersion"`
	Product         string `json:"product"`
	Revision        string `json:"revision"`
	UserAgent       string `json:"userAgent"`
	JSVersion       string `json:"jsVersion"`
}
