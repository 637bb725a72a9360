// Package emulation holds the wire shapes for the CDP Emulation domain that
// chromatica's EmulationManager exercises: user-agent override, grounded on
// device/device.go and device/types.go, and on the subset of
// github.com/chromedp/cdproto/emulation that emulate.go exercises.
package emulation

// Command method names.
const (
	CommandSetUserAgentOverride = "Emulation.setUserAgentOverride"
	CommandSetDeviceMetricsOverride = "Emulation.setDeviceMetricsOverride"
	CommandSetTouchEmulationEnabled  = "Emulation.setTouchEmulationEnabled"
)

// SetUserAgentOverrideParams is Emulation.setUserAgentOverride's parameters.
type SetUserAgentOverrideParams struct {
	UserAgent      string `json:"userAgent"`
	AcceptLanguage string `json:"acceptLanguage,omitempty"`
	Platform       string `json:"platform,omitempty"`
}

// ScreenOrientation is the orientation field of
// Emulation.setDeviceMetricsOverride.
type ScreenOrientation struct {
	Type  string `json:"type"`
	Angle int64  `json:"angle"`
}

// SetDeviceMetricsOverrideParams is Emulation.setDeviceMetricsOverride's
// parameters, used when a device preset carries viewport metrics in
// addition to its user agent string.
type SetDeviceMetricsOverrideParams struct {
	Width             int64              `json:"width"`
	Height            int64              `json:"height"`
	DeviceScaleFactor float64            `json:"deviceScaleFactor"`
	Mobile            bool               `json:"mobile"`
	ScreenOrientation *ScreenOrientation `json:"screenOrientation,omitempty"`
}

// SetTouchEmulationEnabledParams is Emulation.setTouchEmulationEnabled's
// parameters.
type SetTouchEmulationEnabledParams struct {
	Enabled        bool   `json:"enabled"`
	Configuration  string `json:"configuration,omitempty"`
}
