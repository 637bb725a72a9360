// Package device holds device emulation presets, adapted from chromedp's
// generated device package (device/device.go, device/types.go) but with a
// hand-curated preset table in place of the Chrome DevTools Protocol's
// generated device list, since that generation step scrapes the upstream
// puppeteer device descriptors at build time.
package device

// Info describes one device's viewport metrics, scale and user agent.
type Info struct {
	Name      string
	UserAgent string
	Width     int64
	Height    int64
	Scale     float64
	Landscape bool
	Mobile    bool
	Touch     bool
}

var presets = []Info{
	{
		Name:      "iPhone X",
		UserAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 14_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.0 Mobile/15E148 Safari/604.1",
		Width:     375, Height: 812, Scale: 3, Mobile: true, Touch: true,
	},
	{
		Name:      "Pixel 2",
		UserAgent: "Mozilla/5.0 (Linux; Android 8.0; Pixel 2) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Mobile Safari/537.36",
		Width:     411, Height: 731, Scale: 2.625, Mobile: true, Touch: true,
	},
	{
		Name:      "iPad",
		UserAgent: "Mozilla/5.0 (iPad; CPU OS 14_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.0 Mobile/15E148 Safari/604.1",
		Width:     768, Height: 1024, Scale: 2, Mobile: true, Touch: true,
	},
	{
		Name:      "iPhone X landscape",
		UserAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 14_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.0 Mobile/15E148 Safari/604.1",
		Width:     812, Height: 375, Scale: 3, Mobile: true, Touch: true, Landscape: true,
	},
}

// Lookup returns the preset named name, case-sensitively, the way
// device/device.go's generated constants are looked up by name in
// emulate.go's Emulate action.
func Lookup(name string) (Info, bool) {
	for _, d := range presets {
		if d.Name == name {
			return d, true
		}
	}
	return Info{}, false
}

// Names returns every preset name, in table order.
func Names() []string {
	out := make([]string, len(presets))
	for i, d := range presets {
		out[i] = d.Name
	}
	return out
}
