package chromatica

import (
	"context"

	"github.com/chromatica-go/chromatica/cdp"
	cdpbrowser "github.com/chromatica-go/chromatica/cdp/browser"
)

// Browser is the top-level handle to a running Chrome DevTools Protocol
// endpoint: one Connection plus the lazily-built TargetManager tracking
// every target attached over it.
type Browser struct {
	conn *Connection
}

// NewBrowser dials urlstr and returns a ready-to-use Browser.
func NewBrowser(ctx context.Context, urlstr string, opts ...Option) (*Browser, error) {
	conn, err := Dial(ctx, urlstr, opts...)
	if err != nil {
		return nil, err
	}
	return &Browser{conn: conn}, nil
}

// Version reports the browser's product and protocol version strings.
func (b *Browser) Version(ctx context.Context) (*cdpbrowser.GetVersionResult, error) {
	var res cdpbrowser.GetVersionResult
	if err := b.conn.send(ctx, cdpbrowser.CommandGetVersion, "", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// NewPage opens a new top-level page target, optionally isolated inside
// browserContextID (pass "" for the default context).
func (b *Browser) NewPage(ctx context.Context, browserContextID cdp.BrowserContextID) (*Target, error) {
	return b.conn.targets().CreateTarget(ctx, browserContextID)
}

// Pages returns every currently attached page/webview/tab target.
func (b *Browser) Pages() []*Target {
	var pages []*Target
	for _, t := range b.conn.targets().Targets() {
		if t.Kind() != "iframe" {
			pages = append(pages, t)
		}
	}
	return pages
}

// NewContext creates a new incognito-like isolated browser context.
func (b *Browser) NewContext(ctx context.Context) (*BrowserContext, error) {
	return b.conn.targets().CreateBrowserContext(ctx)
}

// Close disconnects from the browser.
func (b *Browser) Close() error {
	return b.conn.Disconnect()
}

// Conn returns the browser's underlying Connection, for callers that need
// direct access to send/subscribe.
func (b *Browser) Conn() *Connection {
	return b.conn
}
