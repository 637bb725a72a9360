package chromatica

import (
	"context"

	"github.com/chromatica-go/chromatica/cdp"
)

// BrowserContext is an incognito-like isolated container: every target
// created inside it shares no cookies or storage with targets in another
// context. Holds only a weak reference back to its Connection, mirroring
// browser_context.rs's Weak<Connection> field, so a context outliving its
// connection's shutdown reports ErrHandleInvalidated rather than operating
// on a dead transport.
type BrowserContext struct {
	id   cdp.BrowserContextID
	conn Weak[Connection]
}

func newBrowserContext(conn *Connection, id cdp.BrowserContextID) *BrowserContext {
	return &BrowserContext{id: id, conn: newWeak(conn)}
}

// ID returns the browser context's identifier.
func (b *BrowserContext) ID() cdp.BrowserContextID { return b.id }

// NewTarget opens a new page target inside this context.
func (b *BrowserContext) NewTarget(ctx context.Context) (*Target, error) {
	conn, err := b.conn.Get()
	if err != nil {
		return nil, err
	}
	return conn.targets().CreateTarget(ctx, b.id)
}

// Dispose tears down this context and every target inside it.
func (b *BrowserContext) Dispose(ctx context.Context) error {
	conn, err := b.conn.Get()
	if err != nil {
		return err
	}
	return conn.targets().DisposeBrowserContext(ctx, b.id)
}
