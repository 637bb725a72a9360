package chromatica

import (
	"bytes"
	"context"
	"io"
	"net"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/mailru/easyjson/jlexer"
	"github.com/mailru/easyjson/jwriter"
)

var (
	// DefaultReadBufferSize is the default maximum read buffer size.
	DefaultReadBufferSize = 25 * 1024 * 1024

	// DefaultWriteBufferSize is the default maximum write buffer size.
	DefaultWriteBufferSize = 10 * 1024 * 1024
)

// wireConn wraps a gorilla/websocket.Conn connection and reuses the
// easyjson lexer/writer pair across reads and writes.
type wireConn struct {
	*websocket.Conn

	// buf helps us reuse space when reading from the websocket.
	buf bytes.Buffer

	// reuse the easyjson structs to avoid allocs per read/write.
	lexer  jlexer.Lexer
	writer jwriter.Writer

	dbgf LogFunc
}

// dialConnOption configures a wireConn at dial time.
type dialConnOption func(*wireConn)

// withConnDebugf sets the protocol logger used for raw frame tracing.
func withConnDebugf(f LogFunc) dialConnOption {
	return func(c *wireConn) { c.dbgf = f }
}

// dialContext dials urlstr using gorilla/websocket.
func dialContext(ctx context.Context, urlstr string, opts ...dialConnOption) (*wireConn, error) {
	d := &websocket.Dialer{
		ReadBufferSize:  DefaultReadBufferSize,
		WriteBufferSize: DefaultWriteBufferSize,
	}

	conn, _, err := d.DialContext(ctx, urlstr, nil)
	if err != nil {
		return nil, err
	}

	c := &wireConn{Conn: conn}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *wireConn) bufReadAll(r io.Reader) ([]byte, error) {
	c.buf.Reset()
	_, err := c.buf.ReadFrom(r)
	return c.buf.Bytes(), err
}

// readMessage reads and decodes the next frame off the wire into msg.
func (c *wireConn) readMessage(msg *Message) error {
	typ, r, err := c.NextReader()
	if err != nil {
		return err
	}
	if typ != websocket.TextMessage {
		return ErrInvalidWebsocketMessage
	}

	buf, err := c.bufReadAll(r)
	if err != nil {
		return err
	}
	if c.dbgf != nil {
		c.dbgf("<- %s", buf)
	}

	c.lexer = jlexer.Lexer{Data: buf}
	msg.UnmarshalEasyJSON(&c.lexer)
	return c.lexer.Error()
}

// writeMessage encodes msg and writes it to the wire.
func (c *wireConn) writeMessage(msg *Message) error {
	w, err := c.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}
	defer w.Close()

	c.writer = jwriter.Writer{}
	msg.MarshalEasyJSON(&c.writer)
	if err := c.writer.Error; err != nil {
		return err
	}

	// dbgf needs the bytes after writing them, and BuildBytes consumes the
	// writer's buffer, so only one of BuildBytes/DumpTo runs per call.
	if c.dbgf != nil {
		buf, _ := c.writer.BuildBytes()
		c.dbgf("-> %s", buf)
		if _, err := w.Write(buf); err != nil {
			return err
		}
	} else if _, err := c.writer.DumpTo(w); err != nil {
		return err
	}
	return w.Close()
}

// forceIP forces the host component in urlstr to be an IP address.
//
// Since Chrome 66+, Chrome DevTools Protocol clients connecting to a browser
// must send the "Host:" header as either an IP address, or "localhost".
func forceIP(urlstr string) string {
	if i := strings.Index(urlstr, "://"); i != -1 {
		scheme := urlstr[:i+3]
		host, port, path := urlstr[len(scheme):], "", ""
		if i := strings.Index(host, "/"); i != -1 {
			host, path = host[:i], host[i:]
		}
		if i := strings.Index(host, ":"); i != -1 {
			host, port = host[:i], host[i:]
		}
		if addr, err := net.ResolveIPAddr("ip", host); err == nil {
			urlstr = scheme + addr.IP.String() + port + path
		}
	}
	return urlstr
}
