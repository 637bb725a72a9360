package chromatica

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Dial connects to the browser's DevTools endpoint at urlstr, which may
// either be a full WebSocket debugger URL (containing "/devtools/browser/")
// or a bare "http://host:port/" endpoint, in which case the actual debugger
// URL is discovered by querying "/json/version", matching the endpoint
// Chrome (and chromium-derived browsers) serve alongside the WebSocket.
func Dial(ctx context.Context, urlstr string, opts ...Option) (*Connection, error) {
	wsURL, err := resolveDebuggerURL(ctx, urlstr)
	if err != nil {
		return nil, err
	}
	return newConnection(ctx, wsURL, opts...)
}

// resolveDebuggerURL normalizes urlstr into a dialable WebSocket debugger
// URL, resolving the host to an IP literal along the way (Chrome 66+
// requires the Host header on a DevTools connection be an IP or
// "localhost").
func resolveDebuggerURL(ctx context.Context, urlstr string) (string, error) {
	lctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	if strings.Contains(urlstr, "/devtools/browser/") {
		return forceIPResolved(lctx, urlstr)
	}

	u, err := url.Parse(urlstr)
	if err != nil {
		return "", err
	}
	u.Scheme = "http"
	host, port, err := net.SplitHostPort(u.Host)
	if err != nil {
		return "", err
	}
	host, err = resolveHost(lctx, host)
	if err != nil {
		return "", err
	}
	u.Host = net.JoinHostPort(host, port)
	u.Path = "/json/version"

	req, err := http.NewRequestWithContext(lctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var result struct {
		WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if result.WebSocketDebuggerURL == "" {
		return "", ErrNotAvailable
	}
	return result.WebSocketDebuggerURL, nil
}

// forceIPResolved is forceIP with proper hostname resolution (as opposed to
// the plain net.ResolveIPAddr lookup conn.go's forceIP performs on an
// already-built WebSocket URL).
func forceIPResolved(ctx context.Context, urlstr string) (string, error) {
	u, err := url.Parse(urlstr)
	if err != nil {
		return "", err
	}
	host, port, err := net.SplitHostPort(u.Host)
	if err != nil {
		return "", err
	}
	host, err = resolveHost(ctx, host)
	if err != nil {
		return "", err
	}
	u.Host = net.JoinHostPort(host, port)
	return u.String(), nil
}

// resolveHost resolves host to an IP address, returning it unchanged if it
// already is one or is "localhost".
func resolveHost(ctx context.Context, host string) (string, error) {
	if host == "localhost" {
		return host, nil
	}
	if ip := net.ParseIP(host); ip != nil {
		return host, nil
	}
	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return "", err
	}
	return addrs[0].IP.String(), nil
}
