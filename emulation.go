package chromatica

import (
	"context"
	"sync"

	"github.com/chromatica-go/chromatica/cdp"
	cdpemulation "github.com/chromatica-go/chromatica/cdp/emulation"
	"github.com/chromatica-go/chromatica/internal/device"
)

// EmulationManager stores the target's current user-agent and viewport
// override and replays it on demand, grounded on device/device.go's preset
// table and device/types.go's Device/Info shapes.
type EmulationManager struct {
	conn      *Connection
	sessionID cdp.SessionID

	mu        sync.Mutex
	userAgent string
	metrics   *cdpemulation.SetDeviceMetricsOverrideParams
	sessions  []cdp.SessionID
}

func newEmulationManager(conn *Connection, sessionID cdp.SessionID) *EmulationManager {
	return &EmulationManager{conn: conn, sessionID: sessionID, sessions: []cdp.SessionID{sessionID}}
}

// addSession registers an additional session sharing this manager (an
// iframe target attached under the same top-level page), replaying the
// device metrics override and user-agent string already established on it.
// The accept-language and platform passed to SetUserAgent are not replayed.
func (e *EmulationManager) addSession(ctx context.Context, sessionID cdp.SessionID) {
	e.mu.Lock()
	e.sessions = append(e.sessions, sessionID)
	userAgent := e.userAgent
	metrics := e.metrics
	e.mu.Unlock()

	if metrics != nil {
		_ = e.conn.send(ctx, cdpemulation.CommandSetDeviceMetricsOverride, string(sessionID), mustMarshal(metrics), nil)
	}
	if userAgent != "" {
		_ = e.conn.send(ctx, cdpemulation.CommandSetUserAgentOverride, string(sessionID),
			mustMarshal(&cdpemulation.SetUserAgentOverrideParams{UserAgent: userAgent}), nil)
	}
}

// SetUserAgent overrides the reported user agent string, across every
// session sharing this manager.
func (e *EmulationManager) SetUserAgent(ctx context.Context, userAgent, acceptLanguage, platform string) error {
	e.mu.Lock()
	e.userAgent = userAgent
	sessions := append([]cdp.SessionID(nil), e.sessions...)
	e.mu.Unlock()
	for _, sid := range sessions {
		if err := e.conn.send(ctx, cdpemulation.CommandSetUserAgentOverride, string(sid),
			mustMarshal(&cdpemulation.SetUserAgentOverrideParams{UserAgent: userAgent, AcceptLanguage: acceptLanguage, Platform: platform}), nil); err != nil {
			return err
		}
	}
	return nil
}

// Emulate applies a named device preset's viewport metrics and user agent,
// matching device/device.go's Reset/Device emulation flow.
func (e *EmulationManager) Emulate(ctx context.Context, name string) error {
	d, ok := device.Lookup(name)
	if !ok {
		return ErrInvalidArgument
	}

	metrics := &cdpemulation.SetDeviceMetricsOverrideParams{
		Width:             d.Width,
		Height:            d.Height,
		DeviceScaleFactor: d.Scale,
		Mobile:            d.Mobile,
	}
	if d.Landscape {
		metrics.ScreenOrientation = &cdpemulation.ScreenOrientation{Type: "landscapePrimary", Angle: 90}
	} else {
		metrics.ScreenOrientation = &cdpemulation.ScreenOrientation{Type: "portraitPrimary", Angle: 0}
	}

	e.mu.Lock()
	e.metrics = metrics
	e.userAgent = d.UserAgent
	sessions := append([]cdp.SessionID(nil), e.sessions...)
	e.mu.Unlock()

	for _, sid := range sessions {
		if err := e.conn.send(ctx, cdpemulation.CommandSetDeviceMetricsOverride, string(sid), mustMarshal(metrics), nil); err != nil {
			return err
		}
		if err := e.conn.send(ctx, cdpemulation.CommandSetTouchEmulationEnabled, string(sid),
			mustMarshal(&cdpemulation.SetTouchEmulationEnabledParams{Enabled: d.Touch}), nil); err != nil {
			return err
		}
		if err := e.conn.send(ctx, cdpemulation.CommandSetUserAgentOverride, string(sid),
			mustMarshal(&cdpemulation.SetUserAgentOverrideParams{UserAgent: d.UserAgent}), nil); err != nil {
			return err
		}
	}
	return nil
}
