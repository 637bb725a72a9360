// Package input holds the wire param shapes for the CDP Input domain,
// grounded on frame_inner.rs's click/type dispatch and on the subset of
// github.com/chromedp/cdproto/input that input.go exercises.
package input

// Command method names.
const (
	CommandDispatchMouseEvent = "Input.dispatchMouseEvent"
	CommandDispatchKeyEvent   = "Input.dispatchKeyEvent"
	CommandDispatchTouchEvent = "Input.dispatchTouchEvent"
)

// MouseButton is the button field of a mouse event.
type MouseButton string

// Mouse buttons.
const (
	ButtonNone  MouseButton = "none"
	ButtonLeft  MouseButton = "left"
	ButtonMiddle MouseButton = "middle"
	ButtonRight MouseButton = "right"
)

// DispatchMouseEventParams is Input.dispatchMouseEvent's parameters. Type is
// one of "mousePressed", "mouseReleased", "mouseMoved", "mouseWheel".
type DispatchMouseEventParams struct {
	Type       string      `json:"type"`
	X          float64     `json:"x"`
	Y          float64     `json:"y"`
	Button     MouseButton `json:"button,omitempty"`
	ClickCount int         `json:"clickCount,omitempty"`
}

// Click builds the moved/pressed/released sequence a single click dispatches,
// matching the real browser's own move-then-press-then-release sequence for
// a synthetic click.
func Click(x, y float64) []*DispatchMouseEventParams {
	return []*DispatchMouseEventParams{
		{Type: "mouseMoved", X: x, Y: y},
		{Type: "mousePressed", X: x, Y: y, Button: ButtonLeft, ClickCount: 1},
		{Type: "mouseReleased", X: x, Y: y, Button: ButtonLeft, ClickCount: 1},
	}
}

// Modifier bits for DispatchKeyEventParams.Modifiers.
const (
	ModifierAlt   int64 = 1
	ModifierCtrl  int64 = 2
	ModifierMeta  int64 = 4
	ModifierShift int64 = 8
)

// DispatchKeyEventParams is Input.dispatchKeyEvent's parameters. Type is one
// of "keyDown", "keyUp", "char", "rawKeyDown".
type DispatchKeyEventParams struct {
	Type                  string `json:"type"`
	Modifiers             int64  `json:"modifiers,omitempty"`
	Text                  string `json:"text,omitempty"`
	UnmodifiedText        string `json:"unmodifiedText,omitempty"`
	Key                   string `json:"key,omitempty"`
	Code                  string `json:"code,omitempty"`
	WindowsVirtualKeyCode int64  `json:"windowsVirtualKeyCode,omitempty"`
	NativeVirtualKeyCode  int64  `json:"nativeVirtualKeyCode,omitempty"`
	AutoRepeat            bool   `json:"autoRepeat,omitempty"`
	IsKeypad              bool   `json:"isKeypad,omitempty"`
	IsSystemKey           bool   `json:"isSystemKey,omitempty"`
}

// TouchPoint is one finger in a dispatchTouchEvent call.
type TouchPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DispatchTouchEventParams is Input.dispatchTouchEvent's parameters.
type DispatchTouchEventParams struct {
	Type        string       `json:"type"`
	TouchPoints []TouchPoint `json:"touchPoints"`
}
