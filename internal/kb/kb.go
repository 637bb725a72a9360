// Package kb encodes runes into CDP Input.dispatchKeyEvent sequences,
// adapted from chromedp's generated kb package (kb/gen.go's Encode/
// EncodeUnidentified) but hand-curated for the ASCII range instead of
// generated from the Chromium keyboard-code tables, since that generation
// step depends on fetching and parsing Chromium source files at build time.
package kb

import (
	"runtime"
	"unicode"

	cdpinput "github.com/chromatica-go/chromatica/cdp/input"
)

// Key is a single entry of DOM key/code/scan-code data for a rune.
type Key struct {
	Key        string
	Code       string
	Text       string
	Unmodified string
	Native     int64
	Windows    int64
	Shift      bool
	Print      bool
}

// Keys maps \b, \t, \r, space, the ASCII letters and digits, and the
// unshifted punctuation ,.;'-=/`[]\ to their DOM key data, the subset of
// kb/gen.go's generated table that typeTextBackendNode exercises in
// practice; other runes are not in the map.
var Keys = map[rune]*Key{
	'\b': {"Backspace", "Backspace", "", "", 8, 8, false, false},
	'\t': {"Tab", "Tab", "", "", 9, 9, false, false},
	'\r': {"Enter", "Enter", "\r", "\r", 13, 13, false, true},
	' ':  {"Space", "Space", " ", " ", 32, 32, false, true},
}

func init() {
	for r := rune('a'); r <= 'z'; r++ {
		Keys[r] = &Key{Key: string(r), Code: "Key" + string(unicode.ToUpper(r)), Text: string(r), Unmodified: string(r), Native: int64(r), Windows: int64(r), Print: true}
	}
	for r := rune('A'); r <= 'Z'; r++ {
		Keys[r] = &Key{Key: string(r), Code: "Key" + string(r), Text: string(r), Unmodified: string(unicode.ToLower(r)), Native: int64(r), Windows: int64(r), Shift: true, Print: true}
	}
	for r := rune('0'); r <= '9'; r++ {
		Keys[r] = &Key{Key: string(r), Code: "Digit" + string(r), Text: string(r), Unmodified: string(r), Native: int64(r), Windows: int64(r), Print: true}
	}
	for _, p := range []rune(",.;'-=/`[]\\") {
		Keys[p] = &Key{Key: string(p), Code: "Punct", Text: string(p), Unmodified: string(p), Native: int64(p), Windows: int64(p), Print: true}
	}
}

// EncodeUnidentified encodes a keyDown/char/keyUp sequence for a rune with
// no known DOM key mapping.
func EncodeUnidentified(r rune) []*cdpinput.DispatchKeyEventParams {
	down := cdpinput.DispatchKeyEventParams{Key: "Unidentified", Type: "keyDown"}
	up := down
	up.Type = "keyUp"
	if unicode.IsPrint(r) {
		char := down
		char.Type = "char"
		char.Text = string(r)
		char.UnmodifiedText = string(r)
		return []*cdpinput.DispatchKeyEventParams{&down, &char, &up}
	}
	return []*cdpinput.DispatchKeyEventParams{&down, &up}
}

// Encode encodes a keyDown/char/keyUp sequence for r, matching kb/gen.go's
// Encode: \n is normalized to \r, unknown runes fall back to
// EncodeUnidentified, and the native virtual key code for the generated char
// event carries the raw rune's scan code rather than the unshifted keycode.
func Encode(r rune) []*cdpinput.DispatchKeyEventParams {
	if r == '\n' {
		r = '\r'
	}
	v, ok := Keys[r]
	if !ok {
		return EncodeUnidentified(r)
	}

	down := cdpinput.DispatchKeyEventParams{
		Key:                   v.Key,
		Code:                  v.Code,
		NativeVirtualKeyCode:  v.Native,
		WindowsVirtualKeyCode: v.Windows,
	}
	if runtime.GOOS == "darwin" {
		down.NativeVirtualKeyCode = 0
	}
	if v.Shift {
		down.Modifiers |= cdpinput.ModifierShift
	}
	down.Type = "keyDown"
	up := down
	up.Type = "keyUp"

	if v.Print {
		char := down
		char.Type = "char"
		char.Text = v.Text
		char.UnmodifiedText = v.Unmodified
		char.NativeVirtualKeyCode = int64(r)
		char.WindowsVirtualKeyCode = int64(r)
		return []*cdpinput.DispatchKeyEventParams{&down, &char, &up}
	}
	return []*cdpinput.DispatchKeyEventParams{&down, &up}
}
