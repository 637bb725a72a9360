package kb

import (
	"testing"

	cdpinput "github.com/chromatica-go/chromatica/cdp/input"
)

func TestEncodeLowercaseLetter(t *testing.T) {
	t.Parallel()
	events := Encode('a')
	if len(events) != 3 {
		t.Fatalf("want 3 events (down/char/up), got %d", len(events))
	}
	if events[0].Type != "keyDown" || events[1].Type != "char" || events[2].Type != "keyUp" {
		t.Fatalf("unexpected event sequence types: %s %s %s", events[0].Type, events[1].Type, events[2].Type)
	}
	if events[1].Text != "a" {
		t.Fatalf("want char text %q, got %q", "a", events[1].Text)
	}
	if events[0].Modifiers != 0 {
		t.Fatalf("lowercase letter should carry no modifiers, got %d", events[0].Modifiers)
	}
}

func TestEncodeUppercaseLetterCarriesShiftModifier(t *testing.T) {
	t.Parallel()
	events := Encode('A')
	if len(events) != 3 {
		t.Fatalf("want 3 events, got %d", len(events))
	}
	if events[0].Modifiers&cdpinput.ModifierShift == 0 {
		t.Fatal("uppercase letter should set the shift modifier")
	}
	if events[1].Text != "A" {
		t.Fatalf("want char text %q, got %q", "A", events[1].Text)
	}
}

func TestEncodeNewlineNormalizesToCarriageReturn(t *testing.T) {
	t.Parallel()
	got := Encode('\n')
	want := Encode('\r')
	if len(got) != len(want) {
		t.Fatalf("want %d events, got %d", len(want), len(got))
	}
	for i := range got {
		if got[i].Key != want[i].Key || got[i].Code != want[i].Code || got[i].Type != want[i].Type {
			t.Fatalf("event %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestEncodeUnidentifiedRuneFallsBack(t *testing.T) {
	t.Parallel()
	events := Encode('€')
	if len(events) != 3 {
		t.Fatalf("want 3 events for a printable unknown rune, got %d", len(events))
	}
	if events[0].Key != "Unidentified" {
		t.Fatalf("want key Unidentified, got %q", events[0].Key)
	}
	if events[1].Text != "€" {
		t.Fatalf("want char text %q, got %q", "€", events[1].Text)
	}
}

func TestEncodeUnidentifiedNonPrintableRuneHasNoCharEvent(t *testing.T) {
	t.Parallel()
	events := EncodeUnidentified('\x01')
	if len(events) != 2 {
		t.Fatalf("want keyDown/keyUp only for a non-printable rune, got %d events", len(events))
	}
	if events[0].Type != "keyDown" || events[1].Type != "keyUp" {
		t.Fatalf("unexpected types: %s %s", events[0].Type, events[1].Type)
	}
}

func TestEncodeDigit(t *testing.T) {
	t.Parallel()
	events := Encode('7')
	if len(events) != 3 {
		t.Fatalf("want 3 events, got %d", len(events))
	}
	if events[0].Code != "Digit7" {
		t.Fatalf("want code Digit7, got %q", events[0].Code)
	}
}
