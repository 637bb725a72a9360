package chromatica

import "testing"

func TestWeakGetReturnsReferentUntilCleared(t *testing.T) {
	t.Parallel()
	type thing struct{ n int }
	v := &thing{n: 42}
	w := newWeak(v)

	got, err := w.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != v {
		t.Fatalf("got %p, want %p", got, v)
	}

	w.clear()
	if _, err := w.Get(); err != ErrHandleInvalidated {
		t.Fatalf("Get after clear: got %v, want ErrHandleInvalidated", err)
	}
}

func TestWeakClearIsIdempotent(t *testing.T) {
	t.Parallel()
	type thing struct{ n int }
	w := newWeak(&thing{n: 1})
	w.clear()
	w.clear()
	if _, err := w.Get(); err != ErrHandleInvalidated {
		t.Fatalf("Get after double clear: got %v, want ErrHandleInvalidated", err)
	}
}
