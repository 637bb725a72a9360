package chromatica

import "sync/atomic"

// Weak holds a non-owning reference to a T, mirroring the std::sync::Weak
// backreferences frame_inner.rs, browser_context.rs and element.go's
// original all use to avoid the owner/owned reference cycle between an
// Element and its FrameInner, a FrameInner and its Target, and a
// BrowserContext and its Connection.
//
// Go has no refcounted Arc/Weak pair, so Weak wraps a pointer to a shared
// cell: every copy of a Weak[T] (assigning it into a struct field, handing
// it back from a constructor) still observes the same cell, so the owner
// that issued it can call clear (from its own shutdown path) once the
// referent is gone, and every outstanding copy starts reporting
// ErrHandleInvalidated from Get instead of returning a dangling pointer.
type Weak[T any] struct {
	p *atomic.Pointer[T]
}

func newWeak[T any](v *T) Weak[T] {
	p := new(atomic.Pointer[T])
	p.Store(v)
	return Weak[T]{p: p}
}

// Get returns the referent, or ErrHandleInvalidated if it has been cleared.
func (w Weak[T]) Get() (*T, error) {
	v := w.p.Load()
	if v == nil {
		return nil, ErrHandleInvalidated
	}
	return v, nil
}

// clear invalidates the reference; subsequent Get calls, on this Weak or any
// copy of it, return ErrHandleInvalidated.
func (w Weak[T]) clear() {
	w.p.Store(nil)
}
