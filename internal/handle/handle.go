// Package handle wraps engine values behind default-constructible handles.
//
// Engine values are always valid: there is no meaningful zero state for an
// entry or an item. Lua userdata, on the other hand, needs a payload that can
// exist before a value is assigned and can be stored and copied freely. A
// Handle bridges the two by holding the value behind a heap pointer: the zero
// Handle is empty, Wrap produces a full one.
package handle

// Handle holds zero or one wrapped value of type T.
//
// The zero Handle is empty. Accessing the value of an empty Handle is a
// programming error; callers are expected to only unwrap handles produced
// from successful engine calls.
type Handle[T any] struct {
	p *T
}

// Wrap heap-allocates a handle around v.
func Wrap[T any](v T) Handle[T] {
	return Handle[T]{p: &v}
}

// Empty returns an empty placeholder handle.
func Empty[T any]() Handle[T] {
	return Handle[T]{}
}

// Ok reports whether the handle holds a value.
func (h Handle[T]) Ok() bool {
	return h.p != nil
}

// Get returns the wrapped value. Panics when the handle is empty.
func (h Handle[T]) Get() T {
	if h.p == nil {
		panic("handle: empty")
	}
	return *h.p
}
