package zimlua

import "github.com/Shopify/go-lua"

// noRef marks a released or never-bound object. Reference slots start at 1.
const noRef = 0

// Object owns exactly one pinned reference to a Lua value.
//
// The reference is held in the runtime's reference table from bind until
// Close, which is the single extra reference the bridge accounts for on the
// object. Close releases the slot under the exclusivity lock and is a no-op
// on an already-released handle. Objects must not be shared: a second
// consumer needs its own bind.
type Object struct {
	rt  *Runtime
	ref int
}

// bindObject pins the Lua value at idx. Lock must be held.
func (rt *Runtime) bindObject(l *lua.State, idx int) (*Object, error) {
	if rt == nil || rt.state == nil {
		return nil, ErrRuntimeNotReady
	}
	if l.IsNoneOrNil(idx) {
		return nil, ErrUnboundObject
	}
	return &Object{rt: rt, ref: rt.acquireRef(l, idx)}, nil
}

// Close releases the pinned reference. Safe to call more than once; every
// call after the first is a no-op. Must not be called while the calling
// goroutine already holds the runtime lock.
func (o *Object) Close() error {
	if o == nil || o.ref == noRef {
		return nil
	}
	rt := o.rt
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.releaseRef(rt.state, o.ref)
	o.ref = noRef
	return nil
}

// closeLocked releases the pinned reference with the lock already held.
func (o *Object) closeLocked() {
	if o == nil || o.ref == noRef {
		return
	}
	o.rt.releaseRef(o.rt.state, o.ref)
	o.ref = noRef
}
