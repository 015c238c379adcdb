package zimlua

import (
	"log/slog"
	"sync"

	"github.com/Shopify/go-lua"

	"github.com/meigma/zimlua/engine"
)

// refsKey locates the bridge's object reference table in the Lua registry.
const refsKey = "zimlua.refs"

// Runtime binds one Lua state to one archive engine.
//
// Every touch of the Lua state goes through the runtime's exclusivity lock:
// host scripts run under it via [Runtime.Do], and engine-side callbacks
// acquire it per dispatched call. The lock is not reentrant; bridge bindings
// that enter the engine's write path release it first (see doc.go).
type Runtime struct {
	mu     sync.Mutex
	state  *lua.State
	eng    engine.Engine
	comp   CompressionTable
	module string
	logger *slog.Logger
}

// log returns the logger, falling back to a discard logger if nil.
func (rt *Runtime) log() *slog.Logger {
	if rt.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return rt.logger
}

// Do runs fn against the Lua state under the exclusivity lock.
//
// All host-side Lua execution must go through Do (or [Runtime.DoString]);
// running the state directly would race with engine callback dispatch.
func (rt *Runtime) Do(fn func(l *lua.State) error) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return fn(rt.state)
}

// DoString compiles and runs a Lua chunk under the exclusivity lock.
func (rt *Runtime) DoString(src string) error {
	return rt.Do(func(l *lua.State) error {
		return lua.DoString(l, src)
	})
}

// engineCall releases the exclusivity lock around a call into the engine so
// that engine worker threads can dispatch item callbacks meanwhile.
//
// Must be called with the lock held (i.e. from a binding or from within Do).
func (rt *Runtime) engineCall(fn func() error) error {
	rt.mu.Unlock()
	defer rt.mu.Lock()
	return fn()
}

// Object reference table
//
// Bound Lua objects are pinned in a registry-held table using the classic
// luaL_ref freelist scheme: slot 0 holds the head of the freelist, freed
// slots store the next free index. Each bound object occupies exactly one
// slot, which is the bridge's "one extra reference" on the object.

func (rt *Runtime) initRefs(l *lua.State) {
	l.NewTable()
	l.PushInteger(0)
	l.RawSetInt(-2, 0)
	l.SetField(lua.RegistryIndex, refsKey)
}

// acquireRef pins the value at idx and returns its slot. Lock must be held.
func (rt *Runtime) acquireRef(l *lua.State, idx int) int {
	idx = l.AbsIndex(idx)
	l.Field(lua.RegistryIndex, refsKey)
	l.RawGetInt(-1, 0)
	free, _ := l.ToInteger(-1)
	l.Pop(1)

	var ref int
	if free != 0 {
		ref = free
		l.RawGetInt(-1, ref)
		next, _ := l.ToInteger(-1)
		l.Pop(1)
		l.PushInteger(next)
		l.RawSetInt(-2, 0)
	} else {
		ref = l.RawLength(-1) + 1
	}

	l.PushValue(idx)
	l.RawSetInt(-2, ref)
	l.Pop(1)
	return ref
}

// releaseRef frees a slot, returning it to the freelist. Lock must be held.
func (rt *Runtime) releaseRef(l *lua.State, ref int) {
	l.Field(lua.RegistryIndex, refsKey)
	l.RawGetInt(-1, 0)
	free, _ := l.ToInteger(-1)
	l.Pop(1)

	l.PushInteger(free)
	l.RawSetInt(-2, ref)
	l.PushInteger(ref)
	l.RawSetInt(-2, 0)
	l.Pop(1)
}

// pushRef pushes the pinned value for a slot. Lock must be held.
func (rt *Runtime) pushRef(l *lua.State, ref int) {
	l.Field(lua.RegistryIndex, refsKey)
	l.RawGetInt(-1, ref)
	l.Remove(-2)
}

// refTableLength returns the raw length of the reference table, used by
// tests to assert that acquire/release round-trips do not grow it.
func (rt *Runtime) refTableLength(l *lua.State) int {
	l.Field(lua.RegistryIndex, refsKey)
	n := l.RawLength(-1)
	l.Pop(1)
	return n
}
