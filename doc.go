// Package zimlua bridges an embedded Lua runtime and a ZIM-style archive
// engine.
//
// The bridge works in both directions. On the write path, Lua objects that
// implement the item contract (get_path, get_title, get_mimetype,
// get_contentprovider, get_hints, and optionally get_indexdata) are adapted
// into the engine's polymorphic writer interfaces, so a Lua script can feed
// articles into an archive creator. On the read path, engine values
// (archives, entries, items, search results) are exposed to Lua as userdata
// with forwarding methods.
//
// # Quick Start
//
// Install the bridge into a Lua state and run a script:
//
//	l := lua.NewState()
//	lua.OpenLibraries(l)
//	rt, err := zimlua.Install(l, eng)
//	if err != nil {
//	    return err
//	}
//	err = rt.Do(func(l *lua.State) error {
//	    return lua.DoString(l, `
//	        local a = zim.open("wiki.zim")
//	        print(a:entry_by_path("home.html"):title())
//	    `)
//	})
//
// # Concurrency
//
// All access to the Lua state is serialized by the runtime's exclusivity
// lock. Host code runs scripts through [Runtime.Do], which holds the lock;
// bridge bindings release it for the duration of every call into the engine's
// writer, so engine worker threads can dispatch item callbacks back into Lua
// without deadlocking. The lock is never held across a call into the engine's
// write path.
//
// # Errors
//
// Errors raised by Lua item methods cross the boundary as [*CallError]
// carrying the Lua error message unmodified. [ErrUnboundObject] and
// [ErrRuntimeNotReady] indicate bridge lifetime bugs and missing
// initialization respectively; neither is retryable.
package zimlua
