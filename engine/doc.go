// Package engine declares the archive engine contract consumed by the
// zimlua bridge.
//
// The engine owns the archive container format, compression, full-text
// indexing, and search ranking. The bridge never implements any of that; it
// only shapes calls into these interfaces and results out of them. The
// [memengine] package provides an in-memory implementation for tests and
// embedding without a native engine.
//
// Reader-side values returned by an engine (entries, items, search results)
// are always valid: an engine never hands out a zero value. The bridge wraps
// them behind default-constructible handles before exposing them to Lua.
//
// [memengine]: https://pkg.go.dev/github.com/meigma/zimlua/memengine
package engine
