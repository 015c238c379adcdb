package engine

import "errors"

// Sentinel errors returned by engine implementations.
var (
	// ErrNotFound is returned when a path, title, or metadata key does not
	// resolve to an entry.
	ErrNotFound = errors.New("engine: not found")

	// ErrNoMainEntry is returned by MainEntry when the archive declares none.
	ErrNoMainEntry = errors.New("engine: no main entry")

	// ErrNotRedirect is returned when a redirect operation is applied to a
	// non-redirect entry.
	ErrNotRedirect = errors.New("engine: entry is not a redirect")

	// ErrIsRedirect is returned when an item is requested from a redirect
	// entry without following it.
	ErrIsRedirect = errors.New("engine: entry is a redirect")

	// ErrFinished is returned when a Creator is used after Finish.
	ErrFinished = errors.New("engine: creator already finished")
)
