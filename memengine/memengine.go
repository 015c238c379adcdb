// Package memengine is an in-memory archive engine.
//
// It implements the engine interfaces end to end: the creator pulls item
// content through the progressive feed protocol on worker goroutines,
// compresses clusters with zstd when requested, and the finished archive is
// registered under its path for OpenArchive. Search is a case-insensitive
// substring match over indexed text, suggestions are title prefix matches;
// both preserve insertion order.
//
// It exists so hosts and tests can exercise the full bridge without a native
// archive library. It is not an archive file format.
package memengine

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/meigma/zimlua/engine"
)

// Engine is an in-memory engine.Engine. Archives written by its creators are
// kept in memory and reopenable by path.
type Engine struct {
	mu       sync.Mutex
	archives map[string]*Archive
	logger   *slog.Logger
}

var _ engine.Engine = (*Engine)(nil)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for engine events.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New returns an empty in-memory engine.
func New(opts ...Option) *Engine {
	e := &Engine{archives: make(map[string]*Archive)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// log returns the logger, falling back to a discard logger if nil.
func (e *Engine) log() *slog.Logger {
	if e.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.logger
}

// OpenArchive returns the archive previously finished under path.
func (e *Engine) OpenArchive(path string) (engine.Archive, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.archives[path]
	if !ok {
		return nil, fmt.Errorf("memengine: open %q: %w", path, engine.ErrNotFound)
	}
	return a, nil
}

// NewSearcher builds a full-text searcher over an archive created by this
// engine.
func (e *Engine) NewSearcher(a engine.Archive) (engine.Searcher, error) {
	ma, ok := a.(*Archive)
	if !ok {
		return nil, fmt.Errorf("memengine: archive %T is not a memengine archive", a)
	}
	return &searcher{a: ma}, nil
}

// NewSuggestionSearcher builds a title-suggestion searcher over an archive
// created by this engine.
func (e *Engine) NewSuggestionSearcher(a engine.Archive) (engine.SuggestionSearcher, error) {
	ma, ok := a.(*Archive)
	if !ok {
		return nil, fmt.Errorf("memengine: archive %T is not a memengine archive", a)
	}
	return &suggestionSearcher{a: ma}, nil
}

// register stores a finished archive under its path, replacing any previous
// archive at that path.
func (e *Engine) register(a *Archive) {
	e.mu.Lock()
	e.archives[a.filename] = a
	e.mu.Unlock()
	e.log().Debug("archive registered", "path", a.filename, "entries", len(a.entries))
}
