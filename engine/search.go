package engine

import "iter"

// Query describes a full-text search.
type Query struct {
	Pattern string
}

// Searcher runs full-text searches over one archive.
type Searcher interface {
	Search(q Query) (Search, error)
}

// Search is one executed query.
type Search interface {
	EstimatedMatches() int

	// Results returns a window of results starting at start (0-based).
	Results(start, count int) (SearchResultSet, error)
}

// SearchResultSet is an ordered window of search results.
//
// All yields results in engine ranking order; the bridge must not reorder or
// skip them.
type SearchResultSet interface {
	Size() int
	All() iter.Seq[SearchResult]
}

// SearchResult is one full-text match.
type SearchResult struct {
	Path    string
	Title   string
	Snippet string
	Score   int
}

// SuggestionSearcher runs title suggestion searches over one archive.
type SuggestionSearcher interface {
	Suggest(query string) (SuggestionSearch, error)
}

// SuggestionSearch is one executed suggestion query.
type SuggestionSearch interface {
	EstimatedMatches() int
	Results(start, count int) (SuggestionResultSet, error)
}

// SuggestionResultSet is an ordered window of suggestions.
type SuggestionResultSet interface {
	Size() int
	All() iter.Seq[SuggestionItem]
}

// SuggestionItem is one suggestion match.
type SuggestionItem interface {
	Title() string
	Path() string
	Snippet() string
	HasSnippet() bool

	// Entry resolves the suggestion back to its archive entry.
	Entry() (Entry, error)
}
