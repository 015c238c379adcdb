package memengine

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/meigma/zimlua/engine"
)

// searcher matches a case-insensitive substring against each item's indexed
// text: custom index content when the item supplied it, otherwise the body
// of text items. Matches keep archive insertion order.
type searcher struct {
	a *Archive
}

var _ engine.Searcher = (*searcher)(nil)

func (s *searcher) Search(q engine.Query) (engine.Search, error) {
	pattern := strings.ToLower(q.Pattern)
	if pattern == "" {
		return nil, fmt.Errorf("memengine: search: empty pattern")
	}

	var results []engine.SearchResult
	for _, rec := range s.a.entries {
		text, ok := s.indexedText(rec)
		if !ok {
			continue
		}
		lower := strings.ToLower(text)
		pos := strings.Index(lower, pattern)
		if pos < 0 {
			continue
		}
		results = append(results, engine.SearchResult{
			Path:    rec.path,
			Title:   rec.title,
			Snippet: snippetAround(text, pos, len(pattern)),
			Score:   strings.Count(lower, pattern),
		})
	}
	return &search{results: results}, nil
}

func (s *searcher) indexedText(rec *entryRec) (string, bool) {
	if rec.redirect != "" {
		return "", false
	}
	if rec.hasIndexData {
		return rec.indexContent + " " + rec.indexKeyword, true
	}
	if !strings.HasPrefix(rec.mimetype, "text/") {
		return "", false
	}
	it := archiveItem{a: s.a, rec: rec}
	blob, err := it.Data()
	if err != nil {
		return "", false
	}
	return string(blob.Data()), true
}

// snippetAround clips a short window of text centered on the match.
func snippetAround(text string, pos, matchLen int) string {
	const margin = 30
	start := max(pos-margin, 0)
	end := min(pos+matchLen+margin, len(text))
	return text[start:end]
}

type search struct {
	results []engine.SearchResult
}

var _ engine.Search = (*search)(nil)

func (s *search) EstimatedMatches() int { return len(s.results) }

func (s *search) Results(start, count int) (engine.SearchResultSet, error) {
	window, err := clampWindow(s.results, start, count)
	if err != nil {
		return nil, err
	}
	return &searchResultSet{results: window}, nil
}

// window clamps a [start, start+count) slice to the available results.
func clampWindow[T any](results []T, start, count int) ([]T, error) {
	if start < 0 || count < 0 {
		return nil, fmt.Errorf("memengine: result window [%d, %d): negative bound", start, start+count)
	}
	if start > len(results) {
		start = len(results)
	}
	end := min(start+count, len(results))
	return results[start:end], nil
}

type searchResultSet struct {
	results []engine.SearchResult
}

var _ engine.SearchResultSet = (*searchResultSet)(nil)

func (s *searchResultSet) Size() int { return len(s.results) }

func (s *searchResultSet) All() iter.Seq[engine.SearchResult] {
	return slices.Values(s.results)
}

// suggestionSearcher matches a case-insensitive title prefix, in archive
// insertion order.
type suggestionSearcher struct {
	a *Archive
}

var _ engine.SuggestionSearcher = (*suggestionSearcher)(nil)

func (s *suggestionSearcher) Suggest(query string) (engine.SuggestionSearch, error) {
	prefix := strings.ToLower(query)
	var items []engine.SuggestionItem
	for _, rec := range s.a.entries {
		if rec.title == "" || !strings.HasPrefix(strings.ToLower(rec.title), prefix) {
			continue
		}
		items = append(items, &suggestionItem{a: s.a, rec: rec, matched: len(query)})
	}
	return &suggestionSearch{items: items}, nil
}

type suggestionSearch struct {
	items []engine.SuggestionItem
}

var _ engine.SuggestionSearch = (*suggestionSearch)(nil)

func (s *suggestionSearch) EstimatedMatches() int { return len(s.items) }

func (s *suggestionSearch) Results(start, count int) (engine.SuggestionResultSet, error) {
	window, err := clampWindow(s.items, start, count)
	if err != nil {
		return nil, err
	}
	return &suggestionResultSet{items: window}, nil
}

type suggestionResultSet struct {
	items []engine.SuggestionItem
}

var _ engine.SuggestionResultSet = (*suggestionResultSet)(nil)

func (s *suggestionResultSet) Size() int { return len(s.items) }

func (s *suggestionResultSet) All() iter.Seq[engine.SuggestionItem] {
	return slices.Values(s.items)
}

type suggestionItem struct {
	a       *Archive
	rec     *entryRec
	matched int
}

var _ engine.SuggestionItem = (*suggestionItem)(nil)

func (i *suggestionItem) Title() string { return i.rec.title }

func (i *suggestionItem) Path() string { return i.rec.path }

// Snippet highlights the matched prefix.
func (i *suggestionItem) Snippet() string {
	if !i.HasSnippet() {
		return ""
	}
	title := i.rec.title
	return "<b>" + title[:i.matched] + "</b>" + title[i.matched:]
}

func (i *suggestionItem) HasSnippet() bool {
	return i.matched > 0 && i.matched <= len(i.rec.title)
}

func (i *suggestionItem) Entry() (engine.Entry, error) {
	return i.a.EntryByPath(i.rec.path)
}
