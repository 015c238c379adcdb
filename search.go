package zimlua

import (
	"github.com/Shopify/go-lua"

	"github.com/meigma/zimlua/engine"
)

const (
	searcherTypeName           = "zim.searcher"
	searchTypeName             = "zim.search"
	searchResultsTypeName      = "zim.search_results"
	suggestionSearcherTypeName = "zim.suggestion_searcher"
	suggestionSearchTypeName   = "zim.suggestion_search"
	suggestionResultsTypeName  = "zim.suggestion_results"
	suggestionItemTypeName     = "zim.suggestion_item"
)

// Full-text search

func checkSearcher(l *lua.State) engine.Searcher {
	return checkWrapped[engine.Searcher](l, 1, searcherTypeName, "searcher")
}

func (rt *Runtime) searcherMethods() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		{Name: "search", Function: rt.searcherSearch},
	}
}

// searcherSearch accepts either a pattern string or a query table with a
// pattern field.
func (rt *Runtime) searcherSearch(l *lua.State) int {
	s := checkSearcher(l)
	var q engine.Query
	switch {
	case l.IsTable(2):
		l.Field(2, "pattern")
		pattern, ok := l.ToString(-1)
		if !ok {
			lua.ArgumentError(l, 2, "query table needs a pattern string")
		}
		l.Pop(1)
		q.Pattern = pattern
	default:
		q.Pattern = lua.CheckString(l, 2)
	}
	search, err := s.Search(q)
	if err != nil {
		return raise(l, err)
	}
	pushWrapped(l, searchTypeName, search)
	return 1
}

func checkSearch(l *lua.State) engine.Search {
	return checkWrapped[engine.Search](l, 1, searchTypeName, "search")
}

func (rt *Runtime) searchMethods() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		{Name: "estimated_matches", Function: rt.searchEstimatedMatches},
		{Name: "results", Function: rt.searchResults},
	}
}

func (rt *Runtime) searchEstimatedMatches(l *lua.State) int {
	s := checkSearch(l)
	l.PushInteger(s.EstimatedMatches())
	return 1
}

func (rt *Runtime) searchResults(l *lua.State) int {
	s := checkSearch(l)
	start := lua.CheckInteger(l, 2)
	count := lua.CheckInteger(l, 3)
	set, err := s.Results(start, count)
	if err != nil {
		return raise(l, err)
	}
	pushWrapped(l, searchResultsTypeName, set)
	return 1
}

func checkSearchResults(l *lua.State) engine.SearchResultSet {
	return checkWrapped[engine.SearchResultSet](l, 1, searchResultsTypeName, "search results")
}

func (rt *Runtime) searchResultsMethods() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		{Name: "size", Function: rt.searchResultsSize},
		{Name: "iter", Function: rt.searchResultsIter},
	}
}

func (rt *Runtime) searchResultsSize(l *lua.State) int {
	set := checkSearchResults(l)
	l.PushInteger(set.Size())
	return 1
}

// searchResultsIter returns a Lua iterator over the result window. The window
// is materialized up front so an iterator the script abandons midway leaves
// nothing running, and ranking order is preserved exactly.
func (rt *Runtime) searchResultsIter(l *lua.State) int {
	set := checkSearchResults(l)
	var results []engine.SearchResult
	for r := range set.All() {
		results = append(results, r)
	}
	i := 0
	l.PushGoFunction(func(l *lua.State) int {
		if i >= len(results) {
			l.PushNil()
			return 1
		}
		pushSearchResult(l, results[i])
		i++
		return 1
	})
	return 1
}

func pushSearchResult(l *lua.State, r engine.SearchResult) {
	l.CreateTable(0, 4)
	l.PushString(r.Path)
	l.SetField(-2, "path")
	l.PushString(r.Title)
	l.SetField(-2, "title")
	l.PushString(r.Snippet)
	l.SetField(-2, "snippet")
	l.PushInteger(r.Score)
	l.SetField(-2, "score")
}

// Title suggestions

func checkSuggestionSearcher(l *lua.State) engine.SuggestionSearcher {
	return checkWrapped[engine.SuggestionSearcher](l, 1, suggestionSearcherTypeName, "suggestion searcher")
}

func (rt *Runtime) suggestionSearcherMethods() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		{Name: "suggest", Function: rt.suggestionSearcherSuggest},
	}
}

func (rt *Runtime) suggestionSearcherSuggest(l *lua.State) int {
	s := checkSuggestionSearcher(l)
	query := lua.CheckString(l, 2)
	search, err := s.Suggest(query)
	if err != nil {
		return raise(l, err)
	}
	pushWrapped(l, suggestionSearchTypeName, search)
	return 1
}

func checkSuggestionSearch(l *lua.State) engine.SuggestionSearch {
	return checkWrapped[engine.SuggestionSearch](l, 1, suggestionSearchTypeName, "suggestion search")
}

func (rt *Runtime) suggestionSearchMethods() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		{Name: "estimated_matches", Function: rt.suggestionSearchEstimatedMatches},
		{Name: "results", Function: rt.suggestionSearchResults},
	}
}

func (rt *Runtime) suggestionSearchEstimatedMatches(l *lua.State) int {
	s := checkSuggestionSearch(l)
	l.PushInteger(s.EstimatedMatches())
	return 1
}

func (rt *Runtime) suggestionSearchResults(l *lua.State) int {
	s := checkSuggestionSearch(l)
	start := lua.CheckInteger(l, 2)
	count := lua.CheckInteger(l, 3)
	set, err := s.Results(start, count)
	if err != nil {
		return raise(l, err)
	}
	pushWrapped(l, suggestionResultsTypeName, set)
	return 1
}

func checkSuggestionResults(l *lua.State) engine.SuggestionResultSet {
	return checkWrapped[engine.SuggestionResultSet](l, 1, suggestionResultsTypeName, "suggestion results")
}

func (rt *Runtime) suggestionResultsMethods() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		{Name: "size", Function: rt.suggestionResultsSize},
		{Name: "iter", Function: rt.suggestionResultsIter},
	}
}

func (rt *Runtime) suggestionResultsSize(l *lua.State) int {
	set := checkSuggestionResults(l)
	l.PushInteger(set.Size())
	return 1
}

func (rt *Runtime) suggestionResultsIter(l *lua.State) int {
	set := checkSuggestionResults(l)
	var items []engine.SuggestionItem
	for it := range set.All() {
		items = append(items, it)
	}
	i := 0
	l.PushGoFunction(func(l *lua.State) int {
		if i >= len(items) {
			l.PushNil()
			return 1
		}
		pushWrapped(l, suggestionItemTypeName, items[i])
		i++
		return 1
	})
	return 1
}

func checkSuggestionItem(l *lua.State) engine.SuggestionItem {
	return checkWrapped[engine.SuggestionItem](l, 1, suggestionItemTypeName, "suggestion item")
}

func (rt *Runtime) suggestionItemMethods() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		{Name: "title", Function: rt.suggestionItemTitle},
		{Name: "path", Function: rt.suggestionItemPath},
		{Name: "snippet", Function: rt.suggestionItemSnippet},
		{Name: "has_snippet", Function: rt.suggestionItemHasSnippet},
		{Name: "entry", Function: rt.suggestionItemEntry},
	}
}

func (rt *Runtime) suggestionItemTitle(l *lua.State) int {
	it := checkSuggestionItem(l)
	l.PushString(it.Title())
	return 1
}

func (rt *Runtime) suggestionItemPath(l *lua.State) int {
	it := checkSuggestionItem(l)
	l.PushString(it.Path())
	return 1
}

func (rt *Runtime) suggestionItemSnippet(l *lua.State) int {
	it := checkSuggestionItem(l)
	l.PushString(it.Snippet())
	return 1
}

func (rt *Runtime) suggestionItemHasSnippet(l *lua.State) int {
	it := checkSuggestionItem(l)
	l.PushBoolean(it.HasSnippet())
	return 1
}

func (rt *Runtime) suggestionItemEntry(l *lua.State) int {
	it := checkSuggestionItem(l)
	e, err := it.Entry()
	if err != nil {
		return raise(l, err)
	}
	pushEntry(l, e)
	return 1
}
