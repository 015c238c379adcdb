package memengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/zimlua/engine"
)

func searchFixture(t *testing.T) (*Engine, engine.Archive) {
	t.Helper()
	e := New()
	a := buildArchive(t, e, "fixture.zim", engine.CreatorConfig{Indexing: true, IndexLanguage: "eng"},
		&fakeItem{path: "fox", title: "Fox", mimetype: "text/html", content: "the quick brown Fox jumps"},
		&fakeItem{path: "dog", title: "Dog", mimetype: "text/html", content: "the lazy dog sleeps"},
		&fakeItem{path: "both", title: "Both", mimetype: "text/html", content: "fox meets dog, fox wins"},
		&fakeItem{path: "img", title: "Fox photo", mimetype: "image/png", content: "fox-bytes-not-text"},
	)
	return e, a
}

func TestSearchSubstring(t *testing.T) {
	t.Parallel()
	e, a := searchFixture(t)

	s, err := e.NewSearcher(a)
	require.NoError(t, err)

	search, err := s.Search(engine.Query{Pattern: "fox"})
	require.NoError(t, err)
	assert.Equal(t, 2, search.EstimatedMatches())

	set, err := search.Results(0, 10)
	require.NoError(t, err)
	require.Equal(t, 2, set.Size())

	var results []engine.SearchResult
	for r := range set.All() {
		results = append(results, r)
	}
	// Insertion order, case-insensitive; the image item is not indexed text.
	assert.Equal(t, "fox", results[0].Path)
	assert.Equal(t, "both", results[1].Path)
	assert.Equal(t, 1, results[0].Score)
	assert.Equal(t, 2, results[1].Score)
	assert.Contains(t, results[0].Snippet, "Fox")
}

func TestSearchUsesCustomIndexData(t *testing.T) {
	t.Parallel()
	e := New()
	a := buildArchive(t, e, "custom.zim", engine.CreatorConfig{},
		&fakeItem{
			path: "pdf", title: "Paper", mimetype: "application/pdf", content: "\x00binary\x00",
			index: &fakeIndexData{content: "extracted abstract about turbines"},
		},
	)

	s, err := e.NewSearcher(a)
	require.NoError(t, err)
	search, err := s.Search(engine.Query{Pattern: "turbines"})
	require.NoError(t, err)
	assert.Equal(t, 1, search.EstimatedMatches())
}

func TestSearchWindow(t *testing.T) {
	t.Parallel()
	e, a := searchFixture(t)

	s, err := e.NewSearcher(a)
	require.NoError(t, err)
	search, err := s.Search(engine.Query{Pattern: "the"})
	require.NoError(t, err)

	set, err := search.Results(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, set.Size())

	set, err = search.Results(10, 5)
	require.NoError(t, err)
	assert.Equal(t, 0, set.Size())

	_, err = search.Results(-1, 5)
	require.Error(t, err)
	_, err = search.Results(0, -1)
	require.Error(t, err)
}

func TestSearchEmptyPattern(t *testing.T) {
	t.Parallel()
	e, a := searchFixture(t)

	s, err := e.NewSearcher(a)
	require.NoError(t, err)
	_, err = s.Search(engine.Query{})
	require.Error(t, err)
}

func TestSuggestionsPrefix(t *testing.T) {
	t.Parallel()
	e, a := searchFixture(t)

	s, err := e.NewSuggestionSearcher(a)
	require.NoError(t, err)

	search, err := s.Suggest("fox")
	require.NoError(t, err)
	assert.Equal(t, 2, search.EstimatedMatches())

	set, err := search.Results(0, 10)
	require.NoError(t, err)

	var items []engine.SuggestionItem
	for it := range set.All() {
		items = append(items, it)
	}
	require.Len(t, items, 2)

	assert.Equal(t, "Fox", items[0].Title())
	assert.Equal(t, "Fox photo", items[1].Title())
	assert.True(t, items[0].HasSnippet())
	assert.Equal(t, "<b>Fox</b>", items[0].Snippet())

	entry, err := items[0].Entry()
	require.NoError(t, err)
	assert.Equal(t, "fox", entry.Path())
}

func TestForeignArchiveRejected(t *testing.T) {
	t.Parallel()
	e := New()

	_, err := e.NewSearcher(foreignArchive{})
	require.Error(t, err)
	_, err = e.NewSuggestionSearcher(foreignArchive{})
	require.Error(t, err)
}

// foreignArchive is an engine.Archive that did not come from this engine.
type foreignArchive struct {
	engine.Archive
}
