package memengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/zimlua/engine"
)

func TestArchiveCounts(t *testing.T) {
	t.Parallel()
	e := New()

	c, err := e.NewCreator("counts.zim", engine.CreatorConfig{})
	require.NoError(t, err)
	require.NoError(t, c.AddItem(&fakeItem{
		path: "a", title: "A", mimetype: "text/html", content: "x",
		hints: engine.Hints{engine.HintFrontArticle: 1},
	}))
	require.NoError(t, c.AddItem(&fakeItem{path: "pic", title: "Pic", mimetype: "image/png", content: "y"}))
	require.NoError(t, c.AddItem(&fakeItem{path: "clip", title: "Clip", mimetype: "video/webm", content: "z"}))
	require.NoError(t, c.AddMetadata("Title", "Counts", "text/plain"))
	require.NoError(t, c.AddIllustration(48, []byte("i")))
	require.NoError(t, c.Finish())

	a, err := e.OpenArchive("counts.zim")
	require.NoError(t, err)

	assert.Equal(t, uint64(3), a.EntryCount())
	assert.Equal(t, uint64(5), a.AllEntryCount())
	assert.Equal(t, uint64(1), a.ArticleCount())
	assert.Equal(t, uint64(2), a.MediaCount())
	assert.Equal(t, []string{"Title"}, a.MetadataKeys())
	assert.False(t, a.IsMultiPart())
	assert.True(t, a.HasNewNamespaceScheme())
	assert.True(t, a.HasTitleIndex())
	assert.Positive(t, a.Filesize())
}

func TestEntryByTitle(t *testing.T) {
	t.Parallel()
	e := New()
	a := buildArchive(t, e, "title.zim", engine.CreatorConfig{},
		&fakeItem{path: "p1", title: "Shared", mimetype: "text/plain", content: "first"},
		&fakeItem{path: "p2", title: "Shared", mimetype: "text/plain", content: "second"},
	)

	// First entry with the title wins.
	entry, err := a.EntryByTitle("Shared")
	require.NoError(t, err)
	assert.Equal(t, "p1", entry.Path())

	_, err = a.EntryByTitle("Absent")
	assert.ErrorIs(t, err, engine.ErrNotFound)
}

func TestRedirectChain(t *testing.T) {
	t.Parallel()
	e := New()

	c, err := e.NewCreator("chain.zim", engine.CreatorConfig{})
	require.NoError(t, err)
	require.NoError(t, c.AddItem(&fakeItem{path: "end", title: "End", mimetype: "text/plain", content: "final"}))
	require.NoError(t, c.AddRedirection("mid", "Mid", "end", nil))
	require.NoError(t, c.AddRedirection("start", "Start", "mid", nil))
	require.NoError(t, c.Finish())

	a, err := e.OpenArchive("chain.zim")
	require.NoError(t, err)

	entry, err := a.EntryByPath("start")
	require.NoError(t, err)
	require.True(t, entry.IsRedirect())

	item, err := entry.Item(true)
	require.NoError(t, err)
	assert.Equal(t, "end", item.Path())

	_, err = entry.Item(false)
	assert.ErrorIs(t, err, engine.ErrIsRedirect)

	target, err := entry.RedirectEntry()
	require.NoError(t, err)
	assert.Equal(t, "mid", target.Path())

	direct, err := a.EntryByPath("end")
	require.NoError(t, err)
	_, err = direct.RedirectEntry()
	assert.ErrorIs(t, err, engine.ErrNotRedirect)
}

func TestRedirectCycle(t *testing.T) {
	t.Parallel()
	e := New()

	c, err := e.NewCreator("cycle.zim", engine.CreatorConfig{})
	require.NoError(t, err)
	require.NoError(t, c.AddRedirection("a", "A", "b", nil))
	require.NoError(t, c.AddRedirection("b", "B", "a", nil))
	require.NoError(t, c.Finish())

	a, err := e.OpenArchive("cycle.zim")
	require.NoError(t, err)
	entry, err := a.EntryByPath("a")
	require.NoError(t, err)

	_, err = entry.Item(true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestDanglingRedirect(t *testing.T) {
	t.Parallel()
	e := New()

	c, err := e.NewCreator("dangling.zim", engine.CreatorConfig{})
	require.NoError(t, err)
	require.NoError(t, c.AddRedirection("a", "A", "ghost", nil))
	require.NoError(t, c.Finish())

	a, err := e.OpenArchive("dangling.zim")
	require.NoError(t, err)
	entry, err := a.EntryByPath("a")
	require.NoError(t, err)

	_, err = entry.Item(true)
	assert.ErrorIs(t, err, engine.ErrNotFound)
	_, err = entry.RedirectEntry()
	assert.ErrorIs(t, err, engine.ErrNotFound)
}

func TestIllustrationAndMetadataItems(t *testing.T) {
	t.Parallel()
	e := New()

	c, err := e.NewCreator("extras.zim", engine.CreatorConfig{})
	require.NoError(t, err)
	require.NoError(t, c.AddMetadata("Description", "about things", "text/plain"))
	require.NoError(t, c.AddIllustration(96, []byte("big icon")))
	require.NoError(t, c.Finish())

	a, err := e.OpenArchive("extras.zim")
	require.NoError(t, err)

	item, err := a.IllustrationItem(96)
	require.NoError(t, err)
	assert.Equal(t, "image/png", item.Mimetype())
	blob, err := item.Data()
	require.NoError(t, err)
	assert.Equal(t, "big icon", string(blob.Data()))
	assert.True(t, a.HasIllustration(96))
	assert.False(t, a.HasIllustration(48))

	_, err = a.IllustrationItem(48)
	assert.ErrorIs(t, err, engine.ErrNotFound)

	meta, err := a.MetadataItem("Description")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", meta.Mimetype())
	assert.Equal(t, uint64(len("about things")), meta.Size())

	_, err = a.MetadataItem("Absent")
	assert.ErrorIs(t, err, engine.ErrNotFound)
	_, err = a.Metadata("Absent")
	assert.ErrorIs(t, err, engine.ErrNotFound)
}

func TestRandomEntryEmptyArchive(t *testing.T) {
	t.Parallel()
	e := New()
	a := buildArchive(t, e, "empty.zim", engine.CreatorConfig{})

	_, err := a.RandomEntry()
	assert.ErrorIs(t, err, engine.ErrNotFound)
	_, err = a.MainEntry()
	assert.ErrorIs(t, err, engine.ErrNoMainEntry)
}
