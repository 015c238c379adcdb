package memengine

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/meigma/zimlua/engine"
)

// Archive is a finished in-memory archive.
type Archive struct {
	filename      string
	uuid          [16]byte
	checksum      string
	mainPath      string
	entries       []*entryRec
	byPath        map[string]*entryRec
	byTitle       map[string]*entryRec
	metadata      map[string]metadataRec
	illustrations map[uint][]byte
	fulltext      bool
	filesize      uint64
}

var _ engine.Archive = (*Archive)(nil)

func (a *Archive) EntryByPath(path string) (engine.Entry, error) {
	rec, ok := a.byPath[path]
	if !ok {
		return nil, fmt.Errorf("memengine: entry %q: %w", path, engine.ErrNotFound)
	}
	return &archiveEntry{a: a, rec: rec}, nil
}

func (a *Archive) EntryByTitle(title string) (engine.Entry, error) {
	rec, ok := a.byTitle[title]
	if !ok {
		return nil, fmt.Errorf("memengine: entry titled %q: %w", title, engine.ErrNotFound)
	}
	return &archiveEntry{a: a, rec: rec}, nil
}

func (a *Archive) MainEntry() (engine.Entry, error) {
	if a.mainPath == "" {
		return nil, fmt.Errorf("memengine: %w", engine.ErrNoMainEntry)
	}
	return a.EntryByPath(a.mainPath)
}

func (a *Archive) RandomEntry() (engine.Entry, error) {
	if len(a.entries) == 0 {
		return nil, fmt.Errorf("memengine: random entry: %w", engine.ErrNotFound)
	}
	return &archiveEntry{a: a, rec: a.entries[rand.IntN(len(a.entries))]}, nil
}

func (a *Archive) IllustrationItem(size uint) (engine.Item, error) {
	data, ok := a.illustrations[size]
	if !ok {
		return nil, fmt.Errorf("memengine: illustration %d: %w", size, engine.ErrNotFound)
	}
	return &syntheticItem{
		path:     fmt.Sprintf("Illustration_%dx%d@1", size, size),
		mimetype: "image/png",
		data:     data,
	}, nil
}

func (a *Archive) IllustrationSizes() []uint {
	sizes := make([]uint, 0, len(a.illustrations))
	for size := range a.illustrations {
		sizes = append(sizes, size)
	}
	slices.Sort(sizes)
	return sizes
}

func (a *Archive) UUID() [16]byte { return a.uuid }

func (a *Archive) Filesize() uint64 { return a.filesize }

func (a *Archive) Metadata(name string) (string, error) {
	m, ok := a.metadata[name]
	if !ok {
		return "", fmt.Errorf("memengine: metadata %q: %w", name, engine.ErrNotFound)
	}
	return m.content, nil
}

func (a *Archive) MetadataItem(name string) (engine.Item, error) {
	m, ok := a.metadata[name]
	if !ok {
		return nil, fmt.Errorf("memengine: metadata %q: %w", name, engine.ErrNotFound)
	}
	return &syntheticItem{
		path:     "M/" + name,
		title:    name,
		mimetype: m.mimetype,
		data:     []byte(m.content),
	}, nil
}

func (a *Archive) MetadataKeys() []string {
	keys := make([]string, 0, len(a.metadata))
	for name := range a.metadata {
		keys = append(keys, name)
	}
	slices.Sort(keys)
	return keys
}

func (a *Archive) EntryCount() uint64 { return uint64(len(a.entries)) }

func (a *Archive) AllEntryCount() uint64 {
	return uint64(len(a.entries) + len(a.metadata) + len(a.illustrations))
}

func (a *Archive) ArticleCount() uint64 {
	var n uint64
	for _, rec := range a.entries {
		if rec.frontArticle {
			n++
		}
	}
	return n
}

func (a *Archive) MediaCount() uint64 {
	var n uint64
	for _, rec := range a.entries {
		switch {
		case strings.HasPrefix(rec.mimetype, "image/"),
			strings.HasPrefix(rec.mimetype, "audio/"),
			strings.HasPrefix(rec.mimetype, "video/"):
			n++
		}
	}
	return n
}

func (a *Archive) Checksum() string { return a.checksum }

func (a *Archive) Filename() string { return a.filename }

func (a *Archive) HasMainEntry() bool { return a.mainPath != "" }

func (a *Archive) HasIllustration(size uint) bool {
	_, ok := a.illustrations[size]
	return ok
}

func (a *Archive) HasEntryByPath(path string) bool {
	_, ok := a.byPath[path]
	return ok
}

func (a *Archive) HasEntryByTitle(title string) bool {
	_, ok := a.byTitle[title]
	return ok
}

func (a *Archive) IsMultiPart() bool { return false }

func (a *Archive) HasNewNamespaceScheme() bool { return true }

func (a *Archive) HasFulltextIndex() bool { return a.fulltext }

func (a *Archive) HasTitleIndex() bool { return true }

func (a *Archive) HasChecksum() bool { return a.checksum != "" }

// Check recomputes the checksum and compares it to the stored one.
func (a *Archive) Check() bool {
	return a.computeChecksum() == a.checksum
}

// archiveEntry is a directory entry view over one record.
type archiveEntry struct {
	a   *Archive
	rec *entryRec
}

var _ engine.Entry = (*archiveEntry)(nil)

func (e *archiveEntry) Title() string { return e.rec.title }

func (e *archiveEntry) Path() string { return e.rec.path }

func (e *archiveEntry) IsRedirect() bool { return e.rec.redirect != "" }

// Item resolves the entry to its item. Redirect chains are followed only
// when follow is true, with a hop limit guarding against cycles.
func (e *archiveEntry) Item(follow bool) (engine.Item, error) {
	rec := e.rec
	if rec.redirect != "" && !follow {
		return nil, fmt.Errorf("memengine: entry %q: %w", rec.path, engine.ErrIsRedirect)
	}
	for hops := 0; rec.redirect != ""; hops++ {
		if hops > len(e.a.entries) {
			return nil, fmt.Errorf("memengine: entry %q: redirect cycle", e.rec.path)
		}
		next, ok := e.a.byPath[rec.redirect]
		if !ok {
			return nil, fmt.Errorf("memengine: redirect target %q: %w", rec.redirect, engine.ErrNotFound)
		}
		rec = next
	}
	return &archiveItem{a: e.a, rec: rec}, nil
}

func (e *archiveEntry) RedirectEntry() (engine.Entry, error) {
	if e.rec.redirect == "" {
		return nil, fmt.Errorf("memengine: entry %q: %w", e.rec.path, engine.ErrNotRedirect)
	}
	return e.a.EntryByPath(e.rec.redirect)
}

func (e *archiveEntry) Index() uint32 { return e.rec.index }

// archiveItem is the content view over one item record.
type archiveItem struct {
	a   *Archive
	rec *entryRec
}

var _ engine.Item = (*archiveItem)(nil)

func (i *archiveItem) Title() string { return i.rec.title }

func (i *archiveItem) Path() string { return i.rec.path }

func (i *archiveItem) Mimetype() string { return i.rec.mimetype }

// Data decompresses the stored cluster when needed.
func (i *archiveItem) Data() (engine.Blob, error) {
	if i.rec.compression != engine.CompressionZstd {
		return engine.NewBlob(i.rec.stored), nil
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return engine.Blob{}, fmt.Errorf("memengine: item %q: zstd decoder: %w", i.rec.path, err)
	}
	defer dec.Close()
	data, err := dec.DecodeAll(i.rec.stored, nil)
	if err != nil {
		return engine.Blob{}, fmt.Errorf("memengine: item %q: decompress: %w", i.rec.path, err)
	}
	return engine.NewBlob(data), nil
}

func (i *archiveItem) Size() uint64 { return i.rec.size }

func (i *archiveItem) Index() uint32 { return i.rec.index }

// syntheticItem backs metadata and illustration items, which have content
// but no directory entry record.
type syntheticItem struct {
	path     string
	title    string
	mimetype string
	data     []byte
}

var _ engine.Item = (*syntheticItem)(nil)

func (i *syntheticItem) Title() string { return i.title }

func (i *syntheticItem) Path() string { return i.path }

func (i *syntheticItem) Mimetype() string { return i.mimetype }

func (i *syntheticItem) Data() (engine.Blob, error) {
	return engine.NewBlob(i.data), nil
}

func (i *syntheticItem) Size() uint64 { return uint64(len(i.data)) }

func (i *syntheticItem) Index() uint32 { return 0 }
