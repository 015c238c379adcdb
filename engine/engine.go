package engine

// Engine is the top-level entry point into an archive engine.
type Engine interface {
	// OpenArchive opens an existing archive for reading.
	OpenArchive(path string) (Archive, error)

	// NewCreator starts writing a new archive at path.
	NewCreator(path string, cfg CreatorConfig) (Creator, error)

	// NewSearcher builds a full-text searcher over an archive.
	NewSearcher(a Archive) (Searcher, error)

	// NewSuggestionSearcher builds a title-suggestion searcher over an archive.
	NewSuggestionSearcher(a Archive) (SuggestionSearcher, error)
}

// Archive provides read-only access to a finished archive.
//
// Navigation methods return an error (wrapping ErrNotFound where applicable)
// instead of an invalid value when the target does not exist.
type Archive interface {
	EntryByPath(path string) (Entry, error)
	EntryByTitle(title string) (Entry, error)
	MainEntry() (Entry, error)
	RandomEntry() (Entry, error)

	IllustrationItem(size uint) (Item, error)
	IllustrationSizes() []uint

	// UUID returns the raw 16-byte archive identifier.
	UUID() [16]byte

	Filesize() uint64
	Metadata(name string) (string, error)
	MetadataItem(name string) (Item, error)
	MetadataKeys() []string

	EntryCount() uint64
	AllEntryCount() uint64
	ArticleCount() uint64
	MediaCount() uint64

	Checksum() string
	Filename() string

	HasMainEntry() bool
	HasIllustration(size uint) bool
	HasEntryByPath(path string) bool
	HasEntryByTitle(title string) bool
	IsMultiPart() bool
	HasNewNamespaceScheme() bool
	HasFulltextIndex() bool
	HasTitleIndex() bool
	HasChecksum() bool

	// Check verifies archive integrity.
	Check() bool
}

// Entry is a directory entry in an archive. It is either an item or a
// redirect to another entry.
type Entry interface {
	Title() string
	Path() string
	IsRedirect() bool

	// Item resolves the entry to an item. When follow is true a redirect is
	// resolved transparently; otherwise resolving a redirect is an error.
	Item(follow bool) (Item, error)

	// RedirectEntry returns the redirect target. Fails on non-redirects.
	RedirectEntry() (Entry, error)

	Index() uint32
}

// Item is a leaf entry carrying content.
type Item interface {
	Title() string
	Path() string
	Mimetype() string
	Data() (Blob, error)
	Size() uint64
	Index() uint32
}

// Blob holds item content. The zero value is a valid empty blob.
type Blob struct {
	data []byte
}

// NewBlob wraps data in a Blob. The slice is not copied.
func NewBlob(data []byte) Blob {
	return Blob{data: data}
}

// Data returns the content bytes.
func (b Blob) Data() []byte {
	return b.data
}

// Size returns the content length in bytes.
func (b Blob) Size() uint64 {
	return uint64(len(b.data))
}
