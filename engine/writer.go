package engine

// Compression identifies a cluster compression algorithm.
type Compression uint8

// Compression algorithms.
const (
	CompressionNone Compression = iota
	CompressionLzma
	CompressionZstd
)

// String returns the lowercase algorithm name.
func (c Compression) String() string {
	switch c {
	case CompressionLzma:
		return "lzma"
	case CompressionZstd:
		return "zstd"
	default:
		return "none"
	}
}

// Hint keys accepted in WriterItem hints.
type Hint uint8

const (
	// HintCompress requests cluster compression for the item when non-zero.
	HintCompress Hint = iota

	// HintFrontArticle marks the item as a front article for title listing.
	HintFrontArticle
)

// Hints maps hint keys to integer values.
type Hints map[Hint]int64

// GeoPosition is an optional latitude/longitude attached to index data.
// Valid reports whether a position is present.
type GeoPosition struct {
	Valid     bool
	Latitude  float64
	Longitude float64
}

// CreatorConfig carries creation-time settings for a new archive.
type CreatorConfig struct {
	// MainPath is the path of the main (welcome) entry, empty for none.
	MainPath string

	// Compression selects the cluster compression algorithm.
	Compression Compression

	// ClusterSize is the target cluster size in bytes, 0 for engine default.
	ClusterSize int

	// Indexing enables full-text indexing in the given language.
	Indexing      bool
	IndexLanguage string

	// Workers is the number of engine worker threads, 0 for engine default.
	Workers int

	Verbose bool
}

// Creator writes a new archive. The engine keeps added items alive across its
// asynchronous write phases and closes them when it is done with them; Finish
// blocks until all pending items are written.
type Creator interface {
	// AddItem hands an item to the engine. The engine owns the item from this
	// point on and will call Close once the item is fully written.
	AddItem(item WriterItem) error

	// AddMetadata stores a metadata value under name.
	AddMetadata(name, content, mimetype string) error

	// AddRedirection adds a redirect from path to targetPath.
	AddRedirection(path, title, targetPath string, hints Hints) error

	// AddIllustration stores an illustration of the given square size.
	AddIllustration(size uint, data []byte) error

	// SetMainPath declares the main entry path.
	SetMainPath(path string)

	// Finish completes the archive. No methods may be called afterwards.
	Finish() error
}

// WriterItem is the polymorphic item contract consumed by a Creator.
//
// Methods return an error when the item cannot produce the value; any error
// aborts the in-progress archive creation.
type WriterItem interface {
	Path() (string, error)
	Title() (string, error)
	MimeType() (string, error)

	// ContentProvider returns a fresh provider for the item content. The
	// engine requests it at most once per item.
	ContentProvider() (ContentProvider, error)

	// IndexData returns custom index data, or (nil, nil) to let the engine
	// compute default indexing.
	IndexData() (IndexData, error)

	Hints() (Hints, error)

	// Close releases resources held by the item. Called by the engine once
	// the item is fully written.
	Close() error
}

// ContentProvider feeds item content progressively.
//
// The engine calls Size once at feed start, then Feed repeatedly until it has
// consumed Size bytes; a zero-length chunk signals end of stream. Chunks are
// requested in order and never concurrently. There is no rewind.
type ContentProvider interface {
	Size() (uint64, error)
	Feed() ([]byte, error)
}

// IndexData supplies custom full-text index input for an item.
type IndexData interface {
	HasIndexData() (bool, error)
	Title() (string, error)
	Content() (string, error)
	Keywords() (string, error)
	WordCount() (uint32, error)
	GeoPosition() (GeoPosition, error)
}
