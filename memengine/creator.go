package memengine

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/sync/errgroup"

	"github.com/meigma/zimlua/engine"
)

const defaultWorkers = 2

// entryRec is one stored directory entry, item or redirect.
type entryRec struct {
	path     string
	title    string
	mimetype string
	redirect string // redirect target path, empty for items
	index    uint32

	frontArticle bool

	// Content, filled by a worker for items.
	stored      []byte
	size        uint64 // uncompressed size
	compression engine.Compression

	// Custom index input, when the item supplied it.
	hasIndexData bool
	indexTitle   string
	indexContent string
	indexKeyword string
	wordCount    uint32
	geo          engine.GeoPosition
}

type metadataRec struct {
	content  string
	mimetype string
}

type writeJob struct {
	rec  *entryRec
	item engine.WriterItem
}

// creator builds an in-memory archive. Item content is pulled on worker
// goroutines so provider callbacks run off the adding goroutine, the way a
// native engine drives them.
type creator struct {
	eng *Engine
	cfg engine.CreatorConfig
	enc *zstd.Encoder

	path string

	// addMu orders item hand-offs against Finish closing the job channel:
	// AddItem sends under the read lock, Finish closes under the write lock.
	addMu sync.RWMutex

	mu            sync.Mutex
	err           error // first failure, sticky
	finished      bool
	mainPath      string
	entries       []*entryRec
	byPath        map[string]*entryRec
	metadata      map[string]metadataRec
	illustrations map[uint][]byte

	group *errgroup.Group
	jobs  chan writeJob
}

var _ engine.Creator = (*creator)(nil)

// NewCreator starts writing a new in-memory archive at path.
func (e *Engine) NewCreator(path string, cfg engine.CreatorConfig) (engine.Creator, error) {
	if cfg.Compression == engine.CompressionLzma {
		return nil, fmt.Errorf("memengine: %s compression not supported", cfg.Compression)
	}

	c := &creator{
		eng:           e,
		cfg:           cfg,
		path:          path,
		mainPath:      cfg.MainPath,
		byPath:        make(map[string]*entryRec),
		metadata:      make(map[string]metadataRec),
		illustrations: make(map[uint][]byte),
		group:         new(errgroup.Group),
		jobs:          make(chan writeJob),
	}

	if cfg.Compression == engine.CompressionZstd {
		enc, err := zstd.NewWriter(io.Discard, zstd.WithEncoderConcurrency(1), zstd.WithLowerEncoderMem(true))
		if err != nil {
			return nil, fmt.Errorf("memengine: zstd encoder: %w", err)
		}
		c.enc = enc
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	for range workers {
		c.group.Go(c.worker)
	}
	e.log().Debug("creator started", "path", path, "workers", workers, "compression", cfg.Compression.String())
	return c, nil
}

// worker drains the job channel. After a failure it keeps draining so
// AddItem never blocks, closing items unprocessed.
func (c *creator) worker() error {
	for job := range c.jobs {
		if c.failed() != nil {
			_ = job.item.Close()
			continue
		}
		err := c.process(job)
		if err != nil {
			c.fail(err)
		}
		_ = job.item.Close()
	}
	return nil
}

// process pulls the item content through the feed protocol and records it.
func (c *creator) process(job writeJob) error {
	rec, item := job.rec, job.item

	provider, err := item.ContentProvider()
	if err != nil {
		return fmt.Errorf("item %q: content provider: %w", rec.path, err)
	}
	size, err := provider.Size()
	if err != nil {
		return fmt.Errorf("item %q: size: %w", rec.path, err)
	}

	var content []byte
	for {
		chunk, err := provider.Feed()
		if err != nil {
			return fmt.Errorf("item %q: feed: %w", rec.path, err)
		}
		if len(chunk) == 0 {
			break
		}
		content = append(content, chunk...)
		if uint64(len(content)) > size {
			return fmt.Errorf("item %q: content exceeds declared size %d", rec.path, size)
		}
	}
	if uint64(len(content)) != size {
		return fmt.Errorf("item %q: content is %d bytes, declared %d", rec.path, len(content), size)
	}

	if err := c.readIndexData(rec, item); err != nil {
		return err
	}

	rec.size = size
	if c.enc != nil && rec.compression == engine.CompressionZstd {
		rec.stored = c.enc.EncodeAll(content, nil)
	} else {
		rec.compression = engine.CompressionNone
		rec.stored = content
	}
	return nil
}

func (c *creator) readIndexData(rec *entryRec, item engine.WriterItem) error {
	id, err := item.IndexData()
	if err != nil {
		return fmt.Errorf("item %q: index data: %w", rec.path, err)
	}
	if id == nil {
		return nil
	}
	has, err := id.HasIndexData()
	if err != nil {
		return fmt.Errorf("item %q: index data: %w", rec.path, err)
	}
	if !has {
		return nil
	}
	rec.hasIndexData = true
	if rec.indexTitle, err = id.Title(); err != nil {
		return fmt.Errorf("item %q: index title: %w", rec.path, err)
	}
	if rec.indexContent, err = id.Content(); err != nil {
		return fmt.Errorf("item %q: index content: %w", rec.path, err)
	}
	if rec.indexKeyword, err = id.Keywords(); err != nil {
		return fmt.Errorf("item %q: index keywords: %w", rec.path, err)
	}
	if rec.wordCount, err = id.WordCount(); err != nil {
		return fmt.Errorf("item %q: index word count: %w", rec.path, err)
	}
	if rec.geo, err = id.GeoPosition(); err != nil {
		return fmt.Errorf("item %q: index geo position: %w", rec.path, err)
	}
	return nil
}

func (c *creator) failed() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *creator) fail(err error) {
	c.mu.Lock()
	if c.err == nil {
		c.err = err
	}
	c.mu.Unlock()
}

// AddItem reads the item's descriptor methods on the calling goroutine, then
// hands content pulling to a worker. On error the caller still owns the item.
func (c *creator) AddItem(item engine.WriterItem) error {
	path, err := item.Path()
	if err != nil {
		return fmt.Errorf("memengine: item path: %w", err)
	}
	title, err := item.Title()
	if err != nil {
		return fmt.Errorf("memengine: item %q: title: %w", path, err)
	}
	mimetype, err := item.MimeType()
	if err != nil {
		return fmt.Errorf("memengine: item %q: mimetype: %w", path, err)
	}
	hints, err := item.Hints()
	if err != nil {
		return fmt.Errorf("memengine: item %q: hints: %w", path, err)
	}

	rec := &entryRec{
		path:         path,
		title:        title,
		mimetype:     mimetype,
		frontArticle: hints[engine.HintFrontArticle] != 0,
	}
	if hints[engine.HintCompress] != 0 {
		rec.compression = c.cfg.Compression
	}

	c.addMu.RLock()
	defer c.addMu.RUnlock()

	c.mu.Lock()
	if c.finished {
		c.mu.Unlock()
		return fmt.Errorf("memengine: add item %q: %w", path, engine.ErrFinished)
	}
	if err := c.err; err != nil {
		c.mu.Unlock()
		return err
	}
	if _, dup := c.byPath[path]; dup {
		c.mu.Unlock()
		return fmt.Errorf("memengine: duplicate entry path %q", path)
	}
	rec.index = uint32(len(c.entries))
	c.entries = append(c.entries, rec)
	c.byPath[path] = rec
	c.mu.Unlock()

	c.jobs <- writeJob{rec: rec, item: item}
	return nil
}

// AddMetadata stores a metadata value, replacing any previous value under
// the same name.
func (c *creator) AddMetadata(name, content, mimetype string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finished {
		return fmt.Errorf("memengine: add metadata %q: %w", name, engine.ErrFinished)
	}
	c.metadata[name] = metadataRec{content: content, mimetype: mimetype}
	return nil
}

// AddRedirection records a redirect entry. The target does not have to exist
// yet; dangling redirects fail at resolution time.
func (c *creator) AddRedirection(path, title, targetPath string, hints engine.Hints) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finished {
		return fmt.Errorf("memengine: add redirection %q: %w", path, engine.ErrFinished)
	}
	if _, dup := c.byPath[path]; dup {
		return fmt.Errorf("memengine: duplicate entry path %q", path)
	}
	rec := &entryRec{
		path:         path,
		title:        title,
		redirect:     targetPath,
		index:        uint32(len(c.entries)),
		frontArticle: hints[engine.HintFrontArticle] != 0,
	}
	c.entries = append(c.entries, rec)
	c.byPath[path] = rec
	return nil
}

// AddIllustration stores a square illustration.
func (c *creator) AddIllustration(size uint, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finished {
		return fmt.Errorf("memengine: add illustration: %w", engine.ErrFinished)
	}
	c.illustrations[size] = append([]byte(nil), data...)
	return nil
}

// SetMainPath declares the main entry path, overriding the configured one.
func (c *creator) SetMainPath(path string) {
	c.mu.Lock()
	c.mainPath = path
	c.mu.Unlock()
}

// Finish waits for all pending items, seals the archive, and registers it
// with the engine. A failure on any item aborts the whole archive.
func (c *creator) Finish() error {
	c.addMu.Lock()
	c.mu.Lock()
	if c.finished {
		c.mu.Unlock()
		c.addMu.Unlock()
		return fmt.Errorf("memengine: finish: %w", engine.ErrFinished)
	}
	c.finished = true
	c.mu.Unlock()
	close(c.jobs)
	c.addMu.Unlock()
	_ = c.group.Wait()
	if c.enc != nil {
		_ = c.enc.Close()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return fmt.Errorf("memengine: finish: %w", c.err)
	}

	a := &Archive{
		filename:      c.path,
		mainPath:      c.mainPath,
		entries:       c.entries,
		byPath:        c.byPath,
		byTitle:       make(map[string]*entryRec, len(c.entries)),
		metadata:      c.metadata,
		illustrations: c.illustrations,
		fulltext:      c.cfg.Indexing,
	}
	for _, rec := range c.entries {
		if _, taken := a.byTitle[rec.title]; !taken {
			a.byTitle[rec.title] = rec
		}
		a.filesize += uint64(len(rec.stored))
	}
	for _, m := range c.metadata {
		a.filesize += uint64(len(m.content))
	}
	for _, il := range c.illustrations {
		a.filesize += uint64(len(il))
	}
	if _, err := rand.Read(a.uuid[:]); err != nil {
		return fmt.Errorf("memengine: finish: uuid: %w", err)
	}
	a.checksum = a.computeChecksum()

	c.eng.register(a)
	return nil
}

// computeChecksum hashes the archive content in a deterministic order.
func (a *Archive) computeChecksum() string {
	h := sha256.New()
	for _, rec := range a.entries {
		io.WriteString(h, rec.path)
		io.WriteString(h, rec.redirect)
		h.Write(rec.stored)
	}
	names := make([]string, 0, len(a.metadata))
	for name := range a.metadata {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		io.WriteString(h, name)
		io.WriteString(h, a.metadata[name].content)
	}
	for _, size := range a.IllustrationSizes() {
		h.Write(a.illustrations[size])
	}
	return hex.EncodeToString(h.Sum(nil))
}
