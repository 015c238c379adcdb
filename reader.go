package zimlua

import (
	"fmt"

	"github.com/Shopify/go-lua"

	"github.com/meigma/zimlua/engine"
	"github.com/meigma/zimlua/internal/handle"
)

// Metatable names for reader-side userdata.
const (
	archiveTypeName = "zim.archive"
	entryTypeName   = "zim.entry"
	itemTypeName    = "zim.item"
	blobTypeName    = "zim.blob"
)

// pushWrapped exposes an engine value to Lua behind a heap-indirected handle
// so the userdata payload has a valid default state independent of the
// engine type's own construction rules.
func pushWrapped[T any](l *lua.State, name string, v T) {
	l.PushUserData(handle.Wrap(v))
	lua.SetMetaTableNamed(l, name)
}

func checkWrapped[T any](l *lua.State, idx int, name, what string) T {
	if h, ok := lua.CheckUserData(l, idx, name).(handle.Handle[T]); ok && h.Ok() {
		return h.Get()
	}
	lua.ArgumentError(l, idx, what+" expected")
	var zero T
	return zero
}

// raise converts an engine error into a Lua error so navigation failures are
// distinguishable from valid-but-empty results.
func raise(l *lua.State, err error) int {
	lua.Errorf(l, "%s", err.Error())
	return 0
}

func (rt *Runtime) registerType(l *lua.State, name string, methods []lua.RegistryFunction) {
	lua.NewMetaTable(l, name)
	l.NewTable()
	lua.SetFunctions(l, methods, 0)
	l.SetField(-2, "__index")
	l.Pop(1)
}

// Archive

func checkArchive(l *lua.State) engine.Archive {
	return checkWrapped[engine.Archive](l, 1, archiveTypeName, "archive")
}

func pushArchive(l *lua.State, a engine.Archive) {
	pushWrapped(l, archiveTypeName, a)
}

func (rt *Runtime) archiveMethods() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		{Name: "entry_by_path", Function: rt.archiveEntryByPath},
		{Name: "entry_by_title", Function: rt.archiveEntryByTitle},
		{Name: "main_entry", Function: rt.archiveMainEntry},
		{Name: "random_entry", Function: rt.archiveRandomEntry},
		{Name: "illustration_item", Function: rt.archiveIllustrationItem},
		{Name: "illustration_sizes", Function: rt.archiveIllustrationSizes},
		{Name: "uuid", Function: rt.archiveUUID},
		{Name: "filesize", Function: rt.archiveFilesize},
		{Name: "metadata", Function: rt.archiveMetadata},
		{Name: "metadata_item", Function: rt.archiveMetadataItem},
		{Name: "metadata_keys", Function: rt.archiveMetadataKeys},
		{Name: "entry_count", Function: rt.archiveEntryCount},
		{Name: "all_entry_count", Function: rt.archiveAllEntryCount},
		{Name: "article_count", Function: rt.archiveArticleCount},
		{Name: "media_count", Function: rt.archiveMediaCount},
		{Name: "checksum", Function: rt.archiveChecksum},
		{Name: "filename", Function: rt.archiveFilename},
		{Name: "has_main_entry", Function: rt.archiveHasMainEntry},
		{Name: "has_illustration", Function: rt.archiveHasIllustration},
		{Name: "has_entry_by_path", Function: rt.archiveHasEntryByPath},
		{Name: "has_entry_by_title", Function: rt.archiveHasEntryByTitle},
		{Name: "is_multipart", Function: rt.archiveIsMultiPart},
		{Name: "has_new_namespace_scheme", Function: rt.archiveHasNewNamespaceScheme},
		{Name: "has_fulltext_index", Function: rt.archiveHasFulltextIndex},
		{Name: "has_title_index", Function: rt.archiveHasTitleIndex},
		{Name: "has_checksum", Function: rt.archiveHasChecksum},
		{Name: "check", Function: rt.archiveCheck},
	}
}

func (rt *Runtime) archiveEntryByPath(l *lua.State) int {
	a := checkArchive(l)
	path := lua.CheckString(l, 2)
	e, err := a.EntryByPath(path)
	if err != nil {
		return raise(l, err)
	}
	pushEntry(l, e)
	return 1
}

func (rt *Runtime) archiveEntryByTitle(l *lua.State) int {
	a := checkArchive(l)
	title := lua.CheckString(l, 2)
	e, err := a.EntryByTitle(title)
	if err != nil {
		return raise(l, err)
	}
	pushEntry(l, e)
	return 1
}

func (rt *Runtime) archiveMainEntry(l *lua.State) int {
	a := checkArchive(l)
	e, err := a.MainEntry()
	if err != nil {
		return raise(l, err)
	}
	pushEntry(l, e)
	return 1
}

func (rt *Runtime) archiveRandomEntry(l *lua.State) int {
	a := checkArchive(l)
	e, err := a.RandomEntry()
	if err != nil {
		return raise(l, err)
	}
	pushEntry(l, e)
	return 1
}

func (rt *Runtime) archiveIllustrationItem(l *lua.State) int {
	a := checkArchive(l)
	size := lua.CheckInteger(l, 2)
	it, err := a.IllustrationItem(uint(size))
	if err != nil {
		return raise(l, err)
	}
	pushItem(l, it)
	return 1
}

func (rt *Runtime) archiveIllustrationSizes(l *lua.State) int {
	a := checkArchive(l)
	sizes := a.IllustrationSizes()
	l.CreateTable(len(sizes), 0)
	for i, s := range sizes {
		l.PushInteger(int(s))
		l.RawSetInt(-2, i+1)
	}
	return 1
}

// archiveUUID converts the raw 16-byte identifier into its canonical hex
// form. This is a representation conversion, not a forward.
func (rt *Runtime) archiveUUID(l *lua.State) int {
	a := checkArchive(l)
	l.PushString(formatUUID(a.UUID()))
	return 1
}

func formatUUID(u [16]byte) string {
	return fmt.Sprintf("%x-%x-%x-%x-%x", u[0:4], u[4:6], u[6:8], u[8:10], u[10:16])
}

func (rt *Runtime) archiveFilesize(l *lua.State) int {
	a := checkArchive(l)
	l.PushNumber(float64(a.Filesize()))
	return 1
}

func (rt *Runtime) archiveMetadata(l *lua.State) int {
	a := checkArchive(l)
	name := lua.CheckString(l, 2)
	v, err := a.Metadata(name)
	if err != nil {
		return raise(l, err)
	}
	l.PushString(v)
	return 1
}

func (rt *Runtime) archiveMetadataItem(l *lua.State) int {
	a := checkArchive(l)
	name := lua.CheckString(l, 2)
	it, err := a.MetadataItem(name)
	if err != nil {
		return raise(l, err)
	}
	pushItem(l, it)
	return 1
}

func (rt *Runtime) archiveMetadataKeys(l *lua.State) int {
	a := checkArchive(l)
	keys := a.MetadataKeys()
	l.CreateTable(len(keys), 0)
	for i, k := range keys {
		l.PushString(k)
		l.RawSetInt(-2, i+1)
	}
	return 1
}

func (rt *Runtime) archiveEntryCount(l *lua.State) int {
	a := checkArchive(l)
	l.PushNumber(float64(a.EntryCount()))
	return 1
}

func (rt *Runtime) archiveAllEntryCount(l *lua.State) int {
	a := checkArchive(l)
	l.PushNumber(float64(a.AllEntryCount()))
	return 1
}

func (rt *Runtime) archiveArticleCount(l *lua.State) int {
	a := checkArchive(l)
	l.PushNumber(float64(a.ArticleCount()))
	return 1
}

func (rt *Runtime) archiveMediaCount(l *lua.State) int {
	a := checkArchive(l)
	l.PushNumber(float64(a.MediaCount()))
	return 1
}

func (rt *Runtime) archiveChecksum(l *lua.State) int {
	a := checkArchive(l)
	l.PushString(a.Checksum())
	return 1
}

func (rt *Runtime) archiveFilename(l *lua.State) int {
	a := checkArchive(l)
	l.PushString(a.Filename())
	return 1
}

func (rt *Runtime) archiveHasMainEntry(l *lua.State) int {
	a := checkArchive(l)
	l.PushBoolean(a.HasMainEntry())
	return 1
}

func (rt *Runtime) archiveHasIllustration(l *lua.State) int {
	a := checkArchive(l)
	size := lua.CheckInteger(l, 2)
	l.PushBoolean(a.HasIllustration(uint(size)))
	return 1
}

func (rt *Runtime) archiveHasEntryByPath(l *lua.State) int {
	a := checkArchive(l)
	path := lua.CheckString(l, 2)
	l.PushBoolean(a.HasEntryByPath(path))
	return 1
}

func (rt *Runtime) archiveHasEntryByTitle(l *lua.State) int {
	a := checkArchive(l)
	title := lua.CheckString(l, 2)
	l.PushBoolean(a.HasEntryByTitle(title))
	return 1
}

func (rt *Runtime) archiveIsMultiPart(l *lua.State) int {
	a := checkArchive(l)
	l.PushBoolean(a.IsMultiPart())
	return 1
}

func (rt *Runtime) archiveHasNewNamespaceScheme(l *lua.State) int {
	a := checkArchive(l)
	l.PushBoolean(a.HasNewNamespaceScheme())
	return 1
}

func (rt *Runtime) archiveHasFulltextIndex(l *lua.State) int {
	a := checkArchive(l)
	l.PushBoolean(a.HasFulltextIndex())
	return 1
}

func (rt *Runtime) archiveHasTitleIndex(l *lua.State) int {
	a := checkArchive(l)
	l.PushBoolean(a.HasTitleIndex())
	return 1
}

func (rt *Runtime) archiveHasChecksum(l *lua.State) int {
	a := checkArchive(l)
	l.PushBoolean(a.HasChecksum())
	return 1
}

func (rt *Runtime) archiveCheck(l *lua.State) int {
	a := checkArchive(l)
	l.PushBoolean(a.Check())
	return 1
}

// Entry

func checkEntry(l *lua.State) engine.Entry {
	return checkWrapped[engine.Entry](l, 1, entryTypeName, "entry")
}

func pushEntry(l *lua.State, e engine.Entry) {
	pushWrapped(l, entryTypeName, e)
}

func (rt *Runtime) entryMethods() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		{Name: "title", Function: rt.entryTitle},
		{Name: "path", Function: rt.entryPath},
		{Name: "is_redirect", Function: rt.entryIsRedirect},
		{Name: "item", Function: rt.entryItem},
		{Name: "redirect_entry", Function: rt.entryRedirectEntry},
		{Name: "index", Function: rt.entryIndex},
	}
}

func (rt *Runtime) entryTitle(l *lua.State) int {
	e := checkEntry(l)
	l.PushString(e.Title())
	return 1
}

func (rt *Runtime) entryPath(l *lua.State) int {
	e := checkEntry(l)
	l.PushString(e.Path())
	return 1
}

func (rt *Runtime) entryIsRedirect(l *lua.State) int {
	e := checkEntry(l)
	l.PushBoolean(e.IsRedirect())
	return 1
}

func (rt *Runtime) entryItem(l *lua.State) int {
	e := checkEntry(l)
	follow := false
	if !l.IsNoneOrNil(2) {
		follow = l.ToBoolean(2)
	}
	it, err := e.Item(follow)
	if err != nil {
		return raise(l, err)
	}
	pushItem(l, it)
	return 1
}

func (rt *Runtime) entryRedirectEntry(l *lua.State) int {
	e := checkEntry(l)
	target, err := e.RedirectEntry()
	if err != nil {
		return raise(l, err)
	}
	pushEntry(l, target)
	return 1
}

func (rt *Runtime) entryIndex(l *lua.State) int {
	e := checkEntry(l)
	l.PushNumber(float64(e.Index()))
	return 1
}

// Item

func checkItem(l *lua.State) engine.Item {
	return checkWrapped[engine.Item](l, 1, itemTypeName, "item")
}

func pushItem(l *lua.State, it engine.Item) {
	pushWrapped(l, itemTypeName, it)
}

func (rt *Runtime) itemMethods() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		{Name: "title", Function: rt.itemTitle},
		{Name: "path", Function: rt.itemPath},
		{Name: "mimetype", Function: rt.itemMimetype},
		{Name: "data", Function: rt.itemData},
		{Name: "size", Function: rt.itemSize},
		{Name: "index", Function: rt.itemIndex},
	}
}

func (rt *Runtime) itemTitle(l *lua.State) int {
	it := checkItem(l)
	l.PushString(it.Title())
	return 1
}

func (rt *Runtime) itemPath(l *lua.State) int {
	it := checkItem(l)
	l.PushString(it.Path())
	return 1
}

func (rt *Runtime) itemMimetype(l *lua.State) int {
	it := checkItem(l)
	l.PushString(it.Mimetype())
	return 1
}

func (rt *Runtime) itemData(l *lua.State) int {
	it := checkItem(l)
	b, err := it.Data()
	if err != nil {
		return raise(l, err)
	}
	pushBlob(l, b)
	return 1
}

func (rt *Runtime) itemSize(l *lua.State) int {
	it := checkItem(l)
	l.PushNumber(float64(it.Size()))
	return 1
}

func (rt *Runtime) itemIndex(l *lua.State) int {
	it := checkItem(l)
	l.PushNumber(float64(it.Index()))
	return 1
}

// Blob

func checkBlob(l *lua.State) engine.Blob {
	return checkWrapped[engine.Blob](l, 1, blobTypeName, "blob")
}

func pushBlob(l *lua.State, b engine.Blob) {
	pushWrapped(l, blobTypeName, b)
}

func (rt *Runtime) blobMethods() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		{Name: "data", Function: rt.blobData},
		{Name: "size", Function: rt.blobSize},
	}
}

func (rt *Runtime) blobData(l *lua.State) int {
	b := checkBlob(l)
	l.PushString(string(b.Data()))
	return 1
}

func (rt *Runtime) blobSize(l *lua.State) int {
	b := checkBlob(l)
	l.PushNumber(float64(b.Size()))
	return 1
}
