package zimlua

import (
	"sync"

	"github.com/Shopify/go-lua"

	"github.com/meigma/zimlua/engine"
)

// Item adapts a Lua object into the engine's polymorphic writer item.
//
// The item holds its Lua object fixed from bind until Close; every method is
// a pure forward through the dispatcher using a fixed method name. The
// engine owns the item once handed to a creator and closes it when the item
// is fully written.
type Item struct {
	obj *Object

	mu       sync.Mutex
	children []*Object
}

var _ engine.WriterItem = (*Item)(nil)

// BindItem pins the Lua value at index as a writer item.
//
// Must be called with the runtime lock held, i.e. from within [Runtime.Do]
// or a Lua binding. Fails with ErrRuntimeNotReady before Install.
func (rt *Runtime) BindItem(l *lua.State, index int) (*Item, error) {
	obj, err := rt.bindObject(l, index)
	if err != nil {
		return nil, err
	}
	return &Item{obj: obj}, nil
}

// Path returns the full entry path.
func (i *Item) Path() (string, error) {
	return callString(i.obj, "get_path")
}

// Title returns the entry title.
func (i *Item) Title() (string, error) {
	return callString(i.obj, "get_title")
}

// MimeType returns the content MIME type.
func (i *Item) MimeType() (string, error) {
	return callString(i.obj, "get_mimetype")
}

// ContentProvider returns a provider that feeds the item content
// progressively, without buffering it in the bridge.
func (i *Item) ContentProvider() (engine.ContentProvider, error) {
	obj, err := callObject(i.obj, "get_contentprovider")
	if err != nil {
		return nil, err
	}
	i.adopt(obj)
	return &ContentProvider{obj: obj}, nil
}

// IndexData returns custom index data, or (nil, nil) when the Lua object
// does not provide the capability, letting the engine compute default
// indexing. An absent attribute and an explicit nil both mean "use default".
func (i *Item) IndexData() (engine.IndexData, error) {
	ok, err := i.obj.hasCapability("get_indexdata")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	obj, err := callObject(i.obj, "get_indexdata")
	if err != nil {
		return nil, err
	}
	i.adopt(obj)
	return &IndexData{obj: obj}, nil
}

// Hints returns the item hints.
func (i *Item) Hints() (engine.Hints, error) {
	return callHints(i.obj, "get_hints")
}

// Close releases the item's Lua references, including any provider or index
// data objects it handed out. Idempotent.
func (i *Item) Close() error {
	i.mu.Lock()
	children := i.children
	i.children = nil
	i.mu.Unlock()

	for _, c := range children {
		_ = c.Close()
	}
	return i.obj.Close()
}

func (i *Item) adopt(obj *Object) {
	i.mu.Lock()
	i.children = append(i.children, obj)
	i.mu.Unlock()
}
