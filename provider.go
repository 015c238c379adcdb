package zimlua

import "github.com/meigma/zimlua/engine"

// ContentProvider adapts a Lua provider object to the engine's pull-based
// feed protocol.
//
// The engine queries Size once at feed start and calls Feed repeatedly, in
// order, never concurrently, until a zero-length chunk. The adapter performs
// no buffering and no chunk re-ordering; Size instability across calls is a
// contract violation by the Lua object and is not detected here.
type ContentProvider struct {
	obj *Object
}

var _ engine.ContentProvider = (*ContentProvider)(nil)

// Size returns the total content length in bytes.
func (p *ContentProvider) Size() (uint64, error) {
	return callUint64(p.obj, "get_size")
}

// Feed returns the next content chunk. An empty chunk signals end of stream.
func (p *ContentProvider) Feed() ([]byte, error) {
	return callBytes(p.obj, "feed")
}
