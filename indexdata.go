package zimlua

import "github.com/meigma/zimlua/engine"

// IndexData adapts a Lua index data object to the engine's indexing input
// contract.
type IndexData struct {
	obj *Object
}

var _ engine.IndexData = (*IndexData)(nil)

// HasIndexData reports whether the object actually carries index input.
func (d *IndexData) HasIndexData() (bool, error) {
	return callBool(d.obj, "has_indexdata")
}

// Title returns the title to index.
func (d *IndexData) Title() (string, error) {
	return callString(d.obj, "get_title")
}

// Content returns the text content to index.
func (d *IndexData) Content() (string, error) {
	return callString(d.obj, "get_content")
}

// Keywords returns the keywords to index.
func (d *IndexData) Keywords() (string, error) {
	return callString(d.obj, "get_keywords")
}

// WordCount returns the declared word count.
func (d *IndexData) WordCount() (uint32, error) {
	return callUint32(d.obj, "get_wordcount")
}

// GeoPosition returns the optional position. A missing get_geoposition
// method or a nil return both mean "no position".
func (d *IndexData) GeoPosition() (engine.GeoPosition, error) {
	ok, err := d.obj.hasCapability("get_geoposition")
	if err != nil {
		return engine.GeoPosition{}, err
	}
	if !ok {
		return engine.GeoPosition{}, nil
	}
	return callGeoPosition(d.obj, "get_geoposition")
}
