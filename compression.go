package zimlua

import "github.com/meigma/zimlua/engine"

// CompressionTable maps small-integer compression codes to engine
// compression algorithms.
//
// Two tables exist because the code-to-algorithm assignment changed between
// engine generations: code 1 meant LZMA historically and Zstd in current
// engines. There is no default table; hosts that want to accept integer
// codes must pick one explicitly with [WithCompressionTable]. String codes
// ("none", "lzma", "zstd") are unambiguous and always accepted.
type CompressionTable uint8

const (
	compressionTableUnset CompressionTable = iota

	// CompressionTableLegacy maps 0 to None, 1 to Lzma, and 2 to Zstd.
	CompressionTableLegacy

	// CompressionTableModern maps 0 to None and both 1 and 2 to Zstd.
	CompressionTableModern
)

// Compression maps code through the table. Unknown codes map to
// [engine.CompressionNone] rather than failing.
func (t CompressionTable) Compression(code int) engine.Compression {
	switch t {
	case CompressionTableLegacy:
		switch code {
		case 1:
			return engine.CompressionLzma
		case 2:
			return engine.CompressionZstd
		}
	case CompressionTableModern:
		switch code {
		case 1, 2:
			return engine.CompressionZstd
		}
	}
	return engine.CompressionNone
}

// ParseCompression maps a textual compression name to an algorithm.
func ParseCompression(name string) (engine.Compression, bool) {
	switch name {
	case "none":
		return engine.CompressionNone, true
	case "lzma":
		return engine.CompressionLzma, true
	case "zstd":
		return engine.CompressionZstd, true
	}
	return engine.CompressionNone, false
}
