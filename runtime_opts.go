package zimlua

import "log/slog"

// Option configures a Runtime during Install.
type Option func(*Runtime)

// WithLogger sets a logger for debug-level bridge events.
// By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(rt *Runtime) {
		rt.logger = logger
	}
}

// WithModuleName sets the name of the global table the bridge is registered
// under (default: "zim").
func WithModuleName(name string) Option {
	return func(rt *Runtime) {
		if name != "" {
			rt.module = name
		}
	}
}

// WithCompressionTable selects the integer-code compression mapping.
//
// Without this option, creator configuration accepts only textual
// compression names; integer codes are rejected as ambiguous.
func WithCompressionTable(table CompressionTable) Option {
	return func(rt *Runtime) {
		rt.comp = table
	}
}
