package archive

import (
	"log/slog"
	"time"
)

// DefaultMaxDecompressed bounds the size of a decompressed archive stream.
const DefaultMaxDecompressed int64 = 4 << 30

// Tools names the external programs used for formats that are not decoded
// natively.
type Tools struct {
	DumpErofs string        // Default "dump.erofs"
	Isoinfo   string        // Default "isoinfo"
	Timeout   time.Duration // Per invocation, zero for the default
}

// Option configures [Open] and [Decode].
type Option func(*options)

type options struct {
	logger          *slog.Logger
	maxDecompressed int64
	tools           Tools
}

func newOptions(opts []Option) options {
	var o = options{
		logger:          slog.New(slog.DiscardHandler),
		maxDecompressed: DefaultMaxDecompressed,
		tools: Tools{
			DumpErofs: "dump.erofs",
			Isoinfo:   "isoinfo",
		},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMaxDecompressed limits the size of a decompressed stream. Values <= 0
// restore [DefaultMaxDecompressed].
func WithMaxDecompressed(limit int64) Option {
	return func(o *options) {
		if limit <= 0 {
			limit = DefaultMaxDecompressed
		}
		o.maxDecompressed = limit
	}
}

// WithTools overrides the external tool names. Empty fields keep their
// defaults.
func WithTools(tools Tools) Option {
	return func(o *options) {
		if tools.DumpErofs != "" {
			o.tools.DumpErofs = tools.DumpErofs
		}
		if tools.Isoinfo != "" {
			o.tools.Isoinfo = tools.Isoinfo
		}
		if tools.Timeout > 0 {
			o.tools.Timeout = tools.Timeout
		}
	}
}
