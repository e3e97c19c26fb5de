package clausewitz

import (
	"log/slog"
	"runtime"
)

// Mode selects how much of the input Parse resolves.
type Mode uint8

const (
	// ModeFull parses the whole input into a typed tree.
	ModeFull Mode = iota
	// ModeShallow parses top-level entries only and captures every
	// top-level block as a document.Unparsed span.
	ModeShallow
	// ModeAuto uses ModeShallow for inputs larger than the shallow
	// threshold and ModeFull otherwise.
	ModeAuto
)

func (m Mode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModeShallow:
		return "shallow"
	case ModeAuto:
		return "auto"
	default:
		return "unknown"
	}
}

// ParseMode converts "full", "shallow" or "auto" to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "full", "":
		return ModeFull, true
	case "shallow":
		return ModeShallow, true
	case "auto":
		return ModeAuto, true
	default:
		return ModeFull, false
	}
}

const (
	// DefaultMaxDepth is the nesting bound applied when none is configured.
	DefaultMaxDepth = 50

	// DefaultShallowThreshold is the input size in bytes above which
	// ModeAuto switches to a shallow parse.
	DefaultShallowThreshold = 10_000_000

	// DefaultIndent is the indentation unit written per nesting level.
	DefaultIndent = "\t"
)

type options struct {
	mode             Mode
	maxDepth         int
	shallowThreshold int
	workers          int
	logger           *slog.Logger

	indent    string
	baseDepth int
}

func newOptions(opts []Option) options {
	o := options{
		mode:             ModeFull,
		maxDepth:         DefaultMaxDepth,
		shallowThreshold: DefaultShallowThreshold,
		indent:           DefaultIndent,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.workers <= 0 {
		o.workers = runtime.GOMAXPROCS(0)
	}
	return o
}

func (o options) log() *slog.Logger {
	if o.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.logger
}

// Option configures parsing, span resolution or serialization. Options
// that do not apply to an operation are ignored by it.
type Option func(*options)

// WithMode sets the parse mode. Default is ModeFull.
func WithMode(m Mode) Option {
	return func(o *options) {
		o.mode = m
	}
}

// WithMaxDepth sets the maximum block nesting depth. Values below 1 keep
// the default of 50.
func WithMaxDepth(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxDepth = n
		}
	}
}

// WithShallowThreshold sets the size in bytes above which ModeAuto parses
// shallowly. Default is 10,000,000.
func WithShallowThreshold(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.shallowThreshold = n
		}
	}
}

// WithWorkers bounds the number of spans Resolve parses at once. Default is
// GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithLogger sets a logger for debug messages. Nil disables logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithIndent sets the indentation unit used by Marshal. Default is a tab.
func WithIndent(unit string) Option {
	return func(o *options) {
		o.indent = unit
	}
}

// WithBaseDepth makes Marshal indent the top level as if it were nested n
// levels deep.
func WithBaseDepth(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.baseDepth = n
		}
	}
}
