package strictmodel

import (
	"log/slog"
	"sync"
)

// DefaultDiscriminatorField is the reserved input field used by shape-based
// resolution when neither the call nor the registry names another one.
const DefaultDiscriminatorField = "type"

// Options bundles coercion, construction and registry behavior.
type Options struct {
	// StrictMode disables every string -> primitive conversion, timestamps
	// included. Only natively typed primitives are accepted.
	StrictMode bool
	// AllowStringCoercion enables textual parsing for numeric and boolean
	// kinds. Ignored when StrictMode is set.
	AllowStringCoercion bool
	// Frozen makes produced records (nested ones included) reject mutation.
	Frozen bool
	// CollectAllErrors walks the full input tree and reports every issue
	// instead of stopping at the first.
	CollectAllErrors bool
	// DiscriminatorField overrides the registry's discriminator field for
	// shape-based resolution. Empty means "use the registry's".
	DiscriminatorField string
	// OverwriteOnRegister lets Register replace an existing key instead of
	// failing with duplicate_key. Read by NewRegistry.
	OverwriteOnRegister bool
	// MaxDepth bounds the nesting depth of the input walk (0 = unlimited).
	MaxDepth int
	// Logger receives registry diagnostics. nil disables logging.
	Logger *slog.Logger
}

// stringCoercion reports whether textual numeric/boolean parsing is enabled.
func (o Options) stringCoercion() bool { return o.AllowStringCoercion && !o.StrictMode }

// logger returns a usable logger, discarding output when none is configured.
func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return discardLogger
}

var discardLogger = slog.New(slog.DiscardHandler)

var (
	defaultOptsMu sync.RWMutex
	defaultOpts   Options
)

// SetDefaultOptions replaces the process-wide options used when a call
// supplies none.
func SetDefaultOptions(o Options) {
	defaultOptsMu.Lock()
	defaultOpts = o
	defaultOptsMu.Unlock()
}

// DefaultOptions returns the process-wide default options.
func DefaultOptions() Options {
	defaultOptsMu.RLock()
	defer defaultOptsMu.RUnlock()
	return defaultOpts
}

// pickOptions returns the last element of opts, or the process-wide default.
func pickOptions(opts []Options) Options {
	if len(opts) > 0 {
		return opts[len(opts)-1]
	}
	return DefaultOptions()
}
