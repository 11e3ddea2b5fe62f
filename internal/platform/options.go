package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/lattice/pkg/core"
)

// Adapter names accepted by WithAdapter.
const (
	AdapterFS     = "fs"
	AdapterSQLite = "sqlite"
)

// options holds the internal configuration for a lattice workspace.
type options struct {
	repository  core.Repository
	logger      *slog.Logger
	adapter     string
	config      map[string]interface{}
	serializers map[string]any

	projectID     string
	historyLimit  int
	autosaveDelay time.Duration
	idPrefix      string
}

// Option defines a functional option for configuring lattice.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		repository:    nil,
		logger:        nil,
		adapter:       AdapterFS,
		config:        make(map[string]interface{}),
		serializers:   make(map[string]any),
		projectID:     core.DefaultProjectID,
		historyLimit:  -1, // editor default
		autosaveDelay: 0,  // editor default
	}
}

// WithSerializer registers a custom serializer for a specific extension.
// The serializer 's' must implement fs.Serializer; validation happens in Init.
func WithSerializer(ext string, s any) Option {
	return func(o *options) {
		o.serializers[ext] = s
	}
}

// WithAutoInit enables automatic initialization of the project directory (mkdir and git init).
func WithAutoInit(auto bool) Option {
	return func(o *options) {
		o.config["auto_init"] = auto
	}
}

// WithVersioning enables or disables version control (git) for the fs adapter.
// When not set, an existing .git directory decides.
func WithVersioning(enabled bool) Option {
	return func(o *options) {
		o.config["gitless"] = !enabled
	}
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.config["temp_dir"] = force
	}
}

// WithMustExist ensures the project directory must already exist.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.config["must_exist"] = must
	}
}

// WithLogger sets the logger for the repository and the editor session.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRepository injects a storage adapter. The named adapter is skipped.
func WithRepository(repo core.Repository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithAdapter selects the storage adapter by name ("fs" or "sqlite").
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithSystemDir sets the hidden directory of the fs adapter (default ".lattice").
func WithSystemDir(name string) Option {
	return func(o *options) {
		o.config["system_dir"] = name
	}
}

// WithFormat sets the file format of new fs projects (".json" or ".yaml").
func WithFormat(ext string) Option {
	return func(o *options) {
		o.config["format"] = ext
	}
}

// WithStrict keeps JSON numbers as json.Number to preserve large integers.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.config["strict"] = strict
	}
}

// WithWatcherErrorHandler registers a callback for errors of the fs watcher
// and background reconciliation, which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.config["watcher_error_handler"] = fn
	}
}

// WithReadOnly enables read-only mode.
// In this mode:
// 1. Save and Delete return core.ErrReadOnly.
// 2. Initialization (mkdir, git init, schema) is skipped.
// 3. The dev safety sandbox is bypassed (uses the real path).
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.config["read_only"] = enabled
	}
}

// WithDevSafety controls the sandbox used when running via `go run` or
// `go test`. By default (true) the project path is re-rooted into a
// temporary directory.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.config["dev_safety"] = enabled
	}
}

// WithProjectID sets the project the workspace loads and autosaves.
func WithProjectID(id string) Option {
	return func(o *options) {
		o.projectID = id
	}
}

// WithHistoryLimit bounds the undo stack. Zero means unbounded.
func WithHistoryLimit(n int) Option {
	return func(o *options) {
		o.historyLimit = n
	}
}

// WithAutosaveDelay sets the quiet period before a change is saved.
func WithAutosaveDelay(d time.Duration) Option {
	return func(o *options) {
		o.autosaveDelay = d
	}
}

// WithIDPrefix prefixes the ids of nodes created from the palette.
func WithIDPrefix(prefix string) Option {
	return func(o *options) {
		o.idPrefix = prefix
	}
}
