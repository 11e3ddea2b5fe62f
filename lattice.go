package lattice

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/lattice/internal/platform"
	"github.com/aretw0/lattice/pkg/core"
)

// --- Types ---

// Workspace is an editing session bound to one stored project.
type Workspace = platform.Workspace

// FileConfig is the content of a lattice.yaml project file.
type FileConfig = platform.FileConfig

// --- Configuration ---

// Option defines a functional option for configuring lattice.
type Option = platform.Option

// Adapter names accepted by WithAdapter.
const (
	AdapterFS     = platform.AdapterFS
	AdapterSQLite = platform.AdapterSQLite
)

// ConfigFileName is the project file that marks a lattice root.
const ConfigFileName = platform.ConfigFileName

// WithAutoInit enables automatic initialization of the store (mkdir, git init).
func WithAutoInit(auto bool) Option {
	return platform.WithAutoInit(auto)
}

// WithVersioning enables or disables git versioning of the fs adapter.
func WithVersioning(enabled bool) Option {
	return platform.WithVersioning(enabled)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithMustExist ensures the store must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithLogger sets the logger for the repository and the editor session.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithRepository allows injecting a custom storage adapter.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithAdapter selects the storage adapter by name ("fs" or "sqlite").
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithSystemDir sets the hidden directory of the fs adapter.
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithFormat sets the file format of new fs projects (".json" or ".yaml").
func WithFormat(ext string) Option {
	return platform.WithFormat(ext)
}

// WithStrict keeps JSON numbers exact.
func WithStrict(strict bool) Option {
	return platform.WithStrict(strict)
}

// WithReadOnly opens the store without write access.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithDevSafety controls the temp-directory sandbox used under `go run`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithWatcherErrorHandler receives errors of the background watcher.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// WithSerializer registers a custom fs serializer for an extension.
func WithSerializer(ext string, s any) Option {
	return platform.WithSerializer(ext, s)
}

// WithProjectID sets the project a workspace loads and autosaves.
func WithProjectID(id string) Option {
	return platform.WithProjectID(id)
}

// WithHistoryLimit bounds the undo stack. Zero means unbounded.
func WithHistoryLimit(n int) Option {
	return platform.WithHistoryLimit(n)
}

// WithAutosaveDelay sets the quiet period before a change is saved.
func WithAutosaveDelay(d time.Duration) Option {
	return platform.WithAutosaveDelay(d)
}

// WithIDPrefix prefixes the ids of nodes created from the palette.
func WithIDPrefix(prefix string) Option {
	return platform.WithIDPrefix(prefix)
}

// --- Factory ---

// New creates a project service.
func New(path string, opts ...Option) (*core.Service, error) {
	return platform.New(path, opts...)
}

// Init initializes a repository explicitly.
func Init(path string, opts ...Option) (core.Repository, error) {
	return platform.Init(path, opts...)
}

// Open returns a workspace editing the configured project.
func Open(ctx context.Context, path string, opts ...Option) (*Workspace, error) {
	return platform.Open(ctx, path, opts...)
}

// --- Project Files ---

// LoadConfig reads lattice.yaml from dir.
func LoadConfig(dir string) (FileConfig, error) {
	return platform.LoadConfig(dir)
}

// WriteConfig writes lattice.yaml into dir.
func WriteConfig(dir string, cfg FileConfig) error {
	return platform.WriteConfig(dir, cfg)
}

// FindRoot looks upwards from startDir for a lattice root.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}

// --- Safety & Utils ---

// ResolveProjectPath determines the actual store path based on safety rules.
func ResolveProjectPath(userPath string, forceTemp bool) string {
	return platform.ResolveProjectPath(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// --- Change Reasons ---

const (
	ChangeTypeFeat     = platform.ChangeTypeFeat
	ChangeTypeFix      = platform.ChangeTypeFix
	ChangeTypeDocs     = platform.ChangeTypeDocs
	ChangeTypeStyle    = platform.ChangeTypeStyle
	ChangeTypeRefactor = platform.ChangeTypeRefactor
	ChangeTypeChore    = platform.ChangeTypeChore
)

// FormatChangeReason builds a Conventional Commit message.
func FormatChangeReason(ctype, scope, subject, body string) string {
	return platform.FormatChangeReason(ctype, scope, subject, body)
}

// WithChangeReason attaches a commit message to ctx for the next save.
func WithChangeReason(ctx context.Context, reason string) context.Context {
	return context.WithValue(ctx, core.ChangeReasonKey, platform.AppendFooter(reason))
}
