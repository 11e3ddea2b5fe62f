// Package sqlite stores projects as rows of a single SQLite table.
package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/introspection"
	_ "modernc.org/sqlite"

	"github.com/aretw0/lattice/pkg/adapters/fs"
	"github.com/aretw0/lattice/pkg/core"
)

// DefaultBusyTimeout is the PRAGMA busy_timeout applied on open, in milliseconds.
const DefaultBusyTimeout = 10_000

const schema = `CREATE TABLE IF NOT EXISTS projects (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	body       BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// Config holds the configuration for the SQLite repository.
type Config struct {
	// Path is the database file. ":memory:" keeps everything in memory.
	Path        string
	ReadOnly    bool
	BusyTimeout int
	Logger      *slog.Logger
}

// Repository implements core.Repository on top of database/sql with the
// pure-Go modernc.org/sqlite driver.
type Repository struct {
	config Config
	codec  fs.Serializer

	mu     sync.RWMutex
	db     *sql.DB
	saves  int
	opened time.Time
}

// NewRepository creates a repository. The database is opened by Initialize.
func NewRepository(config Config) *Repository {
	if config.BusyTimeout == 0 {
		config.BusyTimeout = DefaultBusyTimeout
	}
	return &Repository{config: config, codec: fs.NewJSONSerializer(false)}
}

func (r *Repository) logger() *slog.Logger {
	if r.config.Logger != nil {
		return r.config.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// Initialize opens the database, applies pragmas and creates the table.
// Calling it again is a no-op.
func (r *Repository) Initialize(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db != nil {
		return nil
	}

	memory := r.config.Path == ":memory:"
	if !memory && !r.config.ReadOnly {
		if err := os.MkdirAll(filepath.Dir(r.config.Path), 0o755); err != nil {
			return fmt.Errorf("sqlite: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", r.config.Path)
	if err != nil {
		return fmt.Errorf("sqlite: open: %w", err)
	}
	if memory {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", r.config.BusyTimeout),
		"PRAGMA synchronous = NORMAL",
	}
	if !memory {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	if r.config.ReadOnly {
		pragmas = append(pragmas, "PRAGMA query_only = ON")
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return fmt.Errorf("sqlite: %s: %w", p, err)
		}
	}

	if !r.config.ReadOnly {
		if _, err := db.ExecContext(ctx, schema); err != nil {
			db.Close()
			return fmt.Errorf("sqlite: exec schema: %w", err)
		}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("sqlite: ping: %w", err)
	}

	r.db = db
	r.opened = time.Now()
	r.logger().Debug("sqlite repository opened", "path", r.config.Path)
	return nil
}

// Close releases the database.
func (r *Repository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

var errNotInitialized = errors.New("sqlite: repository not initialized")

func (r *Repository) conn() (*sql.DB, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.db == nil {
		return nil, errNotInitialized
	}
	return r.db, nil
}

// Save upserts the page under id.
func (r *Repository) Save(ctx context.Context, id string, p core.Page) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	if err := core.ValidateProjectID(id); err != nil {
		return err
	}
	db, err := r.conn()
	if err != nil {
		return err
	}

	body, err := r.codec.Serialize(p)
	if err != nil {
		return fmt.Errorf("failed to serialize project: %w", err)
	}
	_, err = db.ExecContext(ctx, `INSERT INTO projects (id, title, body, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title, body = excluded.body, updated_at = excluded.updated_at`,
		id, p.Title, body, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("sqlite: save %s: %w", id, err)
	}

	r.mu.Lock()
	r.saves++
	r.mu.Unlock()
	r.logger().Debug("project saved", "id", id, "bytes", len(body))
	return nil
}

// Get reads the page stored under id.
func (r *Repository) Get(ctx context.Context, id string) (core.Page, error) {
	db, err := r.conn()
	if err != nil {
		return core.Page{}, err
	}
	var body []byte
	err = db.QueryRowContext(ctx, `SELECT body FROM projects WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Page{}, fmt.Errorf("%w: %s", core.ErrProjectMissing, id)
	}
	if err != nil {
		return core.Page{}, fmt.Errorf("sqlite: get %s: %w", id, err)
	}
	p, err := r.codec.Parse(bytes.NewReader(body))
	if err != nil {
		return core.Page{}, fmt.Errorf("failed to parse project %s: %w", id, err)
	}
	return p, nil
}

// List returns the sorted ids of all stored projects.
func (r *Repository) List(ctx context.Context) ([]string, error) {
	db, err := r.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT id FROM projects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: list: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Summary is one row of the projects table without its body.
type Summary struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Modified time.Time `json:"modified"`
}

// Summaries returns id, title and update time of every project, most
// recently updated first.
func (r *Repository) Summaries(ctx context.Context) ([]Summary, error) {
	db, err := r.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT id, title, updated_at FROM projects ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: summaries: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		var ms int64
		if err := rows.Scan(&s.ID, &s.Title, &ms); err != nil {
			return nil, fmt.Errorf("sqlite: summaries: %w", err)
		}
		s.Modified = time.UnixMilli(ms)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes a project. Missing projects wrap core.ErrProjectMissing.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	db, err := r.conn()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: delete %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", core.ErrProjectMissing, id)
	}
	return nil
}

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Path     string     `json:"path"`
	ReadOnly bool       `json:"read_only"`
	Open     bool       `json:"open"`
	OpenedAt *time.Time `json:"opened_at,omitempty"`
	Saves    int        `json:"saves"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := RepositoryState{
		Path:     r.config.Path,
		ReadOnly: r.config.ReadOnly,
		Open:     r.db != nil,
		Saves:    r.saves,
	}
	if r.db != nil {
		opened := r.opened
		s.OpenedAt = &opened
	}
	return s
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "sqlite-repository"
}

var _ core.Repository = (*Repository)(nil)
var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)
