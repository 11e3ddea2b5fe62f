package fs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/lattice/pkg/core"
	"github.com/aretw0/lattice/pkg/git"
	"github.com/aretw0/lattice/pkg/tree"
)

// Defaults applied by NewRepository.
const (
	DefaultFormat    = ".json"
	DefaultSystemDir = ".lattice"
)

// Repository implements core.Repository using one file per project and,
// unless Gitless is set, a git commit per change.
type Repository struct {
	Path   string
	git    *git.Client
	cache  *cache
	config Config

	mu            sync.RWMutex
	serializers   map[string]Serializer
	readOnly      bool
	watcherActive bool
	lastReconcile *time.Time
}

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path      string
	AutoInit  bool
	Gitless   bool
	MustExist bool
	ReadOnly  bool
	// Strict keeps JSON numbers as json.Number.
	Strict bool
	// Format is the extension used for new projects (".json", ".yaml").
	Format       string
	SystemDir    string // e.g. ".lattice"
	Logger       *slog.Logger
	ErrorHandler func(error)
}

// Summary describes a stored project without its tree.
type Summary struct {
	ID       string    `json:"id"`
	File     string    `json:"file"`
	Title    string    `json:"title"`
	Nodes    int       `json:"nodes"`
	Modified time.Time `json:"modified"`
}

// Revision is one committed version of a project.
type Revision = git.Revision

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) *Repository {
	if config.Format == "" {
		config.Format = DefaultFormat
	}
	if !strings.HasPrefix(config.Format, ".") {
		config.Format = "." + config.Format
	}
	if config.SystemDir == "" {
		config.SystemDir = DefaultSystemDir
	}
	return &Repository{
		Path:        config.Path,
		git:         git.NewClient(config.Path, config.SystemDir+".lock", config.Logger),
		config:      config,
		cache:       newCache(config.Path, config.SystemDir),
		serializers: DefaultSerializers(config.Strict),
		readOnly:    config.ReadOnly,
	}
}

// RegisterSerializer adds or replaces the serializer for ext.
func (r *Repository) RegisterSerializer(ext string, s Serializer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.serializers[ext] = s
}

func (r *Repository) serializer(ext string) (Serializer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.serializers[ext]
	return s, ok
}

// extensions lists the registered formats, the configured one first.
func (r *Repository) extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.serializers))
	for ext := range r.serializers {
		if ext != r.config.Format {
			exts = append(exts, ext)
		}
	}
	sort.Strings(exts)
	if _, ok := r.serializers[r.config.Format]; ok {
		exts = append([]string{r.config.Format}, exts...)
	}
	return exts
}

func (r *Repository) logger() *slog.Logger {
	if r.config.Logger != nil {
		return r.config.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// Initialize performs the necessary setup for the repository (mkdir, git init).
// A read-only repository only checks that the directory exists.
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.MustExist || r.readOnly {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("project directory does not exist: %s", r.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("project path is not a directory: %s", r.Path)
		}
	} else {
		if err := os.MkdirAll(r.Path, 0755); err != nil {
			return fmt.Errorf("failed to create project directory: %w", err)
		}
	}

	if r.readOnly {
		return nil
	}

	if err := r.cache.Load(); err != nil {
		r.logger().Warn("summary cache unreadable", "error", err)
	}

	if r.config.Gitless {
		return nil
	}
	if !git.IsInstalled() {
		return fmt.Errorf("git is not installed")
	}

	wasNewRepo := false
	if !r.git.IsRepo() {
		if !r.config.AutoInit {
			return fmt.Errorf("path is not a git repository: %s", r.Path)
		}
		if err := r.git.Init(); err != nil {
			return fmt.Errorf("failed to git init: %w", err)
		}
		wasNewRepo = true
	}

	mod, err := r.ensureIgnore()
	if err != nil {
		return fmt.Errorf("failed to ensure .gitignore: %w", err)
	}
	if mod && wasNewRepo {
		unlock, err := r.git.Lock()
		if err != nil {
			return fmt.Errorf("failed to acquire git lock: %w", err)
		}
		defer unlock()
		if err := r.git.Add(".gitignore"); err != nil {
			return fmt.Errorf("failed to add .gitignore: %w", err)
		}
		if err := r.git.Commit(fmt.Sprintf("chore: configure %s ignore", r.config.SystemDir)); err != nil {
			return fmt.Errorf("failed to commit .gitignore: %w", err)
		}
	}
	return nil
}

// ensureIgnore adds the system directory and the lock file to .gitignore.
func (r *Repository) ensureIgnore() (bool, error) {
	ignorePath := filepath.Join(r.Path, ".gitignore")
	content, err := os.ReadFile(ignorePath)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}

	present := make(map[string]bool)
	for _, line := range strings.Split(string(content), "\n") {
		present[strings.TrimSpace(line)] = true
	}
	var missing []string
	for _, entry := range []string{r.config.SystemDir + "/", r.config.SystemDir + ".lock"} {
		if !present[entry] {
			missing = append(missing, entry)
		}
	}
	if len(missing) == 0 {
		return false, nil
	}

	f, err := os.OpenFile(ignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return false, err
	}
	defer f.Close()

	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		if _, err := f.WriteString("\n"); err != nil {
			return false, err
		}
	}
	if _, err := f.WriteString(strings.Join(missing, "\n") + "\n"); err != nil {
		return false, err
	}
	return true, nil
}

// locate returns the file name holding id, if any.
func (r *Repository) locate(id string) (string, bool) {
	for _, ext := range r.extensions() {
		name := id + ext
		if info, err := os.Stat(filepath.Join(r.Path, name)); err == nil && !info.IsDir() {
			return name, true
		}
	}
	return "", false
}

// Save writes the page atomically and commits it.
//
// An existing project keeps its file format; new projects use Config.Format.
// The commit message comes from core.ChangeReasonKey when set.
func (r *Repository) Save(ctx context.Context, id string, p core.Page) error {
	if r.readOnly {
		return core.ErrReadOnly
	}
	if err := core.ValidateProjectID(id); err != nil {
		return err
	}

	filename, exists := r.locate(id)
	if !exists {
		filename = id + r.config.Format
	}
	s, ok := r.serializer(filepath.Ext(filename))
	if !ok {
		return fmt.Errorf("no serializer for %s", filepath.Ext(filename))
	}

	data, err := s.Serialize(p)
	if err != nil {
		return fmt.Errorf("failed to serialize project: %w", err)
	}

	fullPath := filepath.Join(r.Path, filename)
	if err := writeFileAtomic(fullPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if info, err := os.Stat(fullPath); err == nil {
		r.cache.Set(filename, &summaryEntry{ID: id, Title: p.Title, Nodes: tree.Count(p.Root), LastModified: info.ModTime()})
	}

	if r.config.Gitless {
		return nil
	}

	unlock, err := r.git.Lock()
	if err != nil {
		return fmt.Errorf("failed to acquire git lock: %w", err)
	}
	defer unlock()

	if err := r.git.Add(filename); err != nil {
		return fmt.Errorf("failed to git add: %w", err)
	}
	msg := "save " + id
	if val, ok := ctx.Value(core.ChangeReasonKey).(string); ok && val != "" {
		msg = val
	}
	if err := r.git.Commit(msg); err != nil {
		return fmt.Errorf("failed to git commit: %w", err)
	}

	r.logger().Debug("project saved", "id", id, "file", filename)
	return nil
}

// Get reads the page stored under id.
func (r *Repository) Get(ctx context.Context, id string) (core.Page, error) {
	if err := core.ValidateProjectID(id); err != nil {
		return core.Page{}, err
	}
	filename, ok := r.locate(id)
	if !ok {
		return core.Page{}, fmt.Errorf("%w: %s", core.ErrProjectMissing, id)
	}
	return r.read(filename)
}

func (r *Repository) read(filename string) (core.Page, error) {
	s, ok := r.serializer(filepath.Ext(filename))
	if !ok {
		return core.Page{}, fmt.Errorf("no serializer for %s", filepath.Ext(filename))
	}
	f, err := os.Open(filepath.Join(r.Path, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return core.Page{}, fmt.Errorf("%w: %s", core.ErrProjectMissing, filename)
		}
		return core.Page{}, err
	}
	defer f.Close()

	p, err := s.Parse(f)
	if err != nil {
		return core.Page{}, fmt.Errorf("failed to parse project %s: %w", filename, err)
	}
	return p, nil
}

// projectFiles returns the project files at the top of the directory whose
// id matches pattern, keyed by file name. An empty pattern matches all.
func (r *Repository) projectFiles(pattern string) (map[string]string, error) {
	if pattern == "" {
		pattern = "*"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}

	exts := r.extensions()
	for i := range exts {
		exts[i] = strings.TrimPrefix(exts[i], ".")
	}
	glob := "*.{" + strings.Join(exts, ",") + "}"

	matches, err := doublestar.Glob(os.DirFS(r.Path), glob, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	files := make(map[string]string, len(matches))
	for _, name := range matches {
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, TempFilePrefix) {
			continue
		}
		id := strings.TrimSuffix(name, filepath.Ext(name))
		if core.ValidateProjectID(id) != nil {
			continue
		}
		if ok, _ := doublestar.Match(pattern, id); !ok {
			continue
		}
		// The configured format wins when the same id exists twice.
		if prev, dup := files[id]; dup && filepath.Ext(prev) == r.config.Format {
			continue
		}
		files[id] = name
	}

	byFile := make(map[string]string, len(files))
	for id, name := range files {
		byFile[name] = id
	}
	return byFile, nil
}

// List returns the sorted ids of all stored projects.
func (r *Repository) List(ctx context.Context) ([]string, error) {
	files, err := r.projectFiles("")
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(files))
	for _, id := range files {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Summaries returns title and node count for projects matching pattern,
// parsing only files changed since the cached summary.
func (r *Repository) Summaries(ctx context.Context, pattern string) ([]Summary, error) {
	files, err := r.projectFiles(pattern)
	if err != nil {
		return nil, err
	}

	keep := make(map[string]bool, len(files))
	out := make([]Summary, 0, len(files))
	for name, id := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		keep[name] = true
		info, err := os.Stat(filepath.Join(r.Path, name))
		if err != nil {
			continue
		}
		entry, ok := r.cache.Get(name, info.ModTime())
		if !ok {
			p, err := r.read(name)
			if err != nil {
				r.logger().Warn("skipping unreadable project", "file", name, "error", err)
				continue
			}
			entry = &summaryEntry{ID: id, Title: p.Title, Nodes: tree.Count(p.Root), LastModified: info.ModTime()}
			r.cache.Set(name, entry)
		}
		out = append(out, Summary{ID: id, File: name, Title: entry.Title, Nodes: entry.Nodes, Modified: entry.LastModified})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	if pattern == "" || pattern == "*" {
		r.cache.Prune(keep)
	}
	if !r.readOnly {
		if err := r.cache.Save(); err != nil {
			r.logger().Warn("failed to save summary cache", "error", err)
		}
	}
	return out, nil
}

// Delete removes a project. Missing projects wrap core.ErrProjectMissing.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if r.readOnly {
		return core.ErrReadOnly
	}
	if err := core.ValidateProjectID(id); err != nil {
		return err
	}
	filename, ok := r.locate(id)
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrProjectMissing, id)
	}
	r.cache.Delete(filename)
	fullPath := filepath.Join(r.Path, filename)

	if r.config.Gitless {
		if err := os.Remove(fullPath); err != nil {
			return fmt.Errorf("failed to remove file: %w", err)
		}
		return nil
	}

	unlock, err := r.git.Lock()
	if err != nil {
		return fmt.Errorf("failed to acquire git lock: %w", err)
	}
	defer unlock()

	if err := r.git.Rm(filename); err != nil {
		return fmt.Errorf("failed to git rm: %w", err)
	}
	// Untracked files survive git rm --ignore-unmatch.
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file: %w", err)
	}

	msg := "delete " + id
	if val, ok := ctx.Value(core.ChangeReasonKey).(string); ok && val != "" {
		msg = val
	}
	if err := r.git.Commit(msg); err != nil {
		return fmt.Errorf("failed to git commit: %w", err)
	}
	return nil
}

// ErrNoHistory is returned by Revisions and GetRevision in gitless mode.
var ErrNoHistory = errors.New("project history requires git")

// Revisions lists committed versions of a project, newest first.
func (r *Repository) Revisions(ctx context.Context, id string, limit int) ([]Revision, error) {
	if r.config.Gitless {
		return nil, ErrNoHistory
	}
	if err := core.ValidateProjectID(id); err != nil {
		return nil, err
	}
	filename, ok := r.locate(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrProjectMissing, id)
	}
	return r.git.Log(filename, limit)
}

// GetRevision reads a project as it was at revision rev.
func (r *Repository) GetRevision(ctx context.Context, id, rev string) (core.Page, error) {
	if r.config.Gitless {
		return core.Page{}, ErrNoHistory
	}
	if err := core.ValidateProjectID(id); err != nil {
		return core.Page{}, err
	}
	filename, ok := r.locate(id)
	if !ok {
		return core.Page{}, fmt.Errorf("%w: %s", core.ErrProjectMissing, id)
	}
	s, _ := r.serializer(filepath.Ext(filename))
	data, err := r.git.Show(rev, filename)
	if err != nil {
		return core.Page{}, fmt.Errorf("failed to read %s at %s: %w", id, rev, err)
	}
	p, err := s.Parse(bytes.NewReader(data))
	if err != nil {
		return core.Page{}, fmt.Errorf("failed to parse project %s at %s: %w", id, rev, err)
	}
	return p, nil
}

// Reconcile compares the directory with the summary cache and returns the
// changes made behind the repository's back. The cache is updated.
func (r *Repository) Reconcile(ctx context.Context) ([]core.Event, error) {
	files, err := r.projectFiles("")
	if err != nil {
		return nil, err
	}
	defer r.recordReconcile()

	known := make(map[string]*summaryEntry)
	r.cache.Range(func(file string, e *summaryEntry) bool {
		known[file] = e
		return true
	})

	now := time.Now().Unix()
	var events []core.Event
	for name, id := range files {
		info, err := os.Stat(filepath.Join(r.Path, name))
		if err != nil {
			continue
		}
		prev, seen := known[name]
		delete(known, name)
		if seen && prev.LastModified.Equal(info.ModTime()) {
			continue
		}

		entry := &summaryEntry{ID: id, LastModified: info.ModTime()}
		if p, err := r.read(name); err == nil {
			entry.Title, entry.Nodes = p.Title, tree.Count(p.Root)
		}
		r.cache.Set(name, entry)

		typ := core.EventModify
		if !seen {
			typ = core.EventCreate
		}
		events = append(events, core.Event{Type: typ, ID: id, Timestamp: now})
	}
	for name, e := range known {
		r.cache.Delete(name)
		events = append(events, core.Event{Type: core.EventDelete, ID: e.ID, Timestamp: now})
	}

	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	if !r.readOnly {
		if err := r.cache.Save(); err != nil {
			r.logger().Warn("failed to save summary cache", "error", err)
		}
	}
	return events, nil
}

// IsGitInstalled checks if git is available in the system path.
func IsGitInstalled() bool {
	return git.IsInstalled()
}
