package core

import (
	"context"
	"fmt"
)

// DefaultProjectID is the key the editor saves its single project under.
const DefaultProjectID = "current-project"

// ValidateProjectID accepts ids made of letters, digits, '.', '_' and '-'
// that do not start with a dot. Stores use ids as file names and keys.
func ValidateProjectID(id string) error {
	if id == "" || id[0] == '.' {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
		default:
			return fmt.Errorf("%w: %q", ErrInvalidID, id)
		}
	}
	return nil
}

// Repository defines the contract for storing and retrieving pages.
// Adhering to this interface keeps the editor independent of the
// underlying storage mechanism (filesystem, SQLite, ...).
type Repository interface {
	// Save persists a page under id. It creates if not exists, or updates if it does.
	Save(ctx context.Context, id string, p Page) error

	// Get retrieves the page stored under id.
	// Implementations return an error wrapping ErrProjectMissing when absent.
	Get(ctx context.Context, id string) (Page, error)

	// List returns the ids of all stored projects, sorted.
	List(ctx context.Context) ([]string, error)

	// Delete removes a project by id.
	Delete(ctx context.Context, id string) error

	// Initialize ensures the underlying storage is ready (directories, schema, git init).
	Initialize(ctx context.Context) error
}

// Watchable is implemented by repositories that report external changes.
type Watchable interface {
	// Watch emits events for projects whose id matches the glob pattern.
	// The channel is closed when ctx is done.
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}

type contextKey string

// ChangeReasonKey is the context key for passing specific change reasons (commit messages) during Save/Delete operations.
const ChangeReasonKey contextKey = "change_reason"
