package core

import "errors"

// Diagnostics reported by the mutation engine. The document is always left
// unchanged when one of these is returned.
var (
	ErrNotFound      = errors.New("node not found")
	ErrNotContainer  = errors.New("target is not a container")
	ErrOutOfRange    = errors.New("index out of range")
	ErrCycle         = errors.New("move would create a cycle")
	ErrRootImmutable = errors.New("root node cannot be deleted or moved")
	ErrDuplicateID   = errors.New("duplicate node id")
	ErrInvalidAction = errors.New("invalid action")
	ErrNoop          = errors.New("no change")
)

// Import and storage errors.
var (
	ErrMissingRoot    = errors.New("page has no root")
	ErrMissingTitle   = errors.New("page has no title")
	ErrBadRoot        = errors.New("page root id must be \"" + RootID + "\"")
	ErrProjectMissing = errors.New("project not found")
	ErrReadOnly       = errors.New("repository is in read-only mode")
	ErrInvalidID      = errors.New("invalid project id")
)
