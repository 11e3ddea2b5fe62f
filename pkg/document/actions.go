package document

import (
	"github.com/aretw0/lattice/pkg/core"
)

// Kind names a mutation. History policies are expressed in kinds.
type Kind string

const (
	KindInsert       Kind = "insert"
	KindUpdateProps  Kind = "updateProps"
	KindUpdateEvents Kind = "updateEvents"
	KindDelete       Kind = "delete"
	KindReorder      Kind = "reorderSiblings"
	KindMove         Kind = "moveToNewParent"
	KindReset        Kind = "reset"
	KindSetVariable  Kind = "setVariable"
	KindSetSelected  Kind = "setSelected"
	KindSetTitle     Kind = "setTitle"
	KindLoad         Kind = "load"
)

// Action is a named mutation request with a fixed payload. The set of
// implementations is closed to this package.
type Action interface {
	// Kind identifies the mutation.
	Kind() Kind
	// Key scopes the mutation for grouping, e.g. the edited node id.
	Key() string

	apply(d Document) (Document, error)
}

// Apply runs a on d. On failure d is returned unchanged with a diagnostic.
func Apply(d Document, a Action) (Document, error) {
	return a.apply(d)
}

// Insert adds Node under ParentID at Index (End appends).
type Insert struct {
	Node     *core.Node
	ParentID string
	Index    int
}

func (Insert) Kind() Kind                            { return KindInsert }
func (a Insert) Key() string                         { return a.ParentID }
func (a Insert) apply(d Document) (Document, error) { return d.Insert(a.Node, a.ParentID, a.Index) }

// UpdateProps merges Props into the node ID.
type UpdateProps struct {
	ID    string
	Props core.Props
}

func (UpdateProps) Kind() Kind                            { return KindUpdateProps }
func (a UpdateProps) Key() string                         { return a.ID }
func (a UpdateProps) apply(d Document) (Document, error) { return d.UpdateProps(a.ID, a.Props) }

// UpdateEvents replaces the events of node ID.
type UpdateEvents struct {
	ID     string
	Events core.Events
}

func (UpdateEvents) Kind() Kind                            { return KindUpdateEvents }
func (a UpdateEvents) Key() string                         { return a.ID }
func (a UpdateEvents) apply(d Document) (Document, error) { return d.UpdateEvents(a.ID, a.Events) }

// Delete removes node ID and its subtree.
type Delete struct {
	ID string
}

func (Delete) Kind() Kind                            { return KindDelete }
func (a Delete) Key() string                         { return a.ID }
func (a Delete) apply(d Document) (Document, error) { return d.Delete(a.ID) }

// Reorder moves a child of ParentID from OldIndex to NewIndex.
type Reorder struct {
	ParentID string
	OldIndex int
	NewIndex int
}

func (Reorder) Kind() Kind    { return KindReorder }
func (a Reorder) Key() string { return a.ParentID }
func (a Reorder) apply(d Document) (Document, error) {
	return d.ReorderSiblings(a.ParentID, a.OldIndex, a.NewIndex)
}

// Move relocates node ID under NewParentID at NewIndex.
type Move struct {
	ID          string
	NewParentID string
	NewIndex    int
}

func (Move) Kind() Kind    { return KindMove }
func (a Move) Key() string { return a.ID }
func (a Move) apply(d Document) (Document, error) {
	return d.MoveToNewParent(a.ID, a.NewParentID, a.NewIndex)
}

// Reset restores the initial template.
type Reset struct{}

func (Reset) Kind() Kind                          { return KindReset }
func (Reset) Key() string                         { return "" }
func (Reset) apply(d Document) (Document, error) { return d.Reset(), nil }

// SetVariable stores Value under the variable Name.
type SetVariable struct {
	Name  string
	Value any
}

func (SetVariable) Kind() Kind                            { return KindSetVariable }
func (a SetVariable) Key() string                         { return a.Name }
func (a SetVariable) apply(d Document) (Document, error) { return d.SetVariable(a.Name, a.Value) }

// Select changes the selection; an empty ID clears it.
type Select struct {
	ID string
}

func (Select) Kind() Kind                            { return KindSetSelected }
func (Select) Key() string                           { return "" }
func (a Select) apply(d Document) (Document, error) { return d.SetSelected(a.ID) }

// SetTitle renames the page.
type SetTitle struct {
	Title string
}

func (SetTitle) Kind() Kind                            { return KindSetTitle }
func (SetTitle) Key() string                           { return "" }
func (a SetTitle) apply(d Document) (Document, error) { return d.SetTitle(a.Title) }

// Load replaces the whole document with Page.
type Load struct {
	Page core.Page
}

func (Load) Kind() Kind  { return KindLoad }
func (Load) Key() string { return "" }
func (a Load) apply(d Document) (Document, error) {
	next, err := FromPage(a.Page)
	if err != nil {
		return d, err
	}
	return next, nil
}
