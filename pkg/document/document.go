// Package document implements the editable page document and the mutation
// engine that transforms it.
//
// A Document is a value. Every operation returns a new Document and leaves
// its receiver untouched, sharing every subtree that did not change. Failed
// operations return the receiver unchanged together with a diagnostic error
// from the core package; callers that only care about the resulting state
// may ignore it.
package document

import (
	"fmt"

	"github.com/aretw0/lattice/pkg/core"
	"github.com/aretw0/lattice/pkg/tree"
)

// Document is the full editable state: page tree, selection and variables,
// plus the parent index kept in sync with the tree.
type Document struct {
	Title      string
	Root       *core.Node
	SelectedID string
	Variables  map[string]any

	index tree.Index
}

// FromPage validates an imported page and builds a document from a private
// copy of it. Selection is empty and variables are cleared.
func FromPage(p core.Page) (Document, error) {
	if err := p.Validate(); err != nil {
		return Document{}, err
	}
	if err := tree.VerifyTree(p.Root); err != nil {
		return Document{}, err
	}
	root := p.Root.Clone()
	return Document{
		Title:     p.Title,
		Root:      root,
		Variables: map[string]any{},
		index:     tree.Build(root),
	}, nil
}

// Page returns a JSON-compatible snapshot of the title and tree. The
// returned tree is a deep copy the caller may keep or modify.
func (d Document) Page() core.Page {
	return core.Page{Title: d.Title, Root: d.Root.Clone()}
}

// Index returns the parent index. It must be treated as read-only.
func (d Document) Index() tree.Index {
	return d.index
}

// Find returns the node with the given id.
func (d Document) Find(id string) (*core.Node, bool) {
	return tree.Lookup(d.Root, d.index, id)
}

// ParentOf returns the parent id of id ("" for the root).
func (d Document) ParentOf(id string) (string, bool) {
	return d.index.ParentOf(id)
}

// Selected returns the selected node, if any.
func (d Document) Selected() (*core.Node, bool) {
	if d.SelectedID == "" {
		return nil, false
	}
	return d.Find(d.SelectedID)
}

// Verify checks that the tree and the index agree.
func (d Document) Verify() error {
	if err := tree.Verify(d.Root, d.index); err != nil {
		return err
	}
	if d.SelectedID != "" && !d.index.Has(d.SelectedID) {
		return fmt.Errorf("%w: selection %s is not in the tree", tree.ErrInvariant, d.SelectedID)
	}
	return nil
}

// Variable returns the value stored under key.
func (d Document) Variable(key string) (any, bool) {
	v, ok := d.Variables[key]
	return v, ok
}
