// Package drop turns a finished drag gesture into a single document action.
//
// Resolution is pure: it reads the document, never changes it, and returns
// at most one action for the caller to apply.
package drop

import (
	"fmt"

	"github.com/aretw0/lattice/pkg/core"
	"github.com/aretw0/lattice/pkg/document"
	"github.com/aretw0/lattice/pkg/tree"
)

// Active is the thing being dragged: a new component of Type from the
// palette, or the existing node ID.
type Active struct {
	Type core.ComponentType `json:"type,omitempty" yaml:"type,omitempty"`
	ID   string             `json:"id,omitempty" yaml:"id,omitempty"`
}

// IsPalette reports whether the gesture creates a new component.
func (a Active) IsPalette() bool {
	return a.Type != ""
}

func (a Active) String() string {
	if a.IsPalette() {
		return "new " + string(a.Type)
	}
	return a.ID
}

// Kind is the drop-zone kind under the pointer. Lower values are narrower
// targets and win when several zones match.
type Kind int

const (
	KindEmptyContainer Kind = iota
	KindContainerEnd
	KindContainerBody
	KindCanvas
	KindSibling
)

var kindNames = [...]string{"empty", "end", "body", "canvas", "sibling"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	for i, n := range kindNames {
		if n == s {
			return Kind(i), true
		}
	}
	return 0, false
}

// Over is the drop zone under the pointer. TargetID is the container for
// the three container zones, the sibling node for KindSibling and the root
// for KindCanvas.
type Over struct {
	Kind     Kind
	TargetID string
}

func (o Over) String() string {
	return o.Kind.String() + ":" + o.TargetID
}

// Pick chooses among zones that match the same pointer position, preferring
// the narrowest kind. Ties keep the first candidate.
func Pick(candidates ...Over) (Over, bool) {
	if len(candidates) == 0 {
		return Over{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Kind < best.Kind {
			best = c
		}
	}
	return best, true
}

// placement is where a drop lands: an index in the children of parentID.
type placement struct {
	parentID string
	index    int
}

// locate maps an over zone to a placement in d. It fails when the zone's
// target no longer resolves, which happens when a drop races a delete.
func locate(d document.Document, over Over) (placement, bool) {
	switch over.Kind {
	case KindCanvas:
		return placement{core.RootID, len(d.Root.Children)}, true
	case KindEmptyContainer, KindContainerEnd, KindContainerBody:
		c, ok := d.Find(over.TargetID)
		if !ok || !c.Type.IsContainer() {
			return placement{}, false
		}
		if over.Kind == KindEmptyContainer {
			return placement{c.ID, 0}, true
		}
		return placement{c.ID, len(c.Children)}, true
	case KindSibling:
		parentID, ok := d.ParentOf(over.TargetID)
		if !ok || parentID == "" {
			return placement{}, false
		}
		parent, ok := d.Find(parentID)
		if !ok {
			return placement{}, false
		}
		return placement{parentID, tree.IndexOf(parent, over.TargetID)}, true
	}
	return placement{}, false
}

// Resolve interprets a drag that ended with active over the zone over. It
// returns the one action to apply, or false when the drop is invalid: an
// unknown palette type, a target that no longer exists, a drop onto the
// dragged node itself or into its own subtree.
func Resolve(d document.Document, active Active, over Over, f Factory) (document.Action, bool) {
	if active.IsPalette() {
		at, ok := locate(d, over)
		if !ok {
			return nil, false
		}
		node, ok := f.Node(active.Type)
		if !ok {
			return nil, false
		}
		return document.Insert{Node: node, ParentID: at.parentID, Index: at.index}, true
	}

	if active.ID == "" || active.ID == over.TargetID {
		return nil, false
	}
	oldParentID, ok := d.ParentOf(active.ID)
	if !ok || oldParentID == "" {
		return nil, false
	}
	at, ok := locate(d, over)
	if !ok {
		return nil, false
	}
	if d.Index().IsAncestor(active.ID, at.parentID) {
		return nil, false
	}

	if over.Kind == KindSibling && at.parentID == oldParentID {
		parent, _ := d.Find(oldParentID)
		return document.Reorder{
			ParentID: oldParentID,
			OldIndex: tree.IndexOf(parent, active.ID),
			NewIndex: at.index,
		}, true
	}
	return document.Move{ID: active.ID, NewParentID: at.parentID, NewIndex: at.index}, true
}
