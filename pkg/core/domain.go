// Package core holds the domain entities of the page builder and the
// contracts its storage collaborators implement.
package core

// RootID is the fixed id of every document's root node.
const RootID = "root"

// ComponentType tags the kind of a node.
type ComponentType string

const (
	TypePage      ComponentType = "Page"
	TypeContainer ComponentType = "Container"
	TypeButton    ComponentType = "Button"
	TypeText      ComponentType = "Text"
	TypeInput     ComponentType = "Input"
)

// IsContainer reports whether nodes of this type accept children.
// Unknown types are leaves.
func (t ComponentType) IsContainer() bool {
	return t == TypePage || t == TypeContainer
}

// Props is the property bag of a node. The reserved key "children"
// carries literal text content for leaf-like nodes.
type Props map[string]any

// Style holds CSS-style keys and values.
type Style map[string]any

// Events maps an event name (e.g. "onClick") to the actions it triggers, in order.
type Events map[string][]Action

// Node is one entry of the component schema tree.
//
// Nodes reachable from a document are never mutated in place: every edit
// produces new nodes along the changed path and shares the rest.
type Node struct {
	ID       string        `json:"id" yaml:"id"`
	Type     ComponentType `json:"type" yaml:"type"`
	Name     string        `json:"name" yaml:"name"`
	Props    Props         `json:"props" yaml:"props"`
	Style    Style         `json:"style,omitempty" yaml:"style,omitempty"`
	Children []*Node       `json:"children,omitempty" yaml:"children,omitempty"`
	Events   Events        `json:"events,omitempty" yaml:"events,omitempty"`
}

// ShallowCopy returns a copy of n whose children slice can be edited
// without affecting n. Props, style and events are shared.
func (n *Node) ShallowCopy() *Node {
	cp := *n
	if n.Children != nil {
		cp.Children = make([]*Node, len(n.Children))
		copy(cp.Children, n.Children)
	}
	return &cp
}

// Clone returns a deep copy of the subtree rooted at n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	cp := &Node{
		ID:    n.ID,
		Type:  n.Type,
		Name:  n.Name,
		Props: cloneMap(n.Props),
		Style: cloneMap(n.Style),
	}
	if n.Children != nil {
		cp.Children = make([]*Node, 0, len(n.Children))
		for _, c := range n.Children {
			cp.Children = append(cp.Children, c.Clone())
		}
	}
	if n.Events != nil {
		cp.Events = make(Events, len(n.Events))
		for name, actions := range n.Events {
			list := make([]Action, len(actions))
			for i, a := range actions {
				list[i] = Action{Type: a.Type, Config: cloneMap(a.Config)}
			}
			cp.Events[name] = list
		}
	}
	return cp
}

// cloneMap copies the top level of a map; nested JSON values are shared.
func cloneMap[M ~map[string]any](m M) M {
	if m == nil {
		return nil
	}
	cp := make(M, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

// Page is the persisted form of a document: a title and the node tree.
type Page struct {
	Title string `json:"title" yaml:"title"`
	Root  *Node  `json:"root" yaml:"root"`
}

// Validate rejects pages that cannot be loaded into an editor.
// It only checks the envelope; structural checks live in the tree package.
func (p Page) Validate() error {
	if p.Root == nil {
		return ErrMissingRoot
	}
	if p.Title == "" {
		return ErrMissingTitle
	}
	if p.Root.ID != RootID {
		return ErrBadRoot
	}
	return nil
}

// EventType represents the type of change in a project store.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change observed in a project store.
type Event struct {
	Type      EventType
	ID        string
	Timestamp int64 // Unix timestamp
}

// String implements lifecycle.Event.
func (e Event) String() string {
	return string(e.Type) + " " + e.ID
}
