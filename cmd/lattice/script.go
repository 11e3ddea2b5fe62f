package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/lattice/pkg/core"
	"github.com/aretw0/lattice/pkg/document"
	"github.com/aretw0/lattice/pkg/drop"
	"github.com/aretw0/lattice/pkg/editor"
	"gopkg.in/yaml.v3"
)

// script is a batch of editing steps read by the apply command.
//
//	steps:
//	  - op: insert
//	    type: Button
//	    parent: root
//	    as: cta
//	  - op: props
//	    id: $cta
//	    props: {children: "Buy now"}
//	  - op: undo
type script struct {
	Steps []step `yaml:"steps"`
}

// step is one entry of a script. Which fields apply depends on Op. Ids
// starting with '$' refer to the id generated by an earlier insert or drop
// step that declared the alias with 'as'. Aliases cannot contain '-'.
type step struct {
	Op      string             `yaml:"op"`
	ID      string             `yaml:"id,omitempty"`
	Type    core.ComponentType `yaml:"type,omitempty"`
	Name    string             `yaml:"name,omitempty"`
	Parent  string             `yaml:"parent,omitempty"`
	Index   *int               `yaml:"index,omitempty"`
	From    int                `yaml:"from,omitempty"`
	To      int                `yaml:"to,omitempty"`
	Props   core.Props         `yaml:"props,omitempty"`
	Events  core.Events        `yaml:"events,omitempty"`
	Title   string             `yaml:"title,omitempty"`
	Key     string             `yaml:"key,omitempty"`
	Value   any                `yaml:"value,omitempty"`
	Active  string             `yaml:"active,omitempty"`
	Over    []string           `yaml:"over,omitempty"`
	Palette core.ComponentType `yaml:"palette,omitempty"`
	As      string             `yaml:"as,omitempty"`
	// Optional steps may be rejected without failing the script.
	Optional bool `yaml:"optional,omitempty"`
}

var errUnknownOp = errors.New("unknown op")

// parseScript decodes a YAML (or JSON) script. Unknown fields are errors.
func parseScript(r io.Reader) (script, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return script{}, err
	}
	var s script
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return script{}, fmt.Errorf("invalid script: %w", err)
	}
	return s, nil
}

// stepResult reports what a step did.
type stepResult struct {
	Step    int
	Op      string
	Detail  string
	Skipped error
}

func (r stepResult) String() string {
	switch {
	case r.Skipped != nil:
		return fmt.Sprintf("%3d %-8s skipped: %v", r.Step, r.Op, r.Skipped)
	case r.Detail != "":
		return fmt.Sprintf("%3d %-8s %s", r.Step, r.Op, r.Detail)
	}
	return fmt.Sprintf("%3d %s", r.Step, r.Op)
}

// runner executes script steps against a session.
type runner struct {
	session *editor.Session
	aliases map[string]string
}

func newRunner(s *editor.Session) *runner {
	return &runner{session: s, aliases: make(map[string]string)}
}

func (r *runner) ref(id string) (string, error) {
	name, ok := strings.CutPrefix(id, "$")
	if !ok {
		return id, nil
	}
	resolved, ok := r.aliases[name]
	if !ok {
		return "", fmt.Errorf("undefined alias $%s", name)
	}
	return resolved, nil
}

// run executes every step in order. It stops at the first rejected step
// that is not optional; the session keeps the steps applied so far.
func (r *runner) run(s script) ([]stepResult, error) {
	results := make([]stepResult, 0, len(s.Steps))
	for i, st := range s.Steps {
		res := stepResult{Step: i + 1, Op: st.Op}
		detail, err := r.step(st)
		if err != nil {
			if !st.Optional || errors.Is(err, errUnknownOp) {
				return results, fmt.Errorf("step %d (%s): %w", i+1, st.Op, err)
			}
			res.Skipped = err
		}
		res.Detail = detail
		results = append(results, res)
	}
	return results, nil
}

func (r *runner) step(st step) (string, error) {
	switch st.Op {
	case "undo":
		if !r.session.Undo() {
			return "", errors.New("nothing to undo")
		}
		return "", nil
	case "redo":
		if !r.session.Redo() {
			return "", errors.New("nothing to redo")
		}
		return "", nil
	case "reset":
		r.session.Reset()
		return "", nil
	case "drop":
		return r.drop(st)
	case "insert":
		return r.insert(st)
	}

	a, err := r.action(st)
	if err != nil {
		return "", err
	}
	return "", r.session.Dispatch(a)
}

func (r *runner) insert(st step) (string, error) {
	node, ok := r.session.NewNode(st.Type)
	if !ok {
		return "", fmt.Errorf("unknown type %q", st.Type)
	}
	if st.Name != "" {
		node.Name = st.Name
	}
	for k, v := range st.Props {
		node.Props[k] = v
	}
	parent, err := r.ref(st.Parent)
	if err != nil {
		return "", err
	}
	index := document.End
	if st.Index != nil {
		index = *st.Index
	}
	if err := r.session.Dispatch(document.Insert{Node: node, ParentID: parent, Index: index}); err != nil {
		return "", err
	}
	if st.As != "" {
		r.aliases[st.As] = node.ID
	}
	return node.ID, nil
}

func (r *runner) drop(st step) (string, error) {
	doc := r.session.Document()
	activeID, err := r.ref(st.Active)
	if err != nil {
		return "", err
	}
	active := drop.ParseActive(doc, activeID, st.Palette)

	var candidates []drop.Over
	for _, raw := range st.Over {
		if name, ok := strings.CutPrefix(raw, "$"); ok {
			// Aliases may carry a zone suffix: $card-end.
			alias, suffix, _ := strings.Cut(name, "-")
			resolved, err := r.ref("$" + alias)
			if err != nil {
				return "", err
			}
			raw = resolved
			if suffix != "" {
				raw += "-" + suffix
			}
		}
		over, ok := drop.ParseOver(doc, raw)
		if !ok {
			return "", fmt.Errorf("unknown drop zone %q", raw)
		}
		candidates = append(candidates, over)
	}
	over, ok := drop.Pick(candidates...)
	if !ok {
		// No zone under the pointer cancels the gesture.
		_, err := r.session.DragEnd(active, nil)
		return "cancelled", err
	}

	a, err := r.session.DragEnd(active, &over)
	if err != nil {
		return "", err
	}
	if ins, ok := a.(document.Insert); ok && st.As != "" {
		r.aliases[st.As] = ins.Node.ID
	}
	return fmt.Sprintf("%s %s", a.Kind(), a.Key()), nil
}

// action maps the remaining ops to a document action.
func (r *runner) action(st step) (document.Action, error) {
	id, err := r.ref(st.ID)
	if err != nil {
		return nil, err
	}
	parent, err := r.ref(st.Parent)
	if err != nil {
		return nil, err
	}

	switch st.Op {
	case "props":
		return document.UpdateProps{ID: id, Props: st.Props}, nil
	case "events":
		return document.UpdateEvents{ID: id, Events: st.Events}, nil
	case "delete":
		return document.Delete{ID: id}, nil
	case "move":
		index := document.End
		if st.Index != nil {
			index = *st.Index
		}
		return document.Move{ID: id, NewParentID: parent, NewIndex: index}, nil
	case "reorder":
		return document.Reorder{ParentID: parent, OldIndex: st.From, NewIndex: st.To}, nil
	case "var":
		return document.SetVariable{Name: st.Key, Value: st.Value}, nil
	case "select":
		return document.Select{ID: id}, nil
	case "title":
		return document.SetTitle{Title: st.Title}, nil
	}
	return nil, fmt.Errorf("%w %q", errUnknownOp, st.Op)
}
