package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lattice/pkg/core"
	"github.com/aretw0/lattice/pkg/drop"
	"github.com/aretw0/lattice/pkg/editor"
)

func newTestSession() *editor.Session {
	f := drop.DefaultFactory()
	f.NewID = drop.Sequence("n-")
	return editor.New(editor.WithFactory(f))
}

func runScript(t *testing.T, s *editor.Session, src string) ([]stepResult, error) {
	t.Helper()
	sc, err := parseScript(strings.NewReader(src))
	require.NoError(t, err)
	return newRunner(s).run(sc)
}

func TestParseScript(t *testing.T) {
	t.Run("Unknown Field", func(t *testing.T) {
		_, err := parseScript(strings.NewReader("steps:\n  - op: undo\n    bogus: 1\n"))
		assert.Error(t, err)
	})

	t.Run("Empty", func(t *testing.T) {
		s, err := parseScript(strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, s.Steps)
	})

	t.Run("JSON", func(t *testing.T) {
		s, err := parseScript(strings.NewReader(`{"steps":[{"op":"title","title":"Hi"}]}`))
		require.NoError(t, err)
		require.Len(t, s.Steps, 1)
		assert.Equal(t, "Hi", s.Steps[0].Title)
	})
}

func TestRunner(t *testing.T) {
	t.Run("Insert With Alias", func(t *testing.T) {
		s := newTestSession()
		_, err := runScript(t, s, `
steps:
  - {op: insert, type: Container, as: hero}
  - {op: insert, type: Button, parent: $hero, as: cta, props: {children: Go}}
  - {op: props, id: $cta, props: {type: link}}
`)
		require.NoError(t, err)

		doc := s.Document()
		cta, ok := doc.Find("n-2")
		require.True(t, ok)
		assert.Equal(t, "Go", cta.Props["children"])
		assert.Equal(t, "link", cta.Props["type"])
		parent, _ := doc.ParentOf("n-2")
		assert.Equal(t, "n-1", parent)
	})

	t.Run("Undo And Redo", func(t *testing.T) {
		s := newTestSession()
		before := s.Document().Index().Len()
		_, err := runScript(t, s, `
steps:
  - {op: insert, type: Text}
  - {op: undo}
  - {op: redo}
  - {op: undo}
`)
		require.NoError(t, err)
		assert.Equal(t, before, s.Document().Index().Len())
		assert.True(t, s.CanRedo())
	})

	t.Run("Rejected Step Stops", func(t *testing.T) {
		s := newTestSession()
		results, err := runScript(t, s, `
steps:
  - {op: title, title: First}
  - {op: delete, id: ghost}
  - {op: title, title: Never}
`)
		require.ErrorIs(t, err, core.ErrNotFound)
		assert.Len(t, results, 1)
		assert.Equal(t, "First", s.Document().Title)
	})

	t.Run("Optional Step Is Skipped", func(t *testing.T) {
		s := newTestSession()
		results, err := runScript(t, s, `
steps:
  - {op: delete, id: root, optional: true}
  - {op: title, title: Kept}
`)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.ErrorIs(t, results[0].Skipped, core.ErrRootImmutable)
		assert.Equal(t, "Kept", s.Document().Title)
	})

	t.Run("Unknown Op Fails Even When Optional", func(t *testing.T) {
		s := newTestSession()
		_, err := runScript(t, s, "steps:\n  - {op: explode, optional: true}\n")
		assert.ErrorIs(t, err, errUnknownOp)
	})

	t.Run("Undefined Alias", func(t *testing.T) {
		s := newTestSession()
		_, err := runScript(t, s, "steps:\n  - {op: delete, id: $nope}\n")
		assert.ErrorContains(t, err, "undefined alias")
	})

	t.Run("Drop Palette Into Alias Zone", func(t *testing.T) {
		s := newTestSession()
		results, err := runScript(t, s, `
steps:
  - {op: insert, type: Container, as: box}
  - {op: drop, active: new-Text-1, over: [$box-end, canvas-root], as: label}
  - {op: props, id: $label, props: {text: Hello}}
`)
		require.NoError(t, err)
		assert.Equal(t, "insert n-1", results[1].Detail)

		parent, ok := s.Document().ParentOf("n-2")
		require.True(t, ok)
		assert.Equal(t, "n-1", parent)
		n, _ := s.Document().Find("n-2")
		assert.Equal(t, "Hello", n.Props["text"])
	})

	t.Run("Drop Without Zone Cancels", func(t *testing.T) {
		s := newTestSession()
		results, err := runScript(t, s, "steps:\n  - {op: drop, active: new-Button-1}\n")
		require.NoError(t, err)
		assert.Equal(t, "cancelled", results[0].Detail)
		assert.False(t, s.CanUndo())
	})

	t.Run("Variables And Reorder", func(t *testing.T) {
		s := newTestSession()
		_, err := runScript(t, s, `
steps:
  - {op: insert, type: Text}
  - {op: insert, type: Button}
  - {op: reorder, parent: root, from: 2, to: 0}
  - {op: var, key: user, value: ada}
`)
		require.NoError(t, err)
		doc := s.Document()
		assert.Equal(t, "n-2", doc.Root.Children[0].ID)
		v, ok := doc.Variable("user")
		require.True(t, ok)
		assert.Equal(t, "ada", v)
	})
}
