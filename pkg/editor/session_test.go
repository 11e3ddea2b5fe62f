package editor

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lattice/pkg/core"
	"github.com/aretw0/lattice/pkg/document"
	"github.com/aretw0/lattice/pkg/drop"
	"github.com/aretw0/lattice/pkg/history"
)

func newTestSession(opts ...Option) *Session {
	base := []Option{WithFactory(drop.Factory{Palette: drop.DefaultPalette(), NewID: drop.Sequence("n")})}
	return New(append(base, opts...)...)
}

func TestSession_StartsFromTemplate(t *testing.T) {
	s := newTestSession()
	d := s.Document()
	assert.Equal(t, document.DefaultTitle, d.Title)
	require.NoError(t, d.Verify())
	assert.False(t, s.CanUndo())

	blank := newTestSession(WithDocument(document.Empty("blank")))
	assert.Equal(t, "blank", blank.Document().Title)
}

func TestSession_UndoRedoRoundTrip(t *testing.T) {
	s := newTestSession()
	before := s.Document()

	require.NoError(t, s.Dispatch(document.UpdateProps{ID: "2", Props: core.Props{"text": "Changed"}}))
	after := s.Document()

	require.True(t, s.Undo())
	assert.Equal(t, before, s.Document())

	require.True(t, s.Redo())
	assert.Equal(t, after, s.Document())

	assert.False(t, s.Redo())
}

func TestSession_GroupsConsecutivePropEdits(t *testing.T) {
	s := newTestSession()
	before := s.Document()

	require.NoError(t, s.Dispatch(document.UpdateProps{ID: "2", Props: core.Props{"text": "H"}}))
	require.NoError(t, s.Dispatch(document.UpdateProps{ID: "2", Props: core.Props{"text": "He"}}))
	require.NoError(t, s.Dispatch(document.UpdateProps{ID: "2", Props: core.Props{"text": "Hey"}}))

	state := s.State().(SessionState)
	assert.Equal(t, 1, state.Undo)

	require.True(t, s.Undo())
	assert.Equal(t, before, s.Document())
	assert.False(t, s.CanUndo())
}

func TestSession_SelectionIsNotUndoable(t *testing.T) {
	s := newTestSession()
	require.NoError(t, s.Dispatch(document.Select{ID: "3"}))
	require.NoError(t, s.Dispatch(document.SetTitle{Title: "Renamed"}))

	assert.False(t, s.CanUndo())
	assert.Equal(t, "3", s.Document().SelectedID)
	assert.Equal(t, "Renamed", s.Document().Title)
}

func TestSession_RejectedActionsLeaveStateAlone(t *testing.T) {
	s := newTestSession()
	before := s.Document()

	err := s.Dispatch(document.Delete{ID: core.RootID})
	assert.ErrorIs(t, err, core.ErrRootImmutable)
	err = s.Dispatch(document.Move{ID: "1", NewParentID: "2", NewIndex: 0})
	assert.ErrorIs(t, err, core.ErrNotContainer)
	err = s.Dispatch(nil)
	assert.ErrorIs(t, err, core.ErrInvalidAction)

	assert.Equal(t, before, s.Document())
	assert.False(t, s.CanUndo())
	assert.Equal(t, 2, s.State().(SessionState).Rejected)
}

func TestSession_HistoryLimit(t *testing.T) {
	s := newTestSession(WithHistoryLimit(3))
	for i := 0; i < 10; i++ {
		require.NoError(t, s.Dispatch(document.SetVariable{Name: "v", Value: i}))
	}
	st := s.State().(SessionState)
	assert.Equal(t, 3, st.Undo)
	assert.Equal(t, 3, st.HistoryCap)
}

func TestSession_DragLifecycle(t *testing.T) {
	s := newTestSession(WithDocument(document.Empty("blank")))

	s.DragStart(drop.Active{Type: core.TypeButton})
	over := &drop.Over{Kind: drop.KindCanvas, TargetID: core.RootID}
	s.DragOver(over)
	assert.True(t, s.Drag().Dragging())
	require.NotNil(t, s.Drag().Over)
	assert.Equal(t, drop.KindCanvas, s.Drag().Over.Kind)

	action, err := s.DragEnd(drop.Active{Type: core.TypeButton}, over)
	require.NoError(t, err)
	assert.Equal(t, document.KindInsert, action.Kind())
	assert.False(t, s.Drag().Dragging())

	root := s.Document().Root
	require.Len(t, root.Children, 1)
	assert.Equal(t, "n1", root.Children[0].ID)
	assert.Equal(t, core.TypeButton, root.Children[0].Type)
	assert.True(t, s.CanUndo())
}

func TestSession_DragEndClearsStateOnFailure(t *testing.T) {
	s := newTestSession()
	before := s.Document()

	s.DragStart(drop.Active{ID: "1"})
	s.DragOver(&drop.Over{Kind: drop.KindContainerEnd, TargetID: "1"})
	_, err := s.DragEnd(drop.Active{ID: "1"}, &drop.Over{Kind: drop.KindContainerEnd, TargetID: "1"})
	assert.ErrorIs(t, err, ErrInvalidDrop)
	assert.False(t, s.Drag().Dragging())
	assert.Equal(t, before, s.Document())

	s.DragStart(drop.Active{ID: "3"})
	action, err := s.DragEnd(drop.Active{ID: "3"}, nil)
	assert.NoError(t, err)
	assert.Nil(t, action)
	assert.False(t, s.Drag().Dragging())
	assert.Equal(t, before, s.Document())
}

func TestSession_DragReorderWithinParent(t *testing.T) {
	s := newTestSession()

	action, err := s.DragEnd(drop.Active{ID: "3"}, &drop.Over{Kind: drop.KindSibling, TargetID: "2"})
	require.NoError(t, err)
	assert.Equal(t, document.Reorder{ParentID: "1", OldIndex: 2, NewIndex: 0}, action)

	card, _ := s.Document().Find("1")
	ids := []string{}
	for _, c := range card.Children {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"3", "2", "input_name"}, ids)
}

func TestSession_LoadClearsHistoryAndSelection(t *testing.T) {
	s := newTestSession()
	require.NoError(t, s.Dispatch(document.Delete{ID: "3"}))
	require.NoError(t, s.Dispatch(document.Select{ID: "2"}))
	s.DragStart(drop.Active{ID: "2"})

	page := core.Page{Title: "Imported", Root: &core.Node{ID: core.RootID, Type: core.TypePage, Children: []*core.Node{
		{ID: "hello", Type: core.TypeText, Props: core.Props{"text": "hi"}},
	}}}
	require.NoError(t, s.Load(page))

	d := s.Document()
	assert.Equal(t, "Imported", d.Title)
	assert.Empty(t, d.SelectedID)
	assert.False(t, s.CanUndo())
	assert.False(t, s.CanRedo())
	assert.False(t, s.Drag().Dragging())
	p, ok := d.ParentOf("hello")
	require.True(t, ok)
	assert.Equal(t, core.RootID, p)

	page.Root.Children[0].Props["text"] = "mutated"
	n, _ := s.Document().Find("hello")
	assert.Equal(t, "hi", n.Props["text"])

	err := s.Load(core.Page{Title: "broken"})
	assert.ErrorIs(t, err, core.ErrMissingRoot)
	assert.Equal(t, "Imported", s.Document().Title)
}

func TestSession_ResetIsUndoable(t *testing.T) {
	s := newTestSession(WithDocument(document.Empty("blank")))
	s.Reset()
	assert.Equal(t, document.DefaultTitle, s.Document().Title)
	require.True(t, s.Undo())
	assert.Equal(t, "blank", s.Document().Title)
}

func TestSession_ResolvedProps(t *testing.T) {
	s := newTestSession()
	require.NoError(t, s.Dispatch(document.UpdateProps{ID: "2", Props: core.Props{"text": "Hello {{ state.name }}"}}))
	require.NoError(t, s.Dispatch(document.SetVariable{Name: "name", Value: "Ada"}))

	props, err := s.ResolvedProps("2")
	require.NoError(t, err)
	assert.Equal(t, "Hello Ada", props["text"])

	_, err = s.ResolvedProps("ghost")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSession_Subscribe(t *testing.T) {
	s := newTestSession()

	var mu sync.Mutex
	var got []Change
	unsubscribe := s.Subscribe(func(c Change) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, c)
	})

	require.NoError(t, s.Dispatch(document.UpdateProps{ID: "2", Props: core.Props{"a": 1}}))
	require.NoError(t, s.Dispatch(document.UpdateProps{ID: "2", Props: core.Props{"a": 2}}))
	_ = s.Dispatch(document.Delete{ID: "ghost"})
	s.Undo()

	unsubscribe()
	s.Redo()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 3)
	assert.Equal(t, history.Pushed, got[0].Outcome)
	assert.Equal(t, history.Grouped, got[1].Outcome)
	assert.Equal(t, KindUndo, got[2].Kind)
}

func TestSession_LogsRejections(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := newTestSession(WithLogger(logger))

	_ = s.Dispatch(document.Delete{ID: "ghost"})
	assert.Contains(t, buf.String(), "action rejected")
	assert.Contains(t, buf.String(), "kind=delete")
}

func TestSession_ConcurrentDispatch(t *testing.T) {
	s := newTestSession(WithDocument(document.Empty("blank")), WithHistoryLimit(0))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				_, _ = s.DragEnd(drop.Active{Type: core.TypeText}, &drop.Over{Kind: drop.KindCanvas, TargetID: core.RootID})
			}
		}()
	}
	wg.Wait()

	d := s.Document()
	require.NoError(t, d.Verify())
	assert.Len(t, d.Root.Children, 200)
	assert.Equal(t, 200, s.State().(SessionState).Undo)
}

func TestSession_NewNode(t *testing.T) {
	s := newTestSession()

	n, ok := s.NewNode(core.TypeContainer)
	require.True(t, ok)
	assert.Equal(t, "n1", n.ID)
	assert.NotNil(t, n.Children)

	_, ok = s.NewNode("Carousel")
	assert.False(t, ok)
	assert.Equal(t, 5, s.Document().Index().Len(), "building a node does not touch the document")
}
