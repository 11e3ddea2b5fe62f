package history

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUndoRedo_RoundTrip(t *testing.T) {
	h := New("v0")

	assert.Equal(t, Pushed, h.Record("updateProps", "a", "v1"))
	require.True(t, h.CanUndo())
	assert.False(t, h.CanRedo())

	got, ok := h.Undo()
	require.True(t, ok)
	assert.Equal(t, "v0", got)
	assert.Equal(t, 1, h.FutureLen())

	got, ok = h.Redo()
	require.True(t, ok)
	assert.Equal(t, "v1", got)
	assert.Equal(t, "v1", h.Present())
	assert.Equal(t, 1, h.PastLen())
	assert.Equal(t, 0, h.FutureLen())
}

func TestUndoRedo_EmptyStacksAreNoops(t *testing.T) {
	h := New(1)

	got, ok := h.Undo()
	assert.False(t, ok)
	assert.Equal(t, 1, got)

	got, ok = h.Redo()
	assert.False(t, ok)
	assert.Equal(t, 1, got)
}

func TestRecord_ClearsFuture(t *testing.T) {
	h := New(0)
	h.Record("insert", "root", 1)
	h.Record("insert", "root", 2)
	h.Undo()
	require.True(t, h.CanRedo())

	h.Record("delete", "x", 3)
	assert.False(t, h.CanRedo())
	assert.Equal(t, []int{0, 1}, h.past)
}

func TestRecord_Grouping(t *testing.T) {
	newHistory := func() *History[string] {
		return New("v0", WithGroup("updateProps", "reorderSiblings"))
	}

	t.Run("Same Kind And Key Share A Step", func(t *testing.T) {
		h := newHistory()
		assert.Equal(t, Pushed, h.Record("updateProps", "btn", "v1"))
		assert.Equal(t, Grouped, h.Record("updateProps", "btn", "v2"))
		assert.Equal(t, 1, h.PastLen())

		got, _ := h.Undo()
		assert.Equal(t, "v0", got, "one undo reverts both edits")
	})

	t.Run("Different Key Starts A Step", func(t *testing.T) {
		h := newHistory()
		h.Record("updateProps", "btn", "v1")
		assert.Equal(t, Pushed, h.Record("updateProps", "text", "v2"))
		assert.Equal(t, 2, h.PastLen())
	})

	t.Run("Different Kind Resets Grouping", func(t *testing.T) {
		h := newHistory()
		h.Record("updateProps", "btn", "v1")
		h.Record("insert", "root", "v2")
		assert.Equal(t, Pushed, h.Record("updateProps", "btn", "v3"))
		assert.Equal(t, 3, h.PastLen())
	})

	t.Run("Ungrouped Kind Never Groups", func(t *testing.T) {
		h := newHistory()
		h.Record("insert", "root", "v1")
		assert.Equal(t, Pushed, h.Record("insert", "root", "v2"))
	})

	t.Run("Undo Closes The Step", func(t *testing.T) {
		h := newHistory()
		h.Record("updateProps", "btn", "v1")
		h.Record("updateProps", "btn", "v2")
		h.Undo()
		h.Redo()
		assert.Equal(t, Pushed, h.Record("updateProps", "btn", "v3"))
	})
}

func TestRecord_Exclusion(t *testing.T) {
	h := New("v0", WithExclude("setSelected"), WithGroup("updateProps"))
	h.Record("updateProps", "btn", "v1")

	assert.Equal(t, Excluded, h.Record("setSelected", "", "v1+sel"))
	assert.Equal(t, "v1+sel", h.Present())
	assert.Equal(t, 1, h.PastLen())

	h.Undo()
	require.True(t, h.CanRedo())
	h.Record("setSelected", "", "v0+sel")
	assert.True(t, h.CanRedo(), "excluded records leave the future alone")

	h.Redo()
	h.Record("setSelected", "", "sel")
	assert.Equal(t, Pushed, h.Record("updateProps", "btn", "v2"), "excluded records reset grouping")
}

func TestRecord_LimitBoundsPast(t *testing.T) {
	const limit = 5
	h := New(0, WithLimit(limit))

	for i := 1; i <= 3*limit; i++ {
		h.Record("insert", fmt.Sprint(i), i)
		assert.LessOrEqual(t, h.PastLen(), limit)
	}
	assert.Equal(t, []int{10, 11, 12, 13, 14}, h.past, "oldest entries are evicted first")

	for h.CanUndo() {
		h.Undo()
	}
	assert.Equal(t, 10, h.Present())
}

func TestNew_DefaultPolicy(t *testing.T) {
	h := New(struct{}{})
	assert.Equal(t, DefaultLimit, h.Policy().Limit)

	unbounded := New(0, WithLimit(0))
	for i := 0; i < 2*DefaultLimit; i++ {
		unbounded.Record("insert", "", i)
	}
	assert.Equal(t, 2*DefaultLimit, unbounded.PastLen())
}

func TestClear(t *testing.T) {
	h := New("a", WithGroup("updateProps"))
	h.Record("updateProps", "x", "b")
	h.Undo()

	h.Clear("loaded")
	assert.Equal(t, "loaded", h.Present())
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
	assert.Equal(t, Pushed, h.Record("updateProps", "x", "c"))
}
