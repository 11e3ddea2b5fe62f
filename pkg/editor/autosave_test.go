package editor

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lattice/pkg/core"
	"github.com/aretw0/lattice/pkg/document"
)

type memRepo struct {
	mu    sync.Mutex
	pages map[string]core.Page
	saves int
	fail  error
}

func newMemRepo() *memRepo {
	return &memRepo{pages: make(map[string]core.Page)}
}

func (m *memRepo) Save(_ context.Context, id string, p core.Page) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.pages[id] = p
	m.saves++
	return nil
}

func (m *memRepo) Get(_ context.Context, id string) (core.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pages[id]
	if !ok {
		return core.Page{}, core.ErrProjectMissing
	}
	return p, nil
}

func (m *memRepo) List(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.pages))
	for id := range m.pages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pages, id)
	return nil
}

func (m *memRepo) Initialize(context.Context) error { return nil }

func (m *memRepo) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func TestAutosaver_DebouncesBursts(t *testing.T) {
	repo := newMemRepo()
	s := newTestSession()
	a := NewAutosaver(s, core.NewService(repo), WithDelay(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, a.Start(ctx))

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Dispatch(document.SetVariable{Name: "n", Value: i}))
		require.NoError(t, s.Dispatch(document.UpdateProps{ID: "2", Props: core.Props{"text": i}}))
	}

	require.Eventually(t, func() bool { return repo.saveCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 1, repo.saveCount(), "a burst produces a single save")

	saved, err := repo.Get(ctx, core.DefaultProjectID)
	require.NoError(t, err)
	assert.Equal(t, s.Page(), saved)

	st := a.State().(AutosaveState)
	assert.Equal(t, 1, st.Saves)
	assert.False(t, st.Pending)
	assert.NotNil(t, st.LastSave)
}

func TestAutosaver_StopFlushesPending(t *testing.T) {
	repo := newMemRepo()
	s := newTestSession()
	a := NewAutosaver(s, core.NewService(repo), WithDelay(time.Hour), WithProjectID("draft"))

	require.NoError(t, a.Start(context.Background()))
	require.NoError(t, s.Dispatch(document.SetTitle{Title: "Draft"}))
	assert.Equal(t, 0, repo.saveCount())

	require.NoError(t, a.Stop(context.Background()))
	saved, err := repo.Get(context.Background(), "draft")
	require.NoError(t, err)
	assert.Equal(t, "Draft", saved.Title)

	require.NoError(t, s.Dispatch(document.SetTitle{Title: "After stop"}))
	require.NoError(t, a.Flush(context.Background()))
	assert.Equal(t, 1, repo.saveCount(), "stopped autosaver ignores further edits")
}

func TestAutosaver_CancelFlushes(t *testing.T) {
	repo := newMemRepo()
	s := newTestSession()
	a := NewAutosaver(s, core.NewService(repo), WithDelay(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, a.Start(ctx))
	assert.Error(t, a.Start(ctx), "double start")

	require.NoError(t, s.Dispatch(document.Delete{ID: "3"}))
	cancel()

	require.Eventually(t, func() bool { return repo.saveCount() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestAutosaver_FailedSaveStaysPending(t *testing.T) {
	repo := newMemRepo()
	repo.fail = errors.New("disk full")
	s := newTestSession()

	var mu sync.Mutex
	var reported []error
	a := NewAutosaver(s, core.NewService(repo), WithDelay(10*time.Millisecond), WithErrorHandler(func(err error) {
		mu.Lock()
		defer mu.Unlock()
		reported = append(reported, err)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, a.Start(ctx))
	require.NoError(t, s.Dispatch(document.Delete{ID: "3"}))

	require.Eventually(t, func() bool {
		st := a.State().(AutosaveState)
		return st.LastError != ""
	}, 2*time.Second, 10*time.Millisecond)
	assert.True(t, a.State().(AutosaveState).Pending)

	repo.mu.Lock()
	repo.fail = nil
	repo.mu.Unlock()
	require.NoError(t, a.Flush(ctx))
	assert.Equal(t, 1, repo.saveCount())
	assert.Empty(t, a.State().(AutosaveState).LastError)
}
