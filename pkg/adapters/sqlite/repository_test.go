package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lattice/pkg/adapters/sqlite"
	"github.com/aretw0/lattice/pkg/core"
	"github.com/aretw0/lattice/pkg/document"
)

func openRepo(t *testing.T, cfg sqlite.Config) *sqlite.Repository {
	t.Helper()
	if cfg.Path == "" {
		cfg.Path = ":memory:"
	}
	repo := sqlite.NewRepository(cfg)
	require.NoError(t, repo.Initialize(context.Background()))
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRepository_SaveGet(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t, sqlite.Config{})

	tpl := document.TemplatePage()
	require.NoError(t, repo.Save(ctx, core.DefaultProjectID, tpl))

	got, err := repo.Get(ctx, core.DefaultProjectID)
	require.NoError(t, err)
	assert.Equal(t, tpl.Title, got.Title)
	_, err = document.FromPage(got)
	assert.NoError(t, err)

	// Upsert replaces the row.
	require.NoError(t, repo.Save(ctx, core.DefaultProjectID, document.Empty("Blank").Page()))
	got, err = repo.Get(ctx, core.DefaultProjectID)
	require.NoError(t, err)
	assert.Equal(t, "Blank", got.Title)
	assert.Empty(t, got.Root.Children)

	_, err = repo.Get(ctx, "ghost")
	assert.ErrorIs(t, err, core.ErrProjectMissing)
}

func TestRepository_ListDelete(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t, sqlite.Config{})

	ids, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	for _, id := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, repo.Save(ctx, id, document.Empty(id).Page()))
	}
	ids, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, ids)

	sums, err := repo.Summaries(ctx)
	require.NoError(t, err)
	assert.Len(t, sums, 3)

	require.NoError(t, repo.Delete(ctx, "mid"))
	assert.ErrorIs(t, repo.Delete(ctx, "mid"), core.ErrProjectMissing)

	ids, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, ids)
}

func TestRepository_Validation(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t, sqlite.Config{})

	assert.ErrorIs(t, repo.Save(ctx, "../x", document.Empty("x").Page()), core.ErrInvalidID)

	svc := core.NewService(repo)
	require.NoError(t, repo.Save(ctx, "bad", core.Page{Title: "no root"}))
	_, err := svc.GetProject(ctx, "bad")
	assert.ErrorIs(t, err, core.ErrMissingRoot)
	assert.Equal(t, "sqlite-repository", svc.State().(core.ServiceState).RepositoryType)
}

func TestRepository_FileAndReadOnly(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "lattice.db")

	rw := sqlite.NewRepository(sqlite.Config{Path: path})
	require.NoError(t, rw.Initialize(ctx))
	require.NoError(t, rw.Save(ctx, "home", document.Empty("Home").Page()))
	require.NoError(t, rw.Close())

	ro := openRepo(t, sqlite.Config{Path: path, ReadOnly: true})
	got, err := ro.Get(ctx, "home")
	require.NoError(t, err)
	assert.Equal(t, "Home", got.Title)
	assert.ErrorIs(t, ro.Save(ctx, "home", got), core.ErrReadOnly)
	assert.ErrorIs(t, ro.Delete(ctx, "home"), core.ErrReadOnly)

	state := ro.State().(sqlite.RepositoryState)
	assert.True(t, state.Open)
	assert.True(t, state.ReadOnly)
}

func TestRepository_NotInitialized(t *testing.T) {
	repo := sqlite.NewRepository(sqlite.Config{Path: ":memory:"})
	_, err := repo.List(context.Background())
	assert.Error(t, err)
}
