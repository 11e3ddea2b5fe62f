package platform_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/pkg/adapters/fs"
	"github.com/aretw0/lattice/pkg/adapters/sqlite"
)

func TestInit(t *testing.T) {
	t.Run("AutoInit=true Creates Directory and Git Repo", func(t *testing.T) {
		if !fs.IsGitInstalled() {
			t.Skip("git not installed")
		}
		sitePath := filepath.Join(t.TempDir(), "site")

		repo, err := lattice.Init(sitePath, lattice.WithAutoInit(true), lattice.WithForceTemp(true))
		if err != nil {
			t.Fatalf("Init failed: %v", err)
		}
		fsRepo, ok := repo.(*fs.Repository)
		if !ok {
			t.Fatalf("Expected fs repository")
		}
		if fsRepo.Path != sitePath {
			t.Errorf("Expected path %s, got %s", sitePath, fsRepo.Path)
		}
		if info, err := os.Stat(sitePath); err != nil || !info.IsDir() {
			t.Errorf("Project directory not created")
		}
		if _, err := os.Stat(filepath.Join(sitePath, ".git")); os.IsNotExist(err) {
			t.Errorf(".git directory not found")
		}
	})

	t.Run("AutoInit=false Fails if Directory Missing", func(t *testing.T) {
		sitePath := filepath.Join(t.TempDir(), "missing")

		_, err := lattice.Init(sitePath, lattice.WithAutoInit(false), lattice.WithMustExist(true), lattice.WithForceTemp(true))
		if err == nil {
			t.Error("Expected failure for missing directory when AutoInit=false")
		}
	})

	t.Run("Versioning=false Does Not Initialize Git", func(t *testing.T) {
		sitePath := filepath.Join(t.TempDir(), "gitless_site")

		repo, err := lattice.Init(sitePath, lattice.WithAutoInit(true), lattice.WithVersioning(false), lattice.WithForceTemp(true))
		if err != nil {
			t.Fatalf("Init failed: %v", err)
		}
		if _, ok := repo.(*fs.Repository); !ok {
			t.Fatalf("Expected fs repository")
		}
		if _, err := os.Stat(filepath.Join(sitePath, ".git")); !os.IsNotExist(err) {
			t.Errorf(".git directory should not exist in gitless mode")
		}
	})

	t.Run("SQLite Adapter Uses Database File", func(t *testing.T) {
		dir := t.TempDir()

		repo, err := lattice.Init(dir, lattice.WithAdapter(lattice.AdapterSQLite), lattice.WithForceTemp(true))
		if err != nil {
			t.Fatalf("Init failed: %v", err)
		}
		sq, ok := repo.(*sqlite.Repository)
		if !ok {
			t.Fatalf("Expected sqlite repository, got %T", repo)
		}
		defer sq.Close()

		state := sq.State().(sqlite.RepositoryState)
		if state.Path != filepath.Join(dir, "lattice.db") {
			t.Errorf("unexpected database path %s", state.Path)
		}
	})

	t.Run("Unknown Adapter", func(t *testing.T) {
		_, err := lattice.Init(t.TempDir(), lattice.WithAdapter("s3"))
		if err == nil {
			t.Error("Expected failure for unknown adapter")
		}
	})

	t.Run("Invalid Serializer", func(t *testing.T) {
		_, err := lattice.Init(t.TempDir(), lattice.WithAutoInit(true), lattice.WithVersioning(false), lattice.WithSerializer(".toml", "nope"))
		if err == nil || errors.Is(err, os.ErrNotExist) {
			t.Errorf("Expected serializer type error, got %v", err)
		}
	})
}
