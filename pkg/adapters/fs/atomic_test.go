package fs

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func readBack(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "landing.json")

	if err := writeFileAtomic(page, []byte(`{"title":"v1"}`), 0644); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if got := readBack(t, page); got != `{"title":"v1"}` {
		t.Fatalf("content = %s", got)
	}

	if err := writeFileAtomic(page, []byte(`{"title":"v2"}`), 0644); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if got := readBack(t, page); got != `{"title":"v2"}` {
		t.Fatalf("content after overwrite = %s", got)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), TempFilePrefix) {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want 1", len(entries))
	}
}

func TestWriteFileAtomic_Mode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}
	page := filepath.Join(t.TempDir(), "draft.yaml")
	if err := writeFileAtomic(page, []byte("title: draft\n"), 0600); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(page)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestWriteFileAtomic_MissingDir(t *testing.T) {
	page := filepath.Join(t.TempDir(), "nope", "landing.json")
	if err := writeFileAtomic(page, []byte("{}"), 0644); err == nil {
		t.Fatal("expected error for missing directory")
	}
	if _, err := os.Stat(page); !os.IsNotExist(err) {
		t.Errorf("stat after failed write: %v", err)
	}
}
