package fs

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCache_Load(t *testing.T) {
	t.Run("Starts Empty if File Missing", func(t *testing.T) {
		c := newCache(t.TempDir(), ".lattice")

		if err := c.Load(); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if c.Len() != 0 {
			t.Errorf("Expected empty entries, got %d", c.Len())
		}
	})

	t.Run("Loads Valid JSON", func(t *testing.T) {
		tmpDir := t.TempDir()
		cacheDir := filepath.Join(tmpDir, ".lattice")
		os.MkdirAll(cacheDir, 0755)

		jsonContent := `{
			"version": 2,
			"entries": {
				"home.json": {"id": "home", "title": "Home", "nodes": 4}
			}
		}`
		os.WriteFile(filepath.Join(cacheDir, "summaries.json"), []byte(jsonContent), 0644)

		c := newCache(tmpDir, ".lattice")
		if err := c.Load(); err != nil {
			t.Fatalf("Load failed: %v", err)
		}

		entry, ok := c.index.Entries["home.json"]
		if !ok {
			t.Fatal("Expected entry home.json not found")
		}
		if entry.Title != "Home" || entry.Nodes != 4 {
			t.Errorf("Unexpected entry: %+v", entry)
		}
	})

	t.Run("Discards Old Version", func(t *testing.T) {
		tmpDir := t.TempDir()
		cacheDir := filepath.Join(tmpDir, ".lattice")
		os.MkdirAll(cacheDir, 0755)
		os.WriteFile(filepath.Join(cacheDir, "summaries.json"), []byte(`{"version":1,"entries":{"a.json":{"id":"a"}}}`), 0644)

		c := newCache(tmpDir, ".lattice")
		if err := c.Load(); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if c.Len() != 0 {
			t.Errorf("Expected stale cache to be discarded, got %d entries", c.Len())
		}
	})

	t.Run("Resets on Corrupted JSON", func(t *testing.T) {
		tmpDir := t.TempDir()
		cacheDir := filepath.Join(tmpDir, ".lattice")
		os.MkdirAll(cacheDir, 0755)
		os.WriteFile(filepath.Join(cacheDir, "summaries.json"), []byte("{ invalid json"), 0644)

		c := newCache(tmpDir, ".lattice")
		if err := c.Load(); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if c.Len() != 0 {
			t.Errorf("Expected empty entries after corruption, got %d", c.Len())
		}
	})
}

func TestCache_Save(t *testing.T) {
	tmpDir := t.TempDir()
	c := newCache(tmpDir, ".lattice")

	// Nothing to write yet.
	if err := c.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(c.Path); !os.IsNotExist(err) {
		t.Fatal("Expected no cache file before any change")
	}

	mtime := time.Now().Truncate(time.Second)
	c.Set("home.json", &summaryEntry{ID: "home", Title: "Home", Nodes: 3, LastModified: mtime})
	if err := c.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded := newCache(tmpDir, ".lattice")
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	entry, ok := reloaded.Get("home.json", mtime)
	if !ok {
		t.Fatal("Expected entry after reload")
	}
	if entry.Title != "Home" || entry.Nodes != 3 {
		t.Errorf("Unexpected entry: %+v", entry)
	}
}

func TestCache_Get_Set(t *testing.T) {
	c := newCache(t.TempDir(), ".lattice")
	mtime := time.Now()

	if _, ok := c.Get("a.json", mtime); ok {
		t.Fatal("Expected miss on empty cache")
	}

	c.Set("a.json", &summaryEntry{ID: "a", LastModified: mtime})
	if _, ok := c.Get("a.json", mtime); !ok {
		t.Error("Expected hit for matching mtime")
	}
	if _, ok := c.Get("a.json", mtime.Add(time.Second)); ok {
		t.Error("Expected miss for newer mtime")
	}

	c.Delete("a.json")
	if _, ok := c.Get("a.json", mtime); ok {
		t.Error("Expected miss after delete")
	}
}

func TestCache_Prune(t *testing.T) {
	c := newCache(t.TempDir(), ".lattice")
	for _, f := range []string{"a.json", "b.json", "c.yaml"} {
		c.Set(f, &summaryEntry{ID: f})
	}

	c.Prune(map[string]bool{"b.json": true})

	if c.Len() != 1 {
		t.Fatalf("Expected 1 entry after prune, got %d", c.Len())
	}
	var kept []string
	c.Range(func(file string, _ *summaryEntry) bool {
		kept = append(kept, file)
		return true
	})
	if len(kept) != 1 || kept[0] != "b.json" {
		t.Errorf("Expected b.json to survive, got %v", kept)
	}
}
