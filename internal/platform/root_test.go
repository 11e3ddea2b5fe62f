package platform

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// mkTree creates base/site/pages/home and places marker (a file when it ends
// in .yaml, a directory otherwise) in base/site.
func mkTree(t *testing.T, marker string) (site, deep string) {
	t.Helper()
	base := t.TempDir()
	site = filepath.Join(base, "site")
	deep = filepath.Join(site, "pages", "home")
	if err := os.MkdirAll(deep, 0755); err != nil {
		t.Fatal(err)
	}
	if marker == "" {
		return site, deep
	}

	path := filepath.Join(site, marker)
	var err error
	if filepath.Ext(marker) == ".yaml" {
		err = os.WriteFile(path, []byte("adapter: fs\n"), 0644)
	} else {
		err = os.Mkdir(path, 0755)
	}
	if err != nil {
		t.Fatal(err)
	}
	return site, deep
}

func TestFindRoot(t *testing.T) {
	for _, marker := range []string{ConfigFileName, ".lattice", ".git"} {
		t.Run(marker, func(t *testing.T) {
			site, deep := mkTree(t, marker)

			for _, start := range []string{site, filepath.Join(site, "pages"), deep} {
				got, err := FindRoot(start)
				if err != nil {
					t.Fatalf("FindRoot(%s): %v", start, err)
				}
				if filepath.Clean(got) != site {
					t.Errorf("FindRoot(%s) = %s, want %s", start, got, site)
				}
			}
		})
	}
}

func TestFindRoot_NearestWins(t *testing.T) {
	site, deep := mkTree(t, ".git")
	inner := filepath.Dir(deep)
	if err := os.WriteFile(filepath.Join(inner, ConfigFileName), nil, 0644); err != nil {
		t.Fatal(err)
	}

	got, err := FindRoot(deep)
	if err != nil {
		t.Fatalf("FindRoot: %v", err)
	}
	if filepath.Clean(got) != inner {
		t.Errorf("FindRoot = %s, want %s (not %s)", got, inner, site)
	}
}

func TestFindRoot_NotFound(t *testing.T) {
	_, deep := mkTree(t, "")

	got, err := FindRoot(deep)
	if !errors.Is(err, ErrRootNotFound) {
		t.Fatalf("FindRoot = %q, %v; want ErrRootNotFound", got, err)
	}
}

func TestFindRoot_RelativeStart(t *testing.T) {
	site, deep := mkTree(t, ConfigFileName)
	t.Chdir(deep)

	got, err := FindRoot(".")
	if err != nil {
		t.Fatalf("FindRoot: %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("FindRoot returned relative path %q", got)
	}
	// Resolve symlinked temp dirs before comparing.
	want, _ := filepath.EvalSymlinks(site)
	if resolved, _ := filepath.EvalSymlinks(got); resolved != want {
		t.Errorf("FindRoot = %s, want %s", got, site)
	}
}
