package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// ConfigFileName is the project file that marks a lattice root.
const ConfigFileName = "lattice.yaml"

// ErrRootNotFound is returned by FindRoot when no indicator is found.
var ErrRootNotFound = errors.New("lattice root not found")

// FindRoot looks upwards from startDir for a project root indicator:
// a lattice.yaml file, a .lattice directory or a .git directory.
// It returns the absolute path of the first directory that has one.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, ConfigFileName) || hasFile(dir, ".lattice") || hasFile(dir, ".git") {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", ErrRootNotFound
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
