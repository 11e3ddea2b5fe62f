package platform

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig is the content of lattice.yaml. Empty fields keep the
// defaults; command line flags override the file.
type FileConfig struct {
	// Adapter is "fs" (default) or "sqlite".
	Adapter string `yaml:"adapter,omitempty"`
	// Store is the project directory or database file, relative to the
	// directory holding lattice.yaml.
	Store   string `yaml:"store,omitempty"`
	Project string `yaml:"project,omitempty"`
	// Format is the file format of new fs projects.
	Format     string `yaml:"format,omitempty"`
	Versioning *bool  `yaml:"versioning,omitempty"`
	Strict     bool   `yaml:"strict,omitempty"`
	History    *int   `yaml:"history,omitempty"`
	// Autosave is a duration such as "1s" or "250ms".
	Autosave string `yaml:"autosave,omitempty"`
	IDPrefix string `yaml:"id_prefix,omitempty"`
}

// LoadConfig reads lattice.yaml from dir. A missing file yields a zero
// FileConfig.
func LoadConfig(dir string) (FileConfig, error) {
	var cfg FileConfig
	data, err := os.ReadFile(filepath.Join(dir, ConfigFileName))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("invalid %s: %w", ConfigFileName, err)
	}
	return cfg, nil
}

// WriteConfig writes cfg to dir/lattice.yaml.
func WriteConfig(dir string, cfg FileConfig) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, ConfigFileName), buf.Bytes(), 0644)
}

// StorePath returns the store location for a config found in dir.
func (c FileConfig) StorePath(dir string) string {
	switch {
	case c.Store == "":
		return dir
	case filepath.IsAbs(c.Store), c.Store == ":memory:":
		return c.Store
	default:
		return filepath.Join(dir, c.Store)
	}
}

// Options translates the file into options.
func (c FileConfig) Options() ([]Option, error) {
	var opts []Option
	if c.Adapter != "" {
		if c.Adapter != AdapterFS && c.Adapter != AdapterSQLite {
			return nil, fmt.Errorf("unknown adapter %q", c.Adapter)
		}
		opts = append(opts, WithAdapter(c.Adapter))
	}
	if c.Project != "" {
		opts = append(opts, WithProjectID(c.Project))
	}
	if c.Format != "" {
		opts = append(opts, WithFormat(c.Format))
	}
	if c.Versioning != nil {
		opts = append(opts, WithVersioning(*c.Versioning))
	}
	if c.Strict {
		opts = append(opts, WithStrict(true))
	}
	if c.History != nil {
		if *c.History < 0 {
			return nil, fmt.Errorf("history must not be negative, got %d", *c.History)
		}
		opts = append(opts, WithHistoryLimit(*c.History))
	}
	if c.Autosave != "" {
		d, err := time.ParseDuration(c.Autosave)
		if err != nil {
			return nil, fmt.Errorf("invalid autosave delay: %w", err)
		}
		opts = append(opts, WithAutosaveDelay(d))
	}
	if c.IDPrefix != "" {
		opts = append(opts, WithIDPrefix(c.IDPrefix))
	}
	return opts, nil
}
