package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/lattice/pkg/adapters/fs"
	"github.com/aretw0/lattice/pkg/adapters/sqlite"
	"github.com/aretw0/lattice/pkg/core"
)

// DefaultDatabaseName is the file created when the sqlite adapter is given
// a directory.
const DefaultDatabaseName = "lattice.db"

// Init creates and initializes the repository selected by the options.
// The 'uri' argument is adapter-specific: a directory for "fs", a database
// file (or a directory to hold one) for "sqlite".
func Init(uri string, opts ...Option) (core.Repository, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return initRepository(uri, o)
}

func initRepository(uri string, o *options) (core.Repository, error) {
	if o.repository != nil {
		return o.repository, nil
	}

	var repo core.Repository
	var err error
	switch o.adapter {
	case AdapterFS:
		repo, err = initFS(uri, o)
	case AdapterSQLite:
		repo, err = initSQLite(uri, o)
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}
	if err != nil {
		return nil, err
	}

	if err := repo.Initialize(context.Background()); err != nil {
		return nil, err
	}
	return repo, nil
}

// resolvePath applies the dev safety sandbox to uri.
func resolvePath(uri string, o *options) (string, bool) {
	tempDir, _ := o.config["temp_dir"].(bool)
	isReadOnly, _ := o.config["read_only"].(bool)
	devSafety := true
	if val, ok := o.config["dev_safety"].(bool); ok {
		devSafety = val
	}

	// Read-only access cannot damage anything.
	bypassSafety := isReadOnly || !devSafety
	useTemp := tempDir || (IsDevRun() && !bypassSafety)
	resolved := ResolveProjectPath(uri, useTemp)

	if o.logger != nil && IsDevRun() {
		switch {
		case isReadOnly:
			o.logger.Debug("running in READ-ONLY mode (bypassing dev sandbox)", "path", resolved)
		case bypassSafety:
			o.logger.Warn("running in UNSAFE mode (bypassing dev sandbox)", "path", resolved)
		default:
			o.logger.Debug("running in SAFE mode (dev sandbox enabled)", "path", resolved)
		}
	}
	if o.logger != nil && useTemp && resolved != filepath.Clean(uri) {
		o.logger.Warn("running in SAFE MODE (Dev/Test)", "original_path", uri, "resolved_path", resolved)
	}
	return resolved, useTemp
}

// initFS handles the initialization logic for the filesystem adapter.
func initFS(path string, o *options) (core.Repository, error) {
	autoInit, _ := o.config["auto_init"].(bool)
	gitless, _ := o.config["gitless"].(bool)
	mustExist, _ := o.config["must_exist"].(bool)
	strict, _ := o.config["strict"].(bool)
	format, _ := o.config["format"].(string)
	systemDir, _ := o.config["system_dir"].(string)
	errorHandler, _ := o.config["watcher_error_handler"].(func(error))
	isReadOnly, _ := o.config["read_only"].(bool)

	resolvedPath, useTemp := resolvePath(path, o)
	if systemDir == "" {
		systemDir = fs.DefaultSystemDir
	}

	// Without an explicit choice, an existing .git enables versioning. A
	// fresh auto-initialized directory is versioned unless it already holds
	// an unversioned project.
	if _, ok := o.config["gitless"]; !ok {
		if _, err := os.Stat(filepath.Join(resolvedPath, ".git")); err == nil {
			gitless = false
		} else if autoInit {
			_, statErr := os.Stat(filepath.Join(resolvedPath, systemDir))
			gitless = statErr == nil || !fs.IsGitInstalled()
		} else {
			gitless = true
		}
		if gitless && o.logger != nil {
			o.logger.Debug("auto-detected gitless mode", "reason", ".git missing")
		}
	}

	repo := fs.NewRepository(fs.Config{
		Path:         resolvedPath,
		AutoInit:     autoInit,
		Gitless:      gitless,
		MustExist:    mustExist || (!autoInit && !useTemp),
		ReadOnly:     isReadOnly,
		Strict:       strict,
		Format:       format,
		SystemDir:    systemDir,
		Logger:       o.logger,
		ErrorHandler: errorHandler,
	})

	for ext, s := range o.serializers {
		serializer, ok := s.(fs.Serializer)
		if !ok {
			if o.logger != nil {
				o.logger.Warn("invalid serializer type ignored", "ext", ext, "expected", "fs.Serializer")
			}
			return nil, fmt.Errorf("serializer for %s must implement fs.Serializer", ext)
		}
		repo.RegisterSerializer(ext, serializer)
	}
	return repo, nil
}

// initSQLite handles the initialization logic for the sqlite adapter.
func initSQLite(uri string, o *options) (core.Repository, error) {
	isReadOnly, _ := o.config["read_only"].(bool)
	mustExist, _ := o.config["must_exist"].(bool)

	path := uri
	if path != ":memory:" {
		path, _ = resolvePath(uri, o)
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			path = filepath.Join(path, DefaultDatabaseName)
		} else if filepath.Ext(path) == "" {
			path = filepath.Join(path, DefaultDatabaseName)
		}
		if mustExist || isReadOnly {
			if _, err := os.Stat(path); err != nil {
				return nil, fmt.Errorf("database does not exist: %s", path)
			}
		}
	}

	return sqlite.NewRepository(sqlite.Config{
		Path:     path,
		ReadOnly: isReadOnly,
		Logger:   o.logger,
	}), nil
}
