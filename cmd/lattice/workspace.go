package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/pkg/core"
	"github.com/aretw0/lattice/pkg/document"
	"gopkg.in/yaml.v3"
)

// startDir is the directory commands resolve the project root from.
func startDir() string {
	if workDir != "" {
		return workDir
	}
	cwd, err := os.Getwd()
	if err != nil {
		fatal("Failed to get CWD", err)
	}
	return cwd
}

// projectRoot returns the nearest lattice root above the start directory,
// or the start directory itself when there is none.
func projectRoot() string {
	dir := startDir()
	root, err := lattice.FindRoot(dir)
	if err != nil {
		return dir
	}
	return root
}

// storeOptions merges lattice.yaml with the command line flags. Flags win.
func storeOptions(root string, extra ...lattice.Option) (string, []lattice.Option) {
	cfg, err := lattice.LoadConfig(root)
	if err != nil {
		fatal("Failed to read "+lattice.ConfigFileName, err)
	}
	opts, err := cfg.Options()
	if err != nil {
		fatal("Invalid "+lattice.ConfigFileName, err)
	}
	opts = append(opts, lattice.WithLogger(slog.Default()))
	if adapter != "" {
		opts = append(opts, lattice.WithAdapter(adapter))
	}
	if project != "" {
		opts = append(opts, lattice.WithProjectID(project))
	}
	if nover {
		opts = append(opts, lattice.WithVersioning(false))
	}
	return cfg.StorePath(root), append(opts, extra...)
}

// openWorkspace opens the current project for editing.
func openWorkspace(ctx context.Context, extra ...lattice.Option) *lattice.Workspace {
	path, opts := storeOptions(projectRoot(), extra...)
	ws, err := lattice.Open(ctx, path, opts...)
	if err != nil {
		fatal("Failed to open project", err)
	}
	return ws
}

// openService opens the store without loading a project.
func openService(extra ...lattice.Option) *core.Service {
	path, opts := storeOptions(projectRoot(), extra...)
	svc, err := lattice.New(path, opts...)
	if err != nil {
		fatal("Failed to open store", err)
	}
	return svc
}

func closeService(svc *core.Service) {
	if c, ok := svc.Repository().(io.Closer); ok {
		if err := c.Close(); err != nil {
			slog.Warn("failed to close store", "error", err)
		}
	}
}

// changeReason builds the commit message of a save from the -m, -t and
// -s flags.
func changeReason(subject string) string {
	switch {
	case typeFlag != "":
		if message != "" {
			subject = message
		}
		return lattice.FormatChangeReason(typeFlag, scope, subject, "")
	case message != "":
		return message
	}
	sc := "pages"
	if scope != "" {
		sc = scope
	}
	return lattice.FormatChangeReason(lattice.ChangeTypeDocs, sc, subject, "")
}

// commit dispatches actions in order, then saves the page once. Nothing is
// saved when an action is rejected.
func commit(ws *lattice.Workspace, subject string, actions ...document.Action) {
	for _, a := range actions {
		if err := ws.Session.Dispatch(a); err != nil {
			fatal(fmt.Sprintf("%s rejected", a.Kind()), err)
		}
	}
	save(ws, subject)
}

func save(ws *lattice.Workspace, subject string) {
	ctx := lattice.WithChangeReason(context.Background(), changeReason(subject))
	if err := ws.Save(ctx); err != nil {
		fatal("Failed to save project", err)
	}
	if err := ws.Close(ctx); err != nil {
		fatal("Failed to close project", err)
	}
}

// encode writes v as indented JSON, or YAML when asYAML is set.
func encode(w io.Writer, v any, asYAML bool) error {
	if asYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// parseValue reads a command line value as JSON when it parses as JSON,
// otherwise as a plain string. Objects and arrays must be valid JSON.
func parseValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v
	}
	return raw
}

// parseAssignments turns key=value pairs into a map.
func parseAssignments(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key=value, got %q", p)
		}
		out[k] = parseValue(v)
	}
	return out, nil
}

// parseIndex reads an insertion index; "end" appends.
func parseIndex(raw string) (int, error) {
	if raw == "" || raw == "end" {
		return document.End, nil
	}
	i, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", raw)
	}
	if i < 0 {
		return 0, errors.New("index must not be negative")
	}
	return i, nil
}
