package platform

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/lattice/pkg/core"
	"github.com/aretw0/lattice/pkg/document"
	"github.com/aretw0/lattice/pkg/drop"
	"github.com/aretw0/lattice/pkg/editor"
)

// New creates a project service on top of the configured repository.
//
//	svc, err := lattice.New("./site", lattice.WithVersioning(false))
func New(uri string, opts ...Option) (*core.Service, error) {
	repo, err := Init(uri, opts...)
	if err != nil {
		return nil, err
	}
	return core.NewService(repo), nil
}

// Workspace is an editing session bound to one stored project.
type Workspace struct {
	Service   *core.Service
	Session   *editor.Session
	Autosaver *editor.Autosaver
	ProjectID string
	// Existed reports whether the project was loaded from storage rather
	// than started from the template.
	Existed bool
}

// Open initializes the repository, loads the project (or the template when
// it does not exist yet) and prepares an autosaver. Autosaving begins with
// Start.
func Open(ctx context.Context, uri string, opts ...Option) (*Workspace, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if err := core.ValidateProjectID(o.projectID); err != nil {
		return nil, err
	}

	repo, err := initRepository(uri, o)
	if err != nil {
		return nil, err
	}
	svc := core.NewService(repo)

	doc := document.Template()
	existed := false
	page, err := svc.GetProject(ctx, o.projectID)
	switch {
	case err == nil:
		if doc, err = document.FromPage(page); err != nil {
			return nil, fmt.Errorf("project %s: %w", o.projectID, err)
		}
		existed = true
	case errors.Is(err, core.ErrProjectMissing):
		if o.logger != nil {
			o.logger.Debug("project not found, starting from template", "project", o.projectID)
		}
	default:
		return nil, err
	}

	sessionOpts := []editor.Option{editor.WithLogger(o.logger), editor.WithDocument(doc)}
	if o.historyLimit >= 0 {
		sessionOpts = append(sessionOpts, editor.WithHistoryLimit(o.historyLimit))
	}
	if o.idPrefix != "" {
		f := drop.DefaultFactory()
		f.NewID = drop.Prefixed(o.idPrefix, f.NewID)
		sessionOpts = append(sessionOpts, editor.WithFactory(f))
	}
	session := editor.New(sessionOpts...)

	autosaveOpts := []editor.AutosaveOption{
		editor.WithProjectID(o.projectID),
		editor.WithAutosaveLogger(o.logger),
	}
	if o.autosaveDelay > 0 {
		autosaveOpts = append(autosaveOpts, editor.WithDelay(o.autosaveDelay))
	}

	return &Workspace{
		Service:   svc,
		Session:   session,
		Autosaver: editor.NewAutosaver(session, svc, autosaveOpts...),
		ProjectID: o.projectID,
		Existed:   existed,
	}, nil
}

// Start begins autosaving until ctx is done or Close is called.
func (w *Workspace) Start(ctx context.Context) error {
	return w.Autosaver.Start(ctx)
}

// Save writes the current page immediately.
func (w *Workspace) Save(ctx context.Context) error {
	return w.Service.SaveProject(ctx, w.ProjectID, w.Session.Page())
}

// Close flushes pending changes and releases the repository.
func (w *Workspace) Close(ctx context.Context) error {
	err := w.Autosaver.Stop(ctx)
	if c, ok := w.Service.Repository().(io.Closer); ok {
		err = errors.Join(err, c.Close())
	}
	return err
}
