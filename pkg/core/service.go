package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Service handles the business rules around stored projects.
type Service struct {
	repo            Repository
	mu              sync.RWMutex
	eventBufferSize int
}

// NewService creates a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, eventBufferSize: 100}
}

// Repository returns the underlying storage adapter.
func (s *Service) Repository() Repository {
	return s.repo
}

// SaveProject validates and stores a page.
func (s *Service) SaveProject(ctx context.Context, id string, p Page) error {
	if err := ValidateProjectID(id); err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("refusing to save project %s: %w", id, err)
	}
	return s.repo.Save(ctx, id, p)
}

// GetProject retrieves a page and rejects malformed blobs.
func (s *Service) GetProject(ctx context.Context, id string) (Page, error) {
	if err := ValidateProjectID(id); err != nil {
		return Page{}, err
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Page{}, err
	}
	if err := p.Validate(); err != nil {
		return Page{}, fmt.Errorf("project %s is malformed: %w", id, err)
	}
	return p, nil
}

// ListProjects returns the ids of all stored projects.
func (s *Service) ListProjects(ctx context.Context) ([]string, error) {
	return s.repo.List(ctx)
}

// DeleteProject removes a project.
func (s *Service) DeleteProject(ctx context.Context, id string) error {
	if err := ValidateProjectID(id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Watch observes changes in the repository if supported.
func (s *Service) Watch(ctx context.Context, pattern string) (<-chan Event, error) {
	w, ok := s.repo.(Watchable)
	if !ok {
		return nil, errors.New("repository does not support watching")
	}
	return w.Watch(ctx, pattern)
}
