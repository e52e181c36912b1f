package service

import (
	"context"

	authdomain "github.com/myinsta/portfolio-backend/internal/auth/domain"
	commentsdomain "github.com/myinsta/portfolio-backend/internal/comments/domain"
	"github.com/myinsta/portfolio-backend/internal/projects/domain"
)

type Store interface {
	List(ctx context.Context) ([]domain.Project, error)
	Get(ctx context.Context, id string) (*domain.Project, error)
	Create(ctx context.Context, in domain.CreateInput) (*domain.Project, error)
	Update(ctx context.Context, id string, patch domain.UpdatePatch) (*domain.Project, error)
	Delete(ctx context.Context, id string) (*domain.Removal, error)
}

// AdminGate checks the caller's admin flag against the profile store.
type AdminGate interface {
	RequireAdmin(ctx context.Context, actor *authdomain.Identity) error
}

// CommentEvents announces comments removed together with their project.
type CommentEvents interface {
	PublishRemoved(ctx context.Context, projectID string, removed []commentsdomain.Comment)
}

// ProjectService handles project-related business logic. Every mutation
// passes the admin gate before the store is touched.
type ProjectService struct {
	store  Store
	gate   AdminGate
	events CommentEvents
}

// NewProjectService builds the service. events may be nil.
func NewProjectService(store Store, gate AdminGate, events CommentEvents) *ProjectService {
	return &ProjectService{store: store, gate: gate, events: events}
}

// Authorize runs the admin gate alone.
func (s *ProjectService) Authorize(ctx context.Context, actor *authdomain.Identity) error {
	return s.gate.RequireAdmin(ctx, actor)
}

func (s *ProjectService) List(ctx context.Context) ([]domain.Project, error) {
	return s.store.List(ctx)
}

func (s *ProjectService) Get(ctx context.Context, rawID string) (*domain.Project, error) {
	id, err := domain.ParseID(rawID)
	if err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

func (s *ProjectService) Create(ctx context.Context, actor *authdomain.Identity, in domain.CreateInput) (*domain.Project, error) {
	if err := s.gate.RequireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.store.Create(ctx, in)
}

func (s *ProjectService) Update(ctx context.Context, actor *authdomain.Identity, rawID string, patch domain.UpdatePatch) (*domain.Project, error) {
	if err := s.gate.RequireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	id, err := domain.ParseID(rawID)
	if err != nil {
		return nil, err
	}
	patch.Normalize()
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	return s.store.Update(ctx, id, patch)
}

// Delete is idempotent: removing an absent project reports false, not an
// error.
func (s *ProjectService) Delete(ctx context.Context, actor *authdomain.Identity, rawID string) (bool, error) {
	if err := s.gate.RequireAdmin(ctx, actor); err != nil {
		return false, err
	}
	id, err := domain.ParseID(rawID)
	if err != nil {
		return false, err
	}
	removal, err := s.store.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if s.events != nil && len(removal.Comments) > 0 {
		s.events.PublishRemoved(ctx, id, removal.Comments)
	}
	return removal.Deleted, nil
}
