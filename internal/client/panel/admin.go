package panel

import (
	"context"
	"fmt"
	"sync"

	authdomain "github.com/myinsta/portfolio-backend/internal/auth/domain"
	authservice "github.com/myinsta/portfolio-backend/internal/auth/service"
	"github.com/myinsta/portfolio-backend/internal/projects/domain"
	uploaddomain "github.com/myinsta/portfolio-backend/internal/upload/domain"
)

type AdminAPI interface {
	Me(ctx context.Context) (*authservice.Me, error)
	ListProjects(ctx context.Context) ([]domain.Project, error)
	CreateProject(ctx context.Context, in domain.CreateInput) (*domain.Project, error)
	UpdateProject(ctx context.Context, id string, patch domain.UpdatePatch) (*domain.Project, error)
	DeleteProject(ctx context.Context, id string) (bool, error)
	Upload(ctx context.Context, f uploaddomain.File) (*uploaddomain.Result, error)
}

// AdminController drives the project admin screen. Every successful
// mutation is followed by a full reload of the list.
type AdminController struct {
	api AdminAPI

	mu       sync.RWMutex
	projects []domain.Project
}

func NewAdminController(api AdminAPI) *AdminController {
	return &AdminController{api: api}
}

// EnsureAdmin returns the caller's view when they hold the admin flag.
func (a *AdminController) EnsureAdmin(ctx context.Context) (*authservice.Me, error) {
	me, err := a.api.Me(ctx)
	if err != nil {
		return nil, err
	}
	if !me.IsAdmin {
		return me, authdomain.ErrNotAdmin
	}
	return me, nil
}

func (a *AdminController) Projects() []domain.Project {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]domain.Project(nil), a.projects...)
}

func (a *AdminController) Load(ctx context.Context) error {
	list, err := a.api.ListProjects(ctx)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.projects = list
	a.mu.Unlock()
	return nil
}

func (a *AdminController) Create(ctx context.Context, in domain.CreateInput) (*domain.Project, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p, err := a.api.CreateProject(ctx, in)
	if err != nil {
		return nil, err
	}
	return p, a.reload(ctx)
}

func (a *AdminController) Update(ctx context.Context, id string, patch domain.UpdatePatch) (*domain.Project, error) {
	id, err := domain.ParseID(id)
	if err != nil {
		return nil, err
	}
	patch.Normalize()
	if patch.IsEmpty() {
		return nil, domain.ErrEmptyPatch
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	p, err := a.api.UpdateProject(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	return p, a.reload(ctx)
}

func (a *AdminController) Delete(ctx context.Context, id string) (bool, error) {
	id, err := domain.ParseID(id)
	if err != nil {
		return false, err
	}
	deleted, err := a.api.DeleteProject(ctx, id)
	if err != nil {
		return false, err
	}
	return deleted, a.reload(ctx)
}

// UploadImage uploads f; the API client rejects bad files before sending.
func (a *AdminController) UploadImage(ctx context.Context, f uploaddomain.File) (*uploaddomain.Result, error) {
	return a.api.Upload(ctx, f)
}

func (a *AdminController) reload(ctx context.Context) error {
	if err := a.Load(ctx); err != nil {
		return fmt.Errorf("refresh projects: %w", err)
	}
	return nil
}
