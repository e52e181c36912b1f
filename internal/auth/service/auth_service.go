package service

import (
	"context"
	"errors"

	"github.com/myinsta/portfolio-backend/internal/auth/domain"
)

type ProfileStore interface {
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	Upsert(ctx context.Context, id domain.Identity) (*domain.Profile, error)
	SetAdmin(ctx context.Context, id, email string, admin bool) (*domain.Profile, error)
}

type AuthService struct {
	profiles ProfileStore
}

func NewAuthService(profiles ProfileStore) *AuthService {
	return &AuthService{profiles: profiles}
}

// Me is the view of the caller returned by GET /me.
type Me struct {
	User    domain.Identity `json:"user"`
	Handle  string          `json:"handle"`
	IsAdmin bool            `json:"is_admin"`
	Profile *domain.Profile `json:"profile,omitempty"`
}

// IsAdmin reads the admin flag from the caller's profile. A missing profile
// is not an admin.
func (s *AuthService) IsAdmin(ctx context.Context, actor *domain.Identity) (bool, error) {
	if actor == nil {
		return false, nil
	}
	p, err := s.profiles.GetByID(ctx, actor.UserID)
	if errors.Is(err, domain.ErrProfileNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return p.IsAdmin, nil
}

// RequireAdmin returns ErrUnauthenticated for anonymous callers and
// ErrNotAdmin for signed-in callers without the flag. It runs on every
// privileged request.
func (s *AuthService) RequireAdmin(ctx context.Context, actor *domain.Identity) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	ok, err := s.IsAdmin(ctx, actor)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotAdmin
	}
	return nil
}

func (s *AuthService) Me(ctx context.Context, actor *domain.Identity) (*Me, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	me := &Me{User: *actor, Handle: domain.DeriveHandle(*actor)}

	p, err := s.profiles.GetByID(ctx, actor.UserID)
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
	case err != nil:
		return nil, err
	default:
		me.Profile = p
		me.IsAdmin = p.IsAdmin
	}
	return me, nil
}

// Sync provisions or refreshes the caller's profile from the verified
// identity.
func (s *AuthService) Sync(ctx context.Context, actor *domain.Identity) (*domain.Profile, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	return s.profiles.Upsert(ctx, *actor)
}

func (s *AuthService) AdminSQL(actor *domain.Identity) (string, error) {
	if actor == nil {
		return "", domain.ErrUnauthenticated
	}
	return domain.AdminGrantSQL(actor.UserID, actor.Email), nil
}

// SetAdmin is the operator path used by portfolioctl.
func (s *AuthService) SetAdmin(ctx context.Context, id, email string, admin bool) (*domain.Profile, error) {
	return s.profiles.SetAdmin(ctx, id, email, admin)
}
