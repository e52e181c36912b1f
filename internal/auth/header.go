package auth

import (
	"net/http"
	"strings"

	"github.com/myinsta/portfolio-backend/internal/auth/domain"
)

// Header trusts X-User-* headers. Use this ONLY for development/testing;
// config rejects it in production.
type Header struct{}

func (Header) Authenticate(r *http.Request) (*domain.Identity, error) {
	uid := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if uid == "" {
		return nil, nil
	}
	provider := strings.TrimSpace(r.Header.Get("X-User-Provider"))
	if provider == "" {
		provider = "email"
	}
	return &domain.Identity{
		UserID:   uid,
		Email:    strings.TrimSpace(r.Header.Get("X-User-Email")),
		Provider: provider,
		Username: strings.TrimSpace(r.Header.Get("X-User-Name")),
	}, nil
}
