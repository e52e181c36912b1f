package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/myinsta/portfolio-backend/internal/auth/domain"
)

// Authenticator resolves the caller of r. It returns (nil, nil) when r
// carries no credentials at all, and an error when credentials are present
// but invalid.
type Authenticator interface {
	Authenticate(r *http.Request) (*domain.Identity, error)
}

// TokenVerifier turns a bearer token into an identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*domain.Identity, error)
}

// Bearer authenticates requests carrying "Authorization: Bearer <token>".
type Bearer struct {
	Verifier TokenVerifier
}

func (b Bearer) Authenticate(r *http.Request) (*domain.Identity, error) {
	token := ExtractToken(r.Header.Get("Authorization"))
	if token == "" {
		return nil, nil
	}
	return b.Verifier.Verify(r.Context(), token)
}

// ExtractToken extracts the Bearer token from an Authorization header value.
func ExtractToken(header string) string {
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
