package domain

import (
	"strings"
	"time"

	"github.com/myinsta/portfolio-backend/internal/apperr"
)

// Identity is the verified caller of a request, as reported by the identity
// provider.
type Identity struct {
	UserID   string `json:"id"`
	Email    string `json:"email,omitempty"`
	Provider string `json:"provider,omitempty"`
	Username string `json:"username,omitempty"`
}

// Profile is the application row for an identity. IsAdmin is the only
// authorization signal for write endpoints.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Provider  string    `json:"provider"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var (
	ErrUnauthenticated = apperr.Unauthenticated("authentication required")
	ErrNotAdmin        = apperr.Forbidden("admin access required")
	ErrProfileNotFound = apperr.NotFound("profile not found")
	ErrInvalidToken    = apperr.Unauthenticated("invalid token")
)

// DeriveHandle returns the display handle for id: the provider username for
// GitHub sign-ins, otherwise the local part of the email.
func DeriveHandle(id Identity) string {
	if id.Provider == "github" {
		if u := strings.TrimSpace(id.Username); u != "" {
			return u
		}
	}
	if local, _, ok := strings.Cut(id.Email, "@"); ok && local != "" {
		return local
	}
	if id.Email != "" {
		return id.Email
	}
	return ""
}

// AdminGrantSQL is the statement an operator runs out-of-band to make the
// identity an admin.
func AdminGrantSQL(id, email string) string {
	return "INSERT INTO profiles (id, email, is_admin, created_at) VALUES ('" +
		quote(id) + "', '" + quote(email) + "', true, NOW()) " +
		"ON CONFLICT (id) DO UPDATE SET is_admin = true;"
}

func quote(s string) string { return strings.ReplaceAll(s, "'", "''") }
