package auth

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/myinsta/portfolio-backend/internal/auth/domain"
)

const CtxIdentity = "auth_identity"

type identityKey struct{}

// SetIdentity stores id in both the gin context and the request context.
func SetIdentity(c *gin.Context, id *domain.Identity) {
	c.Set(CtxIdentity, id)
	c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), id))
}

// IdentityFrom returns the caller attached by the auth middleware, nil when
// the request is anonymous.
func IdentityFrom(c *gin.Context) *domain.Identity {
	if v, ok := c.Get(CtxIdentity); ok {
		if id, ok := v.(*domain.Identity); ok {
			return id
		}
	}
	return nil
}

func WithIdentity(ctx context.Context, id *domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func FromContext(ctx context.Context) *domain.Identity {
	id, _ := ctx.Value(identityKey{}).(*domain.Identity)
	return id
}
