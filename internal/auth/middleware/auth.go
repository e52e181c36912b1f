package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/myinsta/portfolio-backend/internal/apperr"
	"github.com/myinsta/portfolio-backend/internal/auth"
	"github.com/myinsta/portfolio-backend/internal/auth/domain"
)

// Authenticate attaches the caller's identity when the request carries
// credentials. Anonymous requests pass through; invalid credentials get 401.
func Authenticate(a auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := a.Authenticate(c.Request)
		if err != nil {
			if !apperr.Is(err, apperr.KindUnauthenticated) {
				err = domain.ErrInvalidToken
			}
			apperr.Respond(c, err)
			return
		}
		if id != nil {
			auth.SetIdentity(c, id)
		}
		c.Next()
	}
}

// RequireUser rejects anonymous requests with 401.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth.IdentityFrom(c) == nil {
			apperr.Respond(c, domain.ErrUnauthenticated)
			return
		}
		c.Next()
	}
}
