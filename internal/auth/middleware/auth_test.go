package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/myinsta/portfolio-backend/internal/auth"
	"github.com/myinsta/portfolio-backend/internal/auth/domain"
)

type stubVerifier struct {
	ids map[string]*domain.Identity
	err error
}

func (s stubVerifier) Verify(_ context.Context, token string) (*domain.Identity, error) {
	if s.err != nil {
		return nil, s.err
	}
	if id, ok := s.ids[token]; ok {
		return id, nil
	}
	return nil, domain.ErrInvalidToken
}

func newRouter(a auth.Authenticator, require bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Authenticate(a))
	h := []gin.HandlerFunc{}
	if require {
		h = append(h, RequireUser())
	}
	h = append(h, func(c *gin.Context) {
		id := auth.IdentityFrom(c)
		if id == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		if auth.FromContext(c.Request.Context()) != id {
			c.String(http.StatusInternalServerError, "request context not updated")
			return
		}
		c.String(http.StatusOK, id.UserID)
	})
	r.GET("/x", h...)
	return r
}

func do(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	a := auth.Bearer{Verifier: stubVerifier{ids: map[string]*domain.Identity{
		"good": {UserID: "u-1", Email: "u1@example.com"},
	}}}

	t.Run("anonymous passes through", func(t *testing.T) {
		w := do(newRouter(a, false), "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "anonymous", w.Body.String())
	})

	t.Run("valid token attaches identity", func(t *testing.T) {
		w := do(newRouter(a, false), "Bearer good")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "u-1", w.Body.String())
	})

	t.Run("invalid token is rejected", func(t *testing.T) {
		w := do(newRouter(a, false), "Bearer nope")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), `"code":"unauthenticated"`)
	})

	t.Run("verifier failure is reported as invalid token", func(t *testing.T) {
		broken := auth.Bearer{Verifier: stubVerifier{err: errors.New("jwks fetch failed")}}
		w := do(newRouter(broken, false), "Bearer good")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireUser(t *testing.T) {
	a := auth.Bearer{Verifier: stubVerifier{ids: map[string]*domain.Identity{"good": {UserID: "u-1"}}}}

	assert.Equal(t, http.StatusUnauthorized, do(newRouter(a, true), "").Code)
	assert.Equal(t, http.StatusOK, do(newRouter(a, true), "Bearer good").Code)
}
