package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myinsta/portfolio-backend/internal/auth"
	"github.com/myinsta/portfolio-backend/internal/auth/domain"
	"github.com/myinsta/portfolio-backend/internal/auth/middleware"
	"github.com/myinsta/portfolio-backend/internal/auth/service"
)

type profiles map[string]*domain.Profile

func (p profiles) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	if row, ok := p[id]; ok {
		return row, nil
	}
	return nil, domain.ErrProfileNotFound
}

func (p profiles) Upsert(_ context.Context, id domain.Identity) (*domain.Profile, error) {
	row, ok := p[id.UserID]
	if !ok {
		row = &domain.Profile{ID: id.UserID}
		p[id.UserID] = row
	}
	row.Email, row.Provider = id.Email, id.Provider
	return row, nil
}

func (p profiles) SetAdmin(_ context.Context, id, email string, admin bool) (*domain.Profile, error) {
	row := &domain.Profile{ID: id, Email: email, IsAdmin: admin}
	p[id] = row
	return row, nil
}

func setup() (*gin.Engine, profiles) {
	gin.SetMode(gin.TestMode)
	store := profiles{"boss": {ID: "boss", Email: "boss@example.com", IsAdmin: true}}

	r := gin.New()
	api := r.Group("/api/v1", middleware.Authenticate(auth.Header{}))
	New(service.NewAuthService(store)).Register(api)
	return r, store
}

func call(r http.Handler, method, path, uid string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, path, nil)
	if uid != "" {
		req.Header.Set("X-User-Id", uid)
		req.Header.Set("X-User-Email", uid+"@example.com")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestGetMe(t *testing.T) {
	r, _ := setup()

	w, _ := call(r, http.MethodGet, "/api/v1/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body := call(r, http.MethodGet, "/api/v1/me", "boss")
	require.Equal(t, http.StatusOK, w.Code)
	me := body["me"].(map[string]any)
	assert.Equal(t, true, me["is_admin"])
	assert.Equal(t, "boss", me["handle"])

	w, body = call(r, http.MethodGet, "/api/v1/me", "guest")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["me"].(map[string]any)["is_admin"])
}

func TestSyncProfile(t *testing.T) {
	r, store := setup()

	w, _ := call(r, http.MethodPost, "/api/v1/auth/sync", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body := call(r, http.MethodPost, "/api/v1/auth/sync", "guest")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["profile"].(map[string]any)["is_admin"])
	require.Contains(t, store, "guest")
	assert.Equal(t, "guest@example.com", store["guest"].Email)
}

func TestGetAdminSQL(t *testing.T) {
	r, _ := setup()

	w, _ := call(r, http.MethodGet, "/api/v1/me/admin-sql", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body := call(r, http.MethodGet, "/api/v1/me/admin-sql", "guest")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, body["sql"], "ON CONFLICT (id) DO UPDATE SET is_admin = true;")
}
