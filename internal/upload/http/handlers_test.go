package http

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myinsta/portfolio-backend/internal/auth"
	authdomain "github.com/myinsta/portfolio-backend/internal/auth/domain"
	"github.com/myinsta/portfolio-backend/internal/auth/middleware"
	"github.com/myinsta/portfolio-backend/internal/upload/domain"
	"github.com/myinsta/portfolio-backend/internal/upload/service"
)

type adminGate struct{}

func (adminGate) RequireAdmin(_ context.Context, actor *authdomain.Identity) error {
	switch {
	case actor == nil:
		return authdomain.ErrUnauthenticated
	case actor.UserID != "admin":
		return authdomain.ErrNotAdmin
	}
	return nil
}

type stubUploader struct{ calls int }

func (s *stubUploader) Upload(_ context.Context, f domain.File) (*domain.Result, error) {
	s.calls++
	return &domain.Result{
		URL:         "https://res.cloudinary.com/demo/image/upload/c_limit/v1/a.png",
		OriginalURL: "https://res.cloudinary.com/demo/image/upload/v1/a.png",
		PublicID:    "projects/a",
		Width:       2,
		Height:      2,
	}, nil
}

func setup(maxBytes int64) (*gin.Engine, *stubUploader) {
	gin.SetMode(gin.TestMode)
	up := &stubUploader{}
	r := gin.New()
	api := r.Group("/api/v1", middleware.Authenticate(auth.Header{}))
	New(service.NewUploadService(adminGate{}, up, "test", maxBytes)).Register(api)
	return r, up
}

func multipartReq(t *testing.T, uid, field, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="a.png"`)
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if uid != "" {
		req.Header.Set("X-User-Id", uid)
	}
	return req
}

func do(r http.Handler, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func pngData(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func TestUpload_OK(t *testing.T) {
	r, up := setup(1 << 20)

	w, body := do(r, multipartReq(t, "admin", "file", "image/png", pngData(t)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/c_limit/v1/a.png", body["url"])
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/v1/a.png", body["originalUrl"])
	assert.Equal(t, "projects/a", body["public_id"])
	assert.EqualValues(t, 2, body["width"])
	assert.Equal(t, 1, up.calls)
}

func TestUpload_Rejections(t *testing.T) {
	data := pngData(t)

	tests := []struct {
		name       string
		uid        string
		field      string
		ct         string
		data       []byte
		maxBytes   int64
		wantStatus int
		wantError  string
	}{
		{"anonymous", "", "file", "image/png", data, 1 << 20, http.StatusUnauthorized, ""},
		{"not admin", "visitor", "file", "image/png", data, 1 << 20, http.StatusForbidden, ""},
		{"missing file", "admin", "", "", nil, 1 << 20, http.StatusBadRequest, "No file provided"},
		{"wrong field name", "admin", "image", "image/png", data, 1 << 20, http.StatusBadRequest, "No file provided"},
		{"bad declared type", "admin", "file", "application/pdf", data, 1 << 20, http.StatusBadRequest, "Invalid file type. Only JPEG, PNG, GIF, and WebP are allowed."},
		{"too large", "admin", "file", "image/png", data, 16, http.StatusBadRequest, "File too large. Maximum size is 16 bytes."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, up := setup(tt.maxBytes)
			w, body := do(r, multipartReq(t, tt.uid, tt.field, tt.ct, tt.data))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, false, body["ok"])
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body["error"])
			}
			assert.Zero(t, up.calls)
		})
	}
}
