package cdn

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myinsta/portfolio-backend/config"
	"github.com/myinsta/portfolio-backend/internal/apperr"
	"github.com/myinsta/portfolio-backend/internal/upload/domain"
)

var gifFile = domain.File{Name: "a.gif", ContentType: "image/gif", Data: []byte("GIF89a\x04\x00\x05\x00")}

func uploadCfg() config.UploadConfig {
	return config.UploadConfig{Folder: "projects", Transformation: "c_limit,w_1200,q_auto,f_auto", Timeout: 5 * time.Second}
}

func TestSign(t *testing.T) {
	params := map[string]string{
		"timestamp":     "1315060510",
		"public_id":     "sample_image",
		"eager":         "w_400,h_300,c_pad|w_260,h_200,c_crop",
		"file":          "data:...",
		"api_key":       "key",
		"resource_type": "image",
		"empty":         "",
	}
	// Reference value from the Cloudinary signature documentation.
	assert.Equal(t, "bfd09f95f331f558cbd1320e67aa8d488770583e", Sign(params, "abcd"))
}

func TestTransformURL(t *testing.T) {
	u := "https://res.cloudinary.com/demo/image/upload/v1/projects/x.png"
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/c_limit,w_1200/v1/projects/x.png", TransformURL(u, "c_limit,w_1200"))
	assert.Equal(t, u, TransformURL(u, ""))
}

func TestCloudinaryUpload_Unsigned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1_1/demo/image/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "preset", r.FormValue("upload_preset"))
		assert.Equal(t, "projects", r.FormValue("folder"))
		assert.Equal(t, domain.DataURI(gifFile), r.FormValue("file"))
		assert.Empty(t, r.FormValue("signature"))
		assert.Empty(t, r.FormValue("api_key"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"secure_url": "https://res.cloudinary.com/demo/image/upload/v1/projects/abc.gif",
			"public_id":  "projects/abc",
			"width":      4,
			"height":     5,
		})
	}))
	defer srv.Close()

	c := NewCloudinary(config.CloudinaryConfig{CloudName: "demo", UploadPreset: "preset", APIBase: srv.URL}, uploadCfg())
	res, err := c.Upload(testContext(t), gifFile)
	require.NoError(t, err)

	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/c_limit,w_1200,q_auto,f_auto/v1/projects/abc.gif", res.URL)
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/v1/projects/abc.gif", res.OriginalURL)
	assert.Equal(t, "projects/abc", res.PublicID)
	assert.Equal(t, 4, res.Width)
	assert.Equal(t, 5, res.Height)
}

func TestCloudinaryUpload_Signed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "key", r.FormValue("api_key"))
		assert.Equal(t, "1700000000", r.FormValue("timestamp"))
		assert.Empty(t, r.FormValue("upload_preset"))

		want := Sign(map[string]string{"folder": "projects", "timestamp": "1700000000"}, "secret")
		assert.Equal(t, want, r.FormValue("signature"))

		_ = json.NewEncoder(w).Encode(map[string]any{"secure_url": "https://cdn/image/upload/x.png", "public_id": "x"})
	}))
	defer srv.Close()

	c := NewCloudinary(config.CloudinaryConfig{CloudName: "demo", APIKey: "key", APISecret: "secret", APIBase: srv.URL}, uploadCfg())
	c.now = func() time.Time { return time.Unix(1700000000, 0) }

	_, err := c.Upload(testContext(t), gifFile)
	require.NoError(t, err)
}

func TestCloudinaryUpload_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid image file"}}`))
	}))
	defer srv.Close()

	c := NewCloudinary(config.CloudinaryConfig{CloudName: "demo", UploadPreset: "p", APIBase: srv.URL}, uploadCfg())
	_, err := c.Upload(testContext(t), gifFile)
	require.Error(t, err)

	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindUpstream, e.Kind)
	assert.Equal(t, "Upload failed", e.Message)
	assert.Equal(t, "Invalid image file", e.Details)
}

func TestCloudinaryUpload_Misconfigured(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	defer srv.Close()

	tests := []struct {
		name string
		cfg  config.CloudinaryConfig
		msg  string
	}{
		{"no cloud name", config.CloudinaryConfig{UploadPreset: "p", APIBase: srv.URL}, "Cloudinary cloud name not configured"},
		{"no preset and no secret", config.CloudinaryConfig{CloudName: "demo", APIKey: "k", APIBase: srv.URL}, "Cloudinary API credentials not configured"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCloudinary(tt.cfg, uploadCfg()).Upload(testContext(t), gifFile)
			require.Error(t, err)
			assert.Equal(t, apperr.KindConfiguration, apperr.KindOf(err))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
	assert.False(t, called, "no request is sent when misconfigured")
}
