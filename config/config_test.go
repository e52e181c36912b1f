package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("AUTH_PROVIDER", "")
	t.Setenv("UPLOAD_MAX_BYTES", "")
	t.Setenv("REALTIME_SOURCE", "")

	cfg := FromEnv()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, AuthProviderFirebase, cfg.Auth.Provider)
	assert.Equal(t, DefaultUploadMaxBytes, cfg.Upload.MaxBytes)
	assert.Equal(t, "projects", cfg.Upload.Folder)
	assert.Equal(t, "c_limit,w_1200,q_auto,f_auto", cfg.Upload.Transformation)
	assert.Equal(t, RealtimeSourceApp, cfg.Realtime.Source)
	assert.Equal(t, 15*time.Second, cfg.Realtime.KeepAliveInterval)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("UPLOAD_MAX_BYTES", "1048576")
	t.Setenv("UPLOAD_TIMEOUT", "5s")
	t.Setenv("DB_MAX_CONNS", "not-a-number")

	cfg := FromEnv()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, int64(1048576), cfg.Upload.MaxBytes)
	assert.Equal(t, 5*time.Second, cfg.Upload.Timeout)
	assert.Equal(t, 10, cfg.Database.MaxConns, "invalid ints fall back to the default")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := FromEnv()
		cfg.Auth.Provider = AuthProviderJWT
		cfg.Auth.JWTSecret = "secret"
		cfg.Upload.Backend = UploadBackendCloudinary
		cfg.Upload.MaxBytes = DefaultUploadMaxBytes
		cfg.Realtime.Source = RealtimeSourceApp
		cfg.App.Environment = "development"
		return cfg
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"firebase without credentials", func(c *Config) {
			c.Auth.Provider = AuthProviderFirebase
			c.Firebase.CredentialsPath = ""
		}, "FIREBASE_CREDENTIALS_PATH"},
		{"jwt without secret", func(c *Config) { c.Auth.JWTSecret = "" }, "AUTH_JWT_SECRET"},
		{"header mode in production", func(c *Config) {
			c.Auth.Provider = AuthProviderHeader
			c.App.Environment = "production"
		}, "not allowed in production"},
		{"unknown auth provider", func(c *Config) { c.Auth.Provider = "saml" }, "unknown AUTH_PROVIDER"},
		{"unknown upload backend", func(c *Config) { c.Upload.Backend = "ftp" }, "unknown UPLOAD_BACKEND"},
		{"non-positive upload ceiling", func(c *Config) { c.Upload.MaxBytes = 0 }, "UPLOAD_MAX_BYTES"},
		{"unknown realtime source", func(c *Config) { c.Realtime.Source = "kafka" }, "unknown REALTIME_SOURCE"},
		{"missing database", func(c *Config) {
			c.Database.DSN = ""
			c.Database.Host = ""
		}, "DB_DSN or DB_HOST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestDatabaseDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Name: "n"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=n sslmode=disable", db.DatabaseDSN())

	db.DSN = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", db.DatabaseDSN())
}
