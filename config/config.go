package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Auth       AuthConfig
	Firebase   FirebaseConfig
	Upload     UploadConfig
	Cloudinary CloudinaryConfig
	S3         S3Config
	Realtime   RealtimeConfig
	Worker     WorkerConfig
	App        AppConfig
}

type ServerConfig struct {
	Port               string
	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration
}

type DatabaseConfig struct {
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	URL string
}

// Auth providers understood by AuthConfig.Provider.
const (
	AuthProviderFirebase = "firebase"
	AuthProviderJWT      = "jwt"
	AuthProviderHeader   = "header"
)

type AuthConfig struct {
	Provider  string
	JWTSecret string
	JWTIssuer string
}

type FirebaseConfig struct {
	CredentialsPath string
	ProjectID       string
}

// Upload backends understood by UploadConfig.Backend.
const (
	UploadBackendCloudinary = "cloudinary"
	UploadBackendS3         = "s3"
)

type UploadConfig struct {
	Backend        string
	MaxBytes       int64
	Folder         string
	Transformation string
	Timeout        time.Duration
}

// CloudinaryConfig is not validated at startup. Missing values surface as
// configuration errors on the upload endpoint.
type CloudinaryConfig struct {
	CloudName    string
	APIKey       string
	APISecret    string
	UploadPreset string
	APIBase      string
}

// S3Config falls back to the default AWS credential chain when the static
// keys are empty.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	PublicBaseURL   string
	AccessKeyID     string
	SecretAccessKey string
}

// Realtime sources understood by RealtimeConfig.Source.
const (
	RealtimeSourceApp      = "app"
	RealtimeSourcePostgres = "postgres"
)

type RealtimeConfig struct {
	Source            string
	KeepAliveInterval time.Duration
}

type WorkerConfig struct {
	ProfileSyncSchedule string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

// DefaultUploadMaxBytes is the single upload ceiling shared by the server and
// the client pre-check unless UPLOAD_MAX_BYTES overrides it.
const DefaultUploadMaxBytes int64 = 5 << 20

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FromEnv reads the configuration from the process environment without
// loading .env or validating.
func FromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			ShutdownTimeout:    getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			DSN:      getEnv("DB_DSN", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "portfolio"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 2),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379/0"),
		},
		Auth: AuthConfig{
			Provider:  strings.ToLower(getEnv("AUTH_PROVIDER", AuthProviderFirebase)),
			JWTSecret: getEnv("AUTH_JWT_SECRET", ""),
			JWTIssuer: getEnv("AUTH_JWT_ISSUER", ""),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		},
		Upload: UploadConfig{
			Backend:        strings.ToLower(getEnv("UPLOAD_BACKEND", UploadBackendCloudinary)),
			MaxBytes:       getEnvAsInt64("UPLOAD_MAX_BYTES", DefaultUploadMaxBytes),
			Folder:         getEnv("UPLOAD_FOLDER", "projects"),
			Transformation: getEnv("UPLOAD_TRANSFORMATION", "c_limit,w_1200,q_auto,f_auto"),
			Timeout:        getEnvAsDuration("UPLOAD_TIMEOUT", 30*time.Second),
		},
		Cloudinary: CloudinaryConfig{
			CloudName:    getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:       getEnv("CLOUDINARY_API_KEY", ""),
			APISecret:    getEnv("CLOUDINARY_API_SECRET", ""),
			UploadPreset: getEnv("CLOUDINARY_UPLOAD_PRESET", ""),
			APIBase:      getEnv("CLOUDINARY_API_BASE", "https://api.cloudinary.com"),
		},
		S3: S3Config{
			Bucket:          getEnv("S3_BUCKET", ""),
			Region:          getEnv("S3_REGION", "us-east-1"),
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			PublicBaseURL:   getEnv("S3_PUBLIC_BASE_URL", ""),
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		},
		Realtime: RealtimeConfig{
			Source:            strings.ToLower(getEnv("REALTIME_SOURCE", RealtimeSourceApp)),
			KeepAliveInterval: getEnvAsDuration("REALTIME_KEEPALIVE", 15*time.Second),
		},
		Worker: WorkerConfig{
			ProfileSyncSchedule: getEnv("PROFILE_SYNC_SCHEDULE", "0 0 3 * * *"),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.DSN == "" && c.Database.Host == "" {
		return fmt.Errorf("DB_DSN or DB_HOST is required")
	}

	switch c.Auth.Provider {
	case AuthProviderFirebase:
		if c.Firebase.CredentialsPath == "" {
			return fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required when AUTH_PROVIDER=firebase")
		}
	case AuthProviderJWT:
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("AUTH_JWT_SECRET is required when AUTH_PROVIDER=jwt")
		}
	case AuthProviderHeader:
		if c.IsProduction() {
			return fmt.Errorf("AUTH_PROVIDER=header is not allowed in production")
		}
	default:
		return fmt.Errorf("unknown AUTH_PROVIDER %q", c.Auth.Provider)
	}

	switch c.Upload.Backend {
	case UploadBackendCloudinary, UploadBackendS3:
	default:
		return fmt.Errorf("unknown UPLOAD_BACKEND %q", c.Upload.Backend)
	}

	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}

	switch c.Realtime.Source {
	case RealtimeSourceApp, RealtimeSourcePostgres:
	default:
		return fmt.Errorf("unknown REALTIME_SOURCE %q", c.Realtime.Source)
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// DatabaseDSN returns DB_DSN when set, otherwise a key/value DSN built from
// the individual DB_* settings.
func (c *DatabaseConfig) DatabaseDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	out := make([]string, 0, 4)
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
