package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/myinsta/portfolio-backend/config"
	"github.com/myinsta/portfolio-backend/internal/bootstrap"
	"github.com/myinsta/portfolio-backend/internal/client"
	"github.com/myinsta/portfolio-backend/internal/client/session"
	"github.com/myinsta/portfolio-backend/internal/db"
)

// Set via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	_ = godotenv.Load()

	registry := NewCommandRegistry(VersionInfo{Version: version, Commit: commit, Date: date})
	registerCommands(registry)

	if err := registry.Execute(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func registerCommands(r *CommandRegistry) {
	r.Register(&Command{
		Name:        "migrate",
		Description: "Apply pending database migrations",
		Usage:       "portfolioctl migrate",
		Examples:    []string{"DB_DSN=postgres://localhost/portfolio portfolioctl migrate"},
		Run:         migrateCommand,
	})
	r.Register(&Command{
		Name:        "seed",
		Description: "Load demo projects and comments from a YAML file",
		Usage:       "portfolioctl seed <file>",
		Examples:    []string{"portfolioctl seed seeds/projects.yaml"},
		Run:         seedCommand,
	})
	r.Register(&Command{
		Name:        "grant-admin",
		Description: "Mark a user as admin",
		Usage:       "portfolioctl grant-admin <user-id> [--email addr]",
		Examples:    []string{"portfolioctl grant-admin 8Yq3xT0 --email me@example.com"},
		Run:         func(args []string) error { return setAdminCommand("grant-admin", args, true) },
	})
	r.Register(&Command{
		Name:        "revoke-admin",
		Description: "Remove admin rights from a user",
		Usage:       "portfolioctl revoke-admin <user-id>",
		Run:         func(args []string) error { return setAdminCommand("revoke-admin", args, false) },
	})
	r.Register(&Command{
		Name:        "admin-sql",
		Description: "Print the SQL that grants admin to a user",
		Usage:       "portfolioctl admin-sql <user-id> [--email addr]",
		Run:         adminSQLCommand,
	})
	r.Register(&Command{
		Name:        "login",
		Description: "Save an API session",
		Usage:       "portfolioctl login --token <id-token> | --issue --uid <id> [--email addr] [--provider name]",
		Examples: []string{
			"portfolioctl login --token eyJhbGciOi...",
			"AUTH_JWT_SECRET=dev portfolioctl login --issue --uid dev-admin --email admin@example.com",
		},
		Run: loginCommand,
	})
	r.Register(&Command{
		Name:        "logout",
		Description: "Forget the saved API session",
		Usage:       "portfolioctl logout",
		Run:         logoutCommand,
	})
	r.Register(&Command{
		Name:        "whoami",
		Description: "Show the signed-in user as the API sees it",
		Usage:       "portfolioctl whoami",
		Run:         whoamiCommand,
	})
	r.Register(&Command{
		Name:        "projects",
		Description: "List and manage projects",
		Usage:       "portfolioctl projects <list|show|create|update|delete> [arguments]",
		Examples: []string{
			"portfolioctl projects list",
			"portfolioctl projects create --title \"My app\" --date 2026-03-01 --image ./shot.png",
			"portfolioctl projects update <id> --demo-url \"\"",
			"portfolioctl projects delete <id>",
		},
		Run: projectsCommand,
	})
	r.Register(&Command{
		Name:        "comments",
		Description: "Read, follow and post project comments",
		Usage:       "portfolioctl comments <list|watch|post|delete> <project-id> [arguments]",
		Examples: []string{
			"portfolioctl comments watch 00000000-0000-0000-0000-000000000001",
			"portfolioctl comments post 00000000-0000-0000-0000-000000000001 \"Nice work\"",
		},
		Run: commentsCommand,
	})
	r.Register(&Command{
		Name:        "upload",
		Description: "Upload an image and print its URL",
		Usage:       "portfolioctl upload <file>",
		Run:         uploadCommand,
	})
}

func newLogger() zerolog.Logger {
	return bootstrap.NewLogger(os.Getenv("LOG_LEVEL"), "development")
}

// signalContext is cancelled on SIGINT/SIGTERM and carries the CLI logger.
func signalContext() (context.Context, context.CancelFunc) {
	log := newLogger()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	return log.WithContext(ctx), stop
}

func openDB(ctx context.Context) (*db.DB, error) {
	cfg := config.FromEnv()
	return bootstrap.OpenDB(ctx, bootstrap.DBOptions{Config: cfg.Database})
}

func sessionPath() (string, error) {
	if p := os.Getenv("PORTFOLIO_SESSION"); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "portfolioctl", "session.json"), nil
}

func openSession() (*session.Store, error) {
	path, err := sessionPath()
	if err != nil {
		return nil, err
	}
	return session.Open(path)
}

func apiURL() string {
	if u := os.Getenv("PORTFOLIO_API_URL"); u != "" {
		return u
	}
	return "http://localhost:" + config.FromEnv().Server.Port
}

// newClient returns an API client that authenticates with the saved session.
func newClient() (*client.Client, *session.Store, error) {
	store, err := openSession()
	if err != nil {
		return nil, nil, err
	}
	cfg := config.FromEnv()
	c := client.New(apiURL(), store, client.Options{
		Timeout:        cfg.Upload.Timeout,
		UploadMaxBytes: cfg.Upload.MaxBytes,
	})
	return c, store, nil
}
