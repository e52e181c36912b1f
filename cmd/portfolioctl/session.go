package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/myinsta/portfolio-backend/config"
	"github.com/myinsta/portfolio-backend/internal/auth"
	authdomain "github.com/myinsta/portfolio-backend/internal/auth/domain"
	"github.com/myinsta/portfolio-backend/internal/client"
	"github.com/myinsta/portfolio-backend/internal/client/session"
)

type staticToken string

func (t staticToken) Token(context.Context) (string, error) { return string(t), nil }

func loginCommand(args []string) error {
	cmd := &Command{Name: "login", Usage: "portfolioctl login --token <id-token> | --issue --uid <id>"}
	fs := cmd.NewFlagSet()
	token := fs.String("token", "", "identity token issued by the auth provider")
	issue := fs.Bool("issue", false, "sign a token locally with AUTH_JWT_SECRET")
	uid := fs.String("uid", "", "user id for --issue")
	email := fs.String("email", "", "email for --issue")
	provider := fs.String("provider", "email", "sign-in provider for --issue")
	username := fs.String("username", "", "provider username for --issue")
	ttl := fs.Duration("ttl", 24*time.Hour, "lifetime of an issued token")
	if err := fs.Parse(args); err != nil {
		return err
	}

	tok := *token
	if *issue {
		if *uid == "" {
			return errors.New("--issue needs --uid")
		}
		cfg := config.FromEnv()
		if cfg.Auth.JWTSecret == "" {
			return errors.New("--issue needs AUTH_JWT_SECRET")
		}
		var err error
		tok, err = auth.NewJWTVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer).Issue(authdomain.Identity{
			UserID:   *uid,
			Email:    *email,
			Provider: *provider,
			Username: *username,
		}, *ttl)
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}
	}
	if tok == "" {
		return fmt.Errorf("usage: %s", cmd.Usage)
	}

	ctx, stop := signalContext()
	defer stop()

	// The API is the source of truth for the identity behind the token.
	cfg := config.FromEnv()
	me, err := client.New(apiURL(), staticToken(tok), client.Options{Timeout: cfg.Upload.Timeout}).Me(ctx)
	if err != nil {
		return fmt.Errorf("verify token: %w", err)
	}

	store, err := openSession()
	if err != nil {
		return err
	}
	if err := store.SignIn(me.User, tok); err != nil {
		return err
	}
	printSession(store.Current(), me.IsAdmin)
	return nil
}

func logoutCommand(args []string) error {
	store, err := openSession()
	if err != nil {
		return err
	}
	if !store.Current().SignedIn() {
		fmt.Fprintln(os.Stdout, "not signed in")
		return nil
	}
	if err := store.SignOut(); err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, "signed out")
	return nil
}

func whoamiCommand(args []string) error {
	c, store, err := newClient()
	if err != nil {
		return err
	}
	if !store.Current().SignedIn() {
		return errors.New("not signed in, run portfolioctl login")
	}

	ctx, stop := signalContext()
	defer stop()

	me, err := c.Me(ctx)
	if err != nil {
		return err
	}
	printSession(store.Current(), me.IsAdmin)
	return nil
}

func printSession(st session.State, admin bool) {
	role := "user"
	if admin {
		role = "admin"
	}
	name := st.Handle
	if name == "" {
		name = st.Identity.UserID
	}
	fmt.Fprintf(os.Stdout, "signed in as %s (%s, %s)\n", name, st.Identity.UserID, role)
}
