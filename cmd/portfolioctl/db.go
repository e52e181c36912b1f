package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	authdomain "github.com/myinsta/portfolio-backend/internal/auth/domain"
	authrepo "github.com/myinsta/portfolio-backend/internal/auth/repository"
	authservice "github.com/myinsta/portfolio-backend/internal/auth/service"
	commentrepo "github.com/myinsta/portfolio-backend/internal/comments/repository"
	projectrepo "github.com/myinsta/portfolio-backend/internal/projects/repository"
	"github.com/myinsta/portfolio-backend/internal/seed"
	"github.com/myinsta/portfolio-backend/migrations"
)

func migrateCommand(args []string) error {
	ctx, stop := signalContext()
	defer stop()
	log := zerolog.Ctx(ctx)

	d, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	applied, err := migrations.Apply(ctx, d.SQL)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		log.Info().Msg("schema is up to date")
		return nil
	}
	for _, name := range applied {
		log.Info().Str("migration", name).Msg("applied")
	}
	return nil
}

func seedCommand(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: portfolioctl seed <file>")
	}
	f, err := seed.Load(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	d, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	st, err := seed.Apply(ctx, f,
		projectrepo.NewProjectRepository(d.SQL),
		commentrepo.NewCommentRepository(d.SQL),
	)
	if err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().
		Int("projects", st.Projects).
		Int("comments", st.Comments).
		Int("skipped", st.Skipped).
		Msg("seed applied")
	return nil
}

// parseUserArgs accepts "<user-id> [--email addr]" with the flag on either
// side of the id.
func parseUserArgs(name string, args []string) (id, email string, err error) {
	cmd := &Command{Name: name, Usage: "portfolioctl " + name + " <user-id> [--email addr]"}
	fs := cmd.NewFlagSet()
	fs.StringVar(&email, "email", "", "email stored on the profile row")

	var rest []string
	for len(args) > 0 {
		if err := fs.Parse(args); err != nil {
			return "", "", err
		}
		if fs.NArg() == 0 {
			break
		}
		rest = append(rest, fs.Arg(0))
		args = fs.Args()[1:]
	}
	if len(rest) != 1 || rest[0] == "" {
		return "", "", fmt.Errorf("usage: %s", cmd.Usage)
	}
	return rest[0], email, nil
}

func setAdminCommand(name string, args []string, admin bool) error {
	id, email, err := parseUserArgs(name, args)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	d, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	svc := authservice.NewAuthService(authrepo.NewProfileRepository(d.SQL))
	p, err := svc.SetAdmin(ctx, id, email, admin)
	if err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Str("user_id", p.ID).Bool("is_admin", p.IsAdmin).Msg("profile updated")
	return nil
}

func adminSQLCommand(args []string) error {
	id, email, err := parseUserArgs("admin-sql", args)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, authdomain.AdminGrantSQL(id, email))
	return nil
}
