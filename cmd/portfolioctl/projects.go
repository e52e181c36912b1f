package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/myinsta/portfolio-backend/internal/client/panel"
	"github.com/myinsta/portfolio-backend/internal/projects/domain"
	uploaddomain "github.com/myinsta/portfolio-backend/internal/upload/domain"
)

func projectsCommand(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: portfolioctl projects <list|show|create|update|delete>")
	}

	c, _, err := newClient()
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	sub, rest := args[0], args[1:]
	switch sub {
	case "list":
		projects, err := c.ListProjects(ctx)
		if err != nil {
			return err
		}
		printProjects(projects)
		return nil
	case "show":
		if len(rest) != 1 {
			return errors.New("usage: portfolioctl projects show <id>")
		}
		p, err := c.GetProject(ctx, rest[0])
		if err != nil {
			return err
		}
		printProjects([]domain.Project{*p})
		return nil
	}

	admin := panel.NewAdminController(c)
	if _, err := admin.EnsureAdmin(ctx); err != nil {
		return err
	}

	switch sub {
	case "create":
		return createProject(ctx, admin, rest)
	case "update":
		return updateProject(ctx, admin, rest)
	case "delete":
		if len(rest) != 1 {
			return errors.New("usage: portfolioctl projects delete <id>")
		}
		deleted, err := admin.Delete(ctx, rest[0])
		if err != nil {
			return err
		}
		if !deleted {
			fmt.Fprintln(os.Stdout, "nothing to delete")
			return nil
		}
		fmt.Fprintln(os.Stdout, "deleted", rest[0])
		printProjects(admin.Projects())
		return nil
	default:
		return fmt.Errorf("unknown projects subcommand: %s", sub)
	}
}

// projectFlags binds the editable project fields. image is a local file that
// is uploaded before the write.
type projectFlags struct {
	title, description, imageURL, githubURL, demoURL, date, image string
}

func (f *projectFlags) bind(fs *flag.FlagSet) {
	fs.StringVar(&f.title, "title", "", "project title")
	fs.StringVar(&f.description, "description", "", "description")
	fs.StringVar(&f.imageURL, "image-url", "", "image URL")
	fs.StringVar(&f.githubURL, "github-url", "", "repository URL")
	fs.StringVar(&f.demoURL, "demo-url", "", "live demo URL")
	fs.StringVar(&f.date, "date", "", "project date, YYYY-MM-DD")
	fs.StringVar(&f.image, "image", "", "local image to upload")
}

func (f *projectFlags) uploadImage(ctx context.Context, admin *panel.AdminController) error {
	if f.image == "" {
		return nil
	}
	data, err := os.ReadFile(f.image)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	res, err := admin.UploadImage(ctx, uploaddomain.File{Name: filepath.Base(f.image), Data: data})
	if err != nil {
		return err
	}
	f.imageURL = res.URL
	return nil
}

func createProject(ctx context.Context, admin *panel.AdminController, args []string) error {
	cmd := &Command{Name: "projects create", Usage: "portfolioctl projects create --title <title> [flags]"}
	fs := cmd.NewFlagSet()
	var f projectFlags
	f.bind(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := f.uploadImage(ctx, admin); err != nil {
		return err
	}

	p, err := admin.Create(ctx, domain.CreateInput{
		Title:       f.title,
		Description: &f.description,
		ImageURL:    &f.imageURL,
		GithubURL:   &f.githubURL,
		DemoURL:     &f.demoURL,
		Date:        &f.date,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, "created", p.ID)
	printProjects(admin.Projects())
	return nil
}

// updateProject sends only the flags given on the command line. An explicit
// empty value clears the field.
func updateProject(ctx context.Context, admin *panel.AdminController, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: portfolioctl projects update <id> [flags]")
	}
	id := args[0]

	cmd := &Command{Name: "projects update", Usage: "portfolioctl projects update <id> [flags]"}
	fs := cmd.NewFlagSet()
	var f projectFlags
	f.bind(fs)
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if err := f.uploadImage(ctx, admin); err != nil {
		return err
	}

	var patch domain.UpdatePatch
	fields := map[string]**string{
		"title":       &patch.Title,
		"description": &patch.Description,
		"image-url":   &patch.ImageURL,
		"github-url":  &patch.GithubURL,
		"demo-url":    &patch.DemoURL,
		"date":        &patch.Date,
	}
	values := map[string]*string{
		"title":       &f.title,
		"description": &f.description,
		"image-url":   &f.imageURL,
		"github-url":  &f.githubURL,
		"demo-url":    &f.demoURL,
		"date":        &f.date,
	}
	fs.Visit(func(fl *flag.Flag) {
		if dst, ok := fields[fl.Name]; ok {
			*dst = values[fl.Name]
		}
	})
	if f.image != "" {
		patch.ImageURL = &f.imageURL
	}

	p, err := admin.Update(ctx, id, patch)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, "updated", p.ID)
	printProjects(admin.Projects())
	return nil
}

func printProjects(projects []domain.Project) {
	if len(projects) == 0 {
		fmt.Fprintln(os.Stdout, "no projects")
		return
	}
	t := NewTableWriter([]string{"ID", "TITLE", "DATE", "IMAGE"})
	for _, p := range projects {
		t.AddRow([]string{p.ID, p.Title, deref(p.Date), deref(p.ImageURL)})
	}
	t.Print(os.Stdout)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
