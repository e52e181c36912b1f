// Package seed loads demo projects and comments from a YAML file.
package seed

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	commentdomain "github.com/myinsta/portfolio-backend/internal/comments/domain"
	"github.com/myinsta/portfolio-backend/internal/projects/domain"
)

type File struct {
	Projects []Project `yaml:"projects"`
}

type Project struct {
	ID          string    `yaml:"id"`
	Title       string    `yaml:"title"`
	Description string    `yaml:"description"`
	ImageURL    string    `yaml:"image_url"`
	GithubURL   string    `yaml:"github_url"`
	DemoURL     string    `yaml:"demo_url"`
	Date        string    `yaml:"date"`
	Comments    []Comment `yaml:"comments"`
}

type Comment struct {
	UserID  string `yaml:"user_id"`
	Content string `yaml:"content"`
}

func opt(s string) *string { return &s }

// Input converts the entry into a normalized CreateInput.
func (p Project) Input() domain.CreateInput {
	in := domain.CreateInput{
		Title:       p.Title,
		Description: opt(p.Description),
		ImageURL:    opt(p.ImageURL),
		GithubURL:   opt(p.GithubURL),
		DemoURL:     opt(p.DemoURL),
		Date:        opt(p.Date),
	}
	in.Normalize()
	return in
}

// Load reads and validates a seed file.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(b)
}

// Parse decodes a seed document and canonicalizes ids. Every entry must carry
// a valid id and a valid project body. Duplicate ids are rejected.
func Parse(b []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	seen := make(map[string]bool, len(f.Projects))
	for i := range f.Projects {
		p := &f.Projects[i]
		id, err := domain.ParseID(p.ID)
		if err != nil {
			return nil, fmt.Errorf("projects[%d]: %w", i, err)
		}
		if seen[id] {
			return nil, fmt.Errorf("projects[%d]: duplicate id %s", i, id)
		}
		seen[id] = true
		p.ID = id

		if err := p.Input().Validate(); err != nil {
			return nil, fmt.Errorf("projects[%d]: %w", i, err)
		}
		for j, c := range p.Comments {
			if c.UserID == "" {
				return nil, fmt.Errorf("projects[%d].comments[%d]: user_id is required", i, j)
			}
			content, err := commentdomain.NormalizeContent(c.Content)
			if err != nil {
				return nil, fmt.Errorf("projects[%d].comments[%d]: %w", i, j, err)
			}
			p.Comments[j].Content = content
		}
	}
	return &f, nil
}

type ProjectStore interface {
	Upsert(ctx context.Context, id string, in domain.CreateInput) (*domain.Project, error)
}

type CommentStore interface {
	List(ctx context.Context, projectID string) ([]commentdomain.Comment, error)
	Create(ctx context.Context, projectID, userID, content string) (*commentdomain.Comment, error)
}

type Stats struct {
	Projects int
	Comments int
	Skipped  int
}

// Apply upserts every project. Comments are only inserted for projects that
// have none yet, so re-running a seed does not duplicate them.
func Apply(ctx context.Context, f *File, projects ProjectStore, comments CommentStore) (Stats, error) {
	log := zerolog.Ctx(ctx)
	var st Stats

	for _, p := range f.Projects {
		if _, err := projects.Upsert(ctx, p.ID, p.Input()); err != nil {
			return st, fmt.Errorf("seed project %s: %w", p.ID, err)
		}
		st.Projects++

		if len(p.Comments) == 0 {
			continue
		}
		existing, err := comments.List(ctx, p.ID)
		if err != nil {
			return st, fmt.Errorf("list comments for %s: %w", p.ID, err)
		}
		if len(existing) > 0 {
			st.Skipped++
			log.Debug().Str("project_id", p.ID).Int("existing", len(existing)).Msg("comments already present")
			continue
		}
		for _, c := range p.Comments {
			if _, err := comments.Create(ctx, p.ID, c.UserID, c.Content); err != nil {
				return st, fmt.Errorf("seed comment for %s: %w", p.ID, err)
			}
			st.Comments++
		}
	}
	return st, nil
}
