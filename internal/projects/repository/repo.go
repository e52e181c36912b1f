package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	commentsdomain "github.com/myinsta/portfolio-backend/internal/comments/domain"
	"github.com/myinsta/portfolio-backend/internal/db"
	"github.com/myinsta/portfolio-backend/internal/projects/domain"
)

// ProjectRepository provides persistence operations for projects
type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `id, title, description, image_url, github_url, demo_url, date, created_at`

func scanProject(row interface{ Scan(...any) error }) (*domain.Project, error) {
	var p domain.Project
	var description, imageURL, githubURL, demoURL, date sql.NullString
	if err := row.Scan(&p.ID, &p.Title, &description, &imageURL, &githubURL, &demoURL, &date, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Description = fromNull(description)
	p.ImageURL = fromNull(imageURL)
	p.GithubURL = fromNull(githubURL)
	p.DemoURL = fromNull(demoURL)
	p.Date = fromNull(date)
	return &p, nil
}

// List returns every project, newest first.
func (r *ProjectRepository) List(ctx context.Context) ([]domain.Project, error) {
	const q = `
SELECT ` + projectColumns + `
FROM projects
ORDER BY created_at DESC;
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, db.Classify("list projects", err)
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, db.Classify("scan project", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, db.Classify("list projects", err)
	}
	return out, nil
}

func (r *ProjectRepository) Get(ctx context.Context, id string) (*domain.Project, error) {
	const q = `SELECT ` + projectColumns + ` FROM projects WHERE id = $1;`

	p, err := scanProject(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, db.Classify("get project", err)
	}
	return p, nil
}

// Create inserts a project; the store assigns id and created_at.
func (r *ProjectRepository) Create(ctx context.Context, in domain.CreateInput) (*domain.Project, error) {
	const q = `
INSERT INTO projects (title, description, image_url, github_url, demo_url, date)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + projectColumns + `;
`
	p, err := scanProject(r.db.QueryRowContext(ctx, q,
		in.Title, toNull(in.Description), toNull(in.ImageURL), toNull(in.GithubURL), toNull(in.DemoURL), toNull(in.Date),
	))
	if err != nil {
		return nil, db.Classify("create project", err)
	}
	return p, nil
}

// Upsert writes a project under a caller-chosen id, replacing every field
// of an existing row except created_at. Used by seeding.
func (r *ProjectRepository) Upsert(ctx context.Context, id string, in domain.CreateInput) (*domain.Project, error) {
	const q = `
INSERT INTO projects (id, title, description, image_url, github_url, demo_url, date)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE
SET title = EXCLUDED.title,
    description = EXCLUDED.description,
    image_url = EXCLUDED.image_url,
    github_url = EXCLUDED.github_url,
    demo_url = EXCLUDED.demo_url,
    date = EXCLUDED.date
RETURNING ` + projectColumns + `;
`
	p, err := scanProject(r.db.QueryRowContext(ctx, q,
		id, in.Title, toNull(in.Description), toNull(in.ImageURL), toNull(in.GithubURL), toNull(in.DemoURL), toNull(in.Date),
	))
	if err != nil {
		return nil, db.Classify("upsert project", err)
	}
	return p, nil
}

// Update applies the non-nil fields of patch. Empty strings store NULL.
func (r *ProjectRepository) Update(ctx context.Context, id string, patch domain.UpdatePatch) (*domain.Project, error) {
	sets := make([]string, 0, 6)
	args := []any{id}
	add := func(col string, v *string) {
		if v == nil {
			return
		}
		args = append(args, toNull(v))
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	add("title", patch.Title)
	add("description", patch.Description)
	add("image_url", patch.ImageURL)
	add("github_url", patch.GithubURL)
	add("demo_url", patch.DemoURL)
	add("date", patch.Date)

	if len(sets) == 0 {
		return nil, domain.ErrEmptyPatch
	}

	q := `
UPDATE projects
SET ` + strings.Join(sets, ", ") + `
WHERE id = $1
RETURNING ` + projectColumns + `;
`
	p, err := scanProject(r.db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, db.Classify("update project", err)
	}
	return p, nil
}

// Delete removes a project and its comments in one transaction. The
// comments are deleted explicitly rather than by cascade so the caller can
// announce each one.
func (r *ProjectRepository) Delete(ctx context.Context, id string) (*domain.Removal, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, db.Classify("delete project", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
DELETE FROM project_comments
WHERE project_id = $1
RETURNING id, project_id, user_id, content, created_at;
`, id)
	if err != nil {
		return nil, db.Classify("delete project comments", err)
	}
	var removed []commentsdomain.Comment
	for rows.Next() {
		var c commentsdomain.Comment
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.UserID, &c.Content, &c.CreatedAt); err != nil {
			rows.Close()
			return nil, db.Classify("scan comment", err)
		}
		removed = append(removed, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, db.Classify("delete project comments", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = $1;`, id)
	if err != nil {
		return nil, db.Classify("delete project", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, db.Classify("delete project", err)
	}
	return &domain.Removal{Deleted: n > 0, Comments: removed}, nil
}

func fromNull(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func toNull(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
