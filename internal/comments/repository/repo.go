package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/myinsta/portfolio-backend/internal/comments/domain"
	"github.com/myinsta/portfolio-backend/internal/db"
)

type CommentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

const commentColumns = `id, project_id, user_id, content, created_at`

func scanComment(row interface{ Scan(...any) error }) (*domain.Comment, error) {
	var c domain.Comment
	if err := row.Scan(&c.ID, &c.ProjectID, &c.UserID, &c.Content, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns a project's comments, newest first.
func (r *CommentRepository) List(ctx context.Context, projectID string) ([]domain.Comment, error) {
	const q = `
SELECT ` + commentColumns + `
FROM project_comments
WHERE project_id = $1
ORDER BY created_at DESC;
`
	rows, err := r.db.QueryContext(ctx, q, projectID)
	if err != nil {
		return nil, db.Classify("list comments", err)
	}
	defer rows.Close()

	out := make([]domain.Comment, 0, 16)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, db.Classify("scan comment", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, db.Classify("list comments", err)
	}
	return out, nil
}

func (r *CommentRepository) ProjectExists(ctx context.Context, projectID string) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1);`, projectID).Scan(&ok)
	if err != nil {
		return false, db.Classify("project exists", err)
	}
	return ok, nil
}

// Create inserts a comment. An unknown project surfaces as
// ErrProjectNotFound.
func (r *CommentRepository) Create(ctx context.Context, projectID, userID, content string) (*domain.Comment, error) {
	const q = `
INSERT INTO project_comments (project_id, user_id, content)
VALUES ($1, $2, $3)
RETURNING ` + commentColumns + `;
`
	c, err := scanComment(r.db.QueryRowContext(ctx, q, projectID, userID, content))
	if err != nil {
		if db.Code(err) == db.CodeForeignKeyViolation {
			return nil, domain.ErrProjectNotFound
		}
		return nil, db.Classify("create comment", err)
	}
	return c, nil
}

// Delete removes a comment and returns the removed row, or nil when there
// was nothing to remove.
func (r *CommentRepository) Delete(ctx context.Context, projectID, commentID string) (*domain.Comment, error) {
	const q = `
DELETE FROM project_comments
WHERE id = $1 AND project_id = $2
RETURNING ` + commentColumns + `;
`
	c, err := scanComment(r.db.QueryRowContext(ctx, q, commentID, projectID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, db.Classify("delete comment", err)
	}
	return c, nil
}
