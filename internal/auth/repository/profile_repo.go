package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/myinsta/portfolio-backend/internal/auth/domain"
)

type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, email, provider, is_admin, created_at, updated_at`

func scanProfile(row interface{ Scan(...any) error }) (*domain.Profile, error) {
	var p domain.Profile
	var email, provider sql.NullString
	if err := row.Scan(&p.ID, &email, &provider, &p.IsAdmin, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Email = email.String
	p.Provider = provider.String
	return &p, nil
}

// GetByID retrieves a profile by identity-provider user id
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// Upsert creates or refreshes the caller's profile. It never grants admin:
// new rows start with is_admin = false and existing flags are preserved.
func (r *ProfileRepository) Upsert(ctx context.Context, id domain.Identity) (*domain.Profile, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO profiles (id, email, provider, is_admin)
		VALUES ($1, $2, $3, false)
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email,
		    provider = EXCLUDED.provider,
		    updated_at = NOW()
		RETURNING `+profileColumns,
		id.UserID, id.Email, id.Provider,
	)
	p, err := scanProfile(row)
	if err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	return p, nil
}

// SetAdmin sets the admin flag, creating the profile when it does not exist.
func (r *ProfileRepository) SetAdmin(ctx context.Context, id, email string, admin bool) (*domain.Profile, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO profiles (id, email, is_admin)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET is_admin = EXCLUDED.is_admin,
		    email = COALESCE(NULLIF(EXCLUDED.email, ''), profiles.email),
		    updated_at = NOW()
		RETURNING `+profileColumns,
		id, email, admin,
	)
	p, err := scanProfile(row)
	if err != nil {
		return nil, fmt.Errorf("set admin: %w", err)
	}
	return p, nil
}

// UpdateEmail refreshes email and provider without touching the admin flag.
func (r *ProfileRepository) UpdateEmail(ctx context.Context, id, email, provider string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE profiles
		SET email = $2, provider = COALESCE(NULLIF($3, ''), provider), updated_at = NOW()
		WHERE id = $1`,
		id, email, provider,
	)
	if err != nil {
		return fmt.Errorf("update profile email: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

func (r *ProfileRepository) List(ctx context.Context) ([]domain.Profile, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
