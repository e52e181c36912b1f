package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/myinsta/portfolio-backend/internal/auth"
	"github.com/myinsta/portfolio-backend/internal/auth/domain"
)

type ProfileStore interface {
	List(ctx context.Context) ([]domain.Profile, error)
	UpdateEmail(ctx context.Context, id, email, provider string) error
	SetAdmin(ctx context.Context, id, email string, admin bool) (*domain.Profile, error)
}

// Directory looks users up at the identity provider. It returns
// auth.ErrUnknownUser for deleted accounts.
type Directory interface {
	Lookup(ctx context.Context, uid string) (*domain.Identity, error)
}

// ProfileSync reconciles stored profiles with the identity provider: email
// and provider changes are copied over and accounts deleted upstream lose
// the admin flag.
type ProfileSync struct {
	profiles ProfileStore
	dir      Directory
}

func NewProfileSync(profiles ProfileStore, dir Directory) *ProfileSync {
	return &ProfileSync{profiles: profiles, dir: dir}
}

func (j *ProfileSync) Name() string { return "profile-sync" }

type SyncStats struct {
	Checked int
	Updated int
	Revoked int
	Failed  int
}

func (j *ProfileSync) Run(ctx context.Context) error {
	_, err := j.Sync(ctx)
	return err
}

// Sync walks every profile once. Per-profile lookup failures are logged and
// counted; only a failure to list profiles aborts the run.
func (j *ProfileSync) Sync(ctx context.Context) (SyncStats, error) {
	var stats SyncStats
	log := zerolog.Ctx(ctx)

	profiles, err := j.profiles.List(ctx)
	if err != nil {
		return stats, fmt.Errorf("list profiles: %w", err)
	}

	for _, p := range profiles {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Checked++

		id, err := j.dir.Lookup(ctx, p.ID)
		switch {
		case errors.Is(err, auth.ErrUnknownUser):
			if p.IsAdmin {
				if _, err := j.profiles.SetAdmin(ctx, p.ID, p.Email, false); err != nil {
					stats.Failed++
					log.Error().Err(err).Str("profile_id", p.ID).Msg("revoke admin failed")
					continue
				}
				stats.Revoked++
				log.Warn().Str("profile_id", p.ID).Msg("admin revoked for deleted account")
			}
			continue
		case err != nil:
			stats.Failed++
			log.Error().Err(err).Str("profile_id", p.ID).Msg("identity lookup failed")
			continue
		}

		if id.Email == p.Email && id.Provider == p.Provider {
			continue
		}
		if err := j.profiles.UpdateEmail(ctx, p.ID, id.Email, id.Provider); err != nil {
			stats.Failed++
			log.Error().Err(err).Str("profile_id", p.ID).Msg("profile update failed")
			continue
		}
		stats.Updated++
	}

	log.Info().
		Int("checked", stats.Checked).
		Int("updated", stats.Updated).
		Int("revoked", stats.Revoked).
		Int("failed", stats.Failed).
		Msg("profile sync finished")
	return stats, nil
}
