package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myinsta/portfolio-backend/internal/auth"
	"github.com/myinsta/portfolio-backend/internal/auth/domain"
)

type memProfiles struct {
	rows    map[string]*domain.Profile
	listErr error
}

func (m *memProfiles) List(context.Context) ([]domain.Profile, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.Profile, 0, len(m.rows))
	for _, id := range []string{"gone-admin", "gone-user", "moved", "same", "flaky"} {
		if p, ok := m.rows[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memProfiles) UpdateEmail(_ context.Context, id, email, provider string) error {
	m.rows[id].Email = email
	m.rows[id].Provider = provider
	return nil
}

func (m *memProfiles) SetAdmin(_ context.Context, id, _ string, admin bool) (*domain.Profile, error) {
	m.rows[id].IsAdmin = admin
	return m.rows[id], nil
}

type fakeDirectory map[string]*domain.Identity

func (d fakeDirectory) Lookup(_ context.Context, uid string) (*domain.Identity, error) {
	if uid == "flaky" {
		return nil, errors.New("timeout")
	}
	id, ok := d[uid]
	if !ok {
		return nil, auth.ErrUnknownUser
	}
	return id, nil
}

func TestProfileSync(t *testing.T) {
	store := &memProfiles{rows: map[string]*domain.Profile{
		"gone-admin": {ID: "gone-admin", Email: "a@x.io", Provider: "email", IsAdmin: true},
		"gone-user":  {ID: "gone-user", Email: "b@x.io", Provider: "email"},
		"moved":      {ID: "moved", Email: "old@x.io", Provider: "email"},
		"same":       {ID: "same", Email: "s@x.io", Provider: "google"},
		"flaky":      {ID: "flaky", Email: "f@x.io", Provider: "email", IsAdmin: true},
	}}
	dir := fakeDirectory{
		"moved": {UserID: "moved", Email: "new@x.io", Provider: "github"},
		"same":  {UserID: "same", Email: "s@x.io", Provider: "google"},
	}

	ctx := zerolog.Nop().WithContext(context.Background())
	stats, err := NewProfileSync(store, dir).Sync(ctx)
	require.NoError(t, err)

	assert.Equal(t, SyncStats{Checked: 5, Updated: 1, Revoked: 1, Failed: 1}, stats)
	assert.False(t, store.rows["gone-admin"].IsAdmin)
	assert.Equal(t, "new@x.io", store.rows["moved"].Email)
	assert.Equal(t, "github", store.rows["moved"].Provider)
	assert.True(t, store.rows["flaky"].IsAdmin, "lookup errors never revoke")
}

func TestProfileSync_ListFailure(t *testing.T) {
	store := &memProfiles{listErr: errors.New("db down")}
	err := NewProfileSync(store, fakeDirectory{}).Run(context.Background())
	assert.ErrorContains(t, err, "list profiles")
}

type countingJob struct {
	runs int
	err  error
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run(ctx context.Context) error {
	j.runs++
	return j.err
}

func TestScheduler(t *testing.T) {
	s := NewScheduler(context.Background(), zerolog.Nop())

	job := &countingJob{}
	require.NoError(t, s.Add("0 0 3 * * *", job))
	assert.Error(t, s.Add("every tuesday", job))

	s.RunNow(job)
	job.err = errors.New("boom")
	s.RunNow(job)
	assert.Equal(t, 2, job.runs)

	s.Start()
	s.Stop()
}
