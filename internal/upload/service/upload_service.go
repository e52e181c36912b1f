package service

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/myinsta/portfolio-backend/internal/apperr"
	authdomain "github.com/myinsta/portfolio-backend/internal/auth/domain"
	"github.com/myinsta/portfolio-backend/internal/upload/domain"
)

var uploads = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "portfolio_uploads_total",
	Help: "Image uploads by backend and outcome",
}, []string{"backend", "outcome"})

type AdminGate interface {
	RequireAdmin(ctx context.Context, actor *authdomain.Identity) error
}

type UploadService struct {
	gate     AdminGate
	uploader domain.Uploader
	backend  string
	maxBytes int64
}

func NewUploadService(gate AdminGate, uploader domain.Uploader, backend string, maxBytes int64) *UploadService {
	return &UploadService{gate: gate, uploader: uploader, backend: backend, maxBytes: maxBytes}
}

func (s *UploadService) MaxBytes() int64 { return s.maxBytes }

func (s *UploadService) Authorize(ctx context.Context, actor *authdomain.Identity) error {
	return s.gate.RequireAdmin(ctx, actor)
}

// Upload validates f and hands it to the backend. Nothing leaves the
// process unless the caller is an admin and the file passes validation.
func (s *UploadService) Upload(ctx context.Context, actor *authdomain.Identity, f *domain.File) (*domain.Result, error) {
	if err := s.Authorize(ctx, actor); err != nil {
		return nil, err
	}
	if err := domain.Validate(f, s.maxBytes); err != nil {
		uploads.WithLabelValues(s.backend, "rejected").Inc()
		return nil, err
	}

	res, err := s.uploader.Upload(ctx, *f)
	if err != nil {
		uploads.WithLabelValues(s.backend, string(apperr.KindOf(err))).Inc()
		return nil, err
	}

	uploads.WithLabelValues(s.backend, "ok").Inc()
	zerolog.Ctx(ctx).Info().
		Str("public_id", res.PublicID).
		Int("bytes", len(f.Data)).
		Str("content_type", f.ContentType).
		Msg("image uploaded")
	return res, nil
}
