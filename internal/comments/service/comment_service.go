package service

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	authdomain "github.com/myinsta/portfolio-backend/internal/auth/domain"
	"github.com/myinsta/portfolio-backend/internal/comments/domain"
	"github.com/myinsta/portfolio-backend/internal/realtime"
)

type Store interface {
	List(ctx context.Context, projectID string) ([]domain.Comment, error)
	ProjectExists(ctx context.Context, projectID string) (bool, error)
	Create(ctx context.Context, projectID, userID, content string) (*domain.Comment, error)
	Delete(ctx context.Context, projectID, commentID string) (*domain.Comment, error)
}

type AdminGate interface {
	RequireAdmin(ctx context.Context, actor *authdomain.Identity) error
}

type Options struct {
	// PublishWrites makes the service publish change events itself. Off
	// when the Postgres relay is the event source.
	PublishWrites bool
}

type CommentService struct {
	store  Store
	gate   AdminGate
	broker realtime.Broker
	opts   Options
}

func NewCommentService(store Store, gate AdminGate, broker realtime.Broker, opts Options) *CommentService {
	return &CommentService{store: store, gate: gate, broker: broker, opts: opts}
}

func (s *CommentService) List(ctx context.Context, rawProjectID string) ([]domain.Comment, error) {
	projectID, err := domain.ParseProjectID(rawProjectID)
	if err != nil {
		return nil, err
	}
	return s.store.List(ctx, projectID)
}

// Create posts a comment as actor. Anonymous callers are rejected before
// any store call.
func (s *CommentService) Create(ctx context.Context, actor *authdomain.Identity, rawProjectID, content string) (*domain.Comment, error) {
	if actor == nil {
		return nil, authdomain.ErrUnauthenticated
	}
	projectID, err := domain.ParseProjectID(rawProjectID)
	if err != nil {
		return nil, err
	}
	content, err = domain.NormalizeContent(content)
	if err != nil {
		return nil, err
	}

	c, err := s.store.Create(ctx, projectID, actor.UserID, content)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, projectID, domain.ChangeEvent{Type: domain.EventInsert, New: c})
	return c, nil
}

// Delete removes a comment. Admin only; idempotent.
func (s *CommentService) Delete(ctx context.Context, actor *authdomain.Identity, rawProjectID, rawCommentID string) (bool, error) {
	if err := s.gate.RequireAdmin(ctx, actor); err != nil {
		return false, err
	}
	projectID, err := domain.ParseProjectID(rawProjectID)
	if err != nil {
		return false, err
	}
	commentID, err := domain.ParseID(rawCommentID)
	if err != nil {
		return false, err
	}

	removed, err := s.store.Delete(ctx, projectID, commentID)
	if err != nil {
		return false, err
	}
	if removed == nil {
		return false, nil
	}
	s.publish(ctx, projectID, domain.ChangeEvent{Type: domain.EventDelete, Old: removed})
	return true, nil
}

// PublishRemoved announces comments deleted as part of their project's
// removal. Project deletes call it so the app event source matches the
// database trigger.
func (s *CommentService) PublishRemoved(ctx context.Context, projectID string, removed []domain.Comment) {
	for i := range removed {
		s.publish(ctx, projectID, domain.ChangeEvent{Type: domain.EventDelete, Old: &removed[i]})
	}
}

// Subscribe opens the change feed of one existing project.
func (s *CommentService) Subscribe(ctx context.Context, rawProjectID string) (*realtime.Subscription, string, error) {
	projectID, err := domain.ParseProjectID(rawProjectID)
	if err != nil {
		return nil, "", err
	}
	ok, err := s.store.ProjectExists(ctx, projectID)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", domain.ErrProjectNotFound
	}
	sub, err := s.broker.Subscribe(ctx, realtime.CommentsTopic(projectID))
	if err != nil {
		return nil, "", err
	}
	return sub, projectID, nil
}

// publish is best effort: the write already succeeded and the feed is
// at-most-once.
func (s *CommentService) publish(ctx context.Context, projectID string, ev domain.ChangeEvent) {
	if !s.opts.PublishWrites {
		return
	}
	payload, err := json.Marshal(ev)
	if err == nil {
		err = s.broker.Publish(ctx, realtime.CommentsTopic(projectID), payload)
	}
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).
			Str("project_id", projectID).
			Str("event", string(ev.Type)).
			Msg("publish comment change")
	}
}
