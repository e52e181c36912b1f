package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/myinsta/portfolio-backend/internal/apperr"
)

const MaxContentLen = 2000

type Comment struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Mine reports whether userID wrote the comment.
func (c Comment) Mine(userID string) bool {
	return userID != "" && c.UserID == userID
}

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventDelete EventType = "DELETE"
)

// ChangeEvent is one realtime change on project_comments. New is set for
// inserts, Old for deletes.
type ChangeEvent struct {
	Type EventType `json:"type"`
	New  *Comment  `json:"new"`
	Old  *Comment  `json:"old"`
}

var (
	ErrNotFound        = apperr.NotFound("comment not found")
	ErrProjectNotFound = apperr.NotFound("project not found")
	ErrInvalidID       = apperr.Validation("invalid comment id")
	ErrInvalidProject  = apperr.Validation("invalid project id")
	ErrEmptyContent    = apperr.Validation("content is required")
)

func ParseProjectID(s string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", ErrInvalidProject
	}
	return id.String(), nil
}

func ParseID(s string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", ErrInvalidID
	}
	return id.String(), nil
}

// NormalizeContent trims content and enforces the length bounds.
func NormalizeContent(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyContent
	}
	if utf8.RuneCountInString(s) > MaxContentLen {
		return "", apperr.Validationf("content must be at most %d characters", MaxContentLen)
	}
	return s, nil
}
