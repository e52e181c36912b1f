package http

import (
	"time"

	"github.com/myinsta/portfolio-backend/internal/comments/service"
)

type Handler struct {
	svc       *service.CommentService
	keepAlive time.Duration
}

func New(svc *service.CommentService, keepAlive time.Duration) *Handler {
	if keepAlive <= 0 {
		keepAlive = 15 * time.Second
	}
	return &Handler{svc: svc, keepAlive: keepAlive}
}

type createReq struct {
	Content string `json:"content"`
}
