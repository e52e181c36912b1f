package http

import (
	"github.com/myinsta/portfolio-backend/internal/upload/domain"
	"github.com/myinsta/portfolio-backend/internal/upload/service"
)

type Handler struct {
	svc *service.UploadService
}

func New(svc *service.UploadService) *Handler {
	return &Handler{svc: svc}
}

type uploadResp struct {
	OK bool `json:"ok"`
	*domain.Result
}
