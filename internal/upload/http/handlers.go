package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/myinsta/portfolio-backend/internal/apperr"
	"github.com/myinsta/portfolio-backend/internal/auth"
	"github.com/myinsta/portfolio-backend/internal/upload/domain"
)

// multipart framing allowance on top of the file ceiling
const formOverhead = 64 << 10

func (h *Handler) upload(c *gin.Context) {
	ctx := c.Request.Context()
	actor := auth.IdentityFrom(c)
	if err := h.svc.Authorize(ctx, actor); err != nil {
		apperr.Respond(c, err)
		return
	}

	maxBytes := h.svc.MaxBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+formOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			apperr.Respond(c, domain.ErrTooLarge(maxBytes))
			return
		}
		apperr.Respond(c, domain.ErrNoFile)
		return
	}
	if fh.Size > maxBytes {
		apperr.Respond(c, domain.ErrTooLarge(maxBytes))
		return
	}

	src, err := fh.Open()
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxBytes+1))
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	res, err := h.svc.Upload(ctx, actor, &domain.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, uploadResp{OK: true, Result: res})
}
