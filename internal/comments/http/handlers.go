package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/myinsta/portfolio-backend/internal/apperr"
	"github.com/myinsta/portfolio-backend/internal/auth"
	authdomain "github.com/myinsta/portfolio-backend/internal/auth/domain"
	"github.com/myinsta/portfolio-backend/internal/comments/domain"
)

var errInvalidBody = apperr.Validation("invalid body")

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "comments": items})
}

func (h *Handler) create(c *gin.Context) {
	actor := auth.IdentityFrom(c)

	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		// auth and the project id outrank a bad body
		if actor == nil {
			apperr.Respond(c, authdomain.ErrUnauthenticated)
			return
		}
		if _, perr := domain.ParseProjectID(c.Param("id")); perr != nil {
			apperr.Respond(c, perr)
			return
		}
		apperr.Respond(c, errInvalidBody)
		return
	}

	comment, err := h.svc.Create(c.Request.Context(), actor, c.Param("id"), req.Content)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "comment": comment})
}

func (h *Handler) delete(c *gin.Context) {
	deleted, err := h.svc.Delete(c.Request.Context(), auth.IdentityFrom(c), c.Param("id"), c.Param("comment_id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "deleted": deleted})
}
