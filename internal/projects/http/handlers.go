package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/myinsta/portfolio-backend/internal/apperr"
	"github.com/myinsta/portfolio-backend/internal/auth"
	"github.com/myinsta/portfolio-backend/internal/projects/domain"
)

var errInvalidBody = apperr.Validation("invalid body")

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) create(c *gin.Context) {
	var req domain.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		// auth outranks a malformed body
		if gateErr := h.svc.Authorize(c.Request.Context(), auth.IdentityFrom(c)); gateErr != nil {
			apperr.Respond(c, gateErr)
			return
		}
		apperr.Respond(c, errInvalidBody)
		return
	}

	p, err := h.svc.Create(c.Request.Context(), auth.IdentityFrom(c), req)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

func (h *Handler) update(c *gin.Context) {
	var req domain.UpdatePatch
	if err := c.ShouldBindJSON(&req); err != nil {
		if gateErr := h.svc.Authorize(c.Request.Context(), auth.IdentityFrom(c)); gateErr != nil {
			apperr.Respond(c, gateErr)
			return
		}
		apperr.Respond(c, errInvalidBody)
		return
	}

	p, err := h.svc.Update(c.Request.Context(), auth.IdentityFrom(c), c.Param("id"), req)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) delete(c *gin.Context) {
	deleted, err := h.svc.Delete(c.Request.Context(), auth.IdentityFrom(c), c.Param("id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "deleted": deleted})
}
