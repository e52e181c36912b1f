package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/myinsta/portfolio-backend/internal/apperr"
	"github.com/myinsta/portfolio-backend/internal/auth"
)

func (h *Handler) GetMe(c *gin.Context) {
	me, err := h.authService.Me(c.Request.Context(), auth.IdentityFrom(c))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "me": me})
}

// SyncProfile provisions the caller's profile after sign-in. Profile fields
// come from the verified token only.
func (h *Handler) SyncProfile(c *gin.Context) {
	p, err := h.authService.Sync(c.Request.Context(), auth.IdentityFrom(c))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "profile": p})
}

func (h *Handler) GetAdminSQL(c *gin.Context) {
	sql, err := h.authService.AdminSQL(auth.IdentityFrom(c))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "sql": sql})
}
