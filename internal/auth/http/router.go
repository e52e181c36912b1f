package http

import (
	"github.com/gin-gonic/gin"

	"github.com/myinsta/portfolio-backend/internal/auth/middleware"
)

// Register mounts /me, /me/admin-sql and /auth/sync on the /api/v1 group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	signedIn := rg.Group("", middleware.RequireUser())
	signedIn.GET("/me", h.GetMe)
	signedIn.GET("/me/admin-sql", h.GetAdminSQL)
	signedIn.POST("/auth/sync", h.SyncProfile)
}
