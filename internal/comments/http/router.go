package http

import "github.com/gin-gonic/gin"

// Register attaches comment routes under the /projects group.
func (h *Handler) Register(projects *gin.RouterGroup) {
	projects.GET("/:id/comments", h.list)
	projects.POST("/:id/comments", h.create)
	projects.DELETE("/:id/comments/:comment_id", h.delete)
	projects.GET("/:id/comments/stream", h.stream)
}
