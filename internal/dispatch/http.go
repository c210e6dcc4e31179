package dispatch

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/launchpad-ai/launchpad-backend/internal/logging"
)

// Enqueuer accepts jobs for background processing. Satisfied by Queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, job Job) error
}

// Handler exposes the dispatch contract: POST a job, get {"success": bool}.
type Handler struct {
	queue Enqueuer
}

func NewHandler(queue Enqueuer) *Handler {
	return &Handler{queue: queue}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/background-synthesis", h.Dispatch)
}

func (h *Handler) Dispatch(c *gin.Context) {
	var job Job
	if err := c.ShouldBindJSON(&job); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid job payload"})
		return
	}
	if job.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "userId is required"})
		return
	}

	if err := h.queue.Enqueue(c.Request.Context(), job); err != nil {
		logging.FromContext(c.Request.Context()).WithError(err).Error("failed to enqueue background build")
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
