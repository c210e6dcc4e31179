package stats

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/launchpad-ai/launchpad-backend/internal/logging"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/stats/empire", h.Empire)
}

// Empire serves the public "apps built" counter.
func (h *Handler) Empire(c *gin.Context) {
	n, err := h.service.EmpireCount(c.Request.Context())
	if err != nil {
		logging.FromContext(c.Request.Context()).WithError(err).Error("failed to compute empire count")
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "stats unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "count": n})
}
