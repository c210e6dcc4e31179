package preview

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/launchpad-ai/launchpad-backend/internal/logging"
)

// Recorder counts served previews; nil disables.
type Recorder interface {
	IncPreviews()
}

// Handler serves rendered sandbox documents.
type Handler struct {
	recorder Recorder
}

func NewHandler(recorder Recorder) *Handler {
	return &Handler{recorder: recorder}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/preview", h.RenderPreview)
}

type renderRequest struct {
	Code string `json:"code" binding:"required"`
}

// RenderPreview returns a complete HTML document for the posted component
// code, suitable for srcdoc embedding in a sandboxed iframe.
func (h *Handler) RenderPreview(c *gin.Context) {
	var req renderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "code is required"})
		return
	}

	doc, err := BuildDocument(req.Code)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if !errors.Is(err, ErrCodeTooShort) && !errors.Is(err, ErrNoComponent) {
			status = http.StatusInternalServerError
			logging.FromContext(c.Request.Context()).WithError(err).Error("failed to build preview document")
		}
		c.JSON(status, gin.H{"ok": false, "error": err.Error()})
		return
	}

	if h.recorder != nil {
		h.recorder.IncPreviews()
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(doc))
}
