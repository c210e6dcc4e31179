package workflow

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/launchpad-ai/launchpad-backend/internal/auth"
	"github.com/launchpad-ai/launchpad-backend/internal/synthesis"
)

// Handler exposes the workflow over HTTP. Every route requires an
// authenticated user; the manager is the single writer of session state.
type Handler struct {
	manager *Manager
}

func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/state", h.State)
	r.POST("/quiz/begin", h.BeginQuiz)
	r.POST("/quiz", h.SubmitQuiz)
	r.POST("/image", h.AttachImage)
	r.POST("/generate", h.Generate)
	r.POST("/modify", h.Modify)
	r.POST("/crash", h.ReportCrash)
	r.POST("/repair", h.Repair)
	r.POST("/repair/abandon", h.AbandonRepair)
	r.POST("/background", h.RunInBackground)
	r.GET("/vault", h.Vault)
	r.POST("/vault/select", h.SelectProject)
	r.DELETE("/vault/:id", h.DeleteProject)
	r.POST("/notices/dismiss", h.DismissNotices)
	r.POST("/logout", h.Logout)
}

// sessionUser resolves the caller and makes sure a workflow session exists.
func (h *Handler) sessionUser(c *gin.Context) (string, bool) {
	st := auth.CurrentUser(c)
	if st == nil || st.ID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "authentication required"})
		return "", false
	}
	h.manager.EnsureSession(st)
	return st.ID, true
}

func (h *Handler) respond(c *gin.Context, snap Snapshot, err error) {
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, ErrNoSession):
			status = http.StatusUnauthorized
		case errors.Is(err, ErrNoCredits):
			status = http.StatusPaymentRequired
		case errors.Is(err, ErrWrongStep), errors.Is(err, ErrNotBuilding), errors.Is(err, ErrNotOpenable):
			status = http.StatusConflict
		case errors.Is(err, ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, ErrDeleteFailed):
			// The row still exists; ship the restored list alongside the
			// rollback notice.
			c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error(), "state": snap})
			return
		}
		c.JSON(status, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "state": snap})
}

func (h *Handler) State(c *gin.Context) {
	userID, ok := h.sessionUser(c)
	if !ok {
		return
	}
	snap, err := h.manager.Snapshot(userID)
	h.respond(c, snap, err)
}

func (h *Handler) BeginQuiz(c *gin.Context) {
	userID, ok := h.sessionUser(c)
	if !ok {
		return
	}
	snap, err := h.manager.BeginQuiz(userID)
	h.respond(c, snap, err)
}

func (h *Handler) SubmitQuiz(c *gin.Context) {
	userID, ok := h.sessionUser(c)
	if !ok {
		return
	}
	var quiz synthesis.QuizAnswers
	if err := c.ShouldBindJSON(&quiz); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid quiz payload"})
		return
	}
	snap, err := h.manager.SubmitQuiz(userID, quiz)
	h.respond(c, snap, err)
}

type imageRequest struct {
	ImageData string `json:"imageData"`
}

func (h *Handler) AttachImage(c *gin.Context) {
	userID, ok := h.sessionUser(c)
	if !ok {
		return
	}
	var req imageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid image payload"})
		return
	}
	if err := h.manager.AttachImage(userID, req.ImageData); err != nil {
		h.respond(c, Snapshot{}, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) Generate(c *gin.Context) {
	userID, ok := h.sessionUser(c)
	if !ok {
		return
	}
	snap, err := h.manager.StartGeneration(c.Request.Context(), userID)
	h.respond(c, snap, err)
}

type modifyRequest struct {
	Request string `json:"request" binding:"required"`
}

func (h *Handler) Modify(c *gin.Context) {
	userID, ok := h.sessionUser(c)
	if !ok {
		return
	}
	var req modifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "request text is required"})
		return
	}
	snap, err := h.manager.Modify(c.Request.Context(), userID, req.Request)
	h.respond(c, snap, err)
}

type crashRequest struct {
	Message string `json:"message" binding:"required"`
	Stack   string `json:"stack"`
}

func (h *Handler) ReportCrash(c *gin.Context) {
	userID, ok := h.sessionUser(c)
	if !ok {
		return
	}
	var req crashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "crash message is required"})
		return
	}
	snap, err := h.manager.ReportCrash(userID, req.Message, req.Stack)
	h.respond(c, snap, err)
}

func (h *Handler) Repair(c *gin.Context) {
	userID, ok := h.sessionUser(c)
	if !ok {
		return
	}
	snap, err := h.manager.Repair(c.Request.Context(), userID)
	h.respond(c, snap, err)
}

func (h *Handler) AbandonRepair(c *gin.Context) {
	userID, ok := h.sessionUser(c)
	if !ok {
		return
	}
	snap, err := h.manager.AbandonRepair(userID)
	h.respond(c, snap, err)
}

func (h *Handler) RunInBackground(c *gin.Context) {
	userID, ok := h.sessionUser(c)
	if !ok {
		return
	}
	snap, err := h.manager.RunInBackground(c.Request.Context(), userID)
	h.respond(c, snap, err)
}

func (h *Handler) Vault(c *gin.Context) {
	userID, ok := h.sessionUser(c)
	if !ok {
		return
	}
	snap, err := h.manager.OpenVault(c.Request.Context(), userID)
	h.respond(c, snap, err)
}

type selectRequest struct {
	ProjectID string `json:"projectId" binding:"required"`
}

func (h *Handler) SelectProject(c *gin.Context) {
	userID, ok := h.sessionUser(c)
	if !ok {
		return
	}
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "projectId is required"})
		return
	}
	snap, err := h.manager.SelectProject(userID, req.ProjectID)
	h.respond(c, snap, err)
}

func (h *Handler) DeleteProject(c *gin.Context) {
	userID, ok := h.sessionUser(c)
	if !ok {
		return
	}
	snap, err := h.manager.DeleteProject(c.Request.Context(), userID, c.Param("id"))
	h.respond(c, snap, err)
}

func (h *Handler) DismissNotices(c *gin.Context) {
	userID, ok := h.sessionUser(c)
	if !ok {
		return
	}
	if err := h.manager.DismissNotices(userID); err != nil {
		h.respond(c, Snapshot{}, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) Logout(c *gin.Context) {
	userID, ok := h.sessionUser(c)
	if !ok {
		return
	}
	if err := h.manager.Logout(c.Request.Context(), userID); err != nil && !errors.Is(err, ErrNoSession) {
		h.respond(c, Snapshot{}, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
