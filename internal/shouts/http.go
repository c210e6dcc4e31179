package shouts

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/launchpad-ai/launchpad-backend/internal/auth"
	"github.com/launchpad-ai/launchpad-backend/internal/logging"
)

// Handler exposes the community wall.
type Handler struct {
	repo  *Repo
	cache *Cache
}

func NewHandler(repo *Repo, cache *Cache) *Handler {
	return &Handler{repo: repo, cache: cache}
}

// RegisterPublicRoutes mounts the read side; the wall is visible before
// login.
func (h *Handler) RegisterPublicRoutes(r gin.IRouter) {
	r.GET("/shouts", h.List)
	r.GET("/shouts/latest", h.Latest)
}

// RegisterAuthedRoutes mounts the write side.
func (h *Handler) RegisterAuthedRoutes(r gin.IRouter) {
	r.POST("/shouts", h.Post)
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	h.RegisterPublicRoutes(r)
	h.RegisterAuthedRoutes(r)
}

func (h *Handler) List(c *gin.Context) {
	items, err := h.repo.List(c.Request.Context(), 50)
	if err != nil {
		logging.FromContext(c.Request.Context()).WithError(err).Error("failed to list shouts")
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to list shouts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "shouts": items})
}

func (h *Handler) Latest(c *gin.Context) {
	if h.cache != nil {
		if s, err := h.cache.Latest(c.Request.Context()); err == nil && s != nil {
			c.JSON(http.StatusOK, gin.H{"ok": true, "shout": s})
			return
		}
	}

	items, err := h.repo.List(c.Request.Context(), 1)
	if err != nil || len(items) == 0 {
		c.JSON(http.StatusOK, gin.H{"ok": true, "shout": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "shout": items[0]})
}

type postRequest struct {
	Phrase string `json:"phrase" binding:"required"`
}

func (h *Handler) Post(c *gin.Context) {
	st := auth.CurrentUser(c)
	if st == nil || st.ID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "authentication required"})
		return
	}

	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "phrase is required"})
		return
	}

	s, err := h.repo.Post(c.Request.Context(), st.Email, req.Phrase)
	if err != nil {
		if errors.Is(err, ErrEmptyPhrase) || errors.Is(err, ErrTooLong) {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
			return
		}
		logging.FromContext(c.Request.Context()).WithError(err).Error("failed to post shout")
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to post shout"})
		return
	}

	if h.cache != nil {
		if err := h.cache.SetLatest(c.Request.Context(), s); err != nil {
			logging.FromContext(c.Request.Context()).WithError(err).Warn("failed to cache latest shout")
		}
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "shout": s})
}
