package admin

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/launchpad-ai/launchpad-backend/internal/auth"
	"github.com/launchpad-ai/launchpad-backend/internal/logging"
	"github.com/launchpad-ai/launchpad-backend/internal/metrics"
	"github.com/launchpad-ai/launchpad-backend/internal/profiles"
)

// ProfileAdmin is the slice of profiles.Repo the console uses.
type ProfileAdmin interface {
	ListAll(ctx context.Context) ([]profiles.Profile, error)
	ResetCredits(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// SessionWiper clears a user's cached session.
type SessionWiper interface {
	Clear(ctx context.Context, userID string) error
}

// JunkSweeper matches stats.Service.
type JunkSweeper interface {
	CleanupJunk(ctx context.Context) (int64, error)
}

// Handler is the operator console. Every route sits behind the super-user
// guard; there is no role system beyond that one email.
type Handler struct {
	profiles ProfileAdmin
	sessions SessionWiper
	sweeper  JunkSweeper
	registry *metrics.Registry
}

func NewHandler(profileAdmin ProfileAdmin, sessions SessionWiper, sweeper JunkSweeper, registry *metrics.Registry) *Handler {
	return &Handler{profiles: profileAdmin, sessions: sessions, sweeper: sweeper, registry: registry}
}

// RequireSuperUser admits only the configured operator email.
func RequireSuperUser(superEmail string) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := auth.CurrentUser(c)
		if superEmail == "" || st == nil || !strings.EqualFold(st.Email, superEmail) {
			c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "forbidden"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func (h *Handler) RegisterRoutes(r gin.IRouter, superEmail string) {
	g := r.Group("/admin", RequireSuperUser(superEmail))
	g.GET("/profiles", h.ListProfiles)
	g.POST("/profiles/:id/reset", h.ResetCredits)
	g.DELETE("/profiles/:id", h.DeleteProfile)
	g.POST("/cleanup", h.Cleanup)
	g.GET("/metrics", h.Metrics)
}

func (h *Handler) ListProfiles(c *gin.Context) {
	items, err := h.profiles.ListAll(c.Request.Context())
	if err != nil {
		logging.FromContext(c.Request.Context()).WithError(err).Error("failed to list profiles")
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to list profiles"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "profiles": items})
}

func (h *Handler) ResetCredits(c *gin.Context) {
	id := c.Param("id")
	if err := h.profiles.ResetCredits(c.Request.Context(), id); err != nil {
		logging.FromContext(c.Request.Context()).WithError(err).Error("failed to reset credits")
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to reset credits"})
		return
	}
	if h.sessions != nil {
		// Stale cached counters would undo the reset on next gate check.
		if err := h.sessions.Clear(c.Request.Context(), id); err != nil {
			logging.FromContext(c.Request.Context()).WithError(err).Warn("failed to clear cached session")
		}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) DeleteProfile(c *gin.Context) {
	id := c.Param("id")
	if err := h.profiles.Delete(c.Request.Context(), id); err != nil {
		logging.FromContext(c.Request.Context()).WithError(err).Error("failed to delete profile")
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to delete profile"})
		return
	}
	if h.sessions != nil {
		if err := h.sessions.Clear(c.Request.Context(), id); err != nil {
			logging.FromContext(c.Request.Context()).WithError(err).Warn("failed to clear cached session")
		}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) Cleanup(c *gin.Context) {
	removed, err := h.sweeper.CleanupJunk(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "cleanup failed", "removed": removed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "removed": removed})
}

func (h *Handler) Metrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "metrics": h.registry.Snapshot()})
}
