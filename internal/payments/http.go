package payments

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/launchpad-ai/launchpad-backend/config"
	"github.com/launchpad-ai/launchpad-backend/internal/auth"
	"github.com/launchpad-ai/launchpad-backend/internal/logging"
	"github.com/launchpad-ai/launchpad-backend/internal/profiles"
	"github.com/launchpad-ai/launchpad-backend/internal/session"
)

// subscriptionPeriod is how long one checkout keeps a subscription active.
const subscriptionPeriod = 30 * 24 * time.Hour

// SessionCache persists the refreshed session record.
type SessionCache interface {
	Save(ctx context.Context, st *session.State) error
}

// ProfileSyncer writes the authoritative subscription state.
type ProfileSyncer interface {
	SyncCounters(ctx context.Context, p *profiles.Profile) error
}

// Handler redirects users to the hosted payment pages and records the
// return. There is no webhook surface here: the payment provider sends the
// user back with payment_success=true and that return is the confirmation.
type Handler struct {
	checkoutURL string
	portalURL   string
	cache       SessionCache
	syncer      ProfileSyncer
}

func NewHandler(cfg config.PaymentsConfig, cache SessionCache, syncer ProfileSyncer) *Handler {
	return &Handler{
		checkoutURL: cfg.CheckoutURL,
		portalURL:   cfg.PortalURL,
		cache:       cache,
		syncer:      syncer,
	}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/payments/checkout", h.Checkout)
	r.GET("/payments/portal", h.Portal)
	r.GET("/payments/confirm", h.Confirm)
}

// Checkout sends the user to the hosted payment link with their identity
// attached, so the return can be matched back.
func (h *Handler) Checkout(c *gin.Context) {
	st := auth.CurrentUser(c)
	if st == nil || st.ID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "authentication required"})
		return
	}
	if h.checkoutURL == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "payments not configured"})
		return
	}

	target, err := url.Parse(h.checkoutURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "payments misconfigured"})
		return
	}
	q := target.Query()
	q.Set("client_reference_id", st.ID)
	if st.Email != "" {
		q.Set("prefilled_email", st.Email)
	}
	target.RawQuery = q.Encode()

	c.Redirect(http.StatusFound, target.String())
}

// Portal sends subscribed users to the provider's self-service portal.
func (h *Handler) Portal(c *gin.Context) {
	st := auth.CurrentUser(c)
	if st == nil || st.ID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "authentication required"})
		return
	}
	if h.portalURL == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "payments not configured"})
		return
	}
	c.Redirect(http.StatusFound, h.portalURL)
}

// Confirm handles the provider's return redirect. Only payment_success=true
// flips the subscription; any other return is a no-op.
func (h *Handler) Confirm(c *gin.Context) {
	st := auth.CurrentUser(c)
	if st == nil || st.ID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "authentication required"})
		return
	}

	if c.Query("payment_success") != "true" {
		c.JSON(http.StatusOK, gin.H{"ok": true, "subscribed": st.IsSubscribed})
		return
	}

	expiry := time.Now().Add(subscriptionPeriod).UnixMilli()
	st.IsSubscribed = true
	st.SubscriptionExpiry = &expiry

	ctx := c.Request.Context()
	if h.syncer != nil {
		p := &profiles.Profile{
			ID:                 st.ID,
			Email:              st.Email,
			GenerationCount:    st.GenerationCount,
			IsSubscribed:       true,
			SubscriptionExpiry: &expiry,
		}
		if err := h.syncer.SyncCounters(ctx, p); err != nil {
			logging.FromContext(ctx).WithError(err).Error("failed to persist subscription")
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to record subscription"})
			return
		}
	}
	if h.cache != nil {
		if err := h.cache.Save(ctx, st); err != nil {
			logging.FromContext(ctx).WithError(err).Warn("failed to refresh session after subscription")
		}
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "subscribed": true})
}
