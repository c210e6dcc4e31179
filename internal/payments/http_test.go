package payments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchpad-ai/launchpad-backend/config"
	"github.com/launchpad-ai/launchpad-backend/internal/auth"
	"github.com/launchpad-ai/launchpad-backend/internal/profiles"
	"github.com/launchpad-ai/launchpad-backend/internal/session"
)

type stubCache struct {
	saved *session.State
}

func (s *stubCache) Save(_ context.Context, st *session.State) error {
	copied := *st
	s.saved = &copied
	return nil
}

type stubSyncer struct {
	synced *profiles.Profile
}

func (s *stubSyncer) SyncCounters(_ context.Context, p *profiles.Profile) error {
	s.synced = p
	return nil
}

func paymentsRouter(h *Handler, user *session.State) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if user != nil {
			auth.SetCurrentUser(c, user)
		}
		c.Next()
	})
	h.RegisterRoutes(r)
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCheckout_RedirectsWithIdentity(t *testing.T) {
	h := NewHandler(config.PaymentsConfig{CheckoutURL: "https://pay.example.com/link"}, nil, nil)
	r := paymentsRouter(h, &session.State{ID: "u1", Email: "u1@example.com"})

	w := get(r, "/payments/checkout")
	require.Equal(t, http.StatusFound, w.Code)
	loc := w.Header().Get("Location")
	assert.Contains(t, loc, "client_reference_id=u1")
	assert.Contains(t, loc, "prefilled_email=u1%40example.com")
}

func TestCheckout_Unconfigured(t *testing.T) {
	h := NewHandler(config.PaymentsConfig{}, nil, nil)
	r := paymentsRouter(h, &session.State{ID: "u1"})
	assert.Equal(t, http.StatusServiceUnavailable, get(r, "/payments/checkout").Code)
}

func TestCheckout_RequiresUser(t *testing.T) {
	h := NewHandler(config.PaymentsConfig{CheckoutURL: "https://pay.example.com"}, nil, nil)
	r := paymentsRouter(h, nil)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/payments/checkout").Code)
}

func TestConfirm_SuccessActivatesSubscription(t *testing.T) {
	cache := &stubCache{}
	syncer := &stubSyncer{}
	h := NewHandler(config.PaymentsConfig{}, cache, syncer)
	user := &session.State{ID: "u1", Email: "u1@example.com", GenerationCount: 1}
	r := paymentsRouter(h, user)

	w := get(r, "/payments/confirm?payment_success=true")
	require.Equal(t, http.StatusOK, w.Code)

	require.NotNil(t, syncer.synced)
	assert.True(t, syncer.synced.IsSubscribed)
	assert.Equal(t, 1, syncer.synced.GenerationCount, "counters carry over unchanged")
	require.NotNil(t, syncer.synced.SubscriptionExpiry)

	require.NotNil(t, cache.saved)
	assert.True(t, cache.saved.IsSubscribed)
}

func TestConfirm_WithoutSuccessFlagIsNoop(t *testing.T) {
	syncer := &stubSyncer{}
	h := NewHandler(config.PaymentsConfig{}, &stubCache{}, syncer)
	r := paymentsRouter(h, &session.State{ID: "u1"})

	w := get(r, "/payments/confirm")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, syncer.synced)
	assert.Contains(t, w.Body.String(), `"subscribed":false`)
}
