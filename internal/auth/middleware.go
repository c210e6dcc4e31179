package auth

import (
	"context"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	"github.com/launchpad-ai/launchpad-backend/internal/logging"
	"github.com/launchpad-ai/launchpad-backend/internal/profiles"
	"github.com/launchpad-ai/launchpad-backend/internal/session"
)

// ProfileEnsurer upserts the profile row on first contact.
type ProfileEnsurer interface {
	Ensure(ctx context.Context, id, email string) (*profiles.Profile, error)
}

// SessionLoader reads the cached session record.
type SessionLoader interface {
	Load(ctx context.Context, userID string) (*session.State, error)
	Save(ctx context.Context, st *session.State) error
}

// FirebaseAuthMiddleware validates Firebase ID tokens, ensures the profile
// row exists, and attaches the session record to the request. The cached
// session is preferred; a miss rebuilds it from the profile store.
func FirebaseAuthMiddleware(authClient *fbauth.Client, sessions SessionLoader, ensurer ProfileEnsurer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "missing authorization token"})
			c.Abort()
			return
		}

		decoded, err := authClient.VerifyIDToken(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid token"})
			c.Abort()
			return
		}

		email, _ := decoded.Claims["email"].(string)
		st, err := resolveState(c.Request.Context(), decoded.UID, email, sessions, ensurer)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to resolve user"})
			c.Abort()
			return
		}

		SetCurrentUser(c, st)
		c.Next()
	}
}

// DevUser resolves the user from headers instead of a token.
// - X-User-Id falls back to "demo-user" when missing.
// - Use this ONLY for development/testing.
func DevUser(sessions SessionLoader, ensurer ProfileEnsurer) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader("X-User-Id"))
		if uid == "" {
			uid = "demo-user"
		}

		st, err := resolveState(c.Request.Context(), uid, c.GetHeader("X-User-Email"), sessions, ensurer)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to resolve user"})
			c.Abort()
			return
		}

		SetCurrentUser(c, st)
		c.Next()
	}
}

func resolveState(ctx context.Context, uid, email string, sessions SessionLoader, ensurer ProfileEnsurer) (*session.State, error) {
	if sessions != nil {
		if st, err := sessions.Load(ctx, uid); err == nil && st != nil {
			if email != "" && st.Email == "" {
				st.Email = email
			}
			return st, nil
		}
	}

	st := &session.State{ID: uid, Email: email}
	if ensurer != nil {
		p, err := ensurer.Ensure(ctx, uid, email)
		if err != nil {
			return nil, err
		}
		if p != nil {
			st.Email = p.Email
			st.GenerationCount = p.GenerationCount
			st.IsSubscribed = p.IsSubscribed
			st.SubscriptionExpiry = p.SubscriptionExpiry
		}
	}

	if sessions != nil {
		if err := sessions.Save(ctx, st); err != nil {
			logging.FromContext(ctx).WithError(err).Warn("failed to cache session record")
		}
	}
	return st, nil
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return bearerToken[7:]
	}
	return ""
}
