package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/launchpad-ai/launchpad-backend/internal/session"
)

const ctxSessionState = "session_state"

// SetCurrentUser stores the resolved session record on the request.
func SetCurrentUser(c *gin.Context, st *session.State) {
	c.Set(ctxSessionState, st)
}

// CurrentUser returns the session record set by the auth middleware, or
// nil when the request never went through it.
func CurrentUser(c *gin.Context) *session.State {
	v, ok := c.Get(ctxSessionState)
	if !ok {
		return nil
	}
	st, ok := v.(*session.State)
	if !ok {
		return nil
	}
	return st
}
