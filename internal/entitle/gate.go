package entitle

import (
	"context"
	"strings"
	"time"

	"github.com/launchpad-ai/launchpad-backend/config"
	"github.com/launchpad-ai/launchpad-backend/internal/logging"
	"github.com/launchpad-ai/launchpad-backend/internal/profiles"
	"github.com/launchpad-ai/launchpad-backend/internal/session"
)

// ProfileFetcher supplies the authoritative profile record.
type ProfileFetcher interface {
	Fetch(ctx context.Context, id string) (*profiles.Profile, error)
}

// SessionCache receives refreshed session state after an authoritative
// check.
type SessionCache interface {
	Save(ctx context.Context, st *session.State) error
}

// Gate decides whether a user may start a generation. The check is biased
// toward letting users through: a slow or failing profile store must never
// block the product, so anything short of an authoritative "no credits"
// answer opens the gate.
type Gate struct {
	fetcher   ProfileFetcher
	sessions  SessionCache
	superUser string
	timeout   time.Duration
}

func NewGate(fetcher ProfileFetcher, sessions SessionCache, cfg config.GateConfig) *Gate {
	return &Gate{
		fetcher:   fetcher,
		sessions:  sessions,
		superUser: cfg.SuperUserEmail,
		timeout:   cfg.CheckTimeout,
	}
}

// Open reports whether the user behind st may generate. The super user is
// recognized by case-insensitive email match and never touches the
// network. For everyone else the profile fetch races a deadline; on a
// fresh answer the session cache is refreshed before the verdict.
func (g *Gate) Open(ctx context.Context, st *session.State) bool {
	if st == nil {
		return false
	}
	if g.superUser != "" && strings.EqualFold(st.Email, g.superUser) {
		return true
	}
	if st.ID == "" {
		return false
	}

	log := logging.FromContext(ctx).WithField("user_id", st.ID)

	type result struct {
		profile *profiles.Profile
		err     error
	}
	ch := make(chan result, 1)
	go func() {
		p, err := g.fetcher.Fetch(ctx, st.ID)
		ch <- result{p, err}
	}()

	timer := time.NewTimer(g.timeout)
	defer timer.Stop()

	var res result
	select {
	case res = <-ch:
	case <-timer.C:
		log.Warn("entitlement check timed out, failing open")
		return true
	case <-ctx.Done():
		log.WithError(ctx.Err()).Warn("entitlement check canceled, failing open")
		return true
	}

	if res.err != nil {
		log.WithError(res.err).Warn("entitlement check failed, failing open")
		return true
	}
	if res.profile == nil {
		return true
	}

	p := res.profile
	st.Email = p.Email
	st.GenerationCount = p.GenerationCount
	st.IsSubscribed = p.IsSubscribed
	st.SubscriptionExpiry = p.SubscriptionExpiry
	if p.LastGenerationDate != nil {
		d := p.LastGenerationDate.Format(time.RFC3339)
		st.LastGenerationDate = &d
	}
	if g.sessions != nil {
		if err := g.sessions.Save(ctx, st); err != nil {
			log.WithError(err).Warn("failed to refresh session after entitlement check")
		}
	}

	return p.IsSubscribed || p.GenerationCount < 1
}
