package projects

import (
	"context"

	"github.com/launchpad-ai/launchpad-backend/internal/logging"
)

// Store is the persistence surface the gateway fronts.
type Store interface {
	Save(ctx context.Context, userID, name, prompt, code, existingID string) (*Project, error)
	List(ctx context.Context, userID string) ([]Project, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Gateway is the façade the workflow and poller talk to. It never surfaces
// backend failures as errors: reads come back empty, a failed save comes back
// nil, and delete reports a bare boolean. Callers own any rollback.
type Gateway struct {
	store Store
}

func NewGateway(store Store) *Gateway {
	return &Gateway{store: store}
}

// List returns the user's projects, newest first. An unreachable or
// unconfigured backend yields an empty slice so display logic never needs a
// "backend down" branch.
func (g *Gateway) List(ctx context.Context, userID string) []Project {
	if g.store == nil || userID == "" {
		return []Project{}
	}
	items, err := g.store.List(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).WithError(err).Warn("project list failed, returning empty")
		return []Project{}
	}
	return items
}

// Save persists the project and returns nil on failure. A nil result means
// "not persisted", not a fault the caller should propagate.
func (g *Gateway) Save(ctx context.Context, userID, name, prompt, code, existingID string) *Project {
	if g.store == nil || userID == "" {
		return nil
	}
	p, err := g.store.Save(ctx, userID, name, prompt, code, existingID)
	if err != nil {
		logging.FromContext(ctx).WithError(err).Error("project save failed")
		return nil
	}
	return p
}

// Delete removes the project and reports success. The gateway does not roll
// anything back; the caller restores its local state on false.
func (g *Gateway) Delete(ctx context.Context, id string) bool {
	if g.store == nil {
		return false
	}
	ok, err := g.store.Delete(ctx, id)
	if err != nil {
		logging.FromContext(ctx).WithError(err).Error("project delete failed")
		return false
	}
	return ok
}
