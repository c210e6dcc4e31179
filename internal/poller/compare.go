package poller

import (
	"github.com/launchpad-ai/launchpad-backend/internal/projects"
)

// Diff is the outcome of comparing a freshly fetched vault list against the
// list a session already knows about.
type Diff struct {
	// Replace reports whether the fetched list should displace the known
	// one. True when something newly finished, or when the store simply
	// has more real projects than the session does.
	Replace bool

	// NewlyFinished holds projects whose code crossed the readiness
	// threshold since the last look: they were unknown or not ready
	// before, and are ready now.
	NewlyFinished []projects.Project
}

// Compare is a pure function; it never mutates its inputs. Placeholders in
// the known list stand for work in flight and are ignored for counting, so
// a placeholder being displaced by its real row still registers as growth.
func Compare(known, fetched []projects.Project) Diff {
	knownByID := make(map[string]projects.Project, len(known))
	realKnown := 0
	for _, p := range known {
		if p.IsPlaceholder() {
			continue
		}
		knownByID[p.ID] = p
		realKnown++
	}

	var finished []projects.Project
	for _, f := range fetched {
		if !f.CodeReady() {
			continue
		}
		prev, seen := knownByID[f.ID]
		if !seen || !prev.CodeReady() {
			finished = append(finished, f)
		}
	}

	return Diff{
		Replace:       len(finished) > 0 || len(fetched) > realKnown,
		NewlyFinished: finished,
	}
}
