package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/launchpad-ai/launchpad-backend/internal/poller"
	"github.com/launchpad-ai/launchpad-backend/internal/projects"
	"github.com/launchpad-ai/launchpad-backend/internal/session"
	"github.com/launchpad-ai/launchpad-backend/internal/synthesis"
)

// Session is the per-user workflow state. All fields are guarded by mu;
// operations copy what they need out, release the lock for any remote
// call, and re-check state when they take it back.
type Session struct {
	mu sync.Mutex

	user *session.State
	step Step

	quiz      synthesis.QuizAnswers
	imageData string
	brief     string
	proto     *synthesis.Prototype

	activeProjectID string
	processing      bool
	lastError       string

	known            []projects.Project
	pending          *projects.Project
	background       bool
	readyToast       bool
	readyProjectName string

	complexityNotice bool
	complexityTimer  *time.Timer
	toastTimer       *time.Timer

	genCancel context.CancelFunc
	poll      *poller.Runner
}

// Snapshot is the read model served to clients. It never exposes timers or
// internals, only what a UI needs to render the current stage.
type Snapshot struct {
	Step             Step                  `json:"step"`
	Processing       bool                  `json:"processing"`
	ComplexityNotice bool                  `json:"complexityNotice"`
	BackgroundMode   bool                  `json:"backgroundMode"`
	ReadyToast       bool                  `json:"readyToast"`
	ReadyProjectName string                `json:"readyProjectName,omitempty"`
	Brief            string                `json:"brief,omitempty"`
	Prototype        *synthesis.Prototype  `json:"prototype,omitempty"`
	ActiveProjectID  string                `json:"activeProjectId,omitempty"`
	LastError        string                `json:"lastError,omitempty"`
	Quiz             synthesis.QuizAnswers `json:"quiz"`
	Projects         []projects.Project    `json:"projects"`
}

func newSession(user *session.State) *Session {
	return &Session{user: user, step: StepLanding}
}

// snapshotLocked builds the read model. Caller holds mu.
func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Step:             s.step,
		Processing:       s.processing,
		ComplexityNotice: s.complexityNotice,
		BackgroundMode:   s.background,
		ReadyToast:       s.readyToast,
		ReadyProjectName: s.readyProjectName,
		Brief:            s.brief,
		ActiveProjectID:  s.activeProjectID,
		LastError:        s.lastError,
		Quiz:             s.quiz,
	}
	view := make([]projects.Project, 0, len(s.known)+1)
	if s.pending != nil {
		view = append(view, *s.pending)
	}
	view = append(view, s.known...)
	snap.Projects = view
	if s.proto != nil {
		copied := *s.proto
		snap.Prototype = &copied
	}
	return snap
}

// stopComplexityTimerLocked clears the long-build prompt machinery. It runs
// on every path out of the generating step so the prompt can never fire
// against a finished build.
func (s *Session) stopComplexityTimerLocked() {
	if s.complexityTimer != nil {
		s.complexityTimer.Stop()
		s.complexityTimer = nil
	}
	s.complexityNotice = false
}

func (s *Session) stopToastTimerLocked() {
	if s.toastTimer != nil {
		s.toastTimer.Stop()
		s.toastTimer = nil
	}
	s.readyToast = false
	s.readyProjectName = ""
}

// teardownLocked releases everything the session owns. Poller shutdown is
// handed back to the caller because Runner.Stop waits for in-flight ticks
// and must not run under mu.
func (s *Session) teardownLocked() *poller.Runner {
	s.stopComplexityTimerLocked()
	s.stopToastTimerLocked()
	if s.genCancel != nil {
		s.genCancel()
		s.genCancel = nil
	}
	p := s.poll
	s.poll = nil
	return p
}
