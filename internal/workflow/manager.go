package workflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/launchpad-ai/launchpad-backend/internal/dispatch"
	"github.com/launchpad-ai/launchpad-backend/internal/logging"
	"github.com/launchpad-ai/launchpad-backend/internal/poller"
	"github.com/launchpad-ai/launchpad-backend/internal/projects"
	"github.com/launchpad-ai/launchpad-backend/internal/session"
	"github.com/launchpad-ai/launchpad-backend/internal/synthesis"
)

var (
	ErrNoSession   = errors.New("no active session")
	ErrNoCredits   = errors.New("free generation already spent")
	ErrWrongStep   = errors.New("operation not allowed in current step")
	ErrNotOpenable = errors.New("project is still being built")
	ErrNotFound     = errors.New("project not found")
	ErrNotBuilding  = errors.New("no build in flight")
	ErrDeleteFailed = errors.New("project delete failed, list restored")
)

// Vault is the project persistence surface. Matches projects.Gateway.
type Vault interface {
	List(ctx context.Context, userID string) []projects.Project
	Save(ctx context.Context, userID, name, prompt, code, existingID string) *projects.Project
	Delete(ctx context.Context, id string) bool
}

// Synthesizer matches synthesis.Engine.
type Synthesizer interface {
	RefineBrief(ctx context.Context, q synthesis.QuizAnswers, imageData string) string
	GeneratePrototype(ctx context.Context, brief string) synthesis.Prototype
	Modify(ctx context.Context, code, brief, request string) string
	Repair(ctx context.Context, code, errorLog, brief string) string
}

// CreditGate matches entitle.Gate.
type CreditGate interface {
	Open(ctx context.Context, st *session.State) bool
}

// Dispatcher hands a build off for background completion.
type Dispatcher interface {
	Trigger(ctx context.Context, job dispatch.Job) bool
}

// CounterBumper spends a generation credit in the profile store.
type CounterBumper interface {
	BumpGenerationCount(ctx context.Context, userID string) error
}

// SessionCache matches session.Store.
type SessionCache interface {
	Save(ctx context.Context, st *session.State) error
	Clear(ctx context.Context, userID string) error
}

// Recorder counts workflow events. Matches metrics.Registry; nil disables.
type Recorder interface {
	IncGenerations()
	IncBackgroundBuilds()
	IncRepairs()
	IncGateDenials()
}

// Timings collects the clocks the workflow runs on.
type Timings struct {
	ComplexityPrompt time.Duration
	ReadyToastTTL    time.Duration
	PollInterval     time.Duration
}

// Deps wires the manager to the rest of the system.
type Deps struct {
	Vault      Vault
	Engine     Synthesizer
	Gate       CreditGate
	Dispatcher Dispatcher
	Counter    CounterBumper
	Cache      SessionCache
	Recorder   Recorder
}

// Manager owns every live workflow session and is the only writer of their
// state. The locking discipline throughout: take the session lock, copy
// what a remote call needs, release, call, re-take and re-check before
// writing results back.
type Manager struct {
	deps    Deps
	timings Timings

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(deps Deps, timings Timings) *Manager {
	if timings.ComplexityPrompt <= 0 {
		timings.ComplexityPrompt = 120 * time.Second
	}
	if timings.ReadyToastTTL <= 0 {
		timings.ReadyToastTTL = 12 * time.Second
	}
	if timings.PollInterval <= 0 {
		timings.PollInterval = 8 * time.Second
	}
	return &Manager{
		deps:     deps,
		timings:  timings,
		sessions: make(map[string]*Session),
	}
}

// EnsureSession creates (or returns) the workflow session for a user.
func (m *Manager) EnsureSession(user *session.State) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[user.ID]; ok {
		s.mu.Lock()
		s.user = user
		s.mu.Unlock()
		return s
	}
	s := newSession(user)
	m.sessions[user.ID] = s
	return s
}

func (m *Manager) get(userID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		return nil, ErrNoSession
	}
	return s, nil
}

// Snapshot returns the current read model.
func (m *Manager) Snapshot(userID string) (Snapshot, error) {
	s, err := m.get(userID)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(), nil
}

// BeginQuiz starts a fresh run: previous answers, brief and prototype are
// discarded, vault contents are untouched.
func (m *Manager) BeginQuiz(userID string) (Snapshot, error) {
	s, err := m.get(userID)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.processing {
		return Snapshot{}, ErrWrongStep
	}
	s.quiz = synthesis.QuizAnswers{}
	s.imageData = ""
	s.brief = ""
	s.proto = nil
	s.activeProjectID = ""
	s.lastError = ""
	s.step = StepQuiz
	return s.snapshotLocked(), nil
}

// SubmitQuiz records the questionnaire and moves on to the image step.
func (m *Manager) SubmitQuiz(userID string, quiz synthesis.QuizAnswers) (Snapshot, error) {
	s, err := m.get(userID)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step != StepQuiz && s.step != StepLanding {
		return Snapshot{}, ErrWrongStep
	}
	s.quiz = quiz
	s.step = StepUpload
	return s.snapshotLocked(), nil
}

// AttachImage stores optional reference imagery for the brief.
func (m *Manager) AttachImage(userID, imageData string) error {
	s, err := m.get(userID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step != StepUpload {
		return ErrWrongStep
	}
	s.imageData = imageData
	return nil
}

// StartGeneration checks the credit gate and kicks off the build. The
// synthesis itself runs detached from the request; clients follow along
// through Snapshot.
func (m *Manager) StartGeneration(ctx context.Context, userID string) (Snapshot, error) {
	s, err := m.get(userID)
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	if s.step != StepUpload && s.step != StepQuiz {
		s.mu.Unlock()
		return Snapshot{}, ErrWrongStep
	}
	if s.processing {
		s.mu.Unlock()
		return Snapshot{}, ErrWrongStep
	}
	user := s.user
	s.mu.Unlock()

	if !m.deps.Gate.Open(ctx, user) {
		if m.deps.Recorder != nil {
			m.deps.Recorder.IncGateDenials()
		}
		return Snapshot{}, ErrNoCredits
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.processing {
		return Snapshot{}, ErrWrongStep
	}

	s.processing = true
	s.step = StepGenerating
	s.brief = ""
	s.proto = nil
	s.lastError = ""

	// The build outlives the HTTP request.
	genCtx, cancel := context.WithCancel(context.Background())
	if rid := logging.RequestID(ctx); rid != "" {
		genCtx = logging.WithRequestID(genCtx, rid)
	}
	s.genCancel = cancel

	s.stopComplexityTimerLocked()
	s.complexityTimer = time.AfterFunc(m.timings.ComplexityPrompt, func() {
		s.mu.Lock()
		if s.processing && s.step == StepGenerating {
			s.complexityNotice = true
		}
		s.mu.Unlock()
	})

	if m.deps.Recorder != nil {
		m.deps.Recorder.IncGenerations()
	}
	go m.generate(genCtx, s)

	return s.snapshotLocked(), nil
}

// generate runs the two synthesis phases and finalizes. A session that went
// to background mode mid-flight discards the foreground result; the worker
// owns the build from that point.
func (m *Manager) generate(ctx context.Context, s *Session) {
	s.mu.Lock()
	quiz, image := s.quiz, s.imageData
	s.mu.Unlock()

	brief := m.deps.Engine.RefineBrief(ctx, quiz, image)

	s.mu.Lock()
	if ctx.Err() != nil || s.background {
		s.mu.Unlock()
		return
	}
	s.brief = brief
	s.mu.Unlock()

	proto := m.deps.Engine.GeneratePrototype(ctx, brief)
	m.finalize(ctx, s, brief, proto)
}

// finalize persists the build and only then presents the dashboard, so a
// snapshot that shows the dashboard step always includes the saved row.
func (m *Manager) finalize(ctx context.Context, s *Session, brief string, proto synthesis.Prototype) {
	s.mu.Lock()
	s.stopComplexityTimerLocked()
	if ctx.Err() != nil || s.background {
		s.mu.Unlock()
		return
	}
	user := s.user
	s.mu.Unlock()

	saved := m.deps.Vault.Save(ctx, user.ID, proto.Title, brief, proto.Code, "")
	if saved != nil {
		m.spendCredit(ctx, s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ctx.Err() != nil || s.background {
		return
	}
	s.proto = &proto
	s.processing = false
	s.genCancel = nil
	s.step = StepDashboard
	if saved != nil {
		s.known = prepend(s.known, *saved)
		s.activeProjectID = saved.ID
	}
}

// spendCredit bumps the persistent counter and mirrors the spend into the
// cached session record. Only brand-new projects cost a credit; updates to
// an existing row never route through here.
func (m *Manager) spendCredit(ctx context.Context, s *Session) {
	s.mu.Lock()
	user := s.user
	user.GenerationCount++
	s.mu.Unlock()

	if m.deps.Counter != nil {
		if err := m.deps.Counter.BumpGenerationCount(ctx, user.ID); err != nil {
			logging.FromContext(ctx).WithError(err).Warn("failed to persist spent credit")
		}
	}
	if m.deps.Cache != nil {
		if err := m.deps.Cache.Save(ctx, user); err != nil {
			logging.FromContext(ctx).WithError(err).Warn("failed to refresh session after credit spend")
		}
	}
}

// Modify applies a change request to the active prototype and updates the
// same vault row it came from.
func (m *Manager) Modify(ctx context.Context, userID, request string) (Snapshot, error) {
	s, err := m.get(userID)
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	if s.step != StepDashboard || s.proto == nil {
		s.mu.Unlock()
		return Snapshot{}, ErrWrongStep
	}
	code, brief, title := s.proto.Code, s.brief, s.proto.Title
	existingID := s.activeProjectID
	s.mu.Unlock()

	newCode := m.deps.Engine.Modify(ctx, code, brief, request)
	saved := m.deps.Vault.Save(ctx, userID, title, brief, newCode, existingID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.proto == nil {
		return Snapshot{}, ErrWrongStep
	}
	s.proto.Code = newCode
	if saved != nil {
		s.activeProjectID = saved.ID
		s.known = upsert(s.known, *saved)
	}
	return s.snapshotLocked(), nil
}

// ReportCrash is the DEMO_ERROR sink: the preview crashed, so the session
// moves to the repairing step with the crash report attached.
func (m *Manager) ReportCrash(userID, message, stack string) (Snapshot, error) {
	s, err := m.get(userID)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.proto == nil {
		return Snapshot{}, ErrWrongStep
	}
	report := message
	if stack != "" {
		report += "\n" + stack
	}
	s.lastError = report
	s.step = StepRepairing
	return s.snapshotLocked(), nil
}

// Repair runs self-healing on the crashed code and returns the session to
// the dashboard. An unusable repair result leaves the code as it was; the
// client may retry or abandon.
func (m *Manager) Repair(ctx context.Context, userID string) (Snapshot, error) {
	s, err := m.get(userID)
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	if s.step != StepRepairing || s.proto == nil {
		s.mu.Unlock()
		return Snapshot{}, ErrWrongStep
	}
	code, brief, title := s.proto.Code, s.brief, s.proto.Title
	errorLog := s.lastError
	existingID := s.activeProjectID
	s.mu.Unlock()

	if m.deps.Recorder != nil {
		m.deps.Recorder.IncRepairs()
	}
	fixed := m.deps.Engine.Repair(ctx, code, errorLog, brief)

	var saved *projects.Project
	if fixed != code {
		saved = m.deps.Vault.Save(ctx, userID, title, brief, fixed, existingID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.proto == nil {
		return Snapshot{}, ErrWrongStep
	}
	s.proto.Code = fixed
	s.lastError = ""
	s.step = StepDashboard
	if saved != nil {
		s.activeProjectID = saved.ID
		s.known = upsert(s.known, *saved)
	}
	return s.snapshotLocked(), nil
}

// AbandonRepair gives up on the crashed prototype and parks the user in
// the vault.
func (m *Manager) AbandonRepair(userID string) (Snapshot, error) {
	s, err := m.get(userID)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step != StepRepairing {
		return Snapshot{}, ErrWrongStep
	}
	s.lastError = ""
	s.proto = nil
	s.activeProjectID = ""
	s.step = StepVault
	return s.snapshotLocked(), nil
}

// RunInBackground abandons the foreground wait, hands the build to the
// dispatcher and parks the user in the vault behind a placeholder card.
func (m *Manager) RunInBackground(ctx context.Context, userID string) (Snapshot, error) {
	s, err := m.get(userID)
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	if !s.processing {
		s.mu.Unlock()
		return Snapshot{}, ErrNotBuilding
	}
	if s.genCancel != nil {
		s.genCancel()
		s.genCancel = nil
	}
	s.stopComplexityTimerLocked()

	ph := projects.NewPlaceholder("", s.brief, userID)
	s.pending = &ph
	s.background = true
	s.processing = false
	s.step = StepVault

	job := dispatch.Job{
		UserID:    userID,
		UserEmail: s.user.Email,
		Quiz:      s.quiz,
		Brief:     s.brief,
		ImageData: s.imageData,
	}
	s.mu.Unlock()

	if m.deps.Recorder != nil {
		m.deps.Recorder.IncBackgroundBuilds()
	}
	if !m.deps.Dispatcher.Trigger(ctx, job) {
		logging.FromContext(ctx).WithField("user_id", userID).Warn("background hand-off failed, poller will keep watching")
	}
	m.ensurePoller(s, userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(), nil
}

// OpenVault refreshes the list from the store and moves to the vault step.
// A list that still contains unfinished rows keeps the watcher running so
// builds landed by the worker or another session show up without a reload.
func (m *Manager) OpenVault(ctx context.Context, userID string) (Snapshot, error) {
	s, err := m.get(userID)
	if err != nil {
		return Snapshot{}, err
	}

	fetched := m.deps.Vault.List(ctx, userID)

	s.mu.Lock()
	s.known = fetched
	s.step = StepVault
	watch := s.background || s.pending != nil || hasUnfinished(fetched)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if watch {
		m.ensurePoller(s, userID)
	}
	return snap, nil
}

// SelectProject loads a finished project into the dashboard. Placeholders
// and still-building rows cannot be opened.
func (m *Manager) SelectProject(userID, projectID string) (Snapshot, error) {
	s, err := m.get(userID)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var target *projects.Project
	for i := range s.known {
		if s.known[i].ID == projectID {
			target = &s.known[i]
			break
		}
	}
	if target == nil {
		if s.pending != nil && s.pending.ID == projectID {
			return Snapshot{}, ErrNotOpenable
		}
		return Snapshot{}, ErrNotFound
	}
	if !target.Openable() {
		return Snapshot{}, ErrNotOpenable
	}

	s.proto = &synthesis.Prototype{Title: target.Name, Code: target.Code, Theme: synthesis.DefaultTheme}
	s.brief = target.Prompt
	s.activeProjectID = target.ID
	s.lastError = ""
	s.step = StepDashboard
	return s.snapshotLocked(), nil
}

// DeleteProject removes a project optimistically: the local list drops the
// row immediately and is restored wholesale if the store refuses.
func (m *Manager) DeleteProject(ctx context.Context, userID, projectID string) (Snapshot, error) {
	s, err := m.get(userID)
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	backup := append([]projects.Project(nil), s.known...)
	found := false
	trimmed := s.known[:0:0]
	for _, p := range s.known {
		if p.ID == projectID {
			found = true
			continue
		}
		trimmed = append(trimmed, p)
	}
	if !found {
		s.mu.Unlock()
		return Snapshot{}, ErrNotFound
	}
	s.known = trimmed
	wasActive := s.activeProjectID == projectID
	if wasActive {
		s.activeProjectID = ""
		s.proto = nil
	}
	s.mu.Unlock()

	if !m.deps.Vault.Delete(ctx, projectID) {
		s.mu.Lock()
		s.known = backup
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, ErrDeleteFailed
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(), nil
}

// DismissNotices clears transient prompts without changing step.
func (m *Manager) DismissNotices(userID string) error {
	s, err := m.get(userID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.complexityNotice = false
	s.stopToastTimerLocked()
	return nil
}

// Logout tears the session down and clears the cached record.
func (m *Manager) Logout(ctx context.Context, userID string) error {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()
	if !ok {
		return ErrNoSession
	}

	s.mu.Lock()
	runner := s.teardownLocked()
	s.mu.Unlock()
	if runner != nil {
		runner.Stop()
	}

	if m.deps.Cache != nil {
		if err := m.deps.Cache.Clear(ctx, userID); err != nil {
			logging.FromContext(ctx).WithError(err).Warn("failed to clear cached session on logout")
		}
	}
	return nil
}

// Shutdown stops every session's timers and pollers.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range all {
		s.mu.Lock()
		runner := s.teardownLocked()
		s.mu.Unlock()
		if runner != nil {
			runner.Stop()
		}
	}
}

// ensurePoller starts the background watcher for a session if it is not
// already running.
func (m *Manager) ensurePoller(s *Session, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.poll != nil {
		return
	}
	s.poll = poller.NewRunner(m.timings.PollInterval, func(ctx context.Context) {
		m.pollTick(ctx, s, userID)
	})
	s.poll.Start(context.Background())
}

// pollTick fetches the vault and folds any progress into the session. When
// a background build lands, the placeholder is cleared, background mode
// ends and the ready toast shows for its TTL.
func (m *Manager) pollTick(ctx context.Context, s *Session, userID string) {
	fetched := m.deps.Vault.List(ctx, userID)

	s.mu.Lock()
	diff := poller.Compare(s.known, fetched)
	if diff.Replace {
		s.known = fetched
	}
	if len(diff.NewlyFinished) > 0 {
		s.pending = nil
		s.background = false
		s.stopToastTimerLocked()
		s.readyToast = true
		s.readyProjectName = diff.NewlyFinished[0].Name
		s.toastTimer = time.AfterFunc(m.timings.ReadyToastTTL, func() {
			s.mu.Lock()
			s.readyToast = false
			s.readyProjectName = ""
			s.toastTimer = nil
			s.mu.Unlock()
		})
	}
	idle := !s.background && s.pending == nil && !hasUnfinished(s.known)
	var runner *poller.Runner
	if idle && s.poll != nil {
		runner = s.poll
		s.poll = nil
	}
	s.mu.Unlock()

	if runner != nil {
		// Stop waits for this tick, so it must run elsewhere.
		go runner.Stop()
	}
}

// hasUnfinished reports whether any stored project is still below the
// readiness threshold, which means a build may yet land for it.
func hasUnfinished(list []projects.Project) bool {
	for _, p := range list {
		if !p.CodeReady() {
			return true
		}
	}
	return false
}

func prepend(list []projects.Project, p projects.Project) []projects.Project {
	out := make([]projects.Project, 0, len(list)+1)
	out = append(out, p)
	return append(out, list...)
}

// upsert replaces a project in place by id, or prepends it when absent.
func upsert(list []projects.Project, p projects.Project) []projects.Project {
	for i := range list {
		if list[i].ID == p.ID {
			list[i] = p
			return list
		}
	}
	return prepend(list, p)
}
