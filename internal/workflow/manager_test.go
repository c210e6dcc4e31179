package workflow

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchpad-ai/launchpad-backend/internal/dispatch"
	"github.com/launchpad-ai/launchpad-backend/internal/projects"
	"github.com/launchpad-ai/launchpad-backend/internal/session"
	"github.com/launchpad-ai/launchpad-backend/internal/synthesis"
)

type saveCall struct {
	name, prompt, code, existingID string
}

type fakeVault struct {
	mu         sync.Mutex
	seq        int
	order      []string
	items      map[string]projects.Project
	failSave   bool
	failDelete bool
	saves      []saveCall
}

func newFakeVault() *fakeVault {
	return &fakeVault{items: map[string]projects.Project{}}
}

func (v *fakeVault) List(_ context.Context, userID string) []projects.Project {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]projects.Project, 0, len(v.order))
	for i := len(v.order) - 1; i >= 0; i-- {
		p := v.items[v.order[i]]
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out
}

func (v *fakeVault) Save(_ context.Context, userID, name, prompt, code, existingID string) *projects.Project {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.saves = append(v.saves, saveCall{name, prompt, code, existingID})
	if v.failSave {
		return nil
	}
	if existingID != "" {
		p, ok := v.items[existingID]
		if !ok {
			return nil
		}
		p.Name, p.Prompt, p.Code = name, prompt, code
		v.items[existingID] = p
		copied := p
		return &copied
	}
	v.seq++
	p := projects.Project{
		ID:     fmt.Sprintf("proj-%d", v.seq),
		Name:   name,
		Prompt: prompt,
		Code:   code,
		UserID: userID,
	}
	v.items[p.ID] = p
	v.order = append(v.order, p.ID)
	copied := p
	return &copied
}

func (v *fakeVault) Delete(_ context.Context, id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.failDelete {
		return false
	}
	if _, ok := v.items[id]; !ok {
		return false
	}
	delete(v.items, id)
	for i, oid := range v.order {
		if oid == id {
			v.order = append(v.order[:i], v.order[i+1:]...)
			break
		}
	}
	return true
}

func (v *fakeVault) saveCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.saves)
}

type wfEngine struct {
	mu        sync.Mutex
	protoCode string
	modifyOut string
	repairOut string
	release   chan struct{}
}

func (e *wfEngine) RefineBrief(_ context.Context, q synthesis.QuizAnswers, _ string) string {
	return "brief: " + q.ValueProposition
}

func (e *wfEngine) GeneratePrototype(ctx context.Context, brief string) synthesis.Prototype {
	e.mu.Lock()
	release := e.release
	e.mu.Unlock()
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
		}
	}
	return synthesis.Prototype{Title: "Built App", Code: e.protoCode, Theme: synthesis.DefaultTheme}
}

func (e *wfEngine) Modify(_ context.Context, code, _, _ string) string {
	if e.modifyOut != "" {
		return e.modifyOut
	}
	return code
}

func (e *wfEngine) Repair(_ context.Context, code, _, _ string) string {
	if e.repairOut != "" {
		return e.repairOut
	}
	return code
}

type wfGate struct{ allow bool }

func (g *wfGate) Open(context.Context, *session.State) bool { return g.allow }

type wfDispatcher struct {
	mu   sync.Mutex
	jobs []dispatch.Job
	ok   bool
}

func (d *wfDispatcher) Trigger(_ context.Context, job dispatch.Job) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.jobs = append(d.jobs, job)
	return d.ok
}

type wfCounter struct {
	mu     sync.Mutex
	bumped []string
}

func (c *wfCounter) BumpGenerationCount(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bumped = append(c.bumped, userID)
	return nil
}

func (c *wfCounter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.bumped)
}

type wfCache struct {
	mu      sync.Mutex
	saves   int
	cleared []string
}

func (c *wfCache) Save(context.Context, *session.State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saves++
	return nil
}

func (c *wfCache) Clear(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleared = append(c.cleared, userID)
	return nil
}

type fixture struct {
	manager    *Manager
	vault      *fakeVault
	engine     *wfEngine
	gate       *wfGate
	dispatcher *wfDispatcher
	counter    *wfCounter
	cache      *wfCache
}

func readyComponent() string {
	code := "function AppDemo() { return <div>"
	for len(code) < 150 {
		code += "x"
	}
	return code + "</div>; }"
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		vault:      newFakeVault(),
		engine:     &wfEngine{protoCode: readyComponent()},
		gate:       &wfGate{allow: true},
		dispatcher: &wfDispatcher{ok: true},
		counter:    &wfCounter{},
		cache:      &wfCache{},
	}
	f.manager = NewManager(Deps{
		Vault:      f.vault,
		Engine:     f.engine,
		Gate:       f.gate,
		Dispatcher: f.dispatcher,
		Counter:    f.counter,
		Cache:      f.cache,
	}, Timings{
		ComplexityPrompt: 40 * time.Millisecond,
		ReadyToastTTL:    60 * time.Millisecond,
		PollInterval:     15 * time.Millisecond,
	})
	t.Cleanup(f.manager.Shutdown)
	return f
}

func (f *fixture) startUser(t *testing.T, id string) string {
	t.Helper()
	f.manager.EnsureSession(&session.State{ID: id, Email: id + "@example.com"})
	return id
}

func (f *fixture) runToDashboard(t *testing.T, userID string) Snapshot {
	t.Helper()
	_, err := f.manager.BeginQuiz(userID)
	require.NoError(t, err)
	_, err = f.manager.SubmitQuiz(userID, synthesis.QuizAnswers{ValueProposition: "dog walking app"})
	require.NoError(t, err)
	snap, err := f.manager.StartGeneration(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, StepGenerating, snap.Step)

	require.Eventually(t, func() bool {
		s, err := f.manager.Snapshot(userID)
		return err == nil && s.Step == StepDashboard
	}, time.Second, 5*time.Millisecond)

	snap, err = f.manager.Snapshot(userID)
	require.NoError(t, err)
	return snap
}

func TestHappyPath_QuizToDashboard(t *testing.T) {
	f := newFixture(t)
	userID := f.startUser(t, "u1")

	snap := f.runToDashboard(t, userID)

	assert.Equal(t, "brief: dog walking app", snap.Brief)
	require.NotNil(t, snap.Prototype)
	assert.True(t, synthesis.HasComponentDecl(snap.Prototype.Code))
	require.Len(t, snap.Projects, 1)
	assert.Equal(t, snap.ActiveProjectID, snap.Projects[0].ID)
	assert.False(t, snap.Processing)

	assert.Equal(t, 1, f.counter.count(), "a brand-new project costs exactly one credit")
}

func TestStartGeneration_GateDenied(t *testing.T) {
	f := newFixture(t)
	f.gate.allow = false
	userID := f.startUser(t, "u1")

	_, err := f.manager.BeginQuiz(userID)
	require.NoError(t, err)
	_, err = f.manager.SubmitQuiz(userID, synthesis.QuizAnswers{})
	require.NoError(t, err)

	_, err = f.manager.StartGeneration(context.Background(), userID)
	assert.ErrorIs(t, err, ErrNoCredits)

	snap, err := f.manager.Snapshot(userID)
	require.NoError(t, err)
	assert.Equal(t, StepUpload, snap.Step)
	assert.False(t, snap.Processing)
}

func TestModify_TwiceUpdatesSameRow(t *testing.T) {
	f := newFixture(t)
	userID := f.startUser(t, "u1")
	first := f.runToDashboard(t, userID)
	projectID := first.ActiveProjectID
	creditsAfterBuild := f.counter.count()

	f.engine.modifyOut = readyComponent() + " // v2"
	snap, err := f.manager.Modify(context.Background(), userID, "make it blue")
	require.NoError(t, err)
	assert.Equal(t, projectID, snap.ActiveProjectID)

	f.engine.modifyOut = readyComponent() + " // v3"
	snap, err = f.manager.Modify(context.Background(), userID, "bigger buttons")
	require.NoError(t, err)
	assert.Equal(t, projectID, snap.ActiveProjectID)

	require.Len(t, snap.Projects, 1, "modifications must not spawn new rows")
	assert.Contains(t, snap.Projects[0].Code, "// v3")
	assert.Equal(t, creditsAfterBuild, f.counter.count(), "modifications never spend credits")
}

func TestCrashAndRepair(t *testing.T) {
	f := newFixture(t)
	userID := f.startUser(t, "u1")
	f.runToDashboard(t, userID)

	snap, err := f.manager.ReportCrash(userID, "ReferenceError: x is not defined", "at AppDemo")
	require.NoError(t, err)
	assert.Equal(t, StepRepairing, snap.Step)
	assert.Contains(t, snap.LastError, "ReferenceError")

	f.engine.repairOut = readyComponent() + " // fixed"
	snap, err = f.manager.Repair(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, StepDashboard, snap.Step)
	assert.Empty(t, snap.LastError)
	assert.Contains(t, snap.Prototype.Code, "// fixed")
	require.Len(t, snap.Projects, 1)
	assert.Contains(t, snap.Projects[0].Code, "// fixed")
}

func TestAbandonRepair(t *testing.T) {
	f := newFixture(t)
	userID := f.startUser(t, "u1")
	f.runToDashboard(t, userID)

	_, err := f.manager.ReportCrash(userID, "boom", "")
	require.NoError(t, err)

	snap, err := f.manager.AbandonRepair(userID)
	require.NoError(t, err)
	assert.Equal(t, StepVault, snap.Step)
	assert.Nil(t, snap.Prototype)
	assert.Empty(t, snap.ActiveProjectID)
}

func TestRunInBackground_HandsOffAndPolls(t *testing.T) {
	f := newFixture(t)
	f.engine.release = make(chan struct{})
	userID := f.startUser(t, "u1")

	_, err := f.manager.BeginQuiz(userID)
	require.NoError(t, err)
	_, err = f.manager.SubmitQuiz(userID, synthesis.QuizAnswers{ValueProposition: "dog walking app"})
	require.NoError(t, err)
	_, err = f.manager.StartGeneration(context.Background(), userID)
	require.NoError(t, err)

	// Foreground build is stuck in prototype synthesis; go background.
	snap, err := f.manager.RunInBackground(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, StepVault, snap.Step)
	assert.True(t, snap.BackgroundMode)
	require.Len(t, snap.Projects, 1)
	assert.True(t, snap.Projects[0].IsPlaceholder())

	require.Len(t, f.dispatcher.jobs, 1)
	assert.Equal(t, userID, f.dispatcher.jobs[0].UserID)
	assert.Equal(t, "dog walking app", f.dispatcher.jobs[0].Quiz.ValueProposition)

	// The canceled foreground build must not write anything.
	close(f.engine.release)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 0, f.vault.saveCount())

	// Worker lands the finished build; the poller notices, swaps the
	// placeholder for the real row and raises the ready toast.
	f.vault.Save(context.Background(), userID, "Built App", "brief", readyComponent(), "")

	require.Eventually(t, func() bool {
		s, err := f.manager.Snapshot(userID)
		return err == nil && !s.BackgroundMode && s.ReadyToast
	}, time.Second, 5*time.Millisecond)

	snap, err = f.manager.Snapshot(userID)
	require.NoError(t, err)
	require.Len(t, snap.Projects, 1)
	assert.False(t, snap.Projects[0].IsPlaceholder())
	assert.Equal(t, "Built App", snap.ReadyProjectName, "the toast names the finished project")

	// The toast is transient, and takes the name with it.
	require.Eventually(t, func() bool {
		s, err := f.manager.Snapshot(userID)
		return err == nil && !s.ReadyToast && s.ReadyProjectName == ""
	}, time.Second, 5*time.Millisecond)
}

func TestOpenVault_WatchesUnfinishedProjects(t *testing.T) {
	f := newFixture(t)
	userID := f.startUser(t, "u1")

	// A row persisted with near-empty code is still being built somewhere
	// else; opening the vault alone must start watching it.
	stub := f.vault.Save(context.Background(), userID, "Slow Build", "brief", "tiny", "")
	require.NotNil(t, stub)

	snap, err := f.manager.OpenVault(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, snap.Projects, 1)
	assert.False(t, snap.Projects[0].CodeReady())

	// The worker lands the finished code for the same row.
	f.vault.Save(context.Background(), userID, "Slow Build", "brief", readyComponent(), stub.ID)

	require.Eventually(t, func() bool {
		s, err := f.manager.Snapshot(userID)
		return err == nil && len(s.Projects) == 1 && s.Projects[0].CodeReady()
	}, time.Second, 5*time.Millisecond)

	snap, err = f.manager.Snapshot(userID)
	require.NoError(t, err)
	assert.True(t, snap.ReadyToast)
	assert.Equal(t, "Slow Build", snap.ReadyProjectName)
}

func TestRunInBackground_RequiresBuildInFlight(t *testing.T) {
	f := newFixture(t)
	userID := f.startUser(t, "u1")
	_, err := f.manager.RunInBackground(context.Background(), userID)
	assert.ErrorIs(t, err, ErrNotBuilding)
}

func TestComplexityNotice_FiresAndClears(t *testing.T) {
	f := newFixture(t)
	f.engine.release = make(chan struct{})
	userID := f.startUser(t, "u1")

	_, err := f.manager.BeginQuiz(userID)
	require.NoError(t, err)
	_, err = f.manager.SubmitQuiz(userID, synthesis.QuizAnswers{})
	require.NoError(t, err)
	_, err = f.manager.StartGeneration(context.Background(), userID)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		s, err := f.manager.Snapshot(userID)
		return err == nil && s.ComplexityNotice
	}, time.Second, 5*time.Millisecond)

	close(f.engine.release)
	require.Eventually(t, func() bool {
		s, err := f.manager.Snapshot(userID)
		return err == nil && s.Step == StepDashboard && !s.ComplexityNotice
	}, time.Second, 5*time.Millisecond)
}

func TestSelectProject_GuardsUnfinished(t *testing.T) {
	f := newFixture(t)
	userID := f.startUser(t, "u1")
	f.vault.Save(context.Background(), userID, "Stub", "brief", "tiny", "")

	_, err := f.manager.OpenVault(context.Background(), userID)
	require.NoError(t, err)

	_, err = f.manager.SelectProject(userID, "proj-1")
	assert.ErrorIs(t, err, ErrNotOpenable)

	_, err = f.manager.SelectProject(userID, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSelectProject_LoadsDashboard(t *testing.T) {
	f := newFixture(t)
	userID := f.startUser(t, "u1")
	saved := f.vault.Save(context.Background(), userID, "Finished", "the brief", readyComponent(), "")

	_, err := f.manager.OpenVault(context.Background(), userID)
	require.NoError(t, err)

	snap, err := f.manager.SelectProject(userID, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, StepDashboard, snap.Step)
	assert.Equal(t, saved.ID, snap.ActiveProjectID)
	assert.Equal(t, "the brief", snap.Brief)
	require.NotNil(t, snap.Prototype)
	assert.Equal(t, "Finished", snap.Prototype.Title)
}

func TestDeleteProject_OptimisticRollback(t *testing.T) {
	f := newFixture(t)
	userID := f.startUser(t, "u1")
	saved := f.vault.Save(context.Background(), userID, "Keep Me", "brief", readyComponent(), "")

	_, err := f.manager.OpenVault(context.Background(), userID)
	require.NoError(t, err)

	f.vault.failDelete = true
	snap, err := f.manager.DeleteProject(context.Background(), userID, saved.ID)
	assert.ErrorIs(t, err, ErrDeleteFailed)
	require.Len(t, snap.Projects, 1, "failed delete must restore the full backup")
	assert.Equal(t, saved.ID, snap.Projects[0].ID)

	f.vault.failDelete = false
	snap, err = f.manager.DeleteProject(context.Background(), userID, saved.ID)
	require.NoError(t, err)
	assert.Empty(t, snap.Projects)
}

func TestFailedSave_SpendsNoCredit(t *testing.T) {
	f := newFixture(t)
	f.vault.failSave = true
	userID := f.startUser(t, "u1")

	snap := f.runToDashboard(t, userID)
	assert.Empty(t, snap.Projects)
	assert.Equal(t, 0, f.counter.count())
}

func TestLogout_TearsDownSession(t *testing.T) {
	f := newFixture(t)
	userID := f.startUser(t, "u1")
	f.runToDashboard(t, userID)

	require.NoError(t, f.manager.Logout(context.Background(), userID))
	assert.Equal(t, []string{userID}, f.cache.cleared)

	_, err := f.manager.Snapshot(userID)
	assert.ErrorIs(t, err, ErrNoSession)
}
