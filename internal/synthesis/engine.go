package synthesis

import (
	"context"
	"strings"
	"time"

	"github.com/launchpad-ai/launchpad-backend/config"
	"github.com/launchpad-ai/launchpad-backend/internal/logging"
)

// Completer is the remote synthesis surface the engine depends on.
// Satisfied by ProxyClient.
type Completer interface {
	Generate(ctx context.Context, timeout time.Duration, parts []Part) (string, error)
}

// RepairMemory is the slice of MemoryRepo the engine uses.
type RepairMemory interface {
	LogRepair(ctx context.Context, errorPattern, solutionLogic, briefContext string) error
	MemoryMap(ctx context.Context) (string, error)
}

// Engine produces briefs and prototypes. Every operation tries the remote
// model first and masks any failure with a deterministic local result, so
// callers only see an error when their own input was unusable.
type Engine struct {
	remote       Completer
	memory       RepairMemory
	briefTimeout time.Duration
	protoTimeout time.Duration
}

func NewEngine(remote Completer, memory RepairMemory, cfg config.SynthesisConfig) *Engine {
	return &Engine{
		remote:       remote,
		memory:       memory,
		briefTimeout: cfg.BriefTimeout,
		protoTimeout: cfg.PrototypeTimeout,
	}
}

// RefineBrief turns quiz answers (plus an optional reference image) into a
// sectioned design brief.
func (e *Engine) RefineBrief(ctx context.Context, q QuizAnswers, imageData string) string {
	parts := []Part{TextPart(briefPrompt(q, imageData != ""))}
	if imageData != "" {
		parts = append(parts, ImagePart(imageData))
	}

	text, err := e.remote.Generate(ctx, e.briefTimeout, parts)
	if err != nil || strings.TrimSpace(text) == "" {
		logging.FromContext(ctx).WithError(err).Debug("remote brief unavailable, using local brief")
		return LocalBrief(q, imageData != "")
	}
	return strings.TrimSpace(text)
}

// GeneratePrototype builds the component from a brief. The result always
// declares the AppDemo component.
func (e *Engine) GeneratePrototype(ctx context.Context, brief string) Prototype {
	text, err := e.remote.Generate(ctx, e.protoTimeout, []Part{TextPart(prototypePrompt(brief))})
	if err == nil {
		if code := ExtractPureCode(text); HasComponentDecl(code) {
			return Prototype{Title: TitleFromBrief(brief), Code: code, Theme: DefaultTheme}
		}
		logging.FromContext(ctx).Warn("remote prototype missing component declaration, using local template")
	} else {
		logging.FromContext(ctx).WithError(err).Debug("remote prototype unavailable, using local template")
	}
	return LocalPrototype(brief)
}

// Modify applies a change request to existing code. When the remote result
// is unusable the input code comes back untouched, which the workflow
// treats as a safe no-op.
func (e *Engine) Modify(ctx context.Context, code, brief, request string) string {
	text, err := e.remote.Generate(ctx, e.protoTimeout, []Part{TextPart(modifyPrompt(code, brief, request))})
	if err == nil {
		if out := ExtractPureCode(text); HasComponentDecl(out) {
			return out
		}
	}
	logging.FromContext(ctx).WithError(err).Debug("remote modify unavailable, keeping current code")
	return code
}

// Repair attempts to fix crashed code using the crash report and the
// accumulated repair memory. Like Modify, an unusable remote result leaves
// the input unchanged.
func (e *Engine) Repair(ctx context.Context, code, errorLog, brief string) string {
	memoryMap := ""
	if e.memory != nil {
		if m, err := e.memory.MemoryMap(ctx); err == nil {
			memoryMap = m
		}
	}

	text, err := e.remote.Generate(ctx, e.protoTimeout, []Part{TextPart(repairPrompt(code, errorLog, memoryMap))})
	if err != nil {
		logging.FromContext(ctx).WithError(err).Debug("remote repair unavailable, keeping current code")
		return code
	}
	out := ExtractPureCode(text)
	if !HasComponentDecl(out) {
		return code
	}

	if e.memory != nil {
		pattern := truncate(errorLog, 120)
		if err := e.memory.LogRepair(ctx, pattern, "self-healing rewrite applied", truncate(brief, 200)); err != nil {
			logging.FromContext(ctx).WithError(err).Warn("failed to record repair in memory")
		}
	}
	return out
}
