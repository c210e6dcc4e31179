package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/launchpad-ai/launchpad-backend/internal/logging"
	"github.com/launchpad-ai/launchpad-backend/internal/projects"
	"github.com/launchpad-ai/launchpad-backend/internal/synthesis"
)

// Synthesizer is the slice of the engine the processor needs.
type Synthesizer interface {
	RefineBrief(ctx context.Context, q synthesis.QuizAnswers, imageData string) string
	GeneratePrototype(ctx context.Context, brief string) synthesis.Prototype
}

// Vault persists finished builds.
type Vault interface {
	Save(ctx context.Context, userID, name, prompt, code, existingID string) *projects.Project
}

// CounterBumper records a spent generation credit.
type CounterBumper interface {
	BumpGenerationCount(ctx context.Context, userID string) error
}

// Processor runs one background build end to end: brief (if missing),
// prototype, persist, credit. The engine masks remote failures internally,
// so a Process error means the vault write failed and the job should retry.
type Processor struct {
	engine  Synthesizer
	vault   Vault
	counter CounterBumper
}

func NewProcessor(engine Synthesizer, vault Vault, counter CounterBumper) *Processor {
	return &Processor{engine: engine, vault: vault, counter: counter}
}

func (p *Processor) Process(ctx context.Context, job Job) error {
	log := logging.FromContext(ctx).WithField("user_id", job.UserID)

	brief := strings.TrimSpace(job.Brief)
	if brief == "" {
		brief = p.engine.RefineBrief(ctx, job.Quiz, job.ImageData)
	}

	proto := p.engine.GeneratePrototype(ctx, brief)

	saved := p.vault.Save(ctx, job.UserID, proto.Title, brief, proto.Code, "")
	if saved == nil {
		return fmt.Errorf("background build for user %s was not persisted", job.UserID)
	}
	log.WithField("project_id", saved.ID).Info("background build persisted")

	if p.counter != nil {
		if err := p.counter.BumpGenerationCount(ctx, job.UserID); err != nil {
			log.WithError(err).Warn("failed to bump generation count after background build")
		}
	}
	return nil
}
