package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/launchpad-ai/launchpad-backend/internal/logging"
)

// JobSource feeds the pool. Satisfied by Queue.
type JobSource interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*Job, error)
}

// JobProcessor runs one job. Satisfied by Processor.
type JobProcessor interface {
	Process(ctx context.Context, job Job) error
}

const dequeueTimeout = 5 * time.Second

// Pool runs a fixed set of workers draining the job queue. Each worker
// blocks on the queue with a short timeout so shutdown is bounded by one
// dequeue cycle.
type Pool struct {
	source    JobSource
	processor JobProcessor
	workers   int

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewPool(source JobSource, processor JobProcessor, workers int) *Pool {
	if workers <= 0 {
		workers = 4
	}
	return &Pool{source: source, processor: processor, workers: workers}
}

func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
	logging.L().WithField("workers", p.workers).Info("dispatch pool started")
}

func (p *Pool) run(ctx context.Context, id int) {
	defer p.wg.Done()
	log := logging.L().WithField("worker", id)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := p.source.Dequeue(ctx, dequeueTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.WithError(err).Warn("dequeue failed, backing off")
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		if job == nil {
			continue
		}

		if err := p.processor.Process(ctx, *job); err != nil {
			log.WithError(err).WithField("user_id", job.UserID).Error("background build failed")
		}
	}
}

// Stop signals the workers and waits for them to drain.
func (p *Pool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	logging.L().Info("dispatch pool stopped")
}
