package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type channelSource struct {
	jobs chan Job
}

func (s *channelSource) Dequeue(ctx context.Context, timeout time.Duration) (*Job, error) {
	select {
	case job := <-s.jobs:
		return &job, nil
	case <-time.After(10 * time.Millisecond):
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type recordingProcessor struct {
	mu   sync.Mutex
	seen []string
}

func (p *recordingProcessor) Process(_ context.Context, job Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = append(p.seen, job.UserID)
	return nil
}

func (p *recordingProcessor) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.seen)
}

func TestPool_ProcessesQueuedJobs(t *testing.T) {
	source := &channelSource{jobs: make(chan Job, 10)}
	processor := &recordingProcessor{}
	pool := NewPool(source, processor, 3)

	pool.Start(context.Background())
	for i := 0; i < 5; i++ {
		source.jobs <- Job{UserID: "user"}
	}

	assert.Eventually(t, func() bool {
		return processor.count() == 5
	}, time.Second, 10*time.Millisecond)

	pool.Stop()
}

func TestPool_StopDrainsWorkers(t *testing.T) {
	source := &channelSource{jobs: make(chan Job)}
	pool := NewPool(source, &recordingProcessor{}, 2)

	pool.Start(context.Background())

	done := make(chan struct{})
	go func() {
		pool.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pool did not stop in time")
	}
}
