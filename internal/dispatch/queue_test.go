package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchpad-ai/launchpad-backend/internal/synthesis"
)

func newTestQueue(t *testing.T) (*Queue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewQueue(rdb), mr
}

func TestQueue_RoundTrip(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	job := Job{
		UserID:    "u1",
		UserEmail: "u1@example.com",
		Quiz:      synthesis.QuizAnswers{ValueProposition: "dog walking app"},
		Brief:     "the brief",
	}
	require.NoError(t, q.Enqueue(ctx, job))

	depth, err := q.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), depth)

	got, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, job, *got)
}

func TestQueue_FIFOOrder(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, Job{UserID: "first"}))
	require.NoError(t, q.Enqueue(ctx, Job{UserID: "second"}))

	a, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	b, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)

	assert.Equal(t, "first", a.UserID)
	assert.Equal(t, "second", b.UserID)
}

func TestQueue_EmptyReturnsNil(t *testing.T) {
	q, _ := newTestQueue(t)

	got, err := q.Dequeue(context.Background(), 20*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, got)
}
