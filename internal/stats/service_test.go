package stats

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCounter struct {
	n     int
	err   error
	calls int
}

func (s *stubCounter) Count(context.Context) (int, error) {
	s.calls++
	return s.n, s.err
}

type stubSweeper struct {
	removed map[string]int64
}

func (s *stubSweeper) DeleteByName(_ context.Context, name string) (int64, error) {
	return s.removed[name], nil
}

func newTestService(t *testing.T, counter *stubCounter, sweeper *stubSweeper) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewService(counter, sweeper, rdb), mr
}

func TestEmpireCount_AddsBaseline(t *testing.T) {
	counter := &stubCounter{n: 10}
	svc, _ := newTestService(t, counter, &stubSweeper{})

	n, err := svc.EmpireCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10+empireBaseline, n)
}

func TestEmpireCount_ServedFromCache(t *testing.T) {
	counter := &stubCounter{n: 10}
	svc, _ := newTestService(t, counter, &stubSweeper{})
	ctx := context.Background()

	_, err := svc.Refresh(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, counter.calls)

	counter.n = 999
	n, err := svc.EmpireCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10+empireBaseline, n, "cached value wins until refresh")
	assert.Equal(t, 1, counter.calls)
}

func TestEmpireCount_CacheExpiryRecomputes(t *testing.T) {
	counter := &stubCounter{n: 10}
	svc, mr := newTestService(t, counter, &stubSweeper{})
	ctx := context.Background()

	_, err := svc.Refresh(ctx)
	require.NoError(t, err)

	mr.FastForward(cacheTTL + 1)
	counter.n = 20

	n, err := svc.EmpireCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20+empireBaseline, n)
}

func TestRefresh_StoreFailure(t *testing.T) {
	svc, _ := newTestService(t, &stubCounter{err: errors.New("db down")}, &stubSweeper{})
	_, err := svc.EmpireCount(context.Background())
	assert.Error(t, err)
}

func TestCleanupJunk_SumsAllNames(t *testing.T) {
	sweeper := &stubSweeper{removed: map[string]int64{
		"Synthesis in Progress": 3,
		"Untitled Prototype":    2,
	}}
	svc, _ := newTestService(t, &stubCounter{}, sweeper)

	n, err := svc.CleanupJunk(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}
