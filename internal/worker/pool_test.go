package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	// Limiter buckets live in a go-cache whose janitor runs until finalized
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("github.com/patrickmn/go-cache.(*janitor).Run"))
}

type mockResult struct {
	err error
}

func (r *mockResult) GetError() error {
	return r.err
}

type mockJob struct {
	duration  time.Duration
	shouldErr bool
	executed  *int32
	running   *int32
	maxSeen   *int32
}

func (j *mockJob) Execute(ctx context.Context) Result {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if j.running != nil {
		cur := atomic.AddInt32(j.running, 1)
		defer atomic.AddInt32(j.running, -1)
		for {
			prev := atomic.LoadInt32(j.maxSeen)
			if cur <= prev || atomic.CompareAndSwapInt32(j.maxSeen, prev, cur) {
				break
			}
		}
	}
	if j.duration > 0 {
		select {
		case <-time.After(j.duration):
		case <-ctx.Done():
			return &mockResult{err: ctx.Err()}
		}
	}
	if j.shouldErr {
		return &mockResult{err: errors.New("job error")}
	}
	return &mockResult{}
}

func TestNewPool(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{5, 5},
		{0, 1},
		{-1, 1},
	}
	for _, tt := range tests {
		p := NewPool(context.Background(), tt.in)
		assert.Equal(t, tt.want, p.workers)
		p.Shutdown()
	}
}

func TestPool_Execution(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	var executed int32
	const count = 6
	for i := 0; i < count; i++ {
		require.NoError(t, pool.Submit(&mockJob{executed: &executed}))
	}

	results := pool.Wait()
	assert.Len(t, results, count)
	assert.Equal(t, int32(count), atomic.LoadInt32(&executed))
}

func TestPool_BoundedConcurrency(t *testing.T) {
	const workers = 4
	pool := NewPool(context.Background(), workers)
	pool.Start()

	done := make(chan int)
	go func() {
		n := 0
		for range pool.Results() {
			n++
		}
		done <- n
	}()

	var running, maxSeen int32
	const total = 40
	for i := 0; i < total; i++ {
		require.NoError(t, pool.Submit(&mockJob{
			duration: 5 * time.Millisecond,
			running:  &running,
			maxSeen:  &maxSeen,
		}))
	}
	pool.Close()

	assert.Equal(t, total, <-done)
	assert.LessOrEqual(t, atomic.LoadInt32(&maxSeen), int32(workers))
	assert.Greater(t, atomic.LoadInt32(&maxSeen), int32(1))
}

func TestPool_ErrorHandling(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	require.NoError(t, pool.Submit(&mockJob{shouldErr: true}))
	require.NoError(t, pool.Submit(&mockJob{}))

	var errs int
	for _, r := range pool.Wait() {
		if r.GetError() != nil {
			errs++
		}
	}
	assert.Equal(t, 1, errs)
}

func TestPool_SubmitAfterClose(t *testing.T) {
	pool := NewPool(context.Background(), 1)
	pool.Start()
	pool.Wait()

	assert.ErrorIs(t, pool.Submit(&mockJob{}), ErrPoolClosed)
}

func TestPool_ParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool(ctx, 1)
	pool.Start()

	require.NoError(t, pool.Submit(&mockJob{duration: time.Minute}))
	cancel()

	assert.ErrorIs(t, pool.Submit(&mockJob{}), context.Canceled)
	pool.Shutdown()
}

func TestPool_Shutdown(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	require.NoError(t, pool.Submit(&mockJob{duration: time.Minute}))

	finished := make(chan struct{})
	go func() {
		pool.Shutdown()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown did not return")
	}
}
