package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu   sync.Mutex
	seen []Job
}

func (r *recorder) handle(_ context.Context, job Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, job)
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

func TestQueueProcessesJobs(t *testing.T) {
	rec := &recorder{}
	q := NewQueue("test", rec.handle, QueueConfig{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(Job{ID: "job", Type: "noop"}))
	}

	require.Eventually(t, func() bool {
		return rec.count() == 5
	}, 2*time.Second, 10*time.Millisecond)
}

func TestQueueRejectsEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("test", func(context.Context, Job) error { return nil }, QueueConfig{})

	err := q.Enqueue(Job{ID: "early"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not running")
}

func TestQueueRetriesFailedJobs(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	handler := func(_ context.Context, _ Job) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	}

	q := NewQueue("test", handler, QueueConfig{Retries: 3, Backoff: time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "flaky"}))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return attempts == 3
	}, 2*time.Second, 5*time.Millisecond)
}

func TestQueueAbandonsAfterRetryBudget(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	handler := func(_ context.Context, _ Job) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		return errors.New("permanent")
	}

	q := NewQueue("test", handler, QueueConfig{Retries: 1, Backoff: time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "doomed"}))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return attempts == 2
	}, 2*time.Second, 5*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, 2, attempts, "no further attempts after the budget is spent")
	mu.Unlock()
}

func TestQueueStopIsIdempotent(t *testing.T) {
	q := NewQueue("test", func(context.Context, Job) error { return nil }, QueueConfig{})
	q.Start(context.Background())
	q.Stop()
	q.Stop()

	err := q.Enqueue(Job{ID: "late"})
	require.Error(t, err)
}
