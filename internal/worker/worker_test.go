package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkerPool_RunsSubmittedTasks(t *testing.T) {
	wp := NewWorkerPool(3)

	var ran atomic.Int32
	for range 10 {
		ok := wp.Submit(func(ctx context.Context) error {
			ran.Add(1)
			return nil
		})
		assert.True(t, ok)
	}

	wp.Shutdown()
	assert.Equal(t, int32(10), ran.Load())
}

func TestWorkerPool_FailingTaskDoesNotStopWorker(t *testing.T) {
	wp := NewWorkerPool(1)

	var ran atomic.Int32
	wp.Submit(func(ctx context.Context) error { return errors.New("redis down") })
	wp.Submit(func(ctx context.Context) error {
		ran.Add(1)
		return nil
	})

	wp.Shutdown()
	assert.Equal(t, int32(1), ran.Load())
}

func TestWorkerPool_SubmitAfterShutdown(t *testing.T) {
	wp := NewWorkerPool(1)
	wp.Shutdown()

	ok := wp.Submit(func(ctx context.Context) error { return nil })
	assert.False(t, ok)

	// second shutdown is a no-op
	wp.Shutdown()
}

func TestWorkerPool_TaskGetsDeadline(t *testing.T) {
	wp := NewWorkerPool(1)

	var hasDeadline atomic.Bool
	wp.Submit(func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		hasDeadline.Store(ok)
		return nil
	})

	wp.Shutdown()
	assert.True(t, hasDeadline.Load())
}
