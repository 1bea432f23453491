package workerpool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitRunsJobs(t *testing.T) {
	pool := New(4, 8)
	defer pool.Close()

	var count int64
	var wg sync.WaitGroup
	wg.Add(10)

	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		err := pool.Submit(context.Background(), func() error {
			atomic.AddInt64(&count, 1)
			wg.Done()
			return nil
		}, results)
		require.NoError(t, err)
	}

	wg.Wait()
	assert.EqualValues(t, 10, atomic.LoadInt64(&count))
	for i := 0; i < 10; i++ {
		assert.NoError(t, <-results)
	}
}

func TestSubmitRespectsCancellation(t *testing.T) {
	pool := New(1, 0)
	defer pool.Close()

	block := make(chan struct{})
	blocked := make(chan error, 1)
	require.NoError(t, pool.Submit(context.Background(), func() error {
		<-block
		return nil
	}, blocked))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := pool.Submit(ctx, func() error { return nil }, make(chan error, 1))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(block)
	<-blocked
}

func TestPanickingJobDoesNotKillWorker(t *testing.T) {
	pool := New(1, 2)
	defer pool.Close()

	panicResult := make(chan error, 1)
	require.NoError(t, pool.Submit(context.Background(), func() error {
		panic("boom")
	}, panicResult))

	err := <-panicResult
	assert.Error(t, err)

	var ran bool
	var wg sync.WaitGroup
	wg.Add(1)
	require.NoError(t, pool.Submit(context.Background(), func() error {
		ran = true
		wg.Done()
		return nil
	}, make(chan error, 1)))

	wg.Wait()
	assert.True(t, ran)
}
