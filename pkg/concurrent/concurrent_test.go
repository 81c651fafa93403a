package concurrent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func blockUntilDone(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func TestSupervise_FirstReturnStopsOthers(t *testing.T) {
	var stopped atomic.Int32
	waiter := func(ctx context.Context) error {
		<-ctx.Done()
		stopped.Add(1)
		return nil
	}
	quit := func(context.Context) error { return nil }

	done := make(chan error, 1)
	go func() { done <- Supervise(context.Background(), waiter, waiter, quit) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("supervise did not return")
	}
	assert.Equal(t, int32(2), stopped.Load())
}

func TestSupervise_ReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	err := Supervise(context.Background(), blockUntilDone, func(context.Context) error { return boom }, nil)
	assert.ErrorIs(t, err, boom)
}

func TestSupervise_ParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, Supervise(ctx, blockUntilDone, blockUntilDone))
}

func TestConcurrent(t *testing.T) {
	var sum atomic.Int64
	err := Concurrent([]int{1, 2, 3, 4}, func(v int) error {
		sum.Add(int64(v))
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(10), sum.Load())

	bad := errors.New("bad value")
	err = Concurrent([]int{1, 2, 3}, func(v int) error {
		if v == 2 {
			return bad
		}
		return nil
	})
	assert.ErrorIs(t, err, bad)
}
