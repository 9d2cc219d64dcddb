package latency_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"storeroom/pkg/latency"
)

func TestWaitElapses(t *testing.T) {
	start := time.Now()
	err := latency.New(20 * time.Millisecond).Wait(context.Background())
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestZeroDelayReturnsImmediately(t *testing.T) {
	var s latency.Simulator
	assert.NoError(t, s.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Wait(ctx), context.Canceled)
}

func TestWaitIsCancellable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)

	start := time.Now()
	err := latency.New(time.Minute).Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 5*time.Second)
}
