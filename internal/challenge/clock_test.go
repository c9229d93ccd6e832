package challenge_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/xkilldash9x/tickbox/internal/challenge"
)

func TestRealClockSleepCompletes(t *testing.T) {
	clock := challenge.NewClock()

	start := time.Now()
	err := clock.Sleep(context.Background(), 20*time.Millisecond)
	elapsed := time.Since(start)

	assert.NoError(t, err)
	assert.GreaterOrEqual(t, elapsed, 20*time.Millisecond)
	// Generous ceiling to tolerate scheduler noise on loaded CI hosts.
	assert.Less(t, elapsed, 500*time.Millisecond)
}

func TestRealClockSleepHonorsCancellation(t *testing.T) {
	clock := challenge.NewClock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := clock.Sleep(ctx, 5*time.Second)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRealClockSleepZeroDuration(t *testing.T) {
	clock := challenge.NewClock()
	assert.NoError(t, clock.Sleep(context.Background(), 0))
}
