package candle

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextRefresh_MidCycle(t *testing.T) {
	// 10:02:13 -> 2m47s to the 10:05 boundary, plus the 30s settle delay.
	now := time.Date(2026, 8, 31, 10, 2, 13, 0, time.UTC)
	assert.Equal(t, 3*time.Minute+17*time.Second, NextRefresh(now))
}

func TestNextRefresh_OnBoundary(t *testing.T) {
	// Exactly on a boundary the next fire is a full cycle away.
	now := time.Date(2026, 8, 31, 10, 5, 0, 0, time.UTC)
	assert.Equal(t, Interval+SettleDelay, NextRefresh(now))
}

func TestNextRefresh_PhaseLocked(t *testing.T) {
	// From any start, now+wait always lands on a boundary plus settle delay,
	// including the recomputation right after a fire.
	now := time.Date(2026, 8, 31, 10, 2, 13, 500_000_000, time.UTC)
	for i := 0; i < 5; i++ {
		wait := NextRefresh(now)
		fire := now.Add(wait)
		assert.Zero(t, fire.Add(-SettleDelay).UnixMilli()%Interval.Milliseconds(),
			"fire %d not phase-locked: %s", i, fire)
		now = fire
	}
}

func TestNextRefresh_NeverMoreThanOneCycleOut(t *testing.T) {
	for _, now := range []time.Time{
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC),
		time.Date(2026, 1, 1, 23, 59, 59, 0, time.UTC),
	} {
		wait := NextRefresh(now)
		assert.Greater(t, wait, SettleDelay)
		assert.LessOrEqual(t, wait, Interval+SettleDelay)
	}
}

func TestScheduler_StopCancelsPendingFire(t *testing.T) {
	var fires atomic.Int32
	s := NewScheduler(func(ctx context.Context) error {
		fires.Add(1)
		return nil
	})

	s.Start(context.Background())
	s.Stop()

	// The first fire is minutes away; stopping must leave nothing pending.
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, fires.Load())
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	s := NewScheduler(func(ctx context.Context) error { return nil })
	require.NotPanics(t, func() {
		s.Stop()
		s.Start(context.Background())
		s.Stop()
		s.Stop()
	})
}

func TestScheduler_RestartReplacesTimer(t *testing.T) {
	var fires atomic.Int32
	s := NewScheduler(func(ctx context.Context) error {
		fires.Add(1)
		return nil
	})

	ctx := context.Background()
	s.Start(ctx)
	s.Start(ctx) // must replace, not stack, the pending timer
	s.Stop()

	assert.Zero(t, fires.Load())
}
