// Package candle aligns dashboard refreshes to the external 5-minute market
// candle clock. A refresh fires a fixed settle delay after each candle close
// so upstream data has time to land, regardless of when a session started.
package candle

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// Interval is the market candle period refreshes phase-lock to.
	Interval = 5 * time.Minute
	// SettleDelay is the grace period after a candle close before fetching.
	SettleDelay = 30 * time.Second
)

// NextRefresh computes how long to wait from now until the next refresh
// point: the upcoming 5-minute wall-clock boundary plus the settle delay.
func NextRefresh(now time.Time) time.Duration {
	sinceBoundary := time.Duration(now.UnixMilli()%Interval.Milliseconds()) * time.Millisecond
	return (Interval - sinceBoundary) + SettleDelay
}

// RefreshFunc performs one data refresh. Errors are logged and retried at
// the next cycle; they never abort the scheduler.
type RefreshFunc func(ctx context.Context) error

// Scheduler drives a RefreshFunc on the candle cadence. It keeps exactly one
// pending timer; a new cycle is armed only after the previous refresh
// returns, so no two refreshes for the same session overlap.
type Scheduler struct {
	refresh RefreshFunc
	logger  *logrus.Entry
	now     func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler creates a stopped scheduler around refresh.
func NewScheduler(refresh RefreshFunc) *Scheduler {
	return &Scheduler{
		refresh: refresh,
		logger:  logrus.WithField("component", "candle-scheduler"),
		now:     time.Now,
	}
}

// Start launches the timer loop. Any previously running loop is stopped
// first, so at most one pending fire exists per scheduler.
func (s *Scheduler) Start(ctx context.Context) {
	s.Stop()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	s.mu.Lock()
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go s.run(runCtx, done)
}

// Stop cancels the pending timer and waits for the loop to exit. Safe to
// call on a stopped scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(NextRefresh(s.now()))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			if err := s.refresh(ctx); err != nil {
				s.logger.WithError(err).Warn("refresh failed, retrying next cycle")
			}
			timer.Reset(NextRefresh(s.now()))
		}
	}
}
