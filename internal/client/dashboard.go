package client

import (
	"context"
	"fmt"
	"sync"

	"strength-tracker/internal/candle"
	"strength-tracker/internal/models"

	"github.com/sirupsen/logrus"
)

// Session is one user's dashboard: it tracks the active view and history
// period, refreshes on the candle cadence, and refuses fetches for views
// outside the user's visible set.
type Session struct {
	client  *Client
	profile models.Profile
	visible []string

	scheduler *candle.Scheduler

	mu           sync.Mutex
	view         string
	period       string
	live         models.Payload
	history      []models.HistoryEntry
	liveStale    bool
	historyStale bool

	// OnUpdate, when set, is invoked after every completed refresh.
	OnUpdate func()
}

// NewSession builds a session for the authenticated profile. The default
// active view is the first visible one.
func NewSession(client *Client, profile models.Profile) (*Session, error) {
	visible := VisibleViews(profile)
	if len(visible) == 0 {
		return nil, fmt.Errorf("user %s has no viewable presentations", profile.Username)
	}
	session := &Session{
		client:  client,
		profile: profile,
		visible: visible,
		view:    visible[0],
		period:  "week",
		live:    models.EmptyPayload(),
	}
	session.scheduler = candle.NewScheduler(session.refresh)
	return session, nil
}

// Start fetches immediately and then phase-locks refreshes to candle
// boundaries.
func (s *Session) Start(ctx context.Context) {
	if err := s.refresh(ctx); err != nil {
		logrus.WithError(err).Warn("initial fetch failed, waiting for next cycle")
	}
	s.scheduler.Start(ctx)
}

// Close cancels the pending refresh timer.
func (s *Session) Close() {
	s.scheduler.Stop()
}

// VisibleViews returns the views this session may open.
func (s *Session) VisibleViews() []string {
	return append([]string(nil), s.visible...)
}

// ActiveView returns the currently selected view.
func (s *Session) ActiveView() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// SetView switches the active view, refusing views outside the visible set.
func (s *Session) SetView(view string) error {
	allowed := false
	for _, v := range s.visible {
		if v == view {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("view %q is not permitted for user %s", view, s.profile.Username)
	}
	s.mu.Lock()
	s.view = view
	s.mu.Unlock()
	return nil
}

// SetPeriod changes the history window and restarts the cycle so the stale
// timer for the old period never fires.
func (s *Session) SetPeriod(ctx context.Context, period string) error {
	if period != "week" && period != "month" {
		return fmt.Errorf("period must be week or month")
	}
	s.scheduler.Stop()
	s.mu.Lock()
	s.period = period
	s.mu.Unlock()
	s.Start(ctx)
	return nil
}

// Live returns the latest payload along with a staleness flag set when the
// most recent live fetch failed.
func (s *Session) Live() (models.Payload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live, s.liveStale
}

// History returns the latest fetched history window along with a staleness
// flag set when the most recent table fetch failed.
func (s *Session) History() ([]models.HistoryEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history, s.historyStale
}

// refresh performs one cycle: the live head always, the tabular history for
// every view that renders it. The terminal view consumes no table, so it
// skips the history call. The two fetches are independent: a failed table
// fetch never discards a successfully fetched live payload, and each part
// keeps its own staleness flag.
func (s *Session) refresh(ctx context.Context) error {
	s.mu.Lock()
	view, period := s.view, s.period
	s.mu.Unlock()

	live, liveErr := s.client.FetchLive()

	var history []models.HistoryEntry
	var historyErr error
	wantHistory := view != ViewTerminal
	if wantHistory {
		history, historyErr = s.client.FetchHistory(period)
	}

	s.mu.Lock()
	if liveErr == nil {
		s.live = live
	}
	s.liveStale = liveErr != nil
	if wantHistory {
		if historyErr == nil {
			s.history = history
		}
		s.historyStale = historyErr != nil
	}
	s.mu.Unlock()

	updated := liveErr == nil || (wantHistory && historyErr == nil)
	if updated && s.OnUpdate != nil {
		s.OnUpdate()
	}
	if liveErr != nil {
		return liveErr
	}
	return historyErr
}
