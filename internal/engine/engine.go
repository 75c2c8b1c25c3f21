package engine

import (
	"context"
	"fmt"
	"time"

	"strength-tracker/internal/candle"
	"strength-tracker/internal/models"

	"github.com/sirupsen/logrus"
)

// Publisher delivers a finished snapshot payload to the store.
type Publisher interface {
	PublishSnapshot(payload models.Payload) (uint, error)
}

// Engine samples the rate source on every 5-minute candle close and
// publishes one strength snapshot per cycle.
type Engine struct {
	source    RateSource
	publisher Publisher
	tz        *time.Location
	logger    *logrus.Entry
	now       func() time.Time
}

// MarketTimezone anchors snapshot labels and the daily reference close.
// The original operation runs on New York time, expressed as a fixed UTC-5
// offset so daylight-saving shifts never move the session anchor.
var MarketTimezone = time.FixedZone("UTC-5", -5*60*60)

func New(source RateSource, publisher Publisher) *Engine {
	return &Engine{
		source:    source,
		publisher: publisher,
		tz:        MarketTimezone,
		logger:    logrus.WithField("component", "strength-engine"),
		now:       time.Now,
	}
}

// BuildPayload computes all three timeframes for the full pair matrix.
// Pairs whose rates cannot be fetched are skipped; the aggregation tolerates
// gaps the same way the store tolerates malformed rows.
func (e *Engine) BuildPayload() (models.Payload, error) {
	now := e.now().In(e.tz)
	payload := models.Payload{
		Metadata: models.Metadata{
			LastUpdate:    now.Format("15:04:05"),
			TimestampFull: now.Format("2006-01-02 15:04:05"),
		},
	}

	for _, tf := range models.Timeframes {
		changes := e.collectChanges(tf)
		if len(changes) == 0 {
			return models.Payload{}, fmt.Errorf("no pair data for timeframe %s", tf)
		}
		strength, scores := Compute(changes)
		setup := Setup(strength)

		switch tf {
		case "h1":
			payload.Series.H1, payload.Scores.H1 = strength, scores
			payload.Setups.Setup1h = setup
		case "h4":
			payload.Series.H4, payload.Scores.H4 = strength, scores
			payload.Setups.Setup4h = setup
		case "daily":
			payload.Series.Daily, payload.Scores.Daily = strength, scores
			payload.Setups.SetupDaily = setup
		}
	}
	return payload, nil
}

func (e *Engine) collectChanges(timeframe string) map[string]float64 {
	changes := make(map[string]float64)
	for _, base := range models.Currencies {
		for _, quote := range models.Currencies {
			if base == quote {
				continue
			}
			change, err := e.source.Change(base, quote, timeframe)
			if err != nil {
				e.logger.WithError(err).WithField("pair", base+quote).Debug("skipping pair")
				continue
			}
			changes[base+quote] = change
		}
	}
	return changes
}

// Run publishes one snapshot per wall-clock 5-minute boundary until the
// context is cancelled. A failed cycle is logged and the engine waits for
// the next boundary.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("strength engine started")
	for {
		wait := untilNextBoundary(e.now())
		select {
		case <-ctx.Done():
			e.logger.Info("strength engine stopped")
			return ctx.Err()
		case <-time.After(wait):
		}

		if err := e.cycle(); err != nil {
			e.logger.WithError(err).Warn("snapshot cycle failed")
		}
	}
}

func (e *Engine) cycle() error {
	started := e.now()
	payload, err := e.BuildPayload()
	if err != nil {
		return err
	}
	id, err := e.publisher.PublishSnapshot(payload)
	if err != nil {
		return err
	}
	e.logger.WithFields(logrus.Fields{
		"snapshot_id": id,
		"duration":    time.Since(started),
	}).Info("snapshot published")
	return nil
}

// untilNextBoundary is the engine-side alignment: straight to the candle
// close, without the client settle delay (the engine is what the delay
// waits for).
func untilNextBoundary(now time.Time) time.Duration {
	return candle.Interval - time.Duration(now.UnixMilli()%candle.Interval.Milliseconds())*time.Millisecond
}
