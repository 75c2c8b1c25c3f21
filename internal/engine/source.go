package engine

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Bars back from the newest 5-minute close per timeframe.
const (
	offsetH1 = 12
	offsetH4 = 48
)

// RateSource yields the percent change of a currency pair over a timeframe
// (one of h1, h4, daily).
type RateSource interface {
	Change(base, quote, timeframe string) (float64, error)
}

// candleSeries is the upstream response shape: parallel unix timestamps and
// 5-minute closes, oldest first.
type candleSeries struct {
	Times  []int64   `json:"t"`
	Closes []float64 `json:"c"`
}

// HTTPRateSource samples 5-minute candles from a quotes endpoint.
type HTTPRateSource struct {
	http *resty.Client
	tz   *time.Location
	now  func() time.Time
}

// NewHTTPRateSource builds a source against ratesURL. tz is the operational
// market timezone used to anchor the daily close.
func NewHTTPRateSource(ratesURL string, tz *time.Location) *HTTPRateSource {
	return &HTTPRateSource{
		http: resty.New().
			SetBaseURL(ratesURL).
			SetTimeout(20 * time.Second).
			SetRetryCount(2),
		tz:  tz,
		now: time.Now,
	}
}

func (s *HTTPRateSource) Change(base, quote, timeframe string) (float64, error) {
	var series candleSeries
	resp, err := s.http.R().
		SetQueryParam("pair", base+quote).
		SetQueryParam("interval", "5m").
		SetQueryParam("range", "5d").
		SetResult(&series).
		Get("/candles")
	if err != nil {
		return 0, fmt.Errorf("fetch candles for %s%s: %w", base, quote, err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("fetch candles for %s%s: status %d", base, quote, resp.StatusCode())
	}
	if len(series.Closes) < 50 || len(series.Closes) != len(series.Times) {
		return 0, fmt.Errorf("insufficient candle history for %s%s", base, quote)
	}

	current := series.Closes[len(series.Closes)-1]
	past, err := s.pastClose(series, timeframe)
	if err != nil {
		return 0, err
	}
	if past == 0 {
		return 0, fmt.Errorf("zero reference close for %s%s", base, quote)
	}
	return (current - past) / past * 100, nil
}

// pastClose picks the reference close: a fixed bar offset for the intraday
// timeframes, the close nearest the previous session end (17:00 market time,
// three days back on Mondays) for daily.
func (s *HTTPRateSource) pastClose(series candleSeries, timeframe string) (float64, error) {
	n := len(series.Closes)
	switch timeframe {
	case "h1", "h4":
		offset := offsetH1
		if timeframe == "h4" {
			offset = offsetH4
		}
		if n > offset+1 {
			return series.Closes[n-(offset+1)], nil
		}
		return series.Closes[0], nil

	case "daily":
		now := s.now().In(s.tz)
		daysBack := 1
		if now.Weekday() == time.Monday {
			daysBack = 3
		}
		target := time.Date(now.Year(), now.Month(), now.Day(), 17, 0, 0, 0, s.tz).
			AddDate(0, 0, -daysBack)
		idx := nearestIndex(series.Times, target.Unix())
		// A reference inside the newest bars means the target session is
		// missing; fall back to the oldest close.
		if idx >= n-10 {
			idx = 0
		}
		return series.Closes[idx], nil
	}
	return 0, fmt.Errorf("unknown timeframe %q", timeframe)
}

func nearestIndex(times []int64, target int64) int {
	best, bestDelta := 0, int64(-1)
	for i, ts := range times {
		delta := ts - target
		if delta < 0 {
			delta = -delta
		}
		if bestDelta < 0 || delta < bestDelta {
			best, bestDelta = i, delta
		}
	}
	return best
}
