package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Currencies is the fixed symbol set tracked by the strength engine.
var Currencies = []string{"AUD", "CAD", "CHF", "EUR", "GBP", "JPY", "NZD", "USD"}

// Timeframes are the aggregation granularities of a snapshot.
var Timeframes = []string{"h1", "h4", "daily"}

// MarketSnapshot is one persisted strength observation. The payload is kept
// as an opaque JSON blob; ID ordering is the only reliable recency signal
// (captured_at may collide at second resolution).
type MarketSnapshot struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	CapturedAt time.Time `json:"captured_at" gorm:"index;autoCreateTime"`
	Payload    string    `json:"payload" gorm:"type:longtext;not null"`
}

func (MarketSnapshot) TableName() string { return "market_history" }

// Metadata labels the source tick of a snapshot.
type Metadata struct {
	LastUpdate    string `json:"last_update"`
	TimestampFull string `json:"timestamp_full"`
}

// Setups are free-text trade-signal annotations per timeframe.
type Setups struct {
	Setup1h    string `json:"setup_1h"`
	Setup4h    string `json:"setup_4h"`
	SetupDaily string `json:"setup_daily"`
}

// Buckets maps timeframe -> currency -> value.
type Buckets[T float64 | int] struct {
	H1    map[string]T `json:"h1"`
	H4    map[string]T `json:"h4"`
	Daily map[string]T `json:"daily"`
}

// ByTimeframe returns the bucket for one of h1/h4/daily.
func (b Buckets[T]) ByTimeframe(tf string) map[string]T {
	switch tf {
	case "h1":
		return b.H1
	case "h4":
		return b.H4
	case "daily":
		return b.Daily
	}
	return nil
}

// Payload is the snapshot body stored in market_history.
type Payload struct {
	Metadata Metadata         `json:"metadata"`
	Series   Buckets[float64] `json:"series"`
	Scores   Buckets[int]     `json:"scores"`
	Setups   Setups           `json:"setups"`
}

// WaitingLabel marks an empty store; clients render it as "no data yet".
const WaitingLabel = "WAITING"

// EmptyPayload is the well-defined fallback served while the store is empty.
func EmptyPayload() Payload {
	return Payload{
		Metadata: Metadata{LastUpdate: WaitingLabel},
		Series: Buckets[float64]{
			H1:    map[string]float64{},
			H4:    map[string]float64{},
			Daily: map[string]float64{},
		},
		Scores: Buckets[int]{
			H1:    map[string]int{},
			H4:    map[string]int{},
			Daily: map[string]int{},
		},
		Setups: Setups{Setup1h: "...", Setup4h: "...", SetupDaily: "..."},
	}
}

// Validate checks the series/scores key-set invariant per timeframe.
func (p Payload) Validate() error {
	for _, tf := range Timeframes {
		series := p.Series.ByTimeframe(tf)
		scores := p.Scores.ByTimeframe(tf)
		if len(series) != len(scores) {
			return fmt.Errorf("timeframe %s: series has %d symbols, scores has %d", tf, len(series), len(scores))
		}
		for symbol := range series {
			if _, ok := scores[symbol]; !ok {
				return fmt.Errorf("timeframe %s: symbol %s present in series but not in scores", tf, symbol)
			}
		}
	}
	return nil
}

// DecodePayload parses a stored blob back into a Payload.
func DecodePayload(blob string) (Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(blob), &p); err != nil {
		return Payload{}, fmt.Errorf("malformed snapshot payload: %w", err)
	}
	return p, nil
}

// HistoryEntry is one history row: the payload flattened to the top level
// with the store capture time alongside.
type HistoryEntry struct {
	Timestamp time.Time        `json:"timestamp"`
	Metadata  Metadata         `json:"metadata"`
	Series    Buckets[float64] `json:"series"`
	Scores    Buckets[int]     `json:"scores"`
	Setups    Setups           `json:"setups"`
}
