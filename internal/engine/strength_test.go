package engine

import (
	"testing"

	"strength-tracker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	changes := map[string]float64{
		"EURUSD": 1.0,
		"EURJPY": 2.0,
		"USDJPY": 0.5,
	}
	strength, scores := Compute(changes)

	// Every tracked currency is present even without data.
	require.Len(t, strength, len(models.Currencies))
	require.Len(t, scores, len(models.Currencies))

	// EUR: base of two rising pairs -> (1.0+2.0)/7, two wins.
	assert.Equal(t, 0.429, strength["EUR"])
	assert.Equal(t, 2, scores["EUR"])

	// USD: one win as base (USDJPY up), one loss as quote (EURUSD up).
	assert.Equal(t, -0.071, strength["USD"])
	assert.Equal(t, 0, scores["USD"])

	// JPY: quote of two rising pairs -> pure weakness.
	assert.Equal(t, -0.357, strength["JPY"])
	assert.Equal(t, -2, scores["JPY"])

	// No data at all.
	assert.Equal(t, 0.0, strength["CHF"])
	assert.Equal(t, 0, scores["CHF"])
}

func TestCompute_NegativeChanges(t *testing.T) {
	strength, scores := Compute(map[string]float64{"GBPUSD": -0.7})

	assert.Equal(t, -0.1, strength["GBP"])
	assert.Equal(t, -1, scores["GBP"])
	assert.Equal(t, 0.1, strength["USD"])
	assert.Equal(t, 1, scores["USD"])
}

func TestSetup(t *testing.T) {
	strength := map[string]float64{
		"AUD": 0.1, "CAD": -0.2, "CHF": 0.0, "EUR": 0.9,
		"GBP": 0.3, "JPY": -0.8, "NZD": 0.2, "USD": -0.1,
	}
	assert.Equal(t, "EURJPY", Setup(strength))
}

func TestSetup_Empty(t *testing.T) {
	assert.Equal(t, "...", Setup(nil))
}

func TestSetup_TiesResolveInSymbolOrder(t *testing.T) {
	strength := map[string]float64{}
	for _, ccy := range models.Currencies {
		strength[ccy] = 0
	}
	// All equal: first symbol wins both slots, deterministically.
	assert.Equal(t, "AUDAUD", Setup(strength))
}

type stubSource struct {
	changes map[string]float64
}

func (s stubSource) Change(base, quote, timeframe string) (float64, error) {
	change, ok := s.changes[base+quote]
	if !ok {
		return 0, assert.AnError
	}
	return change, nil
}

type captivePublisher struct {
	payloads []models.Payload
}

func (p *captivePublisher) PublishSnapshot(payload models.Payload) (uint, error) {
	p.payloads = append(p.payloads, payload)
	return uint(len(p.payloads)), nil
}

func TestEngine_BuildPayload(t *testing.T) {
	source := stubSource{changes: map[string]float64{"EURUSD": 1.4, "GBPJPY": -0.6}}
	eng := New(source, &captivePublisher{})

	payload, err := eng.BuildPayload()
	require.NoError(t, err)

	require.NoError(t, payload.Validate())
	assert.Equal(t, 0.2, payload.Series.H1["EUR"])
	assert.Equal(t, "EURUSD", payload.Setups.Setup1h)
	assert.NotEmpty(t, payload.Metadata.LastUpdate)
	assert.NotEmpty(t, payload.Metadata.TimestampFull)

	// All timeframes share the same stub, so the buckets agree.
	assert.Equal(t, payload.Series.H1, payload.Series.Daily)
}

func TestEngine_BuildPayloadNoData(t *testing.T) {
	eng := New(stubSource{}, &captivePublisher{})
	_, err := eng.BuildPayload()
	assert.Error(t, err)
}
