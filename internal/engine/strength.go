// Package engine computes per-currency strength snapshots from pair price
// changes and publishes them on the 5-minute candle cadence.
package engine

import (
	"math"

	"strength-tracker/internal/models"
)

// Compute aggregates pair percent-changes into per-currency strength and
// momentum scores. changes is keyed by concatenated pair, e.g. "EURUSD".
//
// A currency's strength is the net of its pair changes spread over the 7
// possible counterparts; its score counts winning pairs minus losing ones.
// Currencies with no data at all get 0/0 but stay present in the maps.
func Compute(changes map[string]float64) (map[string]float64, map[string]int) {
	strength := make(map[string]float64, len(models.Currencies))
	scores := make(map[string]int, len(models.Currencies))

	for _, ccy := range models.Currencies {
		var sumPos, sumNeg float64
		var wins, losses int
		seen := false

		for pair, change := range changes {
			if len(pair) != 6 {
				continue
			}
			switch ccy {
			case pair[:3]: // ccy is the base: a rising pair means strength
				seen = true
				sumPos += change
				if change > 0 {
					wins++
				} else if change < 0 {
					losses++
				}
			case pair[3:]: // ccy is the quote: a falling pair means strength
				seen = true
				sumNeg += change
				if change < 0 {
					wins++
				} else if change > 0 {
					losses++
				}
			}
		}

		if !seen {
			strength[ccy] = 0
			scores[ccy] = 0
			continue
		}
		strength[ccy] = round3((sumPos - sumNeg) / 7)
		scores[ccy] = wins - losses
	}
	return strength, scores
}

// Setup labels the timeframe with the strongest and weakest currency codes
// joined, e.g. "EURJPY". Ties resolve to the first currency in the fixed
// symbol order.
func Setup(strength map[string]float64) string {
	if len(strength) == 0 {
		return "..."
	}
	strongest, weakest := models.Currencies[0], models.Currencies[0]
	for _, ccy := range models.Currencies[1:] {
		if strength[ccy] > strength[strongest] {
			strongest = ccy
		}
		if strength[ccy] < strength[weakest] {
			weakest = ccy
		}
	}
	return strongest + weakest
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
