package indicator

import (
	"errors"
	"math"
)

var ErrInvalidPeriod = errors.New("period must be positive")

// RSISeries computes the Relative Strength Index for each close using simple
// rolling means of gains and losses over the given window. Losses are kept as
// positive magnitudes.
//
// The result is aligned one-to-one with the input. The first value needs a
// full window of `period` deltas, so index `period` is the first defined
// entry; everything before is NaN. A window with zero losses saturates at 100.
func RSISeries(closes []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, ErrInvalidPeriod
	}

	rsi := make([]float64, len(closes))
	for i := range rsi {
		rsi[i] = math.NaN()
	}
	if len(closes) <= period {
		return rsi, nil
	}

	// Rolling sums over the trailing `period` deltas, maintained across a
	// single forward pass instead of recomputed per index.
	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	var gainSum, lossSum float64

	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
		gainSum += gains[i]
		lossSum += losses[i]
		if i > period {
			gainSum -= gains[i-period]
			lossSum -= losses[i-period]
		}
		if i < period {
			continue
		}

		avgGain := gainSum / float64(period)
		avgLoss := lossSum / float64(period)
		if avgLoss == 0 {
			rsi[i] = 100.0
			continue
		}
		rs := avgGain / avgLoss
		rsi[i] = 100.0 - 100.0/(1.0+rs)
	}
	return rsi, nil
}
