package indicator

// MACD holds the three MACD-family series plus the index from which every
// component EMA has seen a full span of observations.
type MACD struct {
	Line         []float64
	Signal       []float64
	Histogram    []float64
	ReliableFrom int
}

// ema computes an exponential moving average with smoothing alpha = 2/(span+1),
// seeded with the first value and no bias adjustment. Early entries are defined
// but weighted heavily toward the seed; ReliableFrom on MACD tells callers how
// much warm-up the combined series needs.
func ema(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// MACDSeries computes the MACD line (fast EMA - slow EMA), its signal line
// (EMA of the MACD line) and the histogram (line - signal). All three series
// have the same length as the input and are defined from the first entry.
// Internal computation keeps full float precision; rounding happens only at
// presentation.
func MACDSeries(closes []float64, fastSpan, slowSpan, signalSpan int) (*MACD, error) {
	if fastSpan <= 0 || slowSpan <= 0 || signalSpan <= 0 {
		return nil, ErrInvalidPeriod
	}

	fast := ema(closes, fastSpan)
	slow := ema(closes, slowSpan)

	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = fast[i] - slow[i]
	}
	signal := ema(line, signalSpan)

	hist := make([]float64, len(closes))
	for i := range closes {
		hist[i] = line[i] - signal[i]
	}

	reliable := slowSpan + signalSpan - 1
	if reliable > len(closes) {
		reliable = len(closes)
	}
	return &MACD{Line: line, Signal: signal, Histogram: hist, ReliableFrom: reliable}, nil
}
