package indicator

import (
	"math"
	"testing"
)

func TestEMA_SeededByFirstValue(t *testing.T) {
	// span 3 gives alpha = 0.5:
	//   ema[0] = 2
	//   ema[1] = 0.5*4 + 0.5*2 = 3
	//   ema[2] = 0.5*6 + 0.5*3 = 4.5
	got := ema([]float64{2, 4, 6}, 3)
	want := []float64{2, 3, 4.5}
	for i := range want {
		assertClose(t, "EMA(3)", got[i], want[i], 1e-9)
	}
}

func TestEMA_Empty(t *testing.T) {
	if got := ema(nil, 12); len(got) != 0 {
		t.Errorf("expected empty output, got len %d", len(got))
	}
}

func TestMACDSeries_HandComputedSmallSpans(t *testing.T) {
	// fast span 1 (alpha 1) tracks the input exactly; slow span 3 is the EMA
	// above, so the MACD line is closes - ema3 and with signal span 1 the
	// signal equals the line and the histogram is zero everywhere.
	closes := []float64{2, 4, 6}
	m, err := MACDSeries(closes, 1, 3, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantLine := []float64{0, 1, 1.5}
	for i := range wantLine {
		assertClose(t, "MACD line", m.Line[i], wantLine[i], 1e-9)
		assertClose(t, "MACD signal", m.Signal[i], wantLine[i], 1e-9)
		assertClose(t, "MACD hist", m.Histogram[i], 0, 1e-9)
	}
}

func TestMACDSeries_LengthsAndDefinedFromStart(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + math.Sin(float64(i)/5)*10
	}
	m, err := MACDSeries(closes, 12, 26, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Line) != len(closes) || len(m.Signal) != len(closes) || len(m.Histogram) != len(closes) {
		t.Fatalf("length mismatch: line=%d signal=%d hist=%d want %d",
			len(m.Line), len(m.Signal), len(m.Histogram), len(closes))
	}
	for i := range closes {
		if math.IsNaN(m.Line[i]) || math.IsNaN(m.Signal[i]) || math.IsNaN(m.Histogram[i]) {
			t.Fatalf("index %d: MACD values must be defined from the first entry", i)
		}
	}
	if m.ReliableFrom != 26+9-1 {
		t.Errorf("ReliableFrom: got %d, want %d", m.ReliableFrom, 26+9-1)
	}
}

func TestMACDSeries_HistogramIsLineMinusSignal(t *testing.T) {
	closes := []float64{10, 12, 11, 13, 15, 14, 16, 18, 17, 19}
	m, err := MACDSeries(closes, 3, 6, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range closes {
		assertClose(t, "histogram identity", m.Histogram[i], m.Line[i]-m.Signal[i], 1e-12)
	}
}

func TestMACDSeries_InvalidSpans(t *testing.T) {
	for _, spans := range [][3]int{{0, 26, 9}, {12, 0, 9}, {12, 26, 0}, {-1, 26, 9}} {
		if _, err := MACDSeries([]float64{1, 2}, spans[0], spans[1], spans[2]); err == nil {
			t.Errorf("spans %v: expected error", spans)
		}
	}
}
