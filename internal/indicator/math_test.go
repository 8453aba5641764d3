package indicator

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSMAWarmupAndValues(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = float64(i + 1)
	}

	out := SMA(closes, 20)
	for i := 0; i < 19; i++ {
		if !math.IsNaN(out[i]) {
			t.Fatalf("row %d should be undefined during warm-up, got %f", i, out[i])
		}
	}
	for i := 19; i < 60; i++ {
		var sum float64
		for j := i - 19; j <= i; j++ {
			sum += closes[j]
		}
		want := sum / 20.0
		if !almostEqual(out[i], want) {
			t.Fatalf("row %d: want %f, got %f", i, want, out[i])
		}
	}
}

func TestSMAShorterThanWindow(t *testing.T) {
	out := SMA([]float64{1, 2, 3}, 5)
	for i, v := range out {
		if !math.IsNaN(v) {
			t.Fatalf("row %d should be undefined for a series shorter than the window", i)
		}
	}
}

func TestEMASeededFromSMA(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5, 6}
	out := EMA(closes, 3)
	if !math.IsNaN(out[0]) || !math.IsNaN(out[1]) {
		t.Fatal("EMA should be undefined before the seed window")
	}
	if !almostEqual(out[2], 2.0) {
		t.Fatalf("EMA seed should equal SMA of first window, got %f", out[2])
	}
	// alpha = 0.5 for window 3
	if !almostEqual(out[3], 0.5*4+0.5*2.0) {
		t.Fatalf("unexpected EMA continuation: %f", out[3])
	}
}

func TestRSIMonotonicSeries(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = float64(i)
	}
	out := RSI(closes, 14)
	for i := 0; i < 14; i++ {
		if !math.IsNaN(out[i]) {
			t.Fatalf("RSI row %d should be undefined during warm-up", i)
		}
	}
	for i := 14; i < 30; i++ {
		if !almostEqual(out[i], 100.0) {
			t.Fatalf("strictly rising series should pin RSI at 100, got %f at row %d", out[i], i)
		}
	}
}

func TestRSIFlatSeries(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 42.0
	}
	out := RSI(closes, 14)
	if !almostEqual(out[14], 50.0) {
		t.Fatalf("flat series should yield neutral RSI, got %f", out[14])
	}
}

func TestMACDWarmup(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + math.Sin(float64(i)/5)*10
	}
	line, sig, hist := MACD(closes, 12, 26, 9)

	for i := 0; i < 25; i++ {
		if !math.IsNaN(line[i]) {
			t.Fatalf("MACD line row %d should be undefined", i)
		}
	}
	if math.IsNaN(line[25]) {
		t.Fatal("MACD line should be defined once the slow window is warm")
	}
	// Signal needs a further signal-window of MACD values.
	if !math.IsNaN(sig[25+7]) {
		t.Fatal("signal should still be warming up")
	}
	if math.IsNaN(sig[25+8]) || math.IsNaN(hist[25+8]) {
		t.Fatal("signal and histogram should be defined after full warm-up")
	}
	if !almostEqual(hist[40], line[40]-sig[40]) {
		t.Fatal("histogram must equal line minus signal")
	}
}

func TestStochasticFlatWindowPinsMidRange(t *testing.T) {
	n := 20
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		highs[i], lows[i], closes[i] = 7, 7, 7
	}
	k, d := Stochastic(highs, lows, closes, 14, 3)
	if !almostEqual(k[13], 50.0) {
		t.Fatalf("flat window should pin %%K at 50, got %f", k[13])
	}
	if !almostEqual(d[15], 50.0) {
		t.Fatalf("%%D over flat %%K should be 50, got %f", d[15])
	}
}

func TestStochasticBounds(t *testing.T) {
	n := 30
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		closes[i] = 100 + float64(i%7)
		highs[i] = closes[i] + 2
		lows[i] = closes[i] - 2
	}
	k, _ := Stochastic(highs, lows, closes, 14, 3)
	for i := 13; i < n; i++ {
		if k[i] < 0 || k[i] > 100 {
			t.Fatalf("%%K out of bounds at row %d: %f", i, k[i])
		}
	}
}

func TestBollingerBandsBracketMiddle(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 50 + float64(i%5)
	}
	upper, middle, lower := Bollinger(closes, 20, 2.0)
	for i := 0; i < 19; i++ {
		if !math.IsNaN(upper[i]) || !math.IsNaN(middle[i]) || !math.IsNaN(lower[i]) {
			t.Fatalf("bands should be undefined during warm-up at row %d", i)
		}
	}
	for i := 19; i < 40; i++ {
		if !(lower[i] <= middle[i] && middle[i] <= upper[i]) {
			t.Fatalf("band ordering violated at row %d: %f %f %f", i, lower[i], middle[i], upper[i])
		}
	}
}

func TestATRConstantRange(t *testing.T) {
	n := 30
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		closes[i] = 100
		highs[i] = 101
		lows[i] = 99
	}
	out := ATR(highs, lows, closes, 14)
	for i := 0; i < 13; i++ {
		if !math.IsNaN(out[i]) {
			t.Fatalf("ATR row %d should be undefined during warm-up", i)
		}
	}
	for i := 13; i < n; i++ {
		if !almostEqual(out[i], 2.0) {
			t.Fatalf("constant 2-point range should yield ATR 2, got %f at row %d", out[i], i)
		}
	}
}

func TestVWAPConstantPrice(t *testing.T) {
	n := 10
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	volumes := make([]float64, n)
	for i := 0; i < n; i++ {
		highs[i], lows[i], closes[i] = 10, 10, 10
		volumes[i] = 100
	}
	out := VWAP(highs, lows, closes, volumes)
	for i := 0; i < n; i++ {
		if !almostEqual(out[i], 10.0) {
			t.Fatalf("constant price should yield VWAP 10, got %f at row %d", out[i], i)
		}
	}
}

func TestVWAPZeroVolumeRowsUndefined(t *testing.T) {
	highs := []float64{10, 10, 10}
	lows := []float64{10, 10, 10}
	closes := []float64{10, 10, 10}
	volumes := []float64{0, 0, 5}
	out := VWAP(highs, lows, closes, volumes)
	if !math.IsNaN(out[0]) || !math.IsNaN(out[1]) {
		t.Fatal("rows before any accumulated volume should be undefined")
	}
	if !almostEqual(out[2], 10.0) {
		t.Fatalf("first volume row should define VWAP, got %f", out[2])
	}
}

func TestIchimokuRequiresLongestSpan(t *testing.T) {
	n := 51
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		closes[i] = float64(100 + i)
		highs[i] = closes[i] + 1
		lows[i] = closes[i] - 1
	}
	lines := Ichimoku(highs, lows, closes, 9, 26, 52)
	for i := 0; i < n; i++ {
		if !math.IsNaN(lines.Tenkan[i]) || !math.IsNaN(lines.SenkouB[i]) {
			t.Fatalf("all lines must be undefined with fewer rows than the B-line span (row %d)", i)
		}
	}
}

func TestIchimokuDefinedPastLongestSpan(t *testing.T) {
	n := 90
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		closes[i] = float64(100 + i)
		highs[i] = closes[i] + 1
		lows[i] = closes[i] - 1
	}
	lines := Ichimoku(highs, lows, closes, 9, 26, 52)
	for i := 0; i < 51; i++ {
		if !math.IsNaN(lines.Kijun[i]) {
			t.Fatalf("kijun should be undefined before the B-line span at row %d", i)
		}
	}
	for i := 51; i < n; i++ {
		if math.IsNaN(lines.Tenkan[i]) || math.IsNaN(lines.Kijun[i]) || math.IsNaN(lines.SenkouA[i]) || math.IsNaN(lines.SenkouB[i]) {
			t.Fatalf("cloud lines should be defined at row %d", i)
		}
	}
	if math.IsNaN(lines.Chikou[51]) {
		t.Fatal("chikou should be defined where a shifted close exists")
	}
	if !math.IsNaN(lines.Chikou[n-1]) {
		t.Fatal("chikou must be undefined for the trailing rows")
	}
	if !almostEqual(lines.Chikou[51], closes[51+26]) {
		t.Fatalf("chikou should be the close shifted back by the kijun span, got %f", lines.Chikou[51])
	}
}
