package indicator

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func closeOnlySeries(t *testing.T, n int) *Series {
	t.Helper()
	bars := make([]Bar, n)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		bars[i] = Bar{
			Time:   start.Add(time.Duration(i) * 24 * time.Hour),
			Open:   math.NaN(),
			High:   math.NaN(),
			Low:    math.NaN(),
			Close:  100 + float64(i%9),
			Volume: 0,
		}
	}
	series, err := NewSeries(bars)
	if err != nil {
		t.Fatalf("build series: %v", err)
	}
	return series
}

func TestComputeDegenerateInputPolicy(t *testing.T) {
	series := closeOnlySeries(t, 80)
	params := DefaultParams()

	frame := Compute(series, params, noopLogger())

	atr := frame.Column(ATRName(params.ATRWindow))
	vwap := frame.Column(NameVWAP)
	for i := range atr {
		if !math.IsNaN(atr[i]) {
			t.Fatalf("ATR must be undefined for all rows without real high/low (row %d)", i)
		}
		if !math.IsNaN(vwap[i]) {
			t.Fatalf("VWAP must be undefined for all rows without volume (row %d)", i)
		}
	}

	sma := frame.Column(SMAName(params.SMAWindow))
	rsi := frame.Column(RSIName(params.RSIWindow))
	macd := frame.Column(NameMACD)
	for i := params.MACDSlow; i < series.Len(); i++ {
		if math.IsNaN(sma[i]) || math.IsNaN(rsi[i]) || math.IsNaN(macd[i]) {
			t.Fatalf("moving-average indicators must stay defined past warm-up (row %d)", i)
		}
	}

	stochK := frame.Column(NameStochK)
	if math.IsNaN(stochK[params.StochWindow]) {
		t.Fatal("stochastic should still emit a value from degenerate inputs")
	}

	var flaggedStoch, flaggedATR, flaggedVWAP bool
	for _, w := range frame.Warnings {
		switch {
		case strings.Contains(w, "stochastic"):
			flaggedStoch = true
		case strings.Contains(w, "true range"):
			flaggedATR = true
		case strings.Contains(w, "VWAP"):
			flaggedVWAP = true
		}
	}
	if !flaggedStoch || !flaggedATR || !flaggedVWAP {
		t.Fatalf("degenerate inputs should be flagged, got warnings %v", frame.Warnings)
	}
}

func TestComputeShortSeriesNeverAborts(t *testing.T) {
	series := closeOnlySeries(t, 5)
	frame := Compute(series, DefaultParams(), noopLogger())

	if len(frame.Names) == 0 {
		t.Fatal("pipeline should still emit all columns for a short series")
	}
	for _, name := range frame.Names {
		col := frame.Column(name)
		if len(col) != series.Len() {
			t.Fatalf("column %s not aligned to input timestamps", name)
		}
		for i, v := range col {
			if !math.IsNaN(v) {
				t.Fatalf("column %s row %d should be undefined for a 5-row series", name, i)
			}
		}
	}
	if len(frame.Warnings) == 0 {
		t.Fatal("insufficient history should be reported as warnings")
	}
}

func TestRowsPreservesUndefinedAsNil(t *testing.T) {
	series := closeOnlySeries(t, 30)
	params := DefaultParams()
	frame := Compute(series, params, noopLogger())

	rows := frame.Rows()
	if len(rows) != series.Len()*len(frame.Names) {
		t.Fatalf("expected %d long-format rows, got %d", series.Len()*len(frame.Names), len(rows))
	}

	byKey := make(map[string]*float64)
	for _, row := range rows {
		byKey[row.Time.Format(time.RFC3339)+"|"+row.Name] = row.Value
	}

	smaName := SMAName(params.SMAWindow)
	early := series.Bars[0].Time.Format(time.RFC3339) + "|" + smaName
	if byKey[early] != nil {
		t.Fatal("warm-up rows must flatten to nil values")
	}
	late := series.Bars[25].Time.Format(time.RFC3339) + "|" + smaName
	if byKey[late] == nil {
		t.Fatal("defined rows must flatten to concrete values")
	}
	wide := frame.Column(smaName)[25]
	if *byKey[late] != wide {
		t.Fatalf("long-format value must match wide column: %f vs %f", *byKey[late], wide)
	}
}

func TestNewSeriesSortsAndFills(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := []Bar{
		{Time: base.Add(48 * time.Hour), Open: math.NaN(), High: math.NaN(), Low: math.NaN(), Close: 3},
		{Time: base, Open: math.NaN(), High: math.NaN(), Low: math.NaN(), Close: 1},
		{Time: base.Add(24 * time.Hour), Open: math.NaN(), High: math.NaN(), Low: math.NaN(), Close: 2},
	}
	series, err := NewSeries(bars)
	if err != nil {
		t.Fatalf("build series: %v", err)
	}
	for i := 0; i < 3; i++ {
		if series.Bars[i].Close != float64(i+1) {
			t.Fatalf("bars not sorted by time: %v", series.Bars)
		}
		if series.Bars[i].High != series.Bars[i].Close || series.Bars[i].Low != series.Bars[i].Close {
			t.Fatal("absent high/low should be filled from close")
		}
	}
	if series.HasTrueRange() {
		t.Fatal("filled series must be detected as degenerate")
	}
	if series.HasVolume() {
		t.Fatal("zero-volume series must not report volume")
	}
}

func TestNewSeriesRejectsMissingClose(t *testing.T) {
	bars := []Bar{{Time: time.Now(), Close: math.NaN()}}
	if _, err := NewSeries(bars); err == nil {
		t.Fatal("a bar without a close value must be rejected")
	}
}
