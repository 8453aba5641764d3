package indicator

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
)

// Params tunes the indicator pipeline windows.
type Params struct {
	SMAWindow        int
	RSIWindow        int
	MACDFast         int
	MACDSlow         int
	MACDSignal       int
	StochWindow      int
	StochSmooth      int
	BollingerWindow  int
	BollingerStdDevs float64
	ATRWindow        int
	IchimokuTenkan   int
	IchimokuKijun    int
	IchimokuSenkouB  int
}

// DefaultParams mirror the conventional window choices.
func DefaultParams() Params {
	return Params{
		SMAWindow:        20,
		RSIWindow:        14,
		MACDFast:         12,
		MACDSlow:         26,
		MACDSignal:       9,
		StochWindow:      14,
		StochSmooth:      3,
		BollingerWindow:  20,
		BollingerStdDevs: 2.0,
		ATRWindow:        14,
		IchimokuTenkan:   9,
		IchimokuKijun:    26,
		IchimokuSenkouB:  52,
	}
}

// Fixed indicator names; windowed names are derived per run.
const (
	NameMACD            = "MACD"
	NameMACDSignal      = "MACD_SIGNAL"
	NameMACDHist        = "MACD_HIST"
	NameStochK          = "STOCH_K"
	NameStochD          = "STOCH_D"
	NameBBUpper         = "BB_UPPER"
	NameBBMiddle        = "BB_MIDDLE"
	NameBBLower         = "BB_LOWER"
	NameVWAP            = "VWAP"
	NameIchimokuTenkan  = "ICHIMOKU_TENKAN"
	NameIchimokuKijun   = "ICHIMOKU_KIJUN"
	NameIchimokuSenkouA = "ICHIMOKU_SENKOU_A"
	NameIchimokuSenkouB = "ICHIMOKU_SENKOU_B"
	NameIchimokuChikou  = "ICHIMOKU_CHIKOU"
)

// SMAName derives the long-format name for the SMA column.
func SMAName(window int) string { return fmt.Sprintf("SMA_%d", window) }

// RSIName derives the long-format name for the RSI column.
func RSIName(window int) string { return fmt.Sprintf("RSI_%d", window) }

// ATRName derives the long-format name for the ATR column.
func ATRName(window int) string { return fmt.Sprintf("ATR_%d", window) }

// Frame is the wide result of a pipeline run: one column per indicator,
// aligned to the input timestamps. NaN marks undefined values.
type Frame struct {
	Times    []time.Time
	Names    []string
	Columns  map[string][]float64
	Warnings []string
}

// Observation is one long-format row. Value is nil when undefined.
type Observation struct {
	Time  time.Time
	Name  string
	Value *float64
}

// Compute derives the full indicator set from a price series. Data-shape
// problems (missing volume, degenerate high/low, insufficient history)
// degrade the affected indicators to NaN and are reported as warnings; they
// never abort the run.
func Compute(series *Series, params Params, logger zerolog.Logger) *Frame {
	log := logger.With().Str("component", "indicator_pipeline").Logger()

	frame := &Frame{
		Times:   series.Times(),
		Columns: make(map[string][]float64),
	}
	warn := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		frame.Warnings = append(frame.Warnings, msg)
		log.Warn().Int("rows", series.Len()).Msg(msg)
	}

	closes := series.Closes()
	highs := series.Highs()
	lows := series.Lows()
	volumes := series.Volumes()
	n := series.Len()

	addColumn := func(name string, values []float64) {
		frame.Names = append(frame.Names, name)
		frame.Columns[name] = values
	}

	if n < params.SMAWindow {
		warn("insufficient history for %s: %d rows, %d required", SMAName(params.SMAWindow), n, params.SMAWindow)
	}
	addColumn(SMAName(params.SMAWindow), SMA(closes, params.SMAWindow))

	if n <= params.RSIWindow {
		warn("insufficient history for %s: %d rows, %d required", RSIName(params.RSIWindow), n, params.RSIWindow+1)
	}
	addColumn(RSIName(params.RSIWindow), RSI(closes, params.RSIWindow))

	if n < params.MACDSlow {
		warn("insufficient history for MACD: %d rows, %d required", n, params.MACDSlow)
	}
	macdLine, macdSignal, macdHist := MACD(closes, params.MACDFast, params.MACDSlow, params.MACDSignal)
	addColumn(NameMACD, macdLine)
	addColumn(NameMACDSignal, macdSignal)
	addColumn(NameMACDHist, macdHist)

	hasRange := series.HasTrueRange()
	if !hasRange {
		warn("high/low duplicate close for all rows; stochastic emitted from degenerate inputs and is unreliable")
	}
	stochK, stochD := Stochastic(highs, lows, closes, params.StochWindow, params.StochSmooth)
	addColumn(NameStochK, stochK)
	addColumn(NameStochD, stochD)

	bbUpper, bbMiddle, bbLower := Bollinger(closes, params.BollingerWindow, params.BollingerStdDevs)
	addColumn(NameBBUpper, bbUpper)
	addColumn(NameBBMiddle, bbMiddle)
	addColumn(NameBBLower, bbLower)

	if hasRange {
		addColumn(ATRName(params.ATRWindow), ATR(highs, lows, closes, params.ATRWindow))
	} else {
		warn("%s undefined: true range requires genuine high/low data", ATRName(params.ATRWindow))
		addColumn(ATRName(params.ATRWindow), nanSlice(n))
	}

	if series.HasVolume() {
		addColumn(NameVWAP, VWAP(highs, lows, closes, volumes))
	} else {
		warn("VWAP undefined: volume column is missing or zero throughout")
		addColumn(NameVWAP, nanSlice(n))
	}

	if n < params.IchimokuSenkouB {
		warn("insufficient history for ichimoku: %d rows, %d required", n, params.IchimokuSenkouB)
	}
	cloud := Ichimoku(highs, lows, closes, params.IchimokuTenkan, params.IchimokuKijun, params.IchimokuSenkouB)
	addColumn(NameIchimokuTenkan, cloud.Tenkan)
	addColumn(NameIchimokuKijun, cloud.Kijun)
	addColumn(NameIchimokuSenkouA, cloud.SenkouA)
	addColumn(NameIchimokuSenkouB, cloud.SenkouB)
	addColumn(NameIchimokuChikou, cloud.Chikou)

	log.Info().
		Int("rows", n).
		Int("indicators", len(frame.Names)).
		Int("warnings", len(frame.Warnings)).
		Msg("indicator pipeline complete")

	return frame
}

// Rows flattens the wide frame into long-format observations, preserving
// undefined values as nil.
func (f *Frame) Rows() []Observation {
	rows := make([]Observation, 0, len(f.Times)*len(f.Names))
	for i, ts := range f.Times {
		for _, name := range f.Names {
			value := f.Columns[name][i]
			obs := Observation{Time: ts, Name: name}
			if !math.IsNaN(value) {
				v := value
				obs.Value = &v
			}
			rows = append(rows, obs)
		}
	}
	return rows
}

// Column returns one indicator column by name, or nil when absent.
func (f *Frame) Column(name string) []float64 {
	return f.Columns[name]
}
