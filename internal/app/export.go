package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	chart "github.com/wcharczuk/go-chart/v2"

	"crypto-screener/internal/indicator"
	"crypto-screener/internal/storage"
)

// ExportResult summarises one export run.
type ExportResult struct {
	Points      int
	PNGPath     string
	CSVPath     string
	Downsampled bool
}

// Export renders a stored price series as CSV and/or a PNG chart with SMA
// and Bollinger overlays. Long series are downsampled to the configured
// point ceiling first.
func (a *App) Export(ctx context.Context, opts ExportOptions) (*ExportResult, error) {
	if opts.Symbol == "" {
		return nil, errors.New("--symbol is required")
	}
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return nil, errors.New("at least one of --csv or --png must be provided")
	}

	maxPoints := a.Config.ResolveMaxPoints(opts.MaxPoints)

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer closeStore()

	asset, err := store.GetAsset(ctx, opts.Symbol)
	if err != nil {
		return nil, err
	}
	bars, err := store.LoadPriceBars(ctx, asset.ID, opts.From, opts.To, 0)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no stored price data for %s in the requested range", opts.Symbol)
	}

	downsampled := len(bars) > maxPoints
	exported := downsampleBars(bars, maxPoints)
	a.Logger.Info().Int("total", len(bars)).Int("exported", len(exported)).Msg("exporting price bars")

	result := &ExportResult{Points: len(exported), Downsampled: downsampled}

	if opts.CSVPath != "" {
		if err := writeBarsCSV(opts.CSVPath, exported); err != nil {
			return nil, err
		}
		result.CSVPath = opts.CSVPath
	}

	if opts.PNGPath != "" {
		if err := a.writeBarsPNG(opts.PNGPath, asset.Symbol, exported); err != nil {
			return nil, err
		}
		result.PNGPath = opts.PNGPath
	}

	return result, nil
}

func downsampleBars(bars []storage.PriceBar, max int) []storage.PriceBar {
	if max <= 0 || len(bars) <= max {
		return bars
	}

	result := make([]storage.PriceBar, 0, max)
	step := float64(len(bars)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(bars) {
			idx = len(bars) - 1
		}
		result = append(result, bars[idx])
	}
	return result
}

func writeBarsCSV(path string, bars []storage.PriceBar) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"bucket_ts", "open", "high", "low", "close", "volume"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, bar := range bars {
		record := []string{
			bar.Time.UTC().Format(time.RFC3339),
			nullDecimalString(bar.Open),
			nullDecimalString(bar.High),
			nullDecimalString(bar.Low),
			bar.Close.String(),
			nullDecimalString(bar.Volume),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

// writeBarsPNG draws the close series with SMA and Bollinger band overlays.
// Overlay points are dropped during their warm-up window.
func (a *App) writeBarsPNG(path, symbol string, bars []storage.PriceBar) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	series, err := storageBarsToSeries(bars)
	if err != nil {
		return err
	}

	params := a.indicatorParams()
	closes := series.Closes()
	times := series.Times()
	sma := indicator.SMA(closes, params.SMAWindow)
	bbUpper, _, bbLower := indicator.Bollinger(closes, params.BollingerWindow, params.BollingerStdDevs)

	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name: fmt.Sprintf("%s close", symbol),
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    symbol,
				XValues: times,
				YValues: closes,
			},
			overlaySeries(indicator.SMAName(params.SMAWindow), times, sma),
			overlaySeries(indicator.NameBBUpper, times, bbUpper),
			overlaySeries(indicator.NameBBLower, times, bbLower),
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func overlaySeries(name string, times []time.Time, values []float64) chart.TimeSeries {
	xs := make([]time.Time, 0, len(values))
	ys := make([]float64, 0, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		xs = append(xs, times[i])
		ys = append(ys, v)
	}
	return chart.TimeSeries{
		Name:    name,
		XValues: xs,
		YValues: ys,
	}
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func nullDecimalString(v decimal.NullDecimal) string {
	if !v.Valid {
		return ""
	}
	return v.Decimal.String()
}
