package app

import (
	"context"
	"errors"
	"fmt"

	"crypto-screener/internal/indicator"
	"crypto-screener/internal/snapshot"
	"crypto-screener/internal/storage"
)

// AnalyzeResult summarises one indicator pipeline run.
type AnalyzeResult struct {
	Bars       int
	Indicators int
	Warnings   []string
}

// Analyze computes the indicator set over a stored or file-based price
// series. Results go to the indicator store, a wide JSON snapshot, or both.
func (a *App) Analyze(ctx context.Context, opts AnalyzeOptions) (*AnalyzeResult, error) {
	if opts.NoDB && opts.OutPath == "" {
		return nil, errors.New("nothing to do: --no-db without --out discards the computed indicators")
	}
	if opts.InputPath == "" && opts.Symbol == "" {
		return nil, errors.New("either --symbol or --input is required")
	}

	var store *storage.Store
	needStore := opts.InputPath == "" || !opts.NoDB
	if needStore {
		var closer func()
		var err error
		store, closer, err = a.openStore(ctx)
		if err != nil {
			return nil, err
		}
		defer closer()
	}

	series, err := a.loadSeries(ctx, store, opts)
	if err != nil {
		return nil, err
	}

	frame := indicator.Compute(series, a.indicatorParams(), a.Logger)
	result := &AnalyzeResult{
		Bars:       series.Len(),
		Indicators: len(frame.Names),
		Warnings:   frame.Warnings,
	}

	if !opts.NoDB {
		// Writing indicators requires a registered asset; file-only input
		// does not register one implicitly.
		asset, err := store.GetAsset(ctx, opts.Symbol)
		if err != nil {
			return nil, err
		}
		if err := store.UpsertIndicatorValues(ctx, asset.ID, frameToIndicatorRows(frame)); err != nil {
			return nil, err
		}
		a.Logger.Info().
			Str("symbol", asset.Symbol).
			Int("bars", series.Len()).
			Int("indicators", len(frame.Names)).
			Msg("indicator values persisted")
	}

	if opts.OutPath != "" {
		if err := snapshot.Write(opts.OutPath, frameToRecords(series, frame)); err != nil {
			return nil, err
		}
		a.Logger.Info().Str("path", opts.OutPath).Msg("analysis snapshot written")
	}

	return result, nil
}

func (a *App) loadSeries(ctx context.Context, store *storage.Store, opts AnalyzeOptions) (*indicator.Series, error) {
	if opts.InputPath != "" {
		records, err := snapshot.Load(opts.InputPath)
		if err != nil {
			return nil, err
		}
		return recordsToSeries(records)
	}

	asset, err := store.GetAsset(ctx, opts.Symbol)
	if err != nil {
		return nil, err
	}
	bars, err := store.LoadPriceBars(ctx, asset.ID, opts.From, opts.To, opts.Limit)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no stored price data for %s in the requested range", opts.Symbol)
	}
	return storageBarsToSeries(bars)
}
