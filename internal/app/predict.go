package app

import (
	"context"
	"errors"
	"fmt"

	"crypto-screener/internal/predict"
)

// Predict trains the autoregressive model on an asset's stored close series
// and forecasts the next close.
func (a *App) Predict(ctx context.Context, opts PredictOptions) (*predict.Result, error) {
	if opts.Symbol == "" {
		return nil, errors.New("--symbol is required")
	}

	store, closer, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer closer()

	asset, err := store.GetAsset(ctx, opts.Symbol)
	if err != nil {
		return nil, err
	}
	bars, err := store.LoadPriceBars(ctx, asset.ID, opts.From, opts.To, opts.Limit)
	if err != nil {
		return nil, err
	}

	params := predict.Params{
		Window:       a.Config.Predict.Window,
		Epochs:       a.Config.Predict.Epochs,
		LearningRate: a.Config.Predict.LearningRate,
		TrainSplit:   a.Config.Predict.TrainSplit,
	}
	if opts.Window > 0 {
		params.Window = opts.Window
	}
	if opts.Epochs > 0 {
		params.Epochs = opts.Epochs
	}
	if opts.Split > 0 {
		params.TrainSplit = opts.Split
	}

	if len(bars) <= params.Window {
		return nil, fmt.Errorf("need more than %d stored closes for %s, have %d", params.Window, opts.Symbol, len(bars))
	}

	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close.InexactFloat64()
	}

	result, err := predict.Run(closes, params, a.Logger)
	if err != nil {
		return nil, err
	}

	a.Logger.Info().
		Str("symbol", asset.Symbol).
		Int("train_windows", result.TrainWindows).
		Int("test_windows", result.TestWindows).
		Float64("test_rmse", result.TestRMSE).
		Float64("next_close", result.NextClose).
		Msg("prediction complete")

	return result, nil
}
