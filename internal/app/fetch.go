package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"crypto-screener/internal/snapshot"
	"crypto-screener/internal/storage"
)

var errAnotherRunActive = errors.New("another ingestion run holds the advisory lock")

// FetchResult summarises one ingestion run.
type FetchResult struct {
	Asset storage.Asset
	Bars  int
}

// Fetch pulls a historical price series from the configured source and
// persists it. With OutPath set the raw series is additionally written as a
// JSON snapshot; with NoDB set the database is skipped entirely.
func (a *App) Fetch(ctx context.Context, opts FetchOptions) (*FetchResult, error) {
	if opts.NoDB && opts.OutPath == "" {
		return nil, errors.New("nothing to do: --no-db without --out discards the fetched data")
	}
	if !opts.NoDB {
		// Credential problems must surface before any network work.
		if err := a.Config.RequireDSN(); err != nil {
			return nil, err
		}
	}

	bars, symbol, name, err := a.fetchBars(ctx, opts)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("source %s returned no price data", opts.Source)
	}

	result := &FetchResult{Bars: len(bars)}

	if !opts.NoDB {
		store, closer, err := a.openStore(ctx)
		if err != nil {
			return nil, err
		}
		defer closer()

		unlock, err := a.lockIngestion(ctx, store)
		if err != nil {
			return nil, err
		}
		defer unlock()

		asset, err := store.ResolveAsset(ctx, symbol, name, opts.Source)
		if err != nil {
			return nil, err
		}
		if err := store.UpsertPriceBars(ctx, asset.ID, bars); err != nil {
			return nil, err
		}
		result.Asset = asset

		a.Logger.Info().
			Str("symbol", asset.Symbol).
			Str("source", opts.Source).
			Int("bars", len(bars)).
			Msg("price series persisted")
	}

	if opts.OutPath != "" {
		if err := snapshot.Write(opts.OutPath, storageBarsToRecords(bars)); err != nil {
			return nil, err
		}
		a.Logger.Info().Str("path", opts.OutPath).Int("bars", len(bars)).Msg("snapshot written")
	}

	return result, nil
}

func (a *App) fetchBars(ctx context.Context, opts FetchOptions) ([]storage.PriceBar, string, string, error) {
	switch opts.Source {
	case storage.SourceCoinGecko:
		if opts.CoinID == "" {
			return nil, "", "", errors.New("--coin-id is required for the coingecko source")
		}
		symbol := opts.Symbol
		if symbol == "" {
			symbol = strings.ToUpper(opts.CoinID)
		}
		bars, err := a.newCoinGecko().FetchMarketChart(ctx, opts.CoinID, opts.Days)
		if err != nil {
			return nil, "", "", err
		}
		return bars, symbol, opts.CoinID, nil

	case storage.SourceBinance:
		if opts.Symbol == "" {
			return nil, "", "", errors.New("--symbol is required for the binance source")
		}
		symbol := strings.ToUpper(opts.Symbol)
		bars, err := a.newBinance().FetchKlines(ctx, symbol, opts.Interval, opts.From, opts.To, opts.Limit)
		if err != nil {
			return nil, "", "", err
		}
		return bars, symbol, symbol, nil

	default:
		return nil, "", "", fmt.Errorf("unknown source %q: must be %s or %s", opts.Source, storage.SourceCoinGecko, storage.SourceBinance)
	}
}
