package app

import (
	"context"
	"errors"
	"time"

	"crypto-screener/internal/storage"
)

// FundamentalsResult summarises one fundamentals refresh.
type FundamentalsResult struct {
	Asset      storage.Asset
	Categories int
	HasCap     bool
}

// Fundamentals fetches descriptive and supply attributes for a coin and
// stores them latest-wins.
func (a *App) Fundamentals(ctx context.Context, opts FundamentalsOptions) (*FundamentalsResult, error) {
	if opts.CoinID == "" {
		return nil, errors.New("--coin-id is required")
	}
	if err := a.Config.RequireDSN(); err != nil {
		return nil, err
	}

	details, err := a.newCoinGecko().FetchCoinDetails(ctx, opts.CoinID)
	if err != nil {
		return nil, err
	}

	symbol := opts.Symbol
	if symbol == "" {
		symbol = details.Symbol
	}
	if symbol == "" {
		return nil, errors.New("provider returned no symbol; pass --symbol explicitly")
	}

	links, err := details.SocialLinksJSON()
	if err != nil {
		return nil, err
	}

	store, closer, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer closer()

	asset, err := store.ResolveAsset(ctx, symbol, details.Name, storage.SourceCoinGecko)
	if err != nil {
		return nil, err
	}

	snapshot := storage.FundamentalSnapshot{
		AssetID:           asset.ID,
		Description:       details.Description,
		Categories:        details.Categories,
		HomepageURL:       details.HomepageURL,
		SocialLinks:       links,
		MarketCapUSD:      details.MarketCapUSD,
		CirculatingSupply: details.CirculatingSupply,
		TotalSupply:       details.TotalSupply,
		MaxSupply:         details.MaxSupply,
		LastUpdatedAPI:    details.LastUpdated,
		FetchedAt:         time.Now().UTC(),
	}
	if err := store.UpsertFundamentals(ctx, snapshot); err != nil {
		return nil, err
	}

	a.Logger.Info().
		Str("symbol", asset.Symbol).
		Str("coin_id", opts.CoinID).
		Int("categories", len(details.Categories)).
		Msg("fundamentals persisted")

	return &FundamentalsResult{
		Asset:      asset,
		Categories: len(details.Categories),
		HasCap:     details.MarketCapUSD.Valid,
	}, nil
}
