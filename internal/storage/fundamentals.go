package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

const (
	upsertFundamentalsSQL = `INSERT INTO asset_fundamentals (
        asset_id,
        description,
        categories,
        homepage_url,
        social_links,
        market_cap_usd,
        circulating_supply,
        total_supply,
        max_supply,
        last_updated_api,
        fetched_at
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11
    )
    ON CONFLICT (asset_id) DO UPDATE
    SET
        description        = EXCLUDED.description,
        categories         = EXCLUDED.categories,
        homepage_url       = EXCLUDED.homepage_url,
        social_links       = EXCLUDED.social_links,
        market_cap_usd     = EXCLUDED.market_cap_usd,
        circulating_supply = EXCLUDED.circulating_supply,
        total_supply       = EXCLUDED.total_supply,
        max_supply         = EXCLUDED.max_supply,
        last_updated_api   = EXCLUDED.last_updated_api,
        fetched_at         = EXCLUDED.fetched_at;`

	selectFundamentalsSQL = `SELECT
        asset_id,
        description,
        categories,
        homepage_url,
        social_links,
        market_cap_usd,
        circulating_supply,
        total_supply,
        max_supply,
        last_updated_api,
        fetched_at
    FROM asset_fundamentals
    WHERE asset_id = $1;`
)

// FundamentalsStore defines latest-wins fundamentals persistence.
type FundamentalsStore interface {
	UpsertFundamentals(ctx context.Context, snapshot FundamentalSnapshot) error
	GetFundamentals(ctx context.Context, assetID int64) (FundamentalSnapshot, error)
}

// UpsertFundamentals overwrites the fundamentals row for an asset.
func (s *Store) UpsertFundamentals(ctx context.Context, snapshot FundamentalSnapshot) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	links := snapshot.SocialLinks
	if len(links) == 0 {
		links = json.RawMessage("{}")
	}

	fetchedAt := snapshot.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}

	_, execErr := pool.Exec(ctx, upsertFundamentalsSQL,
		snapshot.AssetID,
		snapshot.Description,
		snapshot.Categories,
		snapshot.HomepageURL,
		[]byte(links),
		nullDecimalArg(snapshot.MarketCapUSD),
		nullDecimalArg(snapshot.CirculatingSupply),
		nullDecimalArg(snapshot.TotalSupply),
		nullDecimalArg(snapshot.MaxSupply),
		snapshot.LastUpdatedAPI,
		fetchedAt,
	)
	if execErr != nil {
		return fmt.Errorf("upsert fundamentals: %w", execErr)
	}
	return nil
}

// GetFundamentals loads the latest snapshot for an asset.
func (s *Store) GetFundamentals(ctx context.Context, assetID int64) (FundamentalSnapshot, error) {
	pool, err := s.getPool()
	if err != nil {
		return FundamentalSnapshot{}, err
	}

	var (
		snapshot       FundamentalSnapshot
		marketCap      sql.NullString
		circulating    sql.NullString
		total          sql.NullString
		maxSupply      sql.NullString
		lastUpdatedAPI sql.NullTime
	)

	row := pool.QueryRow(ctx, selectFundamentalsSQL, assetID)
	if err := row.Scan(
		&snapshot.AssetID,
		&snapshot.Description,
		&snapshot.Categories,
		&snapshot.HomepageURL,
		&snapshot.SocialLinks,
		&marketCap,
		&circulating,
		&total,
		&maxSupply,
		&lastUpdatedAPI,
		&snapshot.FetchedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return FundamentalSnapshot{}, ErrAssetNotFound
		}
		return FundamentalSnapshot{}, fmt.Errorf("get fundamentals: %w", err)
	}

	if snapshot.MarketCapUSD, err = parseNullDecimal(marketCap); err != nil {
		return FundamentalSnapshot{}, fmt.Errorf("parse market cap: %w", err)
	}
	if snapshot.CirculatingSupply, err = parseNullDecimal(circulating); err != nil {
		return FundamentalSnapshot{}, fmt.Errorf("parse circulating supply: %w", err)
	}
	if snapshot.TotalSupply, err = parseNullDecimal(total); err != nil {
		return FundamentalSnapshot{}, fmt.Errorf("parse total supply: %w", err)
	}
	if snapshot.MaxSupply, err = parseNullDecimal(maxSupply); err != nil {
		return FundamentalSnapshot{}, fmt.Errorf("parse max supply: %w", err)
	}
	if lastUpdatedAPI.Valid {
		ts := lastUpdatedAPI.Time
		snapshot.LastUpdatedAPI = &ts
	}

	return snapshot, nil
}
