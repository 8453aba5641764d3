package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const (
	selectAssetBySymbolSQL = `SELECT asset_id, symbol, name, source, created_at
    FROM assets
    WHERE symbol = $1;`

	insertAssetSQL = `INSERT INTO assets (symbol, name, source)
    VALUES ($1, $2, $3)
    ON CONFLICT (symbol) DO UPDATE
    SET name = COALESCE(NULLIF(EXCLUDED.name, ''), assets.name)
    RETURNING asset_id, symbol, name, source, created_at;`

	listAssetsSQL = `SELECT asset_id, symbol, name, source, created_at
    FROM assets
    ORDER BY symbol;`

	deleteAssetSQL = `DELETE FROM assets WHERE symbol = $1;`
)

// AssetRegistry resolves external identifiers to internal asset handles.
type AssetRegistry interface {
	ResolveAsset(ctx context.Context, symbol, name, source string) (Asset, error)
	GetAsset(ctx context.Context, symbol string) (Asset, error)
	ListAssets(ctx context.Context) ([]Asset, error)
	DeleteAsset(ctx context.Context, symbol string) error
}

// ResolveAsset returns the asset for a symbol, creating it on first sight.
// The display name is backfilled when a later fetch supplies one.
func (s *Store) ResolveAsset(ctx context.Context, symbol, name, source string) (Asset, error) {
	pool, err := s.getPool()
	if err != nil {
		return Asset{}, err
	}

	var asset Asset
	row := pool.QueryRow(ctx, insertAssetSQL, symbol, name, source)
	if err := row.Scan(&asset.ID, &asset.Symbol, &asset.Name, &asset.Source, &asset.CreatedAt); err != nil {
		return Asset{}, fmt.Errorf("resolve asset %q: %w", symbol, err)
	}
	return asset, nil
}

// GetAsset looks up an asset by symbol without creating it.
func (s *Store) GetAsset(ctx context.Context, symbol string) (Asset, error) {
	pool, err := s.getPool()
	if err != nil {
		return Asset{}, err
	}

	var asset Asset
	row := pool.QueryRow(ctx, selectAssetBySymbolSQL, symbol)
	if err := row.Scan(&asset.ID, &asset.Symbol, &asset.Name, &asset.Source, &asset.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Asset{}, ErrAssetNotFound
		}
		return Asset{}, fmt.Errorf("get asset %q: %w", symbol, err)
	}
	return asset, nil
}

// ListAssets returns the full registry ordered by symbol.
func (s *Store) ListAssets(ctx context.Context) ([]Asset, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listAssetsSQL)
	if queryErr != nil {
		return nil, fmt.Errorf("list assets: %w", queryErr)
	}
	defer rows.Close()

	assets := make([]Asset, 0)
	for rows.Next() {
		var asset Asset
		if err := rows.Scan(&asset.ID, &asset.Symbol, &asset.Name, &asset.Source, &asset.CreatedAt); err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return assets, nil
}

// DeleteAsset removes an asset; dependent price, indicator, and fundamentals
// rows are removed by the cascade constraints, and the symbol becomes
// available for reuse.
func (s *Store) DeleteAsset(ctx context.Context, symbol string) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	cmdTag, execErr := pool.Exec(ctx, deleteAssetSQL, symbol)
	if execErr != nil {
		return fmt.Errorf("delete asset %q: %w", symbol, execErr)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrAssetNotFound
	}
	return nil
}
