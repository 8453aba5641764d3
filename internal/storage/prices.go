package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const (
	upsertPriceBarSQL = `INSERT INTO price_bars (
        asset_id,
        bucket_ts,
        open,
        high,
        low,
        close,
        volume
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7
    )
    ON CONFLICT (asset_id, bucket_ts) DO UPDATE
    SET
        open   = EXCLUDED.open,
        high   = EXCLUDED.high,
        low    = EXCLUDED.low,
        close  = EXCLUDED.close,
        volume = EXCLUDED.volume;`

	listRecentPriceBarsSQL = `SELECT bucket_ts, open, high, low, close, volume
    FROM price_bars
    WHERE asset_id = $1
    ORDER BY bucket_ts DESC
    LIMIT $2;`

	countPriceBarsSQL = `SELECT COUNT(*) FROM price_bars WHERE asset_id = $1;`
)

// PriceStore defines operations for OHLCV persistence.
type PriceStore interface {
	UpsertPriceBars(ctx context.Context, assetID int64, bars []PriceBar) error
	LoadPriceBars(ctx context.Context, assetID int64, from, to *time.Time, limit int) ([]PriceBar, error)
	ListRecentPriceBars(ctx context.Context, assetID int64, limit int) ([]PriceBar, error)
	CountPriceBars(ctx context.Context, assetID int64) (int64, error)
}

// UpsertPriceBars persists a batch of price observations, idempotent on
// (asset_id, bucket_ts).
func (s *Store) UpsertPriceBars(ctx context.Context, assetID int64, bars []PriceBar) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if len(bars) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, bar := range bars {
		batch.Queue(upsertPriceBarSQL,
			assetID,
			bar.Time,
			nullDecimalArg(bar.Open),
			nullDecimalArg(bar.High),
			nullDecimalArg(bar.Low),
			bar.Close.String(),
			nullDecimalArg(bar.Volume),
		)
	}

	results := pool.SendBatch(ctx, batch)
	defer results.Close()
	for range bars {
		if _, execErr := results.Exec(); execErr != nil {
			return fmt.Errorf("upsert price bars: %w", execErr)
		}
	}
	return nil
}

// LoadPriceBars loads observations for an asset within an optional date
// range and/or row limit, ordered by time ascending.
func (s *Store) LoadPriceBars(ctx context.Context, assetID int64, from, to *time.Time, limit int) ([]PriceBar, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString(`SELECT bucket_ts, open, high, low, close, volume
    FROM price_bars
    WHERE asset_id = $1`)
	args := []any{assetID}

	if from != nil {
		args = append(args, *from)
		fmt.Fprintf(&sb, " AND bucket_ts >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		fmt.Fprintf(&sb, " AND bucket_ts < $%d", len(args))
	}
	sb.WriteString(" ORDER BY bucket_ts")
	if limit > 0 {
		args = append(args, limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}

	rows, queryErr := pool.Query(ctx, sb.String(), args...)
	if queryErr != nil {
		return nil, fmt.Errorf("load price bars: %w", queryErr)
	}
	defer rows.Close()

	return scanPriceBars(rows, 0)
}

// ListRecentPriceBars lists the most recent observations ordered by
// descending time.
func (s *Store) ListRecentPriceBars(ctx context.Context, assetID int64, limit int) ([]PriceBar, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentPriceBarsSQL, assetID, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent price bars: %w", queryErr)
	}
	defer rows.Close()

	return scanPriceBars(rows, limit)
}

// CountPriceBars counts stored observations for an asset.
func (s *Store) CountPriceBars(ctx context.Context, assetID int64) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if scanErr := pool.QueryRow(ctx, countPriceBarsSQL, assetID).Scan(&count); scanErr != nil {
		return 0, fmt.Errorf("count price bars: %w", scanErr)
	}
	return count, nil
}

func scanPriceBars(rows pgx.Rows, capacityHint int) ([]PriceBar, error) {
	bars := make([]PriceBar, 0, capacityHint)
	for rows.Next() {
		bar, scanErr := scanPriceBar(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		bars = append(bars, bar)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return bars, nil
}

func scanPriceBar(rows pgx.Rows) (PriceBar, error) {
	var (
		bucket   time.Time
		open     sql.NullString
		high     sql.NullString
		low      sql.NullString
		closeStr string
		volume   sql.NullString
	)

	if err := rows.Scan(&bucket, &open, &high, &low, &closeStr, &volume); err != nil {
		return PriceBar{}, err
	}

	closeValue, err := decimal.NewFromString(closeStr)
	if err != nil {
		return PriceBar{}, fmt.Errorf("parse close: %w", err)
	}

	bar := PriceBar{Time: bucket, Close: closeValue}
	if bar.Open, err = parseNullDecimal(open); err != nil {
		return PriceBar{}, fmt.Errorf("parse open: %w", err)
	}
	if bar.High, err = parseNullDecimal(high); err != nil {
		return PriceBar{}, fmt.Errorf("parse high: %w", err)
	}
	if bar.Low, err = parseNullDecimal(low); err != nil {
		return PriceBar{}, fmt.Errorf("parse low: %w", err)
	}
	if bar.Volume, err = parseNullDecimal(volume); err != nil {
		return PriceBar{}, fmt.Errorf("parse volume: %w", err)
	}
	return bar, nil
}

func parseNullDecimal(v sql.NullString) (decimal.NullDecimal, error) {
	if !v.Valid {
		return decimal.NullDecimal{}, nil
	}
	parsed, err := decimal.NewFromString(v.String)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NullDecimal{Decimal: parsed, Valid: true}, nil
}

func nullDecimalArg(v decimal.NullDecimal) any {
	if !v.Valid {
		return nil
	}
	return v.Decimal.String()
}
