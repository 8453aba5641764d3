package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

const upsertIndicatorValueSQL = `INSERT INTO indicator_values (
    asset_id,
    bucket_ts,
    indicator_name,
    value
) VALUES (
    $1,$2,$3,$4
)
ON CONFLICT (asset_id, bucket_ts, indicator_name) DO UPDATE
SET value = EXCLUDED.value;`

// IndicatorStore defines operations for long-format indicator persistence.
type IndicatorStore interface {
	UpsertIndicatorValues(ctx context.Context, assetID int64, rows []IndicatorRow) error
	LoadIndicatorValues(ctx context.Context, assetID int64, names []string, from, to *time.Time, limit int) ([]IndicatorRow, error)
}

// UpsertIndicatorValues persists a batch of indicator observations,
// idempotent on (asset_id, bucket_ts, indicator_name). Undefined values are
// stored as null.
func (s *Store) UpsertIndicatorValues(ctx context.Context, assetID int64, values []IndicatorRow) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, row := range values {
		var value any
		if row.Value != nil {
			value = *row.Value
		}
		batch.Queue(upsertIndicatorValueSQL, assetID, row.Time, row.Name, value)
	}

	results := pool.SendBatch(ctx, batch)
	defer results.Close()
	for range values {
		if _, execErr := results.Exec(); execErr != nil {
			return fmt.Errorf("upsert indicator values: %w", execErr)
		}
	}
	return nil
}

// LoadIndicatorValues loads long-format observations for an asset, optionally
// filtered by indicator names and date range, ordered by time then name.
func (s *Store) LoadIndicatorValues(ctx context.Context, assetID int64, names []string, from, to *time.Time, limit int) ([]IndicatorRow, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString(`SELECT bucket_ts, indicator_name, value
    FROM indicator_values
    WHERE asset_id = $1`)
	args := []any{assetID}

	if len(names) > 0 {
		args = append(args, names)
		fmt.Fprintf(&sb, " AND indicator_name = ANY($%d)", len(args))
	}
	if from != nil {
		args = append(args, *from)
		fmt.Fprintf(&sb, " AND bucket_ts >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		fmt.Fprintf(&sb, " AND bucket_ts < $%d", len(args))
	}
	sb.WriteString(" ORDER BY bucket_ts, indicator_name")
	if limit > 0 {
		args = append(args, limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}

	rows, queryErr := pool.Query(ctx, sb.String(), args...)
	if queryErr != nil {
		return nil, fmt.Errorf("load indicator values: %w", queryErr)
	}
	defer rows.Close()

	out := make([]IndicatorRow, 0)
	for rows.Next() {
		var (
			row   IndicatorRow
			value sql.NullFloat64
		)
		if err := rows.Scan(&row.Time, &row.Name, &value); err != nil {
			return nil, err
		}
		if value.Valid {
			v := value.Float64
			row.Value = &v
		}
		out = append(out, row)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}
