package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"crypto-screener/internal/storage"
)

const defaultShowLimit = 20

// Show prints recent stored rows for an asset in a fixed-width table. With
// Indicators set it lists indicator values instead of price bars.
func (a *App) Show(ctx context.Context, w io.Writer, opts ShowOptions) error {
	if opts.Symbol == "" {
		return errors.New("--symbol is required")
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultShowLimit
	}

	store, closer, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closer()

	asset, err := store.GetAsset(ctx, opts.Symbol)
	if err != nil {
		return err
	}

	if opts.Indicators {
		return showIndicators(ctx, w, store, asset, limit)
	}
	return showPrices(ctx, w, store, asset, limit)
}

func showPrices(ctx context.Context, w io.Writer, store *storage.Store, asset storage.Asset, limit int) error {
	bars, err := store.ListRecentPriceBars(ctx, asset.ID, limit)
	if err != nil {
		return err
	}
	total, err := store.CountPriceBars(ctx, asset.ID)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s (%s, source %s): %d bars stored\n\n", asset.Symbol, asset.Name, asset.Source, total)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tOPEN\tHIGH\tLOW\tCLOSE\tVOLUME")
	for _, bar := range bars {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			bar.Time.UTC().Format(time.RFC3339),
			orDash(nullDecimalString(bar.Open)),
			orDash(nullDecimalString(bar.High)),
			orDash(nullDecimalString(bar.Low)),
			bar.Close.String(),
			orDash(nullDecimalString(bar.Volume)),
		)
	}
	return tw.Flush()
}

func showIndicators(ctx context.Context, w io.Writer, store *storage.Store, asset storage.Asset, limit int) error {
	rows, err := store.LoadIndicatorValues(ctx, asset.ID, nil, nil, nil, limit)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s (%s): %d indicator rows\n\n", asset.Symbol, asset.Name, len(rows))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tINDICATOR\tVALUE")
	for _, row := range rows {
		value := "-"
		if row.Value != nil {
			value = fmt.Sprintf("%.6f", *row.Value)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", row.Time.UTC().Format(time.RFC3339), row.Name, value)
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
