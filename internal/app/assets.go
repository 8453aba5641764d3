package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

// ListAssets prints the asset registry as a fixed-width table.
func (a *App) ListAssets(ctx context.Context, w io.Writer) error {
	store, closer, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closer()

	assets, err := store.ListAssets(ctx)
	if err != nil {
		return err
	}
	if len(assets) == 0 {
		fmt.Fprintln(w, "no assets registered")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tNAME\tSOURCE\tCREATED")
	for _, asset := range assets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			asset.Symbol, asset.Name, asset.Source, asset.CreatedAt.UTC().Format(time.RFC3339))
	}
	return tw.Flush()
}

// DeleteAsset removes an asset and, through the cascade constraints, all of
// its price, indicator, and fundamentals rows.
func (a *App) DeleteAsset(ctx context.Context, symbol string) error {
	if symbol == "" {
		return errors.New("--symbol is required")
	}

	store, closer, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closer()

	if err := store.DeleteAsset(ctx, symbol); err != nil {
		return err
	}
	a.Logger.Info().Str("symbol", symbol).Msg("asset and dependent rows deleted")
	return nil
}

// Migrate applies pending schema migrations from the configured directory.
func (a *App) Migrate(ctx context.Context) (int, error) {
	store, closer, err := a.openStore(ctx)
	if err != nil {
		return 0, err
	}
	defer closer()

	applied, err := store.Migrate(ctx, a.Config.Database.MigrationsPath)
	if err != nil {
		return applied, err
	}
	a.Logger.Info().Int("applied", applied).Str("dir", a.Config.Database.MigrationsPath).Msg("migrations complete")
	return applied, nil
}
