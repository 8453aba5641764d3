package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"crypto-screener/internal/app"
)

var (
	fetchSource   string
	fetchSymbol   string
	fetchCoinID   string
	fetchDays     int
	fetchInterval string
	fetchFrom     string
	fetchTo       string
	fetchLimit    int
	fetchOut      string
	fetchNoDB     bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch a historical price series and store it",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := parseTimeFlag(fetchFrom)
		if err != nil {
			return err
		}
		to, err := parseTimeFlag(fetchTo)
		if err != nil {
			return err
		}

		result, err := getApp().Fetch(cmd.Context(), app.FetchOptions{
			Source:   fetchSource,
			Symbol:   fetchSymbol,
			CoinID:   fetchCoinID,
			Days:     fetchDays,
			Interval: fetchInterval,
			From:     from,
			To:       to,
			Limit:    fetchLimit,
			OutPath:  fetchOut,
			NoDB:     fetchNoDB,
		})
		if err != nil {
			return err
		}

		if result.Asset.Symbol != "" {
			fmt.Printf("stored %d bars for %s (%s)\n", result.Bars, result.Asset.Symbol, fetchSource)
		} else {
			fmt.Printf("fetched %d bars from %s\n", result.Bars, fetchSource)
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchSource, "source", "coingecko", "Data source: coingecko or binance")
	fetchCmd.Flags().StringVar(&fetchSymbol, "symbol", "", "Asset symbol (required for binance)")
	fetchCmd.Flags().StringVar(&fetchCoinID, "coin-id", "", "Provider coin id (required for coingecko)")
	fetchCmd.Flags().IntVar(&fetchDays, "days", 365, "Days of history (coingecko)")
	fetchCmd.Flags().StringVar(&fetchInterval, "interval", "", "Kline interval (binance, defaults to config)")
	fetchCmd.Flags().StringVar(&fetchFrom, "from", "", "Range start (binance)")
	fetchCmd.Flags().StringVar(&fetchTo, "to", "", "Range end (binance)")
	fetchCmd.Flags().IntVar(&fetchLimit, "limit", 0, "Maximum klines per request (binance)")
	fetchCmd.Flags().StringVar(&fetchOut, "out", "", "Also write the raw series to a JSON snapshot")
	fetchCmd.Flags().BoolVar(&fetchNoDB, "no-db", false, "Skip the database, write the snapshot only")
}
