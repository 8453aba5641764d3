package cli

import (
	"os"

	"github.com/spf13/cobra"

	"crypto-screener/internal/app"
)

var (
	showSymbol     string
	showLimit      int
	showIndicators bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show recent stored rows for an asset",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Show(cmd.Context(), os.Stdout, app.ShowOptions{
			Symbol:     showSymbol,
			Limit:      showLimit,
			Indicators: showIndicators,
		})
	},
}

func init() {
	showCmd.Flags().StringVar(&showSymbol, "symbol", "", "Asset symbol")
	showCmd.Flags().IntVar(&showLimit, "limit", 0, "Maximum rows to show")
	showCmd.Flags().BoolVar(&showIndicators, "indicators", false, "Show indicator values instead of price bars")
}
