package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"crypto-screener/internal/app"
)

var (
	fundamentalsCoinID string
	fundamentalsSymbol string
)

var fundamentalsCmd = &cobra.Command{
	Use:   "fundamentals",
	Short: "Fetch and store fundamentals for a coin",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := getApp().Fundamentals(cmd.Context(), app.FundamentalsOptions{
			CoinID: fundamentalsCoinID,
			Symbol: fundamentalsSymbol,
		})
		if err != nil {
			return err
		}

		fmt.Printf("fundamentals stored for %s (%d categories)\n", result.Asset.Symbol, result.Categories)
		if !result.HasCap {
			fmt.Println("note: provider returned no market cap")
		}
		return nil
	},
}

func init() {
	fundamentalsCmd.Flags().StringVar(&fundamentalsCoinID, "coin-id", "", "Provider coin id")
	fundamentalsCmd.Flags().StringVar(&fundamentalsSymbol, "symbol", "", "Override the symbol reported by the provider")
}
