package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"crypto-screener/internal/app"
)

var (
	analyzeSymbol string
	analyzeInput  string
	analyzeOut    string
	analyzeFrom   string
	analyzeTo     string
	analyzeLimit  int
	analyzeNoDB   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compute technical indicators over a price series",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := parseTimeFlag(analyzeFrom)
		if err != nil {
			return err
		}
		to, err := parseTimeFlag(analyzeTo)
		if err != nil {
			return err
		}

		result, err := getApp().Analyze(cmd.Context(), app.AnalyzeOptions{
			Symbol:    analyzeSymbol,
			InputPath: analyzeInput,
			OutPath:   analyzeOut,
			From:      from,
			To:        to,
			Limit:     analyzeLimit,
			NoDB:      analyzeNoDB,
		})
		if err != nil {
			return err
		}

		fmt.Printf("computed %d indicators over %d bars\n", result.Indicators, result.Bars)
		for _, warning := range result.Warnings {
			fmt.Printf("warning: %s\n", warning)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeSymbol, "symbol", "", "Asset symbol to analyse from the database")
	analyzeCmd.Flags().StringVar(&analyzeInput, "input", "", "Read the price series from a JSON snapshot instead")
	analyzeCmd.Flags().StringVar(&analyzeOut, "out", "", "Write a wide-format analysis snapshot")
	analyzeCmd.Flags().StringVar(&analyzeFrom, "from", "", "Range start")
	analyzeCmd.Flags().StringVar(&analyzeTo, "to", "", "Range end")
	analyzeCmd.Flags().IntVar(&analyzeLimit, "limit", 0, "Maximum bars to load")
	analyzeCmd.Flags().BoolVar(&analyzeNoDB, "no-db", false, "Skip the database, write the snapshot only")
}
