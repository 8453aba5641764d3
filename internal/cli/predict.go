package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"crypto-screener/internal/app"
)

var (
	predictSymbol string
	predictWindow int
	predictEpochs int
	predictSplit  float64
	predictFrom   string
	predictTo     string
	predictLimit  int
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Forecast the next close from the stored series",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := parseTimeFlag(predictFrom)
		if err != nil {
			return err
		}
		to, err := parseTimeFlag(predictTo)
		if err != nil {
			return err
		}

		result, err := getApp().Predict(cmd.Context(), app.PredictOptions{
			Symbol: predictSymbol,
			Window: predictWindow,
			Epochs: predictEpochs,
			Split:  predictSplit,
			From:   from,
			To:     to,
			Limit:  predictLimit,
		})
		if err != nil {
			return err
		}

		fmt.Printf("next close forecast for %s: %.4f\n", predictSymbol, result.NextClose)
		fmt.Printf("test RMSE: %.4f over %d held-out windows (%d trained)\n",
			result.TestRMSE, result.TestWindows, result.TrainWindows)
		return nil
	},
}

func init() {
	predictCmd.Flags().StringVar(&predictSymbol, "symbol", "", "Asset symbol")
	predictCmd.Flags().IntVar(&predictWindow, "window", 0, "Input window length (defaults to config)")
	predictCmd.Flags().IntVar(&predictEpochs, "epochs", 0, "Training epochs (defaults to config)")
	predictCmd.Flags().Float64Var(&predictSplit, "split", 0, "Chronological train fraction (defaults to config)")
	predictCmd.Flags().StringVar(&predictFrom, "from", "", "Range start")
	predictCmd.Flags().StringVar(&predictTo, "to", "", "Range end")
	predictCmd.Flags().IntVar(&predictLimit, "limit", 0, "Maximum bars to load")
}
