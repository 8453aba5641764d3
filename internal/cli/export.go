package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"crypto-screener/internal/app"
)

var (
	exportSymbol    string
	exportFrom      string
	exportTo        string
	exportPNGPath   string
	exportCSVPath   string
	exportMaxPoints int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a stored price series as CSV and/or PNG chart",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := parseTimeFlag(exportFrom)
		if err != nil {
			return err
		}
		to, err := parseTimeFlag(exportTo)
		if err != nil {
			return err
		}

		result, err := getApp().Export(cmd.Context(), app.ExportOptions{
			Symbol:    exportSymbol,
			From:      from,
			To:        to,
			PNGPath:   exportPNGPath,
			CSVPath:   exportCSVPath,
			MaxPoints: exportMaxPoints,
		})
		if err != nil {
			return err
		}

		fmt.Printf("exported %d points", result.Points)
		if result.Downsampled {
			fmt.Print(" (downsampled)")
		}
		fmt.Println()
		if result.PNGPath != "" {
			fmt.Printf("chart: %s\n", result.PNGPath)
		}
		if result.CSVPath != "" {
			fmt.Printf("csv: %s\n", result.CSVPath)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportSymbol, "symbol", "", "Asset symbol")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "Start timestamp (inclusive)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "End timestamp (exclusive)")
	exportCmd.Flags().StringVar(&exportPNGPath, "png", "", "Path to write PNG chart")
	exportCmd.Flags().StringVar(&exportCSVPath, "csv", "", "Path to write CSV data")
	exportCmd.Flags().IntVar(&exportMaxPoints, "max-points", 0, "Maximum data points to export (defaults to config)")
}
