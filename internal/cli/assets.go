package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "Manage the asset registry",
}

var assetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered assets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().ListAssets(cmd.Context(), os.Stdout)
	},
}

var assetsDeleteCmd = &cobra.Command{
	Use:   "delete <symbol>",
	Short: "Delete an asset and all of its stored data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := getApp().DeleteAsset(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted %s\n", args[0])
		return nil
	},
}

func init() {
	assetsCmd.AddCommand(assetsListCmd)
	assetsCmd.AddCommand(assetsDeleteCmd)
}
