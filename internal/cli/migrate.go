package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		applied, err := getApp().Migrate(cmd.Context())
		if err != nil {
			return err
		}
		if applied == 0 {
			fmt.Println("schema is up to date")
		} else {
			fmt.Printf("applied %d migrations\n", applied)
		}
		return nil
	},
}
