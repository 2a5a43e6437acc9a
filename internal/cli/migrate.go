package cli

import (
	"fmt"

	"github.com/Rrens/qorix-chat/internal/app"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply or roll back the SQL storage schema",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down"},
	RunE: func(cmd *cobra.Command, args []string) error {
		direction := "up"
		if len(args) == 1 {
			direction = args[0]
		}
		if err := app.Migrate(cfg, direction == "down"); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: done (%s)\n", direction, cfg.Storage.Driver)
		return nil
	},
}
