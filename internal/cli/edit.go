package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit <session> <message> <text>",
	Short: "Replace a user message and drop everything after it",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp(cmd.Context())
		if err != nil {
			return err
		}
		out, err := a.Chat.EditMessage(cmd.Context(), args[0], args[1], args[2])
		if err != nil {
			return fmt.Errorf("edit message: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), out.Notice)
		return nil
	},
}
