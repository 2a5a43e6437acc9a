package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	deleteForce bool
)

var sessionsCmd = &cobra.Command{
	Use:     "sessions",
	Aliases: []string{"s"},
	Short:   "Manage conversations",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp(cmd.Context())
		if err != nil {
			return err
		}
		sessions, activeID := a.Chat.Sessions()
		for _, s := range sessions {
			printSessionLine(cmd.OutOrStdout(), s, s.ID == activeID)
		}
		return nil
	},
}

var sessionsNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a new conversation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp(cmd.Context())
		if err != nil {
			return err
		}
		s, err := a.Chat.CreateSession(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), s.ID)
		return nil
	},
}

var sessionsSelectCmd = &cobra.Command{
	Use:   "select <session>",
	Short: "Select a conversation and print its transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp(cmd.Context())
		if err != nil {
			return err
		}
		s, err := a.Chat.SelectSession(args[0])
		if err != nil {
			return fmt.Errorf("select %s: %w", args[0], err)
		}
		printTranscript(cmd.OutOrStdout(), s)
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session>",
	Short: "Delete a conversation and its attachments",
	Long: `Delete a conversation and its attachments.

Requires confirmation unless --force is used.

Examples:
  chatctl sessions delete 1718000000000
  chatctl sessions delete 1718000000000 --force`,
	Args: cobra.ExactArgs(1),
	RunE: runSessionsDelete,
}

func init() {
	sessionsDeleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "skip confirmation")

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsNewCmd)
	sessionsCmd.AddCommand(sessionsSelectCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := getApp(ctx)
	if err != nil {
		return err
	}

	s, err := a.Chat.Session(args[0])
	if err != nil {
		return fmt.Errorf("session %s: %w", args[0], err)
	}

	if !deleteForce {
		fmt.Printf("About to delete: %s (%s, %d messages)\n", s.Title, s.ID, len(s.Messages))
		fmt.Print("\nContinue? [y/N]: ")

		reader := bufio.NewReader(os.Stdin)
		response, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		response = strings.TrimSpace(strings.ToLower(response))

		if response != "y" && response != "yes" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := a.Chat.DeleteSession(ctx, s.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	fmt.Printf("Deleted %s\n", s.ID)
	return nil
}
