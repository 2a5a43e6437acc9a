package cli

import (
	"fmt"

	"github.com/Rrens/qorix-chat/internal/domain"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change stored settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp(cmd.Context())
		if err != nil {
			return err
		}
		s := a.Preferences.Settings(cmd.Context())
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "provider: %s\n", s.Provider)
		fmt.Fprintf(w, "model:    %s\n", s.Model)
		fmt.Fprintf(w, "theme:    %s\n", s.Theme)
		fmt.Fprintf(w, "api key:  %v\n", s.HasAPIKey)
		return nil
	},
}

var settingsAPIKeyCmd = &cobra.Command{
	Use:   "api-key <key>",
	Short: "Store the provider API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp(cmd.Context())
		if err != nil {
			return err
		}
		if err := a.Preferences.SetAPIKey(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "API key saved.")
		return nil
	},
}

var settingsThemeCmd = &cobra.Command{
	Use:       "theme <light|dark>",
	Short:     "Store the theme preference",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(domain.ThemeLight), string(domain.ThemeDark)},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp(cmd.Context())
		if err != nil {
			return err
		}
		return a.Preferences.SetTheme(cmd.Context(), domain.Theme(args[0]))
	},
}

func init() {
	settingsCmd.AddCommand(settingsAPIKeyCmd)
	settingsCmd.AddCommand(settingsThemeCmd)
}
