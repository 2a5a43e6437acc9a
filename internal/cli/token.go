package cli

import (
	"errors"
	"fmt"

	"github.com/Rrens/qorix-chat/internal/security"
	"github.com/spf13/cobra"
)

var tokenSubject string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Auth.JWTSecret == "" {
			return errors.New("auth.jwt_secret (JWT_SECRET) is not set")
		}
		token, err := security.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL).GenerateToken(tokenSubject)
		if err != nil {
			return fmt.Errorf("generate token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "chatctl", "token subject")
}
