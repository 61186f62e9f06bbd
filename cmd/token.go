package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codelio/codelio/internal/identity"
)

var tokenCmd = &cobra.Command{
	Use:    "token",
	Short:  "Mint a sign-in token for an identity",
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if !cfg.AuthEnabled() {
			return fmt.Errorf("mint token: %w", identity.ErrNotConfigured)
		}

		sub, _ := cmd.Flags().GetString("sub")
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		token, err := identity.NewTokenIssuer(cfg.Auth.Secret, cfg.Auth.Issuer, ttl).Issue(identity.Identity{
			ID:          sub,
			DisplayName: name,
			Email:       email,
		})
		if err != nil {
			return fmt.Errorf("mint token: %w", err)
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("sub", "", "Identity id (token subject)")
	tokenCmd.Flags().String("name", "", "Display name")
	tokenCmd.Flags().String("email", "", "Email address")
	tokenCmd.Flags().Duration("ttl", identity.DefaultTokenTTL, "Token lifetime")
	_ = tokenCmd.MarkFlagRequired("sub")
}
