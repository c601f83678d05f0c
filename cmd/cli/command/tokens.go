package command

import (
	"context"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Refresh token housekeeping",
}

var tokensPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete revoked and expired refresh tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		n, err := a.Repos.RefreshTokens.DeleteExpired(ctx, time.Now())
		if err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "🧹 removed %d refresh token(s)\n", n)
		return nil
	},
}

func init() {
	tokensCmd.AddCommand(tokensPruneCmd)
}
