package command

// root.go defines the root command of the cinetrack operator CLI and the
// shared application bootstrap used by its subcommands.

import (
	"fmt"
	"os"

	"cinetrack/internal/app"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	apiURL string // API server URL, used by commands that talk to a running server
	token  string // access token for the live feed
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cinetrack",
	Short: "cinetrack - operator tooling for the watch tracker",
	Long: `cinetrack runs maintenance jobs against the tracker database:
- compute or rebuild yearly statistics
- run a TV update pass outside the server schedule
- follow a user's live feed

Configuration comes from the same environment variables (and .env) as the API server.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("CINETRACK_TOKEN"), "access token (defaults to $CINETRACK_TOKEN)")

	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(tvCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(tokensCmd)
}

// openApp loads configuration and connects to the stores. Callers must Close it.
func openApp() (*app.App, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, err
	}
	a, err := app.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise application: %w", err)
	}
	return a, nil
}
