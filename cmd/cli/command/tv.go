package command

import (
	"context"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var tvCmd = &cobra.Command{
	Use:   "tv",
	Short: "TV show maintenance",
}

var tvCheckUpdatesCmd = &cobra.Command{
	Use:   "check-updates",
	Short: "Run one pass of the new-episode checker",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Minute)
		defer cancel()

		start := time.Now()
		report, err := a.Services.TvUpdates.CheckAll(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		color.New(color.FgCyan, color.Bold).Fprintf(out, "📺 checked %d show(s) in %s\n", report.Checked, time.Since(start).Round(time.Millisecond))
		color.New(color.FgGreen).Fprintf(out, "   new episodes: %d\n", report.NewEpisodes)
		color.New(color.FgHiBlack).Fprintf(out, "   first seen:   %d\n", report.FirstSeen)
		if report.Failed > 0 {
			color.New(color.FgRed).Fprintf(out, "   failed:       %d\n", report.Failed)
		}
		return nil
	},
}

func init() {
	tvCmd.AddCommand(tvCheckUpdatesCmd)
}
