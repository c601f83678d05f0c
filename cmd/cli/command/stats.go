package command

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"cinetrack/internal/microservices/http-api/models"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	statsUser string
	statsYear int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Compute yearly watch statistics",
}

var statsYearCmd = &cobra.Command{
	Use:   "year",
	Short: "Compute and print one user's statistics for a year",
	RunE: func(cmd *cobra.Command, args []string) error {
		if statsUser == "" {
			return fmt.Errorf("--user is required")
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		stats, err := a.Services.Stats.CalculateYearlyStats(ctx, statsUser, statsYear)
		if err != nil {
			return err
		}
		printStats(cmd.OutOrStdout(), stats)
		return nil
	},
}

var statsRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Recompute every year for one user, or for all users when --user is omitted",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		users := []string{statsUser}
		if statsUser == "" {
			users, err = a.Repos.Users.ListIDs(ctx)
			if err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		failed := 0
		for _, userID := range users {
			years, err := a.Services.Stats.RecalculateAll(ctx, userID)
			if err != nil {
				failed++
				color.New(color.FgRed).Fprintf(out, "✗ %s: %v\n", userID, err)
				continue
			}
			color.New(color.FgGreen).Fprintf(out, "✓ %s: %d year(s) %v\n", userID, len(years), years)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d user(s) failed", failed, len(users))
		}
		return nil
	},
}

func init() {
	statsYearCmd.Flags().StringVar(&statsUser, "user", "", "user id")
	statsYearCmd.Flags().IntVar(&statsYear, "year", time.Now().Year(), "calendar year")
	statsRebuildCmd.Flags().StringVar(&statsUser, "user", "", "user id (all users when empty)")

	statsCmd.AddCommand(statsYearCmd)
	statsCmd.AddCommand(statsRebuildCmd)
}

var months = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

func printStats(w io.Writer, s *models.YearlyStats) {
	title := color.New(color.FgCyan, color.Bold)
	label := color.New(color.FgHiBlack)

	title.Fprintf(w, "📊 %d in review\n", s.Year)
	fmt.Fprintln(w, "─────────────────────────────────────────")
	row := func(name string, value any) {
		label.Fprintf(w, "%-22s", name)
		fmt.Fprintln(w, value)
	}
	row("Movies watched", s.TotalMoviesWatched)
	row("TV shows watched", s.TotalShowsWatched)
	row("Episodes watched", s.TotalEpisodesWatched)
	row("Rewatches", s.TotalRewatches)
	row("Watch time", fmt.Sprintf("%dh %dm", s.TotalWatchTimeMinutes/60, s.TotalWatchTimeMinutes%60))
	if s.AverageRating > 0 {
		row("Average rating", fmt.Sprintf("%.1f", s.AverageRating))
	}
	if s.FavoriteGenreID != nil {
		row("Favorite genre", fmt.Sprintf("#%d (%d titles)", *s.FavoriteGenreID, s.FavoriteGenreCount))
	}
	if s.FavoriteDirector != nil {
		row("Favorite director", *s.FavoriteDirector)
	}
	if s.FavoriteActor != nil {
		row("Favorite actor", *s.FavoriteActor)
	}
	if s.TopRatedTitle != nil && s.TopRatedRating != nil {
		row("Top rated", fmt.Sprintf("%s (%.1f)", *s.TopRatedTitle, *s.TopRatedRating))
	}
	if s.LongestMovieTitle != nil {
		row("Longest movie", fmt.Sprintf("%s (%d min)", *s.LongestMovieTitle, s.LongestMovieRuntime))
	}
	if s.MostRewatchedTitle != nil {
		row("Most rewatched", fmt.Sprintf("%s (%d)", *s.MostRewatchedTitle, s.MostRewatchedCount))
	}

	fmt.Fprintln(w)
	for i, n := range s.Months() {
		label.Fprintf(w, "%s ", months[i])
		fmt.Fprintf(w, "%3d %s\n", n, bar(n))
	}
}

func bar(n int) string {
	return strings.Repeat("█", min(n, 40))
}
