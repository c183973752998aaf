// Command sync runs the Sleeper league sync jobs.
//
// Usage:
//
//	fantasy-sync matchups --league 784 --week 3
//	fantasy-sync matchups --from-week 1 --to-week 14 --workers 4
//	fantasy-sync podium-max --dry-run
//	fantasy-sync league-table --out podiums.csv
//	fantasy-sync schedule
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/fantasy-sync/internal/app"
	"github.com/riskibarqy/fantasy-sync/internal/config"
	"github.com/riskibarqy/fantasy-sync/internal/platform/logging"
	"github.com/riskibarqy/fantasy-sync/internal/usecase"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := &cobra.Command{
		Use:           "fantasy-sync",
		Short:         "Sleeper league sync jobs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("league", "", "Sleeper league id (defaults to SLEEPER_LEAGUE_ID)")

	root.AddCommand(matchupsCmd())
	root.AddCommand(podiumMaxCmd())
	root.AddCommand(leagueTableCmd())
	root.AddCommand(scheduleCmd())

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fantasy-sync: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func matchupsCmd() *cobra.Command {
	var (
		week     int
		fromWeek int
		toWeek   int
		workers  int
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "matchups",
		Short: "Resolve weekly Sleeper matchups into clubs and store them",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, func(ctx context.Context, c *app.Container, leagueID string) error {
				if cmd.Flags().Changed("from-week") || cmd.Flags().Changed("to-week") {
					if toWeek == 0 {
						toWeek = fromWeek
					}
					result, err := c.MatchupSync.Backfill(ctx, usecase.BackfillInput{
						LeagueID:   leagueID,
						FromWeek:   fromWeek,
						ToWeek:     toWeek,
						MaxWorkers: workers,
						DryRun:     dryRun,
					})
					if err != nil {
						return err
					}
					c.Logger.InfoContext(ctx, "backfill finished",
						"run_id", result.RunID,
						"status", result.Status,
						"weeks", len(result.Weeks),
						"skipped_weeks", result.SkippedWeeks,
						"matchups", len(result.Matchups),
						"stored", result.Persist.Stored,
					)
					return nil
				}

				result, err := c.MatchupSync.Sync(ctx, usecase.SyncInput{LeagueID: leagueID, Week: week, DryRun: dryRun})
				if err != nil {
					return err
				}
				c.Logger.InfoContext(ctx, "matchup sync finished",
					"run_id", result.RunID,
					"status", result.Status,
					"week", result.Week,
					"matchups", len(result.Matchups),
					"stored", result.Persist.Stored,
				)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&week, "week", 0, "Week to sync (0 = current week)")
	cmd.Flags().IntVar(&fromWeek, "from-week", 1, "First week of a backfill")
	cmd.Flags().IntVar(&toWeek, "to-week", 0, "Last week of a backfill")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent week fetches during backfill (0 = SYNC_MAX_WORKERS)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Resolve matchups without writing them")
	return cmd
}

func podiumMaxCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "podium-max",
		Short: "Copy each roster's max potential points into the podium table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, func(ctx context.Context, c *app.Container, leagueID string) error {
				result, err := c.PodiumMax.Sync(ctx, usecase.PodiumMaxInput{LeagueID: leagueID, DryRun: dryRun})
				if err != nil {
					return err
				}
				c.Logger.InfoContext(ctx, "podium max finished",
					"run_id", result.RunID,
					"status", result.Status,
					"rosters", result.Rosters,
					"updated", result.Updated,
				)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute updates without writing them")
	return cmd
}

func leagueTableCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "league-table",
		Short: "Export the podium standings as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, func(ctx context.Context, c *app.Container, leagueID string) error {
				path := out
				if path == "" {
					path = c.Config.ReportPath
				}
				result, err := c.LeagueTable.Export(ctx, usecase.LeagueTableInput{LeagueID: leagueID, Path: path})
				if err != nil {
					return err
				}
				c.Logger.InfoContext(ctx, "league table written", "path", result.Path, "rows", len(result.Rows))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Output CSV path (defaults to REPORT_PATH)")
	return cmd
}

func scheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run the sync jobs on their cron schedules until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, func(ctx context.Context, c *app.Container, leagueID string) error {
				c.Config.SleeperLeagueID = leagueID
				s, err := c.NewScheduler(ctx)
				if err != nil {
					return err
				}
				return s.Run(ctx)
			})
		},
	}
}

// withContainer loads config, builds the service container and hands it to
// run together with the resolved league id.
func withContainer(cmd *cobra.Command, run func(ctx context.Context, c *app.Container, leagueID string) error) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.NewJSON(cfg.LogLevel).With(
		"service", cfg.ServiceName,
		"env", cfg.AppEnv,
		"version", cfg.ServiceVersion,
	)
	defer func() { _ = logger.Sync() }()

	leagueID, _ := cmd.Flags().GetString("league")
	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		leagueID = cfg.SleeperLeagueID
	}
	if leagueID == "" {
		return fmt.Errorf("league id is required: pass --league or set SLEEPER_LEAGUE_ID")
	}

	container, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := container.Close(closeCtx); err != nil {
			logger.Warn("shutdown incomplete", "error", err)
		}
	}()

	start := time.Now()
	if err := run(ctx, container, leagueID); err != nil {
		logger.ErrorContext(ctx, "job failed", "command", cmd.Name(), "league_id", leagueID, "duration", time.Since(start), "error", err)
		return err
	}
	return nil
}
