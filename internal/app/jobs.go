package app

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/fantasy-sync/internal/scheduler"
	"github.com/riskibarqy/fantasy-sync/internal/usecase"
)

const jobTimeout = 10 * time.Minute

// Jobs returns the recurring sync jobs for the configured league.
func (c *Container) Jobs() []scheduler.Job {
	leagueID := c.Config.SleeperLeagueID

	return []scheduler.Job{
		{
			Name:     "matchups",
			Schedule: c.Config.MatchupsSchedule,
			Timeout:  jobTimeout,
			Run: func(ctx context.Context) error {
				_, err := c.MatchupSync.Sync(ctx, usecase.SyncInput{LeagueID: leagueID})
				return err
			},
		},
		{
			Name:     "podium_max",
			Schedule: c.Config.PodiumMaxSchedule,
			Timeout:  jobTimeout,
			Run: func(ctx context.Context) error {
				_, err := c.PodiumMax.Sync(ctx, usecase.PodiumMaxInput{LeagueID: leagueID})
				return err
			},
		},
		{
			Name:     "league_table",
			Schedule: c.Config.LeagueTableSchedule,
			Timeout:  jobTimeout,
			Run: func(ctx context.Context) error {
				_, err := c.LeagueTable.Export(ctx, usecase.LeagueTableInput{LeagueID: leagueID, Path: c.Config.ReportPath})
				return err
			},
		},
	}
}

// NewScheduler registers every enabled job on a fresh scheduler.
func (c *Container) NewScheduler(ctx context.Context) (*scheduler.Scheduler, error) {
	if c.Config.SleeperLeagueID == "" {
		return nil, fmt.Errorf("%w: SLEEPER_LEAGUE_ID is required for scheduled jobs", usecase.ErrInvalidInput)
	}

	s := scheduler.New(c.Logger)
	for _, job := range c.Jobs() {
		if err := s.Register(ctx, job); err != nil {
			return nil, err
		}
	}
	return s, nil
}
