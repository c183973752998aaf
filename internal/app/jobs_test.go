package app

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/fantasy-sync/internal/config"
	"github.com/riskibarqy/fantasy-sync/internal/platform/logging"
	"github.com/riskibarqy/fantasy-sync/internal/usecase"
)

func TestContainerJobs_FollowConfig(t *testing.T) {
	c := &Container{
		Config: config.Config{
			SleeperLeagueID:   "784",
			MatchupsSchedule:  "0 9 * * 2",
			PodiumMaxSchedule: "30 9 * * 2",
			ReportPath:        "podiums.csv",
		},
		Logger: logging.NewNop(),
	}

	jobs := c.Jobs()
	if len(jobs) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(jobs))
	}
	if jobs[0].Name != "matchups" || jobs[0].Schedule != "0 9 * * 2" {
		t.Fatalf("unexpected matchups job: %+v", jobs[0])
	}
	if jobs[2].Name != "league_table" || jobs[2].Schedule != "" {
		t.Fatalf("league table job should be disabled: %+v", jobs[2])
	}

	s, err := c.NewScheduler(context.Background())
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	if got := s.Jobs(); len(got) != 2 {
		t.Fatalf("expected 2 enabled jobs, got %v", got)
	}
}

func TestContainerNewScheduler_RequiresLeague(t *testing.T) {
	c := &Container{Config: config.Config{MatchupsSchedule: "0 9 * * 2"}}

	_, err := c.NewScheduler(context.Background())
	if !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
