package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/fantasy-sync/internal/domain/podium"
	"github.com/riskibarqy/fantasy-sync/internal/domain/season"
	idgen "github.com/riskibarqy/fantasy-sync/internal/platform/id"
	"github.com/riskibarqy/fantasy-sync/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

type PodiumMaxInput struct {
	LeagueID string `validate:"required"`
	DryRun   bool
}

type PodiumMaxResult struct {
	RunID    string
	LeagueID string
	SeasonID string
	Status   string
	Rosters  int
	Updates  []podium.MaxUpdate
	Updated  int
}

// PodiumMaxService copies each owner's potential points into the podium table.
type PodiumMaxService struct {
	provider LeagueProvider
	seasons  season.Repository
	podiums  podium.Repository
	ids      idgen.Generator
	logger   *logging.Logger
}

func NewPodiumMaxService(
	provider LeagueProvider,
	seasonRepo season.Repository,
	podiumRepo podium.Repository,
	ids idgen.Generator,
	logger *logging.Logger,
) *PodiumMaxService {
	if logger == nil {
		logger = logging.NewNop()
	}

	return &PodiumMaxService{
		provider: provider,
		seasons:  seasonRepo,
		podiums:  podiumRepo,
		ids:      ids,
		logger:   logger.Named("podium_max"),
	}
}

func (s *PodiumMaxService) Sync(ctx context.Context, input PodiumMaxInput) (result PodiumMaxResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PodiumMaxService.Sync",
		attribute.String("league_id", input.LeagueID),
		attribute.Bool("dry_run", input.DryRun),
	)
	defer func() { endSpan(span, err) }()

	input.LeagueID = strings.TrimSpace(input.LeagueID)
	if err := validateInput(input); err != nil {
		return PodiumMaxResult{}, err
	}

	result = PodiumMaxResult{
		RunID:    newRunID(s.ids),
		LeagueID: input.LeagueID,
	}
	span.SetAttributes(attribute.String("run_id", result.RunID))
	logger := s.logger.With("run_id", result.RunID, "league_id", input.LeagueID)

	rosters, err := s.provider.FetchRosters(ctx, input.LeagueID)
	if err != nil {
		return result, fmt.Errorf("fetch rosters: %w", err)
	}
	result.Rosters = len(rosters)

	points := make([]podium.RosterPoints, 0, len(rosters))
	for _, item := range rosters {
		points = append(points, podium.RosterPoints{
			OwnerID:    item.OwnerID,
			Whole:      item.MaxPointsWhole,
			Hundredths: item.MaxPointsHundredths,
		})
	}
	maxes := podium.MaxPointsByOwner(points)
	if len(maxes) == 0 {
		result.Status = syncStatusSkipped
		logger.InfoContext(ctx, "podium max sync skipped", "reason", "no owner has max points yet")
		return result, nil
	}

	item, err := resolveSeason(ctx, s.seasons, input.LeagueID)
	if err != nil {
		return result, err
	}
	result.SeasonID = item.ID

	rows, err := s.podiums.ListBySeason(ctx, item.ID)
	if err != nil {
		return result, fmt.Errorf("list podiums season_id=%s: %w", item.ID, err)
	}
	if len(rows) == 0 {
		return result, fmt.Errorf("%w: no podium rows for season id=%s", ErrNotFound, item.ID)
	}

	result.Updates = podium.BuildMaxUpdates(item.ID, rows, maxes)
	if input.DryRun {
		result.Status = syncStatusDryRun
		logger.InfoContext(ctx, "podium max dry run", "season_id", item.ID, "updates", len(result.Updates))
		return result, nil
	}

	updated, err := s.podiums.UpdateMax(ctx, result.Updates)
	result.Updated = updated
	if err != nil {
		return result, fmt.Errorf("update podium max: %w", err)
	}
	if updated != len(result.Updates) {
		return result, fmt.Errorf("%w: updated %d of %d podium rows", ErrIncompleteWrite, updated, len(result.Updates))
	}

	result.Status = syncStatusSuccess
	logger.InfoContext(ctx, "podium max sync completed",
		"season_id", item.ID,
		"podiums", len(rows),
		"updated", updated,
	)
	return result, nil
}
