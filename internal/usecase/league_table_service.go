package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/fantasy-sync/internal/domain/podium"
	"github.com/riskibarqy/fantasy-sync/internal/domain/season"
	"github.com/riskibarqy/fantasy-sync/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

// TableWriter renders standings rows to a destination path.
type TableWriter interface {
	WriteTable(ctx context.Context, path string, rows []podium.Podium) error
}

type LeagueTableInput struct {
	LeagueID string `validate:"required"`
	Path     string `validate:"required"`
}

type LeagueTableResult struct {
	LeagueID string
	SeasonID string
	Path     string
	Rows     []podium.Podium
}

type LeagueTableService struct {
	seasons season.Repository
	podiums podium.Repository
	writer  TableWriter
	logger  *logging.Logger
}

func NewLeagueTableService(seasonRepo season.Repository, podiumRepo podium.Repository, writer TableWriter, logger *logging.Logger) *LeagueTableService {
	if logger == nil {
		logger = logging.NewNop()
	}

	return &LeagueTableService{
		seasons: seasonRepo,
		podiums: podiumRepo,
		writer:  writer,
		logger:  logger.Named("league_table"),
	}
}

// Export writes the season's podium rows ordered by rank.
func (s *LeagueTableService) Export(ctx context.Context, input LeagueTableInput) (result LeagueTableResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueTableService.Export",
		attribute.String("league_id", input.LeagueID),
		attribute.String("path", input.Path),
	)
	defer func() { endSpan(span, err) }()

	input.LeagueID = strings.TrimSpace(input.LeagueID)
	input.Path = strings.TrimSpace(input.Path)
	if err := validateInput(input); err != nil {
		return LeagueTableResult{}, err
	}

	result = LeagueTableResult{LeagueID: input.LeagueID, Path: input.Path}

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

	podium.SortByRank(rows)
	result.Rows = rows

	if err := s.writer.WriteTable(ctx, input.Path, rows); err != nil {
		return result, fmt.Errorf("write league table: %w", err)
	}

	s.logger.InfoContext(ctx, "league table exported",
		"league_id", input.LeagueID,
		"season_id", item.ID,
		"rows", len(rows),
		"path", input.Path,
	)
	return result, nil
}
