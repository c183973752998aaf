package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/fantasy-sync/internal/domain/season"
	idgen "github.com/riskibarqy/fantasy-sync/internal/platform/id"
)

var inputValidator = validator.New(validator.WithRequiredStructEnabled())

func validateInput(input any) error {
	if err := inputValidator.Struct(input); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// resolveSeason finds the season registered for a Sleeper league id.
func resolveSeason(ctx context.Context, repo season.Repository, sleeperLeagueID string) (season.Season, error) {
	item, ok, err := repo.GetByExternalID(ctx, strings.TrimSpace(sleeperLeagueID))
	if err != nil {
		return season.Season{}, fmt.Errorf("get season by sleeper league id=%s: %w", sleeperLeagueID, err)
	}
	if !ok {
		return season.Season{}, fmt.Errorf("%w: no season for sleeper league id=%s", ErrNotFound, sleeperLeagueID)
	}
	if err := item.Validate(); err != nil {
		return season.Season{}, fmt.Errorf("season for sleeper league id=%s: %w", sleeperLeagueID, err)
	}
	return item, nil
}

func newRunID(ids idgen.Generator) string {
	if ids == nil {
		return ""
	}
	runID, err := ids.NewID()
	if err != nil {
		return ""
	}
	return runID
}
