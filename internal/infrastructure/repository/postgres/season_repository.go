package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-sync/internal/domain/season"
	qb "github.com/riskibarqy/fantasy-sync/internal/platform/querybuilder"
)

type seasonTableModel struct {
	ID         string `db:"id"`
	LeagueID   string `db:"league_id"`
	ExternalID string `db:"external_id"`
}

type SeasonRepository struct {
	db *sqlx.DB
}

func NewSeasonRepository(db *sqlx.DB) *SeasonRepository {
	return &SeasonRepository{db: db}
}

func (r *SeasonRepository) GetByExternalID(ctx context.Context, externalID string) (season.Season, bool, error) {
	query, args, err := qb.Select("id", "league_id", "external_id").
		From("seasons").
		Where(qb.Eq("external_id", externalID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return season.Season{}, false, fmt.Errorf("build get season query: %w", err)
	}

	var row seasonTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return season.Season{}, false, nil
		}
		return season.Season{}, false, fmt.Errorf("get season external_id=%s: %w", externalID, err)
	}

	return season.Season{
		ID:         row.ID,
		LeagueID:   row.LeagueID,
		ExternalID: row.ExternalID,
	}, true, nil
}
