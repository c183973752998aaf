package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-sync/internal/domain/club"
	qb "github.com/riskibarqy/fantasy-sync/internal/platform/querybuilder"
)

type clubTableModel struct {
	ID         string         `db:"id"`
	LeagueID   string         `db:"league_id"`
	Name       string         `db:"name"`
	ExternalID sql.NullString `db:"external_id"`
	Active     bool           `db:"active"`
}

type ClubRepository struct {
	db *sqlx.DB
}

func NewClubRepository(db *sqlx.DB) *ClubRepository {
	return &ClubRepository{db: db}
}

func (r *ClubRepository) ListActiveByLeague(ctx context.Context, leagueID string) ([]club.Club, error) {
	query, args, err := qb.Select("id", "league_id", "name", "external_id", "active").
		From("clubs").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("active", true),
		).
		OrderBy("name", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list clubs query: %w", err)
	}

	var rows []clubTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list clubs league_id=%s: %w", leagueID, err)
	}

	out := make([]club.Club, 0, len(rows))
	for _, row := range rows {
		out = append(out, club.Club{
			ID:         row.ID,
			LeagueID:   row.LeagueID,
			Name:       strings.TrimSpace(row.Name),
			ExternalID: strings.TrimSpace(row.ExternalID.String),
			Active:     row.Active,
		})
	}
	return out, nil
}
