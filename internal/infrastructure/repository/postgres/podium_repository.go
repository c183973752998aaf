package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-sync/internal/domain/podium"
	qb "github.com/riskibarqy/fantasy-sync/internal/platform/querybuilder"
)

type podiumTableModel struct {
	ID             string          `db:"id"`
	SeasonID       string          `db:"season_id"`
	ClubID         string          `db:"club_id"`
	ClubName       string          `db:"club_name"`
	ClubExternalID sql.NullString  `db:"club_external_id"`
	Rank           sql.NullInt64   `db:"rank"`
	Win            int             `db:"win"`
	Loss           int             `db:"loss"`
	Draw           int             `db:"draw"`
	PointsFor      float64         `db:"points_for"`
	PointsAgainst  float64         `db:"points_against"`
	Max            sql.NullFloat64 `db:"max"`
}

type PodiumRepository struct {
	db *sqlx.DB
}

func NewPodiumRepository(db *sqlx.DB) *PodiumRepository {
	return &PodiumRepository{db: db}
}

func (r *PodiumRepository) ListBySeason(ctx context.Context, seasonID string) ([]podium.Podium, error) {
	query, args, err := qb.Select(
		"p.id",
		"p.season_id",
		"p.club_id",
		"c.name AS club_name",
		"c.external_id AS club_external_id",
		"p.rank",
		"p.win",
		"p.loss",
		"p.draw",
		"p.points_for",
		"p.points_against",
		"p.max",
	).
		From("podiums p").
		Join("clubs c", "c.id = p.club_id").
		Where(qb.Eq("p.season_id", seasonID)).
		OrderBy("p.rank NULLS LAST", "c.name").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list podiums query: %w", err)
	}

	var rows []podiumTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list podiums season_id=%s: %w", seasonID, err)
	}

	out := make([]podium.Podium, 0, len(rows))
	for _, row := range rows {
		out = append(out, podium.Podium{
			ID:             row.ID,
			SeasonID:       row.SeasonID,
			ClubID:         row.ClubID,
			ClubName:       strings.TrimSpace(row.ClubName),
			ClubExternalID: strings.TrimSpace(row.ClubExternalID.String),
			Rank:           int(row.Rank.Int64),
			Win:            row.Win,
			Loss:           row.Loss,
			Draw:           row.Draw,
			PointsFor:      row.PointsFor,
			PointsAgainst:  row.PointsAgainst,
			Max:            row.Max.Float64,
		})
	}
	return out, nil
}

// UpdateMax writes every update in one transaction and returns the number of
// podium rows changed.
func (r *PodiumRepository) UpdateMax(ctx context.Context, updates []podium.MaxUpdate) (int, error) {
	if len(updates) == 0 {
		return 0, nil
	}

	updated := 0
	err := inTx(ctx, r.db, "update podium max", func(tx *sqlx.Tx) error {
		for _, item := range updates {
			query, args, err := qb.Update("podiums").
				Set("max", item.Max).
				SetExpr("updated_at", "NOW()").
				Where(
					qb.Eq("id", item.PodiumID),
					qb.Eq("season_id", item.SeasonID),
				).
				ToSQL()
			if err != nil {
				return fmt.Errorf("build update podium max query: %w", err)
			}

			res, err := tx.ExecContext(ctx, query, args...)
			if err != nil {
				return fmt.Errorf("update podium max id=%s: %w", item.PodiumID, err)
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("podium max rows affected id=%s: %w", item.PodiumID, err)
			}
			updated += int(affected)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}
