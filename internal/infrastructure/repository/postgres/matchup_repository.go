package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-sync/internal/domain/matchup"
	qb "github.com/riskibarqy/fantasy-sync/internal/platform/querybuilder"
)

// matchupInsertBatch keeps a single statement well under the 65535 bind
// parameter limit of the postgres protocol.
const matchupInsertBatch = 500

type matchupInsertModel struct {
	SeasonID string  `db:"season_id"`
	ClubXID  string  `db:"club_x_id"`
	ScoreX   float64 `db:"score_x"`
	ClubYID  string  `db:"club_y_id"`
	ScoreY   float64 `db:"score_y"`
	WinnerID *string `db:"winner_id"`
	Week     int     `db:"week"`
}

type MatchupRepository struct {
	db *sqlx.DB
}

func NewMatchupRepository(db *sqlx.DB) *MatchupRepository {
	return &MatchupRepository{db: db}
}

// Insert upserts the rows in one transaction keyed by season, week and clubs.
// Re-running a week overwrites scores instead of duplicating rows.
func (r *MatchupRepository) Insert(ctx context.Context, records []matchup.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	stored := 0
	err := inTx(ctx, r.db, "insert matchups", func(tx *sqlx.Tx) error {
		for start := 0; start < len(records); start += matchupInsertBatch {
			end := min(start+matchupInsertBatch, len(records))
			n, err := insertMatchupBatch(ctx, tx, records[start:end])
			if err != nil {
				return err
			}
			stored += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return stored, nil
}

func insertMatchupBatch(ctx context.Context, tx *sqlx.Tx, records []matchup.Record) (int, error) {
	models := make([]matchupInsertModel, 0, len(records))
	for _, item := range records {
		models = append(models, matchupInsertModel{
			SeasonID: item.SeasonID,
			ClubXID:  item.ClubXID,
			ScoreX:   item.ScoreX,
			ClubYID:  item.ClubYID,
			ScoreY:   item.ScoreY,
			WinnerID: item.WinnerID,
			Week:     item.Week,
		})
	}

	builder, err := qb.InsertModels("matchups", models)
	if err != nil {
		return 0, fmt.Errorf("build insert matchups query: %w", err)
	}
	query, args, err := builder.
		OnConflict("season_id", "week", "club_x_id", "club_y_id").
		DoUpdate("score_x", "score_y", "winner_id").
		Returning("id").
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build insert matchups query: %w", err)
	}

	var ids []string
	if err := tx.SelectContext(ctx, &ids, query, args...); err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("insert matchups: unknown season or club: %w", err)
		}
		return 0, fmt.Errorf("insert matchups: %w", err)
	}
	return len(ids), nil
}
