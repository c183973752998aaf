package club

import "context"

type Repository interface {
	// ListActiveByLeague returns the clubs currently playing in the league.
	ListActiveByLeague(ctx context.Context, leagueID string) ([]Club, error)
}
