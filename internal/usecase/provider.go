package usecase

import (
	"context"

	"github.com/riskibarqy/fantasy-sync/internal/domain/matchup"
)

// ExternalRoster is a Sleeper roster with the settings the jobs consume.
type ExternalRoster struct {
	RosterID            int
	OwnerID             string
	Players             []string
	Wins                int
	Losses              int
	Ties                int
	PointsFor           float64
	PointsAgainst       float64
	MaxPointsWhole      int
	MaxPointsHundredths int
}

// ExternalState is the provider's view of the current NFL calendar.
type ExternalState struct {
	Season     string
	SeasonType string
	Week       int
}

// LeagueProvider reads league data from the hosting API.
type LeagueProvider interface {
	FetchMatchups(ctx context.Context, leagueID string, week int) ([]matchup.Participant, error)
	FetchRosters(ctx context.Context, leagueID string) ([]ExternalRoster, error)
	FetchState(ctx context.Context) (ExternalState, error)
}

func rostersForMatching(items []ExternalRoster) []matchup.Roster {
	out := make([]matchup.Roster, 0, len(items))
	for _, item := range items {
		out = append(out, matchup.Roster{OwnerID: item.OwnerID, Players: item.Players})
	}
	return out
}
