package sleeper

import (
	"github.com/riskibarqy/fantasy-sync/internal/domain/matchup"
	"github.com/riskibarqy/fantasy-sync/internal/usecase"
)

type matchupItem struct {
	RosterID  int      `json:"roster_id"`
	MatchupID *int     `json:"matchup_id"`
	Points    float64  `json:"points"`
	Players   []string `json:"players"`
	Starters  []string `json:"starters"`
}

func (m matchupItem) toParticipant() matchup.Participant {
	matchupID := 0
	if m.MatchupID != nil {
		matchupID = *m.MatchupID
	}
	return matchup.Participant{
		MatchupID: matchupID,
		RosterID:  m.RosterID,
		Players:   m.Players,
		Points:    m.Points,
	}
}

type rosterItem struct {
	RosterID int            `json:"roster_id"`
	OwnerID  *string        `json:"owner_id"`
	LeagueID string         `json:"league_id"`
	Players  []string       `json:"players"`
	Starters []string       `json:"starters"`
	Settings rosterSettings `json:"settings"`
}

type rosterSettings struct {
	Wins               int `json:"wins"`
	Losses             int `json:"losses"`
	Ties               int `json:"ties"`
	Fpts               int `json:"fpts"`
	FptsDecimal        int `json:"fpts_decimal"`
	FptsAgainst        int `json:"fpts_against"`
	FptsAgainstDecimal int `json:"fpts_against_decimal"`
	Ppts               int `json:"ppts"`
	PptsDecimal        int `json:"ppts_decimal"`
}

func (r rosterItem) toExternalRoster() usecase.ExternalRoster {
	ownerID := ""
	if r.OwnerID != nil {
		ownerID = *r.OwnerID
	}
	return usecase.ExternalRoster{
		RosterID:            r.RosterID,
		OwnerID:             ownerID,
		Players:             r.Players,
		Wins:                r.Settings.Wins,
		Losses:              r.Settings.Losses,
		Ties:                r.Settings.Ties,
		PointsFor:           hundredths(r.Settings.Fpts, r.Settings.FptsDecimal),
		PointsAgainst:       hundredths(r.Settings.FptsAgainst, r.Settings.FptsAgainstDecimal),
		MaxPointsWhole:      r.Settings.Ppts,
		MaxPointsHundredths: r.Settings.PptsDecimal,
	}
}

type stateItem struct {
	Week       int    `json:"week"`
	Season     string `json:"season"`
	SeasonType string `json:"season_type"`
}

func hundredths(whole, fraction int) float64 {
	return float64(whole) + float64(fraction)/100
}
