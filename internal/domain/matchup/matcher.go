package matchup

import (
	"fmt"
	"sort"
	"strings"

	crerr "github.com/cockroachdb/errors"
)

var (
	ErrUnresolvedParticipant = crerr.New("no roster found for matchup participant")
	ErrDuplicateAssignment   = crerr.New("owner assigned to multiple matchup participants")
	ErrInvalidGroupSize      = crerr.New("matchup group must contain exactly two participants")
)

// DefaultThreshold is the minimum share of a participant's lineup that must
// belong to a roster for the two to be considered the same team.
const DefaultThreshold = 0.35

// Policy selects how a participant picks among qualifying rosters.
type Policy string

const (
	// PolicyFirstMatch binds the first qualifying roster in input order.
	PolicyFirstMatch Policy = "first"
	// PolicyBestMatch binds the roster with the highest overlap, lowest owner id on ties.
	PolicyBestMatch Policy = "best"
)

// Matcher assigns matchup participants to roster owners by lineup overlap.
type Matcher struct {
	Threshold float64
	Policy    Policy
}

func DefaultMatcher() Matcher {
	return Matcher{
		Threshold: DefaultThreshold,
		Policy:    PolicyFirstMatch,
	}
}

type rosterSet struct {
	ownerID string
	players map[string]struct{}
}

// Match resolves every scheduled matchup of the week to a pair of owners.
// It either resolves all groups or returns an error and no results.
func (m Matcher) Match(participants []Participant, rosters []Roster, week int) ([]Resolved, error) {
	groups, order := groupParticipants(participants)

	candidates := make([]rosterSet, 0, len(rosters))
	for _, roster := range rosters {
		// orphaned rosters have no owner to bind to
		if roster.OwnerID == "" {
			continue
		}
		candidates = append(candidates, rosterSet{ownerID: roster.OwnerID, players: toSet(roster.Players)})
	}

	out := make([]Resolved, 0, len(order))
	for _, matchupID := range order {
		teams := groups[matchupID]
		if len(teams) != 2 {
			return nil, crerr.Wrapf(ErrInvalidGroupSize, "matchup id %d has %d participants", matchupID, len(teams))
		}

		x, y := teams[0], teams[1]
		ownerX, ownerY := m.bind(toSet(x.Players), toSet(y.Players), candidates)
		if ownerX == "" || ownerY == "" {
			err := crerr.Wrapf(ErrUnresolvedParticipant, "matchup id %d (x=%t y=%t)", matchupID, ownerX != "", ownerY != "")
			return nil, crerr.WithHint(err, "lower the overlap threshold or check the roster data")
		}

		out = append(out, Resolved{
			MatchupID: matchupID,
			OwnerX:    ownerX,
			ScoreX:    x.Points,
			OwnerY:    ownerY,
			ScoreY:    y.Points,
			Week:      week,
		})
	}

	if err := ensureUniqueOwners(out); err != nil {
		return nil, err
	}

	return out, nil
}

func (m Matcher) bind(playersX, playersY map[string]struct{}, candidates []rosterSet) (string, string) {
	if m.Policy == PolicyBestMatch {
		return m.best(playersX, candidates), m.best(playersY, candidates)
	}

	var ownerX, ownerY string
	for _, candidate := range candidates {
		if ownerX != "" && ownerY != "" {
			break
		}
		if ownerX == "" && m.qualifies(playersX, candidate.players) {
			ownerX = candidate.ownerID
		}
		if ownerY == "" && m.qualifies(playersY, candidate.players) {
			ownerY = candidate.ownerID
		}
	}
	return ownerX, ownerY
}

func (m Matcher) best(players map[string]struct{}, candidates []rosterSet) string {
	bestOwner := ""
	bestFraction := -1.0
	for _, candidate := range candidates {
		fraction, ok := overlapFraction(players, candidate.players)
		if !ok || !m.clears(fraction) {
			continue
		}
		if fraction > bestFraction || (fraction == bestFraction && candidate.ownerID < bestOwner) {
			bestOwner = candidate.ownerID
			bestFraction = fraction
		}
	}
	return bestOwner
}

func (m Matcher) qualifies(participant, roster map[string]struct{}) bool {
	fraction, ok := overlapFraction(participant, roster)
	return ok && m.clears(fraction)
}

// clears reports whether fraction meets the inclusive threshold.
func (m Matcher) clears(fraction float64) bool {
	return fraction >= m.Threshold
}

// overlapFraction is |participant ∩ roster| / |participant|. It reports false
// for an empty participant set.
func overlapFraction(participant, roster map[string]struct{}) (float64, bool) {
	if len(participant) == 0 {
		return 0, false
	}
	shared := 0
	for id := range participant {
		if _, ok := roster[id]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(participant)), true
}

func groupParticipants(participants []Participant) (map[int][]Participant, []int) {
	groups := make(map[int][]Participant, len(participants)/2)
	order := make([]int, 0, len(participants)/2)
	for _, item := range participants {
		if item.MatchupID == 0 {
			continue
		}
		if _, seen := groups[item.MatchupID]; !seen {
			order = append(order, item.MatchupID)
		}
		groups[item.MatchupID] = append(groups[item.MatchupID], item)
	}
	return groups, order
}

func ensureUniqueOwners(items []Resolved) error {
	seen := make(map[string]int, len(items)*2)
	var duplicates []string
	for _, item := range items {
		for _, owner := range []string{item.OwnerX, item.OwnerY} {
			if first, ok := seen[owner]; ok {
				duplicates = append(duplicates, fmt.Sprintf("%s (matchup ids %d, %d)", owner, first, item.MatchupID))
				continue
			}
			seen[owner] = item.MatchupID
		}
	}
	if len(duplicates) == 0 {
		return nil
	}
	sort.Strings(duplicates)
	return crerr.Wrapf(ErrDuplicateAssignment, "%s", strings.Join(duplicates, "; "))
}

func toSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}
