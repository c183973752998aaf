package matchup

// Roster is a team's full set of owned players keyed by the owner identity.
type Roster struct {
	OwnerID string
	Players []string
}

// Participant is one side of a weekly head-to-head. Players holds the starting
// lineup only. MatchupID 0 means the roster has no opponent that week.
type Participant struct {
	MatchupID int
	RosterID  int
	Players   []string
	Points    float64
}

// Resolved pairs two owners with their scores for a week.
type Resolved struct {
	MatchupID int
	OwnerX    string
	ScoreX    float64
	OwnerY    string
	ScoreY    float64
	Week      int
}

// Record is a persisted matchup row. WinnerID is nil on an exact tie.
type Record struct {
	SeasonID string
	ClubXID  string
	ScoreX   float64
	ClubYID  string
	ScoreY   float64
	WinnerID *string
	Week     int
}

// Winner returns the club with the strictly higher score, or nil on a tie.
func (r Record) Winner() *string {
	switch {
	case r.ScoreX > r.ScoreY:
		id := r.ClubXID
		return &id
	case r.ScoreY > r.ScoreX:
		id := r.ClubYID
		return &id
	default:
		return nil
	}
}

// Canonical orders the two clubs by id, carrying their scores along, so a
// game stores under one key whichever side Sleeper lists first.
func (r Record) Canonical() Record {
	if r.ClubXID <= r.ClubYID {
		return r
	}
	r.ClubXID, r.ClubYID = r.ClubYID, r.ClubXID
	r.ScoreX, r.ScoreY = r.ScoreY, r.ScoreX
	return r
}
