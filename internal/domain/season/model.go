package season

import "fmt"

// Season links a Sleeper league to the internal league it belongs to.
type Season struct {
	ID         string
	LeagueID   string
	ExternalID string
}

func (s Season) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("season id is required")
	}
	if s.LeagueID == "" {
		return fmt.Errorf("season league id is required")
	}

	return nil
}
