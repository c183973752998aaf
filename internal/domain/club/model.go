package club

// Club is a fantasy team inside a league. ExternalID is the Sleeper owner id.
type Club struct {
	ID         string
	LeagueID   string
	Name       string
	ExternalID string
	Active     bool
}

// Lookup maps Sleeper owner ids to club ids.
type Lookup map[string]string

func NewLookup(clubs []Club) Lookup {
	out := make(Lookup, len(clubs))
	for _, item := range clubs {
		if item.ExternalID == "" {
			continue
		}
		out[item.ExternalID] = item.ID
	}
	return out
}
