package podium

// RosterPoints carries the potential points of a roster as Sleeper reports
// them: a whole part and a hundredths part.
type RosterPoints struct {
	OwnerID    string
	Whole      int
	Hundredths int
}

// MaxPointsByOwner computes whole + hundredths/100 per owner. Owners with no
// potential points yet (before week one) are left out.
func MaxPointsByOwner(items []RosterPoints) map[string]float64 {
	out := make(map[string]float64, len(items))
	for _, item := range items {
		if item.OwnerID == "" {
			continue
		}
		value := float64(item.Whole) + float64(item.Hundredths)/100
		if value <= 0 {
			continue
		}
		out[item.OwnerID] = value
	}
	return out
}

// BuildMaxUpdates pairs podium rows with the max of their club's owner.
// Rows without a non-zero max are left untouched.
func BuildMaxUpdates(seasonID string, rows []Podium, maxes map[string]float64) []MaxUpdate {
	out := make([]MaxUpdate, 0, len(rows))
	for _, row := range rows {
		value, ok := maxes[row.ClubExternalID]
		if !ok || value == 0 {
			continue
		}
		out = append(out, MaxUpdate{
			PodiumID: row.ID,
			SeasonID: seasonID,
			ClubID:   row.ClubID,
			Max:      value,
		})
	}
	return out
}
