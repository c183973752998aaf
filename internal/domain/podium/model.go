package podium

import "sort"

// Podium is the season-long standings row for one club.
type Podium struct {
	ID             string
	SeasonID       string
	ClubID         string
	ClubName       string
	ClubExternalID string
	Rank           int
	Win            int
	Loss           int
	Draw           int
	PointsFor      float64
	PointsAgainst  float64
	Max            float64
}

// MaxUpdate sets the max points-for value of an existing podium row.
type MaxUpdate struct {
	PodiumID string
	SeasonID string
	ClubID   string
	Max      float64
}

// SortByRank orders rows by ascending rank, unranked rows last.
func SortByRank(items []Podium) {
	sort.SliceStable(items, func(i, j int) bool {
		left, right := items[i].Rank, items[j].Rank
		if left <= 0 || right <= 0 {
			return left > 0 && right <= 0
		}
		return left < right
	})
}
