package podium

import "context"

type Repository interface {
	// ListBySeason returns podium rows joined with their club.
	ListBySeason(ctx context.Context, seasonID string) ([]Podium, error)
	UpdateMax(ctx context.Context, updates []MaxUpdate) (int, error)
}
