package season

import "context"

// Repository describes season lookups needed by the sync jobs.
type Repository interface {
	GetByExternalID(ctx context.Context, externalID string) (Season, bool, error)
}
