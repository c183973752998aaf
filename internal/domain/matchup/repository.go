package matchup

import "context"

// Repository persists resolved matchup rows.
type Repository interface {
	// Insert writes the rows and returns how many were stored.
	Insert(ctx context.Context, records []Record) (int, error)
}
