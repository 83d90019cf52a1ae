package health_record

import "context"

// Repository is append-only: there is no update or delete.
type Repository interface {
	// Create inserts r and fills in its ID and CreatedAt.
	Create(ctx context.Context, r *HealthRecord) error

	// ListByNationalID returns every record of one citizen, newest first.
	// A citizen with no records yields an empty slice and no error.
	ListByNationalID(ctx context.Context, nationalID string) ([]*HealthRecord, error)

	// ListAll returns the full collection for reporting snapshots.
	ListAll(ctx context.Context) ([]*HealthRecord, error)
}
