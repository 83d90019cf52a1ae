package citizen

import "context"

type Repository interface {
	// GetByNationalID returns exactly one citizen. Returns ErrCitizenNotFound
	// when the registry has no matching row.
	GetByNationalID(ctx context.Context, nationalID string) (*Citizen, error)

	// List returns the full registry for reporting snapshots.
	List(ctx context.Context) ([]*Citizen, error)
}
