package institute

import "context"

type Repository interface {
	// GetByID returns ErrInstituteNotFound if no institute has the id.
	GetByID(ctx context.Context, id int64) (*Institute, error)

	GetByLicenseNumber(ctx context.Context, license string) (*Institute, error)

	// List returns institutes matching f ordered by id. A nil filter lists all.
	List(ctx context.Context, f *Filter) ([]*Institute, error)
}
