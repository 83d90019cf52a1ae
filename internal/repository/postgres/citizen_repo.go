package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/citizen"
	"gorm.io/gorm"
)

type CitizenRepository struct {
	db  *gorm.DB
	obs observer
}

// GetByNationalID maps "no rows" to citizen.ErrCitizenNotFound so callers
// can tell an unregistered NID from a store failure.
func (r *CitizenRepository) GetByNationalID(ctx context.Context, nationalID string) (*citizen.Citizen, error) {
	defer r.obs.since("get", "citizens", time.Now())

	var c citizen.Citizen
	err := r.db.WithContext(ctx).Where("nid_number = ?", nationalID).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, citizen.ErrCitizenNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *CitizenRepository) List(ctx context.Context) ([]*citizen.Citizen, error) {
	defer r.obs.since("list", "citizens", time.Now())

	var citizens []*citizen.Citizen
	err := r.db.WithContext(ctx).Order("nid_number ASC").Find(&citizens).Error
	return citizens, err
}
