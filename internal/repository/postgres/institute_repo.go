package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/institute"
	"gorm.io/gorm"
)

type InstituteRepository struct {
	db  *gorm.DB
	obs observer
}

func (r *InstituteRepository) GetByID(ctx context.Context, id int64) (*institute.Institute, error) {
	defer r.obs.since("get", "health_institutes", time.Now())

	var inst institute.Institute
	err := r.db.WithContext(ctx).Where("institute_id = ?", id).First(&inst).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, institute.ErrInstituteNotFound
		}
		return nil, err
	}
	return &inst, nil
}

func (r *InstituteRepository) GetByLicenseNumber(ctx context.Context, license string) (*institute.Institute, error) {
	defer r.obs.since("get_by_license", "health_institutes", time.Now())

	var inst institute.Institute
	err := r.db.WithContext(ctx).Where("license_number = ?", license).First(&inst).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, institute.ErrInstituteNotFound
		}
		return nil, err
	}
	return &inst, nil
}

func (r *InstituteRepository) List(ctx context.Context, f *institute.Filter) ([]*institute.Institute, error) {
	defer r.obs.since("list", "health_institutes", time.Now())

	query := r.db.WithContext(ctx).Model(&institute.Institute{})
	if f != nil {
		if f.Type != nil {
			query = query.Where("type = ?", *f.Type)
		}
		if f.Ownership != nil {
			query = query.Where("ownership = ?", *f.Ownership)
		}
		if f.Active != nil {
			query = query.Where("is_active = ?", *f.Active)
		}
		if term := strings.TrimSpace(f.Search); term != "" {
			like := "%" + escapeLike(strings.ToLower(term)) + "%"
			query = query.Where(
				"LOWER(name) LIKE ? OR LOWER(license_number) LIKE ? OR LOWER(address) LIKE ?",
				like, like, like,
			)
		}
	}

	var institutes []*institute.Institute
	err := query.Order("institute_id ASC").Find(&institutes).Error
	return institutes, err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
