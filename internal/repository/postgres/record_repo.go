package postgres

import (
	"context"
	"time"

	hr "github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/health_record"
	"gorm.io/gorm"
)

type RecordRepository struct {
	db  *gorm.DB
	obs observer
}

func (r *RecordRepository) Create(ctx context.Context, rec *hr.HealthRecord) error {
	defer r.obs.since("insert", "health_records", time.Now())
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *RecordRepository) ListByNationalID(ctx context.Context, nationalID string) ([]*hr.HealthRecord, error) {
	defer r.obs.since("list", "health_records", time.Now())

	records := make([]*hr.HealthRecord, 0)
	err := r.db.WithContext(ctx).
		Where("nid_number = ?", nationalID).
		Order("issued_date DESC").
		Order("record_id ASC").
		Find(&records).Error
	return records, err
}

func (r *RecordRepository) ListAll(ctx context.Context) ([]*hr.HealthRecord, error) {
	defer r.obs.since("list_all", "health_records", time.Now())

	var records []*hr.HealthRecord
	err := r.db.WithContext(ctx).Order("record_id ASC").Find(&records).Error
	return records, err
}
