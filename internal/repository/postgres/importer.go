package postgres

import (
	"context"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/citizen"
	hr "github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/health_record"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/institute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const importBatchSize = 500

// Importer bulk-loads registry exports. Rows whose key already exists are
// skipped, so re-running an import is harmless.
type Importer struct {
	db *gorm.DB
}

func (im *Importer) ImportCitizens(ctx context.Context, rows []*citizen.Citizen) (int64, error) {
	return im.insert(ctx, rows, len(rows))
}

func (im *Importer) ImportInstitutes(ctx context.Context, rows []*institute.Institute) (int64, error) {
	n, err := im.insert(ctx, rows, len(rows))
	if err != nil {
		return n, err
	}
	return n, im.resyncSequence(ctx, "health_institutes", "institute_id")
}

func (im *Importer) ImportRecords(ctx context.Context, rows []*hr.HealthRecord) (int64, error) {
	n, err := im.insert(ctx, rows, len(rows))
	if err != nil {
		return n, err
	}
	return n, im.resyncSequence(ctx, "health_records", "record_id")
}

func (im *Importer) insert(ctx context.Context, rows any, count int) (int64, error) {
	if count == 0 {
		return 0, nil
	}
	res := im.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(rows, importBatchSize)
	return res.RowsAffected, res.Error
}

// resyncSequence moves the serial sequence past ids supplied by the export so
// that later inserts do not collide with them.
func (im *Importer) resyncSequence(ctx context.Context, table, column string) error {
	q := fmt.Sprintf(
		"SELECT setval(pg_get_serial_sequence('%[1]s', '%[2]s'), COALESCE((SELECT MAX(%[2]s) FROM %[1]s), 1))",
		table, column,
	)
	if err := im.db.WithContext(ctx).Exec(q).Error; err != nil {
		return fmt.Errorf("resyncing %s.%s sequence: %w", table, column, err)
	}
	return nil
}
