package memory

import (
	"context"

	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/citizen"
	hr "github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/health_record"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/institute"
)

// Importer loads registry exports. Keys already present are skipped.
type Importer struct{ s *Store }

func (im *Importer) ImportCitizens(ctx context.Context, rows []*citizen.Citizen) (int64, error) {
	im.s.mu.Lock()
	defer im.s.mu.Unlock()

	var n int64
	for _, c := range rows {
		if _, ok := im.s.citizens[c.NationalID]; ok {
			continue
		}
		im.s.citizens[c.NationalID] = *c
		n++
	}
	return n, ctx.Err()
}

func (im *Importer) ImportInstitutes(ctx context.Context, rows []*institute.Institute) (int64, error) {
	im.s.mu.Lock()
	defer im.s.mu.Unlock()

	var n int64
	for _, inst := range rows {
		if inst.ID == 0 {
			inst.ID = im.s.nextInstituteID
		}
		if _, ok := im.s.institutes[inst.ID]; ok {
			continue
		}
		im.s.institutes[inst.ID] = *inst
		if inst.ID >= im.s.nextInstituteID {
			im.s.nextInstituteID = inst.ID + 1
		}
		n++
	}
	return n, ctx.Err()
}

func (im *Importer) ImportRecords(ctx context.Context, rows []*hr.HealthRecord) (int64, error) {
	im.s.mu.Lock()
	defer im.s.mu.Unlock()

	seen := make(map[int64]struct{}, len(im.s.records))
	for _, rec := range im.s.records {
		seen[rec.ID] = struct{}{}
	}

	var n int64
	for _, rec := range rows {
		if rec.ID == 0 {
			rec.ID = im.s.nextRecordID
		}
		if _, ok := seen[rec.ID]; ok {
			continue
		}
		seen[rec.ID] = struct{}{}
		im.s.records = append(im.s.records, *rec)
		if rec.ID >= im.s.nextRecordID {
			im.s.nextRecordID = rec.ID + 1
		}
		n++
	}
	return n, ctx.Err()
}
