// Package postgres implements the domain repositories on gorm over
// PostgreSQL.
package postgres

import (
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthportal/pkg/metrics"
	"gorm.io/gorm"
)

// Store bundles the repositories that share one connection pool.
type Store struct {
	Citizens   *CitizenRepository
	Records    *RecordRepository
	Institutes *InstituteRepository
	Accounts   *AccountRepository
	Audit      *AuditRepository
	Importer   *Importer
}

func NewStore(db *gorm.DB, m *metrics.Collector) *Store {
	obs := observer{m: m}
	return &Store{
		Citizens:   &CitizenRepository{db: db, obs: obs},
		Records:    &RecordRepository{db: db, obs: obs},
		Institutes: &InstituteRepository{db: db, obs: obs},
		Accounts:   &AccountRepository{db: db},
		Audit:      &AuditRepository{db: db},
		Importer:   &Importer{db: db},
	}
}

type observer struct {
	m *metrics.Collector
}

func (o observer) since(operation, table string, start time.Time) {
	if o.m == nil {
		return
	}
	o.m.StoreCallDuration.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}
