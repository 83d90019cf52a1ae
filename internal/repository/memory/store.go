// Package memory is an in-process implementation of the domain repositories.
// It backs the sandbox server and the service tests. Every read hands out
// copies, so callers never alias stored rows.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/citizen"
	hr "github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/health_record"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/institute"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/service"
	"github.com/google/uuid"
)

type Store struct {
	mu sync.RWMutex

	citizens   map[string]citizen.Citizen
	institutes map[int64]institute.Institute
	records    []hr.HealthRecord
	accounts   map[uuid.UUID]domain.Account
	audit      []domain.AuditLog

	nextRecordID    int64
	nextInstituteID int64

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		citizens:        make(map[string]citizen.Citizen),
		institutes:      make(map[int64]institute.Institute),
		accounts:        make(map[uuid.UUID]domain.Account),
		nextRecordID:    1,
		nextInstituteID: 1,
		now:             time.Now,
	}
}

func (s *Store) Citizens() *CitizenRepository     { return &CitizenRepository{s: s} }
func (s *Store) Records() *RecordRepository       { return &RecordRepository{s: s} }
func (s *Store) Institutes() *InstituteRepository { return &InstituteRepository{s: s} }
func (s *Store) Accounts() *AccountRepository     { return &AccountRepository{s: s} }
func (s *Store) Audit() *AuditRepository          { return &AuditRepository{s: s} }
func (s *Store) Importer() *Importer              { return &Importer{s: s} }

type CitizenRepository struct{ s *Store }

func (r *CitizenRepository) GetByNationalID(ctx context.Context, nationalID string) (*citizen.Citizen, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.citizens[nationalID]
	if !ok {
		return nil, citizen.ErrCitizenNotFound
	}
	return &c, nil
}

func (r *CitizenRepository) List(ctx context.Context) ([]*citizen.Citizen, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*citizen.Citizen, 0, len(r.s.citizens))
	for _, c := range r.s.citizens {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NationalID < out[j].NationalID })
	return out, nil
}

type RecordRepository struct{ s *Store }

func (r *RecordRepository) Create(ctx context.Context, rec *hr.HealthRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec.ID = r.s.nextRecordID
	r.s.nextRecordID++
	rec.CreatedAt = r.s.now()
	r.s.records = append(r.s.records, *rec)
	return nil
}

func (r *RecordRepository) ListByNationalID(ctx context.Context, nationalID string) ([]*hr.HealthRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*hr.HealthRecord, 0)
	for _, rec := range r.s.records {
		if rec.NationalID == nationalID {
			rec := rec
			out = append(out, &rec)
		}
	}
	hr.SortNewestFirst(out)
	return out, nil
}

func (r *RecordRepository) ListAll(ctx context.Context) ([]*hr.HealthRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*hr.HealthRecord, 0, len(r.s.records))
	for _, rec := range r.s.records {
		rec := rec
		out = append(out, &rec)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type InstituteRepository struct{ s *Store }

func (r *InstituteRepository) GetByID(ctx context.Context, id int64) (*institute.Institute, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	inst, ok := r.s.institutes[id]
	if !ok {
		return nil, institute.ErrInstituteNotFound
	}
	return &inst, nil
}

func (r *InstituteRepository) GetByLicenseNumber(ctx context.Context, license string) (*institute.Institute, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, inst := range r.s.institutes {
		if inst.LicenseNumber == license {
			return &inst, nil
		}
	}
	return nil, institute.ErrInstituteNotFound
}

func (r *InstituteRepository) List(ctx context.Context, f *institute.Filter) ([]*institute.Institute, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*institute.Institute, 0, len(r.s.institutes))
	for _, inst := range r.s.institutes {
		inst := inst
		if f.Matches(&inst) {
			out = append(out, &inst)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type AccountRepository struct{ s *Store }

func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	for _, existing := range r.s.accounts {
		if existing.Role == a.Role && existing.Login == a.Login {
			return service.ErrAccountExists
		}
	}
	a.CreatedAt = r.s.now()
	a.UpdatedAt = a.CreatedAt
	r.s.accounts[a.ID] = *a
	return nil
}

func (r *AccountRepository) GetByLogin(ctx context.Context, role domain.Role, login string) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, a := range r.s.accounts {
		if a.Role == role && a.Login == login {
			return &a, nil
		}
	}
	return nil, service.ErrAccountNotFound
}

func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.accounts[id]
	if !ok {
		return nil, service.ErrAccountNotFound
	}
	return &a, nil
}

func (r *AccountRepository) RecordLoginFailure(ctx context.Context, id uuid.UUID, failedCount int, lockedUntil *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.accounts[id]
	if !ok {
		return service.ErrAccountNotFound
	}
	a.FailedLoginCount = failedCount
	a.LockedUntil = lockedUntil
	r.s.accounts[id] = a
	return nil
}

func (r *AccountRepository) RecordLoginSuccess(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.accounts[id]
	if !ok {
		return service.ErrAccountNotFound
	}
	a.FailedLoginCount = 0
	a.LockedUntil = nil
	a.LastLoginAt = &at
	r.s.accounts[id] = a
	return nil
}

type AuditRepository struct{ s *Store }

func (r *AuditRepository) CreateBatch(ctx context.Context, entries []*domain.AuditLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, entry := range entries {
		if entry.ID == uuid.Nil {
			entry.ID = uuid.New()
		}
		if entry.OccurredAt.IsZero() {
			entry.OccurredAt = r.s.now()
		}
		r.s.audit = append(r.s.audit, *entry)
	}
	return nil
}

// Entries returns a copy of the audit trail.
func (r *AuditRepository) Entries() []domain.AuditLog {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.AuditLog, len(r.s.audit))
	copy(out, r.s.audit)
	return out
}
