package service

import (
	"context"
	"sync"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/citizen"
	hr "github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/health_record"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/institute"
	"github.com/google/uuid"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// fakeCitizens counts calls. gate, when set, runs before every lookup and
// may block or fail it.
type fakeCitizens struct {
	mu    sync.Mutex
	rows  map[string]*citizen.Citizen
	err   error
	gate  func(ctx context.Context, nid string) error
	calls int
}

func newFakeCitizens(rows ...*citizen.Citizen) *fakeCitizens {
	f := &fakeCitizens{rows: make(map[string]*citizen.Citizen)}
	for _, c := range rows {
		f.rows[c.NationalID] = c
	}
	return f
}

func (f *fakeCitizens) GetByNationalID(ctx context.Context, nid string) (*citizen.Citizen, error) {
	f.mu.Lock()
	f.calls++
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		if err := gate(ctx, nid); err != nil {
			return nil, err
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.rows[nid]
	if !ok {
		return nil, citizen.ErrCitizenNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCitizens) List(ctx context.Context) ([]*citizen.Citizen, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*citizen.Citizen, 0, len(f.rows))
	for _, c := range f.rows {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCitizens) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeRecords returns rows in insertion order, leaving sorting to the caller.
type fakeRecords struct {
	mu          sync.Mutex
	rows        []*hr.HealthRecord
	nextID      int64
	listErr     error
	createErr   error
	listCalls   int
	createCalls int
}

func (f *fakeRecords) Create(ctx context.Context, r *hr.HealthRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	for _, existing := range f.rows {
		if existing.ID >= f.nextID {
			f.nextID = existing.ID + 1
		}
	}
	r.ID = f.nextID
	cp := *r
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakeRecords) ListByNationalID(ctx context.Context, nid string) ([]*hr.HealthRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*hr.HealthRecord
	for _, r := range f.rows {
		if r.NationalID == nid {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRecords) ListAll(ctx context.Context) ([]*hr.HealthRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]*hr.HealthRecord(nil), f.rows...), nil
}

type fakeInstitutes struct {
	rows []*institute.Institute
	err  error
}

func (f *fakeInstitutes) GetByID(ctx context.Context, id int64) (*institute.Institute, error) {
	for _, i := range f.rows {
		if i.ID == id {
			return i, nil
		}
	}
	return nil, institute.ErrInstituteNotFound
}

func (f *fakeInstitutes) GetByLicenseNumber(ctx context.Context, license string) (*institute.Institute, error) {
	for _, i := range f.rows {
		if i.LicenseNumber == license {
			return i, nil
		}
	}
	return nil, institute.ErrInstituteNotFound
}

func (f *fakeInstitutes) List(ctx context.Context, filter *institute.Filter) ([]*institute.Institute, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*institute.Institute
	for _, i := range f.rows {
		if filter.Matches(i) {
			out = append(out, i)
		}
	}
	return out, nil
}

type fakeAccounts struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*domain.Account
}

func newFakeAccounts(accounts ...*domain.Account) *fakeAccounts {
	f := &fakeAccounts{accounts: make(map[uuid.UUID]*domain.Account)}
	for _, a := range accounts {
		f.accounts[a.ID] = a
	}
	return f
}

func (f *fakeAccounts) Create(ctx context.Context, a *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.accounts {
		if existing.Role == a.Role && existing.Login == a.Login {
			return ErrAccountExists
		}
	}
	a.ID = uuid.New()
	f.accounts[a.ID] = a
	return nil
}

func (f *fakeAccounts) GetByLogin(ctx context.Context, role domain.Role, login string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.Role == role && a.Login == login {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrAccountNotFound
}

func (f *fakeAccounts) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccounts) RecordLoginFailure(ctx context.Context, id uuid.UUID, failedCount int, lockedUntil *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := f.accounts[id]
	a.FailedLoginCount = failedCount
	a.LockedUntil = lockedUntil
	return nil
}

func (f *fakeAccounts) RecordLoginSuccess(ctx context.Context, id uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := f.accounts[id]
	a.FailedLoginCount = 0
	a.LockedUntil = nil
	a.LastLoginAt = &at
	return nil
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
	batches int
}

func (f *fakeAudit) CreateBatch(ctx context.Context, entries []*domain.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches++
	f.entries = append(f.entries, entries...)
	return nil
}

func (f *fakeAudit) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}
