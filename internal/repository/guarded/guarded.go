// Package guarded wraps the read/write repositories in circuit breakers so a
// failing store is reported quickly instead of stacking up timed-out calls.
// Not-found results count as successful calls.
package guarded

import (
	"context"
	"errors"

	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/config"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/citizen"
	hr "github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/health_record"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/institute"
	"github.com/dmehra2102/prod-golang-projects/healthportal/pkg/metrics"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

func newBreaker(name string, cfg config.StoreConfig, m *metrics.Collector, log *zap.Logger) *gobreaker.CircuitBreaker[any] {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	if m != nil {
		m.BreakerState.WithLabelValues(name).Set(float64(gobreaker.StateClosed))
	}

	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.HalfOpenRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("store circuit breaker changed state",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if m != nil {
				m.BreakerState.WithLabelValues(name).Set(float64(to))
			}
		},
		IsSuccessful: isSuccessful,
	})
}

func isSuccessful(err error) bool {
	return err == nil ||
		errors.Is(err, citizen.ErrCitizenNotFound) ||
		errors.Is(err, institute.ErrInstituteNotFound) ||
		errors.Is(err, context.Canceled)
}

func execute[T any](cb *gobreaker.CircuitBreaker[any], fn func() (T, error)) (T, error) {
	out, err := cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out.(T), nil
}

type CitizenRepository struct {
	next citizen.Repository
	cb   *gobreaker.CircuitBreaker[any]
}

func NewCitizenRepository(next citizen.Repository, cfg config.StoreConfig, m *metrics.Collector, log *zap.Logger) *CitizenRepository {
	return &CitizenRepository{next: next, cb: newBreaker("citizens", cfg, m, log)}
}

func (r *CitizenRepository) GetByNationalID(ctx context.Context, nationalID string) (*citizen.Citizen, error) {
	return execute(r.cb, func() (*citizen.Citizen, error) {
		return r.next.GetByNationalID(ctx, nationalID)
	})
}

func (r *CitizenRepository) List(ctx context.Context) ([]*citizen.Citizen, error) {
	return execute(r.cb, func() ([]*citizen.Citizen, error) {
		return r.next.List(ctx)
	})
}

type RecordRepository struct {
	next hr.Repository
	cb   *gobreaker.CircuitBreaker[any]
}

func NewRecordRepository(next hr.Repository, cfg config.StoreConfig, m *metrics.Collector, log *zap.Logger) *RecordRepository {
	return &RecordRepository{next: next, cb: newBreaker("health_records", cfg, m, log)}
}

func (r *RecordRepository) Create(ctx context.Context, rec *hr.HealthRecord) error {
	_, err := execute(r.cb, func() (struct{}, error) {
		return struct{}{}, r.next.Create(ctx, rec)
	})
	return err
}

func (r *RecordRepository) ListByNationalID(ctx context.Context, nationalID string) ([]*hr.HealthRecord, error) {
	return execute(r.cb, func() ([]*hr.HealthRecord, error) {
		return r.next.ListByNationalID(ctx, nationalID)
	})
}

func (r *RecordRepository) ListAll(ctx context.Context) ([]*hr.HealthRecord, error) {
	return execute(r.cb, func() ([]*hr.HealthRecord, error) {
		return r.next.ListAll(ctx)
	})
}

type InstituteRepository struct {
	next institute.Repository
	cb   *gobreaker.CircuitBreaker[any]
}

func NewInstituteRepository(next institute.Repository, cfg config.StoreConfig, m *metrics.Collector, log *zap.Logger) *InstituteRepository {
	return &InstituteRepository{next: next, cb: newBreaker("health_institutes", cfg, m, log)}
}

func (r *InstituteRepository) GetByID(ctx context.Context, id int64) (*institute.Institute, error) {
	return execute(r.cb, func() (*institute.Institute, error) {
		return r.next.GetByID(ctx, id)
	})
}

func (r *InstituteRepository) GetByLicenseNumber(ctx context.Context, license string) (*institute.Institute, error) {
	return execute(r.cb, func() (*institute.Institute, error) {
		return r.next.GetByLicenseNumber(ctx, license)
	})
}

func (r *InstituteRepository) List(ctx context.Context, f *institute.Filter) ([]*institute.Institute, error) {
	return execute(r.cb, func() ([]*institute.Institute, error) {
		return r.next.List(ctx, f)
	})
}
