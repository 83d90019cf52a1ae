package service

import (
	"context"
	"errors"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/citizen"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ResolvedIdentity is a citizen plus the fields derived at lookup time.
type ResolvedIdentity struct {
	Citizen  *citizen.Citizen
	Age      int
	District string
}

type IdentityService struct {
	repo    citizen.Repository
	timeout time.Duration
	log     *zap.Logger
	now     func() time.Time
}

func NewIdentityService(repo citizen.Repository, timeout time.Duration, log *zap.Logger) *IdentityService {
	return &IdentityService{repo: repo, timeout: timeout, log: log, now: time.Now}
}

// Resolve fetches exactly one citizen by national ID. A blank ID is rejected
// before the store is touched; "no rows" comes back as
// citizen.ErrCitizenNotFound and every other failure as *TransientError.
func (s *IdentityService) Resolve(ctx context.Context, nationalID string) (*ResolvedIdentity, error) {
	nid := citizen.NormalizeNationalID(nationalID)
	if nid == "" {
		return nil, &ValidationError{Fields: []string{"national_id is required"}}
	}

	ctx, span := tracer.Start(ctx, "IdentityService.Resolve")
	defer span.End()
	span.SetAttributes(attribute.String("citizen.nid", nid))

	callCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	c, err := s.repo.GetByNationalID(callCtx, nid)
	if err != nil {
		if errors.Is(err, citizen.ErrCitizenNotFound) {
			return nil, citizen.ErrCitizenNotFound
		}
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		recordSpanError(span, err)
		s.log.Error("citizen lookup failed", zap.String("nid", nid), zap.Error(err))
		return nil, transient("looking up citizen", err)
	}

	return &ResolvedIdentity{
		Citizen:  c,
		Age:      c.Age(s.now()),
		District: c.DistrictName(),
	}, nil
}
