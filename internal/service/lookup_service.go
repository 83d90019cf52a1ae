package service

import (
	"context"
	"errors"

	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/citizen"
	hr "github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/health_record"
	"github.com/dmehra2102/prod-golang-projects/healthportal/pkg/metrics"
	"go.uber.org/zap"
)

// PatientView is what the hospital portal shows after a search. A failed
// record fetch leaves Records empty and sets RecordsError; the identity is
// still valid.
type PatientView struct {
	Identity     *ResolvedIdentity
	Records      []*hr.HealthRecord
	RecordsError string
}

type AddResult struct {
	Record       *hr.HealthRecord
	Records      []*hr.HealthRecord
	RecordsError string
}

type LookupService struct {
	identity *IdentityService
	records  *RecordService
	tracker  *SearchTracker
	auditSvc *AuditService
	metrics  *metrics.Collector
	log      *zap.Logger
}

func NewLookupService(identity *IdentityService, records *RecordService, tracker *SearchTracker, auditSvc *AuditService, m *metrics.Collector, log *zap.Logger) *LookupService {
	return &LookupService{
		identity: identity,
		records:  records,
		tracker:  tracker,
		auditSvc: auditSvc,
		metrics:  m,
		log:      log,
	}
}

// Lookup resolves nid and then fetches its records. A newer Lookup in the same
// session cancels this one, which then returns ErrSuperseded.
func (s *LookupService) Lookup(ctx context.Context, session, nationalID string, actor Actor) (*PatientView, error) {
	ctx, tok := s.tracker.Begin(ctx, session)
	defer s.tracker.End(tok)

	identity, err := s.identity.Resolve(ctx, nationalID)
	if !s.tracker.IsCurrent(tok) {
		return nil, s.superseded(session)
	}
	if err != nil {
		s.observe(lookupOutcome(err))
		return nil, err
	}

	view := &PatientView{Identity: identity}

	records, err := s.records.ListRecords(ctx, identity.Citizen.NationalID)
	if !s.tracker.IsCurrent(tok) {
		return nil, s.superseded(session)
	}
	if err != nil {
		s.log.Warn("showing identity without records",
			zap.String("nid", identity.Citizen.NationalID),
			zap.Error(err),
		)
		view.Records = []*hr.HealthRecord{}
		view.RecordsError = err.Error()
		s.observe("partial")
	} else {
		view.Records = records
		s.observe("found")
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		AccountID:    actor.AccountID,
		Role:         actor.Role,
		Action:       domain.ActionRead,
		ResourceType: "citizen",
		ResourceID:   identity.Citizen.NationalID,
		IPAddress:    actor.IPAddress,
		RequestID:    actor.RequestID,
	})

	return view, nil
}

// AddAndRefresh writes a record and then re-reads the citizen's full history
// rather than merging the new row locally. A failed refresh does not undo the
// write.
func (s *LookupService) AddAndRefresh(ctx context.Context, cmd *hr.CreateRecordCommand, actor Actor) (*AddResult, error) {
	rec, err := s.records.AddRecord(ctx, cmd, actor)
	if err != nil {
		return nil, err
	}

	res := &AddResult{Record: rec}
	records, err := s.records.ListRecords(ctx, rec.NationalID)
	if err != nil {
		res.Records = []*hr.HealthRecord{}
		res.RecordsError = err.Error()
		return res, nil
	}
	res.Records = records
	return res, nil
}

func (s *LookupService) superseded(session string) error {
	if s.metrics != nil {
		s.metrics.SupersededSearches.Inc()
	}
	s.log.Debug("discarding superseded search", zap.String("session", session))
	return ErrSuperseded
}

func (s *LookupService) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.LookupsTotal.WithLabelValues(outcome).Inc()
	}
}

func lookupOutcome(err error) string {
	var validErr *ValidationError
	switch {
	case errors.As(err, &validErr):
		return "invalid"
	case errors.Is(err, citizen.ErrCitizenNotFound):
		return "not_found"
	default:
		return "error"
	}
}
