package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/derive"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/citizen"
	hr "github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/health_record"
	"github.com/dmehra2102/prod-golang-projects/healthportal/pkg/metrics"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Actor identifies who is calling, for the audit trail.
type Actor struct {
	AccountID uuid.UUID
	Role      domain.Role
	IPAddress string
	RequestID string
}

type RecordService struct {
	repo     hr.Repository
	auditSvc *AuditService
	metrics  *metrics.Collector
	timeout  time.Duration
	log      *zap.Logger
	now      func() time.Time
}

func NewRecordService(repo hr.Repository, auditSvc *AuditService, m *metrics.Collector, timeout time.Duration, log *zap.Logger) *RecordService {
	return &RecordService{
		repo:     repo,
		auditSvc: auditSvc,
		metrics:  m,
		timeout:  timeout,
		log:      log,
		now:      time.Now,
	}
}

// ListRecords returns every record of one citizen, newest issue date first
// with same-day records in creation order. No records is an empty slice.
func (s *RecordService) ListRecords(ctx context.Context, nationalID string) ([]*hr.HealthRecord, error) {
	nid := citizen.NormalizeNationalID(nationalID)
	if nid == "" {
		return nil, &ValidationError{Fields: []string{"national_id is required"}}
	}

	ctx, span := tracer.Start(ctx, "RecordService.ListRecords")
	defer span.End()

	callCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	records, err := s.repo.ListByNationalID(callCtx, nid)
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		recordSpanError(span, err)
		s.log.Error("listing health records failed", zap.String("nid", nid), zap.Error(err))
		return nil, transient("fetching health records", err)
	}
	if records == nil {
		records = []*hr.HealthRecord{}
	}
	hr.SortNewestFirst(records)

	span.SetAttributes(attribute.Int("records.count", len(records)))
	return records, nil
}

// ListOwnRecords is the citizen portal view: the caller's history narrowed by
// search text and kind.
func (s *RecordService) ListOwnRecords(ctx context.Context, nationalID string, q *hr.ListRecordsQuery) ([]*hr.HealthRecord, error) {
	records, err := s.ListRecords(ctx, nationalID)
	if err != nil {
		return nil, err
	}
	return hr.Filter(records, q), nil
}

// AddRecord appends a record issued today by the calling institute. Nothing is
// written unless every required field is present.
func (s *RecordService) AddRecord(ctx context.Context, cmd *hr.CreateRecordCommand, actor Actor) (*hr.HealthRecord, error) {
	if err := validateCreateRecord(cmd); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "RecordService.AddRecord")
	defer span.End()

	kind := cmd.Kind
	if kind == "" {
		kind = hr.KindPrescription
	}

	var description *string
	if cmd.Description != nil {
		if d := strings.TrimSpace(*cmd.Description); d != "" {
			description = &d
		}
	}

	rec := &hr.HealthRecord{
		NationalID:   citizen.NormalizeNationalID(cmd.NationalID),
		InstituteID:  cmd.InstituteID,
		Kind:         kind,
		Title:        strings.TrimSpace(cmd.Title),
		Description:  description,
		Diagnosis:    strings.TrimSpace(cmd.Diagnosis),
		Prescription: strings.TrimSpace(cmd.Prescription),
		IssuedDate:   derive.Date(s.now()),
	}

	callCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.repo.Create(callCtx, rec); err != nil {
		recordSpanError(span, err)
		s.log.Error("failed to create health record",
			zap.String("nid", rec.NationalID),
			zap.Int64("institute_id", rec.InstituteID),
			zap.Error(err),
		)
		return nil, transient("saving health record", err)
	}

	if s.metrics != nil {
		s.metrics.RecordsWrittenTotal.WithLabelValues(rec.Kind.Slug()).Inc()
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		AccountID:    actor.AccountID,
		Role:         actor.Role,
		Action:       domain.ActionCreate,
		ResourceType: "health_record",
		ResourceID:   strconv.FormatInt(rec.ID, 10),
		IPAddress:    actor.IPAddress,
		RequestID:    actor.RequestID,
		Changes:      fmt.Sprintf(`{"nid_number":%q,"record_type":%q}`, rec.NationalID, rec.Kind),
	})

	s.log.Info("health record created",
		zap.Int64("record_id", rec.ID),
		zap.Int64("institute_id", rec.InstituteID),
		zap.String("kind", string(rec.Kind)),
	)

	return rec, nil
}

func validateCreateRecord(cmd *hr.CreateRecordCommand) error {
	var errs []string

	if strings.TrimSpace(cmd.NationalID) == "" {
		errs = append(errs, "national_id is required")
	}
	if cmd.InstituteID <= 0 {
		errs = append(errs, "institute_id is required")
	}
	if strings.TrimSpace(cmd.Title) == "" {
		errs = append(errs, "title is required")
	}
	if strings.TrimSpace(cmd.Diagnosis) == "" {
		errs = append(errs, "diagnosis is required")
	}
	if strings.TrimSpace(cmd.Prescription) == "" {
		errs = append(errs, "prescription is required")
	}
	if cmd.Kind != "" && !cmd.Kind.IsValid() {
		errs = append(errs, "record_type is invalid")
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
