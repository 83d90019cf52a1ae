package service

import (
	"context"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/citizen"
	hr "github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/health_record"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/institute"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/report"
	"github.com/dmehra2102/prod-golang-projects/healthportal/pkg/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type ReportService struct {
	citizens   citizen.Repository
	institutes institute.Repository
	records    hr.Repository
	metrics    *metrics.Collector
	timeout    time.Duration
	log        *zap.Logger
	now        func() time.Time
}

func NewReportService(citizens citizen.Repository, institutes institute.Repository, records hr.Repository, m *metrics.Collector, timeout time.Duration, log *zap.Logger) *ReportService {
	return &ReportService{
		citizens:   citizens,
		institutes: institutes,
		records:    records,
		metrics:    m,
		timeout:    timeout,
		log:        log,
		now:        time.Now,
	}
}

// Snapshot reads the three collections in parallel. Any failed read fails the
// whole snapshot so a report is never built from a partial view.
func (s *ReportService) Snapshot(ctx context.Context) (*report.Snapshot, error) {
	ctx, span := tracer.Start(ctx, "ReportService.Snapshot")
	defer span.End()

	callCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	snap := &report.Snapshot{AsOf: s.now()}
	g, gctx := errgroup.WithContext(callCtx)
	g.Go(func() error {
		var err error
		snap.Citizens, err = s.citizens.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Institutes, err = s.institutes.List(gctx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Records, err = s.records.ListAll(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		recordSpanError(span, err)
		s.log.Error("loading report snapshot failed", zap.Error(err))
		return nil, transient("loading report data", err)
	}
	return snap, nil
}

func (s *ReportService) Overview(ctx context.Context) (*report.Overview, error) {
	defer s.observe("overview", time.Now())
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return report.BuildOverview(snap), nil
}

func (s *ReportService) Demographics(ctx context.Context) (*report.Demographics, error) {
	defer s.observe("demographics", time.Now())
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return report.BuildDemographics(snap), nil
}

func (s *ReportService) Network(ctx context.Context) (*report.Network, error) {
	defer s.observe("network", time.Now())
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return report.BuildNetwork(snap), nil
}

func (s *ReportService) Insights(ctx context.Context) (*report.Insights, error) {
	defer s.observe("insights", time.Now())
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return report.BuildInsights(snap), nil
}

// Institutes backs the network directory search.
func (s *ReportService) Institutes(ctx context.Context, f *institute.Filter) ([]*institute.Institute, error) {
	callCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	list, err := s.institutes.List(callCtx, f)
	if err != nil {
		s.log.Error("listing institutes failed", zap.Error(err))
		return nil, transient("listing health institutes", err)
	}
	if list == nil {
		list = []*institute.Institute{}
	}
	return list, nil
}

func (s *ReportService) observe(name string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ReportDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}
}
