package service

import (
	"context"
	"sync"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/healthportal/pkg/metrics"
	"go.uber.org/zap"
)

type AuditRepository interface {
	CreateBatch(ctx context.Context, entries []*domain.AuditLog) error
}

const (
	auditQueueSize     = 10_000
	auditBatchSize     = 100
	auditFlushInterval = time.Second
	auditWriteTimeout  = 5 * time.Second
	auditDrainTimeout  = 10 * time.Second
)

// AuditService persists audit entries off the request path. Entries are
// written in batches when auditBatchSize accumulate or every flush interval.
type AuditService struct {
	repo    AuditRepository
	metrics *metrics.Collector
	log     *zap.Logger
	now     func() time.Time

	// mu guards closed so no send races the close of queue.
	mu      sync.RWMutex
	closed  bool
	queue   chan *domain.AuditLog
	stopped chan struct{}
}

func NewAuditService(repo AuditRepository, m *metrics.Collector, log *zap.Logger) *AuditService {
	return newAuditService(repo, m, log, auditFlushInterval)
}

func newAuditService(repo AuditRepository, m *metrics.Collector, log *zap.Logger, every time.Duration) *AuditService {
	s := &AuditService{
		repo:    repo,
		metrics: m,
		log:     log,
		now:     time.Now,
		queue:   make(chan *domain.AuditLog, auditQueueSize),
		stopped: make(chan struct{}),
	}
	go s.run(every)
	return s
}

// LogAsync queues an entry. It never blocks; when the queue is full or the
// service has shut down the entry is dropped and counted. A nil service
// discards everything.
func (s *AuditService) LogAsync(_ context.Context, entry AuditEntry) {
	if s == nil {
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		s.drop(entry, "audit service stopped, dropping entry")
		return
	}
	select {
	case s.queue <- entry.toLog(s.now()):
	default:
		s.drop(entry, "audit queue full, dropping entry")
	}
}

func (s *AuditService) drop(entry AuditEntry, msg string) {
	if s.metrics != nil {
		s.metrics.AuditBufferDropped.Inc()
	}
	s.log.Warn(msg,
		zap.String("action", string(entry.Action)),
		zap.String("resource", entry.ResourceType),
		zap.String("resource_id", entry.ResourceID),
	)
}

// Shutdown flushes what is queued and stops the writer. Safe to call twice.
// Entries logged afterwards are dropped.
func (s *AuditService) Shutdown() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	select {
	case <-s.stopped:
	case <-time.After(auditDrainTimeout):
		s.log.Warn("audit drain timed out, queued entries lost", zap.Int("queued", len(s.queue)))
	}
}

func (s *AuditService) run(every time.Duration) {
	defer close(s.stopped)

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	batch := make([]*domain.AuditLog, 0, auditBatchSize)
	for {
		select {
		case entry, ok := <-s.queue:
			if !ok {
				s.flush(batch)
				return
			}
			batch = append(batch, entry)
			if len(batch) >= auditBatchSize {
				s.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			s.flush(batch)
			batch = batch[:0]
		}
	}
}

func (s *AuditService) flush(batch []*domain.AuditLog) {
	if len(batch) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
	defer cancel()

	if err := s.repo.CreateBatch(ctx, batch); err != nil {
		s.log.Error("writing audit batch", zap.Int("entries", len(batch)), zap.Error(err))
		return
	}
	if s.metrics != nil {
		s.metrics.AuditEntriesTotal.Add(float64(len(batch)))
	}
}

func (e AuditEntry) toLog(at time.Time) *domain.AuditLog {
	return &domain.AuditLog{
		OccurredAt:   at,
		AccountID:    e.AccountID,
		Role:         e.Role,
		Action:       e.Action,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		IPAddress:    e.IPAddress,
		RequestID:    e.RequestID,
		Changes:      e.Changes,
	}
}
