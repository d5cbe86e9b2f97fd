package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"

	appingestion "github.com/shopsync/backend/internal/application/ingestion"
	"github.com/shopsync/backend/internal/domain/ingestion"
)

// SyncService is the sync surface the decorator wraps
type SyncService interface {
	StartSync(ctx context.Context, tenantID uuid.UUID, trigger string) (ingestion.SyncSummary, error)
	IsSyncRunning(tenantID uuid.UUID) bool
	History(tenantID uuid.UUID, limit int) []appingestion.SyncRun
}

// InstrumentedSyncService decorates a sync service with tracing and metrics.
// Every run gets a span carrying tenant and trigger attributes; run outcome,
// duration and per-entity record counts are recorded on the meter.
type InstrumentedSyncService struct {
	inner   SyncService
	metrics *SyncMetrics
}

// NewInstrumentedSyncService wraps a sync service. metrics may be nil, in
// which case only tracing is added.
func NewInstrumentedSyncService(inner SyncService, metrics *SyncMetrics) *InstrumentedSyncService {
	return &InstrumentedSyncService{inner: inner, metrics: metrics}
}

// StartSync runs the wrapped sync inside a span and records run metrics
func (s *InstrumentedSyncService) StartSync(ctx context.Context, tenantID uuid.UUID, trigger string) (ingestion.SyncSummary, error) {
	ctx, span := StartServiceSpan(ctx, "sync", "run",
		WithAttribute(SpanAttrTenantID, tenantID.String()),
		WithAttribute(SpanAttrSyncTrigger, trigger),
	)
	defer span.End()

	started := time.Now()
	summary, err := s.inner.StartSync(ctx, tenantID, trigger)
	elapsed := time.Since(started)

	status := SyncStatusSucceeded
	if err != nil {
		status = SyncStatusFailed
		RecordError(span, err)
	} else {
		SetOK(span)
	}
	SetAttributes(span, SpanAttrRecords, summary.Total())

	if s.metrics != nil {
		s.metrics.RecordRun(ctx, tenantID, trigger, status, elapsed)
		s.metrics.RecordSummary(ctx, tenantID, summary)
	}

	return summary, err
}

// IsSyncRunning delegates to the wrapped service
func (s *InstrumentedSyncService) IsSyncRunning(tenantID uuid.UUID) bool {
	return s.inner.IsSyncRunning(tenantID)
}

// History delegates to the wrapped service
func (s *InstrumentedSyncService) History(tenantID uuid.UUID, limit int) []appingestion.SyncRun {
	return s.inner.History(tenantID, limit)
}
