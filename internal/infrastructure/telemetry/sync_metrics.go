// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/shopsync/backend/internal/domain/ingestion"
)

// SyncMetrics tracks ingestion activity: sync runs, upserted records,
// and archived raw pages.
type SyncMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	runsTotal     *Counter
	recordsTotal  *Counter
	pagesArchived *Counter
	runDuration   *Histogram
}

// SyncMetricsConfig holds configuration for sync metrics.
type SyncMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// Run outcome values for the sync.status attribute.
const (
	SyncStatusSucceeded = "succeeded"
	SyncStatusFailed    = "failed"
)

// NewSyncMetrics creates a new SyncMetrics instance.
func NewSyncMetrics(cfg SyncMetricsConfig) (*SyncMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	sm := &SyncMetrics{
		meter:  cfg.Meter,
		logger: logger,
	}

	var err error

	sm.runsTotal, err = NewCounter(
		cfg.Meter,
		"shopsync_sync_runs_total",
		"Total number of sync runs",
		"{runs}",
	)
	if err != nil {
		return nil, err
	}

	sm.recordsTotal, err = NewCounter(
		cfg.Meter,
		"shopsync_sync_records_total",
		"Total number of records upserted by sync runs",
		"{records}",
	)
	if err != nil {
		return nil, err
	}

	sm.pagesArchived, err = NewCounter(
		cfg.Meter,
		"shopsync_sync_pages_archived_total",
		"Total number of raw pages archived to object storage",
		"{pages}",
	)
	if err != nil {
		return nil, err
	}

	sm.runDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "shopsync_sync_run_duration_seconds",
		Description: "Duration of full sync runs",
		Unit:        "s",
		Boundaries:  SyncDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	return sm, nil
}

// RecordRun records the outcome and duration of a completed sync run.
func (sm *SyncMetrics) RecordRun(ctx context.Context, tenantID uuid.UUID, trigger, status string, elapsed time.Duration) {
	sm.runsTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrSyncTrigger.String(trigger),
		AttrSyncStatus.String(status),
	)
	sm.runDuration.RecordDuration(ctx, elapsed,
		AttrSyncTrigger.String(trigger),
		AttrSyncStatus.String(status),
	)
}

// RecordRecords records the number of records upserted for one entity kind.
func (sm *SyncMetrics) RecordRecords(ctx context.Context, tenantID uuid.UUID, kind ingestion.EntityKind, count int) {
	if count <= 0 {
		return
	}
	sm.recordsTotal.Add(ctx, int64(count),
		AttrTenantID.String(tenantID.String()),
		AttrSyncEntity.String(kind.String()),
	)
}

// RecordPageArchived records one raw page persisted to the archive bucket.
func (sm *SyncMetrics) RecordPageArchived(ctx context.Context, tenantID uuid.UUID, kind ingestion.EntityKind) {
	sm.pagesArchived.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrSyncEntity.String(kind.String()),
	)
}

// RecordSummary records the record counts from a sync summary in one call.
func (sm *SyncMetrics) RecordSummary(ctx context.Context, tenantID uuid.UUID, summary ingestion.SyncSummary) {
	sm.RecordRecords(ctx, tenantID, ingestion.EntityCustomers, summary.Customers)
	sm.RecordRecords(ctx, tenantID, ingestion.EntityProducts, summary.Products)
	sm.RecordRecords(ctx, tenantID, ingestion.EntityOrders, summary.Orders)
}

// ErrMeterNil is returned when the meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewSyncMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
