package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"github.com/shopsync/backend/internal/domain/ingestion"
	"github.com/shopsync/backend/internal/infrastructure/telemetry"
)

func TestNewSyncMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	sm, err := telemetry.NewSyncMetrics(telemetry.SyncMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
	})

	require.NoError(t, err)
	require.NotNil(t, sm)
}

func TestNewSyncMetrics_NilMeter(t *testing.T) {
	sm, err := telemetry.NewSyncMetrics(telemetry.SyncMetricsConfig{
		Meter:  nil,
		Logger: zap.NewNop(),
	})

	require.Error(t, err)
	assert.Nil(t, sm)
	assert.Equal(t, "NewSyncMetrics: meter cannot be nil", err.Error())
}

func TestSyncMetrics_RecordRun(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	sm, err := telemetry.NewSyncMetrics(telemetry.SyncMetricsConfig{Meter: meter})
	require.NoError(t, err)

	ctx := context.Background()
	tenantID := uuid.New()

	// Should not panic
	sm.RecordRun(ctx, tenantID, "manual", telemetry.SyncStatusSucceeded, 12*time.Second)
	sm.RecordRun(ctx, tenantID, "scheduled", telemetry.SyncStatusFailed, 3*time.Second)
}

func TestSyncMetrics_RecordSummary(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	sm, err := telemetry.NewSyncMetrics(telemetry.SyncMetricsConfig{Meter: meter})
	require.NoError(t, err)

	ctx := context.Background()
	tenantID := uuid.New()

	sm.RecordSummary(ctx, tenantID, ingestion.SyncSummary{
		Customers: 120,
		Products:  45,
		Orders:    300,
	})

	// Zero counts are skipped without panicking
	sm.RecordSummary(ctx, tenantID, ingestion.SyncSummary{})
}

func TestSyncMetrics_RecordPageArchived(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	sm, err := telemetry.NewSyncMetrics(telemetry.SyncMetricsConfig{Meter: meter})
	require.NoError(t, err)

	sm.RecordPageArchived(context.Background(), uuid.New(), ingestion.EntityOrders)
}
