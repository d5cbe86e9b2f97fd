package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// newTestMeter returns a meter backed by a manual reader so instrument
// creation goes through the real SDK path.
func newTestMeter(t *testing.T) metric.Meter {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp.Meter("test")
}

func TestDefaultDBMetricsConfig(t *testing.T) {
	cfg := DefaultDBMetricsConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThreshold)
	assert.Equal(t, 15*time.Second, cfg.PoolStatsInterval)
}

func TestNewDBMetrics(t *testing.T) {
	metrics, err := NewDBMetrics(newTestMeter(t), DBMetricsConfig{Enabled: true}, zap.NewNop())

	require.NoError(t, err)
	require.NotNil(t, metrics)

	// Defaults applied for zero values
	assert.Equal(t, 200*time.Millisecond, metrics.config.SlowQueryThreshold)
	assert.Equal(t, 15*time.Second, metrics.config.PoolStatsInterval)
}

func TestNewDBMetrics_NilMeter(t *testing.T) {
	metrics, err := NewDBMetrics(nil, DBMetricsConfig{}, zap.NewNop())

	require.Error(t, err)
	assert.Nil(t, metrics)
	assert.Equal(t, "NewDBMetrics: meter cannot be nil", err.Error())
}

func TestDBMetrics_RecordQuery(t *testing.T) {
	metrics, err := NewDBMetrics(newTestMeter(t), DBMetricsConfig{
		Enabled:            true,
		SlowQueryThreshold: 100 * time.Millisecond,
	}, zap.NewNop())
	require.NoError(t, err)

	ctx := context.Background()

	// Fast query
	metrics.RecordQuery(ctx, "select", "tenants", 5*time.Millisecond, nil)

	// Slow query
	metrics.RecordQuery(ctx, "update", "orders", 500*time.Millisecond, nil)

	// Missing operation falls back to UNKNOWN, missing table to unknown
	metrics.RecordQuery(ctx, "", "", time.Second, nil)
}

func TestDBMetrics_PoolStatsCollection(t *testing.T) {
	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	metrics, err := NewDBMetrics(newTestMeter(t), DBMetricsConfig{
		Enabled:           true,
		PoolStatsInterval: 10 * time.Millisecond,
	}, zap.NewNop())
	require.NoError(t, err)

	metrics.SetSQLDB(mockDB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics.StartPoolStatsCollection(ctx)

	// Let a couple of collection cycles run
	time.Sleep(35 * time.Millisecond)

	metrics.Stop()
}

func TestDBMetrics_StartWithoutSQLDB(t *testing.T) {
	metrics, err := NewDBMetrics(newTestMeter(t), DBMetricsConfig{Enabled: true}, zap.NewNop())
	require.NoError(t, err)

	// No sqlDB set: collection refuses to start, Stop stays safe
	metrics.StartPoolStatsCollection(context.Background())
	metrics.Stop()
}

func TestDBMetrics_StopIsIdempotent(t *testing.T) {
	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	metrics, err := NewDBMetrics(newTestMeter(t), DBMetricsConfig{
		Enabled:           true,
		PoolStatsInterval: time.Second,
	}, zap.NewNop())
	require.NoError(t, err)

	metrics.SetSQLDB(mockDB)
	metrics.StartPoolStatsCollection(context.Background())

	metrics.Stop()
	metrics.Stop()
}
