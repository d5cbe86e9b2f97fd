package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shopsync/backend/internal/domain/identity"
	"github.com/shopsync/backend/internal/domain/shared"
)

// ---------------------------------------------------------------------------
// SyncCronTriggerConfig
// ---------------------------------------------------------------------------

// SyncCronTriggerConfig holds configuration for the periodic sync trigger
type SyncCronTriggerConfig struct {
	// CheckInterval is how often to scan for tenants due for a sync
	CheckInterval time.Duration

	// SyncInterval is how old a tenant's last sync may be before a new one
	// is scheduled
	SyncInterval time.Duration
}

// DefaultSyncCronTriggerConfig returns default configuration
func DefaultSyncCronTriggerConfig() SyncCronTriggerConfig {
	return SyncCronTriggerConfig{
		CheckInterval: time.Minute,
		SyncInterval:  6 * time.Hour,
	}
}

// ---------------------------------------------------------------------------
// SyncCronTrigger
// ---------------------------------------------------------------------------

// SyncCronTrigger periodically scans the tenant list and schedules sync jobs
// for active tenants whose data has gone stale.
type SyncCronTrigger struct {
	config     SyncCronTriggerConfig
	scheduler  *SyncScheduler
	tenantRepo identity.TenantRepository
	logger     *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	// Tracks when each tenant was last scheduled so one stale tenant is not
	// enqueued on every scan tick.
	lastScheduledMu sync.Mutex
	lastScheduled   map[uuid.UUID]time.Time
}

// NewSyncCronTrigger creates a new sync cron trigger
func NewSyncCronTrigger(
	config SyncCronTriggerConfig,
	scheduler *SyncScheduler,
	tenantRepo identity.TenantRepository,
	logger *zap.Logger,
) *SyncCronTrigger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncCronTrigger{
		config:        config,
		scheduler:     scheduler,
		tenantRepo:    tenantRepo,
		logger:        logger,
		lastScheduled: make(map[uuid.UUID]time.Time),
	}
}

// Start starts the scan loop
func (c *SyncCronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = true
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.runLoop(ctx)

	c.logger.Info("Sync cron trigger started",
		zap.Duration("check_interval", c.config.CheckInterval),
		zap.Duration("sync_interval", c.config.SyncInterval),
	)
	return nil
}

// Stop stops the scan loop
func (c *SyncCronTrigger) Stop() {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return
	}
	c.isRunning = false
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	c.logger.Info("Sync cron trigger stopped")
}

func (c *SyncCronTrigger) runLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.scheduleDueTenants(ctx)
		}
	}
}

// scheduleDueTenants walks all tenants and enqueues a sync job for every
// active tenant whose last sync is older than the sync interval.
func (c *SyncCronTrigger) scheduleDueTenants(ctx context.Context) {
	filter := shared.DefaultFilter()
	filter.PageSize = 100

	for {
		tenants, err := c.tenantRepo.FindAll(ctx, filter)
		if err != nil {
			c.logger.Error("Failed to list tenants for scheduled sync", zap.Error(err))
			return
		}
		if len(tenants) == 0 {
			return
		}

		for i := range tenants {
			c.maybeSchedule(&tenants[i])
		}

		if len(tenants) < filter.PageSize {
			return
		}
		filter.Page++
	}
}

func (c *SyncCronTrigger) maybeSchedule(tenant *identity.Tenant) {
	if !tenant.IsActive() {
		return
	}
	if !c.isDue(tenant) {
		return
	}

	c.lastScheduledMu.Lock()
	if scheduledAt, ok := c.lastScheduled[tenant.ID]; ok && time.Since(scheduledAt) < c.config.SyncInterval {
		c.lastScheduledMu.Unlock()
		return
	}
	c.lastScheduled[tenant.ID] = time.Now()
	c.lastScheduledMu.Unlock()

	if err := c.scheduler.ScheduleSync(tenant.ID); err != nil {
		c.logger.Warn("Failed to schedule tenant sync",
			zap.String("tenant_id", tenant.ID.String()),
			zap.Error(err))
		// Allow the next scan to try again.
		c.lastScheduledMu.Lock()
		delete(c.lastScheduled, tenant.ID)
		c.lastScheduledMu.Unlock()
		return
	}

	c.logger.Info("Scheduled tenant sync",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("shop_domain", tenant.ShopDomain))
}

func (c *SyncCronTrigger) isDue(tenant *identity.Tenant) bool {
	if tenant.LastSyncAt == nil {
		return true
	}
	return time.Since(*tenant.LastSyncAt) >= c.config.SyncInterval
}
