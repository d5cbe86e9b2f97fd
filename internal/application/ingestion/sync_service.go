package ingestion

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shopsync/backend/internal/domain/identity"
	"github.com/shopsync/backend/internal/domain/ingestion"
	"github.com/shopsync/backend/internal/domain/shared"
)

// maxRunHistory caps the in-memory run history kept per service instance
const maxRunHistory = 100

// Sync triggers
const (
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
)

// RunStatus is the lifecycle state of one sync run
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// SyncRun is one recorded sync attempt for a tenant
type SyncRun struct {
	ID          uuid.UUID             `json:"id"`
	TenantID    uuid.UUID             `json:"tenant_id"`
	Trigger     string                `json:"trigger"`
	Status      RunStatus             `json:"status"`
	Summary     ingestion.SyncSummary `json:"summary"`
	FailedStage string                `json:"failed_stage,omitempty"`
	Error       string                `json:"error,omitempty"`
	StartedAt   time.Time             `json:"started_at"`
	FinishedAt  *time.Time            `json:"finished_at,omitempty"`
}

// PageArchiver stores the raw response pages pulled during a run. Archival
// is best effort: a failing archiver never fails the sync.
type PageArchiver interface {
	ArchivePage(ctx context.Context, tenantID, runID uuid.UUID, kind ingestion.EntityKind, pageNo int, raw []byte) error
}

// SyncServiceImpl coordinates a full sync run for one tenant: resolve
// credentials, pull each collection in a fixed order and upsert every page.
// Collections are pulled customers first, then products, then orders, so
// order rows usually find their customer already present even though the
// reference is not enforced.
type SyncServiceImpl struct {
	tenantRepo      identity.TenantRepository
	platformFactory ingestion.PlatformFactory
	upserter        *Upserter
	guard           *TenantGuard
	archiver        PageArchiver
	logger          *zap.Logger

	mu   sync.Mutex
	runs []SyncRun
}

// NewSyncService creates a sync service. archiver may be nil when raw page
// archival is disabled.
func NewSyncService(
	tenantRepo identity.TenantRepository,
	platformFactory ingestion.PlatformFactory,
	upserter *Upserter,
	guard *TenantGuard,
	archiver PageArchiver,
	logger *zap.Logger,
) *SyncServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncServiceImpl{
		tenantRepo:      tenantRepo,
		platformFactory: platformFactory,
		upserter:        upserter,
		guard:           guard,
		archiver:        archiver,
		logger:          logger,
	}
}

// StartSync runs a full sync for the tenant and returns the applied counts.
// On failure the returned error is an *ingestion.SyncError carrying the
// counts applied before the failing stage; completed work is kept.
func (s *SyncServiceImpl) StartSync(ctx context.Context, tenantID uuid.UUID, trigger string) (ingestion.SyncSummary, error) {
	var summary ingestion.SyncSummary

	// The guard is taken before anything else so an overlapping call is
	// refused without touching the database.
	if !s.guard.TryAcquire(tenantID) {
		return summary, ingestion.ErrSyncInProgress
	}
	defer s.guard.Release(tenantID)

	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return summary, err
	}
	if !tenant.IsActive() {
		return summary, shared.NewDomainError("TENANT_INACTIVE", "Tenant is not active")
	}

	credentials := tenant.Credentials()
	platform := s.platformFactory(credentials.ShopDomain, credentials.AccessToken)

	run := s.beginRun(tenantID, trigger)
	logger := s.logger.With(
		zap.String("run_id", run.ID.String()),
		zap.String("tenant_id", tenantID.String()),
		zap.String("trigger", trigger),
	)
	logger.Info("Starting sync run", zap.String("shop_domain", credentials.ShopDomain))
	start := time.Now()

	if err := s.pullCustomers(ctx, platform, run.ID, tenantID, &summary, logger); err != nil {
		return s.failRun(run.ID, summary, ingestion.NewSyncError(ingestion.EntityCustomers, summary, err), logger)
	}
	if err := s.pullProducts(ctx, platform, run.ID, tenantID, &summary, logger); err != nil {
		return s.failRun(run.ID, summary, ingestion.NewSyncError(ingestion.EntityProducts, summary, err), logger)
	}
	if err := s.pullOrders(ctx, platform, run.ID, tenantID, &summary, logger); err != nil {
		return s.failRun(run.ID, summary, ingestion.NewSyncError(ingestion.EntityOrders, summary, err), logger)
	}

	tenant.MarkSynced(time.Now())
	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		// The data is already in; losing the bookkeeping stamp is not worth
		// failing the run over.
		logger.Warn("Failed to record last sync time", zap.Error(err))
	}

	s.finishRun(run.ID, summary)
	logger.Info("Sync run completed",
		zap.Int("customers", summary.Customers),
		zap.Int("products", summary.Products),
		zap.Int("orders", summary.Orders),
		zap.Duration("duration", time.Since(start)),
	)
	return summary, nil
}

// IsSyncRunning reports whether a run is in flight for the tenant
func (s *SyncServiceImpl) IsSyncRunning(tenantID uuid.UUID) bool {
	return s.guard.IsRunning(tenantID)
}

// History returns the most recent runs for the tenant, newest first
func (s *SyncServiceImpl) History(tenantID uuid.UUID, limit int) []SyncRun {
	if limit <= 0 {
		limit = 20
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]SyncRun, 0, limit)
	for i := len(s.runs) - 1; i >= 0 && len(out) < limit; i-- {
		if s.runs[i].TenantID == tenantID {
			out = append(out, s.runs[i])
		}
	}
	return out
}

func (s *SyncServiceImpl) pullCustomers(ctx context.Context, platform ingestion.Platform, runID, tenantID uuid.UUID, summary *ingestion.SyncSummary, logger *zap.Logger) error {
	cursor := ""
	for pageNo := 1; ; pageNo++ {
		page, err := platform.FetchCustomers(ctx, cursor)
		if err != nil {
			return err
		}
		s.archive(ctx, tenantID, runID, ingestion.EntityCustomers, pageNo, page.Raw, logger)

		applied, err := s.upserter.ApplyCustomers(ctx, tenantID, page.Customers)
		summary.Customers += applied
		if err != nil {
			return err
		}

		cursor = page.Cursor
		if cursor == "" {
			return nil
		}
	}
}

func (s *SyncServiceImpl) pullProducts(ctx context.Context, platform ingestion.Platform, runID, tenantID uuid.UUID, summary *ingestion.SyncSummary, logger *zap.Logger) error {
	cursor := ""
	for pageNo := 1; ; pageNo++ {
		page, err := platform.FetchProducts(ctx, cursor)
		if err != nil {
			return err
		}
		s.archive(ctx, tenantID, runID, ingestion.EntityProducts, pageNo, page.Raw, logger)

		applied, err := s.upserter.ApplyProducts(ctx, tenantID, page.Products)
		summary.Products += applied
		if err != nil {
			return err
		}

		cursor = page.Cursor
		if cursor == "" {
			return nil
		}
	}
}

func (s *SyncServiceImpl) pullOrders(ctx context.Context, platform ingestion.Platform, runID, tenantID uuid.UUID, summary *ingestion.SyncSummary, logger *zap.Logger) error {
	cursor := ""
	for pageNo := 1; ; pageNo++ {
		page, err := platform.FetchOrders(ctx, cursor)
		if err != nil {
			return err
		}
		s.archive(ctx, tenantID, runID, ingestion.EntityOrders, pageNo, page.Raw, logger)

		applied, err := s.upserter.ApplyOrders(ctx, tenantID, page.Orders)
		summary.Orders += applied
		if err != nil {
			return err
		}

		cursor = page.Cursor
		if cursor == "" {
			return nil
		}
	}
}

func (s *SyncServiceImpl) archive(ctx context.Context, tenantID, runID uuid.UUID, kind ingestion.EntityKind, pageNo int, raw []byte, logger *zap.Logger) {
	if s.archiver == nil || len(raw) == 0 {
		return
	}
	if err := s.archiver.ArchivePage(ctx, tenantID, runID, kind, pageNo, raw); err != nil {
		logger.Warn("Failed to archive raw page",
			zap.String("entity", kind.String()),
			zap.Int("page", pageNo),
			zap.Error(err))
	}
}

func (s *SyncServiceImpl) beginRun(tenantID uuid.UUID, trigger string) SyncRun {
	run := SyncRun{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Trigger:   trigger,
		Status:    RunStatusRunning,
		StartedAt: time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	if len(s.runs) > maxRunHistory {
		s.runs = s.runs[len(s.runs)-maxRunHistory:]
	}
	return run
}

func (s *SyncServiceImpl) finishRun(runID uuid.UUID, summary ingestion.SyncSummary) {
	s.updateRun(runID, func(run *SyncRun) {
		now := time.Now()
		run.Status = RunStatusSucceeded
		run.Summary = summary
		run.FinishedAt = &now
	})
}

func (s *SyncServiceImpl) failRun(runID uuid.UUID, summary ingestion.SyncSummary, syncErr *ingestion.SyncError, logger *zap.Logger) (ingestion.SyncSummary, error) {
	s.updateRun(runID, func(run *SyncRun) {
		now := time.Now()
		run.Status = RunStatusFailed
		run.Summary = summary
		run.FailedStage = syncErr.Stage.String()
		run.Error = syncErr.Err.Error()
		run.FinishedAt = &now
	})
	logger.Error("Sync run failed",
		zap.String("stage", syncErr.Stage.String()),
		zap.Int("applied", summary.Total()),
		zap.Error(syncErr.Err),
	)
	return summary, syncErr
}

func (s *SyncServiceImpl) updateRun(runID uuid.UUID, apply func(*SyncRun)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.runs {
		if s.runs[i].ID == runID {
			apply(&s.runs[i])
			return
		}
	}
}
