package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appingestion "github.com/shopsync/backend/internal/application/ingestion"
	"github.com/shopsync/backend/internal/domain/ingestion"
)

// SyncStarter is the slice of the sync service the executor needs
type SyncStarter interface {
	StartSync(ctx context.Context, tenantID uuid.UUID, trigger string) (ingestion.SyncSummary, error)
}

// SyncExecutorImpl implements SyncExecutor on top of the sync service
type SyncExecutorImpl struct {
	syncService SyncStarter
	logger      *zap.Logger
}

// Ensure SyncExecutorImpl implements SyncExecutor
var _ SyncExecutor = (*SyncExecutorImpl)(nil)

// NewSyncExecutor creates a new sync executor
func NewSyncExecutor(syncService SyncStarter, logger *zap.Logger) *SyncExecutorImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncExecutorImpl{
		syncService: syncService,
		logger:      logger,
	}
}

// Execute runs one scheduled sync for the job's tenant
func (e *SyncExecutorImpl) Execute(ctx context.Context, job *SyncJob) (ingestion.SyncSummary, error) {
	summary, err := e.syncService.StartSync(ctx, job.TenantID, appingestion.TriggerScheduled)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return summary, fmt.Errorf("%w: %v", ErrSyncJobTimeout, err)
		}
		return summary, err
	}
	return summary, nil
}
