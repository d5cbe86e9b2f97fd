package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shopsync/backend/internal/domain/ingestion"
)

// ---------------------------------------------------------------------------
// Sync Job Types
// ---------------------------------------------------------------------------

// SyncJobStatus represents the status of a scheduled sync job
type SyncJobStatus string

const (
	SyncJobStatusPending SyncJobStatus = "PENDING"
	SyncJobStatusRunning SyncJobStatus = "RUNNING"
	SyncJobStatusSuccess SyncJobStatus = "SUCCESS"
	SyncJobStatusFailed  SyncJobStatus = "FAILED"
	SyncJobStatusSkipped SyncJobStatus = "SKIPPED"
)

// SyncJob represents one scheduled sync for a tenant
type SyncJob struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	Status      SyncJobStatus
	Summary     ingestion.SyncSummary
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
	NextRetryAt *time.Time
}

// NewSyncJob creates a pending sync job for the tenant
func NewSyncJob(tenantID uuid.UUID, maxRetries int) *SyncJob {
	return &SyncJob{
		ID:         uuid.New(),
		TenantID:   tenantID,
		Status:     SyncJobStatusPending,
		MaxRetries: maxRetries,
	}
}

// Start marks the job as running
func (j *SyncJob) Start() {
	now := time.Now()
	j.Status = SyncJobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

// Complete marks the job as successful with the applied counts
func (j *SyncJob) Complete(summary ingestion.SyncSummary) {
	now := time.Now()
	j.Status = SyncJobStatusSuccess
	j.Summary = summary
	j.CompletedAt = &now
}

// Fail marks the job as failed
func (j *SyncJob) Fail(err string) {
	now := time.Now()
	j.Status = SyncJobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

// Skip marks the job as skipped, e.g. when a sync was already in flight
func (j *SyncJob) Skip(reason string) {
	now := time.Now()
	j.Status = SyncJobStatusSkipped
	j.CompletedAt = &now
	j.Error = reason
}

// ShouldRetry returns true if the job should be retried
func (j *SyncJob) ShouldRetry() bool {
	return j.Status == SyncJobStatusFailed && j.RetryCount < j.MaxRetries
}

// ScheduleRetry schedules the job for retry with exponential backoff
func (j *SyncJob) ScheduleRetry(baseWait time.Duration) {
	j.RetryCount++
	j.Status = SyncJobStatusPending
	delay := baseWait * time.Duration(1<<(j.RetryCount-1))
	if delay > 30*time.Minute {
		delay = 30 * time.Minute
	}
	nextRetry := time.Now().Add(delay)
	j.NextRetryAt = &nextRetry
	j.Error = ""
}

// ---------------------------------------------------------------------------
// SyncExecutor Interface
// ---------------------------------------------------------------------------

// SyncExecutor runs one sync job to completion
type SyncExecutor interface {
	Execute(ctx context.Context, job *SyncJob) (ingestion.SyncSummary, error)
}

// ---------------------------------------------------------------------------
// SyncSchedulerConfig
// ---------------------------------------------------------------------------

// SyncSchedulerConfig holds configuration for the sync scheduler
type SyncSchedulerConfig struct {
	// WorkerCount is the number of concurrent sync workers
	WorkerCount int
	// QueueSize is the capacity of the job queue
	QueueSize int
	// JobTimeout is the maximum time a single sync job can run
	JobTimeout time.Duration
	// MaxRetries is the number of retry attempts for failed jobs
	MaxRetries int
	// RetryBaseWait is the base delay between retries (with exponential backoff)
	RetryBaseWait time.Duration
}

// DefaultSyncSchedulerConfig returns default configuration
func DefaultSyncSchedulerConfig() SyncSchedulerConfig {
	return SyncSchedulerConfig{
		WorkerCount:   3,
		QueueSize:     100,
		JobTimeout:    15 * time.Minute,
		MaxRetries:    3,
		RetryBaseWait: time.Minute,
	}
}

// Validate validates the configuration
func (c *SyncSchedulerConfig) Validate() error {
	if c.WorkerCount <= 0 {
		return ErrInvalidConfig
	}
	if c.QueueSize <= 0 {
		return ErrInvalidConfig
	}
	if c.JobTimeout <= 0 {
		return ErrInvalidConfig
	}
	if c.MaxRetries < 0 {
		return ErrInvalidConfig
	}
	if c.RetryBaseWait <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// ---------------------------------------------------------------------------
// SyncScheduler
// ---------------------------------------------------------------------------

// SyncScheduler runs tenant sync jobs over a bounded worker pool with
// per-job retry and an in-memory history for monitoring.
type SyncScheduler struct {
	config   SyncSchedulerConfig
	executor SyncExecutor
	logger   *zap.Logger

	jobs      chan *SyncJob
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	historyMu  sync.RWMutex
	history    []*SyncJob
	maxHistory int
}

// NewSyncScheduler creates a new sync scheduler
func NewSyncScheduler(config SyncSchedulerConfig, executor SyncExecutor, logger *zap.Logger) (*SyncScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SyncScheduler{
		config:     config,
		executor:   executor,
		logger:     logger,
		jobs:       make(chan *SyncJob, config.QueueSize),
		history:    make([]*SyncJob, 0, 100),
		maxHistory: 100,
	}, nil
}

// Start starts the worker pool
func (s *SyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.config.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.logger.Info("Sync scheduler started",
		zap.Int("workers", s.config.WorkerCount),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop gracefully stops the scheduler
func (s *SyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	if s.cancel != nil {
		s.cancel()
	}
	// Closed under the same lock that SubmitJob sends under, so a late
	// submit can never hit a closed channel.
	close(s.jobs)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Sync scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Sync scheduler stop timed out")
		return ctx.Err()
	}
}

// ScheduleSync enqueues a sync job for the tenant
func (s *SyncScheduler) ScheduleSync(tenantID uuid.UUID) error {
	return s.SubmitJob(NewSyncJob(tenantID, s.config.MaxRetries))
}

// SubmitJob submits a job for execution
func (s *SyncScheduler) SubmitJob(job *SyncJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return ErrSchedulerNotRunning
	}

	select {
	case s.jobs <- job:
		s.logger.Debug("Sync job submitted",
			zap.String("job_id", job.ID.String()),
			zap.String("tenant_id", job.TenantID.String()),
		)
		return nil
	default:
		return ErrJobQueueFull
	}
}

// worker processes jobs from the queue
func (s *SyncScheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-s.jobs:
			if !ok {
				return
			}
			s.processJob(ctx, job, workerID)
		}
	}
}

// processJob executes a single job
func (s *SyncScheduler) processJob(ctx context.Context, job *SyncJob, workerID int) {
	job.Start()
	s.logger.Info("Processing sync job",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("tenant_id", job.TenantID.String()),
		zap.Int("retry_count", job.RetryCount),
	)

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	summary, err := s.executor.Execute(jobCtx, job)
	if err != nil {
		if errors.Is(err, ingestion.ErrSyncInProgress) {
			// A manual sync beat us to it. Nothing to retry.
			job.Skip(err.Error())
			s.addToHistory(job)
			return
		}

		job.Summary = summary
		job.Fail(err.Error())
		s.logger.Error("Sync job failed",
			zap.Int("worker_id", workerID),
			zap.String("job_id", job.ID.String()),
			zap.String("tenant_id", job.TenantID.String()),
			zap.Error(err),
		)

		if job.ShouldRetry() {
			job.ScheduleRetry(s.config.RetryBaseWait)
			s.logger.Info("Sync job scheduled for retry",
				zap.String("job_id", job.ID.String()),
				zap.Int("retry_count", job.RetryCount),
				zap.Int("max_retries", job.MaxRetries),
				zap.Time("next_retry_at", *job.NextRetryAt),
			)
			s.scheduleRetry(ctx, job)
		}

		s.addToHistory(job)
		return
	}

	job.Complete(summary)
	s.logger.Info("Sync job completed",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("tenant_id", job.TenantID.String()),
		zap.Int("customers", summary.Customers),
		zap.Int("products", summary.Products),
		zap.Int("orders", summary.Orders),
	)
	s.addToHistory(job)
}

// scheduleRetry re-submits the job once its backoff has elapsed. The timer
// goroutine exits on shutdown so the job queue never blocks worker drain.
func (s *SyncScheduler) scheduleRetry(ctx context.Context, job *SyncJob) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		timer := time.NewTimer(time.Until(*job.NextRetryAt))
		defer timer.Stop()

		select {
		case <-ctx.Done():
		case <-timer.C:
			if err := s.SubmitJob(job); err != nil {
				s.logger.Warn("Dropping sync job retry",
					zap.String("job_id", job.ID.String()),
					zap.Error(err))
			}
		}
	}()
}

// addToHistory records a finished job, newest first
func (s *SyncScheduler) addToHistory(job *SyncJob) {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	s.history = append([]*SyncJob{job}, s.history...)
	if len(s.history) > s.maxHistory {
		s.history = s.history[:s.maxHistory]
	}
}

// GetJobHistory returns recent job history
func (s *SyncScheduler) GetJobHistory(limit int) []*SyncJob {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}
	result := make([]*SyncJob, limit)
	copy(result, s.history[:limit])
	return result
}

// GetJobHistoryByTenant returns job history for a specific tenant
func (s *SyncScheduler) GetJobHistoryByTenant(tenantID uuid.UUID, limit int) []*SyncJob {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	if limit <= 0 {
		limit = s.maxHistory
	}
	result := make([]*SyncJob, 0, limit)
	for _, job := range s.history {
		if job.TenantID == tenantID {
			result = append(result, job)
			if len(result) >= limit {
				break
			}
		}
	}
	return result
}
