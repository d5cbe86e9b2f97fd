package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shopsync/backend/internal/domain/commerce"
)

const (
	defaultTrendDays = 30
	maxTrendDays     = 365
	defaultTopCount  = 5
	maxTopCount      = 50
	defaultStatsTTL  = time.Minute
)

// StatsCache caches computed dashboard payloads. A miss is (nil, false, nil);
// cache failures are never fatal to a dashboard request.
type StatsCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// DashboardStats is the headline view of one tenant's synchronized data
type DashboardStats struct {
	Customers int64           `json:"customers"`
	Products  int64           `json:"products"`
	Orders    int64           `json:"orders"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// DashboardServiceImpl computes dashboard aggregates over the synchronized
// commerce data, with short-lived caching for the stats panel.
type DashboardServiceImpl struct {
	customerRepo commerce.CustomerRepository
	productRepo  commerce.ProductRepository
	orderRepo    commerce.OrderRepository
	cache        StatsCache
	statsTTL     time.Duration
	logger       *zap.Logger
}

// NewDashboardService creates a dashboard service. cache may be nil to
// disable caching.
func NewDashboardService(
	customerRepo commerce.CustomerRepository,
	productRepo commerce.ProductRepository,
	orderRepo commerce.OrderRepository,
	cache StatsCache,
	logger *zap.Logger,
) *DashboardServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardServiceImpl{
		customerRepo: customerRepo,
		productRepo:  productRepo,
		orderRepo:    orderRepo,
		cache:        cache,
		statsTTL:     defaultStatsTTL,
		logger:       logger,
	}
}

// Stats returns entity counts and total revenue for the tenant
func (s *DashboardServiceImpl) Stats(ctx context.Context, tenantID uuid.UUID) (*DashboardStats, error) {
	cacheKey := fmt.Sprintf("dashboard:stats:%s", tenantID)

	if cached, ok := s.cacheGet(ctx, cacheKey); ok {
		return cached, nil
	}

	customers, err := s.customerRepo.CountForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	products, err := s.productRepo.CountForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.CountForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	revenue, err := s.orderRepo.RevenueForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		Customers: customers,
		Products:  products,
		Orders:    orders,
		Revenue:   revenue,
	}
	s.cachePut(ctx, cacheKey, stats)
	return stats, nil
}

// OrdersTrend returns per-day order counts and revenue over the trailing
// window. days defaults to 30 and is capped at a year.
func (s *DashboardServiceImpl) OrdersTrend(ctx context.Context, tenantID uuid.UUID, days int) ([]commerce.TrendPoint, error) {
	if days <= 0 {
		days = defaultTrendDays
	}
	if days > maxTrendDays {
		days = maxTrendDays
	}

	since := time.Now().UTC().AddDate(0, 0, -days).Truncate(24 * time.Hour)
	points, err := s.orderRepo.DailyTrend(ctx, tenantID, since)
	if err != nil {
		return nil, err
	}
	if points == nil {
		points = []commerce.TrendPoint{}
	}
	return points, nil
}

// TopCustomers returns the tenant's highest spending customers. limit
// defaults to 5 and is capped at 50.
func (s *DashboardServiceImpl) TopCustomers(ctx context.Context, tenantID uuid.UUID, limit int) ([]commerce.Customer, error) {
	if limit <= 0 {
		limit = defaultTopCount
	}
	if limit > maxTopCount {
		limit = maxTopCount
	}
	return s.customerRepo.TopBySpend(ctx, tenantID, limit)
}

func (s *DashboardServiceImpl) cacheGet(ctx context.Context, key string) (*DashboardStats, bool) {
	if s.cache == nil {
		return nil, false
	}
	payload, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Stats cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var stats DashboardStats
	if err := json.Unmarshal(payload, &stats); err != nil {
		s.logger.Warn("Discarding corrupt stats cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &stats, true
}

func (s *DashboardServiceImpl) cachePut(ctx context.Context, key string, stats *DashboardStats) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.statsTTL); err != nil {
		s.logger.Warn("Stats cache write failed", zap.String("key", key), zap.Error(err))
	}
}
