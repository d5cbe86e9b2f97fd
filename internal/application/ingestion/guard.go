package ingestion

import (
	"sync"

	"github.com/google/uuid"
)

// TenantGuard serializes sync runs per tenant. At most one run may hold the
// guard for a given tenant at a time; concurrent attempts are rejected
// instead of queued.
type TenantGuard struct {
	running sync.Map // uuid.UUID -> struct{}
}

// NewTenantGuard creates an empty guard
func NewTenantGuard() *TenantGuard {
	return &TenantGuard{}
}

// TryAcquire reserves the tenant for a sync run. It returns false when a run
// is already in flight for that tenant.
func (g *TenantGuard) TryAcquire(tenantID uuid.UUID) bool {
	_, loaded := g.running.LoadOrStore(tenantID, struct{}{})
	return !loaded
}

// Release frees the tenant after a run finishes. Releasing a tenant that is
// not held is a no-op.
func (g *TenantGuard) Release(tenantID uuid.UUID) {
	g.running.Delete(tenantID)
}

// IsRunning reports whether a sync run currently holds the tenant
func (g *TenantGuard) IsRunning(tenantID uuid.UUID) bool {
	_, ok := g.running.Load(tenantID)
	return ok
}
