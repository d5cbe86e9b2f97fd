package ingestion

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTenantGuard_AcquireRelease(t *testing.T) {
	guard := NewTenantGuard()
	tenantA := uuid.New()
	tenantB := uuid.New()

	assert.True(t, guard.TryAcquire(tenantA))
	assert.False(t, guard.TryAcquire(tenantA), "second acquire for the same tenant is rejected")
	assert.True(t, guard.TryAcquire(tenantB), "other tenants are unaffected")
	assert.True(t, guard.IsRunning(tenantA))

	guard.Release(tenantA)
	assert.False(t, guard.IsRunning(tenantA))
	assert.True(t, guard.TryAcquire(tenantA))

	// Releasing an unheld tenant is a no-op.
	guard.Release(uuid.New())
}

func TestTenantGuard_ConcurrentAcquire(t *testing.T) {
	guard := NewTenantGuard()
	tenantID := uuid.New()

	var acquired atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if guard.TryAcquire(tenantID) {
				acquired.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), acquired.Load(), "exactly one goroutine wins")
}
