package persistence

import (
	"testing"

	"github.com/shopsync/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens an in-memory SQLite database and migrates all models.
// The models avoid Postgres-only column types, so they migrate cleanly on
// SQLite, including the unique indexes the upserts rely on.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.TenantModel{},
		&models.CustomerModel{},
		&models.ProductModel{},
		&models.OrderModel{},
	)
	require.NoError(t, err)

	return db
}
