package storage

import (
	"context"

	"github.com/google/uuid"

	ingestionapp "github.com/shopsync/backend/internal/application/ingestion"
	"github.com/shopsync/backend/internal/domain/ingestion"
)

// NoopPageArchive discards every page. Used when raw page archival is
// disabled in configuration, so callers never need a nil check of their own.
type NoopPageArchive struct{}

// NewNoopPageArchive creates a new NoopPageArchive
func NewNoopPageArchive() *NoopPageArchive {
	return &NoopPageArchive{}
}

// Ensure NoopPageArchive implements PageArchiver
var _ ingestionapp.PageArchiver = (*NoopPageArchive)(nil)

// ArchivePage discards the page
func (a *NoopPageArchive) ArchivePage(_ context.Context, _, _ uuid.UUID, _ ingestion.EntityKind, _ int, _ []byte) error {
	return nil
}
