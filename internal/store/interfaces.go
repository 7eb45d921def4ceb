package store

import (
	"context"

	"materials-quote-service/internal/domain"
)

// LoadCatalogParams filters the catalog snapshot.
type LoadCatalogParams struct {
	Suppliers []string // Empty loads every supplier
}

// CatalogStorer reads the supplier catalog snapshot the index is built from.
type CatalogStorer interface {
	LoadCatalog(ctx context.Context, params LoadCatalogParams) ([]domain.RawCatalogRecord, error)
	Ping(ctx context.Context) error
	Close() error
}
