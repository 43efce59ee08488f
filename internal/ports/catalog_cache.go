package ports

import (
	"context"

	"github.com/emiliopalmerini/ocgbuilder/internal/domain"
)

// CatalogCache keeps the last catalog that loaded successfully.
type CatalogCache interface {
	Store(ctx context.Context, catalog *domain.Catalog) error
	Load(ctx context.Context) (*domain.Catalog, error)
}
