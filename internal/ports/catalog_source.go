package ports

import (
	"context"

	"github.com/emiliopalmerini/ocgbuilder/internal/domain"
)

// CatalogSource loads the remote catalogs the builder offers.
type CatalogSource interface {
	Archives(ctx context.Context) ([]domain.Archive, error)
	Scenarios(ctx context.Context) ([]domain.Scenario, error)
	Models(ctx context.Context) ([]domain.ClimateModel, error)
	Variables(ctx context.Context) ([]domain.Variable, error)
	Statistics(ctx context.Context) ([]domain.StatisticNode, error)
	Catalog(ctx context.Context) (*domain.Catalog, error)
}
