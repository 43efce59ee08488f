package ports

import (
	"context"

	"github.com/emiliopalmerini/ocgbuilder/internal/domain"
)

type AOIRepository interface {
	Create(ctx context.Context, aoi *domain.AOI) error
	Get(ctx context.Context, id string) (*domain.AOI, error)
	List(ctx context.Context) ([]*domain.AOI, error)
	Delete(ctx context.Context, id string) error
}
