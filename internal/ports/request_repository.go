package ports

import (
	"context"

	"github.com/emiliopalmerini/ocgbuilder/internal/domain"
)

type RequestRepository interface {
	Create(ctx context.Context, record *domain.RequestRecord) error
	List(ctx context.Context, limit int) ([]*domain.RequestRecord, error)
}
