package catalogapi

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/emiliopalmerini/ocgbuilder/internal/domain"
)

type partialSource interface {
	Archives(ctx context.Context) ([]domain.Archive, error)
	Scenarios(ctx context.Context) ([]domain.Scenario, error)
	Models(ctx context.Context) ([]domain.ClimateModel, error)
	Variables(ctx context.Context) ([]domain.Variable, error)
	Statistics(ctx context.Context) ([]domain.StatisticNode, error)
}

// loadCatalog fetches all five catalogs in parallel. The first failure
// cancels the remaining fetches.
func loadCatalog(ctx context.Context, src partialSource) (*domain.Catalog, error) {
	g, ctx := errgroup.WithContext(ctx)

	var (
		archives  []domain.Archive
		scenarios []domain.Scenario
		models    []domain.ClimateModel
		variables []domain.Variable
		stats     []domain.StatisticNode
	)

	g.Go(func() (err error) {
		archives, err = src.Archives(ctx)
		return err
	})
	g.Go(func() (err error) {
		scenarios, err = src.Scenarios(ctx)
		return err
	})
	g.Go(func() (err error) {
		models, err = src.Models(ctx)
		return err
	})
	g.Go(func() (err error) {
		variables, err = src.Variables(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats, err = src.Statistics(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	tree := domain.NewStatisticTree(stats)
	for _, key := range tree.Keys() {
		d, _ := tree.Descriptor(key)
		if d.Split().Malformed {
			slog.Warn("statistic description has out-of-order placeholders", "key", key, "desc", d.Description)
		}
	}

	return &domain.Catalog{
		Archives:   archives,
		Scenarios:  scenarios,
		Models:     models,
		Variables:  variables,
		Statistics: tree,
	}, nil
}
