package catalogapi

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/emiliopalmerini/ocgbuilder/internal/domain"
)

//go:embed fixtures/*.json
var fixtureFiles embed.FS

// FixtureSource serves a small embedded catalog for offline use.
type FixtureSource struct{}

func NewFixtureSource() *FixtureSource {
	return &FixtureSource{}
}

func readFixture(ctx context.Context, name string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := fixtureFiles.ReadFile("fixtures/" + name)
	if err != nil {
		return fmt.Errorf("failed to read fixture %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse fixture %s: %w", name, err)
	}
	return nil
}

func (f *FixtureSource) Archives(ctx context.Context) ([]domain.Archive, error) {
	var out []domain.Archive
	if err := readFixture(ctx, "archives.json", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *FixtureSource) Scenarios(ctx context.Context) ([]domain.Scenario, error) {
	var out []domain.Scenario
	if err := readFixture(ctx, "scenarios.json", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *FixtureSource) Models(ctx context.Context) ([]domain.ClimateModel, error) {
	var out []domain.ClimateModel
	if err := readFixture(ctx, "models.json", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *FixtureSource) Variables(ctx context.Context) ([]domain.Variable, error) {
	var out []domain.Variable
	if err := readFixture(ctx, "variables.json", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *FixtureSource) Statistics(ctx context.Context) ([]domain.StatisticNode, error) {
	var out []domain.StatisticNode
	if err := readFixture(ctx, "functions.json", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *FixtureSource) Catalog(ctx context.Context) (*domain.Catalog, error) {
	return loadCatalog(ctx, f)
}
