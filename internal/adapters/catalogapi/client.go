package catalogapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/emiliopalmerini/ocgbuilder/internal/domain"
)

const (
	archivesPath  = "/api/archives.json"
	scenariosPath = "/api/scenarios.json"
	modelsPath    = "/api/models.json"
	variablesPath = "/api/variables.json"
	functionsPath = "/api/functions.json"
)

// Client fetches the builder catalogs from the OpenClimateGIS REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned non-200 status: %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func (c *Client) Archives(ctx context.Context) ([]domain.Archive, error) {
	var out []domain.Archive
	if err := c.getJSON(ctx, archivesPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Scenarios(ctx context.Context) ([]domain.Scenario, error) {
	var out []domain.Scenario
	if err := c.getJSON(ctx, scenariosPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Models(ctx context.Context) ([]domain.ClimateModel, error) {
	var out []domain.ClimateModel
	if err := c.getJSON(ctx, modelsPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Variables(ctx context.Context) ([]domain.Variable, error) {
	var out []domain.Variable
	if err := c.getJSON(ctx, variablesPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Statistics(ctx context.Context) ([]domain.StatisticNode, error) {
	var out []domain.StatisticNode
	if err := c.getJSON(ctx, functionsPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Catalog loads every catalog concurrently.
func (c *Client) Catalog(ctx context.Context) (*domain.Catalog, error) {
	return loadCatalog(ctx, c)
}
