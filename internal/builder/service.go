// Package builder turns builder form input into validated data requests and
// records the ones the user generates.
package builder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/emiliopalmerini/ocgbuilder/internal/domain"
	"github.com/emiliopalmerini/ocgbuilder/internal/ports"
)

// CatalogProvider returns the catalog currently loaded.
type CatalogProvider interface {
	Current() (*domain.Catalog, error)
}

// ValidationError lists everything wrong with a form.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }

func (e *ValidationError) Unwrap() error { return e.Err }

// Problems returns one message per invalid field.
func (e *ValidationError) Problems() []string {
	return strings.Split(e.Err.Error(), "\n")
}

// Service provides the request building logic shared by the web UI and the CLI.
type Service struct {
	baseURL  string
	catalog  CatalogProvider
	aois     ports.AOIRepository
	requests ports.RequestRepository
	metrics  ports.MetricsExporter
}

func NewService(
	baseURL string,
	catalog CatalogProvider,
	aois ports.AOIRepository,
	requests ports.RequestRepository,
	metrics ports.MetricsExporter,
) *Service {
	return &Service{
		baseURL:  strings.TrimRight(baseURL, "/"),
		catalog:  catalog,
		aois:     aois,
		requests: requests,
		metrics:  metrics,
	}
}

func (s *Service) BaseURL() string {
	return s.baseURL
}

// Request resolves and validates a form against the loaded catalog.
func (s *Service) Request(ctx context.Context, f Form) (domain.DataRequest, error) {
	cat, err := s.catalog.Current()
	if err != nil {
		return domain.DataRequest{}, err
	}

	req := domain.NewDataRequest()
	req.Archive = strings.TrimSpace(f.Archive)
	req.Scenario = strings.TrimSpace(f.Scenario)
	req.Model = strings.TrimSpace(f.Model)
	req.Variable = strings.TrimSpace(f.Variable)
	req.Clip = f.Clip
	req.Aggregate = f.Aggregate
	if f.Format != "" {
		req.Format = f.Format
	}

	var errs []error
	if f.Run != "" {
		run, err := strconv.Atoi(strings.TrimSpace(f.Run))
		if err != nil {
			errs = append(errs, fmt.Errorf("run must be a whole number"))
		} else {
			req.Run = run
		}
	}

	errs = append(errs, checkCatalog(cat, req)...)

	// Ordering is left to req.Validate so a reversed pair is reported once.
	missingDate := false
	for _, d := range []struct {
		field domain.DateField
		raw   string
		dst   *time.Time
	}{
		{domain.FieldStart, f.Start, &req.Start},
		{domain.FieldEnd, f.End, &req.End},
	} {
		if strings.TrimSpace(d.raw) == "" {
			missingDate = true
			continue
		}
		date, err := domain.ParseDate(d.raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s date: %w", d.field, err))
			continue
		}
		*d.dst = date
	}

	grouping, err := domain.ParseGroupingInterval(f.Grouping)
	if err != nil {
		errs = append(errs, err)
	} else {
		req.Grouping = grouping
	}

	if id := strings.TrimSpace(f.AOI); id != "" {
		aoi, err := s.resolveAOI(ctx, id)
		if err != nil {
			errs = append(errs, err)
		} else {
			req.AOI = aoi.Name
		}
	}

	selections := domain.NewSelectionSet(cat.Statistics)
	for _, raw := range f.Calculations {
		calc, err := domain.ParseCalculation(raw)
		if err == nil {
			err = selections.Restore(calc)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	req.Calculations = selections.Calculations()

	if err := req.Validate(); err != nil {
		if !missingDate {
			err = dropProblem(err, domain.ErrDateRangeRequired)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return req, &ValidationError{Err: errors.Join(errs...)}
	}
	return req, nil
}

// dropProblem removes target from a joined validation error.
func dropProblem(err, target error) error {
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		if errors.Is(err, target) {
			return nil
		}
		return err
	}
	var keep []error
	for _, e := range joined.Unwrap() {
		if !errors.Is(e, target) {
			keep = append(keep, e)
		}
	}
	return errors.Join(keep...)
}

func (s *Service) resolveAOI(ctx context.Context, id string) (*domain.AOI, error) {
	if s.aois == nil {
		return nil, fmt.Errorf("areas-of-interest are not available")
	}
	aoi, err := s.aois.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("unknown area-of-interest %q", id)
	}
	return aoi, err
}

func checkCatalog(cat *domain.Catalog, req domain.DataRequest) []error {
	var errs []error
	check := func(kind, value string, known func(string) bool) {
		if value != "" && !known(value) {
			errs = append(errs, fmt.Errorf("unknown %s %q", kind, value))
		}
	}
	check("archive", req.Archive, func(v string) bool {
		for _, a := range cat.Archives {
			if a.URLSlug == v {
				return true
			}
		}
		return false
	})
	check("scenario", req.Scenario, func(v string) bool {
		for _, sc := range cat.Scenarios {
			if sc.URLSlug == v {
				return true
			}
		}
		return false
	})
	check("model", req.Model, func(v string) bool {
		for _, m := range cat.Models {
			if m.URLSlug == v {
				return true
			}
		}
		return false
	})
	check("variable", req.Variable, func(v string) bool {
		for _, vr := range cat.Variables {
			if vr.URLSlug == v {
				return true
			}
		}
		return false
	})
	return errs
}

// BuildURL renders the request URL without recording it.
func (s *Service) BuildURL(ctx context.Context, f Form) (string, domain.DataRequest, error) {
	req, err := s.Request(ctx, f)
	if err != nil {
		return "", req, err
	}
	u, err := req.URL(s.baseURL)
	if err != nil {
		return "", req, &ValidationError{Err: err}
	}
	return u, req, nil
}

// Generate builds the URL, stores it in the history and counts it.
func (s *Service) Generate(ctx context.Context, f Form) (*domain.RequestRecord, error) {
	u, req, err := s.BuildURL(ctx, f)
	if err != nil {
		return nil, err
	}

	record := &domain.RequestRecord{URL: u, Format: req.Format}
	if s.requests != nil {
		if err := s.requests.Create(ctx, record); err != nil {
			return nil, fmt.Errorf("failed to save request: %w", err)
		}
	}
	if s.metrics != nil {
		s.metrics.RecordRequestBuilt(ctx, requestMetrics(req))
	}
	slog.Info("request generated", "format", req.Format, "url", u)
	return record, nil
}

// History returns the most recent generated requests.
func (s *Service) History(ctx context.Context, limit int) ([]*domain.RequestRecord, error) {
	if s.requests == nil {
		return nil, nil
	}
	return s.requests.List(ctx, limit)
}

func requestMetrics(req domain.DataRequest) ports.RequestMetrics {
	m := ports.RequestMetrics{
		Format:       req.Format,
		Archive:      req.Archive,
		Grouping:     string(req.Grouping),
		HasAOI:       req.AOI != "",
		DateSpanDays: int(req.End.Sub(req.Start).Hours()/24) + 1,
	}
	for _, c := range req.Calculations {
		m.Statistics = append(m.Statistics, c.Key)
	}
	return m
}
