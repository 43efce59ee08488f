// Package catalog owns the catalog data shared by the web builder and the CLI.
//
// A Store is created once per process, loaded explicitly, passed to whichever
// component needs catalog data, and closed on shutdown.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/emiliopalmerini/ocgbuilder/internal/domain"
	"github.com/emiliopalmerini/ocgbuilder/internal/ports"
	"github.com/emiliopalmerini/ocgbuilder/internal/util"
)

var ErrNotLoaded = errors.New("catalog not loaded")

type Store struct {
	source  ports.CatalogSource
	cache   ports.CatalogCache
	metrics ports.MetricsExporter

	mu       sync.RWMutex
	current  *domain.Catalog
	lastErr  error
	inflight *util.Task[*domain.Catalog]
	loadSeq  uint64
}

type Option func(*Store)

// WithCache falls back to the last good catalog when a load fails.
func WithCache(c ports.CatalogCache) Option {
	return func(s *Store) { s.cache = c }
}

func WithMetrics(m ports.MetricsExporter) Option {
	return func(s *Store) { s.metrics = m }
}

func NewStore(source ports.CatalogSource, opts ...Option) *Store {
	s := &Store{source: source}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load starts a catalog fetch, cancelling any fetch still in flight, and
// waits for it.
func (s *Store) Load(ctx context.Context) (*domain.Catalog, error) {
	return s.Start(ctx).Wait()
}

// Start begins a catalog fetch in the background. A fetch already in flight
// is cancelled; its result is discarded.
func (s *Store) Start(ctx context.Context) *util.Task[*domain.Catalog] {
	s.mu.Lock()
	if s.inflight != nil {
		s.inflight.Cancel()
	}
	s.loadSeq++
	seq := s.loadSeq
	task := util.Go(ctx, func(ctx context.Context) (*domain.Catalog, error) {
		cat, err := s.fetch(ctx)
		s.finish(seq, cat, err)
		return cat, err
	})
	s.inflight = task
	s.mu.Unlock()
	return task
}

func (s *Store) fetch(ctx context.Context) (*domain.Catalog, error) {
	start := time.Now()
	cat, err := s.source.Catalog(ctx)
	if s.metrics != nil && !errors.Is(err, context.Canceled) {
		s.metrics.RecordCatalogLoad(ctx, time.Since(start), err)
	}
	if err == nil {
		if s.cache != nil {
			if cerr := s.cache.Store(ctx, cat); cerr != nil {
				slog.Warn("failed to cache catalog", "error", cerr)
			}
		}
		return cat, nil
	}
	if errors.Is(err, context.Canceled) || s.cache == nil {
		return nil, err
	}

	cached, cerr := s.cache.Load(ctx)
	if cerr != nil {
		return nil, err
	}
	slog.Warn("catalog load failed, using cached copy", "error", err)
	return cached, nil
}

// finish publishes the result unless a newer load has replaced this one.
func (s *Store) finish(seq uint64, cat *domain.Catalog, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.loadSeq {
		return
	}
	s.inflight = nil
	if err != nil {
		s.lastErr = err
		slog.Error("catalog load failed", "error", err)
		return
	}
	s.current = cat
	s.lastErr = nil
	slog.Info("catalog loaded",
		"archives", len(cat.Archives),
		"scenarios", len(cat.Scenarios),
		"models", len(cat.Models),
		"variables", len(cat.Variables),
		"statistics", len(cat.Statistics.Keys()))
}

// Current returns the latest catalog, or the error of the last failed load.
func (s *Store) Current() (*domain.Catalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current != nil {
		return s.current, nil
	}
	if s.lastErr != nil {
		return nil, s.lastErr
	}
	return nil, ErrNotLoaded
}

// Close cancels any in-flight fetch.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight != nil {
		s.inflight.Cancel()
		s.inflight = nil
	}
	s.loadSeq++
}
