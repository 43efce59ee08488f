package ports

import (
	"context"
	"time"
)

// MetricsExporter exports builder usage metrics to an external observability system.
type MetricsExporter interface {
	// RecordRequestBuilt counts a generated request URL.
	RecordRequestBuilt(ctx context.Context, m RequestMetrics)
	// RecordCatalogLoad records how long a catalog load took and whether it failed.
	RecordCatalogLoad(ctx context.Context, duration time.Duration, err error)
	// Close shuts down the exporter and flushes any pending metrics.
	Close(ctx context.Context) error
}

// RequestMetrics describes a generated request.
type RequestMetrics struct {
	Format       string
	Archive      string
	Grouping     string
	Statistics   []string
	HasAOI       bool
	DateSpanDays int
}
