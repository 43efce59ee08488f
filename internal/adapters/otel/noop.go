package otel

import (
	"context"
	"time"

	"github.com/emiliopalmerini/ocgbuilder/internal/ports"
)

// NoOpExporter is a metrics exporter that does nothing.
type NoOpExporter struct{}

// NewNoOpExporter creates a new no-op exporter for graceful degradation.
func NewNoOpExporter() *NoOpExporter {
	return &NoOpExporter{}
}

func (e *NoOpExporter) RecordRequestBuilt(ctx context.Context, m ports.RequestMetrics) {}

func (e *NoOpExporter) RecordCatalogLoad(ctx context.Context, duration time.Duration, err error) {}

func (e *NoOpExporter) Close(ctx context.Context) error {
	return nil
}
