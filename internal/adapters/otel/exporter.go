package otel

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/emiliopalmerini/ocgbuilder/internal/ports"
)

const (
	serviceName    = "ocgbuilder"
	serviceVersion = "1.0.0"
)

// Exporter exports builder metrics to an OTEL Collector.
type Exporter struct {
	provider        *sdkmetric.MeterProvider
	requestsTotal   metric.Int64Counter
	statisticsTotal metric.Int64Counter
	dateSpanHist    metric.Int64Histogram
	catalogLoadHist metric.Float64Histogram
	catalogFailures metric.Int64Counter
}

// New returns an OTLP exporter when enabled, and a no-op exporter otherwise
// or when the exporter cannot be created.
func New(ctx context.Context, cfg Config) ports.MetricsExporter {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return NewNoOpExporter()
	}
	exp, err := NewExporter(ctx, cfg)
	if err != nil {
		slog.Warn("metrics disabled", "error", err)
		return NewNoOpExporter()
	}
	return exp
}

// NewExporter creates a new OTEL metrics exporter.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts,
			otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
			otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	e, err := newExporter(sdkmetric.NewPeriodicReader(exp), res)
	if err != nil {
		return nil, err
	}
	otel.SetMeterProvider(e.provider)
	return e, nil
}

func newExporter(reader sdkmetric.Reader, res *resource.Resource) (*Exporter, error) {
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)
	meter := provider.Meter(serviceName)

	requestsTotal, err := meter.Int64Counter(
		"ocgb_requests_built_total",
		metric.WithDescription("Request URLs generated by the builder"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating requests counter: %w", err)
	}

	statisticsTotal, err := meter.Int64Counter(
		"ocgb_statistics_selected_total",
		metric.WithDescription("Statistics included in generated requests"),
		metric.WithUnit("{statistic}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating statistics counter: %w", err)
	}

	dateSpanHist, err := meter.Int64Histogram(
		"ocgb_request_date_span_days",
		metric.WithDescription("Temporal range of generated requests"),
		metric.WithUnit("d"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating date span histogram: %w", err)
	}

	catalogLoadHist, err := meter.Float64Histogram(
		"ocgb_catalog_load_seconds",
		metric.WithDescription("Catalog load duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating catalog load histogram: %w", err)
	}

	catalogFailures, err := meter.Int64Counter(
		"ocgb_catalog_load_failures_total",
		metric.WithDescription("Catalog loads that failed"),
		metric.WithUnit("{load}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating catalog failures counter: %w", err)
	}

	return &Exporter{
		provider:        provider,
		requestsTotal:   requestsTotal,
		statisticsTotal: statisticsTotal,
		dateSpanHist:    dateSpanHist,
		catalogLoadHist: catalogLoadHist,
		catalogFailures: catalogFailures,
	}, nil
}

func (e *Exporter) RecordRequestBuilt(ctx context.Context, m ports.RequestMetrics) {
	opt := metric.WithAttributes(
		attribute.String("format", m.Format),
		attribute.String("archive", m.Archive),
		attribute.Bool("has_aoi", m.HasAOI),
	)
	e.requestsTotal.Add(ctx, 1, opt)
	e.dateSpanHist.Record(ctx, int64(m.DateSpanDays), opt)

	for _, key := range m.Statistics {
		e.statisticsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("key", key),
			attribute.String("grouping", m.Grouping),
		))
	}
}

func (e *Exporter) RecordCatalogLoad(ctx context.Context, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		e.catalogFailures.Add(ctx, 1)
	}
	e.catalogLoadHist.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("status", status)))
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
