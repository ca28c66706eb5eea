// Package telemetry wires OpenTelemetry tracing and metrics behind OTLP
// exporters. When disabled it hands out no-op providers so call sites never
// branch on configuration.
package telemetry

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/uniformedi/dlpgate/internal/redact"
)

// Config controls telemetry setup.
type Config struct {
	Enabled  bool
	Endpoint string
	Protocol string // grpc | http
	Service  string
	Version  string
}

// Provider wires tracer/meter providers and exposes filter instruments.
type Provider struct {
	Enabled bool
	tracer  trace.Tracer
	meter   metric.Meter

	requestsCounter     metric.Int64Counter
	scanDuration        metric.Float64Histogram
	findingsCounter     metric.Int64Counter
	filesSkippedCounter metric.Int64Counter
	blockedCounter      metric.Int64Counter

	shutdownTraceProvider func(context.Context) error
	shutdownMeterProvider func(context.Context) error
}

// NewProvider configures OTLP exporters and providers. When disabled, it
// returns no-op providers.
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !cfg.Enabled {
		no := &Provider{
			Enabled: false,
			tracer:  trace.NewNoopTracerProvider().Tracer(""),
			meter:   noop.NewMeterProvider().Meter(""),
		}
		no.initInstruments()
		return no, nil
	}

	redact.Logf("telemetry enabled (OpenTelemetry OTLP %s) endpoint=%s; if no collector is listening, periodic 'failed to upload metrics' warnings are expected", strings.ToLower(cfg.Protocol), cfg.Endpoint)

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			attribute.String("service.name", cfg.Service),
			attribute.String("service.version", cfg.Version),
		),
	)
	if err != nil {
		return nil, err
	}

	var traceExp sdktrace.SpanExporter
	var metricReader sdkmetric.Reader
	switch strings.ToLower(cfg.Protocol) {
	case "", "grpc":
		texp, err := otlptracegrpc.New(ctx, otlptracegrpc.WithEndpoint(cfg.Endpoint), otlptracegrpc.WithInsecure())
		if err != nil {
			return nil, err
		}
		mexp, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithEndpoint(cfg.Endpoint), otlpmetricgrpc.WithInsecure())
		if err != nil {
			return nil, err
		}
		traceExp = texp
		metricReader = sdkmetric.NewPeriodicReader(mexp)
	case "http":
		texp, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(cfg.Endpoint), otlptracehttp.WithInsecure())
		if err != nil {
			return nil, err
		}
		mexp, err := otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpoint(cfg.Endpoint), otlpmetrichttp.WithInsecure())
		if err != nil {
			return nil, err
		}
		traceExp = texp
		metricReader = sdkmetric.NewPeriodicReader(mexp)
	default:
		return nil, fmt.Errorf("unsupported telemetry protocol %q (want grpc or http)", cfg.Protocol)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(traceExp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithResource(res), sdkmetric.WithReader(metricReader))
	otel.SetMeterProvider(mp)

	p := &Provider{
		Enabled:               true,
		tracer:                tp.Tracer("dlpgate"),
		meter:                 mp.Meter("dlpgate"),
		shutdownTraceProvider: tp.Shutdown,
		shutdownMeterProvider: mp.Shutdown,
	}
	p.initInstruments()
	return p, nil
}

func (p *Provider) initInstruments() {
	if p == nil {
		return
	}
	// Instrument creation errors are ignored to keep telemetry best-effort.
	p.requestsCounter, _ = p.meter.Int64Counter("dlpgate_requests_total")
	p.scanDuration, _ = p.meter.Float64Histogram("dlpgate_scan_duration_ms")
	p.findingsCounter, _ = p.meter.Int64Counter("dlpgate_findings_total")
	p.filesSkippedCounter, _ = p.meter.Int64Counter("dlpgate_files_skipped_total")
	p.blockedCounter, _ = p.meter.Int64Counter("dlpgate_blocked_total")
}

// Tracer returns the tracer.
func (p *Provider) Tracer() trace.Tracer {
	if p == nil {
		return trace.NewNoopTracerProvider().Tracer("")
	}
	return p.tracer
}

// Shutdown flushes providers.
func (p *Provider) Shutdown(ctx context.Context) {
	if p == nil {
		return
	}
	if p.shutdownTraceProvider != nil {
		_ = p.shutdownTraceProvider(ctx)
	}
	if p.shutdownMeterProvider != nil {
		_ = p.shutdownMeterProvider(ctx)
	}
}

// RecordFilterMetrics emits one request's counters with safe labels.
// Findings and skipped counts are totals for the pass; no label or value
// ever carries scanned content.
func (p *Provider) RecordFilterMetrics(direction, outcome, mode string, durMs float64, findings, skippedFiles int) {
	if p == nil {
		return
	}
	labels := SafeAttributes(map[string]interface{}{
		"dlpgate.direction": direction,
		"dlpgate.outcome":   outcome,
		"dlpgate.mode":      mode,
	})
	ctx := context.Background()
	p.requestsCounter.Add(ctx, 1, metric.WithAttributes(labels...))
	p.scanDuration.Record(ctx, durMs, metric.WithAttributes(labels...))
	if findings > 0 {
		p.findingsCounter.Add(ctx, int64(findings), metric.WithAttributes(labels...))
	}
	if skippedFiles > 0 {
		p.filesSkippedCounter.Add(ctx, int64(skippedFiles), metric.WithAttributes(labels...))
	}
	if outcome == "blocked" {
		p.blockedCounter.Add(ctx, 1, metric.WithAttributes(labels...))
	}
}
