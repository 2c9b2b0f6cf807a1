package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"lottery/config"
	"lottery/events"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// MetricsProvider manages OpenTelemetry metrics for the lottery service
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	enabled       bool
	mu            sync.RWMutex

	drawsCounter         metric.Int64Counter
	drawWinnersHist      metric.Int64Histogram
	resetsCounter        metric.Int64Counter
	authFailuresCounter  metric.Int64Counter
	rosterImportsCounter metric.Int64Counter
	natsPublishedCounter metric.Int64Counter
	natsFailuresCounter  metric.Int64Counter
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// Initialize sets up the exporter selected by OTEL_EXPORTER_TYPE
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	var exporter sdkmetric.Exporter
	var err error

	switch mp.config.OTelExporterType {
	case "console":
		exporter, err = stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Info("Using console metric exporter")

	case "otlp":
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err = otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.WithField("endpoint", mp.config.OTelOTLPEndpoint).Info("Using OTLP metric exporter")

	case "none", "":
		mp.mu.Lock()
		mp.initialized = true
		mp.mu.Unlock()
		log.Info("Metrics export disabled (exporter_type='none')")
		return nil

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(mp.config.OTelExportInterval()))
	return mp.InitializeWithReader(reader)
}

// InitializeWithReader sets up the provider on an explicit reader. Tests use
// a manual reader here.
func (mp *MetricsProvider) InitializeWithReader(reader sdkmetric.Reader) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		log.Warn("Metrics provider already initialized")
		return nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(mp.meterProvider)
	mp.meter = mp.meterProvider.Meter(mp.config.OTelServiceName)

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	mp.enabled = true
	log.Info("Metrics provider initialized successfully")
	return nil
}

func (mp *MetricsProvider) createInstruments() error {
	var err error

	mp.drawsCounter, err = mp.meter.Int64Counter(
		DrawsTotal,
		metric.WithDescription("Total number of committed draws"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create draws counter: %w", err)
	}

	mp.drawWinnersHist, err = mp.meter.Int64Histogram(
		DrawWinners,
		metric.WithDescription("Number of winners per committed draw"),
		metric.WithUnit("1"),
		metric.WithExplicitBucketBoundaries(1, 2, 5, 10, 25, 50, 100),
	)
	if err != nil {
		return fmt.Errorf("failed to create draw winners histogram: %w", err)
	}

	mp.resetsCounter, err = mp.meter.Int64Counter(
		ResetsTotal,
		metric.WithDescription("Total number of round resets"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create resets counter: %w", err)
	}

	mp.authFailuresCounter, err = mp.meter.Int64Counter(
		AuthFailuresTotal,
		metric.WithDescription("Total number of rejected passcodes"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create auth failures counter: %w", err)
	}

	mp.rosterImportsCounter, err = mp.meter.Int64Counter(
		RosterImportsTotal,
		metric.WithDescription("Total number of roster imports"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create roster imports counter: %w", err)
	}

	mp.natsPublishedCounter, err = mp.meter.Int64Counter(
		NATSPublishedTotal,
		metric.WithDescription("Total number of events published to NATS"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create NATS published counter: %w", err)
	}

	mp.natsFailuresCounter, err = mp.meter.Int64Counter(
		NATSPublishFailures,
		metric.WithDescription("Total number of failed NATS publishes"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create NATS failures counter: %w", err)
	}

	return nil
}

// Subscribe records domain events from the bus
func (mp *MetricsProvider) Subscribe(bus *events.Bus) {
	bus.Subscribe(events.EventTypeDrawCompleted, func(ctx context.Context, e events.Event) {
		if drawn, ok := e.(events.DrawCompletedEvent); ok {
			mp.RecordDraw(ctx, len(drawn.WinnerIDs))
		}
	})
	bus.Subscribe(events.EventTypeDrawReset, func(ctx context.Context, e events.Event) {
		mp.RecordReset(ctx)
	})
	bus.Subscribe(events.EventTypeAuthorizationFailed, func(ctx context.Context, e events.Event) {
		if failed, ok := e.(events.AuthorizationFailedEvent); ok {
			mp.RecordAuthFailure(ctx, failed.Role)
		}
	})
	bus.Subscribe(events.EventTypeRosterImported, func(ctx context.Context, e events.Event) {
		if imported, ok := e.(events.RosterImportedEvent); ok {
			mp.RecordRosterImport(ctx, imported.Source)
		}
	})
}

// Shutdown flushes and stops the exporter
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// RecordDraw records a committed draw
func (mp *MetricsProvider) RecordDraw(ctx context.Context, winners int) {
	if !mp.isEnabled() {
		return
	}
	mp.drawsCounter.Add(ctx, 1)
	mp.drawWinnersHist.Record(ctx, int64(winners))
}

// RecordReset records a round reset
func (mp *MetricsProvider) RecordReset(ctx context.Context) {
	if !mp.isEnabled() {
		return
	}
	mp.resetsCounter.Add(ctx, 1)
}

// RecordAuthFailure records a rejected passcode for a role
func (mp *MetricsProvider) RecordAuthFailure(ctx context.Context, role string) {
	if !mp.isEnabled() {
		return
	}
	mp.authFailuresCounter.Add(ctx, 1, metric.WithAttributes(attribute.String(LabelRole, role)))
}

// RecordRosterImport records a roster import
func (mp *MetricsProvider) RecordRosterImport(ctx context.Context, source string) {
	if !mp.isEnabled() {
		return
	}
	mp.rosterImportsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String(LabelSource, source)))
}

// RecordNATSPublish records the outcome of forwarding an event to NATS
func (mp *MetricsProvider) RecordNATSPublish(ctx context.Context, eventType string, err error) {
	if !mp.isEnabled() {
		return
	}
	attrs := metric.WithAttributes(attribute.String(LabelEventType, eventType))
	if err != nil {
		mp.natsFailuresCounter.Add(ctx, 1, attrs)
		return
	}
	mp.natsPublishedCounter.Add(ctx, 1, attrs)
}

func (mp *MetricsProvider) isEnabled() bool {
	if mp == nil {
		return false
	}
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.enabled
}
