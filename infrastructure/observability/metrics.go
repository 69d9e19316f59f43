package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rewards/config"
	"rewards/domain/events"

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

// MetricsProvider manages OpenTelemetry metrics for the rewards service
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	enabled       bool
	mu            sync.RWMutex

	ledgerEntriesCounter   metric.Int64Counter
	pityTriggersCounter    metric.Int64Counter
	retriesCounter         metric.Int64Counter
	eventsPublishedCounter metric.Int64Counter
	operationDurationHist  metric.Float64Histogram
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// Initialize sets up the exporter selected by config. A disabled provider records nothing.
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		return nil
	}

	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

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
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err = otlpmetricgrpc.New(dialCtx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.WithField("endpoint", mp.config.OTelOTLPEndpoint).Info("Using OTLP metric exporter")

	case "none":
		log.Info("Metrics export disabled (exporter_type='none')")
		mp.initialized = true
		return nil

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(
				exporter,
				sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
			),
		),
	)
	otel.SetMeterProvider(mp.meterProvider)

	if err := mp.createInstruments(mp.meterProvider.Meter("rewards")); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	mp.enabled = true
	log.Info("Metrics provider initialized successfully")
	return nil
}

// InitializeWithMeterProvider wires the instruments to an existing provider
func (mp *MetricsProvider) InitializeWithMeterProvider(provider metric.MeterProvider) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if err := mp.createInstruments(provider.Meter("rewards")); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}
	mp.initialized = true
	mp.enabled = true
	return nil
}

func (mp *MetricsProvider) createInstruments(meter metric.Meter) error {
	var err error
	mp.meter = meter

	mp.ledgerEntriesCounter, err = meter.Int64Counter(
		LedgerEntriesTotal,
		metric.WithDescription("Total number of ledger entries written"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create ledger entries counter: %w", err)
	}

	mp.pityTriggersCounter, err = meter.Int64Counter(
		PityTriggersTotal,
		metric.WithDescription("Total number of guaranteed pity payouts"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create pity triggers counter: %w", err)
	}

	mp.retriesCounter, err = meter.Int64Counter(
		TransactionRetries,
		metric.WithDescription("Total number of units of work replayed after a conflict"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create retries counter: %w", err)
	}

	mp.eventsPublishedCounter, err = meter.Int64Counter(
		EventsPublishedTotal,
		metric.WithDescription("Total number of domain events published after commit"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create events published counter: %w", err)
	}

	mp.operationDurationHist, err = meter.Float64Histogram(
		OperationDuration,
		metric.WithDescription("Duration of application operations including retries"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create operation duration histogram: %w", err)
	}

	return nil
}

// Shutdown flushes and stops the meter provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		if err := mp.meterProvider.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown meter provider: %w", err)
		}
	}
	mp.enabled = false
	return nil
}

// RecordRetry records a unit of work replay
func (mp *MetricsProvider) RecordRetry(ctx context.Context, operation string) {
	if !mp.isEnabled() {
		return
	}
	mp.retriesCounter.Add(ctx, 1, metric.WithAttributes(attribute.String(LabelOperation, operation)))
}

// RecordOperation records an operation's duration and outcome
func (mp *MetricsProvider) RecordOperation(ctx context.Context, operation string, duration time.Duration, err error) {
	if !mp.isEnabled() {
		return
	}

	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	mp.operationDurationHist.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(LabelOperation, operation),
		attribute.String(LabelOutcome, outcome),
	))
}

// HandleEvent is a local event handler counting ledger entries and pity payouts
func (mp *MetricsProvider) HandleEvent(ctx context.Context, event events.Event) error {
	if !mp.isEnabled() {
		return nil
	}

	mp.eventsPublishedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String(LabelEventType, string(event.Type()))))

	switch e := event.(type) {
	case events.BalanceChangedEvent:
		mp.ledgerEntriesCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String(LabelCurrency, string(e.Currency)),
			attribute.String(LabelTransactionType, string(e.TransactionType)),
		))
	case events.PityTriggeredEvent:
		mp.pityTriggersCounter.Add(ctx, 1, metric.WithAttributes(attribute.String(LabelPrizeID, e.PrizeID)))
	}
	return nil
}

func (mp *MetricsProvider) isEnabled() bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.enabled
}
