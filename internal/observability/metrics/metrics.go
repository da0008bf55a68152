package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	provisionalPrints metric.Int64Counter
	printsConfirmed   metric.Int64Counter
	unitsConfirmed    metric.Int64Counter
	overageCharges    metric.Int64Counter
	debtTransitions   metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "megaprint"
	}
	meter := provider.Meter(name)

	provisionalPrints, err := meter.Int64Counter("megaprint_provisional_prints_total")
	if err != nil {
		return nil, err
	}
	printsConfirmed, err := meter.Int64Counter("megaprint_prints_confirmed_total")
	if err != nil {
		return nil, err
	}
	unitsConfirmed, err := meter.Int64Counter("megaprint_print_units_confirmed_total")
	if err != nil {
		return nil, err
	}
	overageCharges, err := meter.Int64Counter("megaprint_overage_charges_total")
	if err != nil {
		return nil, err
	}
	debtTransitions, err := meter.Int64Counter("megaprint_debt_transitions_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		provisionalPrints: provisionalPrints,
		printsConfirmed:   printsConfirmed,
		unitsConfirmed:    unitsConfirmed,
		overageCharges:    overageCharges,
		debtTransitions:   debtTransitions,
	}, nil
}

// RecordProvisionalPrint increments provisional tally event counts.
func (m *Metrics) RecordProvisionalPrint(ctx context.Context, direction string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("direction", strings.TrimSpace(direction)))
	m.provisionalPrints.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordPrintConfirmed increments confirmed batch counts and unit totals.
func (m *Metrics) RecordPrintConfirmed(ctx context.Context, units int64) {
	if m == nil {
		return
	}
	m.printsConfirmed.Add(ctx, 1)
	if units > 0 {
		m.unitsConfirmed.Add(ctx, units)
	}
}

// RecordOverageCharge increments overage charge counts.
func (m *Metrics) RecordOverageCharge(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("kind", strings.TrimSpace(kind)))
	m.overageCharges.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordDebtTransition increments debt state transition counts.
func (m *Metrics) RecordDebtTransition(ctx context.Context, toState string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("to_state", strings.TrimSpace(toState)))
	m.debtTransitions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"direction":   {},
	"kind":        {},
	"to_state":    {},
	"endpoint":    {},
	"status_code": {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
