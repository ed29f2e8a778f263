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
	inquiriesSubmitted   metric.Int64Counter
	notificationsSent    metric.Int64Counter
	notificationsFailed  metric.Int64Counter
	rateLimitAllowed     metric.Int64Counter
	rateLimitDenied      metric.Int64Counter
	imageVariantsCreated metric.Int64Counter
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

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(30*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.StopHook(provider.Shutdown))
	}
	log.Info("otlp metrics exporter ready",
		zap.String("endpoint", cfg.ExporterEndpoint),
		zap.String("protocol", cfg.ExporterProtocol),
	)

	return provider, nil
}

// New registers the shop's counters on provider.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "meatshop"
	}
	meter := provider.Meter(name)

	var m Metrics
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.inquiriesSubmitted, "meatshop_inquiries_submitted_total", "Contact inquiries stored, by source."},
		{&m.notificationsSent, "meatshop_inquiry_notifications_sent_total", "Inquiry notification emails delivered."},
		{&m.notificationsFailed, "meatshop_inquiry_notifications_failed_total", "Inquiry notification emails that failed."},
		{&m.rateLimitAllowed, "meatshop_rate_limit_allowed_total", "Contact submissions let through the limiter."},
		{&m.rateLimitDenied, "meatshop_rate_limit_denied_total", "Contact submissions rejected by the limiter, by reason."},
		{&m.imageVariantsCreated, "meatshop_image_variants_created_total", "Resized product image variants written."},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, fmt.Errorf("counter %s: %w", c.name, err)
		}
		*c.dst = counter
	}
	return &m, nil
}

func (m *Metrics) RecordInquirySubmitted(ctx context.Context, source string) {
	if m == nil {
		return
	}
	add(ctx, m.inquiriesSubmitted, 1, attribute.String("source", source))
}

func (m *Metrics) RecordNotification(ctx context.Context, source string, err error) {
	if m == nil {
		return
	}
	counter := m.notificationsSent
	if err != nil {
		counter = m.notificationsFailed
	}
	add(ctx, counter, 1, attribute.String("source", source))
}

func (m *Metrics) RecordRateLimitAllowed(ctx context.Context, endpoint string) {
	if m == nil {
		return
	}
	add(ctx, m.rateLimitAllowed, 1, attribute.String("endpoint", endpoint))
}

func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint, reason string) {
	if m == nil {
		return
	}
	add(ctx, m.rateLimitDenied, 1, attribute.String("endpoint", endpoint), attribute.String("reason", reason))
}

func (m *Metrics) RecordImageVariants(ctx context.Context, kind string, count int) {
	if m == nil || count <= 0 {
		return
	}
	add(ctx, m.imageVariantsCreated, int64(count), attribute.String("kind", kind))
}

func add(ctx context.Context, counter metric.Int64Counter, n int64, attrs ...attribute.KeyValue) {
	for i, attr := range attrs {
		if attr.Value.Type() == attribute.STRING {
			attrs[i] = attribute.String(string(attr.Key), strings.TrimSpace(attr.Value.AsString()))
		}
	}
	counter.Add(ctx, n, metric.WithAttributes(FilterAttributes(attrs...)...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
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
	"source":      {},
	"endpoint":    {},
	"reason":      {},
	"kind":        {},
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
