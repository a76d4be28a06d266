package telemetry

import (
	"context"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// InitTracer installs a stdout trace exporter as the global provider.
// Any of secrets appearing in exported spans is replaced. The returned func flushes and stops it.
func InitTracer(serviceName string, secrets ...string) (func(context.Context) error, error) {
	stdout, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}
	var exporter sdktrace.SpanExporter = stdout
	if r := NewRedactor(secrets...); r != nil {
		exporter = redactingExporter{SpanExporter: stdout, redactor: r}
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			"",
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	log.Printf("🔭 OpenTelemetry initialized for %s", serviceName)
	return tp.Shutdown, nil
}
