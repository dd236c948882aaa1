package otel

import (
	"context"
	"sync"

	eventbus "github.com/hanpama/mockgraph/internal/eventbus"
	events "github.com/hanpama/mockgraph/internal/events"
	runid "github.com/hanpama/mockgraph/internal/runid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Setup configures OpenTelemetry and attaches eventbus subscribers.
// If endpoint is empty, no telemetry is configured.
func Setup(endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	unsubscribe := newSubscriber(otel.Tracer("mockgraph")).register()

	return func(ctx context.Context) error {
		unsubscribe()
		return tp.Shutdown(ctx)
	}, nil
}

type subscriber struct {
	tracer     trace.Tracer
	buildSpans sync.Map // rid -> trace.Span
	mockSpans  sync.Map // rid -> trace.Span
}

func newSubscriber(tracer trace.Tracer) *subscriber {
	return &subscriber{tracer: tracer}
}

func (s *subscriber) register() (unsubscribe func()) {
	unsubscribers := []func(){
		eventbus.Subscribe(func(ctx context.Context, e events.DocumentBuildStart) {
			rid, _ := runid.FromContext(ctx)
			_, span := s.tracer.Start(ctx, "mockgraph.document.build")
			span.SetAttributes(attribute.String("mockgraph.document", e.Document))
			s.buildSpans.Store(rid, span)
		}),

		eventbus.Subscribe(func(ctx context.Context, e events.DocumentBuildFinish) {
			rid, _ := runid.FromContext(ctx)
			v, ok := s.buildSpans.LoadAndDelete(rid)
			if !ok {
				return
			}
			span := v.(trace.Span)
			span.SetAttributes(attribute.StringSlice("graphql.operation.names", e.Operations))
			endWithError(span, e.Err)
		}),

		eventbus.Subscribe(func(ctx context.Context, e events.MockStart) {
			rid, _ := runid.FromContext(ctx)
			_, span := s.tracer.Start(ctx, "mockgraph.mock")
			span.SetAttributes(
				attribute.String("graphql.operation.name", e.OperationName),
				attribute.String("graphql.operation.type", e.OperationType),
			)
			s.mockSpans.Store(rid, span)
		}),

		eventbus.Subscribe(func(ctx context.Context, e events.MockFinish) {
			rid, _ := runid.FromContext(ctx)
			v, ok := s.mockSpans.LoadAndDelete(rid)
			if !ok {
				return
			}
			endWithError(v.(trace.Span), e.Err)
		}),
	}
	return func() {
		for _, u := range unsubscribers {
			u()
		}
	}
}

func endWithError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
