// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package server

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/propagators/b3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// TelemetryConfig describes the tracer provider.
type TelemetryConfig struct {
	ServiceName    string
	Environment    string
	ID             int64
	Enabled        bool
	ZipkinEndpoint string
}

// NewTracerProvider creates a tracer provider exporting batches to Zipkin.
func NewTracerProvider(cfg TelemetryConfig) (*sdktrace.TracerProvider, error) {
	exporter, err := zipkin.New(cfg.ZipkinEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create zipkin exporter: %w", err)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("environment", cfg.Environment),
		attribute.Int64("ID", cfg.ID),
	)

	return sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	), nil
}

// SetupTelemetry initializes OpenTelemetry tracer and propagators.
// Returns a shutdown function that should be called on application shutdown.
//
// Trace context is propagated across service boundaries using:
// - B3 (Zipkin) propagation
// - W3C TraceContext propagation
// - W3C Baggage propagation
//
// When tracing is disabled only the propagators are installed, so incoming
// trace IDs still reach the logs.
func SetupTelemetry(ctx context.Context, cfg TelemetryConfig) (func(context.Context) error, error) {
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			b3.New(),                   // Zipkin B3 propagation
			propagation.TraceContext{}, // W3C Trace Context
			propagation.Baggage{},      // W3C Baggage
		),
	)
	logrus.Infof("set text map propagator")

	if !cfg.Enabled {
		logrus.Info("tracing disabled")
		return func(context.Context) error { return nil }, nil
	}

	tracerProvider, err := NewTracerProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer provider: %w", err)
	}

	otel.SetTracerProvider(tracerProvider)
	logrus.Infof("set tracer provider: (name: %s environment: %s id: %d)", cfg.ServiceName, cfg.Environment, cfg.ID)

	shutdown := func(ctx context.Context) error {
		logrus.Info("shutting down telemetry...")
		if err := tracerProvider.Shutdown(ctx); err != nil {
			return err
		}
		logrus.Info("telemetry stopped")
		return nil
	}

	return shutdown, nil
}
