// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package common

import (
	"context"
	"errors"
	"testing"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupRecorder(t *testing.T) *tracetest.SpanRecorder {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })
	return recorder
}

func TestScope_RecordsSpans(t *testing.T) {
	recorder := setupRecorder(t)

	scope := StartScope(context.Background(), "ReportOutcome")
	scope.WithField("user_id", "u1").WithField("correct", true)
	child := scope.NewChildScope("persist")
	child.TraceError(errors.New("write failed"))
	child.Finish()
	scope.TraceEvent("level up")
	scope.Finish()

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("ended spans = %d, expected 2", len(spans))
	}
	if spans[0].Name() != "persist" || spans[0].Status().Code != codes.Error {
		t.Errorf("child span = %s/%v, expected persist with error status", spans[0].Name(), spans[0].Status().Code)
	}
	if spans[0].Parent().SpanID() != spans[1].SpanContext().SpanID() {
		t.Error("persist span is not a child of ReportOutcome")
	}
	if len(spans[1].Events()) != 1 {
		t.Errorf("root span events = %d, expected 1", len(spans[1].Events()))
	}
	if scope.TraceID == "" || child.TraceID != scope.TraceID {
		t.Errorf("trace IDs = %q/%q, expected shared non-empty", scope.TraceID, child.TraceID)
	}
	if scope.Log.Data["user_id"] != "u1" {
		t.Errorf("log fields = %v, expected user_id", scope.Log.Data)
	}
}

func TestInterceptorLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	l := InterceptorLogger(logger)
	l.Log(context.Background(), logging.LevelInfo, "finished call", "grpc.method", "Check", "grpc.code", "OK")

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("no log entry written")
	}
	if entry.Level != logrus.InfoLevel || entry.Message != "finished call" {
		t.Errorf("entry = %s/%q", entry.Level, entry.Message)
	}
	if entry.Data["grpc.method"] != "Check" {
		t.Errorf("fields = %v, expected grpc.method", entry.Data)
	}
}

func TestParseLogLevel(t *testing.T) {
	if got := ParseLogLevel("debug"); got != logrus.DebugLevel {
		t.Errorf("ParseLogLevel(debug) = %v", got)
	}
	if got := ParseLogLevel("loud"); got != logrus.InfoLevel {
		t.Errorf("ParseLogLevel(loud) = %v, expected info", got)
	}
}
