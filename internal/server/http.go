// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	readHeaderTimeout = 5 * time.Second
	writeTimeout      = 30 * time.Second
)

// HTTPServer serves the gamification API with tracing and a /healthz probe.
type HTTPServer struct {
	server      *http.Server
	port        int
	api         http.Handler
	checker     HealthCheck
	serviceName string
}

// NewHTTPServer creates a new API server instance.
func NewHTTPServer(port int, api http.Handler, checker HealthCheck, serviceName string) *HTTPServer {
	return &HTTPServer{
		port:        port,
		api:         api,
		checker:     checker,
		serviceName: serviceName,
	}
}

// Setup builds the handler chain.
func (h *HTTPServer) Setup() error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.healthz)
	mux.Handle("/", h.api)

	h.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", h.port),
		Handler:           otelhttp.NewHandler(mux, h.serviceName),
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}
	return nil
}

// Handler returns the instrumented handler chain.
func (h *HTTPServer) Handler() http.Handler {
	return h.server.Handler
}

func (h *HTTPServer) healthz(w http.ResponseWriter, r *http.Request) {
	status, body := http.StatusOK, map[string]string{"status": "ok"}
	if h.checker != nil {
		if err := h.checker.Check(r.Context()); err != nil {
			status, body = http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()}
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Start begins serving the API on the configured port.
func (h *HTTPServer) Start(ctx context.Context) error {
	go func() {
		logrus.Infof("HTTP API listening on port %d", h.port)
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()
	return nil
}

// Shutdown gracefully stops the API server.
func (h *HTTPServer) Shutdown(ctx context.Context) error {
	logrus.Info("shutting down HTTP server...")
	if err := h.server.Shutdown(ctx); err != nil {
		return err
	}
	logrus.Info("HTTP server stopped")
	return nil
}
