package api

import (
	"log/slog"
	"net/http"
	"route-optimization-service/internal/api/handlers"
	"route-optimization-service/internal/platform/metrics"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(pipeline handlers.Pipeline, flagStore handlers.Pinger, recorder *metrics.Recorder, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	health := &handlers.HealthHandler{FlagStore: flagStore}
	optimizations := &handlers.OptimizationHandler{Pipeline: pipeline, Logger: logger}

	mux.HandleFunc("/health", health.Live)
	mux.HandleFunc("/ready", health.Ready)
	mux.HandleFunc("/optimizations/post-process", optimizations.PostProcess)
	mux.HandleFunc("/routes/score", handlers.Score)

	var observer HTTPObserver
	if recorder != nil {
		mux.Handle("/metrics", recorder.Handler())
		observer = recorder
	}

	return requestIDMiddleware(tracingMiddleware(loggingMiddleware(logger, observer, mux)))
}
