// Package main is the entry point for the httpresource server.
package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/elena-brandt/httpresource/examples/widget"
	"github.com/elena-brandt/httpresource/internal/config"
	"github.com/elena-brandt/httpresource/internal/logging"
	"github.com/elena-brandt/httpresource/internal/metrics"
	"github.com/elena-brandt/httpresource/internal/server"
	"github.com/elena-brandt/httpresource/internal/telemetry"
	"github.com/elena-brandt/httpresource/internal/workerpool"
	"github.com/elena-brandt/httpresource/resource"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	reg := prometheus.NewRegistry()
	var m *metrics.Metrics
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		m = metrics.New(reg)
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	tracing := telemetry.DefaultSettings().WithEnabled(cfg.Tracing.Enabled)
	tracing.ServiceName = cfg.Tracing.ServiceName

	pool := workerpool.New(cfg.WorkerPool.Size, cfg.WorkerPool.QueueDepth)
	defer pool.Close()

	store := widget.NewStore()

	routes := []server.Route{
		{Pattern: "/widgets", New: func(_ *http.Request) resource.Resource {
			return &widget.Collection{Store: store}
		}},
		{Pattern: "/widgets/{id}", New: func(r *http.Request) resource.Resource {
			return &widget.Item{Store: store, ID: chi.URLParam(r, "id")}
		}},
	}

	srv := server.New(cfg, logger, m, tracing, pool, routes, metricsHandler)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      srv,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	logger.Sugar().Infof("httpresource listening on :%d", cfg.Server.Port)

	if err := httpServer.ListenAndServe(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
