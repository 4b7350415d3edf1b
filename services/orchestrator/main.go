// Copyright (C) 2026 MHP Labs (dev@mhplabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/mhplabs/mhp-backend/services/llm"
	"github.com/mhplabs/mhp-backend/services/orchestrator/config"
	"github.com/mhplabs/mhp-backend/services/orchestrator/jobs"
	"github.com/mhplabs/mhp-backend/services/orchestrator/observability"
	"github.com/mhplabs/mhp-backend/services/orchestrator/routes"
)

// unconfiguredLLM stands in when no API key is present. The start handler
// rejects requests before launching a job in that case, so this client only
// fires if that guard is ever bypassed.
type unconfiguredLLM struct{}

func (unconfiguredLLM) Generate(ctx context.Context, prompt string, params llm.GenerationParams) (string, error) {
	return "", errors.New("no upstream API key configured")
}

func (unconfiguredLLM) Model() string { return "" }

func initTracer() (func(context.Context), error) {
	ctx := context.Background()

	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint == "" {
		// No collector: spans stay in-process no-ops.
		return func(context.Context) {}, nil
	}
	conn, err := grpc.NewClient(otelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("mhp-orchestrator")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Failed to load the configuration: %v", err)
	}

	cleanup, err := initTracer()
	if err != nil {
		log.Fatalf("Failed to set up the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	var llmClient llm.LLMClient = unconfiguredLLM{}
	if cfg.OpenAIConfigured() {
		llmClient, err = llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		if err != nil {
			log.Fatalf("Failed to initialize the LLM client: %v", err)
		}
	} else {
		slog.Warn("OPENAI_API_KEY is not set; insight requests will be rejected")
	}

	metrics := observability.NewInsightMetrics(prometheus.DefaultRegisterer)
	store := jobs.NewStore(cfg.JobTTL)
	gen := jobs.NewGenerator(store, llmClient, metrics, cfg.UpstreamTimeout)
	pruner := jobs.NewScheduler(store, cfg.PruneInterval, metrics.JobsEvicted)

	if cfg.ProductionLike() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(otelgin.Middleware("mhp-orchestrator"))
	routes.SetupRoutes(router, cfg, store, gen, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := pruner.Start(ctx); err != nil {
		log.Fatalf("Failed to start the prune scheduler: %v", err)
	}
	defer pruner.Stop()

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Starting the orchestrator server", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("Shutting down the orchestrator server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Orchestrator exited with error: %v", err)
	}
}
