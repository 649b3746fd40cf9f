package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/content-pipeline-api/internal/api"
	"github.com/content-pipeline-api/internal/config"
	"github.com/content-pipeline-api/internal/contextbuilder"
	"github.com/content-pipeline-api/internal/dispatch"
	"github.com/content-pipeline-api/internal/events"
	"github.com/content-pipeline-api/internal/keywords"
	"github.com/content-pipeline-api/internal/llm"
	"github.com/content-pipeline-api/internal/metrics"
	"github.com/content-pipeline-api/internal/pipeline"
	"github.com/content-pipeline-api/internal/prompts"
	"github.com/content-pipeline-api/internal/records"
	"github.com/content-pipeline-api/internal/seo"
	"github.com/content-pipeline-api/pkg/logger"
)

func main() {
	// Load .env if present; real deployments use the environment directly
	_ = godotenv.Load()

	// Initialize logger
	log := logger.New()
	log.Info().Msg("Starting Content Pipeline API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Record store clients. The keyword research tables may live in a
	// separate base from the content workflow tables.
	contentClient := records.NewClient(cfg.Airtable, cfg.Airtable.BaseID, log)
	keywordClient := records.NewClient(cfg.Airtable, cfg.Airtable.KeywordBaseID, log)
	contentStore := records.NewContentStore(contentClient)
	keywordStore := records.NewKeywordStore(keywordClient)

	// Upstream clients
	promptClient := prompts.NewClient(cfg.Langfuse, log)
	generator := llm.NewAnthropicGenerator(cfg.Anthropic, log)
	seoClient := seo.NewClient(cfg.SEO, log)

	// Metrics
	m := metrics.NewDefault()
	seoClient.SetRequestCounter(m.SEORequests)

	// Context assembly
	static := contextbuilder.NewStaticLoader(cfg.Context.ManifestPath)
	assembler := contextbuilder.NewAssembler(contentStore, static, log)

	// Event dispatcher with the stage functions and the batch fan-out bound
	// to their trigger events
	dispatcher := events.NewDispatcher(cfg.Events.MaxWorkers, log)
	dispatcher.SetRetryHook(func(eventName string) {
		m.HandlerRetries.WithLabelValues(eventName).Inc()
	})
	stages := pipeline.NewService(contentStore, promptClient, generator, assembler, m, cfg.Anthropic, log)
	stages.Register(dispatcher)
	batch := dispatch.NewBatchDispatcher(contentStore, dispatcher, log)
	batch.Register(dispatcher)
	if cfg.Events.IngestURL != "" {
		dispatcher.SetForward(events.NewIngestClient(cfg.Events, log))
		log.Info().Str("ingest_url", cfg.Events.IngestURL).Msg("Forwarding events to hosted runtime")
	}

	// Keyword research service
	research := keywords.NewService(keywordStore, contentStore, seoClient, generator, log)

	// Initialize router
	router := api.NewRouter(&api.Deps{
		Store:    contentStore,
		Emitter:  dispatcher,
		Deduper:  events.NewDeduper(cfg.Webhook.DedupeWindow),
		Keywords: research,
		Prompts:  promptClient,
		Metrics:  m,
	}, cfg, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Let in-flight stage runs finish before exiting
	if err := dispatcher.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("Dispatcher did not drain before deadline")
	}

	log.Info().Msg("Server exited gracefully")
}
