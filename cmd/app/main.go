package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"training-enrichment/internal/config"
	"training-enrichment/internal/domain/ports/adapter"
	"training-enrichment/internal/enrich"
	aiAdapters "training-enrichment/internal/infra/adapters/ai"
	pg "training-enrichment/internal/infra/db/postgres"
	"training-enrichment/internal/infra/logging"
	"training-enrichment/internal/infra/metrics"
	red "training-enrichment/internal/infra/redis"
	"training-enrichment/internal/infra/scheduler"
	"training-enrichment/internal/infra/web"
	"training-enrichment/internal/infra/worker"
	"training-enrichment/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, noop AI)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	if err := pg.Migrate(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("migrate")
	}

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	feed := red.NewStatusFeed(redisClient, logger)
	throttle := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	tm := pg.NewTxManager(pool)
	queueRepo := pg.NewEnrichmentQueueRepo(pool, tm)
	sessionRepo := pg.NewTrainingSessionRepo(pool)

	// ---- Content generator (OpenAI -> Gemini -> built-in) ----
	var gen adapter.CoachContentGenerator
	switch {
	case cfg.Runtime.Dev:
		gen = aiAdapters.NewNoopGenerator()
		logger.Info().Msg("content generator: built-in (dev mode)")
	case cfg.AI.OpenAIKey != "":
		gen, err = aiAdapters.NewOpenAIGenerator(cfg.AI.OpenAIKey, cfg.AI.DefaultModel)
		if err != nil {
			logger.Fatal().Err(err).Msg("openai generator")
		}
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("content generator: OpenAI")
	case cfg.AI.GeminiKey != "":
		gen, err = aiAdapters.NewGeminiGenerator(ctx, cfg.AI.GeminiKey, cfg.AI.DefaultModel)
		if err != nil {
			logger.Fatal().Err(err).Msg("gemini generator")
		}
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("content generator: Gemini")
	default:
		gen = aiAdapters.NewNoopGenerator()
		logger.Info().Msg("content generator: built-in (no AI key configured)")
	}

	// ---- Processor + trigger ----
	enricher := enrich.New(gen, logger)
	processor := worker.NewEnrichmentProcessor(queueRepo, sessionRepo, enricher, feed, logger)

	workerPool := worker.NewPool(cfg.Processor.Workers, logger)
	workerPool.Start(ctx)
	defer workerPool.Stop()

	var trigger adapter.ProcessorTrigger
	if cfg.Processor.Mode == "remote" {
		trigger = worker.NewHTTPTrigger(cfg.Processor.RemoteURL, logger)
	} else {
		trigger = worker.NewPoolTrigger(workerPool, processor, throttle, logger)
	}

	// ---- Facade ----
	enrichUC := usecase.NewEnrichmentUseCase(queueRepo, sessionRepo, trigger, feed, cfg.Queue, logger)
	defer enrichUC.Close()

	// ---- Scheduler (safety net: stale requeue + drain) ----
	sched := scheduler.NewScheduler(cfg.Processor.Tick, cfg.Queue.StaleAfter, queueRepo, processor, logger)
	sched.Start(ctx)
	defer sched.Stop()

	// ---- HTTP ----
	srv := web.NewServer(enrichUC, processor, cfg.Server.APIKey, logger)
	go func() {
		if err := srv.Start(cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server stopped")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	select {
	case s := <-sig:
		logger.Info().Str("signal", s.String()).Msg("shutting down")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}
