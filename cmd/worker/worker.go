package main

import (
	"context"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"linkedin-content-platform/internal/ai"
	"linkedin-content-platform/internal/config"
	"linkedin-content-platform/internal/logger"
	"linkedin-content-platform/internal/queue"
	"linkedin-content-platform/internal/store"
	"linkedin-content-platform/internal/telemetry"
	"linkedin-content-platform/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	if cfg.RedisURL == "" {
		log.Fatal("REDIS_URL is required for the worker")
	}

	logger.InitLogger(cfg)

	shutdownTracer, err := telemetry.InitTracer("linkedin-content-worker")
	if err != nil {
		logger.Warn("tracing disabled", "error", err.Error())
	} else {
		defer shutdownTracer()
	}

	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer rdb.Close()

	gemini, err := ai.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiTier)
	if err != nil {
		log.Fatal("Failed to initialize Gemini client:", err)
	}
	defer gemini.Close()

	platform, err := services.NewPlatform(cfg, store.NewRedisStore(rdb), gemini)
	if err != nil {
		log.Fatal("Failed to wire services:", err)
	}

	// The worker owns the periodic sweep so the API process stays stateless.
	scheduler := services.NewScheduler(platform.Processor)
	if err := scheduler.Start(time.Duration(cfg.SweepIntervalMin) * time.Minute); err != nil {
		log.Fatal("Failed to start scheduler:", err)
	}
	defer scheduler.Stop()

	connOpt, err := queue.ConnOpt(cfg)
	if err != nil {
		log.Fatal("Failed to build task queue options:", err)
	}

	server := asynq.NewServer(
		connOpt,
		asynq.Config{
			// Pipeline runs are long and externally rate limited; a small
			// pool is plenty.
			Concurrency: 4,
			Queues: map[string]int{
				"default": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("task failed", "type", task.Type(), "error", err.Error())
			}),
		},
	)

	processor := queue.NewTaskProcessor(platform.Processor)

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskProcessNext, processor.HandleProcessNext)
	mux.HandleFunc(queue.TaskSweep, processor.HandleSweep)

	logger.Info("worker starting", "redis", cfg.RedisURL, "sweep_interval_min", cfg.SweepIntervalMin)
	if err := server.Run(mux); err != nil {
		log.Fatal("Failed to start worker:", err)
	}
}
