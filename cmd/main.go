package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"linkedin-content-platform/internal/ai"
	"linkedin-content-platform/internal/config"
	"linkedin-content-platform/internal/logger"
	"linkedin-content-platform/internal/queue"
	"linkedin-content-platform/internal/store"
	"linkedin-content-platform/internal/telemetry"
	"linkedin-content-platform/middleware"
	"linkedin-content-platform/routes"
	"linkedin-content-platform/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	shutdownTracer, err := telemetry.InitTracer("linkedin-content-platform")
	if err != nil {
		logger.Warn("tracing disabled", "error", err.Error())
	} else {
		defer shutdownTracer()
	}

	// Store selection: Redis when configured, in-memory otherwise. The
	// in-memory store is single-process; fine for local runs, not for a
	// deployment with a separate worker.
	var (
		st    store.Store
		tasks *asynq.Client
	)
	if cfg.RedisURL != "" {
		rdb, err := config.NewRedisClient(cfg)
		if err != nil {
			log.Fatal("Failed to connect to Redis:", err)
		}
		defer rdb.Close()
		st = store.NewRedisStore(rdb)

		connOpt, err := queue.ConnOpt(cfg)
		if err != nil {
			log.Fatal("Failed to build task queue options:", err)
		}
		tasks = asynq.NewClient(connOpt)
		defer tasks.Close()
	} else {
		logger.Warn("REDIS_URL not set, using in-memory store")
		st = store.NewMemoryStore()
	}

	ctx := context.Background()
	gemini, err := ai.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiTier)
	if err != nil {
		log.Fatal("Failed to initialize Gemini client:", err)
	}
	defer gemini.Close()

	platform, err := services.NewPlatform(cfg, st, gemini)
	if err != nil {
		log.Fatal("Failed to wire services:", err)
	}

	// Without Redis there is no worker process, so the sweep scheduler runs
	// in-process here. With Redis the worker owns it.
	if tasks == nil {
		scheduler := services.NewScheduler(platform.Processor)
		if err := scheduler.Start(time.Duration(cfg.SweepIntervalMin) * time.Minute); err != nil {
			log.Fatal("Failed to start scheduler:", err)
		}
		defer scheduler.Stop()
	}

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RateLimitMiddleware(st, cfg))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})

	routes.SetupClientRoutes(router, platform)
	routes.SetupQueueRoutes(router, platform)
	routes.SetupContentRoutes(router, platform, cfg, tasks)
	routes.SetupExperimentRoutes(router, platform)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("server exited")
}
