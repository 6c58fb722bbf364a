// @title EduGenie Analysis API
// @version 1.0
// @description Summaries, quizzes, flashcards, keywords and explanations for long study documents.
// @host localhost:8090
// @BasePath /api
// @schemes http https
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"edugenie/internal/adapter"
	"edugenie/internal/adapter/completion"
	"edugenie/internal/adapter/embedding"
	"edugenie/internal/cache"
	"edugenie/internal/config"
	"edugenie/internal/database"
	"edugenie/internal/domain"
	"edugenie/internal/handler"
	"edugenie/internal/logger"
	"edugenie/internal/repository"
	"edugenie/internal/service"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	// Oracle client; missing credentials stop startup here, before any request is served
	completer, err := completion.New(cfg.LLM)
	if err != nil {
		appLogger.Fatal("Failed to create completion client", zap.Error(err))
	}
	appLogger.Info("Completion client initialized",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", cfg.LLM.Model))

	health := map[string]handler.Pinger{"redis": nil, "database": nil}

	// Optional artifact store
	var artifactRepo domain.ArtifactRepository
	if cfg.DB.Enabled {
		db, err := database.NewSQLXOracleDB(cfg.GetDSN())
		if err != nil {
			appLogger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()
		artifactRepo = repository.NewArtifactDatabaseAdapter(db)
		health["database"] = artifactRepo
		appLogger.Info("Artifact repository initialized")
	}

	// Optional result cache and job queue
	var (
		cacheAdapter domain.Cache
		jobQueue     *adapter.RedisJobQueue
		chunkStore   domain.ChunkStore
	)
	if cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		appLogger.Info("Successfully connected to Redis")

		cacheAdapter = adapter.NewRedisCacheAdapter(redisClient)
		health["redis"] = cacheAdapter

		jobQueue = adapter.NewRedisJobQueue(redisClient, cfg.Worker, cfg.Redis.TTL)
		if err := jobQueue.EnsureGroup(context.Background()); err != nil {
			appLogger.Fatal("Failed to create job consumer group", zap.Error(err))
		}

		chunkStore = adapter.NewRedisChunkStore(redisClient, cfg.Documents.TTL)
	}

	// Initialize services
	orchestrator := service.NewOrchestrator(completer, cfg.Analysis)
	analysisService := service.NewAnalysisService(orchestrator, artifactRepo, cacheAdapter, cfg.Redis.TTL, cfg.Analysis.MinLegacyQuizBlockLen)

	var jobService service.JobService
	workerCtx, stopWorker := context.WithCancel(context.Background())
	workerDone := make(chan struct{})
	if jobQueue != nil {
		jobService = service.NewJobService(jobQueue, analysisService, cfg.Worker)
		go func() {
			defer close(workerDone)
			if err := jobService.RunWorker(workerCtx); err != nil {
				appLogger.Error("Analysis worker stopped", zap.Error(err))
			}
		}()
	} else {
		close(workerDone)
		appLogger.Info("Redis not configured; caching and background jobs disabled")
	}

	// Document chat needs somewhere to keep the embedded chunks
	var documentService service.DocumentService
	if chunkStore != nil {
		embedder, err := embedding.New(cfg.Embedding, cacheAdapter)
		if err != nil {
			appLogger.Fatal("Failed to create embedding service", zap.Error(err))
		}
		documentService = service.NewDocumentService(embedder, chunkStore, completer, cfg.Documents)
	} else {
		appLogger.Info("Redis not configured; document chat disabled")
	}

	app := newApp(cfg.Server, analysisService, jobService, documentService, health)

	// Start server
	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	stopWorker()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	select {
	case <-workerDone:
	case <-ctx.Done():
		appLogger.Warn("Analysis worker did not stop in time")
	}
	appLogger.Info("Server exited gracefully")
}
