package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang-disclosure-watcher/internal/executor/config"
	"golang-disclosure-watcher/internal/executor/delivery/consumer"
	"golang-disclosure-watcher/internal/executor/repository"
	"golang-disclosure-watcher/internal/executor/service"
	"golang-disclosure-watcher/internal/executor/strategy"
	"golang-disclosure-watcher/pkg/blobstore"
	"golang-disclosure-watcher/pkg/common"
	"golang-disclosure-watcher/pkg/logger"
	"golang-disclosure-watcher/pkg/postgres"
	"golang-disclosure-watcher/pkg/redis"
	"golang-disclosure-watcher/pkg/telegram"

	"google.golang.org/genai"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the execution service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Execution Service", zap.String("name", cfg.App.Name))

	// Initialize database
	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", zap.Error(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Initialize Redis
	redisCfg := redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}
	redisClient, err := redis.NewClient(redisCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Create the consumer groups if they don't exist.
	// MKSTREAM creates the stream if it doesn't exist.
	for _, stream := range []string{common.RedisStreamSchedulerTaskExecution, common.RedisStreamBackfillContinuation} {
		if err := redisClient.XGroupCreateMkStream(context.Background(), stream, common.RedisStreamGroup, "0").Err(); err != nil {
			if err.Error() != "BUSYGROUP Consumer Group name already exists" {
				appLogger.Fatal("Failed to create consumer group", logger.ErrorField(err), logger.StringField("stream", stream))
			}
		}
	}

	// Initialize blob store
	blobs, err := blobstore.New(cfg.Blob.Dir)
	if err != nil {
		appLogger.Fatal("Failed to initialize blob store", zap.Error(err))
	}
	defer blobs.Close()

	// Initialize repositories
	jobRepo := repository.NewJobRepository(db.DB)
	historyRepo := repository.NewTaskExecutionHistoryRepository(db.DB)
	earningsRepo := repository.NewEarningsRepository(db.DB)
	releaseRepo := repository.NewReleaseRepository(db.DB)
	userStockRepo := repository.NewUserStockRepository(db.DB)
	userAnalysisRepo := repository.NewUserAnalysisRepository(db.DB)
	analysisHistoryRepo := repository.NewAnalysisHistoryRepository(db.DB)

	// Initialize disclosure sources
	tdnetRepo := repository.NewTDnetRepository(cfg, appLogger)
	sources := []repository.DisclosureSourceRepository{
		tdnetRepo,
		repository.NewIRBankRSSRepository(cfg, appLogger),
		repository.NewIRPageRepository(cfg, appLogger),
	}

	// Initialize AI repository
	genAiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.Gemini.APIKey,
	})
	if err != nil {
		appLogger.Fatal("Failed to initialize Gemini AI client", zap.Error(err))
	}
	aiRepo, err := repository.NewGeminiAIRepository(cfg, appLogger, genAiClient)
	if err != nil {
		appLogger.Fatal("Failed to initialize Gemini AI repository", zap.Error(err))
	}

	telegramNotifier, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if err != nil {
		appLogger.Fatal("Failed to initialize Telegram notifier", zap.Error(err))
	}

	// Initialize pipeline services
	aggregator := service.NewCandidateAggregator(appLogger, sources)
	classifier := service.NewDocumentClassifier(cfg, appLogger, aiRepo)
	resolver := service.NewReleaseResolver(appLogger, releaseRepo)
	fetcher := service.NewDocumentFetcher(appLogger, earningsRepo, releaseRepo, resolver, blobs)
	analyzer := service.NewReleaseAnalyzer(cfg, appLogger, aiRepo, earningsRepo, releaseRepo, blobs)
	customizer := service.NewAnalysisCustomizer(cfg, appLogger, aiRepo, analyzer, userStockRepo, userAnalysisRepo, analysisHistoryRepo)
	regenerator := service.NewAnalysisRegenerator(cfg, appLogger, aiRepo, analyzer, releaseRepo, earningsRepo, userStockRepo, userAnalysisRepo, analysisHistoryRepo)
	importer := service.NewDisclosureImporter(appLogger, aggregator, classifier, fetcher, analyzer, customizer)
	backfillSvc := service.NewBackfillService(cfg, appLogger, redisClient.Client, tdnetRepo, aggregator, importer)

	// Initialize strategies
	strategies := []strategy.JobExecutionStrategy{
		strategy.NewDisclosureImportStrategy(appLogger, importer, userStockRepo, telegramNotifier),
		strategy.NewHistoricalBackfillStrategy(appLogger, backfillSvc),
		strategy.NewAnalysisRegenerationStrategy(appLogger, regenerator, telegramNotifier),
		strategy.NewHTTPStrategy(appLogger),
	}

	// Initialize executor service
	executorSvc := service.NewExecutorService(redisClient.Client, jobRepo, historyRepo, appLogger, strategies)

	// Initialize and start the Redis consumer
	redisConsumer := consumer.NewRedisConsumer(cfg, redisClient.Client, executorSvc, backfillSvc, appLogger)
	redisConsumer.Start(ctx)

	appLogger.Info("Execution service started. Waiting for tasks...")

	// Wait for interrupt signal to gracefully shut down the service
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down execution service...")
	cancel()
	redisConsumer.Stop()
	appLogger.Info("Execution service stopped.")
}

func main() {
	rootCmd := &cobra.Command{Use: "execution-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-executor.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing execution-service CLI: %s\n", err)
		os.Exit(1)
	}
}
