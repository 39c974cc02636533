package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"gitlab.com/prompteval-2025.net/internal/adapter/llm"
	"gitlab.com/prompteval-2025.net/internal/adapter/logging"
	"gitlab.com/prompteval-2025.net/internal/adapter/postgres/resultrepository"
	"gitlab.com/prompteval-2025.net/internal/adapter/postgres/settingsrepository"
	"gitlab.com/prompteval-2025.net/internal/adapter/postgres/testcaserepository"
	"gitlab.com/prompteval-2025.net/internal/adapter/redis/eventbus"
	"gitlab.com/prompteval-2025.net/internal/config"
	"gitlab.com/prompteval-2025.net/internal/core/services/grading"
	"gitlab.com/prompteval-2025.net/internal/core/services/roundtrip"
	"gitlab.com/prompteval-2025.net/internal/core/services/run"
	"gitlab.com/prompteval-2025.net/internal/core/services/testcase"
	logger2 "gitlab.com/prompteval-2025.net/internal/global/logger"
	http2 "gitlab.com/prompteval-2025.net/internal/http"
)

func main() {
	InitReader()
	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	logger2.Info("Starting prompt evaluation service")

	logger := logger2.Logger

	sysCfg := config.NewSystemConfig()
	if sysCfg.DebugMode {
		logger = logging.NewDebugLogger()
	}

	db, err := setupDatabase(sysCfg.PostgresConfig)
	if err != nil {
		logger.Error("Failed to set up database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     sysCfg.RedisConfig.Url,
		Password: sysCfg.RedisConfig.Password, // no password set
		DB:       sysCfg.RedisConfig.DB,       // use default DB
	})
	defer redisClient.Close()

	// SECONDARY PORTS
	testCaseRepo := testcaserepository.NewTestCaseRepository(db, logger)
	resultRepo := resultrepository.NewResultRepository(db, logger)
	settingsRepo := settingsrepository.NewSettingsRepository(db, logger)
	resolver := llm.NewSettingsBackendResolver(settingsRepo, sysCfg.LLMConfig, logger)
	invocationClient := llm.NewClient(resolver, sysCfg.LLMConfig, logger)
	publisher := eventbus.NewRedisEventBus(redisClient, logger)

	// services
	roundTripSvc := roundtrip.NewRoundTripService(invocationClient, logger)
	runSvc := run.NewRunService(invocationClient, roundTripSvc, resultRepo, publisher, logger)
	gradingSvc := grading.NewGradingService(invocationClient, resultRepo, logger)
	testCaseSvc := testcase.NewTestCaseService(testCaseRepo, resultRepo, runSvc, logger)

	serviceProvider := http2.NewServiceProvider(
		testCaseSvc, runSvc, gradingSvc,
		invocationClient, resultRepo, settingsRepo,
		sysCfg.LLMConfig,
	)

	// server
	httServer := http2.NewServer(sysCfg.ServerConfig.Port, "promptEval", *serviceProvider, logger)
	if err := httServer.Init(); err != nil {
		logger.Error("Failed to initialize http server", "error", err)
		os.Exit(1)
	}
	ctxBg := context.Background()
	httServer.Start(ctxBg)

	<-quit
	logger.Info("Shutting down server...")

	_, cancel := context.WithTimeout(ctxBg, 5*time.Second)
	defer cancel()
	httServer.Stop()

	logger.Info("successfully shutdown server")
}

// setupDatabase sets up the PostgreSQL connection
func setupDatabase(cfg *config.PostgresConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.Url)
	if err != nil {
		return nil, err
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}

func InitReader() {
	environment := "local"
	if len(os.Args) >= 2 {
		environment = os.Args[1]
	}

	if err := godotenv.Load(environment + ".env"); err != nil {
		logger2.Warn("No env file loaded", "file", environment+".env")
	}
}
