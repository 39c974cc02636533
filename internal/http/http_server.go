package http

// this is entry point of the http request handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"

	"gitlab.com/prompteval-2025.net/internal/config"
	"gitlab.com/prompteval-2025.net/internal/core/ports/primary"
	"gitlab.com/prompteval-2025.net/internal/core/ports/secondary"
	"gitlab.com/prompteval-2025.net/internal/core/services/grading"
	"gitlab.com/prompteval-2025.net/internal/core/services/run"
	"gitlab.com/prompteval-2025.net/internal/core/services/testcase"
	"gitlab.com/prompteval-2025.net/internal/handlers"
	"gitlab.com/prompteval-2025.net/internal/handlers/models"
	"gitlab.com/prompteval-2025.net/internal/handlers/results"
	"gitlab.com/prompteval-2025.net/internal/handlers/settings"
	"gitlab.com/prompteval-2025.net/internal/handlers/testcases"
)

type ServiceProvider struct {
	testCaseService testcase.ITestCaseService
	runService      run.IRunService
	gradingService  grading.IGradingService

	invocationClient secondary.InvocationClient
	resultRepo       secondary.ResultRepository
	settingsRepo     secondary.SettingsRepository
	llmCfg           *config.LLMConfig
}

func NewServiceProvider(
	testCaseService testcase.ITestCaseService,
	runService run.IRunService,
	gradingService grading.IGradingService,
	invocationClient secondary.InvocationClient,
	resultRepo secondary.ResultRepository,
	settingsRepo secondary.SettingsRepository,
	llmCfg *config.LLMConfig,
) *ServiceProvider {
	return &ServiceProvider{
		testCaseService:  testCaseService,
		runService:       runService,
		gradingService:   gradingService,
		invocationClient: invocationClient,
		resultRepo:       resultRepo,
		settingsRepo:     settingsRepo,
		llmCfg:           llmCfg,
	}
}

type Server struct {
	router          *mux.Router
	srv             *http.Server
	Port            int
	ServiceName     string
	ServiceProvider ServiceProvider
	logger          primary.Logger
}

func NewServer(port int, serviceName string, serviceProvider ServiceProvider, logger primary.Logger) *Server {
	return &Server{
		Port:            port,
		ServiceName:     serviceName,
		ServiceProvider: serviceProvider,
		logger:          logger,
	}
}

func (s *Server) Init() error {
	r := mux.NewRouter()
	testcases.
		NewTestCaseHandler(s.ServiceProvider.testCaseService, s.ServiceProvider.runService, s.ServiceProvider.llmCfg, s.logger).
		RegisterRoutes(r)
	results.
		NewResultHandler(s.ServiceProvider.testCaseService, s.ServiceProvider.runService, s.ServiceProvider.gradingService,
			s.ServiceProvider.resultRepo, s.ServiceProvider.llmCfg, s.logger).
		RegisterRoutes(r)
	models.NewModelHandler(s.ServiceProvider.invocationClient, s.ServiceProvider.runService, s.logger).RegisterRoutes(r)
	settings.NewSettingHandler(s.ServiceProvider.settingsRepo, s.logger).RegisterRoutes(r)

	if mw := handlers.New(); mw.Enabled() {
		r.Use(mw.JWTMiddleware)
		s.logger.Info("JWT authentication enabled")
	}

	s.router = r
	return nil
}

func (s *Server) Start(ctx context.Context) {
	// Set up server
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start the server in a goroutine
	go func() {
		s.logger.Info("Server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()
}

func (s *Server) Stop() {
	s.logger.Info("Shutting down http server...")
	if s.srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Error("Failed to shut down http server", "error", err)
	}
}
