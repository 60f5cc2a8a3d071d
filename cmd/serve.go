package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/skillvault/skillvault-service/internal/cache"
	"github.com/skillvault/skillvault-service/internal/events"
	"github.com/skillvault/skillvault-service/internal/handlers"
	"github.com/skillvault/skillvault-service/internal/llm"
	"github.com/skillvault/skillvault-service/internal/metrics"
	"github.com/skillvault/skillvault-service/internal/migrations"
	"github.com/skillvault/skillvault-service/internal/services"
	"github.com/skillvault/skillvault-service/internal/storage"
	"github.com/skillvault/skillvault-service/internal/utils"
	"github.com/skillvault/skillvault-service/pkg/jwt"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd)
	},
}

func init() {
	serveCmd.Flags().Bool("migrate", false, "Apply pending database migrations before serving")
}

func runServer(cmd *cobra.Command) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	cfg := a.cfg
	logger := a.logger
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
		sqlDB, err := a.db.DB()
		if err != nil {
			return fmt.Errorf("failed to get database instance: %w", err)
		}
		if err := migrations.Up(ctx, sqlDB, "postgres", logger); err != nil {
			return err
		}
	}

	publisher, err := events.NewPublisher(cfg.Kafka, logger)
	if err != nil {
		return fmt.Errorf("failed to create event publisher: %w", err)
	}
	defer publisher.Close()

	authState := events.NewAuthStateBus(logger)
	defer authState.Close()

	deps := services.Dependencies{
		DB:        a.db,
		Repo:      a.repoManager.GetRepository(),
		Logger:    logger,
		JWT:       jwt.NewJWTService(cfg.Session.Secret, cfg.Session.TTL),
		Sessions:  cache.NewSessionStore(a.redisClient),
		AuthState: authState,
		Events:    publisher,
		Metrics:   metrics.New(),
	}

	questionGeneration := false
	if provider, err := llm.NewProvider(ctx, cfg.LLM); err != nil {
		logger.Warn("Question generation disabled", "provider", cfg.LLM.Provider, "error", err)
	} else {
		deps.LLM = provider
		questionGeneration = true
	}

	exports, err := storage.NewExportStore(ctx, cfg.Storage)
	if err != nil {
		logger.Warn("Export storage unavailable, exports will be streamed", "error", err)
	} else if exports != nil {
		deps.Exports = exports
	}

	serviceManager := services.NewDefaultServiceManager(deps, cfg.AppURL)
	if err := serviceManager.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	appLogger := utils.NewSlogLogger(logger)
	allowedOrigin := ""
	if cfg.IsProduction() {
		allowedOrigin = cfg.AppURL
	}
	handlers.SetupMiddleware(router, appLogger, deps.Metrics, allowedOrigin)

	handlerManager := handlers.NewHandlerManager(serviceManager, appLogger, deps.Metrics, handlers.HandlerOptions{
		SecureCookies:      cfg.IsProduction(),
		QuestionGeneration: questionGeneration,
	})
	handlerManager.SetupRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	if err := serviceManager.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down services", "error", err)
	}

	if err := a.repoManager.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down repositories", "error", err)
	}

	logger.Info("Server exited")
	return nil
}
