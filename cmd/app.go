package cmd

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/skillvault/skillvault-service/internal/config"
	"github.com/skillvault/skillvault-service/internal/repositories"
	"github.com/skillvault/skillvault-service/internal/repositories/postgres"
	"github.com/skillvault/skillvault-service/internal/utils"
	"github.com/skillvault/skillvault-service/pkg"
)

// app holds the connections shared by every command
type app struct {
	cfg         *config.Config
	logger      *slog.Logger
	db          *gorm.DB
	redisClient *redis.Client
	repoManager repositories.RepositoryManager
}

// loadConfig reads --env-file (when given) and the environment
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if path, _ := cmd.Flags().GetString("env-file"); path != "" {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", path, err)
		}
		return config.NewConfig()
	}
	return config.LoadConfig()
}

// openApp connects to PostgreSQL and Redis. Redis backs sessions, so it is required.
func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger := utils.NewJSONLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		closeDB(db)
		return nil, fmt.Errorf("redis is required for sessions: %w", err)
	}

	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:               db,
		RedisClient:      redisClient,
		IdentityProvider: cfg.IdentityProvider,
		CasdoorConfig:    cfg.Casdoor,
	})
	if err := repoManager.Initialize(); err != nil {
		closeDB(db)
		redisClient.Close()
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	return &app{
		cfg:         cfg,
		logger:      logger,
		db:          db,
		redisClient: redisClient,
		repoManager: repoManager,
	}, nil
}

func (a *app) close() {
	closeDB(a.db)
	if a.redisClient != nil {
		a.redisClient.Close()
	}
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
