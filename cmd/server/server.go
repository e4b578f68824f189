package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"codeberg.org/starterkit/server/internal/config"
	"codeberg.org/starterkit/server/internal/errors"
	"codeberg.org/starterkit/server/internal/logger"
	"codeberg.org/starterkit/server/internal/ratelimit"
	"codeberg.org/starterkit/server/storefront/files"
	"codeberg.org/starterkit/server/storefront/orders"
	"codeberg.org/starterkit/server/storefront/users"
)

const errorLogFile = "errors.log"

// creates and configures a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	ctx := context.Background()

	poolConfig, err := pgxpool.ParseConfig(cfg.PostgresConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	services, err := InitializeServices(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	srv, err := newServer(ctx, cfg, db, services)
	if err != nil {
		services.Close(ctx)
		db.Close()

		return nil, err
	}

	return srv, nil
}

func newServer(ctx context.Context, cfg *config.Config, db *pgxpool.Pool, services *Services) (*Server, error) {
	userModel, err := services.Registry.Register(users.Schema())
	if err != nil {
		return nil, fmt.Errorf("failed to register user model: %w", err)
	}

	fileModel, err := services.Registry.Register(files.Schema())
	if err != nil {
		return nil, fmt.Errorf("failed to register file model: %w", err)
	}

	if err := services.Registry.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure indexes: %w", err)
	}

	orderRepo := orders.NewRepository(db)
	if err := orderRepo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure orders schema: %w", err)
	}

	errorLog, err := logger.NewFileLogger(cfg.LogDir, errorLogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open error log: %w", err)
	}

	mode := errors.ParseMode(cfg.Environment)
	dispatcher := errors.NewDispatcher(mode, errors.NewLogSink(errorLog))

	limit, err := ratelimit.New(services.Cache.Redis(), cfg.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limiter: %w", err)
	}

	if mode.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		logger.RequestLogger(),
		dispatcher.Recovery(gin.DefaultErrorWriter),
		dispatcher.Middleware(),
		CORSMiddleware(cfg.CORSOrigins),
		limit,
	)

	server := &Server{
		db:          db,
		config:      cfg,
		userRepo:    users.NewRepository(userModel, services.Cache),
		orderRepo:   orderRepo,
		fileService: files.NewService(fileModel, services.Storage),
		services:    services,
		dispatcher:  dispatcher,
		router:      router,
	}

	RegisterRoutes(router, server)

	logger.Info("server initialized",
		"mode", mode.String(),
		"error_log", errorLog.Path(),
	)

	return server, nil
}
