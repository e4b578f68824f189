package main

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"codeberg.org/starterkit/server/internal/cache"
	"codeberg.org/starterkit/server/internal/config"
	"codeberg.org/starterkit/server/internal/logger"
	"codeberg.org/starterkit/server/internal/odm"
	"codeberg.org/starterkit/server/internal/storage"
)

const mongoConnectTimeout = 10 * time.Second

// creates and configures the document store, cache and storage clients
func InitializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	connectCtx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	mongoClient, err := mongo.Connect(connectCtx, options.Client().
		ApplyURI(cfg.MongoURI).
		SetServerSelectionTimeout(mongoConnectTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := mongoClient.Ping(connectCtx, readpref.Primary()); err != nil {
		mongoClient.Disconnect(ctx) //nolint:errcheck,gosec // best-effort cleanup on init failure
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	cacheClient, err := cache.New(cfg.RedisURL)
	if err != nil {
		mongoClient.Disconnect(ctx) //nolint:errcheck,gosec // best-effort cleanup on init failure
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	storageClient, err := storage.NewClient(storage.Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		Bucket:    cfg.S3Bucket,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		UseSSL:    cfg.S3UseSSL,
	})
	if err != nil {
		cacheClient.Close()         //nolint:errcheck,gosec // best-effort cleanup on init failure
		mongoClient.Disconnect(ctx) //nolint:errcheck,gosec // best-effort cleanup on init failure
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	// a missing bucket is not fatal; uploads will report the storage error
	if err := storageClient.EnsureBucket(ctx, cfg.S3Region); err != nil {
		logger.ErrorErr(err, "failed to ensure storage bucket, continuing", "bucket", cfg.S3Bucket)
	}

	return &Services{
		Mongo:    mongoClient,
		Registry: odm.NewRegistry(mongoClient.Database(cfg.MongoDatabase)),
		Cache:    cacheClient,
		Storage:  storageClient,
	}, nil
}

// releases every client; errors are logged
func (s *Services) Close(ctx context.Context) {
	if err := s.Cache.Close(); err != nil {
		logger.ErrorErr(err, "failed to close redis client")
	}

	if err := s.Mongo.Disconnect(ctx); err != nil {
		logger.ErrorErr(err, "failed to disconnect mongodb")
	}
}
