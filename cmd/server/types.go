package main

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"

	"codeberg.org/starterkit/server/internal/cache"
	"codeberg.org/starterkit/server/internal/config"
	"codeberg.org/starterkit/server/internal/errors"
	"codeberg.org/starterkit/server/internal/odm"
	"codeberg.org/starterkit/server/internal/storage"
	"codeberg.org/starterkit/server/storefront/files"
	"codeberg.org/starterkit/server/storefront/orders"
	"codeberg.org/starterkit/server/storefront/users"
)

// holds all dependencies and state for the API server
type Server struct {
	db          *pgxpool.Pool
	config      *config.Config
	userRepo    *users.Repository
	orderRepo   *orders.Repository
	fileService *files.Service
	services    *Services
	dispatcher  *errors.Dispatcher
	router      *gin.Engine
}

// holds the document store, cache and object storage clients
type Services struct {
	Mongo    *mongo.Client
	Registry *odm.Registry
	Cache    *cache.Client
	Storage  *storage.Client
}
