package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"codeberg.org/starterkit/server/api/rest/auth"
	"codeberg.org/starterkit/server/api/rest/files"
	"codeberg.org/starterkit/server/api/rest/health"
	"codeberg.org/starterkit/server/api/rest/orders"
	"codeberg.org/starterkit/server/api/rest/users"
)

// sets up all API routes
func RegisterRoutes(router *gin.Engine, server *Server) {
	router.GET("/health", health.Handler(healthChecks(server)))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/ping", health.PingHandler)

		auth.RegisterRoutes(v1, server.userRepo, server.config.BasicAuthUsername, server.config.BasicAuthPassword)
		users.RegisterRoutes(v1, server.userRepo, server.services.Storage, server.config.BasicAuthUsername, server.config.BasicAuthPassword)
		orders.RegisterRoutes(v1, server.orderRepo)
		files.RegisterRoutes(v1, server.fileService)
	}
}

func healthChecks(server *Server) map[string]health.Check {
	return map[string]health.Check{
		"mongodb": func(ctx context.Context) error {
			return server.services.Mongo.Ping(ctx, readpref.Primary())
		},
		"postgres": func(ctx context.Context) error {
			return server.db.Ping(ctx)
		},
		"redis": func(ctx context.Context) error {
			return server.services.Cache.Ping(ctx)
		},
	}
}
