package health

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"codeberg.org/starterkit/server/internal/errors"
)

const checkTimeout = 3 * time.Second

// Handler godoc
// @Summary Health check
// @Description Pings every backing service. The first failing dependency is reported through the error envelope.
// @Tags health
// @Produce json
// @Success 200 {object} Response
// @Failure 503 {object} errors.Envelope
// @Router /health [get]
func Handler(checks map[string]Check) gin.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}

	sort.Strings(names)

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
		defer cancel()

		results := make(map[string]string, len(names))

		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				errors.Abort(c, fmt.Errorf("%s health check: %w", name, err))
				return
			}

			results[name] = "ok"
		}

		c.JSON(http.StatusOK, Response{
			Status:  "healthy",
			Service: "storefront",
			Version: "1.0.0",
			Checks:  results,
		})
	}
}

// PingHandler godoc
// @Summary Ping
// @Tags health
// @Produce json
// @Success 200 {object} PingResponse
// @Router /api/v1/ping [get]
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{Message: "pong"})
}
