package response

import (
	"time"

	"github.com/gin-gonic/gin"

	"codeberg.org/starterkit/server/internal/errors"
)

// Envelope wraps every successful response body. Failures use errors.Envelope.
type Envelope struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	Timestamp  string `json:"timestamp"`
	Path       string `json:"path"`
	Data       any    `json:"data"`
}

// Message is the payload of operations that return nothing else
type Message struct {
	Message string `json:"message"`
}

// writes data wrapped in a success envelope
func JSON(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{
		Success:    true,
		StatusCode: status,
		Timestamp:  time.Now().UTC().Format(errors.TimestampLayout),
		Path:       c.Request.URL.RequestURI(),
		Data:       data,
	})
}
