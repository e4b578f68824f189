package errors

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
)

// binds a JSON body; an empty body is an explicit bad request, every other
// binding failure is returned as is for the runtime classifier
func BindJSON(c *gin.Context, obj any) error {
	err := c.ShouldBindJSON(obj)
	if errors.Is(err, io.EOF) {
		return BadRequest("request body is required", nil)
	}

	// a truncated body is not reported as a *json.SyntaxError
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return BadRequest("malformed request body", err)
	}

	return err
}
