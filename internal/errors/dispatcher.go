package errors

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"codeberg.org/starterkit/server/internal/logger"
)

// Sink receives one record per dispatched failure. Implementations should
// not block for long; a returned error is logged and otherwise ignored.
type Sink interface {
	Record(ctx context.Context, rec Record) error
}

// Dispatcher is the boundary that turns any failure into exactly one
// response envelope and one log record.
type Dispatcher struct {
	classifier *Classifier
	sanitizer  Sanitizer
	sink       Sink
	now        func() time.Time
}

// creates a dispatcher; sink may be nil
func NewDispatcher(mode Mode, sink Sink) *Dispatcher {
	return &Dispatcher{
		classifier: NewClassifier(),
		sanitizer:  Sanitizer{Mode: mode},
		sink:       sink,
		now:        time.Now,
	}
}

// classifies raw, writes the envelope unless a response was already
// written, aborts the chain and forwards the record to the sink
func (d *Dispatcher) Dispatch(c *gin.Context, raw any) Envelope {
	return d.dispatch(c, raw, true)
}

func (d *Dispatcher) dispatch(c *gin.Context, raw any, attach bool) Envelope {
	res := d.sanitizer.Apply(d.classifier.Classify(raw))
	env := BuildEnvelope(res, requestPath(c), d.now())

	if c.Writer.Written() {
		c.Abort()
	} else {
		c.AbortWithStatusJSON(env.StatusCode, env)
	}

	// keep gin's own error bookkeeping (logger, recovery) informed
	if attach {
		_ = c.Error(asError(raw)) //nolint:errcheck // returns its argument wrapped
	}

	d.record(c, Record{
		Category: res.Category,
		Summary:  res.Summary,
		Method:   requestMethod(c),
		Path:     env.Path,
		Envelope: env,
		Cause:    raw,
	})

	return env
}

// best effort: failures and panics in the sink never reach the client and
// are never dispatched again
func (d *Dispatcher) record(c *gin.Context, rec Record) {
	if d.sink == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Warn("error sink panicked", "panic", fmt.Sprint(r), "category", rec.Category)
		}
	}()

	ctx := context.Background()
	if c.Request != nil {
		ctx = c.Request.Context()
	}

	if err := d.sink.Record(ctx, rec); err != nil {
		logger.Warn("error sink failed", "error", err, "category", rec.Category)
	}
}

// dispatches the last error attached to the context once the handler chain returns
func (d *Dispatcher) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil {
			return
		}

		d.dispatch(c, last.Err, false)
	}
}

// recovers panics (error and non-error values) into the same envelope; gin
// still prints the stack trace to out
func (d *Dispatcher) Recovery(out io.Writer) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(out, func(c *gin.Context, recovered any) {
		d.Dispatch(c, recovered)
	})
}

func requestPath(c *gin.Context) string {
	if c.Request == nil || c.Request.URL == nil {
		return ""
	}

	return c.Request.URL.RequestURI()
}

func requestMethod(c *gin.Context) string {
	if c.Request == nil {
		return ""
	}

	return c.Request.Method
}

func asError(raw any) error {
	if err, ok := raw.(error); ok && err != nil {
		return err
	}

	return fmt.Errorf("panic: %v", raw)
}
