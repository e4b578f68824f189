package errors

import (
	"context"
	"encoding/json"
	"fmt"

	"codeberg.org/starterkit/server/internal/logger"
)

// LogSink writes dispatched failures to the error log file and to the
// structured logger.
type LogSink struct {
	file *logger.FileLogger
}

// creates a sink; file may be nil to log only through slog
func NewLogSink(file *logger.FileLogger) *LogSink {
	return &LogSink{file: file}
}

func (s *LogSink) Record(ctx context.Context, rec Record) error {
	body, err := json.Marshal(rec.Envelope)
	if err != nil {
		body = []byte(fmt.Sprintf("%+v", rec.Envelope))
	}

	logger.FromContext(ctx).Error(rec.Summary,
		"category", string(rec.Category),
		"method", rec.Method,
		"path", rec.Path,
		"status", rec.Envelope.StatusCode,
		"cause", fmt.Sprint(rec.Cause),
	)

	if s.file == nil {
		return nil
	}

	return s.file.Append("ERROR", string(rec.Category), string(body))
}
