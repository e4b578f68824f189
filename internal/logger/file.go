package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const fileTimeLayout = "02 Jan 2006, 15:04:05"

// FileLogger appends tab separated lines to a log file:
//
//	<time>\t<LEVEL>\t[<context>]\t<message>
//
// Writes are serialized; the file is opened per write so rotation by an
// external tool is picked up.
type FileLogger struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// creates a file logger writing to dir/name, creating dir if needed
func NewFileLogger(dir, name string) (*FileLogger, error) {
	if dir == "" {
		dir = "logs"
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	return &FileLogger{
		path: filepath.Join(dir, name),
		now:  time.Now,
	}, nil
}

// returns the file being written to
func (f *FileLogger) Path() string {
	return f.path
}

// appends a LOG line and mirrors it to the default logger
func (f *FileLogger) Log(context, message string) error {
	Info(message, "context", context)
	return f.Append("LOG", context, message)
}

// appends an ERROR line and mirrors it to the default logger
func (f *FileLogger) Error(context, message string) error {
	Error(message, "context", context)
	return f.Append("ERROR", context, message)
}

// appends a line without mirroring it to the default logger
func (f *FileLogger) Append(level, context, message string) error {
	line := fmt.Sprintf("%s\t%s\t[%s]\t%s\n",
		f.now().Format(fileTimeLayout), level, context, oneLine(message))

	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640) //nolint:gosec // path comes from config
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	if _, err := file.WriteString(line); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write log file: %w", err)
	}

	return file.Close()
}

// keeps one entry per line
func oneLine(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\t", " ").Replace(s)
}
