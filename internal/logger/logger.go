package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"docdetect/internal/config"
)

// Logger provides leveled logging (debug/info/warning/error) to stdout and,
// when a log directory is configured, to service.log inside it.
type Logger struct {
	log  *logrus.Logger
	file *os.File
}

// NewLogger creates a Logger from config. DEBUG lowers the level to debug.
func NewLogger(cfg *config.Config) (*Logger, error) {
	l := &Logger{log: logrus.New()}
	l.log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.log.SetOutput(os.Stdout)

	if cfg.Debug {
		l.log.SetLevel(logrus.DebugLevel)
	} else {
		l.log.SetLevel(logrus.InfoLevel)
	}

	if cfg.LogDirectory != "" {
		if err := os.MkdirAll(cfg.LogDirectory, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		file, err := os.OpenFile(filepath.Join(cfg.LogDirectory, "service.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		l.file = file
		l.log.SetOutput(io.MultiWriter(os.Stdout, file))
	}

	return l, nil
}

// New wraps an existing writer; used by tests and tools that don't need files.
func New(out io.Writer, debug bool) *Logger {
	l := &Logger{log: logrus.New()}
	l.log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	l.log.SetOutput(out)
	if debug {
		l.log.SetLevel(logrus.DebugLevel)
	}
	return l
}

// Debug writes a formatted debug-level log entry.
func (l *Logger) Debug(format string, v ...interface{}) {
	l.log.Debugf(format, v...)
}

// Info writes a formatted info-level log entry.
func (l *Logger) Info(format string, v ...interface{}) {
	l.log.Infof(format, v...)
}

// Warning writes a formatted warning-level log entry.
func (l *Logger) Warning(format string, v ...interface{}) {
	l.log.Warnf(format, v...)
}

// Error writes a formatted error-level log entry.
func (l *Logger) Error(format string, v ...interface{}) {
	l.log.Errorf(format, v...)
}

// WithFields returns an entry carrying contextual fields such as request_id or stage.
func (l *Logger) WithFields(fields logrus.Fields) *logrus.Entry {
	return l.log.WithFields(fields)
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
