// Copyright 2025 The Zen Watcher Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logger

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger with consistent field structure
type Logger struct {
	*zap.Logger
}

// Fields for consistent structured logging
type Fields struct {
	Component     string
	Operation     string
	EventID       string
	Status        string
	Endpoint      string
	Subject       string
	Error         error
	CorrelationID string
	Duration      string
	Page          int
	Count         int
	Reason        string
	// Additional fields as key-value pairs
	Additional map[string]interface{}
}

var (
	mu           sync.RWMutex
	globalLogger *Logger
)

// ParseLevel maps a LOG_LEVEL string to a zap level, defaulting to INFO
func ParseLevel(level string) zapcore.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "WARN", "WARNING":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	case "FATAL":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// Init initializes the global logger
func Init(level string, development bool) error {
	var config zap.Config
	if development {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		config.EncoderConfig.MessageKey = "message"
		config.EncoderConfig.LevelKey = "level"
		config.EncoderConfig.CallerKey = "caller"
	}

	config.Level = zap.NewAtomicLevelAt(ParseLevel(level))
	config.EncoderConfig.EncodeDuration = zapcore.SecondsDurationEncoder
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	// CLI output owns stdout
	config.OutputPaths = []string{"stderr"}

	logger, err := config.Build(
		zap.AddCallerSkip(2), // Skip wrapper and package-level helper
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		return err
	}

	SetLogger(logger)
	return nil
}

// SetLogger replaces the global logger. Tests use it with zaptest/observer.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	globalLogger = &Logger{Logger: l}
}

// GetLogger returns the global logger instance
func GetLogger() *Logger {
	mu.RLock()
	l := globalLogger
	mu.RUnlock()
	if l != nil {
		return l
	}
	// Fallback initialization
	if err := Init("INFO", false); err != nil {
		SetLogger(zap.NewNop())
	}
	mu.RLock()
	defer mu.RUnlock()
	return globalLogger
}

// WithFields creates a new logger with structured fields
func (l *Logger) WithFields(fields Fields) *zap.Logger {
	zapFields := make([]zap.Field, 0, 8)

	if fields.Component != "" {
		zapFields = append(zapFields, zap.String("component", fields.Component))
	}
	if fields.Operation != "" {
		zapFields = append(zapFields, zap.String("operation", fields.Operation))
	}
	if fields.EventID != "" {
		zapFields = append(zapFields, zap.String("event_id", fields.EventID))
	}
	if fields.Status != "" {
		zapFields = append(zapFields, zap.String("status", fields.Status))
	}
	if fields.Endpoint != "" {
		zapFields = append(zapFields, zap.String("endpoint", fields.Endpoint))
	}
	if fields.Subject != "" {
		zapFields = append(zapFields, zap.String("subject", fields.Subject))
	}
	if fields.Error != nil {
		zapFields = append(zapFields, zap.Error(fields.Error))
	}
	if fields.CorrelationID != "" {
		zapFields = append(zapFields, zap.String("correlation_id", fields.CorrelationID))
	}
	if fields.Duration != "" {
		zapFields = append(zapFields, zap.String("duration", fields.Duration))
	}
	if fields.Page > 0 {
		zapFields = append(zapFields, zap.Int("page", fields.Page))
	}
	if fields.Count > 0 {
		zapFields = append(zapFields, zap.Int("count", fields.Count))
	}
	if fields.Reason != "" {
		zapFields = append(zapFields, zap.String("reason", fields.Reason))
	}
	for k, v := range fields.Additional {
		zapFields = append(zapFields, zap.Any(k, v))
	}

	return l.Logger.With(zapFields...)
}

// WithContext adds correlation ID from context
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	correlationID := GetCorrelationID(ctx)
	if correlationID != "" {
		return &Logger{Logger: l.Logger.With(zap.String("correlation_id", correlationID))}
	}

	return l
}

// Debug logs at debug level
func (l *Logger) Debug(msg string, fields ...Fields) {
	if len(fields) > 0 {
		l.WithFields(fields[0]).Debug(msg)
	} else {
		l.Logger.Debug(msg)
	}
}

// Info logs at info level
func (l *Logger) Info(msg string, fields ...Fields) {
	if len(fields) > 0 {
		l.WithFields(fields[0]).Info(msg)
	} else {
		l.Logger.Info(msg)
	}
}

// Warn logs at warn level
func (l *Logger) Warn(msg string, fields ...Fields) {
	if len(fields) > 0 {
		l.WithFields(fields[0]).Warn(msg)
	} else {
		l.Logger.Warn(msg)
	}
}

// Error logs at error level
func (l *Logger) Error(msg string, fields ...Fields) {
	if len(fields) > 0 {
		l.WithFields(fields[0]).Error(msg)
	} else {
		l.Logger.Error(msg)
	}
}

// Context key for correlation ID
type contextKey string

const correlationIDKey contextKey = "correlation_id"

// WithCorrelationID adds correlation ID to context
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// GetCorrelationID extracts correlation ID from context
func GetCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

// Convenience functions for global logger
func Debug(msg string, fields ...Fields) {
	GetLogger().Debug(msg, fields...)
}

func Info(msg string, fields ...Fields) {
	GetLogger().Info(msg, fields...)
}

func Warn(msg string, fields ...Fields) {
	GetLogger().Warn(msg, fields...)
}

func Error(msg string, fields ...Fields) {
	GetLogger().Error(msg, fields...)
}

// Sync flushes any buffered log entries
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	if globalLogger != nil {
		return globalLogger.Sync()
	}
	return nil
}
