package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	slogzap "github.com/samber/slog-zap/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	globalLogger *slog.Logger
	mu           sync.RWMutex
)

// ParseLevel maps a config level string to a slog level, defaulting to INFO.
func ParseLevel(levelStr string) (slog.Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO", "":
		return slog.LevelInfo, true
	case "WARN", "WARNING":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// InitSlog initializes the global slog logger with a JSON handler on stdout.
func InitSlog(levelStr string) {
	InitSlogTo(os.Stdout, levelStr)
}

// InitSlogTo initializes the global slog logger with a JSON handler writing to w.
func InitSlogTo(w io.Writer, levelStr string) {
	level, ok := ParseLevel(levelStr)
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	Use(slog.New(handler))
	if !ok {
		Warn("Invalid log level string, defaulting to INFO", "input", levelStr)
	}
}

// NewZap builds the process zap logger for the configured level.
func NewZap(levelStr string, development bool) (*zap.Logger, error) {
	level, _ := ParseLevel(levelStr)
	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel(level))
	return cfg.Build()
}

// InitZap routes the global slog logger into zapLogger.
func InitZap(zapLogger *zap.Logger, levelStr string) {
	level, _ := ParseLevel(levelStr)
	handler := slogzap.Option{Level: level, Logger: zapLogger}.NewZapHandler()
	Use(slog.New(handler))
}

// Use installs l as the global and default slog logger.
func Use(l *slog.Logger) {
	mu.Lock()
	globalLogger = l
	mu.Unlock()
	slog.SetDefault(l)
}

func zapLevel(level slog.Level) zapcore.Level {
	switch {
	case level <= slog.LevelDebug:
		return zapcore.DebugLevel
	case level <= slog.LevelInfo:
		return zapcore.InfoLevel
	case level <= slog.LevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

func current() *slog.Logger {
	mu.RLock()
	l := globalLogger
	mu.RUnlock()
	if l == nil {
		InitSlog("INFO")
		mu.RLock()
		l = globalLogger
		mu.RUnlock()
	}
	return l
}

func log(level slog.Level, msg string, args ...any) {
	l := current()
	ctx := context.Background()
	if l.Enabled(ctx, level) {
		l.Log(ctx, level, msg, args...)
	}
}

// Debug logs a message at DebugLevel.
func Debug(msg string, args ...any) { log(slog.LevelDebug, msg, args...) }

// Info logs a message at InfoLevel.
func Info(msg string, args ...any) { log(slog.LevelInfo, msg, args...) }

// Warn logs a message at WarnLevel.
func Warn(msg string, args ...any) { log(slog.LevelWarn, msg, args...) }

// Error logs a message at ErrorLevel.
func Error(msg string, args ...any) { log(slog.LevelError, msg, args...) }

// Fatal logs a message at ErrorLevel then exits.
func Fatal(msg string, args ...any) {
	current().Error(msg, args...)
	os.Exit(1)
}
