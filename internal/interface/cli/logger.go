package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel is the minimum severity written to stderr
type LogLevel = zapcore.Level

const (
	LogLevelDebug = zapcore.DebugLevel
	LogLevelInfo  = zapcore.InfoLevel
	LogLevelWarn  = zapcore.WarnLevel
	LogLevelError = zapcore.ErrorLevel
)

// Logger provides leveled, human-readable logging on top of zap
type Logger struct {
	mu    sync.RWMutex
	level zap.AtomicLevel
	zl    *zap.Logger
	sugar *zap.SugaredLogger
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// NewLogger creates a logger writing entries at or above minLevel to output
func NewLogger(minLevel LogLevel, output io.Writer) *Logger {
	l := &Logger{level: zap.NewAtomicLevelAt(minLevel)}
	l.build(output)
	return l
}

func (l *Logger) build(output io.Writer) {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig()),
		zapcore.AddSync(zapcore.Lock(zapcore.AddSync(output))),
		l.level,
	)
	l.zl = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2))
	l.sugar = l.zl.Sugar()
}

// SetLevel changes the minimum log level
func (l *Logger) SetLevel(level LogLevel) {
	l.level.SetLevel(level)
}

// GetLevel returns the current minimum log level
func (l *Logger) GetLevel() LogLevel {
	return l.level.Level()
}

// SetOutput changes the output writer
func (l *Logger) SetOutput(output io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.build(output)
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.logf(LogLevelDebug, format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.logf(LogLevelInfo, format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.logf(LogLevelWarn, format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.logf(LogLevelError, format, args...)
}

func (l *Logger) logf(level LogLevel, format string, args ...interface{}) {
	l.mu.RLock()
	sugar := l.sugar
	l.mu.RUnlock()

	if !l.level.Enabled(level) {
		return
	}
	msg := fmt.Sprintf(format, args...)
	switch level {
	case LogLevelDebug:
		sugar.Debug(msg)
	case LogLevelInfo:
		sugar.Info(msg)
	case LogLevelWarn:
		sugar.Warn(msg)
	default:
		sugar.Error(msg)
	}
}

// Sync flushes buffered entries
func (l *Logger) Sync() {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_ = l.zl.Sync()
}

// LogLevelFromString converts a setting value to a LogLevel, defaulting to WARN
func LogLevelFromString(level string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return LogLevelDebug
	case "info":
		return LogLevelInfo
	case "error":
		return LogLevelError
	default:
		return LogLevelWarn
	}
}

var (
	globalMu     sync.Mutex
	globalLogger *Logger
)

// InitGlobalLogger installs a stderr logger at level
func InitGlobalLogger(level string) *Logger {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = NewLogger(LogLevelFromString(level), os.Stderr)
	return globalLogger
}

// GetLogger returns the global logger, creating a WARN-level one on first use
func GetLogger() *Logger {
	globalMu.Lock()
	l := globalLogger
	globalMu.Unlock()
	if l == nil {
		return InitGlobalLogger("warn")
	}
	return l
}
