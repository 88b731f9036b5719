package app

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Logger is the logging port used below the CLI layer.
// The CLI installs a leveled implementation with SetLogger.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// stderrLogger prints warnings and errors until the CLI logger is installed
type stderrLogger struct {
	out io.Writer
}

func (l *stderrLogger) Debug(string, ...interface{}) {}
func (l *stderrLogger) Info(string, ...interface{})  {}

func (l *stderrLogger) Warn(format string, args ...interface{}) {
	fmt.Fprintf(l.out, "WARN: "+format+"\n", args...)
}

func (l *stderrLogger) Error(format string, args ...interface{}) {
	fmt.Fprintf(l.out, "ERROR: "+format+"\n", args...)
}

// NopLogger discards everything
type NopLogger struct{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}

var (
	loggerMu     sync.RWMutex
	globalLogger Logger = &stderrLogger{out: os.Stderr}
)

// SetLogger replaces the app-layer logger; nil is ignored
func SetLogger(logger Logger) {
	if logger == nil {
		return
	}
	loggerMu.Lock()
	globalLogger = logger
	loggerMu.Unlock()
}

// GetLogger returns the current app-layer logger
func GetLogger() Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return globalLogger
}
