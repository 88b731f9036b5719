package cli

import (
	"github.com/themis-iprm/themis/internal/app"
)

// loggerBridge adapts the CLI logger to the app.Logger port
type loggerBridge struct {
	cliLogger *Logger
}

func (b *loggerBridge) Debug(format string, args ...interface{}) {
	b.cliLogger.Debug(format, args...)
}

func (b *loggerBridge) Info(format string, args ...interface{}) {
	b.cliLogger.Info(format, args...)
}

func (b *loggerBridge) Warn(format string, args ...interface{}) {
	b.cliLogger.Warn(format, args...)
}

func (b *loggerBridge) Error(format string, args ...interface{}) {
	b.cliLogger.Error(format, args...)
}

// InitializeLoggers routes app-layer logging through logger
func InitializeLoggers(logger *Logger) app.Logger {
	bridge := &loggerBridge{cliLogger: logger}
	app.SetLogger(bridge)
	return bridge
}
