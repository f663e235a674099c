// Package logging provides the shared zap logger. The UI cannot write
// diagnostics to the terminal it owns, so everything goes to a log file
// under the user cache directory. Failures that must degrade silently
// (completion sources, clipboard) log here instead of surfacing.
package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger = zap.NewNop()

// Init opens the log file and installs the global logger. It never fails:
// if the file cannot be opened the nop logger stays in place.
func Init() {
	dir, err := os.UserCacheDir()
	if err != nil {
		return
	}
	dir = filepath.Join(dir, "gobang")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return
	}

	f, err := os.OpenFile(filepath.Join(dir, "gobang.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return
	}

	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(f), zapcore.InfoLevel)
	logger = zap.New(core)
}

// L returns the global logger.
func L() *zap.Logger {
	return logger
}

// Err wraps an error as a zap field.
func Err(err error) zap.Field {
	return zap.Error(err)
}

// Sync flushes buffered log entries, typically on shutdown.
func Sync() {
	_ = logger.Sync()
}
