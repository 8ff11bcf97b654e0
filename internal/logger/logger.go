// Package logger holds the process-wide structured logger.
package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	sugar *zap.SugaredLogger
	once  sync.Once
)

// Init configures the global logger once for the given environment:
// JSON output in production, human-readable console output elsewhere.
func Init(env string) {
	once.Do(func() {
		build := zap.NewDevelopment
		if env == "production" {
			build = zap.NewProduction
		}

		base, err := build()
		if err != nil {
			// A process without a working logger still has to run.
			base = zap.NewNop()
		}

		sugar = base.Named("dindin").Sugar()
	})
}

// Get returns the global sugared logger, initializing a development one if
// Init was never called (tests, tooling).
func Get() *zap.SugaredLogger {
	if sugar == nil {
		Init("development")
	}
	return sugar
}

// Sync flushes buffered entries. Deferred in main before exit.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
