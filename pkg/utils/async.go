package utils

import (
	"context"
	"log"
	"runtime/debug"

	"golang-disclosure-watcher/pkg/logger"
)

// GoSafe runs fn in a goroutine and recovers panics so one bad item can never
// take down the worker pool.
func GoSafe(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("recovered from panic: %v\n%s", r, debug.Stack())
			}
		}()
		fn()
	}()
}

// ShouldContinue reports whether the context is still alive, logging when it
// is not. Used by batch loops to stop picking up new items during shutdown.
func ShouldContinue(ctx context.Context, l *logger.Logger) bool {
	select {
	case <-ctx.Done():
		l.Info("Context cancelled, stopping batch processing", logger.ErrorField(ctx.Err()))
		return false
	default:
		return true
	}
}
