// Package rp2log holds the process-wide structured logger.
package rp2log

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu     sync.RWMutex
	logger = zap.NewNop()
)

// Set installs the process logger. Called once from the CLI after flag
// parsing; libraries only read it.
func Set(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l != nil {
		logger = l
	}
}

// L returns the current logger. Safe for concurrent use.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}
