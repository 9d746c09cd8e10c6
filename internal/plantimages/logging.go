package plantimages

import (
	"log/slog"
	"sync"

	"github.com/verdantlabs/bloomcal/internal/logging"
)

var (
	logger     *slog.Logger
	loggerOnce sync.Once
)

// getLogger returns the plantimages service logger, resolving it lazily so
// package-level code does not race logging initialization.
func getLogger() *slog.Logger {
	loggerOnce.Do(func() {
		logger = logging.ForService("plantimages")
		if logger == nil {
			logger = slog.Default().With("service", "plantimages")
		}
	})
	return logger
}
