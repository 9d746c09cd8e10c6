package csvimport

import (
	"log/slog"
	"sync"

	"github.com/verdantlabs/bloomcal/internal/logging"
)

var (
	serviceLogger *slog.Logger
	loggerOnce    sync.Once
)

func getLogger() *slog.Logger {
	loggerOnce.Do(func() {
		if l := logging.ForService("csvimport"); l != nil {
			serviceLogger = l
		} else {
			serviceLogger = slog.Default().With("service", "csvimport")
		}
	})
	return serviceLogger
}
