package dal

import (
	"log/slog"
	"sync/atomic"

	"github.com/robert-malhotra/go-dal/hdf5"
)

var logger atomic.Pointer[slog.Logger]

func init() {
	logger.Store(slog.New(slog.DiscardHandler))
}

// SetLogger sets the logger of this package and of the storage engine.
// A nil logger discards.
func SetLogger(l *slog.Logger) {
	hdf5.SetLogger(l)
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	logger.Store(l)
}

func log() *slog.Logger {
	return logger.Load()
}
