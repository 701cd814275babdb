package extrapolation

import (
	"log/slog"

	"github.com/arloliu/zne/internal/options"
)

// engineConfig holds optional engine settings.
type engineConfig struct {
	logger        *slog.Logger
	storeCapacity int
}

func defaultEngineConfig() *engineConfig {
	return &engineConfig{
		logger:        slog.New(slog.DiscardHandler),
		storeCapacity: 16,
	}
}

// EngineOption is a functional option for NewEngine.
type EngineOption = options.Option[*engineConfig]

// WithLogger sets the logger used for debug output. A nil logger keeps the default,
// which discards everything.
func WithLogger(logger *slog.Logger) EngineOption {
	return options.NoError(func(cfg *engineConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	})
}

// WithStoreCapacity pre-sizes the sample store, e.g. scale factors times repetitions.
func WithStoreCapacity(n int) EngineOption {
	return options.NoError(func(cfg *engineConfig) {
		if n > 0 {
			cfg.storeCapacity = n
		}
	})
}
