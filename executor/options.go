package executor

import (
	"fmt"
	"log/slog"

	"github.com/arloliu/zne/internal/options"
	"github.com/arloliu/zne/metrics"
)

type runnerConfig struct {
	scaler      Scaler
	concurrency int
	repetitions int
	logger      *slog.Logger
	metrics     *metrics.Collector
}

func defaultRunnerConfig() *runnerConfig {
	return &runnerConfig{
		scaler:      TagScaler,
		concurrency: 1,
		repetitions: 1,
		logger:      slog.New(slog.DiscardHandler),
	}
}

// RunnerOption is a functional option for NewRunner.
type RunnerOption = options.Option[*runnerConfig]

// WithScaler sets the noise-amplification strategy. The default is TagScaler.
func WithScaler(s Scaler) RunnerOption {
	return options.New(func(cfg *runnerConfig) error {
		if s == nil {
			return fmt.Errorf("scaler must not be nil")
		}
		cfg.scaler = s

		return nil
	})
}

// WithConcurrency bounds the number of executor calls in flight. The default of 1
// runs every call sequentially in scale-factor order.
func WithConcurrency(n int) RunnerOption {
	return options.New(func(cfg *runnerConfig) error {
		if n < 1 {
			return fmt.Errorf("concurrency must be at least 1, got %d", n)
		}
		cfg.concurrency = n

		return nil
	})
}

// WithRepetitions sets how many times the circuit is executed per scale factor.
// Every execution is pushed as its own sample and the engine averages them.
func WithRepetitions(k int) RunnerOption {
	return options.New(func(cfg *runnerConfig) error {
		if k < 1 {
			return fmt.Errorf("repetitions must be at least 1, got %d", k)
		}
		cfg.repetitions = k

		return nil
	})
}

// WithLogger sets the logger. A nil logger keeps the default discard logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return options.NoError(func(cfg *runnerConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	})
}

// WithMetrics records executions and reductions on c.
func WithMetrics(c *metrics.Collector) RunnerOption {
	return options.NoError(func(cfg *runnerConfig) {
		cfg.metrics = c
	})
}
