// Package metrics exposes Prometheus collectors for circuit executions and reductions.
//
// A nil *Collector is valid and records nothing, so library code can call it
// unconditionally.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "zne"

// Result label values.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Collector groups the zne collectors registered on one registry.
type Collector struct {
	executions        *prometheus.CounterVec
	executionDuration prometheus.Histogram
	reductions        *prometheus.CounterVec
	zeroNoise         *prometheus.GaugeVec
}

// New registers the collectors on reg. A nil reg leaves them unregistered, which
// is useful in tests.
//
// Collectors:
//
//	zne_executions_total{result}          - executor calls by outcome
//	zne_execution_duration_seconds        - executor call latency
//	zne_reductions_total{model,result}    - Reduce calls by fit model and outcome
//	zne_zero_noise_estimate{model}        - last successful zero-noise estimate
func New(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		executions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "executions_total",
			Help:      "Total circuit executions by result",
		}, []string{"result"}),
		executionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "execution_duration_seconds",
			Help:      "Circuit execution latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		reductions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reductions_total",
			Help:      "Total reductions by fit model and result",
		}, []string{"model", "result"}),
		zeroNoise: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "zero_noise_estimate",
			Help:      "Most recent zero-noise estimate by fit model",
		}, []string{"model"}),
	}
}

// RecordExecution records one executor call.
func (c *Collector) RecordExecution(d time.Duration, err error) {
	if c == nil {
		return
	}

	c.executions.WithLabelValues(resultLabel(err)).Inc()
	c.executionDuration.Observe(d.Seconds())
}

// RecordReduction records one Reduce call. estimate is only used on success.
func (c *Collector) RecordReduction(model string, estimate float64, err error) {
	if c == nil {
		return
	}

	c.reductions.WithLabelValues(model, resultLabel(err)).Inc()
	if err == nil {
		c.zeroNoise.WithLabelValues(model).Set(estimate)
	}
}

func resultLabel(err error) string {
	if err != nil {
		return ResultError
	}

	return ResultSuccess
}
