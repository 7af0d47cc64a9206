// Package metrics records command outcomes as Prometheus metrics.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "simples3"

// Command outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeInvalid = "invalid"
)

// Recorder holds the command collectors. A nil *Recorder records nothing.
type Recorder struct {
	commands     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	cacheLookups *prometheus.CounterVec
	batchItems   *prometheus.CounterVec
}

// New creates the collectors and registers them on reg. Collectors already
// registered by another Recorder on the same registry are reused.
func New(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands executed, by command and outcome.",
		}, []string{"command", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Command latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups made by GetItem, by result.",
		}, []string{"result"}),
		batchItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_items_total",
			Help:      "Items processed by batch copies, by outcome.",
		}, []string{"outcome"}),
	}

	var err error
	if r.commands, err = register(reg, r.commands); err != nil {
		return nil, err
	}
	if r.duration, err = register(reg, r.duration); err != nil {
		return nil, err
	}
	if r.cacheLookups, err = register(reg, r.cacheLookups); err != nil {
		return nil, err
	}
	if r.batchItems, err = register(reg, r.batchItems); err != nil {
		return nil, err
	}
	return r, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// ObserveCommand records one command execution.
func (r *Recorder) ObserveCommand(command, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.commands.WithLabelValues(command, outcome).Inc()
	r.duration.WithLabelValues(command).Observe(elapsed.Seconds())
}

// CacheLookup records a GetItem cache lookup.
func (r *Recorder) CacheLookup(hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// BatchItem records the outcome of one batch copy item.
func (r *Recorder) BatchItem(outcome string) {
	if r == nil {
		return
	}
	r.batchItems.WithLabelValues(outcome).Inc()
}
