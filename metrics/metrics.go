// Package metrics counts log entries per repository and level in Prometheus.
package metrics

import (
	"errors"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/trickstertwo/xscope/logx"
)

// Observer is a logx.Observer feeding xscope_log_events_total.
type Observer struct {
	events *prometheus.CounterVec
}

var _ logx.Observer = (*Observer)(nil)

// NewObserver registers the counter with reg (prometheus.DefaultRegisterer
// when nil). Registering twice on the same registry reuses the existing
// counter.
func NewObserver(reg prometheus.Registerer) (*Observer, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "xscope_log_events_total",
		Help: "Log entries emitted, by repository and level.",
	}, []string{"repository", "level"})

	if err := reg.Register(events); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, err
		}
		events = existing
	}
	return &Observer{events: events}, nil
}

// OnLog implements logx.Observer.
func (o *Observer) OnLog(repository string, e logx.Entry) {
	o.events.WithLabelValues(repository, strings.ToLower(e.Level.String())).Inc()
}

// Attach adds o to every repository given.
func (o *Observer) Attach(repos ...*logx.Repository) {
	for _, r := range repos {
		r.AddObserver(o)
	}
}

// Collector exposes the underlying counter, for tests and custom registries.
func (o *Observer) Collector() *prometheus.CounterVec { return o.events }
