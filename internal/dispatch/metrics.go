package dispatch

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Diagnostic reasons used as the "reason" label.
const (
	reasonUnrecognizedTopic = "unrecognized_topic"
	reasonUnrecognizedLeaf  = "unrecognized_leaf"
	reasonUnhandled         = "unhandled_category"
	reasonInvalidJSON       = "invalid_json"
	reasonInvalidIndex      = "invalid_index"
	reasonInvalidHierarchy  = "invalid_hierarchy"
	reasonUnknownNodeType   = "unknown_node_type"
	reasonHandlerPanic      = "handler_panic"
	reasonCommandError      = "command_error"
)

// Metrics bundles dispatcher metrics. A nil *Metrics records nothing.
type Metrics struct {
	Messages    *prometheus.CounterVec
	Diagnostics *prometheus.CounterVec
	Duration    prometheus.Histogram
}

// NewMetrics constructs dispatcher metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "energymon_dispatch_messages_total",
				Help: "Total inbound MQTT messages by topic category",
			},
			[]string{"category"},
		),
		Diagnostics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "energymon_dispatch_diagnostics_total",
				Help: "Total dropped or degraded messages by reason",
			},
			[]string{"reason"},
		),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "energymon_dispatch_duration_seconds",
			Help:    "Time spent dispatching one message",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
		}),
	}

	for _, c := range []prometheus.Collector{m.Messages, m.Diagnostics, m.Duration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering dispatch metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) message(c Category) {
	if m == nil {
		return
	}
	m.Messages.WithLabelValues(c.String()).Inc()
}

func (m *Metrics) diagnostic(reason string) {
	if m == nil {
		return
	}
	m.Diagnostics.WithLabelValues(reason).Inc()
}

func (m *Metrics) observe(start time.Time) {
	if m == nil {
		return
	}
	m.Duration.Observe(time.Since(start).Seconds())
}
