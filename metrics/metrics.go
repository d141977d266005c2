// Package metrics exposes careful resume's internal state as Prometheus
// gauges and counters: one struct of promauto-registered collectors, one
// Update* method per group of related fields.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/carefulresume/cr/internal/congestion"
)

// CRMetrics holds the Prometheus collectors for a single careful-resume
// connection. Construct one per connection with NewCRMetricsWith and a
// private registry, or share a single process-wide instance from
// NewCRMetrics, which registers against the default registry and so can be
// called only once per process.
type CRMetrics struct {
	Phase       *prometheus.GaugeVec
	Pipesize    prometheus.Gauge
	TotalAcked  prometheus.Gauge
	JumpSize    prometheus.Histogram
	Samples     prometheus.Counter
	Suppression prometheus.Gauge
}

// NewCRMetrics creates and registers the careful-resume collector set
// against the default Prometheus registry. Use NewCRMetricsWith to
// register against a private registry instead, e.g. from a test or when
// running several independent sets in one process.
func NewCRMetrics() *CRMetrics {
	return NewCRMetricsWith(prometheus.DefaultRegisterer)
}

// NewCRMetricsWith creates and registers the careful-resume collector set
// against reg.
func NewCRMetricsWith(reg prometheus.Registerer) *CRMetrics {
	factory := promauto.With(reg)
	m := &CRMetrics{
		Phase: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "careful_resume_phase",
			Help: "1 for the currently active careful resume phase, 0 for all others, labeled by phase name",
		}, []string{"phase"}),
		Pipesize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "careful_resume_pipesize_bytes",
			Help: "Congestion window at the jump plus bytes acknowledged since, as accumulated by careful resume",
		}),
		TotalAcked: factory.NewGauge(prometheus.GaugeOpts{
			Name: "careful_resume_total_acked_bytes",
			Help: "Total bytes acknowledged across the lifetime of the connection's careful resume state",
		}),
		JumpSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "careful_resume_jump_bytes",
			Help:    "Congestion window jump granted on entering the unvalidated phase",
			Buckets: prometheus.ExponentialBuckets(1000, 2, 16),
		}),
		Samples: factory.NewCounter(prometheus.CounterOpts{
			Name: "careful_resume_observer_samples_total",
			Help: "Number of (min_rtt, cwnd) samples the observer has emitted for persistence",
		}),
		Suppression: factory.NewGauge(prometheus.GaugeOpts{
			Name: "careful_resume_persistence_suppressed",
			Help: "1 if this connection's parameters must not be persisted (entered safe retreat), 0 otherwise",
		}),
	}

	for _, tag := range []congestion.PhaseTag{
		congestion.PhaseReconnaissance,
		congestion.PhaseUnvalidated,
		congestion.PhaseValidating,
		congestion.PhaseSafeRetreat,
		congestion.PhaseNormal,
	} {
		m.Phase.WithLabelValues(tag.String()).Set(0)
	}

	return m
}

// UpdatePhase sets the gauge for tag to 1 and every other phase to 0.
func (m *CRMetrics) UpdatePhase(tag congestion.PhaseTag) {
	for _, t := range []congestion.PhaseTag{
		congestion.PhaseReconnaissance,
		congestion.PhaseUnvalidated,
		congestion.PhaseValidating,
		congestion.PhaseSafeRetreat,
		congestion.PhaseNormal,
	} {
		if t == tag {
			m.Phase.WithLabelValues(t.String()).Set(1)
		} else {
			m.Phase.WithLabelValues(t.String()).Set(0)
		}
	}
}

// UpdateResumeState reports the fields a host reads after every
// SendPacket/ProcessAck/CongestionEvent call.
func (m *CRMetrics) UpdateResumeState(r *congestion.Resume) {
	m.UpdatePhase(r.Phase().Tag())
	m.Pipesize.Set(float64(r.Pipesize()))
	m.TotalAcked.Set(float64(r.TotalAcked()))
	if r.PersistenceSuppressed() {
		m.Suppression.Set(1)
	} else {
		m.Suppression.Set(0)
	}
}

// ObserveJump records a congestion window jump granted by SendPacket.
func (m *CRMetrics) ObserveJump(jump float64) {
	if jump <= 0 {
		return
	}
	m.JumpSize.Observe(jump)
}

// CountSample records that the observer emitted a persistable sample.
func (m *CRMetrics) CountSample() {
	m.Samples.Inc()
}
