package cr

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/carefulresume/cr/internal/congestion"
	"github.com/carefulresume/cr/internal/protocol"
	"github.com/carefulresume/cr/logging"
	"github.com/carefulresume/cr/metrics"
	"github.com/carefulresume/cr/qlog"
)

// Manager is the per-connection API a congestion controller wires careful
// resume in through: one Resume state machine, one Observer sampler, and
// the trace/log/metrics sidecars that watch them without participating in
// the state machine itself.
type Manager struct {
	resume   *congestion.Resume
	observer *congestion.Observer
	recorder *qlog.Recorder
	logger   *logging.CRLogger
	metrics  *metrics.CRMetrics
}

// NewManager builds a Manager for one connection. traceID is used only for
// log and trace-event labeling. config may be nil, in which case careful
// resume is disabled: SendPacket, ProcessAck and CongestionEvent return no
// adjustments (the phase may still move to Normal), while Sample keeps
// reporting Observer samples.
func NewManager(traceID string, config *Config) (*Manager, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	config = populateConfig(config)

	resume := congestion.NewResume(traceID)
	if config.EnableCarefulResume {
		resume.Setup(config.PreviousRTT, config.PreviousCWND)
	}

	m := &Manager{
		resume:   resume,
		observer: congestion.NewObserver(traceID, config.InitialWindow),
		recorder: qlog.NewRecorder(resume),
		logger:   logging.CreateResumeConnectionTracer(traceID, config.EnableLogging),
	}
	if config.EnableMetrics {
		m.metrics = metrics.NewCRMetricsWith(prometheus.NewRegistry())
	}
	return m, nil
}

// Enabled reports whether careful resume is still active for this
// connection.
func (m *Manager) Enabled() bool { return m.resume.Enabled() }

// Phase returns the current careful resume phase.
func (m *Manager) Phase() congestion.Phase { return m.resume.Phase() }

// PersistenceSuppressed forwards to Resume.PersistenceSuppressed.
func (m *Manager) PersistenceSuppressed() bool { return m.resume.PersistenceSuppressed() }

// SendPacket forwards to Resume.SendPacket and reports the resulting
// congestion window jump, if any, to the trace/log/metrics sidecars.
func (m *Manager) SendPacket(rttSample *time.Duration, cwnd protocol.ByteCount, largestPktSent protocol.PacketNumber, appLimited, iwAcked bool) protocol.ByteCount {
	jump := m.resume.SendPacket(rttSample, cwnd, largestPktSent, appLimited, iwAcked)
	m.observe(cwnd+jump, 0)
	if jump > 0 {
		if m.metrics != nil {
			m.metrics.ObserveJump(float64(jump))
		}
		if m.logger != nil && rttSample != nil {
			m.logger.LogJump(jump, m.resume.PreviousRTT(), m.resume.PreviousCWND())
		}
	}
	return jump
}

// ProcessAck forwards to Resume.ProcessAck and reports any resulting
// congestion window or ssthresh hint. cwnd is the host's current congestion
// window, used only for the trace snapshot; flightsize is the bytes sent but
// not yet acknowledged, which is what the state machine's pipesize tie-break
// actually compares against.
func (m *Manager) ProcessAck(largestPktSent protocol.PacketNumber, acked congestion.Acked, cwnd, flightsize protocol.ByteCount) (*protocol.ByteCount, *protocol.ByteCount) {
	newCWND, ssthresh := m.resume.ProcessAck(largestPktSent, acked, flightsize)
	reportedCWND := cwnd
	if newCWND != nil {
		reportedCWND = *newCWND
	}
	m.observe(reportedCWND, derefOrZero(ssthresh))
	return newCWND, ssthresh
}

// CongestionEvent forwards to Resume.CongestionEvent.
func (m *Manager) CongestionEvent(largestPktSent protocol.PacketNumber) protocol.ByteCount {
	hint := m.resume.CongestionEvent(largestPktSent)
	m.observe(hint, hint)
	if hint > 0 && m.logger != nil {
		trigger, _ := m.resume.LastTrigger()
		m.logger.LogSafeRetreat(trigger, hint)
	}
	return hint
}

// CongestionEventECN forwards to Resume.CongestionEventECN.
func (m *Manager) CongestionEventECN(largestPktSent protocol.PacketNumber) protocol.ByteCount {
	hint := m.resume.CongestionEventECN(largestPktSent)
	m.observe(hint, hint)
	return hint
}

// Sample asks the Observer whether (minRTT, cwnd) should be persisted for
// a future connection's careful resume, and reports it to the sidecars
// when it should.
func (m *Manager) Sample(minRTT time.Duration, cwnd protocol.ByteCount) (congestion.Sample, bool) {
	sample, ok := m.observer.MaybeUpdate(minRTT, cwnd)
	if ok {
		if m.metrics != nil {
			m.metrics.CountSample()
		}
		if m.logger != nil {
			m.logger.LogSample(sample)
		}
	}
	return sample, ok
}

func (m *Manager) observe(cwnd, ssthresh protocol.ByteCount) {
	ev := m.recorder.MaybeEmit(cwnd, ssthresh)
	if ev == nil {
		return
	}
	if m.logger != nil {
		m.logger.LogPhaseChange(ev)
	}
	if m.metrics != nil {
		m.metrics.UpdateResumeState(m.resume)
	}
}

func derefOrZero(b *protocol.ByteCount) protocol.ByteCount {
	if b == nil {
		return 0
	}
	return *b
}
