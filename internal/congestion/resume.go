// Package congestion implements the Careful Resume auxiliary: a phase
// machine (Resume) that lets a new connection jump its congestion window
// using a prior connection's (min_rtt, cwnd) snapshot, and a single-slot
// sampler (Observer) that produces that snapshot for future connections.
// Both are driven by an enclosing congestion controller (Reno, CUBIC, ...)
// that owns packet sending, loss detection, and RTT estimation; this
// package only computes the adjustments on top of that.
package congestion

import (
	"time"

	"github.com/carefulresume/cr/internal/protocol"
	"github.com/carefulresume/cr/internal/utils"
)

// Acked is the subset of a host's acknowledged-packet record that Careful
// Resume needs. The host's real record carries timestamps and delivery-rate
// bookkeeping too; Resume only ever reads the packet number and size.
type Acked struct {
	PacketNumber protocol.PacketNumber
	Size         protocol.ByteCount
}

// Resume drives the five-phase careful resume state machine. The zero
// value is a disabled Resume; call Setup to arm it.
type Resume struct {
	traceID string

	enabled bool
	phase   Phase

	previousRTT  time.Duration
	previousCWND protocol.ByteCount

	pipesize   protocol.ByteCount
	totalAcked protocol.ByteCount

	lastTrigger           Trigger
	haveLastTrigger       bool
	persistenceSuppressed bool
}

// NewResume creates an idle, disabled Resume for one connection. traceID
// identifies the connection; it carries no control-flow meaning.
func NewResume(traceID string) *Resume {
	return &Resume{
		traceID: traceID,
		phase:   Reconnaissance(),
	}
}

// Setup arms the Resume with the previous connection's snapshot. After this
// call Enabled reports true and the phase is Reconnaissance.
func (r *Resume) Setup(previousRTT time.Duration, previousCWND protocol.ByteCount) {
	r.enabled = true
	r.previousRTT = previousRTT
	r.previousCWND = previousCWND
}

// Enabled reports whether careful resume is configured and still active:
// true iff Setup was called and the phase has not reached Normal.
func (r *Resume) Enabled() bool {
	if !r.enabled {
		return false
	}
	return r.phase.Tag() != PhaseNormal
}

// Phase returns the current phase.
func (r *Resume) Phase() Phase { return r.phase }

// Pipesize returns the running accumulator of bytes validated by
// acknowledgments since entering the jump.
func (r *Resume) Pipesize() protocol.ByteCount { return r.pipesize }

// TotalAcked returns the cumulative acknowledged bytes seen by ProcessAck.
// It is read by no other operation here; it exists for observability.
func (r *Resume) TotalAcked() protocol.ByteCount { return r.totalAcked }

// LastTrigger returns the reason for the most recent phase transition, and
// false if no transition has happened yet.
func (r *Resume) LastTrigger() (Trigger, bool) { return r.lastTrigger, r.haveLastTrigger }

// PreviousRTT returns the snapshot RTT passed to Setup.
func (r *Resume) PreviousRTT() time.Duration { return r.previousRTT }

// PreviousCWND returns the snapshot cwnd passed to Setup.
func (r *Resume) PreviousCWND() protocol.ByteCount { return r.previousCWND }

// PersistenceSuppressed reports whether the CR parameters observed on this
// connection should be excluded from any Observer sample the host persists
// for future connections. It latches true on entry to SafeRetreat, since
// congestion mid-jump means this connection's snapshot shouldn't be trusted
// for the next one.
func (r *Resume) PersistenceSuppressed() bool { return r.persistenceSuppressed }

func (r *Resume) changePhase(phase Phase, trigger Trigger) {
	r.phase = phase
	r.lastTrigger = trigger
	r.haveLastTrigger = true
}

// SendPacket is called by the host immediately before or after sending a
// packet. It returns a non-negative increment for the host to add to its
// congestion window.
func (r *Resume) SendPacket(
	rttSample *time.Duration,
	cwnd protocol.ByteCount,
	largestPktSent protocol.PacketNumber,
	appLimited bool,
	iwAcked bool,
) protocol.ByteCount {
	// CR requires that the application has enough offered data, and that
	// the initial window's worth of bytes has already been acknowledged,
	// so an RTT sample exists and conditions are realistic.
	if appLimited || !iwAcked {
		return 0
	}
	if r.phase.Tag() != PhaseReconnaissance {
		return 0
	}

	jump := protocol.SaturatingSub(r.previousCWND/2, cwnd)
	if jump == 0 {
		// The host has already grown past what CR would offer; CR adds no
		// value.
		r.changePhase(Normal(), TriggerCwndLimited)
		return 0
	}

	if rttSample == nil {
		// Don't make any decisions until we have an RTT sample.
		return 0
	}

	if *rttSample <= r.previousRTT/2 || *rttSample >= utils.SaturatingMul(r.previousRTT, 10) {
		r.changePhase(Normal(), TriggerRttNotValidated)
		return 0
	}

	r.pipesize = cwnd
	r.changePhase(Unvalidated(largestPktSent), TriggerCwndLimited)
	return jump
}

// ProcessAck is called for each cumulatively-acked packet. If the first
// returned value is non-nil the host should set its congestion window to
// it; if the second is non-nil the host should set its ssthresh to it.
func (r *Resume) ProcessAck(
	largestPktSent protocol.PacketNumber,
	acked Acked,
	flightsize protocol.ByteCount,
) (newCwnd, newSsthresh *protocol.ByteCount) {
	r.totalAcked += acked.Size

	switch r.phase.Tag() {
	case PhaseUnvalidated:
		r.pipesize += acked.Size
		mark, _ := r.phase.Mark()
		if acked.PacketNumber < mark {
			return nil, nil
		}
		if flightsize <= r.pipesize {
			pipesize := r.pipesize
			r.changePhase(Normal(), TriggerCrMarkAcknowledged)
			return &pipesize, nil
		}
		r.changePhase(Validating(largestPktSent), TriggerCrMarkAcknowledged)
		flight := flightsize
		return &flight, nil

	case PhaseValidating:
		r.pipesize += acked.Size
		mark, _ := r.phase.Mark()
		if acked.PacketNumber >= mark {
			r.changePhase(Normal(), TriggerCrMarkAcknowledged)
		}
		return nil, nil

	case PhaseSafeRetreat:
		mark, _ := r.phase.Mark()
		if acked.PacketNumber >= mark {
			pipesize := r.pipesize
			r.changePhase(Normal(), TriggerExitRecovery)
			return nil, &pipesize
		}
		r.pipesize += acked.Size
		return nil, nil

	default: // Reconnaissance, Normal
		return nil, nil
	}
}

// CongestionEvent is called by the host when classic loss is detected. The
// returned value is a hint for the post-loss congestion-window floor.
func (r *Resume) CongestionEvent(largestPktSent protocol.PacketNumber) protocol.ByteCount {
	return r.congestionEvent(largestPktSent, TriggerPacketLoss)
}

// CongestionEventECN is called by the host when an ECN-CE mark, rather than
// classic loss, signals congestion. It drives the same transitions as
// CongestionEvent but records TriggerEcnCe so trace consumers can
// distinguish the two.
func (r *Resume) CongestionEventECN(largestPktSent protocol.PacketNumber) protocol.ByteCount {
	return r.congestionEvent(largestPktSent, TriggerEcnCe)
}

func (r *Resume) congestionEvent(largestPktSent protocol.PacketNumber, trigger Trigger) protocol.ByteCount {
	switch r.phase.Tag() {
	case PhaseUnvalidated:
		r.persistenceSuppressed = true
		r.changePhase(SafeRetreat(largestPktSent), trigger)
		return r.pipesize / 2

	case PhaseValidating:
		mark, _ := r.phase.Mark()
		r.persistenceSuppressed = true
		// Reuse the original Unvalidated-era tail mark; do not overwrite
		// with largestPktSent.
		r.changePhase(SafeRetreat(mark), trigger)
		return r.pipesize / 2

	case PhaseReconnaissance:
		r.changePhase(Normal(), trigger)
		return 0

	default: // SafeRetreat, Normal
		return 0
	}
}
