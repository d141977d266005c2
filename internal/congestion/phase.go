package congestion

import "github.com/carefulresume/cr/internal/protocol"

// PhaseTag identifies which of the five careful resume phases a Resume
// instance is in. See Phase for the tagged-union type that additionally
// carries the packet-number mark for the three phases that need one.
type PhaseTag uint8

const (
	// PhaseReconnaissance is the initial phase: probing whether the path
	// still matches the prior connection's snapshot.
	PhaseReconnaissance PhaseTag = iota
	// PhaseUnvalidated is entered once the jump has been applied to cwnd.
	PhaseUnvalidated
	// PhaseValidating is entered when the jump was partly acknowledged but
	// the flight still exceeds pipesize.
	PhaseValidating
	// PhaseSafeRetreat is entered when congestion was detected during the
	// jump.
	PhaseSafeRetreat
	// PhaseNormal is terminal: careful resume is no longer active.
	PhaseNormal
)

// String returns the snake_case serialization used in trace events.
func (t PhaseTag) String() string {
	switch t {
	case PhaseReconnaissance:
		return "reconnaissance"
	case PhaseUnvalidated:
		return "unvalidated"
	case PhaseValidating:
		return "validating"
	case PhaseSafeRetreat:
		return "safe_retreat"
	case PhaseNormal:
		return "normal"
	default:
		return "unknown"
	}
}

// Phase is a tagged union over the five careful resume states, three of
// which carry a packet-number mark. Keeping the mark bound inside the
// variant, rather than a flat status int plus a sidecar mark field, is what
// makes transitions safe to get right: Validating's mark must be threaded
// through from Unvalidated, not recomputed, when congestion pushes it into
// SafeRetreat.
type Phase struct {
	tag  PhaseTag
	mark protocol.PacketNumber
}

// Reconnaissance constructs the initial phase.
func Reconnaissance() Phase { return Phase{tag: PhaseReconnaissance} }

// Unvalidated constructs the Unvalidated phase, marked with the first
// packet number sent while in it.
func Unvalidated(firstPkt protocol.PacketNumber) Phase {
	return Phase{tag: PhaseUnvalidated, mark: firstPkt}
}

// Validating constructs the Validating phase, marked with the last packet
// number sent during the preceding Unvalidated phase.
func Validating(lastPkt protocol.PacketNumber) Phase {
	return Phase{tag: PhaseValidating, mark: lastPkt}
}

// SafeRetreat constructs the SafeRetreat phase, marked with the packet
// number bounding the tail of the jump still to be drained.
func SafeRetreat(lastPkt protocol.PacketNumber) Phase {
	return Phase{tag: PhaseSafeRetreat, mark: lastPkt}
}

// Normal constructs the terminal phase.
func Normal() Phase { return Phase{tag: PhaseNormal} }

// Tag returns the phase's variant tag.
func (p Phase) Tag() PhaseTag { return p.tag }

// Mark returns the packet-number mark and true for Unvalidated, Validating,
// and SafeRetreat; for Reconnaissance and Normal it returns
// (protocol.InvalidPacketNumber, false).
func (p Phase) Mark() (protocol.PacketNumber, bool) {
	switch p.tag {
	case PhaseUnvalidated, PhaseValidating, PhaseSafeRetreat:
		return p.mark, true
	default:
		return protocol.InvalidPacketNumber, false
	}
}

// String returns the phase's snake_case tag, ignoring the mark.
func (p Phase) String() string { return p.tag.String() }
