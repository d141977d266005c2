// Package qlog defines the structured trace-event shape for careful resume
// phase transitions and a Recorder that emits one only when the phase tag
// actually changes. Fields that are absent rather than zero-valued use
// `omitempty` over plain encoding/json.
package qlog

import (
	"github.com/carefulresume/cr/internal/congestion"
	"github.com/carefulresume/cr/internal/protocol"
)

// Phase is the snake_case wire representation of congestion.PhaseTag.
type Phase string

const (
	PhaseReconnaissance Phase = "reconnaissance"
	PhaseUnvalidated    Phase = "unvalidated"
	PhaseValidating     Phase = "validating"
	PhaseNormal         Phase = "normal"
	PhaseSafeRetreat    Phase = "safe_retreat"
)

func mapPhase(tag congestion.PhaseTag) Phase {
	switch tag {
	case congestion.PhaseReconnaissance:
		return PhaseReconnaissance
	case congestion.PhaseUnvalidated:
		return PhaseUnvalidated
	case congestion.PhaseValidating:
		return PhaseValidating
	case congestion.PhaseSafeRetreat:
		return PhaseSafeRetreat
	default:
		return PhaseNormal
	}
}

// Trigger is the snake_case wire representation of congestion.Trigger.
type Trigger string

const (
	TriggerPacketLoss         Trigger = "packet_loss"
	TriggerCwndLimited        Trigger = "cwnd_limited"
	TriggerCrMarkAcknowledged Trigger = "cr_mark_acknowledged"
	TriggerRttNotValidated    Trigger = "rtt_not_validated"
	TriggerEcnCe              Trigger = "ecn_ce"
	TriggerExitRecovery       Trigger = "exit_recovery"
)

func mapTrigger(t congestion.Trigger) Trigger {
	switch t {
	case congestion.TriggerPacketLoss:
		return TriggerPacketLoss
	case congestion.TriggerCwndLimited:
		return TriggerCwndLimited
	case congestion.TriggerCrMarkAcknowledged:
		return TriggerCrMarkAcknowledged
	case congestion.TriggerRttNotValidated:
		return TriggerRttNotValidated
	case congestion.TriggerEcnCe:
		return TriggerEcnCe
	default:
		return TriggerExitRecovery
	}
}

// StateParameters is the { pipesize, cr_mark, cwnd, ssthresh } snapshot
// taken at a phase transition.
type StateParameters struct {
	Pipesize protocol.ByteCount    `json:"pipesize"`
	CRMark   protocol.PacketNumber `json:"cr_mark"`
	CWND     protocol.ByteCount    `json:"cwnd"`
	Ssthresh protocol.ByteCount    `json:"ssthresh"`
}

// RestoredParameters is the previous connection's snapshot, present only
// when either value is non-zero.
type RestoredParameters struct {
	PreviousCWND  protocol.ByteCount `json:"previous_cwnd"`
	PreviousRTTMs float64            `json:"previous_rtt_ms"`
}

// CarefulResumePhaseUpdated is the one trace event this module emits: a
// phase transition, with Old being absent on the very first emission.
type CarefulResumePhaseUpdated struct {
	Old      *Phase              `json:"old,omitempty"`
	New      Phase               `json:"new"`
	State    StateParameters     `json:"state"`
	Restored *RestoredParameters `json:"restored,omitempty"`
	Trigger  Trigger             `json:"trigger"`
}
