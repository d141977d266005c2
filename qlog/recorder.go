package qlog

import (
	"time"

	"github.com/carefulresume/cr/internal/congestion"
	"github.com/carefulresume/cr/internal/protocol"
)

// Recorder is a small sidecar type that remembers only the last-emitted
// phase tag and diffs it against the Resume's current phase on each call.
// An event is emitted only when the phase tag itself changes, never when
// only the mark within a phase changes.
type Recorder struct {
	resume  *congestion.Resume
	emitted bool
	lastTag congestion.PhaseTag
}

// NewRecorder wraps resume with a Recorder that has not yet emitted
// anything.
func NewRecorder(resume *congestion.Resume) *Recorder {
	return &Recorder{resume: resume}
}

// MaybeEmit compares the Resume's current phase tag against the last one
// this Recorder emitted and, if it has changed, returns the corresponding
// CarefulResumePhaseUpdated event. The host is expected to call this after
// any of Resume's three hooks.
func (rec *Recorder) MaybeEmit(cwnd, ssthresh protocol.ByteCount) *CarefulResumePhaseUpdated {
	phase := rec.resume.Phase()
	if rec.emitted && phase.Tag() == rec.lastTag {
		return nil
	}

	var old *Phase
	if rec.emitted {
		p := mapPhase(rec.lastTag)
		old = &p
	}

	var crMark protocol.PacketNumber
	if mark, ok := phase.Mark(); ok {
		crMark = mark
	}

	var trigger Trigger
	if t, ok := rec.resume.LastTrigger(); ok {
		trigger = mapTrigger(t)
	}

	var restored *RestoredParameters
	previousRTT := rec.resume.PreviousRTT()
	previousCWND := rec.resume.PreviousCWND()
	if previousRTT != 0 || previousCWND != 0 {
		restored = &RestoredParameters{
			PreviousCWND:  previousCWND,
			PreviousRTTMs: float64(previousRTT) / float64(time.Millisecond),
		}
	}

	rec.emitted = true
	rec.lastTag = phase.Tag()

	return &CarefulResumePhaseUpdated{
		Old: old,
		New: mapPhase(phase.Tag()),
		State: StateParameters{
			Pipesize: rec.resume.Pipesize(),
			CRMark:   crMark,
			CWND:     cwnd,
			Ssthresh: ssthresh,
		},
		Restored: restored,
		Trigger:  trigger,
	}
}
