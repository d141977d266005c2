// Package logging provides debug-output helpers for careful resume: a
// small *log.Logger wrapper, enabled per connection, printing one line
// per event.
package logging

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/carefulresume/cr/internal/congestion"
	"github.com/carefulresume/cr/internal/protocol"
	"github.com/carefulresume/cr/qlog"
)

// CRLogger provides debugging output for careful resume phase transitions.
type CRLogger struct {
	logger     *log.Logger
	enabled    bool
	connection string
}

// NewCRLogger creates a new careful-resume logger for connectionID. Calls
// are no-ops when enabled is false, so callers can construct one
// unconditionally and let the flag gate it.
func NewCRLogger(connectionID string, enabled bool) *CRLogger {
	return &CRLogger{
		logger:     log.New(os.Stderr, fmt.Sprintf("[CarefulResume:%s] ", connectionID), log.LstdFlags|log.Lmicroseconds),
		enabled:    enabled,
		connection: connectionID,
	}
}

// LogPhaseChange logs a phase transition event as produced by
// qlog.Recorder.MaybeEmit. A nil ev is ignored.
func (c *CRLogger) LogPhaseChange(ev *qlog.CarefulResumePhaseUpdated) {
	if !c.enabled || ev == nil {
		return
	}
	old := "none"
	if ev.Old != nil {
		old = string(*ev.Old)
	}
	c.logger.Printf("phase %s -> %s (trigger=%s pipesize=%d cr_mark=%d cwnd=%d ssthresh=%d)",
		old, ev.New, ev.Trigger, ev.State.Pipesize, ev.State.CRMark, ev.State.CWND, ev.State.Ssthresh)
}

// LogJump logs the congestion window jump granted on entering Unvalidated.
func (c *CRLogger) LogJump(jump protocol.ByteCount, previousRTT time.Duration, previousCWND protocol.ByteCount) {
	if !c.enabled {
		return
	}
	c.logger.Printf("jump granted: %d bytes (previous_rtt=%s previous_cwnd=%d)", jump, previousRTT, previousCWND)
}

// LogSafeRetreat logs entry into the safe retreat phase.
func (c *CRLogger) LogSafeRetreat(trigger congestion.Trigger, hint protocol.ByteCount) {
	if !c.enabled {
		return
	}
	c.logger.Printf("safe retreat entered (%s): cwnd set to %d", trigger, hint)
}

// LogSample logs an observer sample accepted for persistence.
func (c *CRLogger) LogSample(sample congestion.Sample) {
	if !c.enabled {
		return
	}
	c.logger.Printf("sample recorded: min_rtt=%s cwnd=%d", sample.MinRTT, sample.CWND)
}

// CreateResumeConnectionTracer wires up a CRLogger for connectionID and
// returns it, or nil when enabled is false, so callers can treat a
// disabled tracer as a no-op by checking for nil before dereferencing.
func CreateResumeConnectionTracer(connectionID string, enabled bool) *CRLogger {
	if !enabled {
		return nil
	}
	return NewCRLogger(connectionID, true)
}
