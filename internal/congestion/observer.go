package congestion

import (
	"time"

	"github.com/carefulresume/cr/internal/monotime"
	"github.com/carefulresume/cr/internal/protocol"
	"github.com/carefulresume/cr/internal/utils"
)

// cREventMaximumGap is the "too long" cutoff after which Observer emits
// unconditionally.
const cREventMaximumGap = 60 * time.Second

// Sample is a (min_rtt, cwnd) pair suitable for persisting as the
// "previous connection" input of a future Resume.Setup call.
type Sample struct {
	MinRTT time.Duration
	CWND   protocol.ByteCount
}

// Observer samples a stable (min_rtt, cwnd) pair for future connections. It
// is the only place where cross-connection state is produced.
// The zero value is not usable; construct with NewObserver.
type Observer struct {
	traceID string
	iw      protocol.ByteCount
	clock   utils.Clock

	minRTT     time.Duration
	cwnd       protocol.ByteCount
	lastUpdate monotime.Time
}

// NewObserver creates an Observer for one connection, gated by the host's
// initial window: samples require cwnd >= 4*iw.
func NewObserver(traceID string, iw protocol.ByteCount) *Observer {
	return newObserverWithClock(traceID, iw, utils.RealClock{})
}

func newObserverWithClock(traceID string, iw protocol.ByteCount, clock utils.Clock) *Observer {
	return &Observer{
		traceID: traceID,
		iw:      iw,
		clock:   clock,
	}
}

// MaybeUpdate reports whether (newMinRTT, newCWND) constitutes a new stable
// sample worth persisting, per a shrinking-tolerance-band rule: right after
// an emission the band is wide and narrows as time passes, so small but
// persistent drift eventually promotes a sample. When it does, the stored
// sample is updated and returned; otherwise it returns (Sample{}, false).
func (o *Observer) MaybeUpdate(newMinRTT time.Duration, newCWND protocol.ByteCount) (Sample, bool) {
	if newCWND < o.iw*4 {
		return Sample{}, false
	}

	now := o.clock.Now()
	var elapsed time.Duration
	if !o.lastUpdate.IsZero() {
		elapsed = now.Sub(o.lastUpdate)
	} else {
		// First sample: treat as "maximum gap elapsed" so it always emits.
		elapsed = cREventMaximumGap + 1
	}

	shouldUpdate := false
	switch {
	case elapsed > cREventMaximumGap:
		shouldUpdate = true
	default:
		secsSinceLastUpdate := elapsed.Seconds()
		if secsSinceLastUpdate == 0 {
			shouldUpdate = false
		} else {
			rnge := 1.0 / secsSinceLastUpdate

			minRTTMicros := float64(o.minRTT.Microseconds())
			spread := minRTTMicros * rnge
			rttMin := minRTTMicros - spread
			rttMax := minRTTMicros + spread

			cwnd := float64(o.cwnd)
			cwndSpread := cwnd * rnge
			cwndMin := cwnd - cwndSpread
			cwndMax := cwnd + cwndSpread

			newMinRTTMicros := float64(newMinRTT.Microseconds())
			newCWNDFloat := float64(newCWND)

			shouldUpdate = newMinRTTMicros < rttMin || newMinRTTMicros > rttMax ||
				newCWNDFloat < cwndMin || newCWNDFloat > cwndMax
		}
	}

	if !shouldUpdate {
		return Sample{}, false
	}

	o.minRTT = newMinRTT
	o.cwnd = newCWND
	o.lastUpdate = now

	return Sample{MinRTT: newMinRTT, CWND: newCWND}, true
}
