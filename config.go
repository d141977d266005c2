// Package cr is careful resume (RFC 9002's successor mechanism, as
// specified by the IETF draft-ietf-quic-careful-resume): given the
// (min_rtt, cwnd) a prior connection to the same path reached, it lets a
// new connection jump its congestion window instead of re-running slow
// start from the initial window, while remaining safe against a path that
// no longer matches the prior snapshot.
//
// cr.Manager is the type a QUIC stack's congestion controller wires in;
// internal/congestion.Resume and internal/congestion.Observer carry the
// actual state machine and sampler.
package cr

import (
	"errors"
	"time"

	"github.com/carefulresume/cr/internal/protocol"
)

// Config configures a Manager. A zero Config is valid and disables careful
// resume entirely.
type Config struct {
	// EnableCarefulResume turns on the careful resume state machine for
	// connections using this Config. It requires PreviousRTT and
	// PreviousCWND to be non-zero, since there is nothing to resume from
	// otherwise.
	EnableCarefulResume bool

	// PreviousRTT is the min_rtt observed by the prior connection to the
	// same path, supplied by the host's persistence layer.
	PreviousRTT time.Duration

	// PreviousCWND is the congestion window the prior connection reached,
	// supplied by the host's persistence layer.
	PreviousCWND protocol.ByteCount

	// InitialWindow is the connection's configured initial congestion
	// window, used as the Observer's 4*InitialWindow gating threshold;
	// Resume does not read it. Defaults to 10
	// maximum-sized datagrams' worth of bytes if zero, mirroring RFC
	// 9002's default initial window.
	InitialWindow protocol.ByteCount

	// EnableMetrics registers a Prometheus collector set for each Manager
	// created with this Config.
	EnableMetrics bool

	// EnableLogging turns on per-connection debug logging of phase
	// transitions to stderr.
	EnableLogging bool
}

const defaultInitialWindow protocol.ByteCount = 14_720 // 10 * 1472, RFC 9002 §7.2's default IW

// validateConfig rejects configurations that enable careful resume without
// the previous-connection parameters it needs to do anything.
func validateConfig(config *Config) error {
	if config == nil || !config.EnableCarefulResume {
		return nil
	}
	if config.PreviousRTT <= 0 {
		return errors.New("careful resume requires a positive PreviousRTT")
	}
	if config.PreviousCWND <= 0 {
		return errors.New("careful resume requires a positive PreviousCWND")
	}
	return nil
}

// populateConfig fills in defaults for a (possibly nil) Config.
func populateConfig(config *Config) *Config {
	if config == nil {
		return &Config{InitialWindow: defaultInitialWindow}
	}
	populated := *config
	if populated.InitialWindow <= 0 {
		populated.InitialWindow = defaultInitialWindow
	}
	return &populated
}
