// Package self holds full end-to-end careful resume scenarios. Since the
// real packet-scheduling and loss-detection machinery that a live
// connection uses is an enclosing collaborator outside this module's
// scope, these scenarios drive cr.Manager directly with a scripted
// sequence of sends and acks.
package self

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/carefulresume/cr"
	"github.com/carefulresume/cr/internal/congestion"
	"github.com/carefulresume/cr/internal/protocol"
)

// TestValidRTTFullFlow ports the shape of valid_rtt_full_reno: five packets
// sent and acked at a valid RTT enter Unvalidated with a jump, then enough
// further acknowledgments bring the pipesize above the flight size and the
// connection settles into Normal.
func TestValidRTTFullFlow(t *testing.T) {
	m, err := cr.NewManager("valid-rtt-full", &cr.Config{
		EnableCarefulResume: true,
		PreviousRTT:         50 * time.Millisecond,
		PreviousCWND:        80_000,
	})
	require.NoError(t, err)

	var cwnd protocol.ByteCount = 5_000 // five packets in flight before any RTT sample
	for i := protocol.PacketNumber(0); i < 5; i++ {
		jump := m.SendPacket(nil, cwnd, i, false, false)
		require.Equal(t, protocol.ByteCount(0), jump)
	}
	require.Equal(t, congestion.PhaseReconnaissance, m.Phase().Tag())

	rtt := 50 * time.Millisecond
	jump := m.SendPacket(&rtt, cwnd, 4, false, true)
	require.Equal(t, protocol.ByteCount(35_000), jump) // 80_000/2 - 5_000
	cwnd += jump
	require.Equal(t, congestion.PhaseUnvalidated, m.Phase().Tag())

	// Bytes actually in flight stay well below the jumped cwnd; once the
	// mark (packet 4) is acknowledged and pipesize covers the flight, CR
	// settles into Normal.
	const flightSize protocol.ByteCount = 8_000
	var newCWND *protocol.ByteCount
	for i := protocol.PacketNumber(0); i <= 4; i++ {
		newCWND, _ = m.ProcessAck(4, congestion.Acked{PacketNumber: i, Size: 1000}, cwnd, flightSize)
	}
	require.NotNil(t, newCWND)
	require.Equal(t, congestion.PhaseNormal, m.Phase().Tag())
	require.False(t, m.Enabled())
}

// TestInvalidRTTAbortsCR ports invalid_rtt_full: an RTT sample too far from
// the previous connection's snapshot moves straight to Normal without ever
// granting a jump.
func TestInvalidRTTAbortsCR(t *testing.T) {
	m, err := cr.NewManager("invalid-rtt-full", &cr.Config{
		EnableCarefulResume: true,
		PreviousRTT:         50 * time.Millisecond,
		PreviousCWND:        80_000,
	})
	require.NoError(t, err)

	rtt := 600 * time.Millisecond // >= 10x previous RTT
	jump := m.SendPacket(&rtt, 5_000, 0, false, true)
	require.Equal(t, protocol.ByteCount(0), jump)
	require.Equal(t, congestion.PhaseNormal, m.Phase().Tag())
}

// TestCwndLargerThanJumpFull ports cwnd_larger_than_jump_full: the host's
// cwnd has already grown past half the previous cwnd by the time the first
// RTT sample lands, so CR declines to participate.
func TestCwndLargerThanJumpFull(t *testing.T) {
	m, err := cr.NewManager("cwnd-larger-full", &cr.Config{
		EnableCarefulResume: true,
		PreviousRTT:         50 * time.Millisecond,
		PreviousCWND:        80_000,
	})
	require.NoError(t, err)

	rtt := 50 * time.Millisecond
	jump := m.SendPacket(&rtt, 45_000, 0, false, true)
	require.Equal(t, protocol.ByteCount(0), jump)
	require.Equal(t, congestion.PhaseNormal, m.Phase().Tag())
}

// TestPacketLossDuringReconnaissanceFull ports packet_loss_recon_full: a
// loss detected before any RTT sample lands aborts CR immediately.
func TestPacketLossDuringReconnaissanceFull(t *testing.T) {
	m, err := cr.NewManager("loss-recon-full", &cr.Config{
		EnableCarefulResume: true,
		PreviousRTT:         50 * time.Millisecond,
		PreviousCWND:        80_000,
	})
	require.NoError(t, err)

	m.SendPacket(nil, 5_000, 0, false, false)
	require.Equal(t, congestion.PhaseReconnaissance, m.Phase().Tag())

	hint := m.CongestionEvent(3)
	require.Equal(t, protocol.ByteCount(0), hint)
	require.Equal(t, congestion.PhaseNormal, m.Phase().Tag())
}

// TestCongestionDuringValidatingEntersSafeRetreatThenExits ports
// congestion_full/congestion_full_2 and mj_cr_test: congestion mid-jump
// enters SafeRetreat with half the accumulated pipesize as a cwnd floor,
// reuses the jump-era mark rather than the freshly observed packet
// number, and exits back to Normal with a stabilized ssthresh once that
// mark is acknowledged.
func TestCongestionDuringValidatingEntersSafeRetreatThenExits(t *testing.T) {
	m, err := cr.NewManager("safe-retreat-full", &cr.Config{
		EnableCarefulResume: true,
		PreviousRTT:         50 * time.Millisecond,
		PreviousCWND:        80_000,
	})
	require.NoError(t, err)

	rtt := 55 * time.Millisecond
	jump := m.SendPacket(&rtt, 20_000, 10, false, true)
	require.Greater(t, jump, protocol.ByteCount(0))
	require.Equal(t, congestion.PhaseUnvalidated, m.Phase().Tag())
	cwnd := 20_000 + jump

	// Partially validate the jump without clearing it, moving to
	// Validating with a remembered mark of 10.
	newCWND, _ := m.ProcessAck(10, congestion.Acked{PacketNumber: 10, Size: 1000}, cwnd, 100_000)
	require.NotNil(t, newCWND)
	require.Equal(t, congestion.PhaseValidating, m.Phase().Tag())
	mark, ok := m.Phase().Mark()
	require.True(t, ok)
	require.Equal(t, protocol.PacketNumber(10), mark)

	// Congestion is detected against a much later packet number; the
	// SafeRetreat mark must still be 10, not 99.
	hint := m.CongestionEvent(99)
	require.Greater(t, hint, protocol.ByteCount(0))
	require.Equal(t, congestion.PhaseSafeRetreat, m.Phase().Tag())
	mark, ok = m.Phase().Mark()
	require.True(t, ok)
	require.Equal(t, protocol.PacketNumber(10), mark)
	require.True(t, m.Enabled())

	// Acking the remembered mark exits to Normal with a ssthresh hint.
	_, ssthresh := m.ProcessAck(100, congestion.Acked{PacketNumber: 10, Size: 500}, cwnd, 50_000)
	require.NotNil(t, ssthresh)
	require.Equal(t, congestion.PhaseNormal, m.Phase().Tag())
	require.False(t, m.Enabled())
}

// TestObserverGatesBelowFourTimesIW checks that no sample is produced until
// cwnd reaches 4*InitialWindow, even across a full careful-resume run.
func TestObserverGatesBelowFourTimesIW(t *testing.T) {
	m, err := cr.NewManager("observer-gate-full", &cr.Config{InitialWindow: 14_720})
	require.NoError(t, err)

	_, ok := m.Sample(40*time.Millisecond, 14_720*3)
	require.False(t, ok)

	_, ok = m.Sample(40*time.Millisecond, 14_720*4)
	require.True(t, ok)
}
