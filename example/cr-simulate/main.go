// Command cr-simulate drives several simulated connections through careful
// resume concurrently. Since the actual packet-sending, loss detection,
// and RTT estimation collaborators careful resume is layered on top of
// aren't part of this module, this simulates their callbacks directly
// against cr.Manager instead of opening real sockets.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/carefulresume/cr"
	"github.com/carefulresume/cr/internal/congestion"
	"github.com/carefulresume/cr/internal/protocol"
)

func main() {
	numConns := flag.Int("conns", 4, "number of simulated connections")
	packetsPerConn := flag.Int("packets", 40, "packets sent per connection")
	rps := flag.Float64("rate", 200, "simulated packets per second, per connection")
	flag.Parse()

	fmt.Printf("[SIM] starting %d simulated careful-resume connections\n", *numConns)

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < *numConns; i++ {
		connID := fmt.Sprintf("sim-%d", i)
		g.Go(func() error {
			return simulateConnection(ctx, connID, *packetsPerConn, *rps)
		})
	}

	if err := g.Wait(); err != nil {
		fmt.Printf("[SIM] a connection failed: %v\n", err)
		return
	}
	fmt.Println("[SIM] all connections finished")
}

func simulateConnection(ctx context.Context, connID string, packets int, rps float64) error {
	config := &cr.Config{
		EnableCarefulResume: true,
		PreviousRTT:         40 * time.Millisecond,
		PreviousCWND:        100_000,
		EnableMetrics:       true,
		EnableLogging:       false,
	}
	m, err := cr.NewManager(connID, config)
	if err != nil {
		return err
	}

	limiter := rate.NewLimiter(rate.Limit(rps), 1)

	const packetSize protocol.ByteCount = 1200

	cwnd := config.PreviousCWND / 8 // start near a typical initial window
	var inflight protocol.ByteCount

	for i := 0; i < packets; i++ {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		pn := protocol.PacketNumber(i)
		rtt := 38*time.Millisecond + time.Duration(rand.Intn(6))*time.Millisecond

		jump := m.SendPacket(&rtt, cwnd, pn, false, true)
		cwnd += jump
		inflight += packetSize

		if newCWND, _ := m.ProcessAck(pn, congestion.Acked{PacketNumber: pn, Size: packetSize}, cwnd, inflight); newCWND != nil {
			cwnd = *newCWND
		}
		inflight -= packetSize

		if sample, ok := m.Sample(rtt, cwnd); ok {
			fmt.Printf("[SIM %s] phase=%s sample min_rtt=%s cwnd=%d\n", connID, m.Phase().Tag(), sample.MinRTT, sample.CWND)
		}
	}

	fmt.Printf("[SIM %s] done: final phase=%s cwnd=%d\n", connID, m.Phase().Tag(), cwnd)
	return nil
}
