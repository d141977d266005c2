// Command cr-logging demonstrates the phase-transition log output a
// Manager produces when EnableLogging is set.
package main

import (
	"fmt"
	"time"

	"github.com/carefulresume/cr"
	"github.com/carefulresume/cr/internal/congestion"
)

func main() {
	fmt.Println("=== Careful Resume Logging Example ===")

	config := &cr.Config{
		EnableCarefulResume: true,
		PreviousRTT:         50 * time.Millisecond,
		PreviousCWND:        80_000,
		EnableLogging:       true,
	}

	m, err := cr.NewManager("demo-conn", config)
	if err != nil {
		fmt.Printf("configuration rejected: %v\n", err)
		return
	}

	fmt.Printf("PreviousRTT: %s, PreviousCWND: %d\n", config.PreviousRTT, config.PreviousCWND)
	fmt.Println("\nDriving a simulated connection through careful resume...")

	rtt := 55 * time.Millisecond
	jump := m.SendPacket(&rtt, 20_500, 20, false, true)
	cwnd := 20_500 + jump
	m.ProcessAck(20, congestion.Acked{PacketNumber: 19, Size: 2000}, cwnd, 10_000)
	m.ProcessAck(20, congestion.Acked{PacketNumber: 20, Size: 2000}, cwnd, 10_000)

	fmt.Printf("\nFinal phase: %s\n", m.Phase().Tag())
	fmt.Println("=== Example Complete ===")
}
