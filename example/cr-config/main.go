// Command cr-config demonstrates configuring and validating careful
// resume.
package main

import (
	"fmt"
	"time"

	"github.com/carefulresume/cr"
)

func main() {
	fmt.Println("Careful Resume Configuration Examples")

	fmt.Println("\n1. Valid Configuration (enabled with a prior snapshot):")
	valid := &cr.Config{
		EnableCarefulResume: true,
		PreviousRTT:         45 * time.Millisecond,
		PreviousCWND:        120_000,
	}
	if m, err := cr.NewManager("demo-1", valid); err != nil {
		fmt.Printf("   failed: %v\n", err)
	} else {
		fmt.Printf("   ok, enabled=%v phase=%s\n", m.Enabled(), m.Phase().Tag())
	}

	fmt.Println("\n2. Invalid Configuration (enabled without a snapshot):")
	invalid := &cr.Config{EnableCarefulResume: true}
	if _, err := cr.NewManager("demo-2", invalid); err != nil {
		fmt.Printf("   rejected (as expected): %v\n", err)
	} else {
		fmt.Println("   unexpectedly accepted")
	}

	fmt.Println("\n3. Default Configuration (nil):")
	if m, err := cr.NewManager("demo-3", nil); err != nil {
		fmt.Printf("   failed: %v\n", err)
	} else {
		fmt.Printf("   ok, enabled=%v (careful resume is off without a snapshot)\n", m.Enabled())
	}

	fmt.Println("\n4. Disabled but otherwise populated Configuration:")
	disabled := &cr.Config{
		PreviousRTT:  45 * time.Millisecond,
		PreviousCWND: 120_000,
	}
	if m, err := cr.NewManager("demo-4", disabled); err != nil {
		fmt.Printf("   failed: %v\n", err)
	} else {
		fmt.Printf("   ok, enabled=%v\n", m.Enabled())
	}
}
