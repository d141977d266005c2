// Package utils holds small, widely shared helpers: the Clock abstraction
// used so the Observer's wall-clock gating can be driven deterministically
// in tests, and the saturating duration multiply the resume state machine
// leans on.
package utils

import "github.com/carefulresume/cr/internal/monotime"

//go:generate go run go.uber.org/mock/mockgen -destination mock_clock_test.go -package utils . Clock

// Clock abstracts wall-clock reads so callers can substitute a deterministic
// clock in tests instead of monotime.Now.
type Clock interface {
	Now() monotime.Time
}

// RealClock is the production Clock, backed by monotime.Now.
type RealClock struct{}

// Now returns the current monotonic instant.
func (RealClock) Now() monotime.Time {
	return monotime.Now()
}
