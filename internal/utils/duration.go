package utils

import "time"

// SaturatingMul multiplies d by n, clamping to time.Duration's max value
// instead of overflowing. time.Duration is an int64 count of nanoseconds,
// so a naive d*n can wrap around for large enough d; this keeps an
// absurd previous-RTT snapshot from panicking or going negative.
func SaturatingMul(d time.Duration, n int64) time.Duration {
	if d == 0 || n == 0 {
		return 0
	}
	const maxDuration = time.Duration(1<<63 - 1)
	if d > maxDuration/time.Duration(n) {
		return maxDuration
	}
	return d * time.Duration(n)
}
