package stats

import "time"

// Clock supplies the reference time for offline-duration computation.
//
// Production code uses SystemClock. Tests and the CLI's --now flag use a
// fixed instant so that bucket membership is reproducible.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns the same instant.
type FixedClock time.Time

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time {
	return time.Time(c)
}
