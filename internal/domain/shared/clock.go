package shared

import "time"

// Clock abstracts wall-clock time so time-dependent logic (identifier
// date prefixes, cache expiry) can be tested with fixed timestamps.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real system time.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns the same instant. Intended for tests.
type FixedClock struct {
	T time.Time
}

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time {
	return c.T
}
