// Package internal provides the time source behind the polling waits.
package internal

import "time"

// Clock is an interface for obtaining monotonic time and pausing between
// polls. This abstraction allows for deterministic testing of the waits.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// MonotonicClock is a Clock implementation that uses the system's monotonic clock.
type MonotonicClock struct{}

// Now returns the current system time with monotonic clock reading.
func (MonotonicClock) Now() time.Time {
	return time.Now()
}

// Sleep pauses the calling goroutine.
func (MonotonicClock) Sleep(d time.Duration) {
	time.Sleep(d)
}

// MockClock is a Clock implementation for testing that allows manual control
// of time progression. Sleep advances the clock instead of blocking.
// It is not safe for concurrent use.
type MockClock struct {
	current time.Time
	sleeps  int
}

// NewMockClock creates a new MockClock initialized to the given time.
// If t is zero, it initializes to a reasonable default start time.
func NewMockClock(t time.Time) *MockClock {
	if t.IsZero() {
		t = time.Unix(1000000000, 0) // 2001-09-09
	}
	return &MockClock{current: t}
}

// Now returns the mock clock's current time.
func (m *MockClock) Now() time.Time {
	return m.current
}

// Sleep advances the clock by d without blocking.
func (m *MockClock) Sleep(d time.Duration) {
	m.sleeps++
	m.Advance(d)
}

// Sleeps returns how many times Sleep was called.
func (m *MockClock) Sleeps() int {
	return m.sleeps
}

// Advance moves the clock forward by the given duration.
// Panics if d is negative to maintain monotonicity.
func (m *MockClock) Advance(d time.Duration) {
	if d < 0 {
		panic("MockClock.Advance: duration must be non-negative")
	}
	m.current = m.current.Add(d)
}
