package testutil

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cleancity/bugbusters/pkg/testutil/internal"
)

// DefaultPollInterval is how often the bounded waits re-check their condition.
const DefaultPollInterval = 200 * time.Millisecond

var (
	// ErrTimeout is returned when a waited-for condition never became true.
	ErrTimeout = errors.New("timed out waiting for condition")
	// ErrNoPage is returned by session operations called before a page exists.
	ErrNoPage = errors.New("no page open")
)

// IsTimeout reports whether err means "condition never became true", either
// from Poll or from a Rod operation whose context deadline expired.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}

// Poll evaluates cond until it reports true or timeout elapses on clock.
// Errors from cond are treated as "not yet" so that a page in the middle of
// navigating does not abort the wait; the last one is kept for the timeout
// message.
func Poll(clock internal.Clock, timeout, interval time.Duration, cond func() (bool, error)) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	deadline := clock.Now().Add(timeout)

	var lastErr error
	for {
		ok, err := cond()
		if err == nil && ok {
			return nil
		}
		if err != nil {
			lastErr = err
		}

		remaining := deadline.Sub(clock.Now())
		if remaining <= 0 {
			break
		}
		clock.Sleep(min(interval, remaining))
	}

	if lastErr != nil {
		return fmt.Errorf("%w (waited %v, last error: %v)", ErrTimeout, timeout, lastErr)
	}
	return fmt.Errorf("%w (waited %v)", ErrTimeout, timeout)
}
