package retry

import (
	"context"
	"time"
)

// Sleeper suspends the caller between attempts.
type Sleeper interface {
	Sleep(executionContext context.Context, delay time.Duration) error
}

// TimerSleeper waits on a timer and returns early with the context error when the context ends.
type TimerSleeper struct{}

// Sleep blocks for delay or until executionContext is done.
func (TimerSleeper) Sleep(executionContext context.Context, delay time.Duration) error {
	if delay <= 0 {
		return executionContext.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-executionContext.Done():
		return executionContext.Err()
	}
}
