package retry

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	invalidMaxAttemptsTemplateConstant       = "%w: max attempts must be at least 1, got %d"
	invalidInitialDelayTemplateConstant      = "%w: initial delay must not be negative, got %s"
	invalidBackoffMultiplierTemplateConstant = "%w: backoff multiplier must be at least 1, got %g"
	invalidMaxSingleDelayTemplateConstant    = "%w: max single delay must not be negative, got %s"
	invalidPolicyMessageConstant             = "invalid retry policy"
)

// ErrInvalidPolicy matches every Policy validation failure.
var ErrInvalidPolicy = errors.New(invalidPolicyMessageConstant)

// Policy describes how many times an operation is attempted and how long to wait between attempts.
type Policy struct {
	MaxAttempts       int
	InitialDelay      time.Duration
	BackoffMultiplier float64
	// MaxSingleDelay caps each computed delay; zero leaves delays unbounded.
	MaxSingleDelay time.Duration
	Label          string
}

// Validate reports the first constraint the policy violates.
func (policy Policy) Validate() error {
	switch {
	case policy.MaxAttempts < 1:
		return fmt.Errorf(invalidMaxAttemptsTemplateConstant, ErrInvalidPolicy, policy.MaxAttempts)
	case policy.InitialDelay < 0:
		return fmt.Errorf(invalidInitialDelayTemplateConstant, ErrInvalidPolicy, policy.InitialDelay)
	case math.IsNaN(policy.BackoffMultiplier) || policy.BackoffMultiplier < 1:
		return fmt.Errorf(invalidBackoffMultiplierTemplateConstant, ErrInvalidPolicy, policy.BackoffMultiplier)
	case policy.MaxSingleDelay < 0:
		return fmt.Errorf(invalidMaxSingleDelayTemplateConstant, ErrInvalidPolicy, policy.MaxSingleDelay)
	}
	return nil
}

// Delay returns the wait after the failed attempt with zero-based index attemptIndex:
// InitialDelay * BackoffMultiplier^attemptIndex, capped by MaxSingleDelay when set.
func (policy Policy) Delay(attemptIndex int) time.Duration {
	if policy.InitialDelay <= 0 || attemptIndex < 0 {
		return 0
	}

	scaledDelay := float64(policy.InitialDelay) * math.Pow(policy.BackoffMultiplier, float64(attemptIndex))
	if policy.MaxSingleDelay > 0 && scaledDelay > float64(policy.MaxSingleDelay) {
		return policy.MaxSingleDelay
	}
	if scaledDelay >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(scaledDelay)
}
