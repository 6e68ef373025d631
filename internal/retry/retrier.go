package retry

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

const (
	retryMessageTemplateConstant = "Retrying %q after %.2fs (%d of %d) due to: %v"
	logFieldLabelConstant        = "label"
	logFieldAttemptConstant      = "attempt"
	logFieldMaxAttemptsConstant  = "max_attempts"
	logFieldDelayConstant        = "delay"
)

// Retrier runs operations under a Policy, logging every retried failure.
type Retrier struct {
	logger  *zap.Logger
	sleeper Sleeper
}

// RetrierOption customizes a Retrier.
type RetrierOption func(*Retrier)

// WithSleeper replaces the timer-based sleeper.
func WithSleeper(sleeper Sleeper) RetrierOption {
	return func(retrier *Retrier) {
		if sleeper != nil {
			retrier.sleeper = sleeper
		}
	}
}

// NewRetrier constructs a Retrier. A nil logger discards retry messages.
func NewRetrier(logger *zap.Logger, options ...RetrierOption) *Retrier {
	if logger == nil {
		logger = zap.NewNop()
	}
	retrier := &Retrier{logger: logger, sleeper: TimerSleeper{}}
	for _, option := range options {
		if option != nil {
			option(retrier)
		}
	}
	return retrier
}

// Run is Do for operations without a result value.
func (retrier *Retrier) Run(executionContext context.Context, policy Policy, operation func(context.Context) error) error {
	_, runError := Do(executionContext, retrier, policy, func(operationContext context.Context) (struct{}, error) {
		return struct{}{}, operation(operationContext)
	})
	return runError
}

// Do calls operation until it succeeds or policy.MaxAttempts attempts have been made. Attempts are
// strictly sequential. Every failure but the last is logged and followed by the policy delay; the
// final attempt's result and error are returned as is. A context that ends during a delay stops the
// loop with the context error.
func Do[T any](executionContext context.Context, retrier *Retrier, policy Policy, operation func(context.Context) (T, error)) (T, error) {
	var zeroValue T
	if validationError := policy.Validate(); validationError != nil {
		return zeroValue, validationError
	}
	if retrier == nil {
		retrier = NewRetrier(nil)
	}

	for attemptIndex := 0; attemptIndex < policy.MaxAttempts-1; attemptIndex++ {
		result, operationError := operation(executionContext)
		if operationError == nil {
			return result, nil
		}

		delay := policy.Delay(attemptIndex)
		retrier.logger.Warn(
			fmt.Sprintf(retryMessageTemplateConstant, policy.Label, delay.Seconds(), attemptIndex+1, policy.MaxAttempts, operationError),
			zap.String(logFieldLabelConstant, policy.Label),
			zap.Int(logFieldAttemptConstant, attemptIndex+1),
			zap.Int(logFieldMaxAttemptsConstant, policy.MaxAttempts),
			zap.Duration(logFieldDelayConstant, delay),
			zap.Error(operationError),
		)

		if sleepError := retrier.sleeper.Sleep(executionContext, delay); sleepError != nil {
			return zeroValue, sleepError
		}
	}

	return operation(executionContext)
}
