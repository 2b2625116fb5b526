package retry

import (
	"context"
	"fmt"
	"time"
)

const (
	defaultMaxAttemptsConstant          = 3
	defaultDelayConstant                = 2 * time.Second
	exhaustedErrorTemplateConstant      = "%s failed after %d attempts: %s"
	exhaustedErrorShortTemplateConstant = "%s failed after %d attempts"
)

// Operation is a single retryable unit of work.
type Operation func(executionContext context.Context) error

// SleepFunc pauses between attempts and honors context cancellation.
type SleepFunc func(executionContext context.Context, pauseDuration time.Duration) error

// ExhaustedError reports that an operation failed on every allowed attempt.
//
// Only the final attempt's error is retained; intermediate failures are
// intentionally discarded since the aggregate outcome is what gets reported.
type ExhaustedError struct {
	OperationLabel string
	Attempts       int
	Cause          error
}

// Error describes the exhausted retry sequence.
func (exhaustedError ExhaustedError) Error() string {
	if exhaustedError.Cause == nil {
		return fmt.Sprintf(exhaustedErrorShortTemplateConstant, exhaustedError.OperationLabel, exhaustedError.Attempts)
	}
	return fmt.Sprintf(exhaustedErrorTemplateConstant, exhaustedError.OperationLabel, exhaustedError.Attempts, exhaustedError.Cause)
}

// Unwrap exposes the final attempt's error.
func (exhaustedError ExhaustedError) Unwrap() error {
	return exhaustedError.Cause
}

// Policy retries an operation a bounded number of times with a fixed pause.
//
// The pause is deliberately constant rather than exponential: attempt counts
// are small and the policy guards interactive tooling against transient
// network failures, not a high-volume service against overload.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	Sleep       SleepFunc
}

// NewPolicy constructs a Policy with the default attempt count and delay.
func NewPolicy() Policy {
	return Policy{MaxAttempts: defaultMaxAttemptsConstant, Delay: defaultDelayConstant}
}

// Run executes the operation until it succeeds or attempts are exhausted.
func (policy Policy) Run(executionContext context.Context, operationLabel string, operation Operation) error {
	maxAttempts := policy.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttemptsConstant
	}

	sleepBetweenAttempts := policy.Sleep
	if sleepBetweenAttempts == nil {
		sleepBetweenAttempts = contextAwareSleep
	}

	var lastAttemptError error
	for attemptNumber := 1; attemptNumber <= maxAttempts; attemptNumber++ {
		lastAttemptError = operation(executionContext)
		if lastAttemptError == nil {
			return nil
		}

		if attemptNumber == maxAttempts {
			break
		}

		if sleepError := sleepBetweenAttempts(executionContext, policy.Delay); sleepError != nil {
			return sleepError
		}
	}

	return ExhaustedError{OperationLabel: operationLabel, Attempts: maxAttempts, Cause: lastAttemptError}
}

func contextAwareSleep(executionContext context.Context, pauseDuration time.Duration) error {
	if pauseDuration <= 0 {
		return nil
	}

	pauseTimer := time.NewTimer(pauseDuration)
	defer pauseTimer.Stop()

	select {
	case <-executionContext.Done():
		return executionContext.Err()
	case <-pauseTimer.C:
		return nil
	}
}
