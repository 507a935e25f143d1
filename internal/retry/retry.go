// Package retry bounds how often an untrusted generation is re-attempted.
// State tracks attempts for one key; Do runs an operation under a Policy
// with exponential backoff and stops on the first non-retryable error.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// State tracks retry attempts for one key, such as a capability id.
type State struct {
	Key         string
	Count       int
	LastAttempt time.Time
	MaxRetries  int
}

// NewState returns a fresh state allowing maxRetries retries.
func NewState(key string, maxRetries int) *State {
	return &State{Key: key, MaxRetries: maxRetries}
}

// CanRetry returns true if more retries are allowed
func (s *State) CanRetry() bool {
	return s.Count < s.MaxRetries
}

// Increment increments the retry count and updates the timestamp.
// Returns an ExhaustedError if max retries are exceeded.
func (s *State) Increment() error {
	if !s.CanRetry() {
		return &ExhaustedError{Key: s.Key, Count: s.Count, MaxRetries: s.MaxRetries}
	}
	s.Count++
	s.LastAttempt = time.Now()
	return nil
}

// Reset resets the retry count and clears the timestamp
func (s *State) Reset() {
	s.Count = 0
	s.LastAttempt = time.Time{}
}

// ExhaustedError indicates the retry limit has been reached.
type ExhaustedError struct {
	Key        string
	Count      int
	MaxRetries int
	// Last is the error of the final attempt.
	Last error
}

func (e *ExhaustedError) Error() string {
	msg := fmt.Sprintf("retry limit exhausted for %s (%d/%d retries)", e.Key, e.Count, e.MaxRetries)
	if e.Last != nil {
		msg += ": " + e.Last.Error()
	}
	return msg
}

// Unwrap returns the last attempt's error.
func (e *ExhaustedError) Unwrap() error { return e.Last }

// ExitCode returns the exit code for retry exhausted (2)
func (e *ExhaustedError) ExitCode() int {
	return 2
}

// Attempts returns the number of attempts made, the first one included.
func (e *ExhaustedError) Attempts() int { return e.Count + 1 }

// Policy configures Do.
type Policy struct {
	// MaxRetries is the number of attempts after the first.
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	// Multiplier defaults to 2.
	Multiplier float64
	// Retryable decides whether an error is worth another attempt.
	// A nil Retryable retries every error.
	Retryable func(error) bool
	// OnRetry, when set, is called before each backoff sleep.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// Backoff returns the delay before retry number n (1-based).
func (p Policy) Backoff(n int) time.Duration {
	if p.InitialBackoff <= 0 {
		return 0
	}
	mult := p.Multiplier
	if mult < 1 {
		mult = 2
	}
	d := float64(p.InitialBackoff)
	for i := 1; i < n; i++ {
		d *= mult
		if p.MaxBackoff > 0 && d >= float64(p.MaxBackoff) {
			return p.MaxBackoff
		}
	}
	if p.MaxBackoff > 0 && time.Duration(d) > p.MaxBackoff {
		return p.MaxBackoff
	}
	return time.Duration(d)
}

// Do calls fn until it succeeds, returns a non-retryable error, or the
// policy's retries run out, in which case an *ExhaustedError wrapping the
// last error is returned. attempt starts at 1. Context cancellation stops
// the loop between attempts.
func Do(ctx context.Context, key string, p Policy, fn func(ctx context.Context, attempt int) error) error {
	state := NewState(key, p.MaxRetries)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx, state.Count+1)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		if incErr := state.Increment(); incErr != nil {
			var exhausted *ExhaustedError
			if errors.As(incErr, &exhausted) {
				exhausted.Last = err
			}
			return incErr
		}

		delay := p.Backoff(state.Count)
		if p.OnRetry != nil {
			p.OnRetry(state.Count, delay, err)
		}
		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
