package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestState(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		maxRetries   int
		increments   int
		wantCount    int
		wantErr      bool
		wantCanRetry bool
	}{
		"fresh state": {
			maxRetries:   3,
			wantCanRetry: true,
		},
		"below limit": {
			maxRetries:   3,
			increments:   2,
			wantCount:    2,
			wantCanRetry: true,
		},
		"at limit": {
			maxRetries: 3,
			increments: 3,
			wantCount:  3,
		},
		"past limit": {
			maxRetries: 1,
			increments: 2,
			wantCount:  1,
			wantErr:    true,
		},
		"no retries allowed": {
			maxRetries: 0,
			increments: 1,
			wantErr:    true,
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			s := NewState("star-rating", tc.maxRetries)
			var err error
			for i := 0; i < tc.increments; i++ {
				err = s.Increment()
			}

			assert.Equal(t, tc.wantCount, s.Count)
			assert.Equal(t, tc.wantCanRetry, s.CanRetry())
			if tc.wantErr {
				var exhausted *ExhaustedError
				require.ErrorAs(t, err, &exhausted)
				assert.Equal(t, 2, exhausted.ExitCode())
				assert.Contains(t, err.Error(), "star-rating")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestState_Reset(t *testing.T) {
	t.Parallel()

	s := NewState("k", 2)
	require.NoError(t, s.Increment())
	assert.False(t, s.LastAttempt.IsZero())

	s.Reset()
	assert.Equal(t, 0, s.Count)
	assert.True(t, s.LastAttempt.IsZero())
}

func TestPolicy_Backoff(t *testing.T) {
	t.Parallel()

	p := Policy{InitialBackoff: 100 * time.Millisecond, MaxBackoff: time.Second}

	tests := map[string]struct {
		n    int
		want time.Duration
	}{
		"first retry":  {n: 1, want: 100 * time.Millisecond},
		"second retry": {n: 2, want: 200 * time.Millisecond},
		"third retry":  {n: 3, want: 400 * time.Millisecond},
		"capped":       {n: 10, want: time.Second},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, p.Backoff(tc.n))
		})
	}

	assert.Equal(t, time.Duration(0), Policy{}.Backoff(3))
	assert.Equal(t, 300*time.Millisecond, Policy{InitialBackoff: 100 * time.Millisecond, Multiplier: 3}.Backoff(2))
}

var errTransient = errors.New("transient")

func TestDo(t *testing.T) {
	t.Parallel()

	errFatal := errors.New("fatal")

	tests := map[string]struct {
		maxRetries   int
		results      []error
		wantCalls    int
		wantErr      error
		wantExhausts bool
	}{
		"first attempt succeeds": {
			maxRetries: 3,
			results:    []error{nil},
			wantCalls:  1,
		},
		"succeeds after retries": {
			maxRetries: 3,
			results:    []error{errTransient, errTransient, nil},
			wantCalls:  3,
		},
		"non retryable stops": {
			maxRetries: 3,
			results:    []error{errTransient, errFatal},
			wantCalls:  2,
			wantErr:    errFatal,
		},
		"exhausted": {
			maxRetries:   2,
			results:      []error{errTransient, errTransient, errTransient},
			wantCalls:    3,
			wantErr:      errTransient,
			wantExhausts: true,
		},
		"no retries": {
			maxRetries:   0,
			results:      []error{errTransient},
			wantCalls:    1,
			wantErr:      errTransient,
			wantExhausts: true,
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var attempts []int
			var retries int
			p := Policy{
				MaxRetries: tc.maxRetries,
				Retryable:  func(err error) bool { return errors.Is(err, errTransient) },
				OnRetry:    func(int, time.Duration, error) { retries++ },
			}

			err := Do(context.Background(), "key", p, func(_ context.Context, attempt int) error {
				attempts = append(attempts, attempt)
				return tc.results[len(attempts)-1]
			})

			assert.Len(t, attempts, tc.wantCalls)
			for i, a := range attempts {
				assert.Equal(t, i+1, a)
			}
			assert.Equal(t, tc.wantCalls-1, retries)

			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)

			var exhausted *ExhaustedError
			assert.Equal(t, tc.wantExhausts, errors.As(err, &exhausted))
			if tc.wantExhausts {
				assert.Equal(t, tc.wantCalls, exhausted.Attempts())
			}
		})
	}
}

func TestDo_CancelDuringBackoff(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{
		MaxRetries:     5,
		InitialBackoff: time.Hour,
		OnRetry:        func(int, time.Duration, error) { cancel() },
	}

	calls := 0
	err := Do(ctx, "key", p, func(context.Context, int) error {
		calls++
		return errTransient
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDo_CancelledBeforeStart(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := Do(ctx, "key", Policy{MaxRetries: 1}, func(context.Context, int) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
