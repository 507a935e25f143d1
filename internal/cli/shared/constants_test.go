package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type codedError struct{ code int }

func (e codedError) Error() string { return "coded" }
func (e codedError) ExitCode() int { return e.code }

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err  error
		want int
	}{
		"nil":           {err: nil, want: ExitSuccess},
		"exit error":    {err: NewExitError(ExitInvalidArguments), want: ExitInvalidArguments},
		"wrapped exit":  {err: fmt.Errorf("run: %w", NewExitError(ExitTimeout)), want: ExitTimeout},
		"self-coded":    {err: codedError{code: ExitRetryLimitReached}, want: ExitRetryLimitReached},
		"wrapped coded": {err: fmt.Errorf("gen: %w", codedError{code: ExitMissingDependency}), want: ExitMissingDependency},
		"plain error":   {err: errors.New("boom"), want: ExitValidationFailed},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestExitError_Message(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "exit code 3", NewExitError(3).Error())
}

func TestIsExitError(t *testing.T) {
	t.Parallel()

	assert.True(t, IsExitError(NewExitError(1)))
	assert.True(t, IsExitError(fmt.Errorf("wrapped: %w", NewExitError(2))))
	assert.False(t, IsExitError(errors.New("plain")))
	assert.False(t, IsExitError(nil))
}
