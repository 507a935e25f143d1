// Package generator adapts untrusted specification producers. A generator
// turns an intent and its capability into raw specification bytes; nothing
// it returns is trusted until the gate approves it.
package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/ariel-frischer/specgate/internal/contract"
)

// Request is what a generator receives.
type Request struct {
	Intent     contract.Intent      `json:"intent"`
	Capability *contract.Capability `json:"capability"`
	// Attempt is 1 for the first try and grows with each retry.
	Attempt int `json:"attempt"`
	// Feedback lists the problems found in the previous attempt.
	Feedback []contract.Issue `json:"feedback,omitempty"`
}

// Generator produces a raw specification for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) ([]byte, error)
	Name() string
}

// TimeoutError indicates a generator exceeded its time budget.
type TimeoutError struct {
	Timeout time.Duration
	Command string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("generator timed out after %v: %s", e.Timeout, e.Command)
}

// ExitCode returns the exit code for a timeout (5)
func (e *TimeoutError) ExitCode() int {
	return 5
}

// MissingCommandError indicates the generator binary cannot be found.
type MissingCommandError struct {
	Command string
	Err     error
}

func (e *MissingCommandError) Error() string {
	return fmt.Sprintf("generator command %q not found: %v", e.Command, e.Err)
}

func (e *MissingCommandError) Unwrap() error { return e.Err }

// ExitCode returns the exit code for a missing dependency (4)
func (e *MissingCommandError) ExitCode() int {
	return 4
}
