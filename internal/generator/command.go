package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// maxStderr bounds how much of the generator's stderr ends up in errors.
const maxStderr = 2048

// waitDelay bounds how long output is drained after the process is killed.
const waitDelay = 500 * time.Millisecond

// Command runs an external program. The request is written to its stdin
// as JSON and the specification is read from its stdout.
type Command struct {
	Cmd  string
	Args []string
	// Timeout bounds one invocation. Zero means no limit.
	Timeout time.Duration
	// Env is appended to the current environment.
	Env []string
}

// Generate implements Generator.
func (c *Command) Generate(ctx context.Context, req Request) ([]byte, error) {
	if _, err := exec.LookPath(c.Cmd); err != nil {
		return nil, &MissingCommandError{Command: c.Cmd, Err: err}
	}

	input, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding generator request: %w", err)
	}

	runCtx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, c.Cmd, c.Args...)
	cmd.Env = append(os.Environ(), c.Env...)
	cmd.Stdin = bytes.NewReader(input)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	err = cmd.Run()

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return nil, &TimeoutError{Timeout: c.Timeout, Command: c.String()}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, fmt.Errorf("generator command failed: %w%s", err, stderrSuffix(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// Name implements Generator.
func (c *Command) Name() string { return "command:" + c.Cmd }

// String returns a human-readable command line.
func (c *Command) String() string {
	return strings.Join(append([]string{c.Cmd}, c.Args...), " ")
}

func stderrSuffix(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if len(s) > maxStderr {
		s = s[:maxStderr] + "..."
	}
	return ": " + s
}
