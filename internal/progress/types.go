// Package progress renders build progress on the terminal: a spinner while
// a stage runs on a TTY, plain lines otherwise.
package progress

import "errors"

// StageInfo describes one stage of a build for display.
type StageInfo struct {
	// Name is the human-readable stage name, such as "generate" or "plan".
	Name        string
	Number      int
	TotalStages int
	// Attempt is the 1-based attempt of the stage; MaxAttempts bounds it.
	Attempt     int
	MaxAttempts int
}

// Validate checks the stage counters.
func (s StageInfo) Validate() error {
	switch {
	case s.Name == "":
		return errors.New("stage name cannot be empty")
	case s.Number <= 0:
		return errors.New("stage number must be > 0")
	case s.TotalStages <= 0:
		return errors.New("total stages must be > 0")
	case s.Number > s.TotalStages:
		return errors.New("stage number cannot exceed total stages")
	case s.Attempt < 0 || s.MaxAttempts < 0:
		return errors.New("attempt counters cannot be negative")
	}
	return nil
}

// TerminalCapabilities encapsulates detected terminal features
type TerminalCapabilities struct {
	// IsTTY indicates whether the progress stream is a terminal
	IsTTY           bool
	SupportsColor   bool
	SupportsUnicode bool
	// Width is the terminal width in columns (0 if unknown/pipe)
	Width int
}

// ProgressSymbols defines the character set for visual indicators
type ProgressSymbols struct {
	Checkmark string
	Failure   string
	// SpinnerSet is the index into spinner.CharSets
	SpinnerSet int
}
