package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
)

// Display orchestrates the progress indicators of one build. Its methods
// may be called from the pipeline's goroutine while the command waits.
type Display struct {
	mu           sync.Mutex
	capabilities TerminalCapabilities
	symbols      ProgressSymbols
	out          io.Writer
	spinner      *spinner.Spinner
}

// NewDisplay creates a display writing to out.
func NewDisplay(caps TerminalCapabilities, out io.Writer) *Display {
	return &Display{
		capabilities: caps,
		symbols:      SelectSymbols(caps),
		out:          out,
	}
}

// StartStage begins displaying progress for a stage. Calling it again for
// the same stage updates the attempt counter.
func (d *Display) StartStage(stage StageInfo) error {
	if err := stage.Validate(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	msg := buildStageMessage(stage, "Running")
	if !d.capabilities.IsTTY {
		fmt.Fprintln(d.out, msg)
		return nil
	}

	if d.spinner == nil {
		d.spinner = spinner.New(spinner.CharSets[d.symbols.SpinnerSet], 100*time.Millisecond, spinner.WithWriter(d.out))
		d.spinner.Suffix = " " + msg
		d.spinner.Start()
		return nil
	}
	d.spinner.Lock()
	d.spinner.Suffix = " " + msg
	d.spinner.Unlock()
	return nil
}

// CompleteStage stops the spinner and displays completion status
func (d *Display) CompleteStage(stage StageInfo) {
	d.finish(fmt.Sprintf("%s %s %s stage complete",
		checkmark(d.symbols, d.capabilities.SupportsColor),
		formatStageCounter(stage.Number, stage.TotalStages),
		capitalize(stage.Name)))
}

// FailStage stops the spinner and displays failure status
func (d *Display) FailStage(stage StageInfo, err error) {
	d.finish(fmt.Sprintf("%s %s %s stage failed: %v",
		failureMark(d.symbols, d.capabilities.SupportsColor),
		formatStageCounter(stage.Number, stage.TotalStages),
		capitalize(stage.Name), err))
}

// Stop stops the spinner without a status line.
func (d *Display) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopSpinner()
}

func (d *Display) finish(line string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopSpinner()
	fmt.Fprintln(d.out, line)
}

func (d *Display) stopSpinner() {
	if d.spinner != nil {
		d.spinner.Stop()
		d.spinner = nil
	}
}
