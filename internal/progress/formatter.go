package progress

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

func formatStageCounter(number, total int) string {
	return fmt.Sprintf("[%d/%d]", number, total)
}

// buildStageMessage constructs the stage line with attempt info once a
// stage is retried.
func buildStageMessage(stage StageInfo, action string) string {
	msg := fmt.Sprintf("%s %s %s stage", formatStageCounter(stage.Number, stage.TotalStages), action, capitalize(stage.Name))
	if stage.Attempt > 1 {
		msg += fmt.Sprintf(" (attempt %d/%d)", stage.Attempt, stage.MaxAttempts)
	}
	return msg
}

func capitalize(s string) string {
	if len(s) == 0 {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func checkmark(symbols ProgressSymbols, supportsColor bool) string {
	if supportsColor {
		return color.New(color.FgGreen).Sprint(symbols.Checkmark)
	}
	return symbols.Checkmark
}

func failureMark(symbols ProgressSymbols, supportsColor bool) string {
	if supportsColor {
		return color.New(color.FgRed).Sprint(symbols.Failure)
	}
	return symbols.Failure
}
