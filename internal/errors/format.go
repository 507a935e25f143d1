package errors

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// FormatError renders err for terminal output with colors when enabled.
func FormatError(err error) string {
	return format(err, false)
}

// FormatErrorPlain renders err without colors. It leaves the package-wide
// color setting untouched, so it is safe to call concurrently.
func FormatErrorPlain(err error) string {
	return format(err, true)
}

func format(err error, plain bool) string {
	if err == nil {
		return ""
	}
	paint := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if plain {
			c.DisableColor()
		}
		return c
	}

	ge := AsGateError(err)
	if ge == nil {
		return paint(color.FgRed).Sprint("Error: ") + err.Error() + "\n"
	}

	var sb strings.Builder
	sb.WriteString(paint(color.FgRed, color.Bold).Sprintf("%s", ge.Category))
	sb.WriteString(fmt.Sprintf(" [%s] (%s)\n", ge.Code, ge.Stage))
	sb.WriteString("  " + ge.Message + "\n")
	if ge.UserMessage != "" && ge.UserMessage != ge.Message {
		sb.WriteString("  " + ge.UserMessage + "\n")
	}
	if ge.Suggestion != "" {
		sb.WriteString(paint(color.FgYellow).Sprint("  Suggestion: ") + ge.Suggestion + "\n")
	}
	if len(ge.Alternatives) > 0 {
		sb.WriteString(paint(color.FgCyan).Sprint("  Alternatives: ") + strings.Join(ge.Alternatives, ", ") + "\n")
	}
	return sb.String()
}

// PrintError writes the formatted error to w.
func PrintError(w io.Writer, err error) {
	fmt.Fprint(w, FormatError(err))
}
