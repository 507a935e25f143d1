package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/ariel-frischer/specgate/internal/contract"
	gerrors "github.com/ariel-frischer/specgate/internal/errors"
	"github.com/ariel-frischer/specgate/internal/gate"
)

func printError(w io.Writer, err error) {
	gerrors.PrintError(w, err)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}

// printVerdict renders one verdict for a terminal. Approvals go to out,
// refusals to errOut.
func printVerdict(out, errOut io.Writer, name, capabilityID string, v *gate.Verdict) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	w := errOut
	switch v.Decision {
	case gate.Approve:
		w = out
		fmt.Fprintf(w, "%s %s approved for %s\n", green("✓"), name, capabilityID)
	case gate.Retry:
		fmt.Fprintf(w, "%s %s needs regeneration [%s] (%s)\n", yellow("↻"), name, v.Code, v.Stage)
	default:
		fmt.Fprintf(w, "%s %s rejected [%s] (%s)\n", red("✗"), name, v.Code, v.Stage)
	}

	for _, issue := range v.Errors {
		printIssue(w, red("error"), issue)
	}
	for _, issue := range v.Warnings {
		printIssue(w, yellow(string(issue.Severity)), issue)
	}
	for _, d := range v.Downgrades {
		fmt.Fprintf(w, "  %s %s: %q -> %q %s\n", green("fixed"), d.Field, d.From, d.To, dim("("+d.RuleID+")"))
	}

	if v.Result != nil {
		fmt.Fprintf(w, "  %s\n", dim(fmt.Sprintf("%d/%d rules passed", v.Result.PassedRules, v.Result.TotalRules)))
	}
}

func printIssue(w io.Writer, label string, issue contract.Issue) {
	field := ""
	if issue.Field != "" {
		field = " " + issue.Field
	}
	fmt.Fprintf(w, "  %s [%s]%s: %s\n", label, issue.Code, field, issue.Message)
	if issue.Suggestion != "" {
		fmt.Fprintf(w, "    Suggestion: %s\n", issue.Suggestion)
	}
}
