package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	cfgpkg "github.com/ariel-frischer/specgate/internal/config"
	"github.com/ariel-frischer/specgate/internal/history"
)

// historyOptions are the flags of the history command.
type historyOptions struct {
	globalOptions
	decision string
	limit    int
	clear    bool
	json     bool
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View recorded gate decisions",
	Long: `View recorded gate decisions, newest first.

Every validate, plan and build run records its decision with the candidate,
capability, error codes and exit code. Recording is controlled by state_dir
and max_history.`,
	Example: `  specgate history
  specgate history --decision reject -n 10
  specgate history --clear`,
	Args: positional(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := historyOptions{globalOptions: readGlobalOptions(cmd)}
		opts.decision, _ = cmd.Flags().GetString("decision")
		opts.limit, _ = cmd.Flags().GetInt("limit")
		opts.clear, _ = cmd.Flags().GetBool("clear")
		opts.json, _ = cmd.Flags().GetBool("json")
		return runHistoryCommand(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	historyCmd.GroupID = GroupInspect
	historyCmd.Flags().String("decision", "", "Filter by decision (approve, reject, retry, error)")
	historyCmd.Flags().IntP("limit", "n", 0, "Show at most N entries")
	historyCmd.Flags().Bool("clear", false, "Clear all history")
	historyCmd.Flags().Bool("json", false, "Print entries as JSON")
	rootCmd.AddCommand(historyCmd)
}

func runHistoryCommand(opts historyOptions, out, errOut io.Writer) error {
	if opts.limit < 0 {
		fmt.Fprintf(errOut, "Error: limit must be positive, got %d\n", opts.limit)
		return NewExitError(ExitInvalidArguments)
	}

	cfg, err := cfgpkg.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(errOut, "Error loading config: %v\n", err)
		return NewExitError(ExitInvalidArguments)
	}

	if opts.clear {
		if err := history.Clear(cfg.StateDir); err != nil {
			return fmt.Errorf("clearing history: %w", err)
		}
		fmt.Fprintln(out, "History cleared.")
		return nil
	}

	h, err := history.Load(cfg.StateDir)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}
	entries := h.Filter(opts.decision, opts.limit)

	if opts.json {
		return writeJSON(out, entries)
	}
	if len(entries) == 0 {
		if opts.decision != "" {
			fmt.Fprintf(out, "No matching entries for decision '%s'.\n", opts.decision)
		} else {
			fmt.Fprintln(out, "No history available.")
		}
		return nil
	}

	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	for _, e := range entries {
		var mark string
		switch e.Decision {
		case "approve":
			mark = green(e.Decision)
		case "retry":
			mark = yellow(e.Decision)
		default:
			mark = red(e.Decision)
		}

		line := fmt.Sprintf("%s  %-8s %-8s %s", e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Command, mark, cyan(e.Subject))
		if e.Capability != "" {
			line += " [" + e.Capability + "]"
		}
		if len(e.Codes) > 0 {
			line += " " + strings.Join(e.Codes, ",")
		}
		fmt.Fprintf(out, "%s  exit=%d %s\n", line, e.ExitCode, e.Duration)
	}
	return nil
}
