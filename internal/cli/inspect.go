package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/specgate/internal/contract"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the governance rules in evaluation order",
	Long: `List the governance rules in evaluation order.

Rules come from the built-in registry or from rules_path. The property
ceiling reflects max_properties.`,
	Example: `  specgate rules
  specgate rules --json`,
	Args: positional(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		return runRulesCommand(readGlobalOptions(cmd), asJSON, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

var capabilitiesCmd = &cobra.Command{
	Use:     "capabilities [id]",
	Aliases: []string{"caps"},
	Short:   "List capabilities or show one in detail",
	Long: `List capabilities or show one in detail.

Capabilities come from the built-in registry or from registry_path.`,
	Example: `  specgate capabilities
  specgate capabilities star-rating
  specgate caps data-grid --json`,
	Args: positional(cobra.MaximumNArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		return runCapabilitiesCommand(args, readGlobalOptions(cmd), asJSON, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	rulesCmd.GroupID = GroupInspect
	rulesCmd.Flags().Bool("json", false, "Print rules as JSON")
	rootCmd.AddCommand(rulesCmd)

	capabilitiesCmd.GroupID = GroupInspect
	capabilitiesCmd.Flags().Bool("json", false, "Print capabilities as JSON")
	rootCmd.AddCommand(capabilitiesCmd)
}

func runRulesCommand(opts globalOptions, asJSON bool, out, errOut io.Writer) error {
	s, err := openSession(opts, errOut)
	if err != nil {
		return err
	}
	defer s.close()

	list := s.rules.Rules()
	if asJSON {
		return writeJSON(out, list)
	}

	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s (version %s, %d rules)\n\n", bold("Rule registry"), s.rules.Version(), len(list))
	for i, r := range list {
		fix := ""
		if r.AutoFixable {
			fix = " [auto-fix]"
		}
		fmt.Fprintf(out, "%2d. %-30s %-8s %-10s %s%s\n", i+1, r.ID, r.Severity, r.Category, r.Target, fix)
	}
	return nil
}

func runCapabilitiesCommand(args []string, opts globalOptions, asJSON bool, out, errOut io.Writer) error {
	s, err := openSession(opts, errOut)
	if err != nil {
		return err
	}
	defer s.close()

	if len(args) == 1 {
		c, err := s.capability(args[0], errOut)
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(out, c)
		}
		printCapability(out, c)
		return nil
	}

	list := s.capabilities.List()
	if asJSON {
		return writeJSON(out, list)
	}
	for _, c := range list {
		fmt.Fprintf(out, "%-20s %-8s %s\n", c.CapabilityID, c.Classification, c.Description)
	}
	return nil
}

func printCapability(out io.Writer, c *contract.Capability) {
	bold := color.New(color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	fmt.Fprintf(out, "%s (%s)\n", bold(c.CapabilityID), c.Classification)
	if c.Description != "" {
		fmt.Fprintf(out, "  %s\n", c.Description)
	}
	fmt.Fprintf(out, "\n%s %s\n", cyan("Features:"), strings.Join(c.SupportedFeatures, ", "))

	if len(c.Limits) > 0 {
		keys := make([]string, 0, len(c.Limits))
		for k := range c.Limits {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintln(out, cyan("Limits:"))
		for _, k := range keys {
			fmt.Fprintf(out, "  %s: %s\n", k, c.Limits[k].Display())
		}
	}

	if len(c.Forbidden) > 0 {
		fmt.Fprintln(out, cyan("Forbidden:"))
		for _, f := range c.Forbidden {
			fmt.Fprintf(out, "  - %s (%s)\n", f.Behavior, f.Reason)
			if f.Alternative != "" {
				fmt.Fprintf(out, "    instead: %s\n", f.Alternative)
			}
		}
	}
}
