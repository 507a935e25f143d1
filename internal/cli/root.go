// specgate - Trust boundary for generated component specifications
// Author: Ariel Frischer
// Source: https://github.com/ariel-frischer/specgate

// Package cli provides the Cobra-based commands of specgate: gating
// candidate specifications (validate, plan, build), inspecting the rule and
// capability registries, and configuration management.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/specgate/internal/cli/config"
	"github.com/ariel-frischer/specgate/internal/cli/shared"
)

// Command group IDs for organizing help output (re-exported from shared)
const (
	GroupGate          = shared.GroupGate
	GroupInspect       = shared.GroupInspect
	GroupConfiguration = shared.GroupConfiguration
)

// DefaultConfigPath is the project-level config file.
const DefaultConfigPath = ".specgate/config.json"

var rootCmd = &cobra.Command{
	Use:   "specgate",
	Short: "Trust boundary for generated component specifications",
	Long: `specgate - trust boundary for generated component specifications

Candidate specifications produced by an untrusted generator are decoded,
checked against the rule registry and the bounds of the selected capability,
and either approved, rejected or sent back for regeneration. Approved
candidates are turned into a deterministic execution plan.

Source: https://github.com/ariel-frischer/specgate`,
	Example: `  # Gate a candidate against a capability
  specgate validate spec.json --capability star-rating

  # Gate many candidates at once and auto-fix naming issues
  specgate validate specs/*.yaml --capability star-rating --fix

  # Plan an approved candidate for an intent
  specgate plan spec.json --intent intent.json

  # Generate, gate and plan end to end
  specgate build --intent intent.json`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExecuteContext runs the root command. Commands report their own
// failures and return exit errors; anything else, such as a usage error, is
// printed here.
func ExecuteContext(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !shared.IsExitError(err) {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.AddGroup(&cobra.Group{ID: GroupGate, Title: "Gate:"})
	rootCmd.AddGroup(&cobra.Group{ID: GroupInspect, Title: "Inspect:"})
	rootCmd.AddGroup(&cobra.Group{ID: GroupConfiguration, Title: "Configuration:"})

	rootCmd.SetHelpCommandGroupID(GroupConfiguration)
	rootCmd.SetCompletionCommandGroupID(GroupConfiguration)

	rootCmd.PersistentFlags().StringP("config", "c", DefaultConfigPath, "Path to config file")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return NewExitError(ExitInvalidArguments)
	})

	config.Register(rootCmd)
}

// globalOptions are the persistent flags every command receives.
type globalOptions struct {
	configPath string
	debug      bool
}

func readGlobalOptions(cmd *cobra.Command) globalOptions {
	configPath, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")
	return globalOptions{configPath: configPath, debug: debug}
}

// positional wraps an argument validator so that violations exit with
// ExitInvalidArguments.
func positional(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			return NewExitError(ExitInvalidArguments)
		}
		return nil
	}
}

// requireFlag reports a missing required flag value.
func requireFlag(errOut io.Writer, name, value string) error {
	if value != "" {
		return nil
	}
	fmt.Fprintf(errOut, "Error: required flag --%s not set\n", name)
	return NewExitError(ExitInvalidArguments)
}
