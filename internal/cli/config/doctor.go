package config

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/specgate/internal/cli/shared"
	cfgpkg "github.com/ariel-frischer/specgate/internal/config"
	"github.com/ariel-frischer/specgate/internal/health"
)

var doctorCmd = &cobra.Command{
	Use:     "doctor",
	Aliases: []string{"doc"},
	Short:   "Check that the configuration can gate and plan",
	Long: `Run health checks on the effective configuration:
- Capability registry loads and validates
- Rule registry compiles
- Every plan step has a generic template
- The configured generator command is on PATH`,
	Example: `  specgate doctor
  specgate doctor --config ci/specgate.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		return runDoctor(configPath, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func runDoctor(configPath string, out, errOut io.Writer) error {
	cfg, err := cfgpkg.Load(configPath)
	if err != nil {
		fmt.Fprintf(errOut, "Error loading config: %v\n", err)
		return shared.NewExitError(shared.ExitInvalidArguments)
	}

	report := health.RunHealthChecks(cfg)
	fmt.Fprint(out, health.FormatReport(report))
	if !report.Passed {
		return shared.NewExitError(shared.ExitValidationFailed)
	}
	return nil
}
