package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ariel-frischer/specgate/internal/contract"
	"github.com/ariel-frischer/specgate/internal/plan"
)

// planOptions are the flags of the plan command.
type planOptions struct {
	globalOptions
	intentPath string
	strategy   string
}

var planCmd = &cobra.Command{
	Use:   "plan <spec>",
	Short: "Gate a candidate and print its execution plan",
	Long: `Gate a candidate and print its execution plan.

The capability is selected from the intent. The candidate must pass the
gate for that capability; the approved, corrected specification is then
planned into the fixed catalog of generation steps and printed as JSON.

The build identifier is derived from the intent (deterministic) or made
unique per run, as chosen by --strategy or the id_strategy setting.`,
	Example: `  specgate plan spec.json --intent intent.json
  specgate plan spec.yaml --intent intent.json --strategy unique`,
	Args: positional(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := planOptions{globalOptions: readGlobalOptions(cmd)}
		opts.intentPath, _ = cmd.Flags().GetString("intent")
		opts.strategy, _ = cmd.Flags().GetString("strategy")
		return runPlanCommand(cmd.Context(), args[0], opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	planCmd.GroupID = GroupGate
	planCmd.Flags().String("intent", "", "Intent file, JSON or YAML (required)")
	planCmd.Flags().String("strategy", "", "Build id strategy: deterministic or unique (default from config)")
	rootCmd.AddCommand(planCmd)
}

func runPlanCommand(ctx context.Context, specPath string, opts planOptions, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	started := time.Now()
	if err := requireFlag(errOut, "intent", opts.intentPath); err != nil {
		return err
	}

	s, err := openSession(opts.globalOptions, errOut)
	if err != nil {
		return err
	}
	defer s.close()

	strategy, err := resolveStrategy(opts.strategy, s.cfg.IDStrategy, errOut)
	if err != nil {
		return err
	}

	intent, err := readIntent(opts.intentPath)
	if err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return NewExitError(ExitInvalidArguments)
	}

	capability, err := s.capabilities.ForIntent(intent)
	if err != nil {
		printError(errOut, err)
		return NewExitError(ExitInvalidArguments)
	}

	data, err := os.ReadFile(specPath)
	if err != nil {
		fmt.Fprintf(errOut, "Error: cannot read %s: %v\n", specPath, err)
		return NewExitError(ExitInvalidArguments)
	}

	verdict, err := evaluateFile(ctx, s.gate, specPath, data, capability)
	if err != nil {
		return err
	}
	d := decision{command: "plan", subject: specPath, capability: capability.CapabilityID, verdict: verdict, started: started}
	if !verdict.Approved() {
		d.exitCode = ExitRejected
		s.record(d)
		printVerdict(out, errOut, specPath, capability.CapabilityID, verdict)
		return NewExitError(ExitRejected)
	}

	approval, err := verdict.Approval()
	var p *contract.ExecutionPlan
	if err == nil {
		p, err = s.builder.Build(ctx, plan.Request{
			Intent:     intent,
			Capability: capability,
			Approval:   approval,
			Strategy:   strategy,
		})
	}
	if err != nil {
		d.verdict, d.exitCode = nil, ExitRejected
		s.record(d)
		printError(errOut, err)
		return NewExitError(ExitRejected)
	}
	d.buildID = p.BuildID
	s.record(d)
	return writeJSON(out, p)
}

// resolveStrategy prefers the flag over the configured strategy.
func resolveStrategy(flag, configured string, errOut io.Writer) (plan.IDStrategy, error) {
	name := configured
	if flag != "" {
		name = flag
	}
	strategy, err := plan.StrategyByName(name)
	if err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return nil, NewExitError(ExitInvalidArguments)
	}
	return strategy, nil
}

// readIntent decodes an intent file, YAML when the extension says so and
// strict JSON otherwise.
func readIntent(path string) (contract.Intent, error) {
	var intent contract.Intent
	data, err := os.ReadFile(path)
	if err != nil {
		return intent, fmt.Errorf("cannot read intent: %w", err)
	}

	if isYAML(path) {
		if err := yaml.Unmarshal(data, &intent); err != nil {
			return intent, fmt.Errorf("parsing intent %s: %w", path, err)
		}
		return intent, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&intent); err != nil {
		return intent, fmt.Errorf("parsing intent %s: %w", path, err)
	}
	return intent, nil
}
