package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	gerrors "github.com/ariel-frischer/specgate/internal/errors"
	"github.com/ariel-frischer/specgate/internal/generator"
	"github.com/ariel-frischer/specgate/internal/pipeline"
	"github.com/ariel-frischer/specgate/internal/progress"
)

// buildOptions are the flags of the build command.
type buildOptions struct {
	globalOptions
	intentPath string
	strategy   string
	specPath   string
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Generate, gate and plan a component end to end",
	Long: `Generate, gate and plan a component end to end.

The capability is selected from the intent. The configured generator
(generator_cmd, receiving the request as JSON on stdin) produces a candidate
specification, which must pass the gate. Generator failures, timeouts and
malformed output are retried with exponential backoff up to max_retries;
any other refusal is final. The result, including the execution plan of an
approved candidate, is printed as JSON.

Use --spec to replay a stored candidate instead of running a generator.

Exit Codes:
  0 - Candidate approved and planned
  1 - Candidate rejected
  2 - Retries exhausted
  3 - Invalid arguments
  4 - Generator command not found`,
	Example: `  specgate build --intent intent.json
  specgate build --intent intent.json --spec candidate.json --strategy unique`,
	Args: positional(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := buildOptions{globalOptions: readGlobalOptions(cmd)}
		opts.intentPath, _ = cmd.Flags().GetString("intent")
		opts.strategy, _ = cmd.Flags().GetString("strategy")
		opts.specPath, _ = cmd.Flags().GetString("spec")
		return runBuildCommand(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	buildCmd.GroupID = GroupGate
	buildCmd.Flags().String("intent", "", "Intent file, JSON or YAML (required)")
	buildCmd.Flags().String("strategy", "", "Build id strategy: deterministic or unique (default from config)")
	buildCmd.Flags().String("spec", "", "Use a stored candidate specification instead of the generator")
	rootCmd.AddCommand(buildCmd)
}

func runBuildCommand(ctx context.Context, opts buildOptions, out, errOut io.Writer) error {
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

	gen, err := newGenerator(s, opts.specPath)
	if err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return NewExitError(ExitInvalidArguments)
	}

	stage := progress.StageInfo{Name: "generate", Number: 1, TotalStages: 1, MaxAttempts: s.cfg.MaxRetries + 1}
	var display *progress.Display
	if s.cfg.ShowProgress {
		display = progress.NewDisplay(terminalCapabilities(errOut), errOut)
	}

	p := pipeline.New(s.capabilities, gen, s.gate, s.builder, pipeline.Options{
		MaxRetries:     s.cfg.MaxRetries,
		InitialBackoff: s.cfg.Backoff(),
		MaxBackoff:     s.cfg.MaxBackoff(),
		OnAttempt: func(attempt int) {
			if display != nil {
				stage.Attempt = attempt
				_ = display.StartStage(stage)
			}
		},
	}, s.logger)

	result, err := p.Run(ctx, pipeline.Request{Intent: intent, Strategy: strategy})
	if display != nil {
		switch {
		case err != nil:
			display.FailStage(stage, err)
		case !result.Verdict.Approved():
			display.FailStage(stage, errors.New(result.Verdict.Code))
		default:
			display.CompleteStage(stage)
		}
	}

	if result != nil {
		if werr := writeJSON(out, result); werr != nil {
			return werr
		}
	}
	if err != nil {
		printError(errOut, err)
		if result == nil && gerrors.IsGateError(err) {
			// capability selection failed before generation
			return NewExitError(ExitInvalidArguments)
		}
		code := ExitCode(err)
		s.record(buildDecision(opts.intentPath, result, code, started))
		return NewExitError(code)
	}
	if !result.Verdict.Approved() {
		s.record(buildDecision(opts.intentPath, result, ExitRejected, started))
		printVerdict(out, errOut, gen.Name(), result.Capability.CapabilityID, result.Verdict)
		return NewExitError(ExitRejected)
	}
	s.record(buildDecision(opts.intentPath, result, ExitSuccess, started))
	return nil
}

func buildDecision(intentPath string, result *pipeline.Result, exitCode int, started time.Time) decision {
	d := decision{command: "build", subject: intentPath, exitCode: exitCode, started: started}
	if result == nil {
		return d
	}
	d.verdict = result.Verdict
	if result.Capability != nil {
		d.capability = result.Capability.CapabilityID
	}
	if result.Plan != nil {
		d.buildID = result.Plan.BuildID
	}
	return d
}

func newGenerator(s *session, specPath string) (generator.Generator, error) {
	if specPath != "" {
		return &generator.File{Path: specPath}, nil
	}
	if s.cfg.GeneratorCmd == "" {
		return nil, errors.New("no generator configured: set generator_cmd or pass --spec")
	}
	return &generator.Command{
		Cmd:     s.cfg.GeneratorCmd,
		Args:    s.cfg.GeneratorArgs,
		Timeout: s.cfg.TimeoutDuration(),
	}, nil
}

// terminalCapabilities detects the terminal behind w. Anything that is not
// a file gets plain output.
func terminalCapabilities(w io.Writer) progress.TerminalCapabilities {
	if f, ok := w.(*os.File); ok {
		return progress.DetectTerminalCapabilities(f)
	}
	return progress.TerminalCapabilities{}
}
