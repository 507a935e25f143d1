package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/ariel-frischer/specgate/internal/contract"
	"github.com/ariel-frischer/specgate/internal/gate"
)

// validateOptions are the flags of the validate command.
type validateOptions struct {
	globalOptions
	capability string
	json       bool
	fix        bool
}

var validateCmd = &cobra.Command{
	Use:   "validate <spec>...",
	Short: "Gate candidate specifications against a capability",
	Long: `Gate candidate specifications against a capability.

Each file is decoded (JSON, or YAML for .yaml/.yml), checked structurally,
evaluated by every rule in the registry and bounded by the capability's
features and limits. The gate's decision is printed per file.

Files are evaluated concurrently, bounded by the concurrency setting.

Exit Codes:
  0 - Every candidate was approved
  1 - At least one candidate was rejected or needs regeneration
  3 - Invalid arguments (unknown capability or unreadable file)`,
	Example: `  # Gate one candidate
  specgate validate spec.json --capability star-rating

  # Machine-readable verdicts
  specgate validate a.json b.yaml --capability star-rating --json

  # Persist automatic naming fixes into approved files
  specgate validate spec.json --capability star-rating --fix`,
	Args: positional(cobra.MinimumNArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := validateOptions{globalOptions: readGlobalOptions(cmd)}
		opts.capability, _ = cmd.Flags().GetString("capability")
		opts.json, _ = cmd.Flags().GetBool("json")
		opts.fix, _ = cmd.Flags().GetBool("fix")
		return runValidateCommand(cmd.Context(), args, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	validateCmd.GroupID = GroupGate
	validateCmd.Flags().String("capability", "", "Capability id the candidates were generated for (required)")
	validateCmd.Flags().Bool("json", false, "Print verdicts as JSON")
	validateCmd.Flags().Bool("fix", false, "Write automatic corrections back into approved files")
	rootCmd.AddCommand(validateCmd)
}

// fileVerdict is the JSON shape of one validated file.
type fileVerdict struct {
	File    string        `json:"file"`
	Verdict *gate.Verdict `json:"verdict"`
	Fixed   bool          `json:"fixed,omitempty"`
}

func runValidateCommand(ctx context.Context, paths []string, opts validateOptions, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	started := time.Now()
	if err := requireFlag(errOut, "capability", opts.capability); err != nil {
		return err
	}

	s, err := openSession(opts.globalOptions, errOut)
	if err != nil {
		return err
	}
	defer s.close()

	capability, err := s.capability(opts.capability, errOut)
	if err != nil {
		return err
	}

	payloads := make([][]byte, len(paths))
	for i, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(errOut, "Error: cannot read %s: %v\n", path, err)
			return NewExitError(ExitInvalidArguments)
		}
		payloads[i] = data
	}

	results := make([]fileVerdict, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			v, err := evaluateFile(gctx, s.gate, path, payloads[i], capability)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = fileVerdict{File: path, Verdict: v}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	refused := 0
	for i := range results {
		r := &results[i]
		d := decision{command: "validate", subject: r.File, capability: capability.CapabilityID, verdict: r.Verdict, started: started}
		if !r.Verdict.Approved() {
			refused++
			d.exitCode = ExitRejected
			s.record(d)
			continue
		}
		s.record(d)
		if opts.fix && len(r.Verdict.Downgrades) > 0 {
			if err := writeFixed(r.File, r.Verdict.Specification); err != nil {
				return err
			}
			r.Fixed = true
			s.logger.Info("corrections written", zap.String("file", r.File), zap.Int("downgrades", len(r.Verdict.Downgrades)))
		}
	}

	if opts.json {
		if err := writeJSON(out, results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			printVerdict(out, errOut, r.File, capability.CapabilityID, r.Verdict)
			if r.Fixed {
				fmt.Fprintf(out, "  corrections written to %s\n", r.File)
			}
		}
	}

	if refused > 0 {
		if !opts.json {
			fmt.Fprintf(errOut, "\n%d of %d candidate(s) refused\n", refused, len(results))
		}
		return NewExitError(ExitRejected)
	}
	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func evaluateFile(ctx context.Context, g *gate.Gate, path string, data []byte, capability *contract.Capability) (*gate.Verdict, error) {
	if isYAML(path) {
		return g.EvaluateYAML(ctx, data, capability)
	}
	return g.Evaluate(ctx, data, capability)
}

// writeFixed rewrites path with the corrected specification in the
// file's own format, keeping its permissions.
func writeFixed(path string, spec *contract.Specification) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	var data []byte
	if isYAML(path) {
		data, err = yaml.Marshal(spec)
	} else {
		data, err = json.MarshalIndent(spec, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	if err := os.WriteFile(path, data, info.Mode().Perm()); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
