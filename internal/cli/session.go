package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	cfgpkg "github.com/ariel-frischer/specgate/internal/config"
	"github.com/ariel-frischer/specgate/internal/contract"
	"github.com/ariel-frischer/specgate/internal/gate"
	"github.com/ariel-frischer/specgate/internal/history"
	"github.com/ariel-frischer/specgate/internal/logging"
	"github.com/ariel-frischer/specgate/internal/plan"
	"github.com/ariel-frischer/specgate/internal/registry"
	"github.com/ariel-frischer/specgate/internal/rules"
)

// session holds what every gate command needs: configuration, the logger
// and the compiled registries.
type session struct {
	cfg          *cfgpkg.Configuration
	logger       *zap.Logger
	capabilities *registry.Registry
	rules        *rules.Registry
	gate         *gate.Gate
	builder      *plan.Builder
	history      *history.Writer
}

// openSession loads configuration and registries. Failures are reported on
// errOut and returned as invalid-argument exit errors.
func openSession(opts globalOptions, errOut io.Writer) (*session, error) {
	cfg, err := cfgpkg.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(errOut, "Error loading config: %v\n", err)
		return nil, NewExitError(ExitInvalidArguments)
	}

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Debug: opts.debug, Output: errOut})
	if err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return nil, NewExitError(ExitInvalidArguments)
	}

	capabilities, err := registry.Load(cfg.RegistryPath)
	if err != nil {
		fmt.Fprintf(errOut, "Error loading capability registry: %v\n", err)
		return nil, NewExitError(ExitInvalidArguments)
	}

	ruleReg, err := loadRules(cfg)
	if err != nil {
		fmt.Fprintf(errOut, "Error loading rule registry: %v\n", err)
		return nil, NewExitError(ExitInvalidArguments)
	}

	templates := plan.DefaultTemplates()
	if cfg.TemplatesDir != "" {
		if info, err := os.Stat(cfg.TemplatesDir); err != nil || !info.IsDir() {
			fmt.Fprintf(errOut, "Error: templates_dir is not a directory: %s\n", cfg.TemplatesDir)
			return nil, NewExitError(ExitInvalidArguments)
		}
		templates = plan.NewFSTemplates(os.DirFS(cfg.TemplatesDir))
	}

	logger.Debug("session opened",
		zap.String("rules_version", ruleReg.Version()),
		zap.String("registry_version", capabilities.Version()),
		zap.Int("rules", ruleReg.Len()))

	return &session{
		cfg:          cfg,
		logger:       logger,
		capabilities: capabilities,
		rules:        ruleReg,
		gate:         gate.New(rules.NewEngine(ruleReg, logger), logger),
		builder:      plan.NewBuilder(templates, logger),
		history:      history.NewWriter(cfg.StateDir, cfg.MaxHistory),
	}, nil
}

func loadRules(cfg *cfgpkg.Configuration) (*rules.Registry, error) {
	opts := rules.Options{MaxProperties: cfg.MaxProperties}
	if cfg.RulesPath == "" {
		return rules.Default(opts)
	}
	data, err := os.ReadFile(cfg.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("reading rule registry: %w", err)
	}
	return rules.Load(data, opts)
}

// close flushes the logger.
func (s *session) close() {
	_ = s.logger.Sync()
}

// capability resolves id, printing the registry error on failure.
func (s *session) capability(id string, errOut io.Writer) (*contract.Capability, error) {
	c, err := s.capabilities.Lookup(id)
	if err != nil {
		printError(errOut, err)
		return nil, NewExitError(ExitInvalidArguments)
	}
	return c, nil
}

// decision describes one gate outcome for the history.
type decision struct {
	command    string
	subject    string
	capability string
	verdict    *gate.Verdict
	buildID    string
	exitCode   int
	started    time.Time
}

// record appends d to the decision history. Failures are only logged.
func (s *session) record(d decision) {
	entry := history.Entry{
		Command:    d.command,
		Subject:    d.subject,
		Capability: d.capability,
		Decision:   "error",
		BuildID:    d.buildID,
		ExitCode:   d.exitCode,
		Duration:   time.Since(d.started).Round(time.Millisecond).String(),
	}
	if d.verdict != nil {
		entry.Decision = string(d.verdict.Decision)
		entry.Codes = verdictCodes(d.verdict)
	}
	if err := s.history.Record(entry); err != nil {
		s.logger.Warn("decision not recorded", zap.Error(err))
	}
}

// verdictCodes lists the verdict's code followed by its error codes,
// without duplicates.
func verdictCodes(v *gate.Verdict) []string {
	var codes []string
	seen := make(map[string]bool)
	add := func(code string) {
		if code != "" && !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	add(v.Code)
	for _, issue := range v.Errors {
		add(issue.Code)
	}
	return codes
}
