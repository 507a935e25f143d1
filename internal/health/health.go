// Package health checks that a configuration can actually run: registries
// load, templates cover the plan catalog and the generator is installed.
package health

import (
	"fmt"
	"os"
	"os/exec"
	"path"
	"strings"

	"github.com/fatih/color"

	"github.com/ariel-frischer/specgate/internal/config"
	"github.com/ariel-frischer/specgate/internal/plan"
	"github.com/ariel-frischer/specgate/internal/registry"
	"github.com/ariel-frischer/specgate/internal/rules"
)

// CheckResult represents the result of a single health check
type CheckResult struct {
	Name    string
	Passed  bool
	Message string
}

// HealthReport contains all health check results
type HealthReport struct {
	Checks []CheckResult
	Passed bool
}

func (r *HealthReport) add(c CheckResult) {
	r.Checks = append(r.Checks, c)
	if !c.Passed {
		r.Passed = false
	}
}

// RunHealthChecks runs all health checks against cfg and returns a report
func RunHealthChecks(cfg *config.Configuration) *HealthReport {
	report := &HealthReport{Checks: make([]CheckResult, 0, 4), Passed: true}
	report.add(CheckCapabilities(cfg.RegistryPath))
	report.add(CheckRules(cfg.RulesPath, cfg.MaxProperties))
	report.add(CheckTemplates(cfg.TemplatesDir))
	report.add(CheckGenerator(cfg.GeneratorCmd))
	return report
}

// CheckCapabilities loads the capability registry at path, or the built-in
// one when path is empty.
func CheckCapabilities(path string) CheckResult {
	reg, err := registry.Load(path)
	if err != nil {
		return CheckResult{Name: "Capability registry", Message: err.Error()}
	}
	return CheckResult{
		Name:    "Capability registry",
		Passed:  true,
		Message: fmt.Sprintf("%d capabilities (%s)", len(reg.IDs()), sourceName(path)),
	}
}

// CheckRules compiles the rule registry at path, or the built-in one.
func CheckRules(path string, maxProperties int) CheckResult {
	opts := rules.Options{MaxProperties: maxProperties}
	var (
		reg *rules.Registry
		err error
	)
	if path == "" {
		reg, err = rules.Default(opts)
	} else {
		var data []byte
		if data, err = os.ReadFile(path); err == nil {
			reg, err = rules.Load(data, opts)
		}
	}
	if err != nil {
		return CheckResult{Name: "Rule registry", Message: err.Error()}
	}
	return CheckResult{
		Name:    "Rule registry",
		Passed:  true,
		Message: fmt.Sprintf("%d rules, version %s (%s)", reg.Len(), reg.Version(), sourceName(path)),
	}
}

// CheckTemplates verifies that every plan step has a generic template, so
// any capability can fall back to it.
func CheckTemplates(dir string) CheckResult {
	var resolver plan.TemplateResolver = plan.DefaultTemplates()
	if dir != "" {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return CheckResult{Name: "Templates", Message: fmt.Sprintf("templates_dir %s is not a directory", dir)}
		}
		resolver = plan.NewFSTemplates(os.DirFS(dir))
	}

	var missing []string
	for _, step := range plan.StepNames() {
		ref := path.Join(plan.GenericDir, step+plan.TemplateExt)
		if !resolver.Exists(ref) {
			missing = append(missing, ref)
		}
	}
	if len(missing) > 0 {
		return CheckResult{Name: "Templates", Message: "missing generic templates: " + strings.Join(missing, ", ")}
	}
	return CheckResult{
		Name:    "Templates",
		Passed:  true,
		Message: fmt.Sprintf("%d generic step templates (%s)", len(plan.StepNames()), sourceName(dir)),
	}
}

// CheckGenerator checks that the generator command is on PATH. An
// unconfigured generator passes: build then needs --spec.
func CheckGenerator(cmd string) CheckResult {
	if cmd == "" {
		return CheckResult{Name: "Generator", Passed: true, Message: "not configured, build needs --spec"}
	}
	resolved, err := exec.LookPath(cmd)
	if err != nil {
		return CheckResult{Name: "Generator", Message: fmt.Sprintf("%s not found in PATH", cmd)}
	}
	return CheckResult{Name: "Generator", Passed: true, Message: resolved}
}

func sourceName(path string) string {
	if path == "" {
		return "built-in"
	}
	return path
}

// FormatReport formats the health report for console output
func FormatReport(report *HealthReport) string {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	var sb strings.Builder
	for _, check := range report.Checks {
		if check.Passed {
			fmt.Fprintf(&sb, "%s %s: %s\n", green("✓"), check.Name, check.Message)
		} else {
			fmt.Fprintf(&sb, "%s %s: %s\n", red("✗"), check.Name, check.Message)
		}
	}
	return sb.String()
}
