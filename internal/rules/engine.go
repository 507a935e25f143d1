package rules

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ariel-frischer/specgate/internal/contract"
	gerrors "github.com/ariel-frischer/specgate/internal/errors"
)

// Engine evaluates a registry against specifications. It holds no
// per-call state.
type Engine struct {
	registry *Registry
	logger   *zap.Logger
}

// NewEngine creates an engine over reg. A nil logger disables logging.
func NewEngine(reg *Registry, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{registry: reg, logger: logger}
}

// Registry returns the engine's rule registry.
func (e *Engine) Registry() *Registry { return e.registry }

// Evaluate runs every registered rule against spec and partitions the
// outcomes into errors, warnings and downgrades. capability may be nil when
// the matched capability is unknown. Cancellation is only honored before
// evaluation starts.
func (e *Engine) Evaluate(ctx context.Context, spec *contract.Specification, capability *contract.Capability) (*contract.ValidationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := contract.NewValidationResult()
	result.TotalRules = e.registry.Len()
	result.Outcomes = make([]contract.RuleOutcome, 0, e.registry.Len())

	subject := Subject{Spec: spec, Capability: capability}
	firedErrors := 0

	for _, rule := range e.registry.rules {
		findings := rule.Check(subject)
		result.ExecutedRules++

		outcome := contract.RuleOutcome{RuleID: rule.ID, Severity: rule.Severity, Fired: len(findings) > 0}
		switch {
		case !outcome.Fired:
		case rule.AutoFixable:
			outcome.Downgraded = true
			for _, f := range findings {
				result.AddDowngrade(contract.Downgrade{
					RuleID:  rule.ID,
					Field:   f.Field,
					From:    f.Value,
					To:      f.Fix,
					Message: render(rule.Message, f, subject),
				})
			}
		case rule.Severity == contract.SeverityError:
			firedErrors++
			for _, f := range findings {
				result.AddError(e.issue(rule, f, subject))
			}
		default:
			for _, f := range findings {
				issue := e.issue(rule, f, subject)
				issue.Severity = rule.Severity
				result.AddWarning(issue)
			}
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	result.PassedRules = result.TotalRules - firedErrors

	e.logger.Debug("rules evaluated",
		zap.String("component", spec.Component.Name),
		zap.String("registry_version", e.registry.version),
		zap.Int("total", result.TotalRules),
		zap.Int("passed", result.PassedRules),
		zap.Int("errors", len(result.Errors)),
		zap.Int("warnings", len(result.Warnings)),
		zap.Int("downgrades", len(result.Downgrades)))

	return result, nil
}

func (e *Engine) issue(rule Rule, f Finding, s Subject) contract.Issue {
	issue := contract.Issue{
		Code:       RuleCode(rule.ID),
		Stage:      gerrors.StageRules,
		RuleID:     rule.ID,
		Category:   rule.Category,
		Field:      f.Field,
		Message:    render(rule.Message, f, s),
		Suggestion: render(rule.Suggestion, f, s),
	}
	if values, ok := f.Vars["values"]; ok {
		issue.Alternatives = strings.Split(values, ", ")
	}
	if f.Value != "" {
		issue.Details = map[string]any{"value": f.Value}
	}
	return issue
}

// RuleCode derives the machine-readable code of a rule id.
func RuleCode(id string) string {
	return "RULE_" + strings.ToUpper(strings.ReplaceAll(id, "-", "_"))
}

// render substitutes {placeholders} in a message template.
func render(tmpl string, f Finding, s Subject) string {
	if tmpl == "" {
		return ""
	}
	pairs := []string{
		"{field}", f.Field,
		"{value}", quote(f.Value),
		"{fix}", f.Fix,
		"{component}", s.Spec.Component.Name,
	}
	capability := s.Spec.CapabilityID
	if s.Capability != nil {
		capability = s.Capability.CapabilityID
	}
	pairs = append(pairs, "{capability}", capability)
	for k, v := range f.Vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

func quote(s string) string {
	return `"` + s + `"`
}
