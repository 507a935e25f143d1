// Package gate is the trust boundary between generated specifications and
// the build. It re-validates every candidate from raw bytes, ignoring any
// validity the producer claims, and returns exactly one decision.
package gate

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ariel-frischer/specgate/internal/bounds"
	"github.com/ariel-frischer/specgate/internal/contract"
	gerrors "github.com/ariel-frischer/specgate/internal/errors"
	"github.com/ariel-frischer/specgate/internal/rules"
	"github.com/ariel-frischer/specgate/internal/structural"
)

// Decision is the gate's single outcome for a candidate.
type Decision string

const (
	Approve Decision = "approve"
	Reject  Decision = "reject"
	Retry   Decision = "retry"
)

// Verdict is the full account of one gate evaluation.
type Verdict struct {
	Decision   Decision             `json:"decision"`
	Code       string               `json:"code,omitempty"`
	Stage      gerrors.Stage        `json:"stage,omitempty"`
	Reason     string               `json:"reason,omitempty"`
	Suggestion string               `json:"suggestion,omitempty"`
	Errors     []contract.Issue     `json:"errors"`
	Warnings   []contract.Issue     `json:"warnings"`
	Advisories []contract.Issue     `json:"advisories,omitempty"`
	Downgrades []contract.Downgrade `json:"downgrades,omitempty"`

	// Specification is the approved candidate with downgrades applied.
	// It is nil unless Decision is Approve.
	Specification *contract.Specification `json:"specification,omitempty"`
	// Result is the rule and bounds report. It is nil when the candidate
	// never decoded.
	Result *contract.ValidationResult `json:"result,omitempty"`

	category gerrors.Category
	approval *Approval
}

// Approved reports whether the candidate may proceed to planning.
func (v *Verdict) Approved() bool { return v.Decision == Approve }

// Err returns the verdict as an error, or nil when approved.
func (v *Verdict) Err() *gerrors.GateError {
	if v.Decision == Approve {
		return nil
	}
	e := &gerrors.GateError{
		Category:   v.category,
		Code:       v.Code,
		Stage:      v.Stage,
		Message:    v.Reason,
		Suggestion: v.Suggestion,
		Retryable:  v.Decision == Retry,
	}
	if len(v.Errors) > 0 {
		e.Alternatives = v.Errors[0].Alternatives
		e.UserMessage = v.Errors[0].UserMessage
		e.Details = map[string]any{"errors": len(v.Errors)}
	}
	return e
}

// Rejected builds a reject verdict for a failure raised outside the gate,
// such as exhausted generation retries.
func Rejected(ge *gerrors.GateError) *Verdict {
	return &Verdict{
		Decision:   Reject,
		Code:       ge.Code,
		Stage:      ge.Stage,
		Reason:     ge.Message,
		Suggestion: ge.Suggestion,
		Errors:     []contract.Issue{contract.IssueFromError(ge)},
		Warnings:   []contract.Issue{},
		category:   ge.Category,
	}
}

// Gate evaluates candidates with a shared rule engine. It is safe for
// concurrent use.
type Gate struct {
	engine *rules.Engine
	logger *zap.Logger
}

// New creates a gate. A nil logger disables logging.
func New(engine *rules.Engine, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{engine: engine, logger: logger}
}

// Evaluate decodes raw and decides whether it may be built for selected.
// The returned error is non-nil only when ctx is done before evaluation or
// no capability was selected.
func (g *Gate) Evaluate(ctx context.Context, raw []byte, selected *contract.Capability) (*Verdict, error) {
	if err := g.precheck(ctx, selected); err != nil {
		return nil, err
	}

	spec, err := structural.Decode(ctx, raw)
	if err != nil {
		return g.structuralVerdict(ctx, err)
	}
	return g.evaluate(ctx, spec, selected)
}

// EvaluateYAML is Evaluate for a YAML payload.
func (g *Gate) EvaluateYAML(ctx context.Context, raw []byte, selected *contract.Capability) (*Verdict, error) {
	if err := g.precheck(ctx, selected); err != nil {
		return nil, err
	}

	spec, err := structural.DecodeYAML(ctx, raw)
	if err != nil {
		return g.structuralVerdict(ctx, err)
	}
	return g.evaluate(ctx, spec, selected)
}

// EvaluateSpec is Evaluate for a candidate decoded elsewhere. Structural
// checks run again.
func (g *Gate) EvaluateSpec(ctx context.Context, spec *contract.Specification, selected *contract.Capability) (*Verdict, error) {
	if err := g.precheck(ctx, selected); err != nil {
		return nil, err
	}
	if err := structural.Check(spec); err != nil {
		return g.structuralVerdict(ctx, err)
	}
	return g.evaluate(ctx, spec, selected)
}

func (g *Gate) precheck(ctx context.Context, selected *contract.Capability) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if selected == nil {
		return fmt.Errorf("gate: no capability selected")
	}
	return nil
}

func (g *Gate) structuralVerdict(ctx context.Context, err error) (*Verdict, error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	ge := gerrors.AsGateError(err)
	if ge == nil {
		ge = gerrors.Malformed(err)
	}

	decision := Reject
	if ge.Retryable {
		decision = Retry
	}
	v := &Verdict{
		Decision:   decision,
		Code:       ge.Code,
		Stage:      ge.Stage,
		Reason:     ge.Error(),
		Suggestion: ge.Suggestion,
		Errors:     []contract.Issue{contract.IssueFromError(ge)},
		Warnings:   []contract.Issue{},
		category:   ge.Category,
	}
	g.logVerdict(v, "")
	return v, nil
}

func (g *Gate) evaluate(ctx context.Context, spec *contract.Specification, selected *contract.Capability) (*Verdict, error) {
	if spec.Validation != nil {
		g.logger.Debug("ignoring self-reported validity",
			zap.String("component", spec.Component.Name),
			zap.String("generated_by", spec.Validation.GeneratedBy),
			zap.Bool("self_reported_valid", spec.Validation.SelfReportedValid))
	}

	result := contract.NewValidationResult()

	// The mismatch is decisive, but rules and bounds still run so the
	// report shows everything wrong with the candidate.
	var mismatch *gerrors.GateError
	if spec.CapabilityID != selected.CapabilityID {
		mismatch = gerrors.CapabilityMismatch(selected.CapabilityID, spec.CapabilityID)
		result.AddError(contract.IssueFromError(mismatch))
	}

	ruleResult, err := g.engine.Evaluate(ctx, spec, selected)
	if err != nil {
		return nil, err
	}
	result.Merge(ruleResult)
	result.TotalRules = ruleResult.TotalRules
	result.ExecutedRules = ruleResult.ExecutedRules
	result.PassedRules = ruleResult.PassedRules
	result.Outcomes = ruleResult.Outcomes

	report, err := bounds.Validate(ctx, spec, selected)
	if err != nil {
		return nil, err
	}
	report.Merge(result)

	v := &Verdict{
		Errors:     result.Errors,
		Warnings:   result.Warnings,
		Advisories: report.Advisories(),
		Downgrades: result.Downgrades,
		Result:     result,
		category:   gerrors.CapabilityViolation,
	}

	switch {
	case mismatch != nil:
		v.Decision = Reject
		v.Code = mismatch.Code
		v.Stage = mismatch.Stage
		v.Reason = mismatch.Message
		v.Suggestion = mismatch.Suggestion
	case result.HasErrors():
		v.reject(result.Errors)
	default:
		fixed, err := g.correct(ctx, spec, selected, result)
		if err != nil {
			return nil, err
		}
		if result.HasErrors() {
			v.Errors = result.Errors
			v.reject(result.Errors)
			break
		}
		v.Decision = Approve
		v.Specification = fixed
		v.approval = &Approval{spec: fixed.Clone(), capabilityID: selected.CapabilityID, report: result}
	}

	g.logVerdict(v, spec.Component.Name)
	return v, nil
}

func (v *Verdict) reject(errs []contract.Issue) {
	first := errs[0]
	v.Decision = Reject
	v.Code = first.Code
	v.Stage = first.Stage
	v.Reason = rejectReason(errs)
	v.Suggestion = first.Suggestion
}

// correct applies the downgrades in result and evaluates the rules again on
// the corrected specification. Errors found on the second pass, such as two
// properties re-cased to the same name, are added to result.
func (g *Gate) correct(ctx context.Context, spec *contract.Specification, selected *contract.Capability, result *contract.ValidationResult) (*contract.Specification, error) {
	fixed, err := rules.ApplyDowngrades(spec, result.Downgrades)
	if err != nil {
		return nil, fmt.Errorf("gate: %w", err)
	}
	if len(result.Downgrades) == 0 {
		return fixed, nil
	}

	again, err := g.engine.Evaluate(context.WithoutCancel(ctx), fixed, selected)
	if err != nil {
		return nil, fmt.Errorf("gate: re-evaluating corrections: %w", err)
	}

	fired := make(map[string]bool)
	for _, issue := range again.Errors {
		issue.Message += " after automatic corrections"
		result.AddError(issue)
		fired[issue.RuleID] = true
	}
	for i := range result.Outcomes {
		o := &result.Outcomes[i]
		if fired[o.RuleID] && !o.Fired {
			o.Fired = true
			result.PassedRules--
		}
	}
	return fixed, nil
}

func rejectReason(errs []contract.Issue) string {
	if len(errs) == 1 {
		return errs[0].Message
	}
	return fmt.Sprintf("%s (and %d more)", errs[0].Message, len(errs)-1)
}

func (g *Gate) logVerdict(v *Verdict, component string) {
	fields := []zap.Field{
		zap.String("decision", string(v.Decision)),
		zap.String("component", component),
		zap.Int("errors", len(v.Errors)),
		zap.Int("warnings", len(v.Warnings)),
		zap.Int("downgrades", len(v.Downgrades)),
	}
	if v.Decision == Approve {
		g.logger.Info("specification approved", fields...)
		return
	}
	fields = append(fields, zap.String("code", v.Code), zap.String("stage", string(v.Stage)))
	g.logger.Info("specification refused", fields...)
}
