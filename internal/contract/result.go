package contract

import (
	gerrors "github.com/ariel-frischer/specgate/internal/errors"
)

// Severity grades a rule outcome.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is a single finding. Its JSON form is the error object surfaced to
// callers, extended with the rule and field it concerns.
type Issue struct {
	Code         string         `json:"code"`
	Stage        gerrors.Stage  `json:"stage"`
	Severity     Severity       `json:"severity"`
	RuleID       string         `json:"ruleId,omitempty"`
	Category     string         `json:"category,omitempty"`
	Field        string         `json:"field,omitempty"`
	Message      string         `json:"message"`
	UserMessage  string         `json:"userMessage,omitempty"`
	Suggestion   string         `json:"suggestion,omitempty"`
	Alternatives []string       `json:"alternatives,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
}

// IssueFromError converts a GateError into an error-severity issue.
func IssueFromError(e *gerrors.GateError) Issue {
	return Issue{
		Code:         e.Code,
		Stage:        e.Stage,
		Severity:     SeverityError,
		Message:      e.Message,
		UserMessage:  e.UserMessage,
		Suggestion:   e.Suggestion,
		Alternatives: e.Alternatives,
		Details:      e.Details,
	}
}

// AsError converts the issue into a GateError of the given category.
func (i Issue) AsError(category gerrors.Category) *gerrors.GateError {
	return &gerrors.GateError{
		Category:     category,
		Code:         i.Code,
		Stage:        i.Stage,
		Message:      i.Message,
		UserMessage:  i.UserMessage,
		Suggestion:   i.Suggestion,
		Alternatives: i.Alternatives,
		Details:      i.Details,
	}
}

// Downgrade is a violation with a deterministic automatic correction.
type Downgrade struct {
	RuleID  string `json:"ruleId"`
	Field   string `json:"field"`
	From    string `json:"from"`
	To      string `json:"to"`
	Message string `json:"message"`
}

// RuleOutcome records what one rule did during one evaluation.
type RuleOutcome struct {
	RuleID     string   `json:"ruleId"`
	Severity   Severity `json:"severity"`
	Fired      bool     `json:"fired"`
	Downgraded bool     `json:"downgraded,omitempty"`
}

// ValidationResult aggregates one validation call. It is never cached
// across specifications.
type ValidationResult struct {
	IsValid       bool          `json:"isValid"`
	Errors        []Issue       `json:"errors"`
	Warnings      []Issue       `json:"warnings"`
	Downgrades    []Downgrade   `json:"downgrades"`
	TotalRules    int           `json:"totalRules"`
	ExecutedRules int           `json:"executedRules"`
	PassedRules   int           `json:"passedRules"`
	Outcomes      []RuleOutcome `json:"outcomes,omitempty"`
}

// NewValidationResult returns an empty, valid result.
func NewValidationResult() *ValidationResult {
	return &ValidationResult{
		IsValid:    true,
		Errors:     []Issue{},
		Warnings:   []Issue{},
		Downgrades: []Downgrade{},
	}
}

// AddError records an error and marks the result invalid.
func (r *ValidationResult) AddError(issue Issue) {
	issue.Severity = SeverityError
	r.Errors = append(r.Errors, issue)
	r.IsValid = false
}

// AddWarning records a non-blocking finding.
func (r *ValidationResult) AddWarning(issue Issue) {
	if issue.Severity == "" || issue.Severity == SeverityError {
		issue.Severity = SeverityWarning
	}
	r.Warnings = append(r.Warnings, issue)
}

// AddDowngrade records an automatically correctable violation.
func (r *ValidationResult) AddDowngrade(d Downgrade) {
	r.Downgrades = append(r.Downgrades, d)
}

// HasErrors returns true if there are any errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Merge folds other's findings into r. Rule counters are kept from r.
func (r *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	for _, e := range other.Errors {
		r.AddError(e)
	}
	r.Warnings = append(r.Warnings, other.Warnings...)
	r.Downgrades = append(r.Downgrades, other.Downgrades...)
}

// PlanStep is one generation step of an execution plan.
type PlanStep struct {
	Order       int    `json:"order"`
	Name        string `json:"name"`
	TemplateRef string `json:"templateRef"`
	OutputPath  string `json:"outputPath"`
	Required    bool   `json:"required"`
}

// ExecutionPlan is the terminal artifact handed to code generation.
type ExecutionPlan struct {
	Version          string            `json:"version"`
	BuildID          string            `json:"buildId"`
	Strategy         string            `json:"strategy"`
	Steps            []PlanStep        `json:"steps"`
	Specification    *Specification    `json:"specification"`
	ValidationReport *ValidationResult `json:"validationReport,omitempty"`
}
