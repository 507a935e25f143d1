// Package errors defines the failure taxonomy of the governance pipeline and
// the error object surfaced to callers. Every rejection carries a category,
// the stage that produced it, a machine-readable code and a suggestion.
package errors

import (
	"errors"
	"fmt"
)

// Category classifies why a specification was refused.
type Category int

const (
	// ContractViolation covers malformed structure, missing required fields
	// and unsupported contract versions.
	ContractViolation Category = iota
	// SchemaViolation covers structurally anomalous collections such as
	// null entries.
	SchemaViolation
	// CapabilityViolation covers capability mismatch, unsupported features,
	// exceeded limits and any rule engine error.
	CapabilityViolation
	// TransientGeneration covers generator failures that may succeed when
	// regenerated (timeouts, transport errors, malformed output).
	TransientGeneration
)

// String returns a human-readable name for the category.
func (c Category) String() string {
	switch c {
	case ContractViolation:
		return "Contract Violation"
	case SchemaViolation:
		return "Schema Violation"
	case CapabilityViolation:
		return "Capability Violation"
	case TransientGeneration:
		return "Transient Generation Failure"
	default:
		return "Error"
	}
}

// Stage names the pipeline step that raised an error.
type Stage string

const (
	StageStructural Stage = "structural"
	StageRules      Stage = "rules"
	StageBounds     Stage = "bounds"
	StageGate       Stage = "gate"
	StageGeneration Stage = "generation"
	StagePlan       Stage = "plan"
)

// GateError is the error object surfaced to callers and UIs.
type GateError struct {
	Category     Category       `json:"-"`
	Code         string         `json:"code"`
	Stage        Stage          `json:"stage"`
	Message      string         `json:"message"`
	UserMessage  string         `json:"userMessage,omitempty"`
	Suggestion   string         `json:"suggestion,omitempty"`
	Alternatives []string       `json:"alternatives,omitempty"`
	Details      map[string]any `json:"details,omitempty"`

	// Retryable marks failures that a fresh generation attempt may fix.
	Retryable bool `json:"retryable,omitempty"`

	cause error
}

// Error implements the error interface.
func (e *GateError) Error() string {
	if e.cause != nil && e.cause.Error() != e.Message {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *GateError) Unwrap() error {
	return e.cause
}

// WithDetail returns e after recording a detail value.
func (e *GateError) WithDetail(key string, value any) *GateError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithAlternatives returns e after replacing its alternatives.
func (e *GateError) WithAlternatives(alternatives ...string) *GateError {
	e.Alternatives = append([]string(nil), alternatives...)
	return e
}

// WithUserMessage returns e after setting the message shown to end users.
func (e *GateError) WithUserMessage(msg string) *GateError {
	e.UserMessage = msg
	return e
}

func newError(category Category, stage Stage, code, message, suggestion string) *GateError {
	return &GateError{
		Category:   category,
		Code:       code,
		Stage:      stage,
		Message:    message,
		Suggestion: suggestion,
	}
}

// NewContractViolation creates a ContractViolation error.
func NewContractViolation(stage Stage, code, message, suggestion string) *GateError {
	return newError(ContractViolation, stage, code, message, suggestion)
}

// NewSchemaViolation creates a SchemaViolation error.
func NewSchemaViolation(stage Stage, code, message, suggestion string) *GateError {
	return newError(SchemaViolation, stage, code, message, suggestion)
}

// NewCapabilityViolation creates a CapabilityViolation error.
func NewCapabilityViolation(stage Stage, code, message, suggestion string) *GateError {
	return newError(CapabilityViolation, stage, code, message, suggestion)
}

// NewTransientGeneration creates a retryable TransientGeneration error.
func NewTransientGeneration(code, message string, cause error) *GateError {
	e := newError(TransientGeneration, StageGeneration, code, message, "Regenerate the specification")
	e.Retryable = true
	e.cause = cause
	return e
}

// Wrap wraps err in a GateError of the given category and stage.
// A GateError passed in is returned re-tagged rather than nested.
func Wrap(err error, category Category, stage Stage, code string) *GateError {
	if err == nil {
		return nil
	}
	if ge := AsGateError(err); ge != nil {
		ge.Category = category
		ge.Stage = stage
		if code != "" {
			ge.Code = code
		}
		return ge
	}
	e := newError(category, stage, code, err.Error(), "")
	e.cause = err
	return e
}

// WrapWithMessage wraps err with an outer message.
func WrapWithMessage(err error, category Category, stage Stage, code, message string) *GateError {
	if err == nil {
		return nil
	}
	e := newError(category, stage, code, fmt.Sprintf("%s: %v", message, err), "")
	e.cause = err
	return e
}

// IsGateError reports whether err is or wraps a GateError.
func IsGateError(err error) bool {
	return AsGateError(err) != nil
}

// AsGateError extracts the GateError from err, or returns nil.
func AsGateError(err error) *GateError {
	var ge *GateError
	if errors.As(err, &ge) {
		return ge
	}
	return nil
}

// IsRetryable reports whether err may be fixed by regenerating.
func IsRetryable(err error) bool {
	ge := AsGateError(err)
	return ge != nil && ge.Retryable
}
