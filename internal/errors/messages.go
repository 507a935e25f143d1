package errors

import (
	"fmt"
	"strings"
)

// Codes shared across packages.
const (
	CodeMalformed           = "CONTRACT_MALFORMED"
	CodeMissingField        = "CONTRACT_MISSING_FIELD"
	CodeVersionUnsupported  = "CONTRACT_VERSION_UNSUPPORTED"
	CodeMissingCollection   = "SCHEMA_MISSING_COLLECTION"
	CodeNullEntry           = "SCHEMA_NULL_ENTRY"
	CodeCapabilityMismatch  = "CAPABILITY_MISMATCH"
	CodeUnsupportedFeature  = "CAPABILITY_UNSUPPORTED_FEATURE"
	CodeLimitExceeded       = "CAPABILITY_LIMIT_EXCEEDED"
	CodeLimitType           = "CAPABILITY_LIMIT_TYPE"
	CodeValueNotAllowed     = "CAPABILITY_VALUE_NOT_ALLOWED"
	CodeForbiddenAdvisory   = "CAPABILITY_FORBIDDEN_ADVISORY"
	CodeRuleViolation       = "RULE_VIOLATION"
	CodeGeneratorFailed     = "GENERATION_FAILED"
	CodeGenerationExhausted = "GENERATION_EXHAUSTED"
	CodeUnknownCapability   = "CAPABILITY_UNKNOWN"
	CodePlanDrift           = "PLAN_DRIFT"
	CodeTemplateMissing     = "PLAN_TEMPLATE_MISSING"
	CodePlanUnapproved      = "PLAN_UNAPPROVED"
)

// Malformed reports a payload that does not decode into the contract shape.
func Malformed(cause error) *GateError {
	e := NewContractViolation(StageStructural, CodeMalformed,
		"specification does not decode into the expected shape",
		"Regenerate the specification as a single JSON object matching the contract")
	e.Retryable = true
	e.cause = cause
	return e.WithUserMessage("The generated component description was unreadable.")
}

// MissingField reports an empty required scalar field.
func MissingField(field string) *GateError {
	return NewContractViolation(StageStructural, CodeMissingField,
		fmt.Sprintf("required field %q is missing or empty", field),
		fmt.Sprintf("Provide a non-empty value for %q", field)).
		WithDetail("field", field)
}

// UnsupportedVersion reports a contract version outside the supported range.
func UnsupportedVersion(got, want string) *GateError {
	if got == "" {
		got = "<missing>"
	}
	return NewContractViolation(StageStructural, CodeVersionUnsupported,
		fmt.Sprintf("contract version %s is not supported (want %s)", got, want),
		fmt.Sprintf("Regenerate against contract version %s", want)).
		WithDetail("version", got).
		WithDetail("supported", want)
}

// MissingCollection reports an absent collection field.
func MissingCollection(field string) *GateError {
	return NewSchemaViolation(StageStructural, CodeMissingCollection,
		fmt.Sprintf("collection %q must be present (it may be empty)", field),
		fmt.Sprintf("Emit %q as an array", field)).
		WithDetail("field", field)
}

// NullEntry reports a null element inside a collection.
func NullEntry(field string, index int) *GateError {
	return NewSchemaViolation(StageStructural, CodeNullEntry,
		fmt.Sprintf("%s[%d] is null", field, index),
		fmt.Sprintf("Remove null entries from %q", field)).
		WithDetail("field", field).
		WithDetail("index", index)
}

// CapabilityMismatch reports a specification targeting a different
// capability than the one selected for this run.
func CapabilityMismatch(selected, got string) *GateError {
	return NewCapabilityViolation(StageGate, CodeCapabilityMismatch,
		fmt.Sprintf("specification targets capability %q but %q was selected", got, selected),
		fmt.Sprintf("Regenerate the specification for capability %q", selected)).
		WithAlternatives(selected).
		WithDetail("selected", selected).
		WithDetail("received", got).
		WithUserMessage("The generated component does not match the requested component type.")
}

// UnknownCapability reports a capability id absent from the registry.
func UnknownCapability(id string, known []string) *GateError {
	return NewCapabilityViolation(StageGate, CodeUnknownCapability,
		fmt.Sprintf("capability %q is not registered", id),
		"Choose one of the registered capabilities: "+strings.Join(known, ", ")).
		WithAlternatives(known...)
}

// GenerationExhausted escalates repeated transient failures to a rejection.
func GenerationExhausted(attempts int, cause error) *GateError {
	e := NewTransientGeneration(CodeGenerationExhausted,
		fmt.Sprintf("generation failed after %d attempts", attempts), cause)
	e.Retryable = false
	e.Suggestion = "Check the generator and try again later"
	return e.WithDetail("attempts", attempts)
}

// Unapproved reports a plan request for a specification the gate did not
// approve.
func Unapproved() *GateError {
	return NewContractViolation(StagePlan, CodePlanUnapproved,
		"specification has not been approved by the gate",
		"Evaluate the candidate with the gate and plan only approved verdicts")
}
