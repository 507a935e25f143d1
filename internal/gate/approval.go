package gate

import (
	"github.com/ariel-frischer/specgate/internal/contract"
	gerrors "github.com/ariel-frischer/specgate/internal/errors"
)

// Approval is the evidence that a specification passed the gate for one
// capability. Only the gate issues it; a zero Approval is not approved.
type Approval struct {
	spec         *contract.Specification
	capabilityID string
	report       *contract.ValidationResult
}

// Valid reports whether a was issued by the gate.
func (a *Approval) Valid() bool {
	return a != nil && a.spec != nil && a.capabilityID != ""
}

// Specification returns a copy of the approved, corrected specification.
func (a *Approval) Specification() *contract.Specification {
	if !a.Valid() {
		return nil
	}
	return a.spec.Clone()
}

// CapabilityID returns the capability the specification was approved for.
func (a *Approval) CapabilityID() string {
	if a == nil {
		return ""
	}
	return a.capabilityID
}

// Report returns the rule and bounds report of the approving evaluation.
func (a *Approval) Report() *contract.ValidationResult {
	if a == nil {
		return nil
	}
	return a.report
}

// Approval returns the verdict's approval, or the refusal as an error when
// the candidate was not approved.
func (v *Verdict) Approval() (*Approval, error) {
	if v.approval == nil {
		if err := v.Err(); err != nil {
			return nil, err
		}
		return nil, gerrors.Unapproved()
	}
	return v.approval, nil
}
