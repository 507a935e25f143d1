// Package bounds enforces a capability's declared surface on a
// specification: requested features must be supported, customizations must
// respect numeric and enumerated limits, and forbidden behaviors are
// surfaced as advisories. Values are never clamped.
package bounds

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ariel-frischer/specgate/internal/contract"
	gerrors "github.com/ariel-frischer/specgate/internal/errors"
)

// Limit key prefixes. A customization "stars" is checked against the
// numeric limit "maxStars" and the enumerated limit "allowedStars".
const (
	MaxPrefix     = "max"
	AllowedPrefix = "allowed"
)

// Report is the outcome of one bounds check.
type Report struct {
	Errors   []contract.Issue `json:"errors"`
	Warnings []contract.Issue `json:"warnings"`
}

// Valid reports whether no bound was violated.
func (r *Report) Valid() bool {
	return len(r.Errors) == 0
}

// Advisories returns the forbidden-behavior warnings.
func (r *Report) Advisories() []contract.Issue {
	var out []contract.Issue
	for _, w := range r.Warnings {
		if w.Code == gerrors.CodeForbiddenAdvisory {
			out = append(out, w)
		}
	}
	return out
}

// Merge folds the report into a validation result.
func (r *Report) Merge(result *contract.ValidationResult) {
	for _, e := range r.Errors {
		result.AddError(e)
	}
	for _, w := range r.Warnings {
		result.AddWarning(w)
	}
}

// Validate checks spec against capability. It returns an error only when
// ctx is already done or no capability is given.
func Validate(ctx context.Context, spec *contract.Specification, capability *contract.Capability) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if capability == nil {
		return nil, fmt.Errorf("bounds: no capability to validate against")
	}

	r := &Report{Errors: []contract.Issue{}, Warnings: []contract.Issue{}}
	checkFeatures(r, spec, capability)
	checkCustomizations(r, spec, capability)
	checkForbidden(r, capability)
	return r, nil
}

func checkFeatures(r *Report, spec *contract.Specification, capability *contract.Capability) {
	for i, feature := range spec.Features {
		if capability.SupportsFeature(feature) {
			continue
		}
		e := gerrors.NewCapabilityViolation(gerrors.StageBounds, gerrors.CodeUnsupportedFeature,
			fmt.Sprintf("feature %q is not supported by capability %q", feature, capability.CapabilityID),
			"Remove the feature or use one of: "+strings.Join(capability.SupportedFeatures, ", ")).
			WithAlternatives(capability.SupportedFeatures...).
			WithDetail("feature", feature)
		r.addError(e, fmt.Sprintf("features[%d]", i))
	}
}

func checkCustomizations(r *Report, spec *contract.Specification, capability *contract.Capability) {
	for _, key := range spec.CustomizationKeys() {
		value := spec.Customizations[key]
		field := "customizations." + key

		maxKey := MaxPrefix + capitalize(key)
		if limit, ok := capability.Limits[maxKey]; ok {
			if e := checkNumeric(key, maxKey, value, limit); e != nil {
				r.addError(e, field)
			}
		}

		allowedKey := AllowedPrefix + capitalize(key)
		if limit, ok := capability.Limits[allowedKey]; ok {
			if e := checkAllowed(key, allowedKey, value, limit); e != nil {
				r.addError(e, field)
			}
		}
	}
}

func checkNumeric(key, limitKey string, value, limit contract.Value) *gerrors.GateError {
	ceiling, ok := limit.Number()
	if !ok {
		// A non-numeric max* limit is registry data we cannot interpret.
		return nil
	}
	n, ok := value.Number()
	if !ok {
		return gerrors.NewCapabilityViolation(gerrors.StageBounds, gerrors.CodeLimitType,
			fmt.Sprintf("customization %q is %s but %s is a numeric limit", key, value.Kind(), limitKey),
			fmt.Sprintf("Set %q to a number no greater than %s", key, formatNumber(ceiling))).
			WithDetail("key", key).
			WithDetail("limit", limitKey)
	}
	if n <= ceiling {
		return nil
	}
	return gerrors.NewCapabilityViolation(gerrors.StageBounds, gerrors.CodeLimitExceeded,
		fmt.Sprintf("customization %q is %s, above the %s limit of %s", key, formatNumber(n), limitKey, formatNumber(ceiling)),
		fmt.Sprintf("Lower %q to %s or less", key, formatNumber(ceiling))).
		WithDetail("key", key).
		WithDetail("value", n).
		WithDetail("limit", ceiling)
}

func checkAllowed(key, limitKey string, value, limit contract.Value) *gerrors.GateError {
	options, ok := limit.Options()
	if !ok {
		return nil
	}
	s, ok := value.Str()
	if !ok {
		return gerrors.NewCapabilityViolation(gerrors.StageBounds, gerrors.CodeLimitType,
			fmt.Sprintf("customization %q is %s but %s lists string options", key, value.Kind(), limitKey),
			fmt.Sprintf("Set %q to one of: %s", key, strings.Join(options, ", "))).
			WithAlternatives(options...).
			WithDetail("key", key).
			WithDetail("limit", limitKey)
	}
	for _, o := range options {
		if o == s {
			return nil
		}
	}
	return gerrors.NewCapabilityViolation(gerrors.StageBounds, gerrors.CodeValueNotAllowed,
		fmt.Sprintf("customization %q value %q is not in %s", key, s, limitKey),
		fmt.Sprintf("Set %q to one of: %s", key, strings.Join(options, ", "))).
		WithAlternatives(options...).
		WithDetail("key", key).
		WithDetail("value", s)
}

func checkForbidden(r *Report, capability *contract.Capability) {
	for _, fb := range capability.Forbidden {
		issue := contract.Issue{
			Code:     gerrors.CodeForbiddenAdvisory,
			Stage:    gerrors.StageBounds,
			Severity: contract.SeverityWarning,
			Category: "forbidden",
			Message:  fmt.Sprintf("capability %q forbids %s: %s", capability.CapabilityID, fb.Behavior, fb.Reason),
			Details:  map[string]any{"behavior": fb.Behavior},
		}
		if fb.Alternative != "" {
			issue.Suggestion = "Instead, " + fb.Alternative
			issue.Alternatives = []string{fb.Alternative}
		}
		r.Warnings = append(r.Warnings, issue)
	}
}

func (r *Report) addError(e *gerrors.GateError, field string) {
	issue := contract.IssueFromError(e)
	issue.Field = field
	r.Errors = append(r.Errors, issue)
}

func capitalize(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	if first == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(first)) + s[size:]
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
