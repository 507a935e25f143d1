package rules

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ariel-frischer/specgate/internal/contract"
)

// Finding is one place where a rule's condition fired.
type Finding struct {
	Field string
	Value string
	// Fix is the corrected value for auto-fixable rules.
	Fix string
	// Vars are extra message placeholders.
	Vars map[string]string
}

// Check is a compiled rule predicate. An empty result means the rule passed.
type Check func(Subject) []Finding

// checkBuilders maps a declarative check kind to its compiler.
var checkBuilders = map[string]func(Definition) (Check, error){
	"pattern":        buildPattern,
	"length":         buildLength,
	"one_of":         buildOneOf,
	"present":        buildPresent,
	"unique":         buildUnique,
	"max_count":      buildMaxCount,
	"bound_required": buildBoundRequired,
}

// CheckKinds lists the supported check kinds.
func CheckKinds() []string {
	kinds := make([]string, 0, len(checkBuilders))
	for k := range checkBuilders {
		kinds = append(kinds, k)
	}
	return kinds
}

func buildPattern(d Definition) (Check, error) {
	if d.Params.Pattern == "" {
		return nil, fmt.Errorf("pattern check needs params.pattern")
	}
	re, err := regexp.Compile(d.Params.Pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling pattern: %w", err)
	}
	resolve, err := compileTarget(d.Target)
	if err != nil {
		return nil, err
	}
	var fix fixer
	if d.AutoFixable {
		if fix, err = lookupFixer(d.Fix); err != nil {
			return nil, err
		}
	}

	return func(s Subject) []Finding {
		var out []Finding
		for i, v := range resolve(s.Spec) {
			if re.MatchString(v.value) {
				continue
			}
			f := Finding{Field: v.path, Value: v.value, Vars: map[string]string{"pattern": d.Params.Pattern}}
			if fix != nil {
				f.Fix = fix(v.value, i)
			}
			out = append(out, f)
		}
		return out
	}, nil
}

func buildLength(d Definition) (Check, error) {
	if d.Params.Max < d.Params.Min {
		return nil, fmt.Errorf("length check has max %d below min %d", d.Params.Max, d.Params.Min)
	}
	resolve, err := compileTarget(d.Target)
	if err != nil {
		return nil, err
	}
	bounds := map[string]string{
		"min": strconv.Itoa(d.Params.Min),
		"max": strconv.Itoa(d.Params.Max),
	}

	return func(s Subject) []Finding {
		var out []Finding
		for _, v := range resolve(s.Spec) {
			n := utf8.RuneCountInString(v.value)
			if n >= d.Params.Min && n <= d.Params.Max {
				continue
			}
			vars := map[string]string{"count": strconv.Itoa(n)}
			for k, b := range bounds {
				vars[k] = b
			}
			out = append(out, Finding{Field: v.path, Value: v.value, Vars: vars})
		}
		return out
	}, nil
}

func buildOneOf(d Definition) (Check, error) {
	if len(d.Params.Values) == 0 {
		return nil, fmt.Errorf("one_of check needs params.values")
	}
	resolve, err := compileTarget(d.Target)
	if err != nil {
		return nil, err
	}
	allowed := make(map[string]bool, len(d.Params.Values))
	for _, v := range d.Params.Values {
		allowed[v] = true
	}
	joined := strings.Join(d.Params.Values, ", ")

	return func(s Subject) []Finding {
		var out []Finding
		for _, v := range resolve(s.Spec) {
			if allowed[v.value] {
				continue
			}
			out = append(out, Finding{Field: v.path, Value: v.value, Vars: map[string]string{"values": joined}})
		}
		return out
	}, nil
}

func buildPresent(d Definition) (Check, error) {
	resolve, err := compileTarget(d.Target)
	if err != nil {
		return nil, err
	}
	return func(s Subject) []Finding {
		var out []Finding
		for _, v := range resolve(s.Spec) {
			if strings.TrimSpace(v.value) == "" {
				out = append(out, Finding{Field: v.path, Value: v.value})
			}
		}
		return out
	}, nil
}

func buildUnique(d Definition) (Check, error) {
	resolve, err := compileTarget(d.Target)
	if err != nil {
		return nil, err
	}
	return func(s Subject) []Finding {
		seen := make(map[string]bool)
		reported := make(map[string]bool)
		var out []Finding
		for _, v := range resolve(s.Spec) {
			if v.value == "" {
				continue
			}
			if seen[v.value] && !reported[v.value] {
				reported[v.value] = true
				out = append(out, Finding{Field: v.path, Value: v.value})
			}
			seen[v.value] = true
		}
		return out
	}, nil
}

func buildMaxCount(d Definition) (Check, error) {
	if d.Target != "properties" {
		return nil, fmt.Errorf("max_count only supports target properties, got %q", d.Target)
	}
	if d.Params.Max <= 0 {
		return nil, fmt.Errorf("max_count check needs a positive params.max")
	}
	return func(s Subject) []Finding {
		n := len(s.Spec.Properties)
		if n <= d.Params.Max {
			return nil
		}
		return []Finding{{
			Field: "properties",
			Value: strconv.Itoa(n),
			Vars:  map[string]string{"count": strconv.Itoa(n), "max": strconv.Itoa(d.Params.Max)},
		}}
	}, nil
}

func buildBoundRequired(d Definition) (Check, error) {
	if d.Target != "properties" {
		return nil, fmt.Errorf("bound_required only supports target properties, got %q", d.Target)
	}
	return func(s Subject) []Finding {
		capID := s.Spec.CapabilityID
		if s.Capability != nil {
			capID = s.Capability.CapabilityID
			if !s.Capability.Classification.RequiresBinding() {
				return nil
			}
		}
		if s.Spec.HasUsage(contract.UsageBound) {
			return nil
		}
		return []Finding{{
			Field: "properties",
			Vars:  map[string]string{"capability": capID},
		}}
	}, nil
}
