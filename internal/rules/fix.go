package rules

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/ariel-frischer/specgate/internal/contract"
)

// fixer computes the corrected form of value. index is the position of the
// value within its target, used to synthesize names for empty input.
type fixer func(value string, index int) string

var fixers = map[string]fixer{
	"lower_camel": func(v string, index int) string {
		if out := LowerCamel(v); out != "" {
			return out
		}
		return "property" + strconv.Itoa(index+1)
	},
}

func lookupFixer(name string) (fixer, error) {
	f, ok := fixers[name]
	if !ok {
		return nil, fmt.Errorf("unknown fix %q", name)
	}
	return f, nil
}

// LowerCamel re-cases an identifier to ^[a-z][a-zA-Z0-9]*$. Separators
// start new words; a leading acronym is lowered as a unit ("URLValue" becomes
// "urlValue"). Names that would start with a digit get a "p" prefix. An
// input without letters or digits yields "".
func LowerCamel(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return !(r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)))
	})
	if len(words) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, w := range words {
		if i == 0 {
			sb.WriteString(lowerLeading(w))
			continue
		}
		sb.WriteString(strings.ToUpper(w[:1]) + w[1:])
	}

	out := sb.String()
	if out[0] >= '0' && out[0] <= '9' {
		out = "p" + out
	}
	return out
}

// lowerLeading lowers the leading uppercase run of w, keeping the last
// capital when it starts the next word.
func lowerLeading(w string) string {
	runes := []rune(w)
	n := 0
	for n < len(runes) && unicode.IsUpper(runes[n]) {
		n++
	}
	switch {
	case n == 0:
		return w
	case n == len(runes):
		return strings.ToLower(w)
	case n > 1 && unicode.IsLower(runes[n]):
		n--
	}
	for i := 0; i < n; i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}

var propertyFieldPattern = regexp.MustCompile(`^properties\[(\d+)\]\.(\w+)$`)

// ApplyDowngrades returns a copy of spec with every downgrade's correction
// applied. The input is never modified. Downgrades whose field cannot be
// addressed are returned as errors.
func ApplyDowngrades(spec *contract.Specification, downgrades []contract.Downgrade) (*contract.Specification, error) {
	out := spec.Clone()
	for _, d := range downgrades {
		if err := setField(out, d.Field, d.From, d.To); err != nil {
			return nil, fmt.Errorf("applying %s: %w", d.RuleID, err)
		}
	}
	return out, nil
}

func setField(spec *contract.Specification, field, from, to string) error {
	m := propertyFieldPattern.FindStringSubmatch(field)
	if m == nil {
		return fmt.Errorf("field %q is not auto-fixable", field)
	}
	idx, _ := strconv.Atoi(m[1])
	if idx >= len(spec.Properties) || spec.Properties[idx] == nil {
		return fmt.Errorf("field %q is out of range", field)
	}
	pt, ok := propertyTargets["properties[]."+m[2]]
	if !ok {
		return fmt.Errorf("field %q is not auto-fixable", field)
	}
	p := spec.Properties[idx]
	if got := pt.get(p); got != from {
		return fmt.Errorf("field %q holds %q, expected %q", field, got, from)
	}
	pt.set(p, to)
	return nil
}
