// Package rules evaluates a fixed, versioned registry of declarative rules
// against a specification. Rules are data: each declares a check kind, a
// target, a severity and its messages, and is compiled once into a
// predicate. Every rule runs on every evaluation.
package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ariel-frischer/specgate/internal/contract"
)

// DefaultMaxProperties is the soft property ceiling shipped in rules.yaml.
const DefaultMaxProperties = 20

// Rule is one compiled registry entry.
type Rule struct {
	ID          string            `json:"id"`
	Category    string            `json:"category"`
	Severity    contract.Severity `json:"severity"`
	Target      string            `json:"target"`
	CheckKind   string            `json:"check"`
	Message     string            `json:"message"`
	Suggestion  string            `json:"suggestion,omitempty"`
	AutoFixable bool              `json:"autoFixable"`
	Check       Check             `json:"-"`
}

// Options adjust the compiled registry.
type Options struct {
	// MaxProperties overrides the property-count soft ceiling when > 0.
	MaxProperties int
}

// Registry is the ordered, addressable rule table. It is immutable after
// construction and safe for concurrent use.
type Registry struct {
	version string
	rules   []Rule
	index   map[string]int
}

// Default compiles the embedded rule registry.
func Default(opts Options) (*Registry, error) {
	f, err := loadDefaultFile()
	if err != nil {
		return nil, err
	}
	return Compile(f, opts)
}

// Load parses and compiles a rule registry file.
func Load(data []byte, opts Options) (*Registry, error) {
	f, err := ParseFile(data)
	if err != nil {
		return nil, err
	}
	return Compile(f, opts)
}

// Compile turns declarative definitions into predicates. Unknown check
// kinds, targets or fixes fail here rather than at evaluation time.
func Compile(f *File, opts Options) (*Registry, error) {
	reg := &Registry{
		version: f.Version,
		rules:   make([]Rule, 0, len(f.Rules)),
		index:   make(map[string]int, len(f.Rules)),
	}

	for _, d := range f.Rules {
		if _, dup := reg.index[d.ID]; dup {
			return nil, fmt.Errorf("rule %s: duplicate id", d.ID)
		}
		if d.Check == "max_count" && opts.MaxProperties > 0 {
			d.Params.Max = opts.MaxProperties
		}

		build, ok := checkBuilders[d.Check]
		if !ok {
			kinds := CheckKinds()
			sort.Strings(kinds)
			return nil, fmt.Errorf("rule %s: unknown check %q (supported: %s)", d.ID, d.Check, strings.Join(kinds, ", "))
		}
		check, err := build(d)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", d.ID, err)
		}

		reg.index[d.ID] = len(reg.rules)
		reg.rules = append(reg.rules, Rule{
			ID:          d.ID,
			Category:    d.Category,
			Severity:    d.Severity,
			Target:      d.Target,
			CheckKind:   d.Check,
			Message:     d.Message,
			Suggestion:  d.Suggestion,
			AutoFixable: d.AutoFixable,
			Check:       check,
		})
	}
	return reg, nil
}

// Version returns the registry version.
func (r *Registry) Version() string { return r.version }

// Len returns the number of registered rules.
func (r *Registry) Len() int { return len(r.rules) }

// Rules returns the rules in evaluation order.
func (r *Registry) Rules() []Rule {
	return append([]Rule(nil), r.rules...)
}

// Get returns the rule with the given id.
func (r *Registry) Get(id string) (Rule, bool) {
	i, ok := r.index[id]
	if !ok {
		return Rule{}, false
	}
	return r.rules[i], true
}
