// Package registry holds the read-only set of capabilities a build may
// target. It is loaded once from YAML and hands out deep copies.
package registry

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ariel-frischer/specgate/internal/contract"
	gerrors "github.com/ariel-frischer/specgate/internal/errors"
)

//go:embed capabilities.yaml
var defaultCapabilitiesYAML []byte

// File is the on-disk shape of a capability registry.
type File struct {
	Version      string                `yaml:"version" validate:"required"`
	Capabilities []contract.Capability `yaml:"capabilities" validate:"required,min=1,dive"`
}

// Registry maps capability ids to capabilities. Safe for concurrent use.
type Registry struct {
	version string
	byID    map[string]*contract.Capability
	ids     []string
}

var fileValidator = validator.New()

// Default returns the registry embedded in the binary.
func Default() (*Registry, error) {
	return Parse(defaultCapabilitiesYAML)
}

// LoadFile reads a registry from path.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading capability registry: %w", err)
	}
	return Parse(data)
}

// Load returns the registry at path, or the embedded one when path is empty.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

// Parse decodes and validates a registry document.
func Parse(data []byte) (*Registry, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing capability registry: %w", err)
	}
	if err := fileValidator.Struct(&f); err != nil {
		return nil, fmt.Errorf("invalid capability registry: %w", err)
	}

	r := &Registry{
		version: f.Version,
		byID:    make(map[string]*contract.Capability, len(f.Capabilities)),
	}
	for i := range f.Capabilities {
		c := &f.Capabilities[i]
		if _, dup := r.byID[c.CapabilityID]; dup {
			return nil, fmt.Errorf("invalid capability registry: duplicate capability %q", c.CapabilityID)
		}
		for key, v := range c.Limits {
			if v.Kind() == contract.KindInvalid {
				return nil, fmt.Errorf("invalid capability registry: capability %q limit %q has no value", c.CapabilityID, key)
			}
		}
		r.byID[c.CapabilityID] = c
		r.ids = append(r.ids, c.CapabilityID)
	}
	sort.Strings(r.ids)
	return r, nil
}

// Version returns the registry document version.
func (r *Registry) Version() string { return r.version }

// IDs returns the registered capability ids in sorted order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.ids...)
}

// Lookup returns a copy of the capability with the given id. Unknown ids
// yield a CAPABILITY_UNKNOWN error listing the registered ones.
func (r *Registry) Lookup(id string) (*contract.Capability, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, gerrors.UnknownCapability(id, r.ids)
	}
	return c.Clone(), nil
}

// ForIntent selects the capability an intent asks for by component type.
func (r *Registry) ForIntent(intent contract.Intent) (*contract.Capability, error) {
	c, err := r.Lookup(intent.ComponentType)
	if err != nil {
		return nil, err
	}
	if intent.Classification != "" && contract.Classification(intent.Classification) != c.Classification {
		return nil, gerrors.NewCapabilityViolation(gerrors.StageGate, gerrors.CodeCapabilityMismatch,
			fmt.Sprintf("intent classification %q does not match capability %q (%s)", intent.Classification, c.CapabilityID, c.Classification),
			fmt.Sprintf("Classify the request as %q or pick another component type", c.Classification)).
			WithDetail("classification", intent.Classification)
	}
	return c, nil
}

// List returns copies of every capability in id order.
func (r *Registry) List() []*contract.Capability {
	out := make([]*contract.Capability, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, r.byID[id].Clone())
	}
	return out
}
