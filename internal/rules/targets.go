package rules

import (
	"fmt"

	"github.com/ariel-frischer/specgate/internal/contract"
)

// Subject is what a rule inspects: the candidate specification and the
// capability it was matched against (nil when unknown).
type Subject struct {
	Spec       *contract.Specification
	Capability *contract.Capability
}

// scalarTargets resolve a single string field of the specification.
var scalarTargets = map[string]func(*contract.Specification) string{
	"componentType":         func(s *contract.Specification) string { return s.ComponentType },
	"capabilityId":          func(s *contract.Specification) string { return s.CapabilityID },
	"component.id":          func(s *contract.Specification) string { return s.Component.ID },
	"component.name":        func(s *contract.Specification) string { return s.Component.Name },
	"component.namespace":   func(s *contract.Specification) string { return s.Component.Namespace },
	"component.displayName": func(s *contract.Specification) string { return s.Component.DisplayName },
	"component.description": func(s *contract.Specification) string { return s.Component.Description },
	"resources.code":        func(s *contract.Specification) string { return s.Resources.Code },
}

// propertyTargets resolve one string field of each property.
var propertyTargets = map[string]struct {
	field string
	get   func(*contract.Property) string
	set   func(*contract.Property, string)
}{
	"properties[].name": {
		field: "name",
		get:   func(p *contract.Property) string { return p.Name },
		set:   func(p *contract.Property, v string) { p.Name = v },
	},
	"properties[].displayName": {
		field: "displayName",
		get:   func(p *contract.Property) string { return p.DisplayName },
		set:   func(p *contract.Property, v string) { p.DisplayName = v },
	},
	"properties[].dataType": {
		field: "dataType",
		get:   func(p *contract.Property) string { return p.DataType },
		set:   func(p *contract.Property, v string) { p.DataType = v },
	},
	"properties[].usage": {
		field: "usage",
		get:   func(p *contract.Property) string { return string(p.Usage) },
		set:   func(p *contract.Property, v string) { p.Usage = contract.Usage(v) },
	},
}

// value is one resolved target value and the path it came from.
type value struct {
	path  string
	value string
}

// resolver returns the values a target designates in a specification.
type resolver func(*contract.Specification) []value

func compileTarget(target string) (resolver, error) {
	if get, ok := scalarTargets[target]; ok {
		return func(s *contract.Specification) []value {
			return []value{{path: target, value: get(s)}}
		}, nil
	}
	if pt, ok := propertyTargets[target]; ok {
		return func(s *contract.Specification) []value {
			out := make([]value, 0, len(s.Properties))
			for i, p := range s.Properties {
				if p == nil {
					continue
				}
				out = append(out, value{path: propertyPath(i, pt.field), value: pt.get(p)})
			}
			return out
		}, nil
	}
	return nil, fmt.Errorf("unknown target %q", target)
}

func propertyPath(index int, field string) string {
	return fmt.Sprintf("properties[%d].%s", index, field)
}
