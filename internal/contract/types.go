package contract

import "sort"

// Intent is the classified form of a natural-language request. It is
// produced once per prompt by an external interpreter and never mutated.
type Intent struct {
	Classification string               `json:"classification" yaml:"classification"`
	ComponentType  string               `json:"componentType" yaml:"componentType"`
	Behavior       BehaviorIntent       `json:"behavior" yaml:"behavior"`
	Accessibility  AccessibilityIntent  `json:"accessibility" yaml:"accessibility"`
	Responsiveness ResponsivenessIntent `json:"responsiveness" yaml:"responsiveness"`
}

// BehaviorIntent describes how the component reacts to users.
type BehaviorIntent struct {
	Interactivity string   `json:"interactivity,omitempty" yaml:"interactivity,omitempty"`
	Outputs       []string `json:"outputs,omitempty" yaml:"outputs,omitempty"`
}

// AccessibilityIntent captures accessibility requirements.
type AccessibilityIntent struct {
	WCAGLevel          string `json:"wcagLevel,omitempty" yaml:"wcagLevel,omitempty"`
	KeyboardNavigation bool   `json:"keyboardNavigation,omitempty" yaml:"keyboardNavigation,omitempty"`
	ScreenReader       bool   `json:"screenReader,omitempty" yaml:"screenReader,omitempty"`
}

// ResponsivenessIntent captures layout adaptation requirements.
type ResponsivenessIntent struct {
	Adaptive    bool     `json:"adaptive,omitempty" yaml:"adaptive,omitempty"`
	Breakpoints []string `json:"breakpoints,omitempty" yaml:"breakpoints,omitempty"`
}

// Classification groups capabilities by how they bind to data.
type Classification string

const (
	// ClassificationField components bind to a single column.
	ClassificationField Classification = "field"
	// ClassificationDataset components bind to a record set.
	ClassificationDataset Classification = "dataset"
)

// RequiresBinding reports whether specifications for this classification
// need at least one bound property. Unknown classifications do.
func (c Classification) RequiresBinding() bool {
	return c != ClassificationDataset
}

// ForbiddenBehavior is a behavior a capability must not exhibit.
type ForbiddenBehavior struct {
	Behavior    string `json:"behavior" yaml:"behavior"`
	Reason      string `json:"reason" yaml:"reason"`
	Alternative string `json:"alternative,omitempty" yaml:"alternative,omitempty"`
}

// TemplateHints steer template resolution for a capability.
type TemplateHints struct {
	// Dir overrides the capability-scoped template directory.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
	// Overrides maps a step name to an explicit template reference.
	Overrides map[string]string `json:"overrides,omitempty" yaml:"overrides,omitempty"`
}

// Capability is a read-only registry entry describing a supported artifact
// type.
type Capability struct {
	CapabilityID      string              `json:"capabilityId" yaml:"capabilityId" validate:"required"`
	Classification    Classification      `json:"classification" yaml:"classification" validate:"required,oneof=field dataset"`
	Description       string              `json:"description,omitempty" yaml:"description,omitempty"`
	SupportedFeatures []string            `json:"supportedFeatures" yaml:"supportedFeatures"`
	Limits            map[string]Value    `json:"limits,omitempty" yaml:"limits,omitempty"`
	Forbidden         []ForbiddenBehavior `json:"forbidden,omitempty" yaml:"forbidden,omitempty"`
	Templates         TemplateHints       `json:"templates,omitempty" yaml:"templates,omitempty"`
}

// SupportsFeature reports whether feature is in the supported set.
func (c *Capability) SupportsFeature(feature string) bool {
	for _, f := range c.SupportedFeatures {
		if f == feature {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can never mutate registry data.
func (c *Capability) Clone() *Capability {
	if c == nil {
		return nil
	}
	out := *c
	out.SupportedFeatures = append([]string(nil), c.SupportedFeatures...)
	out.Forbidden = append([]ForbiddenBehavior(nil), c.Forbidden...)
	if c.Limits != nil {
		out.Limits = make(map[string]Value, len(c.Limits))
		for k, v := range c.Limits {
			if opts, ok := v.Options(); ok {
				v = Enum(opts...)
			}
			out.Limits[k] = v
		}
	}
	if c.Templates.Overrides != nil {
		out.Templates.Overrides = make(map[string]string, len(c.Templates.Overrides))
		for k, v := range c.Templates.Overrides {
			out.Templates.Overrides[k] = v
		}
	}
	return &out
}

// Usage is the role a property plays in the host form.
type Usage string

const (
	UsageBound  Usage = "bound"
	UsageInput  Usage = "input"
	UsageOutput Usage = "output"
)

// Usages lists the valid usages in declaration order.
func Usages() []string {
	return []string{string(UsageBound), string(UsageInput), string(UsageOutput)}
}

// Valid reports whether u is one of the declared usages.
func (u Usage) Valid() bool {
	switch u {
	case UsageBound, UsageInput, UsageOutput:
		return true
	}
	return false
}

// Component carries the identity of the generated component.
type Component struct {
	ID          string `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string `json:"name" yaml:"name"`
	Namespace   string `json:"namespace" yaml:"namespace"`
	DisplayName string `json:"displayName" yaml:"displayName" validate:"nonblank"`
	Description string `json:"description" yaml:"description"`
}

// Property is one entry of the component's property list.
type Property struct {
	Name        string `json:"name" yaml:"name"`
	DisplayName string `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	DataType    string `json:"dataType" yaml:"dataType"`
	Usage       Usage  `json:"usage" yaml:"usage"`
	Required    bool   `json:"required,omitempty" yaml:"required,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Resources references the generated source files.
type Resources struct {
	Code string   `json:"code" yaml:"code"`
	CSS  []string `json:"css,omitempty" yaml:"css,omitempty"`
	Resx []string `json:"resx,omitempty" yaml:"resx,omitempty"`
}

// ValidationMetadata is what the producer says about its own output. The
// gate records it but never trusts it.
type ValidationMetadata struct {
	GeneratedBy       string `json:"generatedBy,omitempty" yaml:"generatedBy,omitempty"`
	GeneratedAt       string `json:"generatedAt,omitempty" yaml:"generatedAt,omitempty"`
	SelfReportedValid bool   `json:"selfReportedValid,omitempty" yaml:"selfReportedValid,omitempty"`
}

// Specification is the candidate artifact description. It is untrusted
// until the trust boundary gate approves it.
type Specification struct {
	Version        string              `json:"version" yaml:"version"`
	CapabilityID   string              `json:"capabilityId" yaml:"capabilityId" validate:"nonblank"`
	ComponentType  string              `json:"componentType" yaml:"componentType" validate:"nonblank"`
	Component      Component           `json:"component" yaml:"component"`
	Properties     []*Property         `json:"properties" yaml:"properties"`
	Resources      Resources           `json:"resources" yaml:"resources"`
	Features       []string            `json:"features,omitempty" yaml:"features,omitempty"`
	Customizations map[string]Value    `json:"customizations,omitempty" yaml:"customizations,omitempty"`
	Validation     *ValidationMetadata `json:"validation,omitempty" yaml:"validation,omitempty"`
}

// CustomizationKeys returns customization keys in sorted order.
func (s *Specification) CustomizationKeys() []string {
	keys := make([]string, 0, len(s.Customizations))
	for k := range s.Customizations {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of s.
func (s *Specification) Clone() *Specification {
	if s == nil {
		return nil
	}
	out := *s
	if s.Properties != nil {
		out.Properties = make([]*Property, len(s.Properties))
		for i, p := range s.Properties {
			if p != nil {
				cp := *p
				out.Properties[i] = &cp
			}
		}
	}
	out.Resources.CSS = append([]string(nil), s.Resources.CSS...)
	out.Resources.Resx = append([]string(nil), s.Resources.Resx...)
	out.Features = append([]string(nil), s.Features...)
	if s.Customizations != nil {
		out.Customizations = make(map[string]Value, len(s.Customizations))
		for k, v := range s.Customizations {
			out.Customizations[k] = v
		}
	}
	if s.Validation != nil {
		meta := *s.Validation
		out.Validation = &meta
	}
	return &out
}

// HasUsage reports whether any property carries usage u.
func (s *Specification) HasUsage(u Usage) bool {
	for _, p := range s.Properties {
		if p != nil && p.Usage == u {
			return true
		}
	}
	return false
}
