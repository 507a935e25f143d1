package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassification_RequiresBinding(t *testing.T) {
	t.Parallel()

	assert.True(t, ClassificationField.RequiresBinding())
	assert.False(t, ClassificationDataset.RequiresBinding())
	assert.True(t, Classification("unknown").RequiresBinding())
}

func TestUsage_Valid(t *testing.T) {
	t.Parallel()

	for _, u := range Usages() {
		assert.True(t, Usage(u).Valid(), u)
	}
	assert.False(t, Usage("Bound").Valid())
	assert.False(t, Usage("").Valid())
}

func TestCapability_CloneIsIndependent(t *testing.T) {
	t.Parallel()

	orig := &Capability{
		CapabilityID:      "star-rating",
		SupportedFeatures: []string{"readonly"},
		Limits:            map[string]Value{"maxStars": Number(10), "allowedTheme": Enum("light")},
		Templates:         TemplateHints{Overrides: map[string]string{"manifest": "x"}},
	}
	clone := orig.Clone()
	clone.SupportedFeatures[0] = "mutated"
	clone.Limits["maxStars"] = Number(99)
	clone.Templates.Overrides["manifest"] = "y"

	assert.Equal(t, "readonly", orig.SupportedFeatures[0])
	n, _ := orig.Limits["maxStars"].Number()
	assert.Equal(t, 10.0, n)
	assert.Equal(t, "x", orig.Templates.Overrides["manifest"])
	assert.True(t, orig.SupportsFeature("readonly"))
	assert.False(t, orig.SupportsFeature("mutated"))
}

func TestSpecification_CloneAndHasUsage(t *testing.T) {
	t.Parallel()

	spec := &Specification{
		Properties:     []*Property{{Name: "value", Usage: UsageBound}, nil},
		Customizations: map[string]Value{"stars": Number(5)},
	}
	clone := spec.Clone()
	clone.Properties[0].Name = "changed"

	assert.Equal(t, "value", spec.Properties[0].Name)
	assert.Nil(t, clone.Properties[1])
	assert.True(t, spec.HasUsage(UsageBound))
	assert.False(t, spec.HasUsage(UsageOutput))
	assert.Equal(t, []string{"stars"}, spec.CustomizationKeys())
}

func TestValidationResult_AddError(t *testing.T) {
	t.Parallel()

	r := NewValidationResult()
	assert.True(t, r.IsValid)
	r.AddWarning(Issue{Code: "W"})
	assert.True(t, r.IsValid)
	r.AddError(Issue{Code: "E"})
	assert.False(t, r.IsValid)
	assert.True(t, r.HasErrors())
	assert.Equal(t, SeverityError, r.Errors[0].Severity)
	assert.Equal(t, SeverityWarning, r.Warnings[0].Severity)
}
