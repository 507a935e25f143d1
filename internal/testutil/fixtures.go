// Package testutil provides fixtures and helpers shared by specgate tests.
package testutil

import (
	"encoding/json"
	"testing"

	"github.com/ariel-frischer/specgate/internal/contract"
)

// StarRatingID is the capability id used by most fixtures.
const StarRatingID = "star-rating"

// StarRatingCapability returns a field-classified capability with a numeric
// and an enum limit and one forbidden behavior.
func StarRatingCapability() *contract.Capability {
	return &contract.Capability{
		CapabilityID:      StarRatingID,
		Classification:    contract.ClassificationField,
		Description:       "Star rating input bound to a numeric column",
		SupportedFeatures: []string{"readonly", "halfStars", "keyboardNavigation", "customColors"},
		Limits: map[string]contract.Value{
			"maxStars":     contract.Number(10),
			"allowedTheme": contract.Enum("light", "dark", "highContrast"),
		},
		Forbidden: []contract.ForbiddenBehavior{
			{
				Behavior:    "external network calls",
				Reason:      "components run inside the host form sandbox",
				Alternative: "use the host WebAPI",
			},
		},
	}
}

// DatasetCapability returns a capability that does not require binding.
func DatasetCapability() *contract.Capability {
	return &contract.Capability{
		CapabilityID:      "data-grid",
		Classification:    contract.ClassificationDataset,
		Description:       "Tabular view over a record set",
		SupportedFeatures: []string{"paging", "sorting"},
		Limits:            map[string]contract.Value{"maxPageSize": contract.Number(250)},
	}
}

// ValidSpec returns a star-rating specification that passes every check.
func ValidSpec() *contract.Specification {
	return &contract.Specification{
		Version:       contract.CurrentVersion,
		CapabilityID:  StarRatingID,
		ComponentType: StarRatingID,
		Component: contract.Component{
			ID:          "contoso-star-rating",
			Name:        "StarRating",
			Namespace:   "Contoso",
			DisplayName: "Star Rating",
			Description: "Displays a configurable star rating bound to a numeric column.",
		},
		Properties: []*contract.Property{
			{
				Name:        "value",
				DisplayName: "Value",
				DataType:    "Whole.None",
				Usage:       contract.UsageBound,
				Required:    true,
				Description: "Current rating",
			},
			{
				Name:        "starColor",
				DisplayName: "Star color",
				DataType:    "SingleLine.Text",
				Usage:       contract.UsageInput,
			},
		},
		Resources: contract.Resources{
			Code: "index.ts",
			CSS:  []string{"css/StarRating.css"},
			Resx: []string{"strings/StarRating.1033.resx"},
		},
		Features:       []string{"readonly", "halfStars"},
		Customizations: map[string]contract.Value{"stars": contract.Number(5)},
	}
}

// SampleIntent returns the intent that selects the star-rating capability.
func SampleIntent() contract.Intent {
	return contract.Intent{
		Classification: string(contract.ClassificationField),
		ComponentType:  StarRatingID,
		Behavior:       contract.BehaviorIntent{Interactivity: "click", Outputs: []string{"value"}},
		Accessibility:  contract.AccessibilityIntent{WCAGLevel: "AA", KeyboardNavigation: true},
		Responsiveness: contract.ResponsivenessIntent{Adaptive: true},
	}
}

// MustJSON marshals v or fails the test.
func MustJSON(t testing.TB, v any) []byte {
	t.Helper()

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	return data
}
