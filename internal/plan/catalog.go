package plan

import (
	"errors"
	"fmt"
	"strings"
)

// StepCount is the number of generation steps every plan carries.
const StepCount = 7

// Step names, in plan order.
const (
	StepManifest        = "manifest"
	StepComponentEntry  = "component-entry"
	StepGeneratedTypes  = "generated-types"
	StepStylesheet      = "stylesheet"
	StepResourceStrings = "resource-strings"
	StepPackageManifest = "package-manifest"
	StepProjectFile     = "project-file"
)

// ErrPlanDrift reports a step catalog whose cardinality or ordering no
// longer matches the contract.
var ErrPlanDrift = errors.New("plan step catalog drifted")

// stepDef is one catalog entry. output may contain {name} and {namespace}.
type stepDef struct {
	order    int
	name     string
	output   string
	required bool
}

var defaultCatalog = []stepDef{
	{order: 1, name: StepManifest, output: "{name}/ControlManifest.Input.xml", required: true},
	{order: 2, name: StepComponentEntry, output: "{name}/index.ts", required: true},
	{order: 3, name: StepGeneratedTypes, output: "{name}/generated/ManifestTypes.d.ts", required: true},
	{order: 4, name: StepStylesheet, output: "{name}/css/{name}.css", required: false},
	{order: 5, name: StepResourceStrings, output: "{name}/strings/{name}.1033.resx", required: false},
	{order: 6, name: StepPackageManifest, output: "package.json", required: true},
	{order: 7, name: StepProjectFile, output: "{namespace}.{name}.pcfproj", required: true},
}

// StepNames returns the catalog step names in order.
func StepNames() []string {
	names := make([]string, len(defaultCatalog))
	for i, s := range defaultCatalog {
		names[i] = s.name
	}
	return names
}

func checkCatalog(catalog []stepDef) error {
	if len(catalog) != StepCount {
		return fmt.Errorf("%w: %d steps, want %d", ErrPlanDrift, len(catalog), StepCount)
	}
	seen := make(map[string]bool, len(catalog))
	for i, s := range catalog {
		if s.order != i+1 {
			return fmt.Errorf("%w: step %q has order %d at position %d", ErrPlanDrift, s.name, s.order, i+1)
		}
		if s.name == "" || seen[s.name] {
			return fmt.Errorf("%w: step name %q is empty or repeated", ErrPlanDrift, s.name)
		}
		seen[s.name] = true
	}
	return nil
}

func expandOutput(pattern, name, namespace string) string {
	return strings.NewReplacer("{name}", name, "{namespace}", namespace).Replace(pattern)
}
