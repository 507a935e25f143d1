// specgate - Trust boundary for generated component specifications
// Author: Ariel Frischer
// Source: https://github.com/ariel-frischer/specgate

// Package contract defines the versioned data shapes exchanged across the
// governance pipeline: Intent, Capability, Specification, ValidationResult
// and ExecutionPlan.
package contract

import (
	"fmt"
	"regexp"
	"strconv"
)

const (
	// CurrentMajor is the contract major version. Majors never mix.
	CurrentMajor = 1
	// CurrentMinor is the newest minor this build understands.
	CurrentMinor = 0
	// MinSupportedMinor is the oldest minor still accepted.
	MinSupportedMinor = 0
)

// CurrentVersion is the contract version stamped on every plan.
var CurrentVersion = fmt.Sprintf("%d.%d", CurrentMajor, CurrentMinor)

var versionPattern = regexp.MustCompile(`^(\d+)\.(\d+)$`)

// ParseVersion splits a "major.minor" string.
func ParseVersion(version string) (major, minor int, err error) {
	m := versionPattern.FindStringSubmatch(version)
	if m == nil {
		return 0, 0, fmt.Errorf("version %q is not a major.minor pair", version)
	}
	if major, err = strconv.Atoi(m[1]); err != nil {
		return 0, 0, fmt.Errorf("parsing major of %q: %w", version, err)
	}
	if minor, err = strconv.Atoi(m[2]); err != nil {
		return 0, 0, fmt.Errorf("parsing minor of %q: %w", version, err)
	}
	return major, minor, nil
}

// IsVersionSupported reports whether version names a contract this build
// accepts: same major, minor within [MinSupportedMinor, CurrentMinor].
// Missing or malformed versions are unsupported.
func IsVersionSupported(version string) bool {
	major, minor, err := ParseVersion(version)
	if err != nil {
		return false
	}
	if major != CurrentMajor {
		return false
	}
	return minor >= MinSupportedMinor && minor <= CurrentMinor
}
