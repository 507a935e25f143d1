package config

import (
	"fmt"
	"sort"
	"strings"
)

// ConfigValueType defines the expected type for a configuration value.
type ConfigValueType int

const (
	TypeBool ConfigValueType = iota
	TypeInt
	TypeString
	TypeEnum
	TypeList
)

// String returns the string representation of ConfigValueType.
func (t ConfigValueType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeString:
		return "string"
	case TypeEnum:
		return "enum"
	case TypeList:
		return "list"
	default:
		return "unknown"
	}
}

// ConfigKeySchema defines a known configuration key with its expected type.
type ConfigKeySchema struct {
	Path          string          // Config key (e.g., "max_retries")
	Type          ConfigValueType // Expected value type
	AllowedValues []string        // Valid values for enum types (empty for non-enums)
	Description   string          // Human-readable description for help text
}

// KnownKeys is the registry of all known configuration keys.
var KnownKeys = map[string]ConfigKeySchema{
	"registry_path": {
		Path:        "registry_path",
		Type:        TypeString,
		Description: "Capability registry YAML (empty uses the built-in registry)",
	},
	"rules_path": {
		Path:        "rules_path",
		Type:        TypeString,
		Description: "Rule registry YAML (empty uses the built-in rules)",
	},
	"templates_dir": {
		Path:        "templates_dir",
		Type:        TypeString,
		Description: "Template directory for plan resolution (empty uses the built-in templates)",
	},
	"max_properties": {
		Path:        "max_properties",
		Type:        TypeInt,
		Description: "Soft ceiling on component properties before a warning",
	},
	"max_retries": {
		Path:        "max_retries",
		Type:        TypeInt,
		Description: "Generation retries after the first attempt",
	},
	"backoff_ms": {
		Path:        "backoff_ms",
		Type:        TypeInt,
		Description: "Delay before the first retry in milliseconds",
	},
	"max_backoff_ms": {
		Path:        "max_backoff_ms",
		Type:        TypeInt,
		Description: "Retry delay ceiling in milliseconds",
	},
	"timeout": {
		Path:        "timeout",
		Type:        TypeInt,
		Description: "Seconds allowed per generation attempt (0 = no timeout)",
	},
	"generator_cmd": {
		Path:        "generator_cmd",
		Type:        TypeString,
		Description: "Program that reads a generation request on stdin and prints a specification",
	},
	"generator_args": {
		Path:        "generator_args",
		Type:        TypeList,
		Description: "Arguments passed to generator_cmd",
	},
	"id_strategy": {
		Path:          "id_strategy",
		Type:          TypeEnum,
		AllowedValues: []string{"deterministic", "unique"},
		Description:   "How build identifiers are derived",
	},
	"log_level": {
		Path:          "log_level",
		Type:          TypeEnum,
		AllowedValues: []string{"debug", "info", "warn", "error"},
		Description:   "Minimum level of structured log output",
	},
	"concurrency": {
		Path:        "concurrency",
		Type:        TypeInt,
		Description: "Specifications validated in parallel",
	},
	"show_progress": {
		Path:        "show_progress",
		Type:        TypeBool,
		Description: "Show a spinner during generation on terminals",
	},
	"state_dir": {
		Path:        "state_dir",
		Type:        TypeString,
		Description: "Directory holding the decision history",
	},
	"max_history": {
		Path:        "max_history",
		Type:        TypeInt,
		Description: "Gate decisions kept in the history (0 disables recording)",
	},
}

// GetKeySchema returns the schema for a key.
func GetKeySchema(key string) (ConfigKeySchema, error) {
	schema, ok := KnownKeys[key]
	if !ok {
		return ConfigKeySchema{}, fmt.Errorf("unknown configuration key: %q (valid keys: %s)", key, strings.Join(SortedKeys(), ", "))
	}
	return schema, nil
}

// SortedKeys returns all known keys in sorted order.
func SortedKeys() []string {
	keys := make([]string, 0, len(KnownKeys))
	for k := range KnownKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
