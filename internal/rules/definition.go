package rules

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ariel-frischer/specgate/internal/contract"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// File is the on-disk shape of a rule registry.
type File struct {
	Version string       `yaml:"version" validate:"required"`
	Rules   []Definition `yaml:"rules" validate:"required,min=1,dive"`
}

// Definition declares one rule as data.
type Definition struct {
	ID          string            `yaml:"id" validate:"required"`
	Category    string            `yaml:"category" validate:"required"`
	Severity    contract.Severity `yaml:"severity" validate:"required,oneof=error warning info"`
	Check       string            `yaml:"check" validate:"required"`
	Target      string            `yaml:"target" validate:"required"`
	Params      Params            `yaml:"params"`
	Message     string            `yaml:"message" validate:"required"`
	Suggestion  string            `yaml:"suggestion"`
	AutoFixable bool              `yaml:"auto_fixable"`
	Fix         string            `yaml:"fix" validate:"required_if=AutoFixable true"`
}

// Params holds the check-specific arguments.
type Params struct {
	Pattern string   `yaml:"pattern"`
	Min     int      `yaml:"min"`
	Max     int      `yaml:"max"`
	Values  []string `yaml:"values"`
}

var definitionValidator = validator.New()

// ParseFile decodes and validates a rule registry file.
func ParseFile(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing rule registry: %w", err)
	}
	if err := definitionValidator.Struct(&f); err != nil {
		return nil, fmt.Errorf("invalid rule registry: %w", err)
	}
	return &f, nil
}

var loadDefaultFile = sync.OnceValues(func() (*File, error) {
	return ParseFile(defaultRulesYAML)
})
