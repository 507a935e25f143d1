// Package structural proves that a raw, possibly untrusted specification
// payload is well-formed enough to reason about. It never inspects business
// semantics such as naming or limits.
package structural

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ariel-frischer/specgate/internal/contract"
	gerrors "github.com/ariel-frischer/specgate/internal/errors"
)

// PropertiesField is the wire name of the property collection.
const PropertiesField = "properties"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// Decode parses a JSON payload and runs every structural check.
// Syntax and shape errors are ContractViolations marked retryable.
func Decode(ctx context.Context, raw []byte) (*contract.Specification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var spec contract.Specification
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&spec); err != nil {
		return nil, gerrors.Malformed(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, gerrors.Malformed(fmt.Errorf("unexpected trailing data after specification object"))
	}

	if err := Check(&spec); err != nil {
		return nil, err
	}
	return &spec, nil
}

// DecodeYAML parses a YAML payload and runs every structural check.
func DecodeYAML(ctx context.Context, raw []byte) (*contract.Specification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, gerrors.Malformed(err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return nil, gerrors.Malformed(fmt.Errorf("document is not a YAML mapping"))
	}

	var spec contract.Specification
	if err := root.Content[0].Decode(&spec); err != nil {
		return nil, gerrors.Malformed(err)
	}

	if err := Check(&spec); err != nil {
		return nil, err
	}
	return &spec, nil
}

// Check runs the post-decode checks in order: required scalar fields,
// contract version, then property collection shape. Every contract failure
// is reported before a schema failure, so a version mismatch is always a
// ContractViolation.
func Check(spec *contract.Specification) error {
	if spec == nil {
		return gerrors.Malformed(fmt.Errorf("specification is null"))
	}

	if err := checkRequired(spec); err != nil {
		return err
	}

	if !contract.IsVersionSupported(spec.Version) {
		return gerrors.UnsupportedVersion(spec.Version, contract.CurrentVersion)
	}

	if spec.Properties == nil {
		return gerrors.MissingCollection(PropertiesField)
	}
	for i, p := range spec.Properties {
		if p == nil {
			return gerrors.NullEntry(PropertiesField, i)
		}
	}
	return nil
}

func checkRequired(spec *contract.Specification) error {
	err := validate.Struct(spec)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return gerrors.Malformed(err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fieldPath(fe.Namespace()))
	}
	return gerrors.MissingField(fields[0]).WithDetail("fields", fields)
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
