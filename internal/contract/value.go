package contract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	KindInvalid ValueKind = iota
	KindNumber
	KindString
	KindBool
	KindEnum
)

// String returns the kind name used in messages.
func (k ValueKind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindEnum:
		return "enum"
	default:
		return "invalid"
	}
}

// Value is a limit or customization value decoded at the ingestion
// boundary. Only one variant is populated, selected by Kind.
type Value struct {
	kind    ValueKind
	number  float64
	str     string
	boolean bool
	options []string
}

// Number creates a numeric value.
func Number(n float64) Value { return Value{kind: KindNumber, number: n} }

// String creates a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Bool creates a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, boolean: b} }

// Enum creates an enumeration bound.
func Enum(options ...string) Value {
	return Value{kind: KindEnum, options: append([]string(nil), options...)}
}

// Kind returns the variant tag.
func (v Value) Kind() ValueKind { return v.kind }

// Number returns the numeric variant.
func (v Value) Number() (float64, bool) { return v.number, v.kind == KindNumber }

// Str returns the string variant.
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// Bool returns the boolean variant.
func (v Value) Bool() (bool, bool) { return v.boolean, v.kind == KindBool }

// Options returns a copy of the enum variant.
func (v Value) Options() ([]string, bool) {
	if v.kind != KindEnum {
		return nil, false
	}
	return append([]string(nil), v.options...), true
}

// Display formats the value for messages.
func (v Value) Display() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.number, 'f', -1, 64)
	case KindString:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.boolean)
	case KindEnum:
		return fmt.Sprintf("%v", v.options)
	default:
		return "<invalid>"
	}
}

// MarshalJSON encodes the active variant.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(v.number)
	case KindString:
		return json.Marshal(v.str)
	case KindBool:
		return json.Marshal(v.boolean)
	case KindEnum:
		return json.Marshal(v.options)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes a number, string, bool or array of strings.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("value must not be null")
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = String(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = Bool(b)
	case '[':
		var opts []string
		if err := json.Unmarshal(data, &opts); err != nil {
			return fmt.Errorf("enum values must be strings: %w", err)
		}
		*v = Enum(opts...)
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("unsupported value %s: %w", data, err)
		}
		*v = Number(n)
	}
	return nil
}

// UnmarshalYAML decodes registry files with the same variants as JSON.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var opts []string
		if err := node.Decode(&opts); err != nil {
			return fmt.Errorf("line %d: enum values must be strings: %w", node.Line, err)
		}
		*v = Enum(opts...)
		return nil
	case yaml.ScalarNode:
		switch node.Tag {
		case "!!int", "!!float":
			var n float64
			if err := node.Decode(&n); err != nil {
				return err
			}
			*v = Number(n)
		case "!!bool":
			var b bool
			if err := node.Decode(&b); err != nil {
				return err
			}
			*v = Bool(b)
		case "!!null":
			return fmt.Errorf("line %d: value must not be null", node.Line)
		default:
			*v = String(node.Value)
		}
		return nil
	default:
		return fmt.Errorf("line %d: unsupported value kind", node.Line)
	}
}

// MarshalYAML encodes the active variant.
func (v Value) MarshalYAML() (any, error) {
	switch v.kind {
	case KindNumber:
		return v.number, nil
	case KindString:
		return v.str, nil
	case KindBool:
		return v.boolean, nil
	case KindEnum:
		return v.options, nil
	default:
		return nil, nil
	}
}
