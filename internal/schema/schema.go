// Package schema describes the shape of request, prompt and model payloads and
// checks decoded JSON values against it.
package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
)

// Type is the primitive JSON type of a schema node.
type Type string

const (
	TypeObject  Type = "OBJECT"
	TypeArray   Type = "ARRAY"
	TypeString  Type = "STRING"
	TypeNumber  Type = "NUMBER"
	TypeInteger Type = "INTEGER"
	TypeBoolean Type = "BOOLEAN"
)

// Schema is a typed description of a JSON value. The same definition is used to
// validate values locally and to constrain the structured output of the model.
type Schema struct {
	// Type is the expected JSON type.
	Type Type `json:"type"`

	// Description is passed to the model as a hint for the field.
	Description string `json:"description,omitempty"`

	// Properties maps field names to their schemas (Type == TypeObject).
	Properties map[string]*Schema `json:"properties,omitempty"`

	// Required lists fields that must be present, in reporting order.
	Required []string `json:"required,omitempty"`

	// Items is the element schema (Type == TypeArray).
	Items *Schema `json:"items,omitempty"`

	// Enum restricts a string to a fixed set of values.
	Enum []string `json:"enum,omitempty"`

	// MinItems is the minimum array length.
	MinItems int `json:"minItems,omitempty"`

	// Nullable allows an explicit JSON null.
	Nullable bool `json:"nullable,omitempty"`
}

// Violation reports the first field that does not conform to a schema.
type Violation struct {
	Field  string
	Reason string
}

func (v *Violation) Error() string {
	if v.Field == "" {
		return v.Reason
	}
	return fmt.Sprintf("field %q: %s", v.Field, v.Reason)
}

// Object, Array, String, Number, Integer and Boolean are shorthands used by the
// prompt and request catalogs.
func Object(props map[string]*Schema, required ...string) *Schema {
	return &Schema{Type: TypeObject, Properties: props, Required: required}
}

func Array(items *Schema) *Schema { return &Schema{Type: TypeArray, Items: items} }

func String(desc string) *Schema { return &Schema{Type: TypeString, Description: desc} }

func Number(desc string) *Schema { return &Schema{Type: TypeNumber, Description: desc} }

func Integer(desc string) *Schema { return &Schema{Type: TypeInteger, Description: desc} }

func Boolean(desc string) *Schema { return &Schema{Type: TypeBoolean, Description: desc} }

// Enum returns a string schema restricted to values.
func Enum(desc string, values ...string) *Schema {
	return &Schema{Type: TypeString, Description: desc, Enum: values}
}

// Validate checks a decoded JSON value (map[string]any, []any, float64, string,
// bool or nil) and returns a *Violation for the first non-conforming field.
func (s *Schema) Validate(v any) error {
	if s == nil {
		return nil
	}
	return s.validate("", v)
}

// ValidateValue validates an arbitrary Go value through its JSON encoding.
func (s *Schema) ValidateValue(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return &Violation{Reason: fmt.Sprintf("cannot encode value: %v", err)}
	}
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return &Violation{Reason: fmt.Sprintf("cannot decode value: %v", err)}
	}
	return s.Validate(decoded)
}

func (s *Schema) validate(path string, v any) error {
	if s.Type == "" {
		return nil
	}
	if v == nil {
		if s.Nullable {
			return nil
		}
		return &Violation{Field: path, Reason: fmt.Sprintf("expected %s, got null", s.Type)}
	}

	switch s.Type {
	case TypeObject:
		obj, ok := v.(map[string]any)
		if !ok {
			return mismatch(path, s.Type, v)
		}
		return s.validateObject(path, obj)
	case TypeArray:
		arr, ok := v.([]any)
		if !ok {
			return mismatch(path, s.Type, v)
		}
		if len(arr) < s.MinItems {
			return &Violation{Field: path, Reason: fmt.Sprintf("expected at least %d items, got %d", s.MinItems, len(arr))}
		}
		if s.Items == nil {
			return nil
		}
		for i, item := range arr {
			if err := s.Items.validate(path+"["+strconv.Itoa(i)+"]", item); err != nil {
				return err
			}
		}
		return nil
	case TypeString:
		str, ok := v.(string)
		if !ok {
			return mismatch(path, s.Type, v)
		}
		if len(s.Enum) > 0 && !slices.Contains(s.Enum, str) {
			return &Violation{Field: path, Reason: fmt.Sprintf("value %q is not one of %q", str, s.Enum)}
		}
		return nil
	case TypeNumber:
		if _, ok := v.(float64); !ok {
			return mismatch(path, s.Type, v)
		}
		return nil
	case TypeInteger:
		f, ok := v.(float64)
		if !ok || f != math.Trunc(f) {
			return mismatch(path, s.Type, v)
		}
		return nil
	case TypeBoolean:
		if _, ok := v.(bool); !ok {
			return mismatch(path, s.Type, v)
		}
		return nil
	default:
		return &Violation{Field: path, Reason: fmt.Sprintf("unsupported schema type %q", s.Type)}
	}
}

func (s *Schema) validateObject(path string, obj map[string]any) error {
	for _, name := range s.Required {
		if _, ok := obj[name]; !ok {
			return &Violation{Field: join(path, name), Reason: "is required"}
		}
		if err := s.property(name).validate(join(path, name), obj[name]); err != nil {
			return err
		}
	}

	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		if !slices.Contains(s.Required, name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		val, ok := obj[name]
		if !ok {
			continue
		}
		if err := s.Properties[name].validate(join(path, name), val); err != nil {
			return err
		}
	}
	return nil
}

// property returns the schema for a required field; a required field without a
// declared schema accepts any value.
func (s *Schema) property(name string) *Schema {
	if p, ok := s.Properties[name]; ok && p != nil {
		return p
	}
	return &Schema{}
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func mismatch(path string, want Type, got any) error {
	return &Violation{Field: path, Reason: fmt.Sprintf("expected %s, got %s", want, kind(got))}
}

func kind(v any) string {
	switch v.(type) {
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
