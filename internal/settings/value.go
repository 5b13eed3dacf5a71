package settings

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Type is the declared type of a setting value.
type Type string

const (
	// TypeBoolean settings hold true or false.
	TypeBoolean Type = "boolean"
	// TypeText settings hold a string.
	TypeText Type = "text"
	// TypeImage settings hold an http(s) image URL, or nothing.
	TypeImage Type = "image"
)

// MaxTextLength is the longest text value accepted, in characters.
const MaxTextLength = 65535

var validate = validator.New()

// Valid reports whether t is a known type.
func (t Type) Valid() bool {
	switch t {
	case TypeBoolean, TypeText, TypeImage:
		return true
	default:
		return false
	}
}

// Value is a setting payload tagged with its type.
// Bool is used by boolean values, Text by text and image values.
// An image value with empty Text means no image and is encoded as null.
type Value struct {
	Type Type
	Bool bool
	Text string
}

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{Type: TypeBoolean, Bool: b} }

// Text returns a text value.
func Text(s string) Value { return Value{Type: TypeText, Text: s} }

// Image returns an image value, an empty url means no image.
func Image(url string) Value { return Value{Type: TypeImage, Text: url} }

var jsonNull = []byte("null")

// Decode checks that raw has the JSON shape required by t.
// It does not apply content rules, see Validate.
func Decode(t Type, raw json.RawMessage) (Value, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Value{}, fmt.Errorf("%w: value is required", ErrValidation)
	}

	switch t {
	case TypeBoolean:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil || bytes.Equal(raw, jsonNull) {
			return Value{}, fmt.Errorf("%w: %s expects true or false, got %s", ErrValidation, t, raw)
		}

		return Bool(b), nil
	case TypeText:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || bytes.Equal(raw, jsonNull) {
			return Value{}, fmt.Errorf("%w: %s expects a string, got %s", ErrValidation, t, raw)
		}

		return Text(s), nil
	case TypeImage:
		if bytes.Equal(raw, jsonNull) {
			return Image(""), nil
		}

		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Value{}, fmt.Errorf("%w: %s expects a URL string or null, got %s", ErrValidation, t, raw)
		}

		return Image(s), nil
	default:
		return Value{}, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
}

// Parse decodes raw for type t and validates the result.
func Parse(t Type, raw json.RawMessage) (Value, error) {
	v, err := Decode(t, raw)
	if err != nil {
		return Value{}, err
	}

	if err = v.Validate(); err != nil {
		return Value{}, err
	}

	return v, nil
}

// Validate applies the content rules of the value's type.
func (v Value) Validate() error {
	switch v.Type {
	case TypeBoolean:
		return nil
	case TypeText:
		if err := validate.Var(v.Text, fmt.Sprintf("max=%d", MaxTextLength)); err != nil {
			return fmt.Errorf("%w: text longer than %d characters", ErrValidation, MaxTextLength)
		}

		return nil
	case TypeImage:
		if err := validate.Var(v.Text, "omitempty,http_url"); err != nil {
			return fmt.Errorf("%w: %q is not an http(s) URL", ErrValidation, v.Text)
		}

		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, v.Type)
	}
}

// Interface returns the value as bool, string or nil.
func (v Value) Interface() any {
	switch v.Type {
	case TypeBoolean:
		return v.Bool
	case TypeImage:
		if v.Text == "" {
			return nil
		}

		return v.Text
	default:
		return v.Text
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// String implements fmt.Stringer.
func (v Value) String() string {
	if v.Type == TypeBoolean {
		return fmt.Sprintf("%t", v.Bool)
	}

	return v.Text
}
