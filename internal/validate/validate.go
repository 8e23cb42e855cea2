// Package validate implements the declarative, closed-schema input
// validator. Constraints (type, format, length, enumerations) are declared
// per tool and enforced structurally; unknown fields are always rejected so
// parameters cannot be smuggled past the security gate.
package validate

import (
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"

	"github.com/toolgate/toolgate/internal/toolerr"
)

// Type is the declared JSON type of a field.
type Type string

const (
	String Type = "string"
	Int    Type = "integer"
	Bool   Type = "boolean"
)

// Format is an optional structural constraint on string fields.
type Format string

const (
	FormatNone       Format = ""
	FormatIP         Format = "ip"         // IPv4 or IPv6 literal
	FormatIdentifier Format = "identifier" // language identifier, dots allowed
	FormatURL        Format = "url"        // absolute http(s) URL
)

// identifierRE accepts dotted identifiers such as fully qualified class
// names: com.example.Foo$Inner.
var identifierRE = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*(\.[A-Za-z_$][A-Za-z0-9_$]*)*$`)

// Field declares the constraints on one input field.
type Field struct {
	Name        string
	Type        Type
	Required    bool
	Format      Format
	Enum        []string // allowed values, string fields only
	MaxLen      int      // max length in bytes, string fields only, 0 = unbounded
	Min, Max    *int     // bounds, integer fields only
	Description string
}

// Object is a closed input schema: any field not declared here is rejected.
type Object struct {
	Fields []Field
}

// WithField returns a copy of o with f appended. Used by the engine to add
// the confirmed flag to mutating tools without touching wrapper code.
func (o *Object) WithField(f Field) *Object {
	out := &Object{Fields: make([]Field, 0, len(o.Fields)+1)}
	out.Fields = append(out.Fields, o.Fields...)
	for _, existing := range out.Fields {
		if existing.Name == f.Name {
			return out
		}
	}
	out.Fields = append(out.Fields, f)
	return out
}

// Apply checks input against the schema and returns a normalized copy
// (JSON float64 integers become int). It fails with a ValidationError
// describing the first violated constraint.
func (o *Object) Apply(tool string, input map[string]any) (map[string]any, error) {
	declared := make(map[string]Field, len(o.Fields))
	for _, f := range o.Fields {
		declared[f.Name] = f
	}

	for name := range input {
		if _, ok := declared[name]; !ok {
			return nil, toolerr.Validation(tool, name, "unknown field")
		}
	}

	out := make(map[string]any, len(input))
	for _, f := range o.Fields {
		raw, present := input[f.Name]
		if !present || raw == nil {
			if f.Required {
				return nil, toolerr.Validation(tool, f.Name, "required field missing")
			}
			continue
		}
		v, err := checkField(tool, f, raw)
		if err != nil {
			return nil, err
		}
		out[f.Name] = v
	}
	return out, nil
}

func checkField(tool string, f Field, raw any) (any, error) {
	switch f.Type {
	case String:
		s, ok := raw.(string)
		if !ok {
			return nil, toolerr.Validation(tool, f.Name, "expected string")
		}
		if s == "" && f.Required {
			return nil, toolerr.Validation(tool, f.Name, "must not be empty")
		}
		if f.MaxLen > 0 && len(s) > f.MaxLen {
			return nil, toolerr.Validation(tool, f.Name, fmt.Sprintf("exceeds %d bytes", f.MaxLen))
		}
		if len(f.Enum) > 0 && !contains(f.Enum, s) {
			return nil, toolerr.Validation(tool, f.Name,
				fmt.Sprintf("must be one of: %s", strings.Join(f.Enum, ", ")))
		}
		if err := checkFormat(f.Format, s); err != nil {
			return nil, toolerr.Validation(tool, f.Name, err.Error())
		}
		return s, nil

	case Int:
		n, ok := asInt(raw)
		if !ok {
			return nil, toolerr.Validation(tool, f.Name, "expected integer")
		}
		if f.Min != nil && n < *f.Min {
			return nil, toolerr.Validation(tool, f.Name, fmt.Sprintf("must be >= %d", *f.Min))
		}
		if f.Max != nil && n > *f.Max {
			return nil, toolerr.Validation(tool, f.Name, fmt.Sprintf("must be <= %d", *f.Max))
		}
		return n, nil

	case Bool:
		b, ok := raw.(bool)
		if !ok {
			return nil, toolerr.Validation(tool, f.Name, "expected boolean")
		}
		return b, nil

	default:
		return nil, toolerr.Validation(tool, f.Name, fmt.Sprintf("unsupported type %q", f.Type))
	}
}

func checkFormat(format Format, s string) error {
	switch format {
	case FormatNone:
		return nil
	case FormatIP:
		if net.ParseIP(s) == nil {
			return fmt.Errorf("not a valid IP address")
		}
		return nil
	case FormatIdentifier:
		if !identifierRE.MatchString(s) {
			return fmt.Errorf("not a valid identifier")
		}
		return nil
	case FormatURL:
		u, err := url.Parse(s)
		if err != nil {
			return fmt.Errorf("not a valid URL")
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("only http/https allowed, got %q", u.Scheme)
		}
		if u.Host == "" {
			return fmt.Errorf("missing host in URL")
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// asInt accepts Go ints and integral JSON float64 values.
func asInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	default:
		return 0, false
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// JSONSchema renders the object as a JSON Schema document for tool listings.
func (o *Object) JSONSchema() json.RawMessage {
	props := make(map[string]any, len(o.Fields))
	var required []string
	for _, f := range o.Fields {
		p := map[string]any{"type": string(f.Type)}
		if f.Description != "" {
			p["description"] = f.Description
		}
		if len(f.Enum) > 0 {
			p["enum"] = f.Enum
		}
		if f.MaxLen > 0 {
			p["maxLength"] = f.MaxLen
		}
		if f.Min != nil {
			p["minimum"] = *f.Min
		}
		if f.Max != nil {
			p["maximum"] = *f.Max
		}
		props[f.Name] = p
		if f.Required {
			required = append(required, f.Name)
		}
	}
	doc := map[string]any{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		doc["required"] = required
	}
	b, _ := json.Marshal(doc)
	return json.RawMessage(b)
}

// IntPtr is a convenience for declaring Min/Max bounds inline.
func IntPtr(n int) *int { return &n }
