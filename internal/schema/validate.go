package schema

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Violation names one failed constraint: the offending field path, the
// constraint violated, and the actual value. A missing required field has
// a nil Value.
type Violation struct {
	Path       string
	Constraint string
	Value      any
}

func (v Violation) String() string {
	if v.Value == nil {
		return fmt.Sprintf("%s: %s", v.Path, v.Constraint)
	}
	return fmt.Sprintf("%s: %s (got %v)", v.Path, v.Constraint, v.Value)
}

// ValidationError aggregates the violations found in one source file.
type ValidationError struct {
	File       string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	lines := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		lines = append(lines, v.String())
	}
	return fmt.Sprintf("%s: %d schema violation(s): %s",
		e.File, len(e.Violations), strings.Join(lines, "; "))
}

// Validate checks doc against the schema and returns the violations found,
// in deterministic path order. An empty result means the document conforms.
// Validate never mutates doc and never panics on malformed-but-parseable
// input; malformation is reported as violations.
func (s *Schema) Validate(doc map[string]any) []Violation {
	var out []Violation
	out = validateObject(doc, s.Fields, s.Closed, "", out)
	return out
}

// validateObject checks one object level: required fields, unknown fields
// when the field set is closed, and every present field's constraints.
// Field names are walked in sorted order so the violation list is stable.
func validateObject(obj map[string]any, fields map[string]*Field, closed bool, path string, out []Violation) []Violation {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		f := fields[name]
		p := joinPath(path, name)
		val, present := obj[name]
		if !present {
			if f.Required {
				out = append(out, Violation{Path: p, Constraint: "required field missing"})
			}
			continue
		}
		out = validateValue(val, f, p, out)
	}

	if closed {
		var unknown []string
		for key := range obj {
			if _, ok := fields[key]; !ok {
				unknown = append(unknown, key)
			}
		}
		sort.Strings(unknown)
		for _, key := range unknown {
			out = append(out, Violation{Path: joinPath(path, key), Constraint: "unknown field"})
		}
	}

	return out
}

// validateValue checks one value against a field definition.
func validateValue(val any, f *Field, path string, out []Violation) []Violation {
	switch f.Type {
	case "string":
		s, ok := val.(string)
		if !ok {
			return append(out, Violation{Path: path, Constraint: "expected string", Value: val})
		}
		if f.MinLength != nil && len(s) < *f.MinLength {
			return append(out, Violation{Path: path, Constraint: fmt.Sprintf("shorter than min_length %d", *f.MinLength), Value: s})
		}
		if f.re != nil && !f.re.MatchString(s) {
			return append(out, Violation{Path: path, Constraint: fmt.Sprintf("does not match pattern %s", f.Pattern), Value: s})
		}
		if len(f.Enum) > 0 && !contains(f.Enum, s) {
			return append(out, Violation{Path: path, Constraint: fmt.Sprintf("not one of [%s]", strings.Join(f.Enum, ", ")), Value: s})
		}

	case "integer":
		n, ok := asInt(val)
		if !ok {
			return append(out, Violation{Path: path, Constraint: "expected integer", Value: val})
		}
		if f.Minimum != nil && n < *f.Minimum {
			return append(out, Violation{Path: path, Constraint: fmt.Sprintf("below minimum %d", *f.Minimum), Value: n})
		}
		if f.Maximum != nil && n > *f.Maximum {
			return append(out, Violation{Path: path, Constraint: fmt.Sprintf("above maximum %d", *f.Maximum), Value: n})
		}

	case "boolean":
		if _, ok := val.(bool); !ok {
			return append(out, Violation{Path: path, Constraint: "expected boolean", Value: val})
		}

	case "array":
		items, ok := val.([]any)
		if !ok {
			return append(out, Violation{Path: path, Constraint: "expected array", Value: val})
		}
		if f.MinItems != nil && len(items) < *f.MinItems {
			out = append(out, Violation{Path: path, Constraint: fmt.Sprintf("fewer than min_items %d", *f.MinItems), Value: len(items)})
		}
		if f.Items != nil {
			for i, item := range items {
				out = validateValue(item, f.Items, fmt.Sprintf("%s[%d]", path, i), out)
			}
		}

	case "object":
		obj, ok := val.(map[string]any)
		if !ok {
			return append(out, Violation{Path: path, Constraint: "expected object", Value: val})
		}
		out = validateObject(obj, f.Fields, f.Closed, path, out)
	}

	return out
}

// asInt accepts the numeric shapes a JSON or YAML parse can produce and
// reports whether the value is an integral number.
func asInt(val any) (int, bool) {
	switch n := val.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func joinPath(base, name string) string {
	if base == "" {
		return name
	}
	return base + "." + name
}
