// Package schema validates parsed source records against declarative
// schema documents before anything is typed or written. Records stay in
// their untyped map form until validation passes, so violations can name
// arbitrary field paths without the type system having to represent
// partially-valid data.
package schema

import (
	_ "embed"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed schemas/class-5e-2014.yaml
var classSchemaYAML []byte

// classSchema is parsed once at package init. The embedded document is part
// of the build; a parse failure is a programmer error.
var classSchema = mustParse(classSchemaYAML)

// Class returns the canonical class record schema.
func Class() *Schema {
	return classSchema
}

// Field describes the constraints on one document field. Nested object
// fields carry their own Fields map; array fields describe elements via
// Items.
type Field struct {
	Type      string            `yaml:"type"`
	Required  bool              `yaml:"required"`
	MinLength *int              `yaml:"min_length"`
	Pattern   string            `yaml:"pattern"`
	Enum      []string          `yaml:"enum"`
	Minimum   *int              `yaml:"minimum"`
	Maximum   *int              `yaml:"maximum"`
	MinItems  *int              `yaml:"min_items"`
	Items     *Field            `yaml:"items"`
	Fields    map[string]*Field `yaml:"fields"`
	Closed    bool              `yaml:"closed"`

	re *regexp.Regexp
}

// Schema describes the full shape of one record kind.
type Schema struct {
	Kind   string            `yaml:"kind"`
	Closed bool              `yaml:"closed"`
	Fields map[string]*Field `yaml:"fields"`
}

// Parse reads a schema document from YAML and compiles its patterns.
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing schema document: %w", err)
	}
	if s.Kind == "" {
		return nil, fmt.Errorf("schema document missing kind")
	}
	for name, f := range s.Fields {
		if err := compilePatterns(name, f); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

func mustParse(data []byte) *Schema {
	s, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return s
}

// compilePatterns walks a field definition and compiles every pattern
// constraint, so Validate never pays compilation cost or hits a bad
// pattern mid-run.
func compilePatterns(name string, f *Field) error {
	if f == nil {
		return nil
	}
	if f.Pattern != "" {
		re, err := regexp.Compile(f.Pattern)
		if err != nil {
			return fmt.Errorf("field %s: invalid pattern %q: %w", name, f.Pattern, err)
		}
		f.re = re
	}
	if f.Items != nil {
		if err := compilePatterns(name+"[]", f.Items); err != nil {
			return err
		}
	}
	for sub, sf := range f.Fields {
		if err := compilePatterns(name+"."+sub, sf); err != nil {
			return err
		}
	}
	return nil
}
