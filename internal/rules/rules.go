// Package rules holds the static reference tables that drive schema
// validation: recognized element tags, field attribute allow-lists,
// fieldType implementation classes, and reserved or constant names.
//
// Tables are immutable once loaded and safe to share between runs.
package rules

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/util/sets"
)

//go:embed default.yaml
var defaultRules []byte

var loadDefault = sync.OnceValues(func() (*Tables, error) {
	return Load(bytes.NewReader(defaultRules))
})

// document is the YAML shape of a rule table file.
type document struct {
	Elements                []string `yaml:"elements"`
	RequiredFieldAttributes []string `yaml:"requiredFieldAttributes"`
	FieldAttributes         []string `yaml:"fieldAttributes"`
	BooleanProperties       []string `yaml:"booleanProperties"`
	ClassPrefixes           []string `yaml:"classPrefixes"`
	Classes                 []string `yaml:"classes"`
	DeprecatedClasses       []string `yaml:"deprecatedClasses"`
	FieldTypeProperties     []string `yaml:"fieldTypeProperties"`
	ReservedNames           []string `yaml:"reservedNames"`
	ConstantNames           []string `yaml:"constantNames"`
}

// Tables is a loaded, read-only rule table set.
type Tables struct {
	elements          sets.Set[string]
	required          []string
	fieldAttributes   sets.Set[string]
	booleanProperties sets.Set[string]
	classPrefixes     []string
	classes           sets.Set[string]
	deprecated        sets.Set[string]
	fieldTypeProps    sets.Set[string]
	reserved          sets.Set[string]
	constants         sets.Set[string]
}

// Default returns the built-in rule tables.
func Default() *Tables {
	t, err := loadDefault()
	if err != nil {
		panic(fmt.Sprintf("rules: embedded default tables: %v", err))
	}
	return t
}

// Load decodes rule tables from YAML.
func Load(r io.Reader) (*Tables, error) {
	if r == nil {
		return nil, fmt.Errorf("load rules: nil reader")
	}
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	if err := doc.validate(); err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	return doc.tables(), nil
}

// LoadFile decodes rule tables from a YAML file.
func LoadFile(path string) (_ *Tables, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rules file %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rules file %s: %w", path, closeErr)
		}
	}()

	t, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func (d *document) validate() error {
	if len(d.Elements) == 0 {
		return fmt.Errorf("elements must not be empty")
	}
	if len(d.RequiredFieldAttributes) == 0 {
		return fmt.Errorf("requiredFieldAttributes must not be empty")
	}
	if len(d.ClassPrefixes) == 0 {
		return fmt.Errorf("classPrefixes must not be empty")
	}
	for _, prefix := range d.ClassPrefixes {
		if !strings.HasSuffix(prefix, ".") {
			return fmt.Errorf("class prefix %q must end with \".\"", prefix)
		}
	}
	fieldAttrs := sets.New(d.FieldAttributes...)
	for _, key := range d.RequiredFieldAttributes {
		if !fieldAttrs.Has(key) {
			return fmt.Errorf("required field attribute %q missing from fieldAttributes", key)
		}
	}
	return nil
}

func (d *document) tables() *Tables {
	return &Tables{
		elements:          sets.New(d.Elements...),
		required:          append([]string(nil), d.RequiredFieldAttributes...),
		fieldAttributes:   sets.New(d.FieldAttributes...),
		booleanProperties: sets.New(d.BooleanProperties...),
		classPrefixes:     append([]string(nil), d.ClassPrefixes...),
		classes:           sets.New(d.Classes...),
		deprecated:        sets.New(d.DeprecatedClasses...),
		fieldTypeProps:    sets.New(d.FieldTypeProperties...),
		reserved:          sets.New(d.ReservedNames...),
		constants:         sets.New(d.ConstantNames...),
	}
}

// IsElement reports whether tag is a recognized schema element.
func (t *Tables) IsElement(tag string) bool { return t.elements.Has(tag) }

// RequiredFieldAttributes returns the attribute keys every field must carry.
func (t *Tables) RequiredFieldAttributes() []string {
	return append([]string(nil), t.required...)
}

// IsFieldAttribute reports whether key is a plain (non-boolean) field attribute.
func (t *Tables) IsFieldAttribute(key string) bool { return t.fieldAttributes.Has(key) }

// IsBooleanProperty reports whether key is a boolean field property.
func (t *Tables) IsBooleanProperty(key string) bool { return t.booleanProperties.Has(key) }

// TrimClassPrefix strips a recognized implementation namespace from a
// fieldType class. It reports false when no prefix matches.
func (t *Tables) TrimClassPrefix(class string) (string, bool) {
	for _, prefix := range t.classPrefixes {
		if rest, ok := strings.CutPrefix(class, prefix); ok {
			return rest, true
		}
	}
	return "", false
}

// IsClass reports whether suffix is a supported implementation class.
func (t *Tables) IsClass(suffix string) bool { return t.classes.Has(suffix) }

// IsDeprecatedClass reports whether suffix is a deprecated implementation class.
func (t *Tables) IsDeprecatedClass(suffix string) bool { return t.deprecated.Has(suffix) }

// IsFieldTypeProperty reports whether key is a general fieldType property.
func (t *Tables) IsFieldTypeProperty(key string) bool { return t.fieldTypeProps.Has(key) }

// FieldTypeProperties returns the general fieldType properties, sorted.
func (t *Tables) FieldTypeProperties() []string { return sets.List(t.fieldTypeProps) }

// IsReserved reports whether name may never be declared.
func (t *Tables) IsReserved(name string) bool { return t.reserved.Has(name) }

// IsConstant reports whether name is exempt from duplicate checks.
func (t *Tables) IsConstant(name string) bool { return t.constants.Has(name) }

// Table is a named, sorted listing of one rule table.
type Table struct {
	Name    string
	Entries []string
}

// List returns every table in a stable order for display.
func (t *Tables) List() []Table {
	return []Table{
		{Name: "elements", Entries: sets.List(t.elements)},
		{Name: "requiredFieldAttributes", Entries: t.RequiredFieldAttributes()},
		{Name: "fieldAttributes", Entries: sets.List(t.fieldAttributes)},
		{Name: "booleanProperties", Entries: sets.List(t.booleanProperties)},
		{Name: "classPrefixes", Entries: append([]string(nil), t.classPrefixes...)},
		{Name: "classes", Entries: sets.List(t.classes)},
		{Name: "deprecatedClasses", Entries: sets.List(t.deprecated)},
		{Name: "fieldTypeProperties", Entries: t.FieldTypeProperties()},
		{Name: "reservedNames", Entries: sets.List(t.reserved)},
		{Name: "constantNames", Entries: sets.List(t.constants)},
	}
}
