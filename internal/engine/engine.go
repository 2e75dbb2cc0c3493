// Package engine applies the schema rule tables to a stream of element and
// character data events, accumulating state for the final reference check.
//
// An Engine validates exactly one document and stops at the first violation:
// after ObserveElement or Finish returns an error the engine must be discarded.
package engine

import (
	"log/slog"
	"strings"

	"github.com/jacoelho/solrschema/errors"
	"github.com/jacoelho/solrschema/internal/element"
	"github.com/jacoelho/solrschema/internal/resolve"
	"github.com/jacoelho/solrschema/internal/rules"
	"github.com/jacoelho/solrschema/internal/state"
)

const (
	attrName   = "name"
	attrType   = "type"
	attrClass  = "class"
	attrSource = "source"
	attrDest   = "dest"
)

var booleanValues = []string{"true", "false"}

// Engine is the per-document rule engine.
type Engine struct {
	rules    *rules.Tables
	state    *state.State
	logger   *slog.Logger
	elements int
}

// Stats summarizes what an engine has observed.
type Stats struct {
	Elements   int
	Names      int
	TypeRefs   int
	CopyFields int
}

// New returns an engine with empty state. A nil tables uses rules.Default;
// a nil logger discards output.
func New(tables *rules.Tables, logger *slog.Logger) *Engine {
	if tables == nil {
		tables = rules.Default()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		rules:  tables,
		state:  state.New(),
		logger: logger,
	}
}

// State exposes the accumulated state.
func (e *Engine) State() *state.State { return e.state }

// Stats reports counters for the current run.
func (e *Engine) Stats() Stats {
	return Stats{
		Elements:   e.elements,
		Names:      e.state.Names.Len(),
		TypeRefs:   e.state.Types.Len(),
		CopyFields: e.state.Copies.Len(),
	}
}

// ObserveElement applies the rules for one element start. The returned error
// is a *errors.Violation positioned at pos.
func (e *Engine) ObserveElement(tag string, attrs element.Attrs, pos state.Position) error {
	e.elements++
	if err := e.observe(tag, attrs, pos); err != nil {
		if v, ok := errors.AsViolation(err); ok {
			v.At(pos.Line, pos.Column)
		}
		return err
	}
	return nil
}

func (e *Engine) observe(tag string, attrs element.Attrs, pos state.Position) error {
	if !e.rules.IsElement(tag) {
		v := errors.NewViolationf(errors.ErrUnsupportedElement, "unsupported schema element %q", tag)
		v.Element = tag
		return v
	}

	kind := element.Classify(tag)
	switch kind.Tag() {
	case element.Field, element.DynamicField:
		return e.observeField(kind, attrs, pos)
	case element.CopyField:
		return e.observeCopyField(kind, attrs, pos)
	case element.FieldType:
		return e.observeFieldType(kind, attrs)
	case element.UniqueKey:
		e.state.UniqueKey.Open(pos)
		return nil
	default:
		e.logger.Debug("skipping element", "element", kind.Name(), "line", pos.Line)
		return nil
	}
}

// ObserveText feeds character data. Text right after a uniqueKey start names
// the unique key field; other text is ignored.
func (e *Engine) ObserveText(text string, pos state.Position) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return
	}
	if e.state.UniqueKey.Pending() {
		e.state.UniqueKey.Capture(trimmed)
		e.logger.Debug("captured unique key", "field", trimmed, "line", pos.Line)
		return
	}
	e.logger.Debug("ignoring character data", "text", trimmed, "line", pos.Line)
}

// ObserveEnd feeds an element end.
func (e *Engine) ObserveEnd(tag string) {
	if element.Classify(tag).Tag() == element.UniqueKey {
		e.state.UniqueKey.Close()
	}
}

// Finish resolves deferred references once the stream is exhausted.
func (e *Engine) Finish() error {
	return resolve.Resolve(e.state)
}

func (e *Engine) observeField(kind element.Kind, attrs element.Attrs, pos state.Position) error {
	required := e.rules.RequiredFieldAttributes()
	for _, key := range required {
		if !attrs.Has(key) {
			v := errors.NewViolationf(errors.ErrMissingRequiredAttribute,
				"%s must declare attributes %v", kind, required)
			v.Element = kind.Name()
			v.Name = attrs.Value(attrName)
			v.Expected = required
			return v
		}
	}

	name := attrs.Value(attrName)
	for _, attr := range attrs {
		if e.rules.IsFieldAttribute(attr.Key) {
			continue
		}
		if !e.rules.IsBooleanProperty(attr.Key) {
			v := errors.NewViolationf(errors.ErrUnrecognizedOptionalAttribute,
				"unrecognized optional attribute %q for %s", attr.Key, kind)
			v.Element = kind.Name()
			v.Name = name
			v.Actual = attr.Key
			return v
		}
		if attr.Value != "true" && attr.Value != "false" {
			v := errors.NewViolationf(errors.ErrInvalidBooleanValue,
				"unsupported value %q for %s in %s=%s", attr.Value, attr.Key, kind, name)
			v.Element = kind.Name()
			v.Name = name
			v.Actual = attr.Value
			v.Expected = booleanValues
			return v
		}
	}

	if err := e.register(kind, name); err != nil {
		return err
	}

	// Field and dynamicField share one type map.
	if typ, ok := attrs.Lookup(attrType); ok {
		ref := state.TypeRef{Element: kind.Name(), Field: name, Type: typ, Pos: pos}
		if !e.state.Types.Add(ref) && !e.rules.IsConstant(name) {
			v := errors.NewViolationf(errors.ErrDuplicateTypeDeclaration,
				"field %q already declares a type", name)
			v.Element = kind.Name()
			v.Name = name
			v.Actual = typ
			return v
		}
	}
	return nil
}

func (e *Engine) observeCopyField(kind element.Kind, attrs element.Attrs, pos state.Position) error {
	source, ok := attrs.Lookup(attrSource)
	if !ok {
		v := errors.NewViolation(errors.ErrMissingSource, "copyField must have the source attribute")
		v.Element = kind.Name()
		return v
	}
	dest, ok := attrs.Lookup(attrDest)
	if !ok {
		v := errors.NewViolation(errors.ErrMissingDest, "copyField must have the dest attribute")
		v.Element = kind.Name()
		return v
	}
	if source == dest {
		v := errors.NewViolationf(errors.ErrSelfReferentialCopy,
			"dest %q and source %q cannot share the same value in copyField", dest, source)
		v.Element = kind.Name()
		v.Actual = source
		return v
	}
	e.state.Copies.Add(state.CopyEdge{Source: source, Dest: dest, Pos: pos})
	return nil
}

const deprecatedTypesGuide = "https://solr.apache.org/guide/solr/latest/indexing-guide/field-types-included-with-solr.html#deprecated-field-types"

func (e *Engine) observeFieldType(kind element.Kind, attrs element.Attrs) error {
	name := attrs.Value(attrName)
	classes := attrs.All(attrClass)

	for _, class := range classes {
		if e.rules.IsDeprecatedClass(lastSegment(class)) {
			v := errors.NewViolationf(errors.ErrDeprecatedImplementationClass,
				"deprecated class %q in fieldType declaration, replace it with its equivalent type: %s",
				class, deprecatedTypesGuide)
			v.Element = kind.Name()
			v.Name = name
			v.Actual = class
			return v
		}
	}

	supported := false
	for _, class := range classes {
		if suffix, ok := e.rules.TrimClassPrefix(class); ok && e.rules.IsClass(suffix) {
			supported = true
			break
		}
	}
	if !supported {
		v := errors.NewViolation(errors.ErrUnsupportedImplementationClass,
			"undefined class type in fieldType declaration")
		v.Element = kind.Name()
		v.Name = name
		v.Actual = strings.Join(classes, ", ")
		return v
	}

	recognized := false
	for _, attr := range attrs {
		if e.rules.IsFieldTypeProperty(attr.Key) {
			recognized = true
			break
		}
	}
	if !recognized {
		v := errors.NewViolation(errors.ErrNoRecognizedAttributes,
			"fieldType declares none of the general fieldType properties")
		v.Element = kind.Name()
		v.Name = name
		v.Expected = e.rules.FieldTypeProperties()
		return v
	}

	if _, ok := attrs.Lookup(attrName); !ok {
		v := errors.NewViolationf(errors.ErrMissingRequiredAttribute, "%s must declare attribute %q", kind, attrName)
		v.Element = kind.Name()
		v.Expected = []string{attrName}
		return v
	}
	return e.register(kind, name)
}

// register records a declaration under its kind-qualified key.
// Reserved names always fail; constant names may repeat.
func (e *Engine) register(kind element.Kind, name string) error {
	if e.rules.IsReserved(name) {
		v := errors.NewViolationf(errors.ErrReservedName,
			"reserved keyword %q used as a %s name", name, kind)
		v.Element = kind.Name()
		v.Name = name
		return v
	}
	if !e.state.Names.Add(kind.Name(), name) && !e.rules.IsConstant(name) {
		v := errors.NewViolationf(errors.ErrDuplicateName, "duplicate %s name %q", kind, name)
		v.Element = kind.Name()
		v.Name = name
		return v
	}
	return nil
}

func lastSegment(class string) string {
	if i := strings.LastIndexByte(class, '.'); i >= 0 {
		return class[i+1:]
	}
	return class
}
