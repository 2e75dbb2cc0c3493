// Package resolve checks the references a schema document declares once the
// whole document has been observed.
package resolve

import (
	"github.com/jacoelho/solrschema/errors"
	"github.com/jacoelho/solrschema/internal/element"
	"github.com/jacoelho/solrschema/internal/state"
)

// Resolve checks, in order, the unique key, field types and copyField
// endpoints. It returns the first unresolved reference as a *errors.Violation.
func Resolve(s *state.State) error {
	if s == nil {
		return nil
	}
	if err := resolveUniqueKey(s); err != nil {
		return err
	}
	if err := resolveFieldTypes(s); err != nil {
		return err
	}
	return resolveCopyFields(s)
}

func resolveUniqueKey(s *state.State) error {
	name, ok := s.UniqueKey.Name()
	if !ok || s.Names.Has(element.Field.String(), name) {
		return nil
	}
	v := errors.NewViolationf(errors.ErrUnresolvedUniqueKey,
		"uniqueKey %q does not name a declared field", name)
	v.Element = element.UniqueKey.String()
	v.Actual = name
	pos := s.UniqueKey.Pos()
	return v.At(pos.Line, pos.Column)
}

func resolveFieldTypes(s *state.State) error {
	fieldType := element.FieldType.String()
	for ref := range s.Types.All() {
		if s.Names.Has(fieldType, ref.Type) {
			continue
		}
		v := errors.NewViolationf(errors.ErrUnresolvedFieldType,
			"field %q references undeclared fieldType %q", ref.Field, ref.Type)
		v.Element = ref.Element
		v.Name = ref.Field
		v.Actual = ref.Type
		return v.At(ref.Pos.Line, ref.Pos.Column)
	}
	return nil
}

func resolveCopyFields(s *state.State) error {
	field := element.Field.String()
	for edge := range s.Copies.All() {
		for _, endpoint := range [...]struct{ role, name string }{
			{role: "source", name: edge.Source},
			{role: "dest", name: edge.Dest},
		} {
			if s.Names.Has(field, endpoint.name) {
				continue
			}
			v := errors.NewViolationf(errors.ErrUnresolvedCopyFieldEndpoint,
				"copyField %s %q is not a declared field", endpoint.role, endpoint.name)
			v.Element = element.CopyField.String()
			v.Actual = endpoint.name
			return v.At(edge.Pos.Line, edge.Pos.Column)
		}
	}
	return nil
}
