package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode identifies a schema rule violation.
type ErrorCode string

// Error lets an ErrorCode be used as an errors.Is target.
func (c ErrorCode) Error() string { return string(c) }

const (
	// ErrXMLParse indicates the schema document could not be parsed as XML.
	ErrXMLParse ErrorCode = "xml-parse-error"
	// ErrXMLLimit indicates the schema document exceeded a configured parse limit.
	ErrXMLLimit ErrorCode = "xml-limit-exceeded"

	// ErrUnsupportedElement indicates an element tag that is not a schema construct.
	ErrUnsupportedElement ErrorCode = "unsupported-element"
	// ErrMissingRequiredAttribute indicates a field is missing name or type.
	ErrMissingRequiredAttribute ErrorCode = "missing-required-attribute"
	// ErrUnrecognizedOptionalAttribute indicates an unknown field attribute.
	ErrUnrecognizedOptionalAttribute ErrorCode = "unrecognized-optional-attribute"
	// ErrInvalidBooleanValue indicates a boolean property not spelled true or false.
	ErrInvalidBooleanValue ErrorCode = "invalid-boolean-value"
	// ErrDuplicateTypeDeclaration indicates a field declared with a type twice.
	ErrDuplicateTypeDeclaration ErrorCode = "duplicate-type-declaration"

	// ErrMissingSource indicates a copyField without a source attribute.
	ErrMissingSource ErrorCode = "missing-source"
	// ErrMissingDest indicates a copyField without a dest attribute.
	ErrMissingDest ErrorCode = "missing-dest"
	// ErrSelfReferentialCopy indicates a copyField whose source equals its dest.
	ErrSelfReferentialCopy ErrorCode = "self-referential-copy"

	// ErrUnsupportedImplementationClass indicates a fieldType class outside the allow-list.
	ErrUnsupportedImplementationClass ErrorCode = "unsupported-implementation-class"
	// ErrDeprecatedImplementationClass indicates a fieldType class that is deprecated.
	ErrDeprecatedImplementationClass ErrorCode = "deprecated-implementation-class"
	// ErrNoRecognizedAttributes indicates a fieldType without any general property.
	ErrNoRecognizedAttributes ErrorCode = "no-recognized-attributes"

	// ErrReservedName indicates a declaration using a reserved keyword as its name.
	ErrReservedName ErrorCode = "reserved-name"
	// ErrDuplicateName indicates a name declared twice for the same element kind.
	ErrDuplicateName ErrorCode = "duplicate-name"

	// ErrUnresolvedUniqueKey indicates the uniqueKey names no declared field.
	ErrUnresolvedUniqueKey ErrorCode = "unresolved-unique-key"
	// ErrUnresolvedFieldType indicates a field references an undeclared fieldType.
	ErrUnresolvedFieldType ErrorCode = "unresolved-field-type"
	// ErrUnresolvedCopyFieldEndpoint indicates a copyField endpoint that is not a declared field.
	ErrUnresolvedCopyFieldEndpoint ErrorCode = "unresolved-copy-field-endpoint"
)

// Violation describes the first rule a schema document broke, with the
// offending element tag, its declared name and line/column when known.
//
//nolint:errname // public API name uses schema domain term.
type Violation struct {
	Code     ErrorCode
	Message  string
	Element  string
	Name     string
	Actual   string
	Expected []string
	Line     int
	Column   int
}

// Error formats the violation for display, including code, message, and context.
func (v *Violation) Error() string {
	if v == nil {
		return "violation <nil>"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", v.Code, v.Message)
	switch {
	case v.Element != "" && v.Name != "":
		fmt.Fprintf(&b, " in %s=%s", v.Element, v.Name)
	case v.Element != "":
		fmt.Fprintf(&b, " in %s", v.Element)
	}
	if v.Line > 0 && v.Column > 0 {
		fmt.Fprintf(&b, " at line %d, column %d", v.Line, v.Column)
	}
	if len(v.Expected) > 0 {
		fmt.Fprintf(&b, " (expected: %s)", strings.Join(v.Expected, ", "))
	}
	if v.Actual != "" {
		fmt.Fprintf(&b, " (actual: %s)", v.Actual)
	}
	return b.String()
}

// Is reports whether target is the violation's ErrorCode.
func (v *Violation) Is(target error) bool {
	code, ok := target.(ErrorCode)
	return ok && v != nil && v.Code == code
}

// At records the position of the event that triggered the violation.
// Positions already set are kept.
func (v *Violation) At(line, column int) *Violation {
	if v == nil || v.Line > 0 {
		return v
	}
	v.Line = line
	v.Column = column
	return v
}

// NewViolation builds a Violation with a code and message.
func NewViolation(code ErrorCode, msg string) *Violation {
	return &Violation{Code: code, Message: msg}
}

// NewViolationf formats a message and builds a Violation.
func NewViolationf(code ErrorCode, format string, args ...any) *Violation {
	return NewViolation(code, fmt.Sprintf(format, args...))
}

// AsViolation extracts the violation from an error returned by validation helpers.
func AsViolation(err error) (*Violation, bool) {
	if err == nil {
		return nil, false
	}
	var v *Violation
	if errors.As(err, &v) && v != nil {
		return v, true
	}
	return nil, false
}
