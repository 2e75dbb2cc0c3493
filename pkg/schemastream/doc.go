// Package schemastream turns a schema document into the ordered element,
// character data and end events the validator consumes.
// Attribute order is preserved, adjacent character data is coalesced, and
// comments, processing instructions and directives are dropped.
package schemastream
