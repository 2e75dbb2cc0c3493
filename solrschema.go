// Package solrschema validates Solr schema.xml documents.
//
// A document is streamed once, front to back. Every element must be a
// recognized schema construct whose attributes satisfy the rule tables, and
// once the stream ends the unique key, field types and copyField endpoints
// must resolve. Validation stops at the first violation, which is returned as
// a *errors.Violation.
package solrschema

import (
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/jacoelho/solrschema/internal/rules"
)

const tracerName = "github.com/jacoelho/solrschema"

// Rules is an immutable set of rule tables. It is safe to share between
// validators and goroutines.
type Rules = rules.Tables

// DefaultRules returns the built-in rule tables.
func DefaultRules() *Rules { return rules.Default() }

// LoadRules decodes rule tables from YAML.
func LoadRules(r io.Reader) (*Rules, error) { return rules.Load(r) }

// LoadRulesFile decodes rule tables from a YAML file.
func LoadRulesFile(path string) (*Rules, error) { return rules.LoadFile(path) }

// Validator validates schema documents against a fixed set of rules.
// It holds no per-document state and is safe for concurrent use.
type Validator struct {
	rules  *Rules
	logger *slog.Logger
	tracer trace.Tracer
	limits xmlParseLimits
}

// New creates a validator. Without options it uses DefaultRules, discards
// logs and records no spans.
func New(opts ...Option) (*Validator, error) {
	cfg := applyOptions(opts)
	limits, err := resolveXMLParseLimits(cfg.maxDepth, cfg.maxAttrs, cfg.maxTokenSize)
	if err != nil {
		return nil, fmt.Errorf("new validator: %w", err)
	}

	v := &Validator{
		rules:  cfg.rules,
		logger: cfg.logger,
		tracer: cfg.tracer,
		limits: limits,
	}
	if v.rules == nil {
		v.rules = rules.Default()
	}
	if v.logger == nil {
		v.logger = slog.New(slog.DiscardHandler)
	}
	if v.tracer == nil {
		v.tracer = noop.NewTracerProvider().Tracer(tracerName)
	}
	return v, nil
}

// Rules returns the tables the validator applies.
func (v *Validator) Rules() *Rules {
	if v == nil {
		return nil
	}
	return v.rules
}

// Validate validates a document with the default rules.
func Validate(r io.Reader) error {
	v, err := New()
	if err != nil {
		return err
	}
	return v.Validate(r)
}

// ValidateFile validates a schema file with the default rules.
func ValidateFile(path string) error {
	v, err := New()
	if err != nil {
		return err
	}
	return v.ValidateFile(path)
}
