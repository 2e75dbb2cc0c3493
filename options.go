package solrschema

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// Option configures a Validator.
type Option interface{ apply(*options) }

type options struct {
	rules        *Rules
	logger       *slog.Logger
	tracer       trace.Tracer
	maxDepth     int
	maxAttrs     int
	maxTokenSize int
}

type optionFunc func(*options)

func (f optionFunc) apply(cfg *options) {
	if cfg == nil {
		return
	}
	f(cfg)
}

func applyOptions(opts []Option) options {
	var cfg options
	for _, opt := range opts {
		if opt != nil {
			opt.apply(&cfg)
		}
	}
	return cfg
}

// WithRules sets the rule tables. A nil value keeps the defaults.
func WithRules(r *Rules) Option {
	return optionFunc(func(cfg *options) {
		cfg.rules = r
	})
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(cfg *options) {
		cfg.logger = l
	})
}

// WithTracer sets the tracer used to record one span per validated document.
func WithTracer(t trace.Tracer) Option {
	return optionFunc(func(cfg *options) {
		cfg.tracer = t
	})
}

// WithMaxDepth limits element nesting (0 uses the default).
func WithMaxDepth(n int) Option {
	return optionFunc(func(cfg *options) {
		cfg.maxDepth = n
	})
}

// WithMaxAttrs limits attributes per element (0 uses the default).
func WithMaxAttrs(n int) Option {
	return optionFunc(func(cfg *options) {
		cfg.maxAttrs = n
	})
}

// WithMaxTokenSize limits character data and attribute value size in bytes
// (0 uses the default).
func WithMaxTokenSize(n int) Option {
	return optionFunc(func(cfg *options) {
		cfg.maxTokenSize = n
	})
}
