package schemastream

const (
	defaultMaxDepth     = 256
	defaultMaxAttrs     = 256
	defaultMaxTokenSize = 4 << 20
)

type options struct {
	maxDepth     int
	maxAttrs     int
	maxTokenSize int
}

// Option configures a Reader.
type Option func(*options)

// MaxDepth limits element nesting. Values <= 0 keep the default.
func MaxDepth(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxDepth = n
		}
	}
}

// MaxAttrs limits the attributes on a single element. Values <= 0 keep the default.
func MaxAttrs(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxAttrs = n
		}
	}
}

// MaxTokenSize limits the byte length of character data and attribute
// values. Values <= 0 keep the default.
func MaxTokenSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxTokenSize = n
		}
	}
}

func buildOptions(opts ...Option) options {
	o := options{
		maxDepth:     defaultMaxDepth,
		maxAttrs:     defaultMaxAttrs,
		maxTokenSize: defaultMaxTokenSize,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
