package mock

// DefaultMaxDepth bounds how deeply the synthesizer follows nested values.
const DefaultMaxDepth = 64

// ScalarKind selects the default value category of a scalar type.
type ScalarKind int

const (
	KindString ScalarKind = iota + 1
	KindInt
	KindFloat
	KindBoolean
)

var builtinScalarKinds = map[string]ScalarKind{
	"String":  KindString,
	"ID":      KindString,
	"Int":     KindInt,
	"Float":   KindFloat,
	"Boolean": KindBoolean,
}

// Options controls synthesis. Use NewOptions to get the defaults.
type Options struct {
	// IncludeTypename appends __typename to every synthesized output object.
	IncludeTypename bool
	// ScalarValues maps scalar type names to the value used when a non-null
	// field of that type has no override. A registered nil value is an
	// error.
	ScalarValues map[string]any
	// ScalarKinds maps custom scalars to a default value category.
	ScalarKinds map[string]ScalarKind
	// MaxDepth is the nesting limit past which synthesis fails with a
	// DepthLimitError. Zero or less means DefaultMaxDepth.
	MaxDepth int
}

// Option mutates Options in NewOptions.
type Option func(*Options)

func NewOptions(opts ...Option) Options {
	o := Options{
		IncludeTypename: true,
		ScalarValues:    map[string]any{},
		ScalarKinds:     map[string]ScalarKind{},
		MaxDepth:        DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithTypename toggles the __typename discriminator on output objects.
// An explicitly selected __typename is always emitted.
func WithTypename(include bool) Option {
	return func(o *Options) { o.IncludeTypename = include }
}

// WithScalarValue sets the default value for one scalar type.
func WithScalarValue(scalar string, value any) Option {
	return func(o *Options) {
		if o.ScalarValues == nil {
			o.ScalarValues = map[string]any{}
		}
		o.ScalarValues[scalar] = value
	}
}

// WithScalarValues merges values into the scalar defaults, replacing
// entries with the same name.
func WithScalarValues(values map[string]any) Option {
	return func(o *Options) {
		if o.ScalarValues == nil {
			o.ScalarValues = map[string]any{}
		}
		for k, v := range values {
			o.ScalarValues[k] = v
		}
	}
}

// WithScalarKind makes a custom scalar default like a builtin of the given
// kind.
func WithScalarKind(scalar string, kind ScalarKind) Option {
	return func(o *Options) {
		if o.ScalarKinds == nil {
			o.ScalarKinds = map[string]ScalarKind{}
		}
		o.ScalarKinds[scalar] = kind
	}
}

// WithMaxDepth sets Options.MaxDepth.
func WithMaxDepth(depth int) Option {
	return func(o *Options) { o.MaxDepth = depth }
}

// ParseScalarKind maps the names used in scalar configuration ("string",
// "number", "int", "float", "boolean") to a ScalarKind.
func ParseScalarKind(name string) (ScalarKind, bool) {
	switch name {
	case "string", "String", "ID":
		return KindString, true
	case "number", "int", "Int":
		return KindInt, true
	case "float", "Float":
		return KindFloat, true
	case "boolean", "bool", "Boolean":
		return KindBoolean, true
	}
	return 0, false
}

// ScalarKindOf resolves the default value category of a scalar, consulting
// custom mappings before the builtin scalars.
func (o Options) ScalarKindOf(scalar string) (ScalarKind, bool) {
	if kind, ok := o.ScalarKinds[scalar]; ok {
		return kind, true
	}
	kind, ok := builtinScalarKinds[scalar]
	return kind, ok
}

func (o Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}
