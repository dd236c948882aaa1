package mock

import (
	"errors"

	language "github.com/hanpama/mockgraph/internal/language"
	"github.com/hanpama/mockgraph/internal/typedtree"
)

// Direction selects how absent values are rendered.
type Direction int

const (
	// Output renders absent nullable fields as null and may add __typename.
	Output Direction = iota
	// Input omits absent nullable fields.
	Input
)

func (d Direction) String() string {
	if d == Input {
		return "input"
	}
	return "output"
}

// Synthesize builds a complete value for node from a partial override.
// Keys of override that the node does not declare are ignored. Neither the
// node nor the override is modified. An omitted input value is returned as
// nil.
func Synthesize(node *typedtree.Node, override any, dir Direction, opts Options) (any, error) {
	s := &synthesizer{dir: dir, opts: opts}
	v, _, err := s.value(node, override, "", "", nil, 0)
	return v, err
}

type synthesizer struct {
	dir  Direction
	opts Options
	// root is the operation root. Leaf defaults of its own fields carry no
	// typename, matching the variables root.
	root *typedtree.Node
}

// value synthesizes node as a field of an object whose resolved typename is
// parent. label is the typename leaf defaults are named after. ok is false
// when the field is left out of an input object.
func (s *synthesizer) value(n *typedtree.Node, override any, parent, label string, path Path, depth int) (v any, ok bool, err error) {
	if depth > s.opts.maxDepth() {
		return nil, false, &DepthLimitError{Limit: s.opts.maxDepth(), Path: path.String()}
	}
	absent := isNullish(override)

	if n.List {
		items, isList := asList(override)
		if absent || !isList {
			if n.NonNull {
				return []any{}, true, nil
			}
			return s.missing()
		}
		out := make([]any, len(items))
		for i, item := range items {
			out[i], err = s.element(n, item, label, appendPath(path, i), depth+1)
			if err != nil {
				return nil, false, err
			}
		}
		return out, true, nil
	}

	switch n.Kind {
	case typedtree.KindScalar, typedtree.KindEnum:
		if !absent {
			return override, true, nil
		}
		if !n.NonNull {
			return s.missing()
		}
		v, err = s.leafDefault(n, label, path)
		return v, err == nil, err
	case typedtree.KindTypename:
		return parent, true, nil
	}

	if absent && !n.NonNull {
		return s.missing()
	}
	v, err = s.object(n, asObject(override), path, depth)
	return v, err == nil, err
}

// element synthesizes one list item. Items are always present: a nil item
// gets the same value an absent non-null field would.
func (s *synthesizer) element(n *typedtree.Node, item any, label string, path Path, depth int) (any, error) {
	switch n.Kind {
	case typedtree.KindScalar, typedtree.KindEnum:
		if !isNullish(item) {
			return item, nil
		}
		return s.leafDefault(n, label, path)
	}
	return s.object(n, asObject(item), path, depth)
}

func (s *synthesizer) missing() (any, bool, error) {
	if s.dir == Input {
		return nil, false, nil
	}
	return nil, true, nil
}

func (s *synthesizer) leafDefault(n *typedtree.Node, label string, path Path) (any, error) {
	v, err := DefaultFor(n.Type, n.FieldName, label, s.opts)
	if err != nil {
		return nil, withPath(err, path)
	}
	return v, nil
}

// object builds an input object or resolves a composite output node to one
// of its possible types and fills its selected fields.
func (s *synthesizer) object(n *typedtree.Node, values map[string]any, path Path, depth int) (map[string]any, error) {
	typename := n.TypeName()
	if n.Kind != typedtree.KindInputObject {
		typename = resolveTypename(n, values)
	}
	label := typename
	if n == s.root {
		label = ""
	}
	out := make(map[string]any, len(n.Children())+1)
	if err := s.fill(out, n, values, typename, label, path, depth); err != nil {
		return nil, err
	}
	if s.dir == Output && n.IsComposite() && n.Name != "" && s.opts.IncludeTypename {
		out[language.TypenameField] = typename
	}
	return out, nil
}

// fill writes the fields of n into out. Fragments whose type condition
// admits typename are merged in place; later ones win on shared keys.
func (s *synthesizer) fill(out map[string]any, n *typedtree.Node, values map[string]any, typename, label string, path Path, depth int) error {
	for _, c := range n.Children() {
		if c.Kind == typedtree.KindFragment {
			if !c.HasTypename(typename) {
				continue
			}
			if depth+1 > s.opts.maxDepth() {
				return &DepthLimitError{Limit: s.opts.maxDepth(), Path: path.String()}
			}
			if err := s.fill(out, c, values, typename, label, path, depth+1); err != nil {
				return err
			}
			continue
		}
		v, ok, err := s.value(c, values[c.Name], typename, label, appendPath(path, c.Name), depth+1)
		if err != nil {
			return err
		}
		if ok {
			out[c.Name] = v
		}
	}
	return nil
}

// resolveTypename picks the override's __typename when it names one of the
// node's possible types and the first possible type otherwise.
func resolveTypename(n *typedtree.Node, values map[string]any) string {
	if name, ok := values[language.TypenameField].(string); ok && n.HasTypename(name) {
		return name
	}
	if len(n.Typenames) == 0 {
		return n.TypeName()
	}
	return n.Typenames[0]
}

func withPath(err error, path Path) error {
	var missing *MissingScalarOverrideError
	if errors.As(err, &missing) {
		missing.Path = path.String()
		return missing
	}
	var unresolvable *UnresolvableScalarError
	if errors.As(err, &unresolvable) {
		unresolvable.Path = path.String()
		return unresolvable
	}
	return err
}
