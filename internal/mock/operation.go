package mock

import (
	language "github.com/hanpama/mockgraph/internal/language"
	"github.com/hanpama/mockgraph/internal/typedtree"
)

// Operation exposes the variables and data synthesizers of one built
// operation.
type Operation struct {
	tree *typedtree.Tree
}

func NewOperation(tree *typedtree.Tree) *Operation {
	return &Operation{tree: tree}
}

func (o *Operation) Name() string { return o.tree.Name }
func (o *Operation) Kind() language.Operation { return o.tree.Operation }
func (o *Operation) Tree() *typedtree.Tree { return o.tree }

// Variables returns a complete variables object for the operation.
// Nullable variables without an override are left out.
func (o *Operation) Variables(override map[string]any, opts ...Option) (map[string]any, error) {
	return o.synthesize(o.tree.Variables, override, Input, NewOptions(opts...))
}

// Data returns a complete data object for the operation's selection set.
func (o *Operation) Data(override map[string]any, opts ...Option) (map[string]any, error) {
	return o.synthesize(o.tree.Data, override, Output, NewOptions(opts...))
}

func (o *Operation) synthesize(root *typedtree.Node, override map[string]any, dir Direction, opts Options) (map[string]any, error) {
	s := &synthesizer{dir: dir, opts: opts, root: root}
	return s.object(root, override, nil, 0)
}
