package typedtree

import (
	language "github.com/hanpama/mockgraph/internal/language"
	schema "github.com/hanpama/mockgraph/internal/schema"
)

// Index is the read-only schema lookup the builder resolves names against.
// *schema.Schema implements it.
type Index interface {
	RootType(op language.Operation) *schema.Type
	Type(name string) *schema.Type
	Field(typeName, fieldName string) *schema.Field
	// PossibleTypes returns the object types an abstract type resolves to,
	// in declaration order. For an object type it returns its own name.
	PossibleTypes(name string) []string
}

// BuildDocument builds a tree for every operation of doc, sharing one
// fresh Cache between them.
func BuildDocument(doc *language.QueryDocument, index Index) ([]*Tree, error) {
	cache := NewCache()
	trees := make([]*Tree, 0, len(doc.Operations))
	for _, op := range doc.Operations {
		tree, err := Build(doc, op, index, cache)
		if err != nil {
			return nil, err
		}
		trees = append(trees, tree)
	}
	return trees, nil
}

// Build resolves op against index. Fragment definitions are looked up in
// doc. cache must belong to doc; a nil cache builds with a private one.
func Build(doc *language.QueryDocument, op *language.OperationDefinition, index Index, cache *Cache) (*Tree, error) {
	if cache == nil {
		cache = NewCache()
	}
	b := &builder{doc: doc, op: op, index: index, cache: cache}

	kind := op.Operation
	if kind == "" {
		kind = language.Query
	}
	root := index.RootType(kind)
	if root == nil {
		return nil, &UnknownRootTypeError{Operation: op.Name, Kind: kind, Position: op.Position}
	}

	vars, err := b.variables()
	if err != nil {
		return nil, err
	}
	children, err := b.selections(root, op.SelectionSet, 1)
	if err != nil {
		return nil, err
	}
	data := &Node{
		NonNull:   true,
		Kind:      KindObject,
		Type:      root,
		Typenames: []string{root.Name},
		Position:  op.Position,
		children:  children,
	}
	return &Tree{
		Name:      op.Name,
		Operation: kind,
		Position:  op.Position,
		Variables: vars,
		Data:      data,
	}, nil
}

type builder struct {
	doc   *language.QueryDocument
	op    *language.OperationDefinition
	index Index
	cache *Cache
}

func (b *builder) variables() (*Node, error) {
	root := &Node{NonNull: true, Kind: KindInputObject, Position: b.op.Position}
	for _, v := range b.op.VariableDefinitions {
		n, err := b.input(v.Variable, schema.BuildTypeRef(v.Type), v.Position)
		if err != nil {
			return nil, err
		}
		root.children = append(root.children, n)
	}
	return root, nil
}

func (b *builder) input(name string, ref *schema.TypeRef, pos *language.Position) (*Node, error) {
	n, named, err := b.unwrap(name, ref, pos)
	if err != nil {
		return nil, err
	}
	t := b.index.Type(named)
	if t == nil {
		return nil, b.unsupported(name, named, "type is not defined in the schema", pos)
	}
	n.Type = t
	switch t.Kind {
	case schema.TypeKindScalar:
		n.Kind = KindScalar
	case schema.TypeKindEnum:
		n.Kind = KindEnum
	case schema.TypeKindInputObject:
		n.Kind = KindInputObject
		shape, err := b.inputShape(t)
		if err != nil {
			return nil, err
		}
		n.shape = shape
	default:
		return nil, b.unsupported(name, named, "not an input type", pos)
	}
	return n, nil
}

// inputShape resolves every declared field of an input object type once per
// document. The first visit registers the shape before descending so that
// self-references reuse it.
func (b *builder) inputShape(t *schema.Type) (*inputShape, error) {
	if shape, ok := b.cache.inputs[t.Name]; ok {
		return shape, nil
	}
	shape := &inputShape{}
	b.cache.inputs[t.Name] = shape
	fields := make([]*Node, 0, len(t.InputFields))
	for _, f := range t.InputFields {
		n, err := b.input(f.Name, f.Type, nil)
		if err != nil {
			delete(b.cache.inputs, t.Name)
			return nil, err
		}
		fields = append(fields, n)
	}
	shape.fields = fields
	return shape, nil
}

func (b *builder) selections(parent *schema.Type, set language.SelectionSet, depth int) ([]*Node, error) {
	nodes := make([]*Node, 0, len(set))
	for _, sel := range set {
		var (
			n   *Node
			err error
		)
		switch sel := sel.(type) {
		case *language.Field:
			n, err = b.field(parent, sel, depth)
		case *language.InlineFragment:
			n, err = b.inlineFragment(parent, sel, depth)
		case *language.FragmentSpread:
			n, err = b.fragmentSpread(sel, depth)
		default:
			continue
		}
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func (b *builder) field(parent *schema.Type, f *language.Field, depth int) (*Node, error) {
	name := f.Alias
	if name == "" {
		name = f.Name
	}
	if f.Name == language.TypenameField {
		return &Node{
			Name:      name,
			FieldName: f.Name,
			NonNull:   true,
			Kind:      KindTypename,
			Type:      parent,
			Typenames: b.index.PossibleTypes(parent.Name),
			Position:  f.Position,
		}, nil
	}

	def := b.index.Field(parent.Name, f.Name)
	if def == nil {
		return nil, &UnknownFieldError{
			Operation: b.op.Name,
			TypeName:  parent.Name,
			FieldName: f.Name,
			Position:  f.Position,
		}
	}
	n, named, err := b.unwrap(name, def.Type, f.Position)
	if err != nil {
		return nil, err
	}
	n.FieldName = f.Name
	t := b.index.Type(named)
	if t == nil {
		return nil, b.unsupported(name, named, "type is not defined in the schema", f.Position)
	}
	n.Type = t

	switch t.Kind {
	case schema.TypeKindScalar:
		n.Kind = KindScalar
		return n, nil
	case schema.TypeKindEnum:
		n.Kind = KindEnum
		return n, nil
	case schema.TypeKindObject:
		n.Kind = KindObject
	case schema.TypeKindInterface:
		n.Kind = KindInterface
	case schema.TypeKindUnion:
		n.Kind = KindUnion
	default:
		return nil, b.unsupported(name, named, "not an output type", f.Position)
	}

	n.Typenames = b.index.PossibleTypes(t.Name)
	if len(n.Typenames) == 0 {
		return nil, b.unsupported(name, named, "no object type implements it", f.Position)
	}
	if depth >= b.cache.maxDepth() {
		return nil, &DepthLimitError{Operation: b.op.Name, Limit: b.cache.maxDepth(), Position: f.Position}
	}
	children, err := b.selections(t, f.SelectionSet, depth+1)
	if err != nil {
		return nil, err
	}
	n.children = children
	return n, nil
}

func (b *builder) inlineFragment(parent *schema.Type, f *language.InlineFragment, depth int) (*Node, error) {
	cond := parent
	if f.TypeCondition != "" {
		cond = b.index.Type(f.TypeCondition)
		if cond == nil || !cond.IsComposite() {
			return nil, b.unsupported("", f.TypeCondition, "fragment type condition is not a composite type", f.Position)
		}
	}
	if depth >= b.cache.maxDepth() {
		return nil, &DepthLimitError{Operation: b.op.Name, Limit: b.cache.maxDepth(), Position: f.Position}
	}
	children, err := b.selections(cond, f.SelectionSet, depth+1)
	if err != nil {
		return nil, err
	}
	return &Node{
		Kind:      KindFragment,
		Type:      cond,
		Typenames: b.index.PossibleTypes(cond.Name),
		Position:  f.Position,
		children:  children,
	}, nil
}

// fragmentSpread returns the subtree of a named fragment, building it on
// first use. Every spread of the same fragment in a document shares the
// returned node.
func (b *builder) fragmentSpread(s *language.FragmentSpread, depth int) (*Node, error) {
	if n, ok := b.cache.fragments[s.Name]; ok {
		return n, nil
	}
	def := b.doc.Fragments.ForName(s.Name)
	if def == nil {
		return nil, &UnknownFragmentError{Operation: b.op.Name, Fragment: s.Name, Position: s.Position}
	}
	cond := b.index.Type(def.TypeCondition)
	if cond == nil || !cond.IsComposite() {
		return nil, b.unsupported("", def.TypeCondition, "fragment type condition is not a composite type", def.Position)
	}
	if depth >= b.cache.maxDepth() {
		return nil, &DepthLimitError{Operation: b.op.Name, Limit: b.cache.maxDepth(), Position: s.Position}
	}
	n := &Node{
		Kind:      KindFragment,
		Type:      cond,
		Typenames: b.index.PossibleTypes(cond.Name),
		Position:  def.Position,
	}
	b.cache.fragments[s.Name] = n
	children, err := b.selections(cond, def.SelectionSet, depth+1)
	if err != nil {
		delete(b.cache.fragments, s.Name)
		return nil, err
	}
	n.children = children
	return n, nil
}

// unwrap strips NonNull, List and NonNull wrappers in that order and
// returns a node carrying the wrapping flags plus the remaining named type.
func (b *builder) unwrap(name string, ref *schema.TypeRef, pos *language.Position) (*Node, string, error) {
	n := &Node{Name: name, FieldName: name, Position: pos}
	t := ref
	if t.IsNonNull() {
		n.NonNull = true
		t = t.Unwrap()
	}
	if t.IsList() {
		n.List = true
		t = t.Unwrap()
		if t.IsNonNull() {
			t = t.Unwrap()
		}
	}
	if t == nil || t.Kind != schema.TypeRefKindNamed {
		return nil, "", b.unsupported(name, ref.String(), "expected a named type after unwrapping", pos)
	}
	return n, t.GetNamedType(), nil
}

func (b *builder) unsupported(field, typ, reason string, pos *language.Position) *UnsupportedTypeError {
	return &UnsupportedTypeError{
		Operation: b.op.Name,
		Field:     field,
		Type:      typ,
		Reason:    reason,
		Position:  pos,
	}
}
