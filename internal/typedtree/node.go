package typedtree

import (
	language "github.com/hanpama/mockgraph/internal/language"
	schema "github.com/hanpama/mockgraph/internal/schema"
)

// Kind classifies a node of a typed field tree.
type Kind int

const (
	KindScalar Kind = iota
	KindEnum
	KindObject
	KindInterface
	KindUnion
	KindInputObject
	// KindFragment groups the fields of an inline fragment or fragment spread.
	// It has no name of its own and is merged into its parent.
	KindFragment
	// KindTypename is an explicitly selected __typename meta field.
	KindTypename
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindEnum:
		return "enum"
	case KindObject:
		return "object"
	case KindInterface:
		return "interface"
	case KindUnion:
		return "union"
	case KindInputObject:
		return "input object"
	case KindFragment:
		return "fragment"
	case KindTypename:
		return "typename"
	}
	return "unknown"
}

// Node is one field, variable or fragment of a typed field tree.
//
// Nodes are immutable once Build returns. Named fragment nodes and the
// fields of input object types are shared between every place that refers
// to them within one document.
type Node struct {
	// Name is the response key (alias or field name) for output fields and
	// the variable or input field name for inputs. Empty for roots and
	// fragment nodes.
	Name string
	// FieldName is the schema field name. It differs from Name only for
	// aliased output fields.
	FieldName string
	NonNull   bool
	List      bool
	Kind      Kind
	// Type is the named type after unwrapping. For fragments it is the type
	// condition. Nil only for the variables root.
	Type *schema.Type
	// Typenames lists the concrete object types a composite node or
	// fragment may resolve to, in schema declaration order.
	Typenames []string
	Position  *language.Position

	children []*Node
	shape    *inputShape
}

// inputShape holds the fields of one input object type. It is created
// before its fields are resolved so self-referencing input types point back
// at the same shape.
type inputShape struct {
	fields []*Node
}

// Children returns the selected output fields and fragments, or every
// declared field of an input object.
func (n *Node) Children() []*Node {
	if n.shape != nil {
		return n.shape.fields
	}
	return n.children
}

// IsComposite reports whether the node resolves to an object type.
func (n *Node) IsComposite() bool {
	return n.Kind == KindObject || n.Kind == KindInterface || n.Kind == KindUnion
}

// HasTypename reports whether name is one of the node's possible typenames.
func (n *Node) HasTypename(name string) bool {
	for _, t := range n.Typenames {
		if t == name {
			return true
		}
	}
	return false
}

// TypeName returns the name of the node's named type, or "" for the
// variables root.
func (n *Node) TypeName() string {
	if n.Type == nil {
		return ""
	}
	return n.Type.Name
}

// Tree is the typed shape of one operation: the variables it accepts and
// the data it selects.
type Tree struct {
	Name      string
	Operation language.Operation
	Position  *language.Position
	// Variables is a non-null input object root whose children are the
	// operation's variable definitions.
	Variables *Node
	// Data is a non-null object root typed with the operation's root type.
	Data *Node
}
