package typedtree

import (
	"fmt"

	language "github.com/hanpama/mockgraph/internal/language"
)

// UnknownRootTypeError reports an operation whose kind has no root type in
// the schema.
type UnknownRootTypeError struct {
	Operation string
	Kind      language.Operation
	Position  *language.Position
}

func (e *UnknownRootTypeError) Error() string {
	return locate(e.Position, fmt.Sprintf("schema has no %s root type for operation %s", e.Kind, quoteOp(e.Operation)))
}

// UnknownFieldError reports a selected field that is not declared on its
// parent type.
type UnknownFieldError struct {
	Operation string
	TypeName  string
	FieldName string
	Position  *language.Position
}

func (e *UnknownFieldError) Error() string {
	return locate(e.Position, fmt.Sprintf("unknown field %q on type %q in operation %s", e.FieldName, e.TypeName, quoteOp(e.Operation)))
}

// UnknownFragmentError reports a spread of a fragment the document does not
// define.
type UnknownFragmentError struct {
	Operation string
	Fragment  string
	Position  *language.Position
}

func (e *UnknownFragmentError) Error() string {
	return locate(e.Position, fmt.Sprintf("unknown fragment %q in operation %s", e.Fragment, quoteOp(e.Operation)))
}

// UnsupportedTypeError reports a type reference the builder cannot
// classify.
type UnsupportedTypeError struct {
	Operation string
	Field     string
	Type      string
	Reason    string
	Position  *language.Position
}

func (e *UnsupportedTypeError) Error() string {
	msg := fmt.Sprintf("unsupported type %q", e.Type)
	if e.Field != "" {
		msg += fmt.Sprintf(" for %q", e.Field)
	}
	msg += fmt.Sprintf(" in operation %s: %s", quoteOp(e.Operation), e.Reason)
	return locate(e.Position, msg)
}

// DepthLimitError reports selection sets or fragments nested deeper than
// the cache's MaxDepth.
type DepthLimitError struct {
	Operation string
	Limit     int
	Position  *language.Position
}

func (e *DepthLimitError) Error() string {
	return locate(e.Position, fmt.Sprintf("operation %s exceeds maximum depth %d", quoteOp(e.Operation), e.Limit))
}

func quoteOp(name string) string {
	if name == "" {
		return "<anonymous>"
	}
	return fmt.Sprintf("%q", name)
}

func locate(pos *language.Position, msg string) string {
	if pos == nil || pos.Src == nil || pos.Src.Name == "" {
		return msg
	}
	return fmt.Sprintf("%s:%d:%d: %s", pos.Src.Name, pos.Line, pos.Column, msg)
}
