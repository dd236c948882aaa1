package schema

import (
	"sort"

	"github.com/vektah/gqlparser/v2/ast"

	language "github.com/hanpama/mockgraph/internal/language"
)

// BuildFromAST converts a validated gqlparser schema into a Schema. Types are
// registered in declaration order: prelude builtins first, then user
// definitions ordered by source name and offset. Extensions are already
// merged into their base definitions by the validator.
func BuildFromAST(src *ast.Schema) *Schema {
	s := NewSchema(src.Description)
	if src.Query != nil {
		s.SetQueryType(src.Query.Name)
	}
	if src.Mutation != nil {
		s.SetMutationType(src.Mutation.Name)
	}
	if src.Subscription != nil {
		s.SetSubscriptionType(src.Subscription.Name)
	}

	defs := make([]*ast.Definition, 0, len(src.Types))
	for _, def := range src.Types {
		defs = append(defs, def)
	}
	sort.SliceStable(defs, func(i, j int) bool { return declaredBefore(defs[i], defs[j]) })

	for _, def := range defs {
		var t *Type
		switch def.Kind {
		case ast.Object:
			t = buildComposite(def, TypeKindObject)
		case ast.Interface:
			t = buildComposite(def, TypeKindInterface)
			for _, pt := range src.PossibleTypes[def.Name] {
				if pt.Kind == ast.Object {
					t.AddPossibleType(pt.Name)
				}
			}
		case ast.Union:
			t = buildUnion(def)
		case ast.Enum:
			t = buildEnum(def)
		case ast.InputObject:
			t = buildInput(def)
		case ast.Scalar:
			t = buildScalar(def)
		default:
			continue
		}
		t.BuiltIn = def.BuiltIn
		s.AddType(t)
	}

	dirNames := make([]string, 0, len(src.Directives))
	for name := range src.Directives {
		dirNames = append(dirNames, name)
	}
	sort.Strings(dirNames)
	for _, name := range dirNames {
		s.AddDirective(buildDirective(src.Directives[name]))
	}
	return s
}

// BuildFromSDL validates the given SDL sources against the GraphQL prelude
// and returns the corresponding Schema.
func BuildFromSDL(sources ...*language.Source) (*Schema, error) {
	src, err := language.LoadSchema(sources...)
	if err != nil {
		return nil, err
	}
	return BuildFromAST(src), nil
}

func declaredBefore(a, b *ast.Definition) bool {
	if a.BuiltIn != b.BuiltIn {
		return a.BuiltIn
	}
	pa, pb := a.Position, b.Position
	if pa == nil || pb == nil {
		if pa == nil && pb == nil {
			return a.Name < b.Name
		}
		return pb == nil
	}
	an, bn := sourceName(pa), sourceName(pb)
	if an != bn {
		return an < bn
	}
	if pa.Start != pb.Start {
		return pa.Start < pb.Start
	}
	return a.Name < b.Name
}

func sourceName(p *ast.Position) string {
	if p.Src == nil {
		return ""
	}
	return p.Src.Name
}

func buildComposite(def *ast.Definition, kind TypeKind) *Type {
	t := NewType(def.Name, kind, def.Description)
	for _, name := range def.Interfaces {
		t.AddInterface(name)
	}
	for _, fd := range def.Fields {
		// __schema and __type are appended to the query root by the validator.
		if len(fd.Name) > 1 && fd.Name[:2] == "__" {
			continue
		}
		t.AddField(buildField(fd))
	}
	return t
}

func buildField(def *ast.FieldDefinition) *Field {
	f := NewField(def.Name, def.Description, BuildTypeRef(def.Type))
	if reason, ok := deprecation(def.Directives); ok {
		f.Deprecate(reason)
	}
	for _, arg := range def.Arguments {
		f.AddArgument(buildArgument(arg))
	}
	return f
}

func buildArgument(def *ast.ArgumentDefinition) *InputValue {
	in := NewInputValue(def.Name, def.Description, BuildTypeRef(def.Type))
	if def.DefaultValue != nil {
		in.SetDefault(def.DefaultValue.String())
	}
	if reason, ok := deprecation(def.Directives); ok {
		in.Deprecate(reason)
	}
	return in
}

func buildInput(def *ast.Definition) *Type {
	t := NewType(def.Name, TypeKindInputObject, def.Description).
		SetOneOf(def.Directives.ForName("oneOf") != nil)
	for _, fd := range def.Fields {
		in := NewInputValue(fd.Name, fd.Description, BuildTypeRef(fd.Type))
		if fd.DefaultValue != nil {
			in.SetDefault(fd.DefaultValue.String())
		}
		if reason, ok := deprecation(fd.Directives); ok {
			in.Deprecate(reason)
		}
		t.AddInputField(in)
	}
	return t
}

func buildEnum(def *ast.Definition) *Type {
	t := NewType(def.Name, TypeKindEnum, def.Description)
	for _, v := range def.EnumValues {
		e := NewEnumValue(v.Name, v.Description)
		if reason, ok := deprecation(v.Directives); ok {
			e.Deprecate(reason)
		}
		t.AddEnumValue(e)
	}
	return t
}

func buildUnion(def *ast.Definition) *Type {
	t := NewType(def.Name, TypeKindUnion, def.Description)
	for _, name := range def.Types {
		t.AddPossibleType(name)
	}
	return t
}

func buildScalar(def *ast.Definition) *Type {
	t := NewType(def.Name, TypeKindScalar, def.Description)
	if d := def.Directives.ForName("specifiedBy"); d != nil {
		if arg := d.Arguments.ForName("url"); arg != nil && arg.Value != nil {
			t.SetSpecifiedByURL(arg.Value.Raw)
		}
	}
	return t
}

func buildDirective(def *ast.DirectiveDefinition) *Directive {
	d := NewDirective(def.Name, def.Description).SetRepeatable(def.IsRepeatable)
	for _, loc := range def.Locations {
		d.Locations = append(d.Locations, string(loc))
	}
	for _, arg := range def.Arguments {
		d.AddArgument(buildArgument(arg))
	}
	d.BuiltIn = def.Position != nil && def.Position.Src != nil && def.Position.Src.BuiltIn
	return d
}

func deprecation(dirs ast.DirectiveList) (string, bool) {
	d := dirs.ForName("deprecated")
	if d == nil {
		return "", false
	}
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		return arg.Value.Raw, true
	}
	return "", true
}

// BuildTypeRef converts a parsed type reference.
func BuildTypeRef(t *ast.Type) *TypeRef {
	if t == nil {
		return nil
	}
	var ref *TypeRef
	if t.Elem != nil {
		ref = ListType(BuildTypeRef(t.Elem))
	} else {
		ref = NamedType(t.NamedType)
	}
	if t.NonNull {
		return NonNullType(ref)
	}
	return ref
}
