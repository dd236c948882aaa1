package schema

import (
	"sort"
	"strconv"
	"strings"
)

// Render prints the user-defined part of s as SDL. Types keep their
// declaration order; directives are sorted by name.
func Render(s *Schema) string {
	if s == nil {
		return ""
	}
	var b strings.Builder
	renderSchemaDefinition(&b, s)

	for _, name := range s.TypeNames() {
		typ := s.Types[name]
		if typ.BuiltIn {
			continue
		}
		renderDescription(&b, typ.Description)
		switch typ.Kind {
		case TypeKindScalar:
			b.WriteString("scalar " + typ.Name)
			if typ.SpecifiedByURL != nil {
				b.WriteString(" @specifiedBy(url: " + strconv.Quote(*typ.SpecifiedByURL) + ")")
			}
		case TypeKindEnum:
			b.WriteString("enum " + typ.Name + " {\n")
			for _, val := range typ.EnumValues {
				renderDescription(&b, val.Description)
				b.WriteString("  " + val.Name + deprecatedSuffix(val.IsDeprecated, val.DeprecationReason) + "\n")
			}
			b.WriteString("}")
		case TypeKindInputObject:
			b.WriteString("input " + typ.Name)
			if typ.OneOf {
				b.WriteString(" @oneOf")
			}
			b.WriteString(" {\n")
			for _, field := range typ.InputFields {
				renderDescription(&b, field.Description)
				b.WriteString("  " + inputValue(field) + deprecatedSuffix(field.IsDeprecated, field.DeprecationReason) + "\n")
			}
			b.WriteString("}")
		case TypeKindObject, TypeKindInterface:
			keyword := "type "
			if typ.Kind == TypeKindInterface {
				keyword = "interface "
			}
			b.WriteString(keyword + typ.Name)
			if len(typ.Interfaces) > 0 {
				b.WriteString(" implements " + strings.Join(typ.Interfaces, " & "))
			}
			b.WriteString(" {\n")
			for _, field := range typ.Fields {
				renderDescription(&b, field.Description)
				b.WriteString("  " + field.Name + arguments(field.Arguments) + ": " + field.Type.String())
				b.WriteString(deprecatedSuffix(field.IsDeprecated, field.DeprecationReason) + "\n")
			}
			b.WriteString("}")
		case TypeKindUnion:
			b.WriteString("union " + typ.Name + " = " + strings.Join(typ.PossibleTypes, " | "))
		}
		b.WriteString("\n\n")
	}

	directiveNames := make([]string, 0, len(s.Directives))
	for name, directive := range s.Directives {
		if !directive.BuiltIn {
			directiveNames = append(directiveNames, name)
		}
	}
	sort.Strings(directiveNames)
	for _, name := range directiveNames {
		d := s.Directives[name]
		renderDescription(&b, d.Description)
		b.WriteString("directive @" + d.Name + arguments(d.Arguments))
		if d.IsRepeatable {
			b.WriteString(" repeatable")
		}
		b.WriteString(" on " + strings.Join(d.Locations, " | ") + "\n\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// renderSchemaDefinition writes a schema block only when root operation
// types do not follow the default naming.
func renderSchemaDefinition(b *strings.Builder, s *Schema) {
	conventional := (s.QueryType == "" || s.QueryType == "Query") &&
		(s.MutationType == "" || s.MutationType == "Mutation") &&
		(s.SubscriptionType == "" || s.SubscriptionType == "Subscription")
	if conventional {
		return
	}
	renderDescription(b, s.Description)
	b.WriteString("schema {\n")
	for _, root := range [][2]string{
		{"query", s.QueryType},
		{"mutation", s.MutationType},
		{"subscription", s.SubscriptionType},
	} {
		if root[1] != "" {
			b.WriteString("  " + root[0] + ": " + root[1] + "\n")
		}
	}
	b.WriteString("}\n\n")
}

func renderDescription(b *strings.Builder, desc string) {
	if desc == "" {
		return
	}
	b.WriteString("\"\"\"\n" + strings.ReplaceAll(desc, "\"\"\"", "\\\"\"\"") + "\n\"\"\"\n")
}

func arguments(args []*InputValue) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = inputValue(arg)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func inputValue(v *InputValue) string {
	out := v.Name + ": " + v.Type.String()
	if v.DefaultValue != "" {
		out += " = " + v.DefaultValue
	}
	return out
}

func deprecatedSuffix(deprecated bool, reason string) string {
	if !deprecated {
		return ""
	}
	if reason == "" {
		return " @deprecated"
	}
	return " @deprecated(reason: " + strconv.Quote(reason) + ")"
}
