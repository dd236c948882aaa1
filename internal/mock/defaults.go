package mock

import (
	"strings"

	schema "github.com/hanpama/mockgraph/internal/schema"
)

// DefaultFor returns the placeholder for a non-null scalar or enum field
// that has no override.
//
// A value registered for the scalar wins. Otherwise numbers default to 1,
// booleans to false and string-like scalars to "<typename>-<field>" with
// empty parts dropped. Enums default to their first declared value.
func DefaultFor(t *schema.Type, fieldName, typename string, opts Options) (any, error) {
	if t.Kind == schema.TypeKindEnum {
		if len(t.EnumValues) == 0 {
			return nil, &UnresolvableScalarError{Scalar: t.Name, Path: fieldName}
		}
		return t.EnumValues[0].Name, nil
	}

	if v, ok := opts.ScalarValues[t.Name]; ok {
		if isNullish(v) {
			return nil, &MissingScalarOverrideError{Scalar: t.Name, Path: fieldName}
		}
		return v, nil
	}

	kind, ok := opts.ScalarKindOf(t.Name)
	if !ok {
		return nil, &UnresolvableScalarError{Scalar: t.Name, Path: fieldName}
	}

	switch kind {
	case KindInt:
		return 1, nil
	case KindFloat:
		return 1.0, nil
	case KindBoolean:
		return false, nil
	default:
		return joinNonEmpty("-", typename, fieldName), nil
	}
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
