package mock

import (
	"fmt"
	"reflect"
)

// Path addresses a value inside synthesized variables or data.
type Path []PathElement

type PathElement any

func (p Path) String() string {
	result := ""
	for i, elem := range p {
		switch v := elem.(type) {
		case string:
			if i > 0 {
				result += "."
			}
			result += v
		case int:
			result += fmt.Sprintf("[%d]", v)
		}
	}
	if result == "" {
		return "<root>"
	}
	return result
}

func appendPath(path Path, elem PathElement) Path {
	newPath := make(Path, len(path)+1)
	copy(newPath, path)
	newPath[len(path)] = elem
	return newPath
}

// isNullish returns true for nil interfaces and typed nils (map, slice, ptr, interface)
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

// asObject returns override as an object. Anything that is not a string
// keyed map reads as an empty object.
func asObject(override any) map[string]any {
	switch v := override.(type) {
	case map[string]any:
		return v
	case nil:
		return nil
	}
	rv := reflect.ValueOf(override)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out
}

// asList returns the elements of a slice or array override.
func asList(override any) ([]any, bool) {
	if v, ok := override.([]any); ok {
		return v, true
	}
	rv := reflect.ValueOf(override)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
