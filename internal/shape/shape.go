// Package shape derives JSON Schema documents from typed field trees and
// checks synthesized values against them.
package shape

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	gql "github.com/hanpama/mockgraph/internal/language"
	"github.com/hanpama/mockgraph/internal/mock"
	schema "github.com/hanpama/mockgraph/internal/schema"
	"github.com/hanpama/mockgraph/internal/typedtree"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const draft = "https://json-schema.org/draft/2020-12/schema"

// Document returns the JSON Schema every value synthesized for n in dir with
// opts satisfies.
//
// Output objects list each selected response key as required and nullable
// fields accept null. Input objects require only their non-null fields and
// are emitted once under $defs so self-referencing input types terminate.
func Document(n *typedtree.Node, dir mock.Direction, opts mock.Options) map[string]any {
	d := &deriver{dir: dir, opts: opts, defs: map[string]any{}}
	doc := d.node(n, "")
	if dir == mock.Input && !n.NonNull {
		doc = nullable(doc)
	}
	doc["$schema"] = draft
	if len(d.defs) > 0 {
		doc["$defs"] = d.defs
	}
	return doc
}

type deriver struct {
	dir  mock.Direction
	opts mock.Options
	defs map[string]any
}

func (d *deriver) node(n *typedtree.Node, parent string) map[string]any {
	if n.Kind == typedtree.KindTypename {
		return map[string]any{"const": parent}
	}
	s := d.named(n)
	if n.List {
		s = map[string]any{"type": "array", "items": s}
	}
	if !n.NonNull && d.dir == mock.Output {
		s = nullable(s)
	}
	return s
}

func (d *deriver) named(n *typedtree.Node) map[string]any {
	switch n.Kind {
	case typedtree.KindScalar:
		return d.scalar(n.Type)
	case typedtree.KindEnum:
		values := make([]any, 0, len(n.Type.EnumValues))
		for _, v := range n.Type.EnumValues {
			values = append(values, v.Name)
		}
		return map[string]any{"enum": values}
	case typedtree.KindInputObject:
		return d.input(n)
	}
	return d.composite(n)
}

func (d *deriver) scalar(t *schema.Type) map[string]any {
	if _, ok := d.opts.ScalarValues[t.Name]; ok {
		return map[string]any{}
	}
	kind, ok := d.opts.ScalarKindOf(t.Name)
	if !ok {
		return map[string]any{}
	}
	switch kind {
	case mock.KindInt:
		return map[string]any{"type": "integer"}
	case mock.KindFloat:
		return map[string]any{"type": "number"}
	case mock.KindBoolean:
		return map[string]any{"type": "boolean"}
	default:
		return map[string]any{"type": "string"}
	}
}

// composite describes one variant per possible typename.
func (d *deriver) composite(n *typedtree.Node) map[string]any {
	typenames := n.Typenames
	if len(typenames) == 0 {
		typenames = []string{n.TypeName()}
	}
	variants := make([]any, 0, len(typenames))
	for _, typename := range typenames {
		variants = append(variants, d.object(n, typename))
	}
	if len(variants) == 1 {
		return variants[0].(map[string]any)
	}
	return map[string]any{"anyOf": variants}
}

func (d *deriver) object(n *typedtree.Node, typename string) map[string]any {
	props := map[string]any{}
	d.collect(props, n, typename)
	if n.Name != "" && d.opts.IncludeTypename {
		props[gql.TypenameField] = map[string]any{"const": typename}
	}
	return closed(props, sortedKeys(props))
}

// collect adds the fields selected on n for typename, flattening fragments
// that apply. Later selections replace earlier ones with the same key.
func (d *deriver) collect(props map[string]any, n *typedtree.Node, typename string) {
	for _, c := range n.Children() {
		if c.Kind == typedtree.KindFragment {
			if c.HasTypename(typename) {
				d.collect(props, c, typename)
			}
			continue
		}
		props[c.Name] = d.node(c, typename)
	}
}

func (d *deriver) input(n *typedtree.Node) map[string]any {
	name := n.TypeName()
	if name == "" {
		return d.inputObject(n)
	}
	if _, ok := d.defs[name]; !ok {
		d.defs[name] = map[string]any{}
		d.defs[name] = d.inputObject(n)
	}
	return map[string]any{"$ref": "#/$defs/" + name}
}

func (d *deriver) inputObject(n *typedtree.Node) map[string]any {
	props := map[string]any{}
	var required []string
	for _, c := range n.Children() {
		props[c.Name] = d.node(c, "")
		if c.NonNull {
			required = append(required, c.Name)
		}
	}
	sort.Strings(required)
	return closed(props, required)
}

func closed(props map[string]any, required []string) map[string]any {
	req := make([]any, 0, len(required))
	for _, r := range required {
		req = append(req, r)
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             req,
		"additionalProperties": false,
	}
}

func nullable(s map[string]any) map[string]any {
	return map[string]any{"anyOf": []any{s, map[string]any{"type": "null"}}}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validator checks values against the shape of one node.
type Validator struct {
	doc    map[string]any
	schema *jsonschema.Schema
}

// NewValidator derives and compiles the shape of n.
func NewValidator(n *typedtree.Node, dir mock.Direction, opts mock.Options) (*Validator, error) {
	doc := Document(n, dir, opts)
	// Normalize to plain JSON values before handing the document over.
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshaling shape: %w", err)
	}
	var normalized any
	if err := json.Unmarshal(raw, &normalized); err != nil {
		return nil, fmt.Errorf("unmarshaling shape: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("shape.json", normalized); err != nil {
		return nil, fmt.Errorf("adding shape resource: %w", err)
	}
	compiled, err := compiler.Compile("shape.json")
	if err != nil {
		return nil, fmt.Errorf("compiling shape: %w", err)
	}
	return &Validator{doc: doc, schema: compiled}, nil
}

// Document returns the JSON Schema the validator was compiled from.
func (v *Validator) Document() map[string]any { return v.doc }

// MismatchError lists the places where a value departs from its shape.
type MismatchError struct {
	Problems []string
}

func (e *MismatchError) Error() string {
	return "value does not match shape: " + strings.Join(e.Problems, "; ")
}

// Validate checks value, which may hold any Go values that marshal to JSON.
func (v *Validator) Validate(value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshaling value: %w", err)
	}
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return fmt.Errorf("decoding value: %w", err)
	}

	err = v.schema.Validate(decoded)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	return &MismatchError{Problems: problems(verr)}
}

var printer = message.NewPrinter(language.English)

// problems flattens the leaf causes of err into "pointer: message" lines,
// deduplicated and sorted.
func problems(err *jsonschema.ValidationError) []string {
	seen := map[string]bool{}
	var out []string
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if e.ErrorKind != nil && len(e.Causes) == 0 {
			msg := e.ErrorKind.LocalizedString(printer)
			if !strings.HasPrefix(msg, "$ref ") && !strings.HasPrefix(msg, "doesn't validate with") {
				line := "/" + strings.Join(e.InstanceLocation, "/") + ": " + msg
				if !seen[line] {
					seen[line] = true
					out = append(out, line)
				}
			}
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(err)
	sort.Strings(out)
	return out
}
