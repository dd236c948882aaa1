package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	language "github.com/hanpama/mockgraph/internal/language"
)

func mustBuild(t *testing.T, sdl string) *Schema {
	t.Helper()
	s, err := BuildFromSDL(&language.Source{Name: "schema.graphql", Input: sdl})
	require.NoError(t, err)
	return s
}

func mustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err, "failed to read %s", path)
	return string(content)
}

func TestBuildFromSDL_Roots(t *testing.T) {
	s := mustBuild(t, mustReadFile(t, filepath.Join("testdata", "library.graphql")))

	require.Equal(t, "Query", s.QueryType)
	require.Equal(t, "Mutation", s.MutationType)
	require.Empty(t, s.SubscriptionType)

	require.Equal(t, "Query", s.RootType(language.Query).Name)
	require.Equal(t, "Mutation", s.RootType(language.Mutation).Name)
	require.Nil(t, s.RootType(language.Subscription))
}

func TestBuildFromSDL_SkipsIntrospectionRootFields(t *testing.T) {
	s := mustBuild(t, mustReadFile(t, filepath.Join("testdata", "library.graphql")))

	var names []string
	for _, f := range s.GetQueryType().Fields {
		names = append(names, f.Name)
	}
	if diff := cmp.Diff([]string{"node", "search", "status"}, names); diff != "" {
		t.Errorf("query fields mismatch (-want +got):\n%s", diff)
	}
}

func TestPossibleTypes_DeclarationOrder(t *testing.T) {
	s := mustBuild(t, mustReadFile(t, filepath.Join("testdata", "library.graphql")))

	if diff := cmp.Diff([]string{"Author", "Post"}, s.PossibleTypes("Node")); diff != "" {
		t.Errorf("interface possible types mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Post", "Author"}, s.PossibleTypes("SearchResult")); diff != "" {
		t.Errorf("union possible types mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, []string{"Post"}, s.PossibleTypes("Post"))
	require.Nil(t, s.PossibleTypes("Status"))
	require.Nil(t, s.PossibleTypes("Missing"))
}

func TestPossibleTypes_ProgrammaticSchema(t *testing.T) {
	s := NewSchema("").SetQueryType("Query")
	s.AddType(NewType("Named", TypeKindInterface, ""))
	s.AddType(NewType("Dog", TypeKindObject, "").AddInterface("Named"))
	s.AddType(NewType("Rock", TypeKindObject, ""))
	s.AddType(NewType("Cat", TypeKindObject, "").AddInterface("Named"))

	require.Equal(t, []string{"Dog", "Cat"}, s.PossibleTypes("Named"))
}

func TestFieldLookup(t *testing.T) {
	s := mustBuild(t, mustReadFile(t, filepath.Join("testdata", "library.graphql")))

	f := s.Field("Author", "posts")
	require.NotNil(t, f)
	require.Equal(t, "[Post!]!", f.Type.String())
	require.True(t, f.Type.IsNonNull())
	require.True(t, f.Type.IsList())
	require.False(t, f.Type.Unwrap().IsNonNull())
	require.True(t, f.Type.Unwrap().Unwrap().IsNonNull())
	require.Equal(t, "Post", f.Type.GetNamedType())

	var missing *TypeRef
	require.False(t, missing.IsList())
	require.Nil(t, missing.Unwrap())

	name := s.Field("Author", "name")
	require.True(t, name.IsDeprecated)
	require.Equal(t, "use displayName", name.DeprecationReason)

	require.Nil(t, s.Field("Author", "missing"))
	require.Nil(t, s.Field("Missing", "id"))
}

func TestEnumAndInputTypes(t *testing.T) {
	s := mustBuild(t, mustReadFile(t, filepath.Join("testdata", "library.graphql")))

	status := s.Type("Status")
	require.Equal(t, TypeKindEnum, status.Kind)
	require.Len(t, status.EnumValues, 2)
	require.Equal(t, "ACTIVE", status.EnumValues[0].Name)
	require.True(t, status.EnumValues[1].IsDeprecated)

	input := s.Type("AuthorInput")
	require.Equal(t, TypeKindInputObject, input.Kind)
	require.Equal(t, "tags", input.InputFields[1].Name)
	require.Equal(t, "[]", input.InputFields[1].DefaultValue)

	require.True(t, s.Type("String").BuiltIn)
	require.False(t, s.Type("DateTime").BuiltIn)
	require.Equal(t, "https://example.com/datetime", *s.Type("DateTime").SpecifiedByURL)
}

func TestBuildFromSDL_InvalidSchema(t *testing.T) {
	_, err := BuildFromSDL(&language.Source{Name: "bad.graphql", Input: "type Query { a: Missing }"})
	require.Error(t, err)
}

func TestRender(t *testing.T) {
	s := mustBuild(t, `
type Query {
  pets(first: Int = 10): [Pet!]!
}

union Pet = Dog | Cat

type Dog { name: String! }
type Cat { lives: Int @deprecated(reason: "ask the cat") }
`)
	want := `type Query {
  pets(first: Int = 10): [Pet!]!
}

union Pet = Dog | Cat

type Dog {
  name: String!
}

type Cat {
  lives: Int @deprecated(reason: "ask the cat")
}
`
	if diff := cmp.Diff(want, Render(s)); diff != "" {
		t.Errorf("Render mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_InterfacesInputsAndDirectives(t *testing.T) {
	s := mustBuild(t, `
directive @tag(name: String!) repeatable on FIELD_DEFINITION | OBJECT

"Something with an id."
interface Node { id: ID! }

type User implements Node @tag(name: "user") {
  id: ID!
  role: Role
}

enum Role { ADMIN, GUEST @deprecated }

input UserFilter @oneOf { id: ID, role: Role }

scalar Cursor @specifiedBy(url: "https://example.com/cursor")

type Query { user(filter: UserFilter!, limit: Int = 1): User }
`)
	want := `"""
Something with an id.
"""
interface Node {
  id: ID!
}

type User implements Node {
  id: ID!
  role: Role
}

enum Role {
  ADMIN
  GUEST @deprecated
}

input UserFilter @oneOf {
  id: ID
  role: Role
}

scalar Cursor @specifiedBy(url: "https://example.com/cursor")

type Query {
  user(filter: UserFilter!, limit: Int = 1): User
}

directive @tag(name: String!) repeatable on FIELD_DEFINITION | OBJECT
`
	if diff := cmp.Diff(want, Render(s)); diff != "" {
		t.Errorf("Render mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_CustomRootNames(t *testing.T) {
	s := mustBuild(t, `
schema { query: Root }
type Root { ok: Boolean }
`)
	want := `schema {
  query: Root
}

type Root {
  ok: Boolean
}
`
	if diff := cmp.Diff(want, Render(s)); diff != "" {
		t.Errorf("Render mismatch (-want +got):\n%s", diff)
	}
}
