package mock_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	language "github.com/hanpama/mockgraph/internal/language"
	"github.com/hanpama/mockgraph/internal/mock"
	schema "github.com/hanpama/mockgraph/internal/schema"
	"github.com/hanpama/mockgraph/internal/typedtree"
)

func mustLoadSchema(t *testing.T) *schema.Schema {
	t.Helper()
	content, err := os.ReadFile(filepath.Join("testdata", "schema.graphql"))
	require.NoError(t, err)
	return mustBuildSchema(t, string(content))
}

func mustBuildSchema(t *testing.T, sdl string) *schema.Schema {
	t.Helper()
	s, err := schema.BuildFromSDL(&language.Source{Name: "schema.graphql", Input: sdl})
	require.NoError(t, err)
	return s
}

// mustOperation builds the single operation in query against s.
func mustOperation(t *testing.T, s *schema.Schema, query string) *mock.Operation {
	t.Helper()
	doc, err := language.ParseQuery("query.graphql", query)
	require.NoError(t, err)
	trees, err := typedtree.BuildDocument(doc, s)
	require.NoError(t, err)
	require.Len(t, trees, 1)
	return mock.NewOperation(trees[0])
}

func requireDiff(t *testing.T, want, got any) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
