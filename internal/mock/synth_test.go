package mock_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hanpama/mockgraph/internal/mock"
)

const authorsQuery = `
query authors {
  authors {
    idField
    stringField
    stringFieldNonNull
    intField
    intFieldNonNull
    posts {
      idField
      author { idField }
      authorNonNull { idField }
    }
    postsNonNull { idField }
  }
}`

func TestData_DocumentOnly(t *testing.T) {
	op := mustOperation(t, mustLoadSchema(t), authorsQuery)

	data, err := op.Data(nil)
	require.NoError(t, err)
	requireDiff(t, map[string]any{"authors": nil}, data)
}

func TestData_EmptyListOverride(t *testing.T) {
	op := mustOperation(t, mustLoadSchema(t), authorsQuery)

	data, err := op.Data(map[string]any{"authors": []any{}})
	require.NoError(t, err)
	requireDiff(t, map[string]any{"authors": []any{}}, data)
}

func TestData_EmptyObjectElement(t *testing.T) {
	op := mustOperation(t, mustLoadSchema(t), authorsQuery)

	data, err := op.Data(map[string]any{"authors": []any{map[string]any{}}})
	require.NoError(t, err)
	requireDiff(t, map[string]any{
		"authors": []any{
			map[string]any{
				"idField":            "Author-idField",
				"stringField":        nil,
				"stringFieldNonNull": "Author-stringFieldNonNull",
				"intField":           nil,
				"intFieldNonNull":    1,
				"posts":              nil,
				"postsNonNull":       []any{},
				"__typename":         "Author",
			},
		},
	}, data)
}

func TestData_NilElementIsSynthesized(t *testing.T) {
	op := mustOperation(t, mustLoadSchema(t), `{ authors { idField } }`)

	data, err := op.Data(map[string]any{"authors": []any{nil}})
	require.NoError(t, err)
	requireDiff(t, map[string]any{
		"authors": []any{map[string]any{"idField": "Author-idField", "__typename": "Author"}},
	}, data)
}

func TestData_CustomValues(t *testing.T) {
	op := mustOperation(t, mustLoadSchema(t), authorsQuery)

	data, err := op.Data(map[string]any{
		"authors": []any{
			map[string]any{
				"idField":     "Author-idField-custom",
				"stringField": "custom",
				"intField":    2,
				"posts": []any{
					map[string]any{
						"idField":       "Post-idField-custom",
						"author":        map[string]any{"idField": "Author-idField-nested"},
						"authorNonNull": nil,
					},
				},
			},
		},
	})
	require.NoError(t, err)
	requireDiff(t, map[string]any{
		"authors": []any{
			map[string]any{
				"idField":            "Author-idField-custom",
				"stringField":        "custom",
				"stringFieldNonNull": "Author-stringFieldNonNull",
				"intField":           2,
				"intFieldNonNull":    1,
				"posts": []any{
					map[string]any{
						"idField":       "Post-idField-custom",
						"author":        map[string]any{"idField": "Author-idField-nested", "__typename": "Author"},
						"authorNonNull": map[string]any{"idField": "Author-idField", "__typename": "Author"},
						"__typename":    "Post",
					},
				},
				"postsNonNull": []any{},
				"__typename":   "Author",
			},
		},
	}, data)
}

func TestData_IgnoresUnknownAndUnselectedKeys(t *testing.T) {
	op := mustOperation(t, mustLoadSchema(t), `{ authors { idField } }`)

	data, err := op.Data(map[string]any{
		"authors": []any{map[string]any{"invalidField": true, "stringField": "not selected"}},
		"objects": []any{},
	})
	require.NoError(t, err)
	requireDiff(t, map[string]any{
		"authors": []any{map[string]any{"idField": "Author-idField", "__typename": "Author"}},
	}, data)
}

func TestData_InterfaceDispatch(t *testing.T) {
	op := mustOperation(t, mustLoadSchema(t), `
query objects {
  objects {
    idField
    ... on Author { stringFieldNonNull }
    ... on Post { authorNonNull { idField } }
  }
}`)

	tests := []struct {
		name     string
		override map[string]any
		want     map[string]any
	}{
		{
			name:     "first possible type by default",
			override: map[string]any{},
			want: map[string]any{
				"idField":            "Author-idField",
				"stringFieldNonNull": "Author-stringFieldNonNull",
				"__typename":         "Author",
			},
		},
		{
			name:     "typename override",
			override: map[string]any{"__typename": "Post"},
			want: map[string]any{
				"idField":       "Post-idField",
				"authorNonNull": map[string]any{"idField": "Author-idField", "__typename": "Author"},
				"__typename":    "Post",
			},
		},
		{
			name:     "unknown typename falls back",
			override: map[string]any{"__typename": "Unknown"},
			want: map[string]any{
				"idField":            "Author-idField",
				"stringFieldNonNull": "Author-stringFieldNonNull",
				"__typename":         "Author",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := op.Data(map[string]any{"objects": []any{tt.override}})
			require.NoError(t, err)
			requireDiff(t, map[string]any{"objects": []any{tt.want}}, data)
		})
	}
}

func TestData_UnionDispatchWithNamedFragment(t *testing.T) {
	op := mustOperation(t, mustLoadSchema(t), `
query search {
  search {
    ...AuthorFields
    ...PostFields
  }
}
fragment AuthorFields on Author { idField intFieldNonNull }
fragment PostFields on Post { idField }`)

	data, err := op.Data(map[string]any{"search": []any{
		map[string]any{},
		map[string]any{"__typename": "Post", "intFieldNonNull": 7},
	}})
	require.NoError(t, err)
	requireDiff(t, map[string]any{"search": []any{
		map[string]any{"idField": "Author-idField", "intFieldNonNull": 1, "__typename": "Author"},
		map[string]any{"idField": "Post-idField", "__typename": "Post"},
	}}, data)
}

func TestData_ExplicitTypenameIgnoresOption(t *testing.T) {
	op := mustOperation(t, mustLoadSchema(t), `
query typename {
  authors {
    __typename
    posts { idField }
  }
  objects { __typename }
  search { __typename }
}`)

	data, err := op.Data(map[string]any{
		"authors": []any{map[string]any{"posts": []any{map[string]any{}}}},
		"objects": []any{map[string]any{}},
		"search":  []any{map[string]any{"__typename": "Post"}},
	}, mock.WithTypename(false))
	require.NoError(t, err)
	requireDiff(t, map[string]any{
		"authors": []any{map[string]any{
			"__typename": "Author",
			"posts":      []any{map[string]any{"idField": "Post-idField"}},
		}},
		"objects": []any{map[string]any{"__typename": "Author"}},
		"search":  []any{map[string]any{"__typename": "Post"}},
	}, data)
}

func TestData_RootFields(t *testing.T) {
	op := mustOperation(t, mustLoadSchema(t), `{ __typename genre authorsNonNull { idField } }`)

	data, err := op.Data(nil)
	require.NoError(t, err)
	requireDiff(t, map[string]any{
		"__typename":     "Query",
		"genre":          "FICTION",
		"authorsNonNull": []any{},
	}, data)
}

func TestData_RootScalarDefaultsHaveNoTypename(t *testing.T) {
	s := mustBuildSchema(t, `
		type Item { id: ID! }
		type Query { hello: String!, id: ID!, items: [Item!]! }
		type Mutation { rename(to: String!): String! }
	`)

	data, err := mustOperation(t, s, `query q { hello id __typename items { id } }`).
		Data(map[string]any{"items": []any{nil}})
	require.NoError(t, err)
	requireDiff(t, map[string]any{
		"hello":      "hello",
		"id":         "id",
		"__typename": "Query",
		"items":      []any{map[string]any{"id": "Item-id", "__typename": "Item"}},
	}, data)

	op := mustOperation(t, s, `mutation m($to: String!) { rename(to: $to) }`)
	data, err = op.Data(nil)
	require.NoError(t, err)
	requireDiff(t, map[string]any{"rename": "rename"}, data)
	vars, err := op.Variables(nil)
	require.NoError(t, err)
	requireDiff(t, map[string]any{"to": "to"}, vars)
}

func TestData_Aliases(t *testing.T) {
	op := mustOperation(t, mustLoadSchema(t), `{ writers: authorsNonNull { id: idField } }`)

	data, err := op.Data(map[string]any{"writers": []any{map[string]any{}}})
	require.NoError(t, err)
	requireDiff(t, map[string]any{
		"writers": []any{map[string]any{"id": "Author-idField", "__typename": "Author"}},
	}, data)
}

func TestData_AuthorsBooksExample(t *testing.T) {
	s := mustBuildSchema(t, `
type Author { id: ID!, name: String!, books: [Book!] }
type Book { title: String! }
type Query { authors: [Author!]! }
`)
	op := mustOperation(t, s, `{ authors { id name books { title } } }`)

	data, err := op.Data(map[string]any{
		"authors": []any{map[string]any{
			"name":  "Foo",
			"books": []any{map[string]any{"title": "Bar"}},
		}},
	}, mock.WithTypename(false))
	require.NoError(t, err)
	requireDiff(t, map[string]any{
		"authors": []any{map[string]any{
			"id":    "Author-id",
			"name":  "Foo",
			"books": []any{map[string]any{"title": "Bar"}},
		}},
	}, data)
}

func TestData_Idempotent(t *testing.T) {
	op := mustOperation(t, mustLoadSchema(t), authorsQuery)
	override := map[string]any{"authors": []any{map[string]any{}, map[string]any{"intField": 3}}}

	first, err := op.Data(override)
	require.NoError(t, err)
	second, err := op.Data(override)
	require.NoError(t, err)
	requireDiff(t, first, second)
	requireDiff(t, map[string]any{"authors": []any{map[string]any{}, map[string]any{"intField": 3}}}, override)
}

func TestVariables_InputObjects(t *testing.T) {
	op := mustOperation(t, mustLoadSchema(t), `
mutation createAuthorExtensive($author: AuthorInput, $authorNonNull: AuthorInput!) {
  createAuthorExtensive(author: $author, authorNonNull: $authorNonNull) { idField }
}`)
	defaultAuthor := map[string]any{
		"idField":            "AuthorInput-idField",
		"stringFieldNonNull": "AuthorInput-stringFieldNonNull",
		"intFieldNonNull":    1,
		"postsNonNull":       []any{},
	}

	t.Run("empty variables", func(t *testing.T) {
		vars, err := op.Variables(nil)
		require.NoError(t, err)
		requireDiff(t, map[string]any{"authorNonNull": defaultAuthor}, vars)
	})

	t.Run("empty object as author", func(t *testing.T) {
		vars, err := op.Variables(map[string]any{"author": map[string]any{}})
		require.NoError(t, err)
		requireDiff(t, map[string]any{"author": defaultAuthor, "authorNonNull": defaultAuthor}, vars)
	})

	t.Run("custom values", func(t *testing.T) {
		vars, err := op.Variables(map[string]any{
			"authorNonNull": map[string]any{
				"idField":  "custom",
				"intField": 2,
				"posts":    []any{map[string]any{}},
			},
		})
		require.NoError(t, err)
		requireDiff(t, map[string]any{
			"authorNonNull": map[string]any{
				"idField":            "custom",
				"stringFieldNonNull": "AuthorInput-stringFieldNonNull",
				"intField":           2,
				"intFieldNonNull":    1,
				"posts": []any{map[string]any{
					"idField":       "PostInput-idField",
					"authorNonNull": defaultAuthor,
				}},
				"postsNonNull": []any{},
			},
		}, vars)
	})
}

func TestVariables_Scalars(t *testing.T) {
	op := mustOperation(t, mustLoadSchema(t), `
query q($id: ID!, $first: Int, $genres: [Genre!]!, $genre: Genre!) { genre }`)

	vars, err := op.Variables(map[string]any{"first": 10})
	require.NoError(t, err)
	requireDiff(t, map[string]any{
		"id":     "id",
		"first":  10,
		"genres": []any{},
		"genre":  "FICTION",
	}, vars)
}

func TestScalarOverrides(t *testing.T) {
	s := mustBuildSchema(t, `
scalar DateTime
scalar Money
type Invoice { issuedAt: DateTime!, total: Money!, paidAt: DateTime, id: ID! }
type Query { invoice: Invoice! }
`)
	op := mustOperation(t, s, `{ invoice { issuedAt total paidAt id } }`)

	t.Run("registered values and kinds", func(t *testing.T) {
		data, err := op.Data(nil,
			mock.WithTypename(false),
			mock.WithScalarValue("DateTime", "2020-01-01T00:00:00Z"),
			mock.WithScalarKind("Money", mock.KindFloat),
			mock.WithScalarValues(map[string]any{"ID": "fixed"}),
		)
		require.NoError(t, err)
		requireDiff(t, map[string]any{"invoice": map[string]any{
			"issuedAt": "2020-01-01T00:00:00Z",
			"total":    1.0,
			"paidAt":   nil,
			"id":       "fixed",
		}}, data)
	})

	t.Run("unresolvable custom scalar", func(t *testing.T) {
		_, err := op.Data(nil, mock.WithScalarValue("DateTime", "now"))
		var target *mock.UnresolvableScalarError
		require.True(t, errors.As(err, &target))
		require.Equal(t, "Money", target.Scalar)
		require.Equal(t, "invoice.total", target.Path)
	})

	t.Run("registered nil value", func(t *testing.T) {
		_, err := op.Data(nil,
			mock.WithScalarValue("DateTime", nil),
			mock.WithScalarKind("Money", mock.KindInt))
		var target *mock.MissingScalarOverrideError
		require.True(t, errors.As(err, &target))
		require.Equal(t, "DateTime", target.Scalar)
		require.Equal(t, "invoice.issuedAt", target.Path)
	})
}

func TestSynthesize_DepthLimit(t *testing.T) {
	op := mustOperation(t, mustLoadSchema(t), `{ authors { posts { authorNonNull { idField } } } }`)

	_, err := op.Data(map[string]any{"authors": []any{map[string]any{"posts": []any{map[string]any{}}}}},
		mock.WithMaxDepth(3))
	var target *mock.DepthLimitError
	require.True(t, errors.As(err, &target))
	require.Equal(t, 3, target.Limit)
}

func TestSynthesize_SingleNode(t *testing.T) {
	op := mustOperation(t, mustLoadSchema(t), `{ authors { idField } }`)
	authors := op.Tree().Data.Children()[0]

	v, err := mock.Synthesize(authors, nil, mock.Output, mock.NewOptions())
	require.NoError(t, err)
	require.Nil(t, v)

	v, err = mock.Synthesize(authors, []map[string]any{{"idField": "x"}}, mock.Output, mock.NewOptions(mock.WithTypename(false)))
	require.NoError(t, err)
	requireDiff(t, []any{map[string]any{"idField": "x"}}, v)
}
