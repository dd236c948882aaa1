package main

import (
	"bytes"
	"context"
	stdjson "encoding/json"
	"os"
	"path/filepath"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/mockgraph/internal/eventbus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	schemaFile    = filepath.Join("testdata", "schema.graphql")
	authorsFile   = filepath.Join("testdata", "authors.graphql")
	createFile    = filepath.Join("testdata", "createAuthor.graphql")
	dataFile      = filepath.Join("testdata", "data.json")
	resultFile    = filepath.Join("testdata", "result.json")
	scalarsFile   = filepath.Join("testdata", "scalars.json")
	badDataFile   = filepath.Join("testdata", "bad-data.json")
	documentFlags = []string{"-documents", authorsFile, "-documents", createFile}
)

func runCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Cleanup(func() { eventbus.Use(nil) })
	var out, errOut bytes.Buffer
	err = run(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), err
}

type response struct {
	Request struct {
		Query         string         `json:"query"`
		OperationName string         `json:"operationName"`
		Variables     map[string]any `json:"variables"`
	} `json:"request"`
	Result stdjson.RawMessage `json:"result"`
	Error  string             `json:"error"`
}

func mockArgs(extra ...string) []string {
	args := append([]string{"mock", "-schema", schemaFile}, documentFlags...)
	return append(args, extra...)
}

func decodeResponse(t *testing.T, out string) response {
	t.Helper()
	var resp response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	return resp
}

func TestHelp(t *testing.T) {
	out, _, err := runCommand(t, "help", "mock")
	require.NoError(t, err)
	require.Contains(t, out, "mock FLAGS")

	out, _, err = runCommand(t, "help")
	require.NoError(t, err)
	require.Contains(t, out, "COMMANDS:")

	_, _, err = runCommand(t, "help", "nope")
	require.EqualError(t, err, `unknown help topic "nope"`)
}

func TestUnknownCommand(t *testing.T) {
	_, stderr, err := runCommand(t, "serve")
	require.EqualError(t, err, `unknown command "serve"`)
	require.Contains(t, stderr, "USAGE:")

	_, _, err = runCommand(t)
	require.EqualError(t, err, "missing command")
}

func TestMock_DataOverride(t *testing.T) {
	out, _, err := runCommand(t, mockArgs("-operation", "author", "-data", dataFile, "-validate")...)
	require.NoError(t, err)

	resp := decodeResponse(t, out)
	require.Equal(t, "author", resp.Request.OperationName)
	require.Equal(t, map[string]any{"id": "id"}, resp.Request.Variables)
	require.Contains(t, resp.Request.Query, "query author")
	require.JSONEq(t, `{"data": {"author": {
		"__typename": "Author",
		"id": "Author-id",
		"name": "Ursula",
		"books": [
			{"__typename": "Book", "title": "The Dispossessed", "pages": 387},
			{"__typename": "Book", "title": "Book-title", "pages": null}
		]
	}}}`, string(resp.Result))
}

func TestMock_ResultWithErrors(t *testing.T) {
	out, _, err := runCommand(t, mockArgs("-operation", "author", "-result", resultFile)...)
	require.NoError(t, err)
	resp := decodeResponse(t, out)
	require.JSONEq(t, `{"data": null, "errors": [{"message": "forbidden", "path": ["author"]}]}`, string(resp.Result))
}

func TestMock_NetworkError(t *testing.T) {
	out, _, err := runCommand(t, mockArgs("-operation", "authors", "-error", "connection refused")...)
	require.NoError(t, err)
	resp := decodeResponse(t, out)
	require.Equal(t, "connection refused", resp.Error)
	require.Empty(t, resp.Result)
}

func TestMock_CustomScalars(t *testing.T) {
	_, _, err := runCommand(t, mockArgs("-operation", "createAuthor")...)
	require.ErrorContains(t, err, `no default for scalar "DateTime" (at createAuthor.born)`)

	out, _, err := runCommand(t, mockArgs("-operation", "createAuthor", "-scalar-kind", "DateTime=string", "-typename=false", "-pretty")...)
	require.NoError(t, err)
	resp := decodeResponse(t, out)
	require.Equal(t, map[string]any{"input": map[string]any{"name": "AuthorInput-name"}}, resp.Request.Variables)
	require.JSONEq(t, `{"data": {"createAuthor": {"id": "Author-id", "born": "Author-born"}}}`, string(resp.Result))

	out, _, err = runCommand(t, mockArgs("-operation", "createAuthor", "-scalars", scalarsFile, "-validate")...)
	require.NoError(t, err)
	resp = decodeResponse(t, out)
	require.JSONEq(t, `{"data": {"createAuthor": {"__typename": "Author", "id": "Author-id", "born": "2020-01-01T00:00:00Z"}}}`, string(resp.Result))

	_, _, err = runCommand(t, mockArgs("-operation", "createAuthor", "-scalar-kind", "DateTime=date")...)
	require.ErrorContains(t, err, `unknown scalar kind "date"`)
}

func TestMock_ValidateRejectsBadOverrides(t *testing.T) {
	_, _, err := runCommand(t, mockArgs("-operation", "author", "-data", badDataFile, "-validate")...)
	require.ErrorContains(t, err, "data: value does not match shape")
	require.ErrorContains(t, err, "/author/name")

	_, _, err = runCommand(t, mockArgs("-operation", "author", "-data", badDataFile)...)
	require.NoError(t, err)
}

func TestMock_RequiredFlags(t *testing.T) {
	_, stderr, err := runCommand(t, "mock", "-schema", schemaFile)
	require.Error(t, err)
	require.Contains(t, stderr, "mock FLAGS")

	_, _, err = runCommand(t, mockArgs("-operation", "missing")...)
	require.ErrorContains(t, err, `couldn't find operation "missing"`)

	_, _, err = runCommand(t, mockArgs("-operation", "author", "-data", dataFile, "-result", resultFile)...)
	require.EqualError(t, err, "-data and -result are mutually exclusive")
}

func TestCheck(t *testing.T) {
	out, _, err := runCommand(t, append([]string{"check", "-schema", schemaFile}, documentFlags...)...)
	require.NoError(t, err)
	require.Equal(t,
		authorsFile+"\tquery\tauthors\n"+
			authorsFile+"\tquery\tauthor\n"+
			createFile+"\tmutation\tcreateAuthor\n", out)

	bad := filepath.Join(t.TempDir(), "bad.graphql")
	require.NoError(t, os.WriteFile(bad, []byte(`query bad { authors { missing } }`), 0644))
	_, _, err = runCommand(t, "check", "-schema", schemaFile, "-documents", bad)
	require.ErrorContains(t, err, "bad.graphql:1:23")

	_, _, err = runCommand(t, "check", "-schema", schemaFile, "-documents", authorsFile, "-max-depth", "1")
	require.ErrorContains(t, err, "depth")
}

func TestDeclare(t *testing.T) {
	args := append([]string{"declare", "-schema", schemaFile, "-types-module", "@codegen-types"}, documentFlags...)
	out, _, err := runCommand(t, args...)
	require.NoError(t, err)
	require.Contains(t, out, `declare module "*/authors.graphql" {`)
	require.Contains(t, out, `export const createAuthor: TypedDocumentNode<CreateAuthorMutation, CreateAuthorMutationVariables>;`)
	require.Contains(t, out, "export default createAuthor;")

	outFile := filepath.Join(t.TempDir(), "operations.d.ts")
	_, _, err = runCommand(t, append(args, "-basename", "-out", outFile)...)
	require.NoError(t, err)
	written, err := os.ReadFile(outFile)
	require.NoError(t, err)
	require.Contains(t, string(written), `import { TypedDocumentNode } from "@apollo/client";`)

	_, _, err = runCommand(t, append(args, "-out", "operations.ts")...)
	require.ErrorContains(t, err, ".d.ts")

	_, _, err = runCommand(t, append([]string{"declare", "-schema", schemaFile, "-types-module", "./types"}, documentFlags...)...)
	require.ErrorContains(t, err, "non relative")
}

func TestPrintSchema(t *testing.T) {
	out, _, err := runCommand(t, "print-schema", "-schema", schemaFile)
	require.NoError(t, err)
	require.Contains(t, out, "scalar DateTime\n")
	require.Contains(t, out, "input AuthorInput {\n  name: String!\n  born: DateTime\n}\n")
	require.NotContains(t, out, "scalar String")
}
