// Package mockresp produces mocked GraphQL responses, pairing synthesized
// request variables with a synthesized result.
package mockresp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/hanpama/mockgraph/internal/catalog"
	eventbus "github.com/hanpama/mockgraph/internal/eventbus"
	events "github.com/hanpama/mockgraph/internal/events"
	language "github.com/hanpama/mockgraph/internal/language"
	"github.com/hanpama/mockgraph/internal/mock"
	runid "github.com/hanpama/mockgraph/internal/runid"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrMissingOperationName is returned for operations without a name.
var ErrMissingOperationName = errors.New("missing operation name")

// UnknownOperationError reports an operation name the catalog does not
// define.
type UnknownOperationError struct {
	Name string
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("couldn't find operation %q", e.Name)
}

type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

// Result is the GraphQL result of a mocked response. As an argument to
// Mock, Data is a partial override; a Result with errors and nil Data
// yields a null data field.
type Result struct {
	Data   map[string]any      `json:"data"`
	Errors language.ErrorList `json:"errors,omitempty"`
}

// MockedResponse pairs a request with either a result or a transport error.
type MockedResponse struct {
	Request Request
	Result  *Result
	Error   error
}

func (r *MockedResponse) MarshalJSON() ([]byte, error) {
	wire := struct {
		Request Request `json:"request"`
		Result  *Result `json:"result,omitempty"`
		Error   string  `json:"error,omitempty"`
	}{Request: r.Request, Result: r.Result}
	if r.Error != nil {
		wire.Error = r.Error.Error()
	}
	return json.Marshal(wire)
}

// Mocker builds mocked responses for the operations of a catalog.
type Mocker struct {
	catalog  *catalog.Catalog
	defaults []mock.Option
}

// New returns a Mocker. defaults apply to every call before per-call
// options.
func New(c *catalog.Catalog, defaults ...mock.Option) *Mocker {
	return &Mocker{catalog: c, defaults: defaults}
}

// Mock synthesizes a response for the named operation.
//
// result selects the response shape: nil or a map[string]any data override
// gives a synthesized result; a Result or *Result keeps its errors and
// synthesizes data unless Data is nil while errors are present; an error
// becomes the response's Error with no result.
func (m *Mocker) Mock(ctx context.Context, operationName string, variables map[string]any, result any, opts ...mock.Option) (resp *MockedResponse, err error) {
	if operationName == "" {
		return nil, ErrMissingOperationName
	}
	entry, ok := m.catalog.Lookup(operationName)
	if !ok {
		return nil, &UnknownOperationError{Name: operationName}
	}
	op := entry.Operation

	ctx, _ = runid.NewContext(ctx)
	start := time.Now()
	eventbus.Publish(ctx, events.MockStart{OperationName: op.Name(), OperationType: string(op.Kind())})
	defer func() {
		eventbus.Publish(ctx, events.MockFinish{
			OperationName: op.Name(),
			OperationType: string(op.Kind()),
			Err:           err,
			Duration:      time.Since(start),
		})
		if err != nil {
			slog.Debug("mock failed", slog.String("operation", op.Name()), slog.String("error", err.Error()))
		}
	}()

	all := append(append([]mock.Option(nil), m.defaults...), opts...)

	vars, err := op.Variables(variables, all...)
	if err != nil {
		return nil, fmt.Errorf("variables of %s: %w", op.Name(), err)
	}
	resp = &MockedResponse{Request: Request{
		Query:         entry.Document.Query,
		OperationName: op.Name(),
		Variables:     vars,
	}}

	var (
		dataOverride map[string]any
		gqlErrors    language.ErrorList
	)
	switch r := result.(type) {
	case nil:
	case error:
		resp.Error = r
		return resp, nil
	case map[string]any:
		dataOverride = r
	case Result:
		dataOverride, gqlErrors = r.Data, r.Errors
	case *Result:
		if r != nil {
			dataOverride, gqlErrors = r.Data, r.Errors
		}
	default:
		return nil, fmt.Errorf("unsupported result type %T", result)
	}

	resp.Result = &Result{Errors: gqlErrors}
	if len(gqlErrors) > 0 && dataOverride == nil {
		return resp, nil
	}
	data, err := op.Data(dataOverride, all...)
	if err != nil {
		return nil, fmt.Errorf("data of %s: %w", op.Name(), err)
	}
	resp.Result.Data = data
	return resp, nil
}

// MockQuery parses query and mocks its first operation, mirroring how a
// client passes the document it is about to execute.
func (m *Mocker) MockQuery(ctx context.Context, query string, variables map[string]any, result any, opts ...mock.Option) (*MockedResponse, error) {
	doc, err := language.ParseQuery("query.graphql", query)
	if err != nil {
		return nil, err
	}
	if len(doc.Operations) == 0 {
		return nil, ErrMissingOperationName
	}
	return m.Mock(ctx, doc.Operations[0].Name, variables, result, opts...)
}

// DecodeOverride reads a JSON object used as a variables or data override.
// Numbers are kept as json.Number so they round-trip unchanged.
func DecodeOverride(r io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

// DecodeResult reads a JSON result with "data" and "errors" members.
func DecodeResult(r io.Reader) (*Result, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var out Result
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Encode writes resp as JSON, indented when pretty is set.
func Encode(w io.Writer, resp *MockedResponse, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(resp)
}
