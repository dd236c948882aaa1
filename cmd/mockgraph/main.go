package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/hanpama/mockgraph/internal/catalog"
	"github.com/hanpama/mockgraph/internal/config"
	"github.com/hanpama/mockgraph/internal/declgen"
	"github.com/hanpama/mockgraph/internal/eventbus"
	"github.com/hanpama/mockgraph/internal/logging"
	"github.com/hanpama/mockgraph/internal/mock"
	"github.com/hanpama/mockgraph/internal/mockresp"
	"github.com/hanpama/mockgraph/internal/otel"
	"github.com/hanpama/mockgraph/internal/schema"
	"github.com/hanpama/mockgraph/internal/shape"
)

const rootUsage = `mockgraph — mock data for GraphQL operations

USAGE:
  mockgraph <command> [flags]

COMMANDS:
  mock             Print a mocked response for one operation
  check            Build every operation of the given documents
  declare          Generate TypeScript module declarations for documents
  print-schema     Validate schema files and print the merged SDL
  help             Show help for any command
`

const mockUsage = `mock FLAGS:
  -schema <file>             GraphQL SDL file. Repeatable; at least one required
  -documents <file>          GraphQL document file. Repeatable; at least one required
  -operation <name>          Operation to mock (required)
  -variables <file>          JSON object overriding the synthesized variables
  -data <file>               JSON object overriding the synthesized data
  -result <file>             JSON result with "data" and "errors"; errors without
                             data produce a null data field
  -error <message>           Mock a network error instead of a result
  -scalars <file>            JSON object of default values per scalar name
  -scalar-kind <Name=kind>   Default a custom scalar like string, number, float
                             or boolean. Repeatable
  -typename <bool>           Add __typename to output objects (default: true)
  -validate                  Check the response against the operation's shape
  -pretty                    Indent the JSON output
  -max-depth N               Nesting limit (default: $MOCKGRAPH_MAX_DEPTH or 64)
`

const checkUsage = `check FLAGS:
  -schema <file>      GraphQL SDL file. Repeatable; at least one required
  -documents <file>   GraphQL document file. Repeatable; at least one required
  -max-depth N        Nesting limit (default: $MOCKGRAPH_MAX_DEPTH or 64)
  (exits non-zero when any operation fails to build)
`

const declareUsage = `declare FLAGS:
  -schema <file>                       GraphQL SDL file. Repeatable; at least one required
  -documents <file>                    GraphQL document file. Repeatable; at least one required
  -types-module <module>               Module exporting operation types (required, non relative)
  -typed-document-node-module <module> Module exporting TypedDocumentNode
  -prefix <prefix>                     Module name prefix (default: */)
  -module-prefix <prefix>              Path prefix inserted after -prefix
  -relative                            Use paths relative to the working directory
  -basename                            Declare "*/<basename>" modules importing from @apollo/client
  -exclude-default-exports             Never add a default export
  -out <file>                          Write declarations to file, which must end in .d.ts
                                       unless -basename is set (default: stdout)
`

const printSchemaUsage = `print-schema FLAGS:
  -schema <file>   GraphQL SDL file. Repeatable; at least one required
  -out <file>      Write SDL to file (default: stdout)
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	global := flag.NewFlagSet("mockgraph", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer)) // silence automatic output
	if err := global.Parse(args); err != nil {
		fmt.Fprint(stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "mock":
		return cmdMock(ctx, cmdArgs, stdout, stderr)
	case "check":
		return cmdCheck(ctx, cmdArgs, stdout, stderr)
	case "declare":
		return cmdDeclare(ctx, cmdArgs, stdout, stderr)
	case "print-schema":
		return cmdPrintSchema(cmdArgs, stdout, stderr)
	case "help":
		return cmdHelp(cmdArgs, stdout)
	default:
		fmt.Fprint(stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, rootUsage)
		return nil
	}
	switch args[0] {
	case "mock":
		fmt.Fprint(stdout, mockUsage)
	case "check":
		fmt.Fprint(stdout, checkUsage)
	case "declare":
		fmt.Fprint(stdout, declareUsage)
	case "print-schema":
		fmt.Fprint(stdout, printSchemaUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

type stringListFlag []string

func (s *stringListFlag) String() string { return strings.Join(*s, ",") }

func (s *stringListFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

type scalarKindFlag map[string]mock.ScalarKind

func (f scalarKindFlag) String() string { return "" }

func (f scalarKindFlag) Set(v string) error {
	name, kindName, ok := strings.Cut(v, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return fmt.Errorf("invalid scalar kind %q", v)
	}
	kind, ok := mock.ParseScalarKind(strings.TrimSpace(kindName))
	if !ok {
		return fmt.Errorf("unknown scalar kind %q for %s", kindName, name)
	}
	f[name] = kind
	return nil
}

// setup wires logging, the event bus and tracing from the environment.
func setup(cfg *config.Config) (teardown func(), err error) {
	closeLog, err := logging.Setup(logging.Config{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		FilePath:   cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
		Compress:   cfg.LogCompress,
	})
	if err != nil {
		return nil, fmt.Errorf("logging setup: %w", err)
	}
	eventbus.Use(eventbus.New())
	shutdown, err := otel.Setup(cfg.OtelEndpoint, cfg.OtelService)
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("otel setup: %w", err)
	}
	return func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Warn("otel shutdown", slog.String("error", err.Error()))
		}
		_ = closeLog()
	}, nil
}

func loadSchema(paths []string) (*schema.Schema, error) {
	sources, err := catalog.ReadSources(paths)
	if err != nil {
		return nil, err
	}
	s, err := schema.BuildFromSDL(sources...)
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}
	return s, nil
}

func loadCatalog(ctx context.Context, cfg *config.Config, schemaFiles, documents []string, maxDepth int) (*catalog.Catalog, error) {
	s, err := loadSchema(schemaFiles)
	if err != nil {
		return nil, err
	}
	c, err := catalog.LoadFiles(ctx, s, documents,
		catalog.WithWorkers(cfg.Workers),
		catalog.WithMaxDepth(maxDepth))
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	return c, nil
}

func readJSONObject(path string) (map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	v, err := mockresp.DecodeOverride(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return v, nil
}

func cmdMock(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg := config.Load()
	var schemaFiles, documents stringListFlag
	operation := ""
	variablesFile := ""
	dataFile := ""
	resultFile := ""
	networkError := ""
	scalarsFile := ""
	scalarKinds := scalarKindFlag{}
	typename := true
	validate := false
	pretty := false
	maxDepth := cfg.TreeDepth()

	fs := flag.NewFlagSet("mock", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.Var(&schemaFiles, "schema", "GraphQL SDL file")
	fs.Var(&documents, "documents", "GraphQL document file")
	fs.StringVar(&operation, "operation", operation, "Operation to mock")
	fs.StringVar(&variablesFile, "variables", variablesFile, "Variables override file")
	fs.StringVar(&dataFile, "data", dataFile, "Data override file")
	fs.StringVar(&resultFile, "result", resultFile, "Result file")
	fs.StringVar(&networkError, "error", networkError, "Network error message")
	fs.StringVar(&scalarsFile, "scalars", scalarsFile, "Scalar defaults file")
	fs.Var(scalarKinds, "scalar-kind", "Scalar kind mapping")
	fs.BoolVar(&typename, "typename", typename, "Add __typename")
	fs.BoolVar(&validate, "validate", validate, "Validate the response shape")
	fs.BoolVar(&pretty, "pretty", pretty, "Indent JSON output")
	fs.IntVar(&maxDepth, "max-depth", maxDepth, "Nesting limit")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, mockUsage)
		return err
	}
	if len(schemaFiles) == 0 || len(documents) == 0 || operation == "" {
		fmt.Fprint(stderr, mockUsage)
		return fmt.Errorf("-schema, -documents and -operation are required")
	}
	if dataFile != "" && resultFile != "" {
		return fmt.Errorf("-data and -result are mutually exclusive")
	}

	teardown, err := setup(cfg)
	if err != nil {
		return err
	}
	defer teardown()

	c, err := loadCatalog(ctx, cfg, schemaFiles, documents, maxDepth)
	if err != nil {
		return err
	}

	opts := []mock.Option{mock.WithTypename(typename), mock.WithMaxDepth(maxDepth)}
	for name, kind := range scalarKinds {
		opts = append(opts, mock.WithScalarKind(name, kind))
	}
	if scalarsFile != "" {
		values, err := readJSONObject(scalarsFile)
		if err != nil {
			return err
		}
		opts = append(opts, mock.WithScalarValues(values))
	}

	var variables map[string]any
	if variablesFile != "" {
		if variables, err = readJSONObject(variablesFile); err != nil {
			return err
		}
	}

	var result any
	switch {
	case networkError != "":
		result = errors.New(networkError)
	case dataFile != "":
		data, err := readJSONObject(dataFile)
		if err != nil {
			return err
		}
		result = data
	case resultFile != "":
		f, err := os.Open(resultFile)
		if err != nil {
			return err
		}
		r, err := mockresp.DecodeResult(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("decode %s: %w", resultFile, err)
		}
		result = r
	}

	resp, err := mockresp.New(c).Mock(ctx, operation, variables, result, opts...)
	if err != nil {
		return err
	}
	if validate {
		entry, _ := c.Lookup(operation)
		if err := validateResponse(resp, entry, mock.NewOptions(opts...)); err != nil {
			return err
		}
	}
	return mockresp.Encode(stdout, resp, pretty)
}

func validateResponse(resp *mockresp.MockedResponse, entry *catalog.Entry, opts mock.Options) error {
	tree := entry.Operation.Tree()
	v, err := shape.NewValidator(tree.Variables, mock.Input, opts)
	if err != nil {
		return err
	}
	if err := v.Validate(resp.Request.Variables); err != nil {
		return fmt.Errorf("variables: %w", err)
	}
	if resp.Result == nil || resp.Result.Data == nil {
		return nil
	}
	v, err = shape.NewValidator(tree.Data, mock.Output, opts)
	if err != nil {
		return err
	}
	if err := v.Validate(resp.Result.Data); err != nil {
		return fmt.Errorf("data: %w", err)
	}
	return nil
}

func cmdCheck(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg := config.Load()
	var schemaFiles, documents stringListFlag
	maxDepth := cfg.TreeDepth()
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.Var(&schemaFiles, "schema", "GraphQL SDL file")
	fs.Var(&documents, "documents", "GraphQL document file")
	fs.IntVar(&maxDepth, "max-depth", maxDepth, "Nesting limit")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, checkUsage)
		return err
	}
	if len(schemaFiles) == 0 || len(documents) == 0 {
		fmt.Fprint(stderr, checkUsage)
		return fmt.Errorf("-schema and -documents are required")
	}

	teardown, err := setup(cfg)
	if err != nil {
		return err
	}
	defer teardown()

	c, err := loadCatalog(ctx, cfg, schemaFiles, documents, maxDepth)
	if err != nil {
		return err
	}
	for _, doc := range c.Documents() {
		for _, tree := range doc.Trees {
			name := tree.Name
			if name == "" {
				name = "<anonymous>"
			}
			fmt.Fprintf(stdout, "%s\t%s\t%s\n", doc.Location, tree.Operation, name)
		}
	}
	return nil
}

func cmdDeclare(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg := config.Load()
	var schemaFiles, documents stringListFlag
	typesModule := ""
	typedDocumentNodeModule := ""
	prefix := declgen.DefaultPrefix
	modulePrefix := ""
	relative := false
	basename := false
	excludeDefaultExports := false
	outFile := ""

	fs := flag.NewFlagSet("declare", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.Var(&schemaFiles, "schema", "GraphQL SDL file")
	fs.Var(&documents, "documents", "GraphQL document file")
	fs.StringVar(&typesModule, "types-module", typesModule, "Module exporting operation types")
	fs.StringVar(&typedDocumentNodeModule, "typed-document-node-module", typedDocumentNodeModule, "Module exporting TypedDocumentNode")
	fs.StringVar(&prefix, "prefix", prefix, "Module name prefix")
	fs.StringVar(&modulePrefix, "module-prefix", modulePrefix, "Module path prefix")
	fs.BoolVar(&relative, "relative", relative, "Use paths relative to the working directory")
	fs.BoolVar(&basename, "basename", basename, "Declare basename modules")
	fs.BoolVar(&excludeDefaultExports, "exclude-default-exports", excludeDefaultExports, "Never add a default export")
	fs.StringVar(&outFile, "out", outFile, "Write declarations to file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, declareUsage)
		return err
	}
	if len(schemaFiles) == 0 || len(documents) == 0 {
		fmt.Fprint(stderr, declareUsage)
		return fmt.Errorf("-schema and -documents are required")
	}

	dcfg := declgen.DefaultConfig(typesModule)
	if basename {
		dcfg = declgen.BasenameConfig(typesModule)
	}
	if typedDocumentNodeModule != "" {
		dcfg.TypedDocumentNodeModule = typedDocumentNodeModule
	}
	dcfg.Prefix = prefix
	dcfg.ModulePathPrefix = modulePrefix
	dcfg.RelativeToCwd = relative
	dcfg.ExcludeDefaultExports = excludeDefaultExports
	if err := declgen.Validate(dcfg, outFile); err != nil {
		fmt.Fprint(stderr, declareUsage)
		return err
	}

	teardown, err := setup(cfg)
	if err != nil {
		return err
	}
	defer teardown()

	c, err := loadCatalog(ctx, cfg, schemaFiles, documents, cfg.TreeDepth())
	if err != nil {
		return err
	}
	out, err := declgen.Generate(c.Documents(), dcfg)
	if err != nil {
		return err
	}
	if outFile == "" {
		fmt.Fprint(stdout, out)
		return nil
	}
	return os.WriteFile(outFile, []byte(out), 0644)
}

func cmdPrintSchema(args []string, stdout, stderr io.Writer) error {
	var schemaFiles stringListFlag
	outFile := ""
	fs := flag.NewFlagSet("print-schema", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.Var(&schemaFiles, "schema", "GraphQL SDL file")
	fs.StringVar(&outFile, "out", outFile, "Write SDL to file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, printSchemaUsage)
		return err
	}
	if len(schemaFiles) == 0 {
		fmt.Fprint(stderr, printSchemaUsage)
		return fmt.Errorf("-schema is required")
	}

	s, err := loadSchema(schemaFiles)
	if err != nil {
		return err
	}
	sdl := schema.Render(s)
	if outFile == "" {
		fmt.Fprint(stdout, sdl)
		return nil
	}
	return os.WriteFile(outFile, []byte(sdl), 0644)
}
