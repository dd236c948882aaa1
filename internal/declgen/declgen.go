// Package declgen writes TypeScript ambient module declarations that type
// the operations of GraphQL documents imported by a bundler.
package declgen

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/hanpama/mockgraph/internal/catalog"
)

const (
	DefaultPrefix                  = "*/"
	DefaultTypedDocumentNodeModule = "@graphql-typed-document-node/core"
	// BasenameTypedDocumentNodeModule is imported by basename declarations.
	BasenameTypedDocumentNodeModule = "@apollo/client"
)

type Mode int

const (
	// ModeTypedFiles derives module names from the configured prefixes and
	// the document path, and must be written to a .d.ts file.
	ModeTypedFiles Mode = iota
	// ModeBasename declares every document as "*/<basename>".
	ModeBasename
)

type Config struct {
	Mode Mode
	// TypesModule is the non-relative module exporting the generated
	// operation and variables types.
	TypesModule             string
	TypedDocumentNodeModule string
	Prefix                  string
	ModulePathPrefix        string
	// RelativeToCwd uses the document path relative to Cwd instead of its
	// basename.
	RelativeToCwd         bool
	ExcludeDefaultExports bool
	// Cwd defaults to the process working directory.
	Cwd string
}

// DefaultConfig returns the typed-files configuration for typesModule.
func DefaultConfig(typesModule string) Config {
	return Config{
		Mode:                    ModeTypedFiles,
		TypesModule:             typesModule,
		TypedDocumentNodeModule: DefaultTypedDocumentNodeModule,
		Prefix:                  DefaultPrefix,
	}
}

// BasenameConfig returns the basename configuration for typesModule.
func BasenameConfig(typesModule string) Config {
	return Config{
		Mode:                    ModeBasename,
		TypesModule:             typesModule,
		TypedDocumentNodeModule: BasenameTypedDocumentNodeModule,
		Prefix:                  DefaultPrefix,
	}
}

var ErrMissingTypesModule = errors.New(`you must specify "typesModule"`)

var ErrRelativeTypesModule = errors.New(`you must specify a non relative module for "typesModule"`)

// UnnamedOperationError reports an anonymous operation, which cannot be
// exported.
type UnnamedOperationError struct {
	Document string
}

func (e *UnnamedOperationError) Error() string {
	return fmt.Sprintf("%s: operation must have a name", e.Document)
}

// Validate checks cfg before generation. outputFile may be empty when the
// declarations go to standard output.
func Validate(cfg Config, outputFile string) error {
	if cfg.TypesModule == "" {
		return ErrMissingTypesModule
	}
	if strings.HasPrefix(cfg.TypesModule, "./") || strings.HasPrefix(cfg.TypesModule, "../") {
		return ErrRelativeTypesModule
	}
	if cfg.Mode == ModeTypedFiles && outputFile != "" && !strings.HasSuffix(outputFile, ".d.ts") {
		return fmt.Errorf("typed files declarations require the \".d.ts\" extension, which %q does not have", outputFile)
	}
	return nil
}

// Generate renders one declaration block per document, separated by blank
// lines.
func Generate(docs []*catalog.Document, cfg Config) (string, error) {
	if cfg.RelativeToCwd && cfg.Cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		cfg.Cwd = wd
	}
	blocks := make([]string, 0, len(docs))
	for _, doc := range docs {
		block, err := declare(doc, cfg)
		if err != nil {
			return "", err
		}
		blocks = append(blocks, block)
	}
	if len(blocks) == 0 {
		return "", nil
	}
	return strings.Join(blocks, "\n\n") + "\n", nil
}

func declare(doc *catalog.Document, cfg Config) (string, error) {
	modulePath, err := moduleName(doc.Location, cfg)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "declare module %q {\n", modulePath)
	fmt.Fprintf(&b, "  import { TypedDocumentNode } from %q;\n", cfg.TypedDocumentNodeModule)

	ops := doc.AST.Operations
	for _, op := range ops {
		if op.Name == "" {
			return "", &UnnamedOperationError{Document: doc.Location}
		}
		typeName := strcase.ToCamel(op.Name) + strcase.ToCamel(string(op.Operation))
		fmt.Fprintf(&b, "  import { %s, %sVariables } from %q;\n", typeName, typeName, cfg.TypesModule)
		fmt.Fprintf(&b, "  export const %s: TypedDocumentNode<%s, %sVariables>;\n", op.Name, typeName, typeName)
	}
	if len(ops) == 1 && !cfg.ExcludeDefaultExports {
		fmt.Fprintf(&b, "  export default %s;\n", ops[0].Name)
	}
	b.WriteString("}")
	return b.String(), nil
}

func moduleName(location string, cfg Config) (string, error) {
	if cfg.Mode == ModeBasename {
		return DefaultPrefix + filepath.Base(location), nil
	}
	name := filepath.Base(location)
	if cfg.RelativeToCwd {
		abs := location
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(cfg.Cwd, location)
		}
		rel, err := filepath.Rel(cfg.Cwd, abs)
		if err != nil {
			return "", err
		}
		name = rel
	}
	return cfg.Prefix + cfg.ModulePathPrefix + filepath.ToSlash(name), nil
}
