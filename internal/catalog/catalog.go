// Package catalog builds the typed trees of a set of GraphQL documents and
// indexes their operations by name.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	eventbus "github.com/hanpama/mockgraph/internal/eventbus"
	events "github.com/hanpama/mockgraph/internal/events"
	language "github.com/hanpama/mockgraph/internal/language"
	"github.com/hanpama/mockgraph/internal/mock"
	runid "github.com/hanpama/mockgraph/internal/runid"
	schema "github.com/hanpama/mockgraph/internal/schema"
	"github.com/hanpama/mockgraph/internal/typedtree"
)

// Document is one loaded GraphQL document and the trees of its operations.
type Document struct {
	Location string
	AST      *language.QueryDocument
	Trees    []*typedtree.Tree
	// Query is the document printed back to GraphQL source.
	Query string
}

// Entry is a named operation in the catalog.
type Entry struct {
	Document  *Document
	Operation *mock.Operation
}

type Catalog struct {
	schema    *schema.Schema
	documents []*Document
	entries   map[string]*Entry
}

type Options struct {
	Workers  int
	MaxDepth int
}

type Option func(*Options)

// WithWorkers bounds how many documents are built concurrently.
func WithWorkers(n int) Option { return func(o *Options) { o.Workers = n } }

// WithMaxDepth sets the nesting limit for the typed tree builder.
func WithMaxDepth(n int) Option { return func(o *Options) { o.MaxDepth = n } }

// DuplicateOperationError reports two documents defining the same operation
// name.
type DuplicateOperationError struct {
	Name   string
	First  string
	Second string
}

func (e *DuplicateOperationError) Error() string {
	return fmt.Sprintf("operation %q is defined in both %s and %s", e.Name, e.First, e.Second)
}

// Load parses and builds every source. Each document gets its own
// typedtree.Cache so documents are built in parallel without sharing state.
// Errors from every failing document are joined.
func Load(ctx context.Context, s *schema.Schema, sources []*language.Source, opts ...Option) (*Catalog, error) {
	o := Options{Workers: 4, MaxDepth: typedtree.DefaultMaxDepth}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Workers <= 0 {
		o.Workers = 1
	}

	docs := make([]*Document, len(sources))
	errs := make([]error, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.Workers)
	for i, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			docs[i], errs[i] = buildDocument(ctx, s, src, o.MaxDepth)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	c := &Catalog{schema: s, documents: docs, entries: make(map[string]*Entry)}
	for _, doc := range docs {
		for _, tree := range doc.Trees {
			if tree.Name == "" {
				continue
			}
			if prev, ok := c.entries[tree.Name]; ok {
				return nil, &DuplicateOperationError{Name: tree.Name, First: prev.Document.Location, Second: doc.Location}
			}
			c.entries[tree.Name] = &Entry{Document: doc, Operation: mock.NewOperation(tree)}
		}
	}
	slog.Debug("catalog loaded",
		slog.Int("documents", len(docs)),
		slog.Int("operations", len(c.entries)),
	)
	return c, nil
}

// LoadFiles reads the documents at paths and loads them.
func LoadFiles(ctx context.Context, s *schema.Schema, paths []string, opts ...Option) (*Catalog, error) {
	sources, err := ReadSources(paths)
	if err != nil {
		return nil, err
	}
	return Load(ctx, s, sources, opts...)
}

// ReadSources reads each path into a named source.
func ReadSources(paths []string) ([]*language.Source, error) {
	sources := make([]*language.Source, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		sources = append(sources, &language.Source{Name: path, Input: string(content)})
	}
	return sources, nil
}

func buildDocument(ctx context.Context, s *schema.Schema, src *language.Source, maxDepth int) (doc *Document, err error) {
	ctx, _ = runid.NewContext(ctx)
	start := time.Now()
	eventbus.Publish(ctx, events.DocumentBuildStart{Document: src.Name})
	defer func() {
		var names []string
		if doc != nil {
			for _, tree := range doc.Trees {
				names = append(names, tree.Name)
			}
		}
		eventbus.Publish(ctx, events.DocumentBuildFinish{
			Document:   src.Name,
			Operations: names,
			Err:        err,
			Duration:   time.Since(start),
		})
	}()

	ast, err := language.ParseQuery(src.Name, src.Input)
	if err != nil {
		return nil, err
	}
	cache := typedtree.NewCache()
	cache.MaxDepth = maxDepth
	trees := make([]*typedtree.Tree, 0, len(ast.Operations))
	for _, op := range ast.Operations {
		tree, err := typedtree.Build(ast, op, s, cache)
		if err != nil {
			slog.Debug("operation build failed",
				slog.String("document", src.Name),
				slog.String("operation", op.Name),
				slog.String("error", err.Error()),
			)
			return nil, err
		}
		trees = append(trees, tree)
	}
	return &Document{
		Location: src.Name,
		AST:      ast,
		Trees:    trees,
		Query:    language.FormatQuery(ast),
	}, nil
}

func (c *Catalog) Schema() *schema.Schema { return c.schema }

// Documents returns the loaded documents in source order.
func (c *Catalog) Documents() []*Document { return c.documents }

// Lookup returns the named operation.
func (c *Catalog) Lookup(name string) (*Entry, bool) {
	e, ok := c.entries[name]
	return e, ok
}

// Names returns every operation name, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
