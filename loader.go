// Package loader aggregates a directory-shaped module tree describing a
// GraphQL API into the artifacts a server needs: an ordered sequence of
// parsed schema documents, a combined resolver map, and per-request
// loader/middleware realization.
//
// The directory convention is the one popularized by modular GraphQL
// codebases: one folder per type, each folder optionally carrying a schema
// file, a resolvers module, loaders/middleware modules, and Query/Mutation/
// Subscription subfolders holding one operation per entry. Keys outside this
// convention are inert, so layouts can carry extra material without breaking
// the load.
package loader

import (
	"context"
	"io/fs"
	"os"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/validator"

	"github.com/jpwilliams/graphql-modular-loader/modtree"
)

// Resolver handles one GraphQL field or root operation. source is the parent
// value for field resolvers and nil for root operations.
type Resolver func(ctx context.Context, source interface{}, args map[string]interface{}) (interface{}, error)

// ContextFactory builds one per-request object (a data loader, a middleware
// callable) from the request context. Factories run once per realization and
// their results are never shared across requests.
type ContextFactory func(ctx context.Context) (interface{}, error)

// ResolverMap is keyed first by GraphQL type name, then by field or operation
// name.
type ResolverMap map[string]map[string]Resolver

// OperationDef describes one root operation contributed by a type folder.
// Both fields are optional; a definition carrying neither is inert and
// ignored entirely.
type OperationDef struct {
	Schema   string
	Resolver Resolver
}

// Aggregate is the result of one load. It is built fresh on every call and
// never mutated afterwards.
type Aggregate struct {
	// TypeDefs holds the parsed schema documents in discovery order: each
	// type's own schema first, then its operation fragments, with the
	// synthesized root document last.
	TypeDefs   []*ast.SchemaDocument
	Resolvers  ResolverMap
	Loaders    map[string]ContextFactory
	Middleware map[string]ContextFactory

	sources []*ast.Source
}

// Schema merges TypeDefs into a validated *ast.Schema. This is a convenience
// for callers without their own schema-building step; the documents
// themselves remain the primary artifact.
func (agg *Aggregate) Schema() (*ast.Schema, error) {
	sources := make([]*ast.Source, 0, len(agg.sources)+1)
	sources = append(sources, validator.Prelude)
	sources = append(sources, agg.sources...)

	schema, gErr := validator.LoadSchema(sources...)
	if gErr != nil {
		return nil, gErr
	}
	return schema, nil
}

// ContextFns returns the per-request realization function for this
// aggregate's loaders and middleware.
func (agg *Aggregate) ContextFns() ContextFunc {
	return BindContextFns(agg.Loaders, agg.Middleware)
}

type loadConfig struct {
	extensions []string
	values     []moduleValue
}

type moduleValue struct {
	path  string
	value interface{}
}

// Option configures Load and LoadFS.
type Option func(cfg *loadConfig)

// WithValue registers an executable-module value at a slash path in the tree,
// e.g. WithValue("Book/resolvers", map[string]Resolver{...}) or
// WithValue("Book/Query/books", OperationDef{...}). Values land in the tree
// after the filesystem entries, in registration order, and replace any file
// loaded at the same path.
func WithValue(path string, value interface{}) Option {
	return func(cfg *loadConfig) {
		cfg.values = append(cfg.values, moduleValue{path: path, value: value})
	}
}

// WithExtensions overrides the schema file extensions recognized during
// filesystem traversal. The default set is modtree.DefaultExtensions.
func WithExtensions(exts ...string) Option {
	return func(cfg *loadConfig) {
		cfg.extensions = exts
	}
}

// Load walks the directory at path and aggregates it. The path is resolved
// relative to the process working directory.
func Load(ctx context.Context, path string, opts ...Option) (*Aggregate, error) {
	if path == "" {
		return nil, configErrorf("no path given")
	}
	return LoadFS(ctx, os.DirFS(path), opts...)
}

// LoadFS aggregates the tree rooted at fsys.
func LoadFS(ctx context.Context, fsys fs.FS, opts ...Option) (*Aggregate, error) {
	cfg := &loadConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	tree, err := modtree.LoadFS(fsys, cfg.extensions)
	if err != nil {
		return nil, err
	}

	for _, mv := range cfg.values {
		err := tree.SetPath(mv.path, modtree.NewLeaf(mv.value))
		if err != nil {
			return nil, configErrorf("register value: %v", err)
		}
	}

	return LoadTree(ctx, tree)
}

// LoadTree aggregates an already-built module tree. The tree is not mutated.
func LoadTree(ctx context.Context, tree *modtree.Branch) (*Aggregate, error) {
	if tree == nil || tree.Len() == 0 {
		return nil, configErrorf("nothing to load")
	}

	red, err := reduceTree(ctx, tree)
	if err != nil {
		return nil, err
	}

	rootDoc, rootSource, err := synthesizeRoot(red.populated)
	if err != nil {
		return nil, err
	}

	return &Aggregate{
		TypeDefs:   append(red.typeDefs, rootDoc),
		Resolvers:  red.resolvers,
		Loaders:    red.loaders,
		Middleware: red.middleware,
		sources:    append(red.sources, rootSource),
	}, nil
}
