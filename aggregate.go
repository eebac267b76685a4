package loader

import (
	"context"
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/jpwilliams/graphql-modular-loader/internal/log"
	"github.com/jpwilliams/graphql-modular-loader/modtree"
)

// operationGroups is also the canonical declaration order used by the root
// synthesizer, regardless of discovery order.
var operationGroups = []string{"Query", "Mutation", "Subscription"}

type reduction struct {
	typeDefs   []*ast.SchemaDocument
	sources    []*ast.Source
	resolvers  ResolverMap
	loaders    map[string]ContextFactory
	middleware map[string]ContextFactory
	populated  map[string]bool
}

// reduceTree folds every type entry of the tree into one accumulator. The
// accumulator is local to this call; separate loads share no state.
func reduceTree(ctx context.Context, tree *modtree.Branch) (*reduction, error) {
	logger := log.FromContext(ctx)

	red := &reduction{
		resolvers:  make(ResolverMap),
		loaders:    make(map[string]ContextFactory),
		middleware: make(map[string]ContextFactory),
		populated:  make(map[string]bool),
	}

	err := tree.Each(func(typeName string, node modtree.Node) error {
		entry, ok := node.(*modtree.Branch)
		if !ok {
			// stray file at the tree root, not a type folder
			logger.V(1).Info("skipping non-folder entry", "name", typeName)
			return nil
		}
		return red.reduceTypeEntry(ctx, typeName, entry)
	})
	if err != nil {
		return nil, err
	}

	return red, nil
}

func (red *reduction) reduceTypeEntry(ctx context.Context, typeName string, entry *modtree.Branch) error {
	logger := log.FromContext(ctx)

	if node, ok := entry.Get("schema"); ok {
		text, err := leafString(typeName+"/schema", node)
		if err != nil {
			return err
		}
		// top-level type schemas are complete definitions, no extend prefixing
		err = red.appendSchema(typeName+"/schema", text)
		if err != nil {
			return err
		}
	}

	if node, ok := entry.Get("resolvers"); ok {
		resolvers, err := leafResolverMap(typeName+"/resolvers", node)
		if err != nil {
			return err
		}
		if red.resolvers[typeName] == nil {
			red.resolvers[typeName] = make(map[string]Resolver)
		}
		for fieldName, fn := range resolvers {
			red.resolvers[typeName][fieldName] = fn
			logger.V(1).Info("registered field resolver", "debugName", resolverDebugName(typeName, fieldName))
		}
	}

	if node, ok := entry.Get("loaders"); ok {
		factories, err := leafFactoryMap(typeName+"/loaders", node)
		if err != nil {
			return err
		}
		for name, factory := range factories {
			// last write wins across all type entries
			red.loaders[name] = factory
		}
	}

	if node, ok := entry.Get("middleware"); ok {
		factories, err := leafFactoryMap(typeName+"/middleware", node)
		if err != nil {
			return err
		}
		for name, factory := range factories {
			red.middleware[name] = factory
		}
	}

	for _, group := range operationGroups {
		node, ok := entry.Get(group)
		if !ok {
			continue
		}
		groupBranch, ok := node.(*modtree.Branch)
		if !ok {
			return configErrorf("%s/%s: expected a folder of operations", typeName, group)
		}

		err := groupBranch.Each(func(opName string, opNode modtree.Node) error {
			return red.reduceOperation(ctx, typeName, group, opName, opNode)
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func (red *reduction) reduceOperation(ctx context.Context, typeName, group, opName string, node modtree.Node) error {
	logger := log.FromContext(ctx)
	opPath := typeName + "/" + group + "/" + opName

	def, err := operationDef(opPath, node)
	if err != nil {
		return err
	}
	if def.Schema == "" && def.Resolver == nil {
		// inert definition, contributes nothing
		logger.V(1).Info("skipping empty operation definition", "path", opPath)
		return nil
	}

	red.populated[group] = true

	if def.Schema != "" {
		text := strings.TrimSpace(def.Schema)
		// operation fragments add fields to a root type declared by the
		// synthesizer, so they must be extensions
		if !strings.HasPrefix(text, "extend") {
			text = "extend " + text
		}
		err := red.appendSchema(opPath, text)
		if err != nil {
			return err
		}
	}

	if def.Resolver != nil {
		if red.resolvers[group] == nil {
			red.resolvers[group] = make(map[string]Resolver)
		}
		red.resolvers[group][opName] = def.Resolver
		logger.V(1).Info("registered operation resolver", "debugName", resolverDebugName(group, opName))
	}

	return nil
}

func (red *reduction) appendSchema(path, text string) error {
	source := &ast.Source{
		Name:  path,
		Input: text,
	}
	doc, gErr := parser.ParseSchema(source)
	if gErr != nil {
		return &SchemaError{Path: path, Err: gErr}
	}

	red.typeDefs = append(red.typeDefs, doc)
	red.sources = append(red.sources, source)
	return nil
}

// synthesizeRoot emits the base declarations for the populated root operation
// types plus the schema block mapping them, always in canonical order so the
// generated document is deterministic regardless of traversal order. It must
// be appended after every extend fragment's base has been declared, i.e. last.
func synthesizeRoot(populated map[string]bool) (*ast.SchemaDocument, *ast.Source, error) {
	var names []string
	for _, group := range operationGroups {
		if populated[group] {
			names = append(names, group)
		}
	}
	if len(names) == 0 {
		return nil, nil, configErrorf("no Query, Mutation or Subscription operations found")
	}

	var buf strings.Builder
	for _, name := range names {
		fmt.Fprintf(&buf, "type %s\n", name)
	}
	buf.WriteString("\nschema {\n")
	for _, name := range names {
		fmt.Fprintf(&buf, "  %s: %s\n", strings.ToLower(name), name)
	}
	buf.WriteString("}\n")

	source := &ast.Source{
		Name:  "root",
		Input: buf.String(),
	}
	doc, gErr := parser.ParseSchema(source)
	if gErr != nil {
		return nil, nil, &SchemaError{Path: "root", Err: gErr}
	}

	return doc, source, nil
}

// resolverDebugName is diagnostic metadata only; resolvers themselves are
// registered unwrapped.
func resolverDebugName(typeName, fieldName string) string {
	return "Resolver_" + typeName + "_" + fieldName
}

func leafString(path string, node modtree.Node) (string, error) {
	leaf, ok := node.(*modtree.Leaf)
	if !ok {
		return "", configErrorf("%s: expected a schema file, found a folder", path)
	}
	text, ok := leaf.Value.(string)
	if !ok {
		return "", configErrorf("%s: expected schema text, found %T", path, leaf.Value)
	}
	return text, nil
}

func leafResolverMap(path string, node modtree.Node) (map[string]Resolver, error) {
	leaf, ok := node.(*modtree.Leaf)
	if !ok {
		return nil, configErrorf("%s: expected a resolvers module, found a folder", path)
	}
	m, ok := leaf.Value.(map[string]Resolver)
	if !ok {
		return nil, configErrorf("%s: expected map[string]Resolver, found %T", path, leaf.Value)
	}
	return m, nil
}

func leafFactoryMap(path string, node modtree.Node) (map[string]ContextFactory, error) {
	leaf, ok := node.(*modtree.Leaf)
	if !ok {
		return nil, configErrorf("%s: expected a factories module, found a folder", path)
	}
	m, ok := leaf.Value.(map[string]ContextFactory)
	if !ok {
		return nil, configErrorf("%s: expected map[string]ContextFactory, found %T", path, leaf.Value)
	}
	return m, nil
}

// operationDef accepts both the folder form (schema file + resolver value
// side by side) and the module form (a single OperationDef value).
func operationDef(path string, node modtree.Node) (*OperationDef, error) {
	switch n := node.(type) {
	case *modtree.Leaf:
		switch v := n.Value.(type) {
		case string:
			// a bare schema file, e.g. Query/books.graphql
			return &OperationDef{Schema: v}, nil
		case OperationDef:
			return &v, nil
		case *OperationDef:
			if v == nil {
				return &OperationDef{}, nil
			}
			return v, nil
		default:
			return nil, configErrorf("%s: expected an OperationDef, found %T", path, n.Value)
		}
	case *modtree.Branch:
		def := &OperationDef{}
		if child, ok := n.Get("schema"); ok {
			text, err := leafString(path+"/schema", child)
			if err != nil {
				return nil, err
			}
			def.Schema = text
		}
		if child, ok := n.Get("resolver"); ok {
			leaf, ok := child.(*modtree.Leaf)
			if !ok {
				return nil, configErrorf("%s/resolver: expected a resolver, found a folder", path)
			}
			fn, ok := leaf.Value.(Resolver)
			if !ok {
				return nil, configErrorf("%s/resolver: expected a Resolver, found %T", path, leaf.Value)
			}
			def.Resolver = fn
		}
		return def, nil
	default:
		return nil, configErrorf("%s: unsupported node", path)
	}
}
