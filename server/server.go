// Package server adapts a loaded aggregate to gqlgen's ExecutableSchema so
// the artifacts can be served by a stock gqlgen handler. Only top-level root
// operation fields are dispatched through the resolver map; whatever a
// resolver returns is serialized as-is, nested resolution stays with the
// resolver itself.
package server

import (
	"context"
	"encoding/json"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"

	loader "github.com/jpwilliams/graphql-modular-loader"
)

var _ graphql.ExecutableSchema = (*executableSchema)(nil)

type executableSchema struct {
	schema     *ast.Schema
	resolvers  loader.ResolverMap
	contextFns loader.ContextFunc
}

// New merges the aggregate's schema documents and wraps its resolver map.
func New(agg *loader.Aggregate) (graphql.ExecutableSchema, error) {
	schema, err := agg.Schema()
	if err != nil {
		return nil, err
	}

	return &executableSchema{
		schema:     schema,
		resolvers:  agg.Resolvers,
		contextFns: agg.ContextFns(),
	}, nil
}

func (es *executableSchema) Schema() *ast.Schema {
	return es.schema
}

func (es *executableSchema) Complexity(typeName, fieldName string, childComplexity int, args map[string]interface{}) (int, bool) {
	return 0, false
}

func (es *executableSchema) Exec(ctx context.Context) graphql.ResponseHandler {
	oc := graphql.GetOperationContext(ctx)

	rootType, err := es.rootTypeName(oc.Operation.Operation)
	if err != nil {
		return errorResponse(ctx, err)
	}

	scope, err := es.contextFns(ctx)
	if err != nil {
		return errorResponse(ctx, err)
	}
	ctx = loader.NewContext(ctx, scope)

	data := make(map[string]interface{})
	for _, field := range graphql.CollectFields(oc, oc.Operation.SelectionSet, nil) {
		fns, ok := es.resolvers[rootType]
		if ok {
			_, ok = fns[field.Name]
		}
		if !ok {
			return errorResponse(ctx, gqlerror.Errorf("no resolver registered for %s.%s", rootType, field.Name))
		}

		res, err := fns[field.Name](ctx, nil, field.ArgumentMap(oc.Variables))
		if err != nil {
			graphql.AddError(ctx, gqlerror.WrapPath(ast.Path{ast.PathName(field.Alias)}, err))
			data[field.Alias] = nil
			continue
		}
		data[field.Alias] = res
	}

	b, err := json.Marshal(data)
	if err != nil {
		return errorResponse(ctx, err)
	}

	return func(ctx context.Context) *graphql.Response {
		return &graphql.Response{
			Data:   b,
			Errors: graphql.GetErrors(ctx),
		}
	}
}

func (es *executableSchema) rootTypeName(op ast.Operation) (string, error) {
	switch op {
	case ast.Query:
		if es.schema.Query != nil {
			return es.schema.Query.Name, nil
		}
	case ast.Mutation:
		if es.schema.Mutation != nil {
			return es.schema.Mutation.Name, nil
		}
	case ast.Subscription:
		return "", gqlerror.Errorf("subscriptions are not supported by this adapter")
	}
	return "", gqlerror.Errorf("schema declares no %s type", op)
}

func errorResponse(ctx context.Context, err error) graphql.ResponseHandler {
	graphql.AddError(ctx, err)
	return func(ctx context.Context) *graphql.Response {
		return &graphql.Response{Errors: graphql.GetErrors(ctx)}
	}
}
