package loader

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type fakeLoader struct {
	name string
}

func TestBindContextFns_RealizesAllFactories(t *testing.T) {
	ctx := testContext(t)

	loaders := map[string]ContextFactory{}
	middleware := map[string]ContextFactory{}
	for i := 0; i < 8; i++ {
		name := fmt.Sprintf("loader-%d", i)
		loaders[name] = func(ctx context.Context) (interface{}, error) {
			return &fakeLoader{name: name}, nil
		}
		mwName := fmt.Sprintf("mw-%d", i)
		middleware[mwName] = func(ctx context.Context) (interface{}, error) {
			return &fakeLoader{name: mwName}, nil
		}
	}

	scope, err := BindContextFns(loaders, middleware)(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(scope.Loaders) != len(loaders) {
		t.Errorf("realized %d loaders, want %d", len(scope.Loaders), len(loaders))
	}
	if len(scope.Middleware) != len(middleware) {
		t.Errorf("realized %d middleware, want %d", len(scope.Middleware), len(middleware))
	}
	for name, v := range scope.Loaders {
		if v.(*fakeLoader).name != name {
			t.Errorf("loader %s realized under wrong key: %v", name, v)
		}
	}
}

func TestBindContextFns_IndependentRealizations(t *testing.T) {
	loaders := map[string]ContextFactory{
		"db": func(ctx context.Context) (interface{}, error) {
			return &fakeLoader{name: "db"}, nil
		},
	}
	middleware := map[string]ContextFactory{
		"auth": func(ctx context.Context) (interface{}, error) {
			return &fakeLoader{name: "auth"}, nil
		},
	}

	fn := BindContextFns(loaders, middleware)

	first, err := fn(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	second, err := fn(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if first.Loaders["db"] == second.Loaders["db"] {
		t.Error("loader instance is shared between realizations")
	}
	if first.Middleware["auth"] == second.Middleware["auth"] {
		t.Error("middleware instance is shared between realizations")
	}
}

func TestBindContextFns_FactoryError(t *testing.T) {
	ctx := testContext(t)

	boom := errors.New("connection refused")
	loaders := map[string]ContextFactory{
		"db": func(ctx context.Context) (interface{}, error) {
			return nil, boom
		},
	}

	scope, err := BindContextFns(loaders, nil)(ctx)
	if scope != nil {
		t.Error("no partial scope must be returned")
	}

	var factoryErr *FactoryError
	if !errors.As(err, &factoryErr) {
		t.Fatalf("expected FactoryError, got %v", err)
	}
	if factoryErr.Kind != "loader" || factoryErr.Name != "db" {
		t.Errorf("error does not identify the factory: %+v", factoryErr)
	}
	if !errors.Is(err, boom) {
		t.Error("cause is not wrapped")
	}
}

func TestBindContextFns_ExactContextValue(t *testing.T) {
	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "request-42")

	loaders := map[string]ContextFactory{
		"db": func(ctx context.Context) (interface{}, error) {
			v, _ := ctx.Value(ctxKey{}).(string)
			if v != "request-42" {
				return nil, fmt.Errorf("factory received a different context")
			}
			return v, nil
		},
	}

	scope, err := BindContextFns(loaders, nil)(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if scope.Loaders["db"] != "request-42" {
		t.Errorf("unexpected realized value: %v", scope.Loaders["db"])
	}
}

func TestScopeFromContext(t *testing.T) {
	scope := &RequestScope{
		Loaders: map[string]interface{}{"db": "conn"},
	}

	ctx := NewContext(context.Background(), scope)
	got, ok := ScopeFromContext(ctx)
	if !ok || got != scope {
		t.Fatal("scope round-trip failed")
	}

	_, ok = ScopeFromContext(context.Background())
	if ok {
		t.Error("scope reported on an empty context")
	}
}
