package modtree

import (
	"errors"
	"reflect"
	"testing"
)

func TestBranch_InsertionOrder(t *testing.T) {
	b := NewBranch()
	b.Set("zeta", NewLeaf(1))
	b.Set("alpha", NewLeaf(2))
	b.Set("mid", NewLeaf(3))

	want := []string{"zeta", "alpha", "mid"}
	if !reflect.DeepEqual(b.Names(), want) {
		t.Errorf("names = %v, want %v", b.Names(), want)
	}

	// replacing keeps the original position
	b.Set("alpha", NewLeaf(4))
	if !reflect.DeepEqual(b.Names(), want) {
		t.Errorf("names after replace = %v, want %v", b.Names(), want)
	}
	leaf, _ := b.LeafOf("alpha")
	if leaf.Value != 4 {
		t.Errorf("replace did not take: %v", leaf.Value)
	}
	if b.Len() != 3 {
		t.Errorf("len = %d, want 3", b.Len())
	}
}

func TestBranch_Each(t *testing.T) {
	b := NewBranch()
	b.Set("a", NewLeaf(1))
	b.Set("b", NewLeaf(2))
	b.Set("c", NewLeaf(3))

	var visited []string
	err := b.Each(func(name string, n Node) error {
		visited = append(visited, name)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(visited, []string{"a", "b", "c"}) {
		t.Errorf("visited = %v", visited)
	}

	stop := errors.New("stop")
	visited = nil
	err = b.Each(func(name string, n Node) error {
		visited = append(visited, name)
		if name == "b" {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Errorf("err = %v, want stop", err)
	}
	if !reflect.DeepEqual(visited, []string{"a", "b"}) {
		t.Errorf("visited = %v", visited)
	}
}

func TestBranch_SetPath(t *testing.T) {
	b := NewBranch()
	err := b.SetPath("Book/Query/books", NewLeaf("fragment"))
	if err != nil {
		t.Fatal(err)
	}

	book, ok := b.BranchOf("Book")
	if !ok {
		t.Fatal("Book branch was not created")
	}
	query, ok := book.BranchOf("Query")
	if !ok {
		t.Fatal("Query branch was not created")
	}
	leaf, ok := query.LeafOf("books")
	if !ok || leaf.Value != "fragment" {
		t.Fatalf("leaf not placed: %v", leaf)
	}

	// descending through a leaf is an error
	err = b.SetPath("Book/Query/books/deeper", NewLeaf("x"))
	if err == nil {
		t.Error("expected error when descending through a leaf")
	}

	err = b.SetPath("", NewLeaf("x"))
	if err == nil {
		t.Error("expected error for empty path")
	}
}

func TestBranch_EnsureBranch(t *testing.T) {
	b := NewBranch()
	b.Set("leaf", NewLeaf(1))

	_, ok := b.EnsureBranch("leaf")
	if ok {
		t.Error("EnsureBranch must refuse a leaf slot")
	}

	child, ok := b.EnsureBranch("child")
	if !ok || child == nil {
		t.Fatal("EnsureBranch did not create a branch")
	}
	again, ok := b.EnsureBranch("child")
	if !ok || again != child {
		t.Error("EnsureBranch must return the existing branch")
	}
}
