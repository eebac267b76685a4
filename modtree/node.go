// Package modtree models the nested module tree a conventional GraphQL
// directory layout produces: directories become branches, file contents and
// programmatically registered values become leaves. Branch iteration order is
// insertion order, which makes the discovery order of a tree observable and
// reproducible downstream.
package modtree

import (
	"fmt"
	"strings"
)

// Node is either a *Leaf or a *Branch.
type Node interface {
	node()
}

// Leaf holds one loaded module value. For schema files the value is the raw
// file content as a string; programmatically registered values keep whatever
// type the caller handed in.
type Leaf struct {
	Value interface{}
}

func (l *Leaf) node() {}

// NewLeaf returns a leaf wrapping v.
func NewLeaf(v interface{}) *Leaf {
	return &Leaf{Value: v}
}

// Branch is an ordered mapping from path segment name to child node.
// Replacing an existing name keeps its original position.
type Branch struct {
	names    []string
	children map[string]Node
}

func (b *Branch) node() {}

func NewBranch() *Branch {
	return &Branch{
		children: make(map[string]Node),
	}
}

// Set inserts or replaces the child named name.
func (b *Branch) Set(name string, n Node) {
	if _, ok := b.children[name]; !ok {
		b.names = append(b.names, name)
	}
	b.children[name] = n
}

// Get returns the child named name.
func (b *Branch) Get(name string) (Node, bool) {
	n, ok := b.children[name]
	return n, ok
}

// BranchOf returns the child named name if it is a branch.
func (b *Branch) BranchOf(name string) (*Branch, bool) {
	child, ok := b.children[name].(*Branch)
	return child, ok
}

// LeafOf returns the child named name if it is a leaf.
func (b *Branch) LeafOf(name string) (*Leaf, bool) {
	child, ok := b.children[name].(*Leaf)
	return child, ok
}

// EnsureBranch returns the child branch named name, creating it if absent.
// It returns false if the name is already taken by a leaf.
func (b *Branch) EnsureBranch(name string) (*Branch, bool) {
	switch child := b.children[name].(type) {
	case *Branch:
		return child, true
	case *Leaf:
		return nil, false
	default:
		child2 := NewBranch()
		b.Set(name, child2)
		return child2, true
	}
}

func (b *Branch) Len() int {
	return len(b.names)
}

// Names returns the child names in insertion order. The returned slice is a
// copy.
func (b *Branch) Names() []string {
	names := make([]string, len(b.names))
	copy(names, b.names)
	return names
}

// Each visits every child in insertion order. A non-nil error from fn stops
// the walk and is returned as-is.
func (b *Branch) Each(fn func(name string, n Node) error) error {
	for _, name := range b.names {
		err := fn(name, b.children[name])
		if err != nil {
			return err
		}
	}
	return nil
}

// SetPath inserts n at the slash-separated path, creating intermediate
// branches as needed. It fails when a path segment is already occupied by a
// leaf.
func (b *Branch) SetPath(path string, n Node) error {
	segments := strings.Split(path, "/")
	if len(segments) == 0 || path == "" {
		return fmt.Errorf("modtree: empty path")
	}

	current := b
	for _, segment := range segments[:len(segments)-1] {
		next, ok := current.EnsureBranch(segment)
		if !ok {
			return fmt.Errorf("modtree: %q is a leaf, cannot descend through it in path %q", segment, path)
		}
		current = next
	}

	current.Set(segments[len(segments)-1], n)
	return nil
}
