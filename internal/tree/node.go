// Package tree defines the node contract consumed by the summarizing
// pipeline, together with the classifiers that bucket sibling nodes, the
// groups they produce and the statistics gathered over those groups.
//
// A Node is either a Leaf, which can never have children, or a Parent, whose
// children may be an empty list. The distinction matters: an empty directory
// is a Parent without children, a file is a Leaf.
//
// Node suppliers must not produce cycles. None of the packages consuming a
// Node check for them and a cyclic tree recurses without bound.
package tree

import (
	"sync/atomic"
)

// ID identifies a node instance. Caches are keyed by ID, never by the
// content of a node: two structurally identical nodes are still two entries.
type ID uint64

var lastID atomic.Uint64

// NextID returns a process-unique ID. Suppliers call it once per node they
// create.
func NextID() ID {
	return ID(lastID.Add(1))
}

// Kind tells the two node variants apart.
type Kind uint8

const (
	// Leaf nodes cannot have children.
	Leaf Kind = iota
	// Parent nodes have zero or more children.
	Parent
)

func (k Kind) String() string {
	switch k {
	case Leaf:
		return "leaf"
	case Parent:
		return "parent"
	default:
		return "unknown"
	}
}

// Node is the capability every element of an analyzed hierarchy provides.
type Node interface {
	// ID returns the identity used to cache groups and fingerprints.
	ID() ID
	// Name returns the name classifiers match against.
	Name() string
	// Kind reports whether the node can have children at all.
	Kind() Kind
	// Children returns the ordered children of a Parent; it returns nil for
	// a Leaf. Repeated calls must return the same node instances.
	Children() ([]Node, error)
}

// Entry is an in-memory Node.
type Entry struct {
	id       ID
	name     string
	kind     Kind
	children []Node
}

// NewLeaf returns a node that cannot have children.
func NewLeaf(name string) *Entry {
	return &Entry{id: NextID(), name: name, kind: Leaf}
}

// NewParent returns a node holding the given children. Without children the
// result is an empty parent, not a leaf.
func NewParent(name string, children ...Node) *Entry {
	if children == nil {
		children = []Node{}
	}
	return &Entry{id: NextID(), name: name, kind: Parent, children: children}
}

// Add appends children to a parent entry. It must not be called on leaves.
func (e *Entry) Add(children ...Node) {
	if e.kind != Parent {
		panic("tree: Add called on leaf " + e.name)
	}
	e.children = append(e.children, children...)
}

func (e *Entry) ID() ID       { return e.id }
func (e *Entry) Name() string { return e.name }
func (e *Entry) Kind() Kind   { return e.kind }
func (e *Entry) String() string {
	return e.name
}

func (e *Entry) Children() ([]Node, error) {
	if e.kind == Leaf {
		return nil, nil
	}
	return e.children, nil
}

// WalkFunc is called for every node visited by Walk. depth is 0 for the
// node Walk was started on.
type WalkFunc func(n Node, depth int) error

// Walk visits n and all of its descendants depth-first, parents before
// their children.
func Walk(n Node, fn WalkFunc) error {
	return walk(n, 0, fn)
}

func walk(n Node, depth int, fn WalkFunc) error {
	if err := fn(n, depth); err != nil {
		return err
	}
	if n.Kind() != Parent {
		return nil
	}
	children, err := n.Children()
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := walk(child, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of nodes in the tree rooted at n, n included.
func Count(n Node) (int, error) {
	count := 0
	err := Walk(n, func(Node, int) error {
		count++
		return nil
	})
	return count, err
}
