package hierarchy

import (
	"cmp"
	"errors"
	"fmt"
	"iter"
	"slices"
)

var (
	// ErrDuplicateSibling is returned when a child is added twice to the same parent.
	ErrDuplicateSibling = errors.New("sibling already registered")
	// ErrAlreadyAttached is returned when a child already has another parent.
	ErrAlreadyAttached = errors.New("node already has a parent")
	// ErrCycle is returned when a node would become its own descendant.
	ErrCycle = errors.New("node is an ancestor of its parent")
	// ErrDuplicateKey is returned when a key is registered twice in a Hierarchy.
	ErrDuplicateKey = errors.New("node key already registered")
	// ErrNodeNotFound is wrapped by NodeNotFoundError.
	ErrNodeNotFound = errors.New("node not found")
)

// NodeNotFoundError reports a lookup of an unknown key.
type NodeNotFoundError[K cmp.Ordered] struct {
	Key K
}

func (e *NodeNotFoundError[K]) Error() string {
	return fmt.Sprintf("%v: %v", ErrNodeNotFound, e.Key)
}

func (e *NodeNotFoundError[K]) Unwrap() error {
	return ErrNodeNotFound
}

// Node is an element of a tree. The parent owns the edge to its children;
// nodes themselves are owned by whoever indexes them (usually a Hierarchy).
type Node[K cmp.Ordered, V any] struct {
	key      K
	Value    V
	parent   *Node[K, V]
	children []*Node[K, V]
}

// NewNode creates a detached node.
func NewNode[K cmp.Ordered, V any](key K, value V) *Node[K, V] {
	return &Node[K, V]{key: key, Value: value}
}

// Key returns the node key.
func (n *Node[K, V]) Key() K { return n.key }

// Parent returns the parent node, or nil for a root.
func (n *Node[K, V]) Parent() *Node[K, V] { return n.parent }

// Children returns the direct children in their current order.
func (n *Node[K, V]) Children() []*Node[K, V] { return n.children }

func (n *Node[K, V]) IsRoot() bool { return n.parent == nil }

func (n *Node[K, V]) IsLeaf() bool { return len(n.children) == 0 }

// Level returns the number of ancestors of the node.
func (n *Node[K, V]) Level() int {
	level := 0
	for p := n.parent; p != nil; p = p.parent {
		level++
	}
	return level
}

// AddChild registers the parent/child edge in both directions.
func (n *Node[K, V]) AddChild(child *Node[K, V]) error {
	if slices.Contains(n.children, child) {
		return fmt.Errorf("%w: %v under %v", ErrDuplicateSibling, child.key, n.key)
	}
	if child.parent != nil {
		return fmt.Errorf("%w: %v under %v", ErrAlreadyAttached, child.key, child.parent.key)
	}
	for p := n; p != nil; p = p.parent {
		if p == child {
			return fmt.Errorf("%w: %v under %v", ErrCycle, child.key, n.key)
		}
	}
	child.parent = n
	n.children = append(n.children, child)
	return nil
}

// DepthFirst yields the subtree in pre-order: the node first, then each
// child's subtree in child order.
func (n *Node[K, V]) DepthFirst() iter.Seq[*Node[K, V]] {
	return func(yield func(*Node[K, V]) bool) {
		n.preorder(yield)
	}
}

func (n *Node[K, V]) preorder(yield func(*Node[K, V]) bool) bool {
	if !yield(n) {
		return false
	}
	for _, c := range n.children {
		if !c.preorder(yield) {
			return false
		}
	}
	return true
}

// Postorder yields the subtree with every child subtree fully visited
// before the node itself.
func (n *Node[K, V]) Postorder() iter.Seq[*Node[K, V]] {
	return func(yield func(*Node[K, V]) bool) {
		n.postorder(yield)
	}
}

func (n *Node[K, V]) postorder(yield func(*Node[K, V]) bool) bool {
	for _, c := range n.children {
		if !c.postorder(yield) {
			return false
		}
	}
	return yield(n)
}

// SortChildren sorts the direct children by key. It does not recurse.
func (n *Node[K, V]) SortChildren() {
	slices.SortFunc(n.children, func(a, b *Node[K, V]) int {
		return cmp.Compare(a.key, b.key)
	})
}

// SortRecursive sorts the children of every node of the subtree.
func (n *Node[K, V]) SortRecursive() {
	for node := range n.DepthFirst() {
		node.SortChildren()
	}
}

// Hierarchy indexes every node of a forest by key.
type Hierarchy[K cmp.Ordered, V any] struct {
	nodes map[K]*Node[K, V]
	roots []*Node[K, V]
}

// New creates an empty Hierarchy.
func New[K cmp.Ordered, V any]() *Hierarchy[K, V] {
	return &Hierarchy[K, V]{nodes: make(map[K]*Node[K, V])}
}

// Add registers a node. Nodes without a parent at registration time become roots.
func (h *Hierarchy[K, V]) Add(node *Node[K, V]) error {
	if _, ok := h.nodes[node.key]; ok {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, node.key)
	}
	h.nodes[node.key] = node
	if node.parent == nil {
		h.roots = append(h.roots, node)
	}
	return nil
}

// AddRecursive registers a node and its whole subtree.
func (h *Hierarchy[K, V]) AddRecursive(node *Node[K, V]) error {
	for n := range node.DepthFirst() {
		if err := h.Add(n); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the node registered under key.
func (h *Hierarchy[K, V]) Get(key K) (*Node[K, V], error) {
	n, ok := h.nodes[key]
	if !ok {
		return nil, &NodeNotFoundError[K]{Key: key}
	}
	return n, nil
}

// Lookup returns the node registered under key and whether it exists.
func (h *Hierarchy[K, V]) Lookup(key K) (*Node[K, V], bool) {
	n, ok := h.nodes[key]
	return n, ok
}

// Len returns the number of registered nodes.
func (h *Hierarchy[K, V]) Len() int { return len(h.nodes) }

// Roots returns the root nodes in their current order.
func (h *Hierarchy[K, V]) Roots() []*Node[K, V] { return h.roots }

// All walks every root depth-first.
func (h *Hierarchy[K, V]) All() iter.Seq[*Node[K, V]] {
	return func(yield func(*Node[K, V]) bool) {
		for _, r := range h.roots {
			if !r.preorder(yield) {
				return
			}
		}
	}
}

// Sort orders the roots and every subtree by key.
func (h *Hierarchy[K, V]) Sort() {
	slices.SortFunc(h.roots, func(a, b *Node[K, V]) int {
		return cmp.Compare(a.key, b.key)
	})
	for _, r := range h.roots {
		r.SortRecursive()
	}
}
