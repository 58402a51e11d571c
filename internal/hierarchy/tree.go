package hierarchy

import "github.com/acheong08/neuromap/pkg/models"

// Node is a roadmap node placed in the tree. Children are owned by the node;
// parent is only a lookup pointer for walking upwards.
type Node struct {
	models.RoadmapNode
	Children []*Node

	parent *Node
	depth  int
}

// Parent returns the parent node, or nil for the root
func (n *Node) Parent() *Node {
	return n.parent
}

// Depth is 0 for the root
func (n *Node) Depth() int {
	return n.depth
}

// IsLeaf reports whether the node has no children
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Ancestors returns the chain from the parent up to the root
func (n *Node) Ancestors() []*Node {
	var out []*Node
	for p := n.parent; p != nil; p = p.parent {
		out = append(out, p)
	}
	return out
}

// Walk visits the subtree in pre-order. Returning false from fn skips the
// node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Find returns the node with the given ID in this subtree
func (n *Node) Find(id string) *Node {
	var found *Node
	n.Walk(func(node *Node) bool {
		if found != nil {
			return false
		}
		if node.ID == id {
			found = node
			return false
		}
		return true
	})
	return found
}

// Size counts the nodes in this subtree
func (n *Node) Size() int {
	size := 0
	n.Walk(func(*Node) bool {
		size++
		return true
	})
	return size
}

// IDs lists the subtree's node IDs in pre-order
func (n *Node) IDs() []string {
	ids := make([]string, 0)
	n.Walk(func(node *Node) bool {
		ids = append(ids, node.ID)
		return true
	})
	return ids
}
