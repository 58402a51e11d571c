package hierarchy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/acheong08/neuromap/pkg/models"
)

// RootID is the reserved identifier of the tree's entry point
const RootID = "root"

// ErrMalformedHierarchy is returned when the node list cannot form a single tree
var ErrMalformedHierarchy = errors.New("malformed hierarchy")

// Stats describes what the builder had to repair
type Stats struct {
	Nodes    int
	Repaired []string // IDs whose declared parent did not resolve
}

// Build turns a flat node list into a tree rooted at RootID
func Build(nodes []models.RoadmapNode) (*Node, error) {
	root, _, err := BuildWithStats(nodes, RootID)
	return root, err
}

// BuildWithRoot is Build with a custom root sentinel
func BuildWithRoot(nodes []models.RoadmapNode, rootID string) (*Node, error) {
	root, _, err := BuildWithStats(nodes, rootID)
	return root, err
}

// BuildWithStats builds the tree and reports which nodes were repaired.
//
// Any node whose parent is missing, equals the sentinel, or does not match an
// existing ID is attached directly under the root. Children keep the order
// they have in the input. The input slice is not modified.
func BuildWithStats(nodes []models.RoadmapNode, rootID string) (*Node, Stats, error) {
	stats := Stats{Nodes: len(nodes)}

	// First pass: index IDs and find the root
	known := make(map[string]bool, len(nodes))
	rootIndex := -1
	for i, n := range nodes {
		if n.ID == "" {
			return nil, stats, fmt.Errorf("%w: node at index %d has no id", ErrMalformedHierarchy, i)
		}
		if known[n.ID] {
			return nil, stats, fmt.Errorf("%w: duplicate id %q", ErrMalformedHierarchy, n.ID)
		}
		known[n.ID] = true
		if n.ID == rootID {
			rootIndex = i
		}
	}
	if rootIndex < 0 {
		return nil, stats, fmt.Errorf("%w: no node with root id %q", ErrMalformedHierarchy, rootID)
	}

	// Second pass: group by effective parent, preserving input order
	children := make(map[string][]int, len(nodes))
	for i, n := range nodes {
		if i == rootIndex {
			continue
		}
		parent := n.ParentID
		if parent == "" || parent == rootID || !known[parent] {
			if parent != "" && parent != rootID {
				stats.Repaired = append(stats.Repaired, n.ID)
			}
			parent = rootID
		}
		children[parent] = append(children[parent], i)
	}

	// Third pass: attach from the root down
	root := &Node{RoadmapNode: nodes[rootIndex]}
	attached := 1
	stack := []*Node{root}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, idx := range children[current.ID] {
			child := &Node{
				RoadmapNode: nodes[idx],
				parent:      current,
				depth:       current.depth + 1,
			}
			current.Children = append(current.Children, child)
			attached++
		}
		// Push in reverse so siblings are expanded in input order
		for i := len(current.Children) - 1; i >= 0; i-- {
			stack = append(stack, current.Children[i])
		}
	}

	// Every node has an existing effective parent, so anything left over
	// can only reach itself.
	if attached != len(nodes) {
		reached := make(map[string]bool, attached)
		root.Walk(func(n *Node) bool {
			reached[n.ID] = true
			return true
		})
		var cyclic []string
		for _, n := range nodes {
			if !reached[n.ID] {
				cyclic = append(cyclic, n.ID)
			}
		}
		return nil, stats, fmt.Errorf("%w: cycle among %s", ErrMalformedHierarchy, strings.Join(cyclic, ", "))
	}

	return root, stats, nil
}
