package hierarchy

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acheong08/neuromap/pkg/models"
)

func node(id, parent, label string) models.RoadmapNode {
	return models.RoadmapNode{
		ID:         id,
		ParentID:   parent,
		Label:      label,
		Category:   models.CategoryFoundation,
		Complexity: models.ComplexityBeginner,
	}
}

func childIDs(n *Node) []string {
	ids := make([]string, len(n.Children))
	for i, c := range n.Children {
		ids[i] = c.ID
	}
	return ids
}

func TestBuildRepairsDanglingParent(t *testing.T) {
	nodes := []models.RoadmapNode{
		node("root", "", "Start"),
		node("a", "root", "A"),
		node("b", "x", "B"),
	}

	root, stats, err := BuildWithStats(nodes, RootID)
	require.NoError(t, err)

	assert.Equal(t, "root", root.ID)
	assert.Equal(t, []string{"a", "b"}, childIDs(root))
	assert.Equal(t, []string{"b"}, stats.Repaired)
	assert.Equal(t, 3, stats.Nodes)

	// Input is left untouched
	assert.Equal(t, "x", nodes[2].ParentID)
}

func TestBuildEffectiveParent(t *testing.T) {
	tests := []struct {
		name     string
		parentID string
		want     string
	}{
		{"absent parent", "", "root"},
		{"sentinel parent", "root", "root"},
		{"unknown parent", "ghost", "root"},
		{"existing parent", "a", "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := Build([]models.RoadmapNode{
				node("root", "", "Start"),
				node("a", "root", "A"),
				node("n", tt.parentID, "N"),
			})
			require.NoError(t, err)

			n := root.Find("n")
			require.NotNil(t, n)
			assert.Equal(t, tt.want, n.Parent().ID)
		})
	}
}

func TestBuildPreservesInputOrder(t *testing.T) {
	nodes := []models.RoadmapNode{
		node("c3", "p", "C3"),
		node("root", "", "Start"),
		node("c1", "p", "C1"),
		node("p", "root", "P"),
		node("z", "root", "Z"),
		node("c2", "p", "C2"),
	}

	root, err := Build(nodes)
	require.NoError(t, err)

	assert.Equal(t, []string{"p", "z"}, childIDs(root))
	assert.Equal(t, []string{"c3", "c1", "c2"}, childIDs(root.Find("p")))
	assert.Equal(t, []string{"root", "p", "c3", "c1", "c2", "z"}, root.IDs())
}

func TestBuildMalformed(t *testing.T) {
	tests := []struct {
		name  string
		nodes []models.RoadmapNode
	}{
		{"no root", []models.RoadmapNode{node("a", "", "A"), node("b", "a", "B")}},
		{"empty list", nil},
		{"two roots", []models.RoadmapNode{node("root", "", "R1"), node("root", "", "R2")}},
		{"duplicate id", []models.RoadmapNode{node("root", "", "R"), node("a", "", "A"), node("a", "", "A2")}},
		{"missing id", []models.RoadmapNode{node("root", "", "R"), node("", "root", "?")}},
		{"mutual cycle", []models.RoadmapNode{node("root", "", "R"), node("a", "b", "A"), node("b", "a", "B")}},
		{"self parent", []models.RoadmapNode{node("root", "", "R"), node("a", "a", "A")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := Build(tt.nodes)
			require.Error(t, err)
			assert.Nil(t, root)
			assert.True(t, errors.Is(err, ErrMalformedHierarchy))
		})
	}
}

func TestBuildCycleNamesNodes(t *testing.T) {
	_, err := Build([]models.RoadmapNode{
		node("root", "", "R"),
		node("ok", "root", "OK"),
		node("a", "b", "A"),
		node("b", "a", "B"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a, b")
}

func TestBuildCustomRoot(t *testing.T) {
	root, err := BuildWithRoot([]models.RoadmapNode{
		node("start", "", "Start"),
		node("a", "root", "A"),
	}, "start")
	require.NoError(t, err)
	assert.Equal(t, "start", root.ID)
	assert.Equal(t, []string{"a"}, childIDs(root))
}

func TestTreeNavigation(t *testing.T) {
	root, err := Build([]models.RoadmapNode{
		node("root", "", "Start"),
		node("a", "root", "A"),
		node("a1", "a", "A1"),
		node("a1x", "a1", "A1X"),
	})
	require.NoError(t, err)

	leaf := root.Find("a1x")
	require.NotNil(t, leaf)
	assert.Equal(t, 3, leaf.Depth())
	assert.True(t, leaf.IsLeaf())
	assert.False(t, root.IsLeaf())
	assert.Nil(t, root.Parent())

	var chain []string
	for _, a := range leaf.Ancestors() {
		chain = append(chain, a.ID)
	}
	assert.Equal(t, []string{"a1", "a", "root"}, chain)
	assert.Equal(t, 4, root.Size())
	assert.Nil(t, root.Find("missing"))
}

// Any list with one root and arbitrary, possibly dangling, parent references
// that point backwards yields a tree with exactly the input IDs.
func TestBuildKeepsEveryNode(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for iter := 0; iter < 50; iter++ {
		count := 1 + rng.Intn(40)
		nodes := []models.RoadmapNode{node("root", "", "Start")}
		for i := 1; i < count; i++ {
			var parent string
			switch rng.Intn(4) {
			case 0:
				parent = ""
			case 1:
				parent = fmt.Sprintf("missing-%d", i)
			default:
				parent = nodes[rng.Intn(len(nodes))].ID
			}
			nodes = append(nodes, node(fmt.Sprintf("n%d", i), parent, "N"))
		}
		rng.Shuffle(len(nodes), func(i, j int) { nodes[i], nodes[j] = nodes[j], nodes[i] })

		root, err := Build(nodes)
		require.NoError(t, err)

		want := make([]string, len(nodes))
		for i, n := range nodes {
			want[i] = n.ID
		}
		got := root.IDs()
		sort.Strings(want)
		sort.Strings(got)
		assert.Equal(t, want, got)

		// Stability: children follow input order
		position := make(map[string]int, len(nodes))
		for i, n := range nodes {
			position[n.ID] = i
		}
		root.Walk(func(n *Node) bool {
			for i := 1; i < len(n.Children); i++ {
				assert.Less(t, position[n.Children[i-1].ID], position[n.Children[i].ID])
			}
			return true
		})
	}
}
