package layout

import (
	"github.com/acheong08/neuromap/internal/hierarchy"
	"github.com/acheong08/neuromap/pkg/models"
)

// Config holds the fixed box and spacing constants of the layout
type Config struct {
	NodeWidth    float64 `toml:"node_width"`
	NodeHeight   float64 `toml:"node_height"`
	SiblingGap   float64 `toml:"sibling_gap"`   // vertical gap between adjacent sibling boxes
	LevelSpacing float64 `toml:"level_spacing"` // horizontal distance between depths
}

// DefaultConfig returns the standard roadmap box sizes
func DefaultConfig() Config {
	return Config{
		NodeWidth:    220,
		NodeHeight:   80,
		SiblingGap:   40,
		LevelSpacing: 300,
	}
}

// breadthUnit is the vertical distance between two adjacent siblings
func (c Config) breadthUnit() float64 {
	return c.NodeHeight + c.SiblingGap
}

// Point is a 2D coordinate in scene space
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Extent is the vertical span covered by a subtree's boxes
type Extent struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// Rect is an axis-aligned box
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether p lies inside the box, edges included
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Node is a positioned tree node. X is the left edge of the box and Y its
// vertical centre.
type Node struct {
	models.RoadmapNode
	X, Y          float64
	Width, Height float64
	Depth         int
	Extent        Extent
	Children      []*Node

	parent *Node
}

// Parent returns the positioned parent, nil for the root
func (n *Node) Parent() *Node {
	return n.parent
}

// Box returns the node's rectangle in scene space
func (n *Node) Box() Rect {
	return Rect{X: n.X, Y: n.Y - n.Height/2, Width: n.Width, Height: n.Height}
}

// LeftAnchor is where incoming links end
func (n *Node) LeftAnchor() Point {
	return Point{X: n.X, Y: n.Y}
}

// RightAnchor is where outgoing links start
func (n *Node) RightAnchor() Point {
	return Point{X: n.X + n.Width, Y: n.Y}
}

// Each visits the subtree in pre-order
func (n *Node) Each(fn func(*Node)) {
	fn(n)
	for _, child := range n.Children {
		child.Each(fn)
	}
}

// Find returns the positioned node with the given ID
func (n *Node) Find(id string) *Node {
	if n.ID == id {
		return n
	}
	for _, child := range n.Children {
		if found := child.Find(id); found != nil {
			return found
		}
	}
	return nil
}

// Layout positions every node of the tree left-to-right. A nil root yields nil.
func Layout(root *hierarchy.Node, cfg Config) *Node {
	if root == nil {
		return nil
	}

	out, w := build(root, nil, nil)

	// Fake parent so the root can be treated like any other child
	sentinel := &walker{children: []*walker{w}}
	w.parent = sentinel

	w.eachAfter(firstWalk)
	sentinel.mod = -w.prelim
	w.eachBefore(secondWalk)

	unit := cfg.breadthUnit()
	out.Each(func(n *Node) {
		n.X = float64(n.Depth) * cfg.LevelSpacing
		n.Y *= unit
		n.Width = cfg.NodeWidth
		n.Height = cfg.NodeHeight
	})
	computeExtent(out)
	return out
}

// build mirrors the tree into output nodes and walker bookkeeping nodes
func build(src *hierarchy.Node, parent *Node, wparent *walker) (*Node, *walker) {
	n := &Node{
		RoadmapNode: src.RoadmapNode,
		Depth:       src.Depth(),
		parent:      parent,
	}
	w := &walker{out: n, parent: wparent}
	w.ancestor = w

	if len(src.Children) > 0 {
		n.Children = make([]*Node, len(src.Children))
		w.children = make([]*walker, len(src.Children))
		for i, child := range src.Children {
			cn, cw := build(child, n, w)
			cw.index = i
			n.Children[i] = cn
			w.children[i] = cw
		}
	}
	return n, w
}

func computeExtent(n *Node) Extent {
	ext := Extent{Top: n.Y - n.Height/2, Bottom: n.Y + n.Height/2}
	for _, child := range n.Children {
		ce := computeExtent(child)
		if ce.Top < ext.Top {
			ext.Top = ce.Top
		}
		if ce.Bottom > ext.Bottom {
			ext.Bottom = ce.Bottom
		}
	}
	n.Extent = ext
	return ext
}

// Bounds returns the box enclosing every node of the layout
func Bounds(root *Node) Rect {
	if root == nil {
		return Rect{}
	}
	minX, minY := root.X, root.Y-root.Height/2
	maxX, maxY := root.X+root.Width, root.Y+root.Height/2
	root.Each(func(n *Node) {
		box := n.Box()
		if box.X < minX {
			minX = box.X
		}
		if box.Y < minY {
			minY = box.Y
		}
		if box.X+box.Width > maxX {
			maxX = box.X + box.Width
		}
		if box.Y+box.Height > maxY {
			maxY = box.Y + box.Height
		}
	})
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Count returns the number of positioned nodes
func Count(root *Node) int {
	if root == nil {
		return 0
	}
	count := 0
	root.Each(func(*Node) { count++ })
	return count
}
