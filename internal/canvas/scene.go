package canvas

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/acheong08/neuromap/internal/layout"
	"github.com/acheong08/neuromap/pkg/models"
)

const ellipsis = "…"

// State is everything a redraw depends on
type State struct {
	Root       *layout.Node
	SelectedID string
	Width      float64
	Height     float64
	Style      Style
}

// Shape is a drawable node box
type Shape struct {
	Node        models.RoadmapNode
	Box         layout.Rect
	Fill        string
	Stroke      string
	StrokeWidth float64
	Glow        bool
	Selected    bool
	Label       string
	Description []string
	Badge       string
}

// Center is the middle of the node's box
func (s Shape) Center() layout.Point {
	return layout.Point{X: s.Box.X + s.Box.Width/2, Y: s.Box.Y + s.Box.Height/2}
}

// Path is a drawable link
type Path struct {
	SourceID string
	TargetID string
	D        string
}

// Scene is the full drawable content of the canvas, in scene coordinates
type Scene struct {
	Width  float64
	Height float64
	Links  []Path
	Nodes  []Shape
	Style  Style
}

// Empty reports whether there is nothing to draw
func (s Scene) Empty() bool {
	return len(s.Nodes) == 0
}

// HitTest returns the topmost node whose box contains the scene point p
func (s Scene) HitTest(p layout.Point) (Shape, bool) {
	for i := len(s.Nodes) - 1; i >= 0; i-- {
		if s.Nodes[i].Box.Contains(p) {
			return s.Nodes[i], true
		}
	}
	return Shape{}, false
}

// Shape returns the node shape with the given ID
func (s Scene) Shape(id string) (Shape, bool) {
	for _, shape := range s.Nodes {
		if shape.Node.ID == id {
			return shape, true
		}
	}
	return Shape{}, false
}

// Render computes the scene for a state. It has no side effects; a nil root
// or a viewport without area yields an empty scene.
func Render(st State) Scene {
	scene := Scene{Width: st.Width, Height: st.Height, Style: st.Style}
	if st.Root == nil || st.Width <= 0 || st.Height <= 0 {
		return scene
	}

	for _, link := range layout.Links(st.Root) {
		scene.Links = append(scene.Links, Path{
			SourceID: link.SourceID,
			TargetID: link.TargetID,
			D:        link.Path(),
		})
	}

	st.Root.Each(func(n *layout.Node) {
		selected := st.SelectedID != "" && n.ID == st.SelectedID
		colors, width, glow := st.Style.NodeColors(n.Category, selected)
		scene.Nodes = append(scene.Nodes, Shape{
			Node:        n.RoadmapNode,
			Box:         n.Box(),
			Fill:        colors.Fill,
			Stroke:      colors.Stroke,
			StrokeWidth: width,
			Glow:        glow,
			Selected:    selected,
			Label:       clampLabel(n.Label, st.Style.LabelCells),
			Description: clampLines(n.Description, st.Style.DescriptionCells, st.Style.DescriptionLines),
			Badge:       st.Style.Badge(n.Complexity),
		})
	})
	return scene
}

func clampLabel(label string, cells int) string {
	label = strings.Join(strings.Fields(label), " ")
	if cells <= 0 {
		return label
	}
	return runewidth.Truncate(label, cells, ellipsis)
}

// clampLines word-wraps text into at most maxLines lines of the given width.
// Overflow is cut from the last line with an ellipsis.
func clampLines(text string, width, maxLines int) []string {
	words := strings.Fields(text)
	if len(words) == 0 || maxLines <= 0 {
		return nil
	}
	if width <= 0 {
		return []string{strings.Join(words, " ")}
	}

	var lines []string
	for len(words) > 0 && len(lines) < maxLines {
		line := words[0]
		n := 1
		for n < len(words) && runewidth.StringWidth(line+" "+words[n]) <= width {
			line += " " + words[n]
			n++
		}
		words = words[n:]

		if len(lines) == maxLines-1 && len(words) > 0 {
			line += " " + strings.Join(words, " ")
			words = nil
		}
		lines = append(lines, runewidth.Truncate(line, width, ellipsis))
	}
	return lines
}
