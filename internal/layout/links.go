package layout

import (
	"strconv"
	"strings"
)

// Link is the curve joining a parent's right anchor to a child's left anchor
type Link struct {
	SourceID string
	TargetID string
	From     Point
	C1       Point
	C2       Point
	To       Point
}

// Links returns one horizontal cubic curve per parent-child pair, in pre-order
func Links(root *Node) []Link {
	if root == nil {
		return nil
	}
	var links []Link
	root.Each(func(parent *Node) {
		for _, child := range parent.Children {
			links = append(links, curve(parent, child))
		}
	})
	return links
}

func curve(parent, child *Node) Link {
	from := parent.RightAnchor()
	to := child.LeftAnchor()
	midX := (from.X + to.X) / 2
	return Link{
		SourceID: parent.ID,
		TargetID: child.ID,
		From:     from,
		C1:       Point{X: midX, Y: from.Y},
		C2:       Point{X: midX, Y: to.Y},
		To:       to,
	}
}

// Path renders the curve as SVG path data
func (l Link) Path() string {
	var sb strings.Builder
	sb.WriteString("M")
	writePoint(&sb, l.From)
	sb.WriteString("C")
	writePoint(&sb, l.C1)
	sb.WriteString(" ")
	writePoint(&sb, l.C2)
	sb.WriteString(" ")
	writePoint(&sb, l.To)
	return sb.String()
}

// At evaluates the curve at t in [0, 1]
func (l Link) At(t float64) Point {
	u := 1 - t
	a, b, c, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
	return Point{
		X: a*l.From.X + b*l.C1.X + c*l.C2.X + d*l.To.X,
		Y: a*l.From.Y + b*l.C1.Y + c*l.C2.Y + d*l.To.Y,
	}
}

func writePoint(sb *strings.Builder, p Point) {
	sb.WriteString(formatFloat(p.X))
	sb.WriteString(",")
	sb.WriteString(formatFloat(p.Y))
}

func formatFloat(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
