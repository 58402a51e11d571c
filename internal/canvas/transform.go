package canvas

import (
	"math"
	"strconv"

	"github.com/acheong08/neuromap/internal/layout"
)

const (
	MinScale       = 0.1
	MaxScale       = 2.0
	InitialScale   = 0.8
	InitialOffsetX = 100.0

	// wheelSensitivity matches the browser's default wheel delta scaling
	wheelSensitivity = 0.002
)

// Transform maps scene coordinates to screen coordinates: screen = scene*K + (X, Y)
type Transform struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	K float64 `json:"k"`
}

// Identity is the transform that leaves points unchanged
func Identity() Transform {
	return Transform{K: 1}
}

// Initial places the root near the left edge, vertically centred
func Initial(height float64) Transform {
	return Transform{X: InitialOffsetX, Y: height / 2, K: InitialScale}
}

// ClampScale limits k to [MinScale, MaxScale]
func ClampScale(k float64) float64 {
	return math.Max(MinScale, math.Min(MaxScale, k))
}

// WheelFactor converts a wheel delta into a zoom multiplier
func WheelFactor(deltaY float64) float64 {
	return math.Pow(2, -deltaY*wheelSensitivity)
}

// Apply maps a scene point to the screen
func (t Transform) Apply(p layout.Point) layout.Point {
	return layout.Point{X: p.X*t.K + t.X, Y: p.Y*t.K + t.Y}
}

// Invert maps a screen point back into the scene
func (t Transform) Invert(p layout.Point) layout.Point {
	return layout.Point{X: (p.X - t.X) / t.K, Y: (p.Y - t.Y) / t.K}
}

// Translate pans by a screen-space offset
func (t Transform) Translate(dx, dy float64) Transform {
	return Transform{X: t.X + dx, Y: t.Y + dy, K: t.K}
}

// ZoomAt scales by factor while keeping the scene point under p fixed
func (t Transform) ZoomAt(p layout.Point, factor float64) Transform {
	k := ClampScale(t.K * factor)
	anchor := t.Invert(p)
	return Transform{
		X: p.X - anchor.X*k,
		Y: p.Y - anchor.Y*k,
		K: k,
	}
}

// String renders the transform as an SVG transform attribute
func (t Transform) String() string {
	return "translate(" + formatNum(t.X) + "," + formatNum(t.Y) + ") scale(" + formatNum(t.K) + ")"
}

func formatNum(v float64) string {
	if v == 0 {
		return "0"
	}
	// Round away float noise so emitted markup stays stable
	return strconv.FormatFloat(math.Round(v*1e4)/1e4, 'f', -1, 64)
}
