package canvas

import (
	"math"

	"github.com/acheong08/neuromap/internal/layout"
	"github.com/acheong08/neuromap/pkg/models"
)

// ClickTolerance is how far, in screen pixels, the pointer may travel between
// press and release on a node before the click is cancelled
const ClickTolerance = 4.0

type gestureKind int

const (
	gestureIdle gestureKind = iota
	gesturePress
	gestureDrag
)

// gesture tracks one pointer interaction. A press on a node can only end in
// a click; a press on the background can only end in a pan.
type gesture struct {
	kind  gestureKind
	node  models.RoadmapNode
	start layout.Point
	last  layout.Point
}

func (g *gesture) reset() {
	*g = gesture{}
}

func (g *gesture) pressNode(node models.RoadmapNode, p layout.Point) {
	*g = gesture{kind: gesturePress, node: node, start: p, last: p}
}

func (g *gesture) startDrag(p layout.Point) {
	*g = gesture{kind: gestureDrag, start: p, last: p}
}

// moveTo advances the gesture and returns the pan offset to apply, if any
func (g *gesture) moveTo(p layout.Point) (dx, dy float64, pan bool) {
	switch g.kind {
	case gestureDrag:
		dx, dy = p.X-g.last.X, p.Y-g.last.Y
		g.last = p
		return dx, dy, dx != 0 || dy != 0
	case gesturePress:
		if math.Hypot(p.X-g.start.X, p.Y-g.start.Y) > ClickTolerance {
			g.reset()
		}
	}
	return 0, 0, false
}
