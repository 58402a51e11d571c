package canvas

import (
	"sync"

	"github.com/acheong08/neuromap/internal/layout"
	"github.com/acheong08/neuromap/pkg/models"
)

// Handlers receive canvas output. Any of them may be nil. They are never
// called with the canvas lock held, so they may call back into the canvas.
type Handlers struct {
	// OnScene receives a full redraw together with the current transform
	OnScene func(Scene, Transform)
	// OnTransform receives pan and zoom updates
	OnTransform func(Transform)
	// OnClick receives the data of a clicked node
	OnClick func(models.RoadmapNode)
}

// Canvas is the interactive view of a positioned roadmap. Pointer
// coordinates are in screen space.
type Canvas struct {
	mu sync.Mutex

	style    Style
	handlers Handlers

	root     *layout.Node
	selected string
	width    float64
	height   float64

	transform Transform
	fitted    bool
	scene     Scene
	gesture   gesture
}

// New creates an empty canvas
func New(style Style, handlers Handlers) *Canvas {
	return &Canvas{
		style:     style,
		handlers:  handlers,
		transform: Identity(),
	}
}

// SetData replaces the roadmap and resets the view. The selection is
// cleared even when the new tree reuses an ID.
func (c *Canvas) SetData(root *layout.Node) {
	c.mu.Lock()
	c.root = root
	c.selected = ""
	c.fitted = false
	c.gesture.reset()
	emit := c.redrawLocked()
	c.mu.Unlock()

	emit()
}

// Resize changes the viewport size. The user's pan and zoom are kept.
func (c *Canvas) Resize(width, height float64) {
	c.mu.Lock()
	if width == c.width && height == c.height {
		c.mu.Unlock()
		return
	}
	c.width, c.height = width, height
	emit := c.redrawLocked()
	c.mu.Unlock()

	emit()
}

// Select highlights the node with the given ID. An empty or unknown ID
// clears the selection.
func (c *Canvas) Select(id string) {
	c.mu.Lock()
	if c.root == nil || c.root.Find(id) == nil {
		id = ""
	}
	if id == c.selected {
		c.mu.Unlock()
		return
	}
	c.selected = id
	emit := c.redrawLocked()
	c.mu.Unlock()

	emit()
}

// PointerDown arms a click when over a node, otherwise starts a pan
func (c *Canvas) PointerDown(p layout.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if shape, ok := c.scene.HitTest(c.transform.Invert(p)); ok {
		c.gesture.pressNode(shape.Node, p)
		return
	}
	if c.scene.Empty() {
		c.gesture.reset()
		return
	}
	c.gesture.startDrag(p)
}

// PointerMove pans while dragging and disarms a click that strays too far
func (c *Canvas) PointerMove(p layout.Point) {
	c.mu.Lock()
	dx, dy, pan := c.gesture.moveTo(p)
	if !pan {
		c.mu.Unlock()
		return
	}
	c.transform = c.transform.Translate(dx, dy)
	t := c.transform
	c.mu.Unlock()

	c.emitTransform(t)
}

// PointerUp ends the gesture. A release over the node that was pressed
// dispatches one click.
func (c *Canvas) PointerUp(p layout.Point) {
	c.mu.Lock()
	g := c.gesture
	c.gesture.reset()

	var clicked *models.RoadmapNode
	if g.kind == gesturePress {
		if shape, ok := c.scene.HitTest(c.transform.Invert(p)); ok && shape.Node.ID == g.node.ID {
			node := g.node
			clicked = &node
		}
	}
	c.mu.Unlock()

	if clicked != nil && c.handlers.OnClick != nil {
		c.handlers.OnClick(*clicked)
	}
}

// Wheel zooms about the pointer
func (c *Canvas) Wheel(p layout.Point, deltaY float64) {
	c.mu.Lock()
	if c.scene.Empty() {
		c.mu.Unlock()
		return
	}
	next := c.transform.ZoomAt(p, WheelFactor(deltaY))
	if next == c.transform {
		c.mu.Unlock()
		return
	}
	c.transform = next
	c.mu.Unlock()

	c.emitTransform(next)
}

// Transform returns the current view transform
func (c *Canvas) Transform() Transform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transform
}

// Scene returns the last rendered scene
func (c *Canvas) Scene() Scene {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scene
}

// Selected returns the selected node ID, empty when nothing is selected
func (c *Canvas) Selected() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// redrawLocked re-renders from scratch and returns the deferred notification
func (c *Canvas) redrawLocked() func() {
	c.scene = Render(State{
		Root:       c.root,
		SelectedID: c.selected,
		Width:      c.width,
		Height:     c.height,
		Style:      c.style,
	})
	if !c.fitted && !c.scene.Empty() {
		c.transform = Initial(c.height)
		c.fitted = true
	}

	scene, t := c.scene, c.transform
	return func() {
		if c.handlers.OnScene != nil {
			c.handlers.OnScene(scene, t)
		}
	}
}

func (c *Canvas) emitTransform(t Transform) {
	if c.handlers.OnTransform != nil {
		c.handlers.OnTransform(t)
	}
}
