// Package controller owns the live Graph, the Viewport and the cooling
// scalar, and turns discrete pointer events into viewport changes, node
// dragging, hover and selection. It is the single writer per tick: the
// simulation step it triggers always precedes the paint that observes it,
// and pointer mutations apply synchronously before the next scheduled
// frame. Everything is single-threaded; there is no locking because there
// is no concurrency, only sequencing.
package controller

import (
	"time"

	"github.com/vanderheijden86/huntmap/pkg/debug"
	"github.com/vanderheijden86/huntmap/pkg/graph"
	"github.com/vanderheijden86/huntmap/pkg/metrics"
	"github.com/vanderheijden86/huntmap/pkg/physics"
	"github.com/vanderheijden86/huntmap/pkg/viewport"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// PickPadding widens node hit circles so small endpoints stay clickable.
	PickPadding = 4.0

	// clickSlop is the pointer travel in screen px below which a
	// down/up pair counts as a click rather than a drag.
	clickSlop = 4.0

	// PreSettleSteps is the fixed cooling run at graph install, before the
	// first paint.
	PreSettleSteps = 150

	zoomStep = 1.2
)

// Controller is the interaction state machine and owner of all mutable
// visualizer state. Exactly one instance is live per panel.
type Controller struct {
	g  *graph.Graph
	vp viewport.Viewport

	width, height float64
	simAlpha      float64
	clock         time.Duration

	mode       Mode
	hoveredID  string
	selectedID string
	dragID     string
	search     string

	last      r2.Vec // last pointer position, screen space
	downAt    r2.Vec // pointer-down position, screen space
	dragMoved bool

	sched    Scheduler
	onSelect func(*graph.Node)
}

// New creates a controller for a surface of the given pixel size.
func New(width, height float64) *Controller {
	return &Controller{
		width:  width,
		height: height,
		vp:     viewport.New(),
		sched:  nopScheduler{},
	}
}

// SetZoomLimits overrides the viewport zoom bounds, typically from
// configuration. Invalid bounds are ignored and the defaults stay in force.
func (c *Controller) SetZoomLimits(lo, hi float64) {
	c.vp.SetLimits(lo, hi)
}

// SetScheduler attaches the frame scheduler. Nil restores the no-op.
func (c *Controller) SetScheduler(s Scheduler) {
	if s == nil {
		s = nopScheduler{}
	}
	c.sched = s
}

// SetOnSelect registers the callback fired with a node's full metadata when
// the user selects it, feeding the external detail panel.
func (c *Controller) SetOnSelect(fn func(*graph.Node)) {
	c.onSelect = fn
}

// Install tears down any previous graph, resets the viewport, pre-settles
// the new graph and arms the frame loop. Passing the graph through here is
// the only way it becomes visible to the loop, so a torn-down graph can
// never be repainted.
func (c *Controller) Install(g *graph.Graph) {
	c.Teardown()
	c.g = g
	c.vp.Reset()
	if g != nil {
		physics.Simulate(g, c.width/2, c.height/2, PreSettleSteps)
		c.simAlpha = physics.ReheatAlpha
		debug.Log("installed graph: %d nodes, %d edges", len(g.Nodes), len(g.Edges))
		c.sched.Arm()
	}
}

// Teardown drops the current graph and all per-graph interaction state.
// The frame loop self-terminates on the next tick once the graph is gone.
func (c *Controller) Teardown() {
	c.g = nil
	c.simAlpha = 0
	c.mode = ModeIdle
	c.hoveredID = ""
	c.selectedID = ""
	c.dragID = ""
	c.sched.Disarm()
}

// Graph returns the live graph, or nil between datasets.
func (c *Controller) Graph() *graph.Graph { return c.g }

// Viewport returns the current transform by value for rendering.
func (c *Controller) Viewport() viewport.Viewport { return c.vp }

// Mode returns the current interaction mode.
func (c *Controller) Mode() Mode { return c.mode }

// HoveredID returns the hovered node id, or "".
func (c *Controller) HoveredID() string { return c.hoveredID }

// SelectedID returns the selected node id, or "".
func (c *Controller) SelectedID() string { return c.selectedID }

// Selected returns the selected node, or nil.
func (c *Controller) Selected() *graph.Node {
	if c.g == nil {
		return nil
	}
	return c.g.NodeByID(c.selectedID)
}

// Search returns the active search string.
func (c *Controller) Search() string { return c.search }

// SetSearch updates the highlight/dim partition. No refetch, no reheat;
// the next paint picks it up.
func (c *Controller) SetSearch(q string) { c.search = q }

// SimAlpha returns the live cooling scalar.
func (c *Controller) SimAlpha() float64 { return c.simAlpha }

// Clock returns the monotonic animation clock.
func (c *Controller) Clock() time.Duration { return c.clock }

// Resize records a new surface size in pixels. The simulation keeps its
// state; only the next paint and the centering target change.
func (c *Controller) Resize(width, height float64) {
	c.width, c.height = width, height
}

// NeedsAnimation is the scheduler arming predicate: keep ticking while the
// simulation is hot or any interaction affordance needs repainting.
func (c *Controller) NeedsAnimation() bool {
	if c.g == nil {
		return false
	}
	return physics.Hot(c.simAlpha) || c.hoveredID != "" || c.selectedID != "" || c.mode == ModeDragging
}

// Tick advances the animation clock and runs at most one simulation step,
// then re-arms the scheduler if animation is still needed. It returns
// false when the graph is gone and the loop must stop.
func (c *Controller) Tick(dt time.Duration) bool {
	if c.g == nil {
		return false
	}
	c.clock += dt
	if physics.Hot(c.simAlpha) {
		physics.Step(c.g, c.width/2, c.height/2, c.simAlpha)
		c.simAlpha = physics.Decay(c.simAlpha)
	}
	if c.NeedsAnimation() {
		c.sched.Arm()
	}
	return true
}

// HitTest returns the first node whose hit circle contains the screen
// position, or nil. Ties go to slice order; overlapping hit radii are rare
// under repulsion, so the tie-break is deliberately arbitrary.
func (c *Controller) HitTest(x, y float64) *graph.Node {
	if c.g == nil {
		return nil
	}
	defer metrics.Timer(metrics.HitTest)()
	w := c.vp.ScreenToWorld(r2.Vec{X: x, Y: y})
	for _, n := range c.g.Nodes {
		if r2.Norm(r2.Sub(w, n.Pos)) < n.Radius+PickPadding {
			return n
		}
	}
	return nil
}

// HandlePointer feeds one pointer event through the state machine. All
// mutations are synchronous; by the time this returns, the viewport and
// graph reflect the event.
func (c *Controller) HandlePointer(ev PointerEvent) {
	if c.g == nil {
		return
	}
	p := r2.Vec{X: ev.X, Y: ev.Y}

	switch ev.Kind {
	case PointerDown:
		c.downAt = p
		c.dragMoved = false
		if n := c.HitTest(ev.X, ev.Y); n != nil {
			c.mode = ModeDragging
			c.dragID = n.ID
			// Pin immediately so the node resists simulation forces for
			// the whole drag.
			n.Pinned = true
		} else {
			c.mode = ModePanning
		}

	case PointerMove:
		switch c.mode {
		case ModePanning:
			c.vp.Pan(p.X-c.last.X, p.Y-c.last.Y)
			// Same slop as dragging: a near-motionless down/up pair on
			// empty space is still a click and must clear the selection.
			if r2.Norm(r2.Sub(p, c.downAt)) > clickSlop {
				c.dragMoved = true
			}
		case ModeDragging:
			if n := c.g.NodeByID(c.dragID); n != nil {
				n.Pos = c.vp.ScreenToWorld(p)
				n.Vel = r2.Vec{}
				c.simAlpha = physics.Reheat(c.simAlpha)
			}
			if r2.Norm(r2.Sub(p, c.downAt)) > clickSlop {
				c.dragMoved = true
			}
		default:
			if n := c.HitTest(ev.X, ev.Y); n != nil {
				if c.hoveredID != n.ID {
					c.hoveredID = n.ID
					c.sched.Arm()
				}
			} else {
				c.hoveredID = ""
			}
		}

	case PointerUp:
		wasDrag := c.dragMoved
		mode := c.mode
		c.mode = ModeIdle
		c.dragID = ""
		if wasDrag {
			return
		}
		// A motionless down/up pair is a click: select a node, or clear the
		// selection on empty space.
		if mode == ModeDragging || mode == ModePanning {
			if n := c.HitTest(ev.X, ev.Y); n != nil {
				c.selectedID = n.ID
				if c.onSelect != nil {
					c.onSelect(n)
				}
				c.sched.Arm()
			} else {
				c.selectedID = ""
			}
		}

	case PointerWheel:
		// Zoom is permitted in every mode.
		factor := zoomStep
		if ev.WheelDelta < 0 {
			factor = 1 / zoomStep
		}
		c.vp.ZoomAt(p, factor)

	case PointerDoubleClick:
		if n := c.HitTest(ev.X, ev.Y); n != nil && n.Pinned {
			n.Pinned = false
			c.simAlpha = physics.Reheat(c.simAlpha)
			c.sched.Arm()
		}
	}
	c.last = p
}

// ClearSelection drops the selection and, if idle, lets the loop cool.
func (c *Controller) ClearSelection() {
	c.selectedID = ""
}

// ZoomIn zooms one step toward the canvas center (toolbar operation).
func (c *Controller) ZoomIn() {
	c.vp.ZoomAt(r2.Vec{X: c.width / 2, Y: c.height / 2}, zoomStep)
}

// ZoomOut zooms one step away from the canvas center (toolbar operation).
func (c *Controller) ZoomOut() {
	c.vp.ZoomAt(r2.Vec{X: c.width / 2, Y: c.height / 2}, 1/zoomStep)
}

// ResetView restores the identity viewport (toolbar operation).
func (c *Controller) ResetView() {
	c.vp.Reset()
}
