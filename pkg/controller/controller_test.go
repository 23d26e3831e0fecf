package controller

import (
	"testing"
	"time"

	"github.com/vanderheijden86/huntmap/pkg/graph"
	"github.com/vanderheijden86/huntmap/pkg/physics"
	"github.com/vanderheijden86/huntmap/pkg/viewport"

	"gonum.org/v1/gonum/spatial/r2"
)

type recordScheduler struct {
	arms    int
	disarms int
}

func (s *recordScheduler) Arm()    { s.arms++ }
func (s *recordScheduler) Disarm() { s.disarms++ }

func singleNodeGraph() *graph.Graph {
	g := graph.New()
	g.AddNode(&graph.Node{
		ID:     "h1",
		Label:  "alpha",
		Pos:    r2.Vec{X: 400, Y: 300},
		Radius: 20,
		Kind:   graph.KindHost,
	})
	return g
}

func pairGraph() *graph.Graph {
	g := singleNodeGraph()
	g.AddNode(&graph.Node{
		ID:     "h2",
		Label:  "beta",
		Pos:    r2.Vec{X: 600, Y: 300},
		Radius: 20,
		Kind:   graph.KindHost,
	})
	g.Edges = append(g.Edges, graph.Edge{Source: "h1", Target: "h2", Weight: 1})
	return g
}

func newInstalled(t *testing.T, g *graph.Graph) (*Controller, *recordScheduler) {
	t.Helper()
	c := New(800, 600)
	sched := &recordScheduler{}
	c.SetScheduler(sched)
	c.Install(g)
	return c, sched
}

func TestInstallPreSettlesAndArms(t *testing.T) {
	c, sched := newInstalled(t, pairGraph())

	if c.Graph() == nil {
		t.Fatal("graph not installed")
	}
	if ke := c.Graph().KineticEnergy(); ke > 10 {
		t.Errorf("kinetic energy after pre-settle = %v, want near rest", ke)
	}
	if c.SimAlpha() != physics.ReheatAlpha {
		t.Errorf("simAlpha after install = %v, want %v", c.SimAlpha(), physics.ReheatAlpha)
	}
	if sched.arms == 0 {
		t.Error("install must arm the frame loop")
	}
	if c.Viewport() != viewport.New() {
		t.Error("install must reset the viewport")
	}
}

func TestTeardownStopsLoop(t *testing.T) {
	c, sched := newInstalled(t, singleNodeGraph())
	c.Teardown()

	if c.Graph() != nil {
		t.Error("graph must be nil after teardown")
	}
	if sched.disarms == 0 {
		t.Error("teardown must disarm the scheduler")
	}
	if c.Tick(time.Second / 30) {
		t.Error("Tick must report stop once the graph is gone")
	}
	if c.NeedsAnimation() {
		t.Error("torn-down controller must not need animation")
	}
}

func TestHitTest(t *testing.T) {
	c, _ := newInstalled(t, singleNodeGraph())
	n := c.Graph().Nodes[0]

	// Identity viewport after install: screen == world.
	if got := c.HitTest(n.Pos.X, n.Pos.Y); got != n {
		t.Fatalf("HitTest at node center = %v, want the node", got)
	}
	far := n.Pos.X + n.Radius + PickPadding + 5
	if got := c.HitTest(far, n.Pos.Y); got != nil {
		t.Fatalf("HitTest outside hit circle = %v, want nil", got)
	}
	// Just inside the padded ring still hits.
	edge := n.Pos.X + n.Radius + PickPadding - 1
	if got := c.HitTest(edge, n.Pos.Y); got != n {
		t.Fatal("padded hit circle not honored")
	}
}

func TestClickSelectsNode(t *testing.T) {
	c, _ := newInstalled(t, singleNodeGraph())
	n := c.Graph().Nodes[0]

	var selected *graph.Node
	c.SetOnSelect(func(sel *graph.Node) { selected = sel })

	c.HandlePointer(PointerEvent{Kind: PointerDown, X: n.Pos.X, Y: n.Pos.Y})
	c.HandlePointer(PointerEvent{Kind: PointerUp, X: n.Pos.X, Y: n.Pos.Y})

	if c.SelectedID() != n.ID {
		t.Fatalf("selected = %q, want %q", c.SelectedID(), n.ID)
	}
	if selected != n {
		t.Error("onSelect callback not fired with the node")
	}
	if c.Mode() != ModeIdle {
		t.Errorf("mode after click = %v, want idle", c.Mode())
	}
}

func TestClickEmptySpaceClearsSelection(t *testing.T) {
	c, _ := newInstalled(t, singleNodeGraph())
	n := c.Graph().Nodes[0]

	c.HandlePointer(PointerEvent{Kind: PointerDown, X: n.Pos.X, Y: n.Pos.Y})
	c.HandlePointer(PointerEvent{Kind: PointerUp, X: n.Pos.X, Y: n.Pos.Y})
	if c.SelectedID() == "" {
		t.Fatal("setup: node not selected")
	}

	c.HandlePointer(PointerEvent{Kind: PointerDown, X: 10, Y: 10})
	c.HandlePointer(PointerEvent{Kind: PointerUp, X: 10, Y: 10})
	if c.SelectedID() != "" {
		t.Fatalf("selection after empty click = %q, want cleared", c.SelectedID())
	}
}

func TestJitteredEmptyClickClearsSelection(t *testing.T) {
	c, _ := newInstalled(t, singleNodeGraph())
	n := c.Graph().Nodes[0]

	c.HandlePointer(PointerEvent{Kind: PointerDown, X: n.Pos.X, Y: n.Pos.Y})
	c.HandlePointer(PointerEvent{Kind: PointerUp, X: n.Pos.X, Y: n.Pos.Y})
	if c.SelectedID() == "" {
		t.Fatal("setup: node not selected")
	}

	// A pixel of wobble between down and up is still a click.
	c.HandlePointer(PointerEvent{Kind: PointerDown, X: 10, Y: 10})
	c.HandlePointer(PointerEvent{Kind: PointerMove, X: 11, Y: 11})
	c.HandlePointer(PointerEvent{Kind: PointerUp, X: 11, Y: 11})
	if c.SelectedID() != "" {
		t.Fatalf("selection after jittered empty click = %q, want cleared", c.SelectedID())
	}
}

func TestPanBeyondSlopKeepsSelection(t *testing.T) {
	c, _ := newInstalled(t, singleNodeGraph())
	n := c.Graph().Nodes[0]

	c.HandlePointer(PointerEvent{Kind: PointerDown, X: n.Pos.X, Y: n.Pos.Y})
	c.HandlePointer(PointerEvent{Kind: PointerUp, X: n.Pos.X, Y: n.Pos.Y})
	if c.SelectedID() == "" {
		t.Fatal("setup: node not selected")
	}

	c.HandlePointer(PointerEvent{Kind: PointerDown, X: 10, Y: 10})
	c.HandlePointer(PointerEvent{Kind: PointerMove, X: 40, Y: 10})
	c.HandlePointer(PointerEvent{Kind: PointerUp, X: 40, Y: 10})
	if c.SelectedID() != n.ID {
		t.Fatalf("selection after pan = %q, want kept", c.SelectedID())
	}
}

func TestDragMovesAndPinsNode(t *testing.T) {
	c, _ := newInstalled(t, pairGraph())
	n := c.Graph().Nodes[0]
	start := n.Pos

	c.HandlePointer(PointerEvent{Kind: PointerDown, X: start.X, Y: start.Y})
	if !n.Pinned {
		t.Fatal("node must pin at drag start")
	}
	target := r2.Vec{X: start.X + 80, Y: start.Y + 40}
	c.HandlePointer(PointerEvent{Kind: PointerMove, X: target.X, Y: target.Y})
	c.HandlePointer(PointerEvent{Kind: PointerUp, X: target.X, Y: target.Y})

	if n.Pos != target {
		t.Fatalf("node pos after drag = %v, want exactly %v", n.Pos, target)
	}
	if !n.Pinned {
		t.Error("node must stay pinned after release")
	}
	if c.SelectedID() != "" {
		t.Error("a drag must not count as a selection click")
	}
	if c.SimAlpha() < physics.ReheatAlpha {
		t.Errorf("drag must reheat: alpha = %v", c.SimAlpha())
	}

	// The pinned node holds its position through further simulation.
	for i := 0; i < 50; i++ {
		c.Tick(time.Second / 30)
	}
	if n.Pos != target {
		t.Fatalf("pinned node moved during simulation: %v", n.Pos)
	}
}

func TestDoubleClickUnpins(t *testing.T) {
	c, _ := newInstalled(t, pairGraph())
	n := c.Graph().Nodes[0]

	c.HandlePointer(PointerEvent{Kind: PointerDown, X: n.Pos.X, Y: n.Pos.Y})
	target := r2.Vec{X: n.Pos.X + 60, Y: n.Pos.Y}
	c.HandlePointer(PointerEvent{Kind: PointerMove, X: target.X, Y: target.Y})
	c.HandlePointer(PointerEvent{Kind: PointerUp, X: target.X, Y: target.Y})
	if !n.Pinned {
		t.Fatal("setup: node not pinned")
	}

	c.HandlePointer(PointerEvent{Kind: PointerDoubleClick, X: target.X, Y: target.Y})
	if n.Pinned {
		t.Fatal("double-click must release the pin")
	}
	if c.SimAlpha() < physics.ReheatAlpha {
		t.Errorf("unpin must reheat: alpha = %v", c.SimAlpha())
	}
}

func TestPanOnEmptySpace(t *testing.T) {
	c, _ := newInstalled(t, singleNodeGraph())

	c.HandlePointer(PointerEvent{Kind: PointerDown, X: 10, Y: 10})
	if c.Mode() != ModePanning {
		t.Fatalf("mode = %v, want panning", c.Mode())
	}
	c.HandlePointer(PointerEvent{Kind: PointerMove, X: 35, Y: -5})
	c.HandlePointer(PointerEvent{Kind: PointerUp, X: 35, Y: -5})

	vp := c.Viewport()
	if vp.PanX != 25 || vp.PanY != -15 {
		t.Fatalf("pan = (%v, %v), want (25, -15)", vp.PanX, vp.PanY)
	}
}

func TestWheelZoomClamped(t *testing.T) {
	c, _ := newInstalled(t, singleNodeGraph())
	for i := 0; i < 100; i++ {
		c.HandlePointer(PointerEvent{Kind: PointerWheel, X: 400, Y: 300, WheelDelta: 1})
	}
	if got := c.Viewport().Scale; got != viewport.MaxZoom {
		t.Fatalf("scale = %v, want clamp at %v", got, viewport.MaxZoom)
	}
	for i := 0; i < 100; i++ {
		c.HandlePointer(PointerEvent{Kind: PointerWheel, X: 400, Y: 300, WheelDelta: -1})
	}
	if got := c.Viewport().Scale; got != viewport.MinZoom {
		t.Fatalf("scale = %v, want clamp at %v", got, viewport.MinZoom)
	}
}

func TestSetZoomLimits(t *testing.T) {
	c, _ := newInstalled(t, singleNodeGraph())
	c.SetZoomLimits(0.5, 2)

	for i := 0; i < 50; i++ {
		c.HandlePointer(PointerEvent{Kind: PointerWheel, X: 400, Y: 300, WheelDelta: 1})
	}
	if got := c.Viewport().Scale; got != 2 {
		t.Fatalf("scale with configured limits = %v, want clamp at 2", got)
	}
	for i := 0; i < 50; i++ {
		c.HandlePointer(PointerEvent{Kind: PointerWheel, X: 400, Y: 300, WheelDelta: -1})
	}
	if got := c.Viewport().Scale; got != 0.5 {
		t.Fatalf("scale with configured limits = %v, want clamp at 0.5", got)
	}

	// The limits survive a dataset switch.
	c.Install(singleNodeGraph())
	for i := 0; i < 50; i++ {
		c.ZoomIn()
	}
	if got := c.Viewport().Scale; got != 2 {
		t.Fatalf("scale after reinstall = %v, want clamp at 2", got)
	}
}

func TestToolbarOps(t *testing.T) {
	c, _ := newInstalled(t, singleNodeGraph())
	c.ZoomIn()
	if c.Viewport().Scale <= 1 {
		t.Error("ZoomIn did not increase scale")
	}
	c.ZoomOut()
	c.ZoomOut()
	if c.Viewport().Scale >= 1 {
		t.Error("ZoomOut did not decrease scale")
	}
	c.ResetView()
	if c.Viewport() != viewport.New() {
		t.Error("ResetView did not restore identity")
	}
}

func TestCoolingEventuallyStops(t *testing.T) {
	c, _ := newInstalled(t, pairGraph())

	for i := 0; i < 1000 && c.NeedsAnimation(); i++ {
		c.Tick(time.Second / 30)
	}
	if physics.Hot(c.SimAlpha()) {
		t.Fatalf("alpha = %v still hot after cooling run", c.SimAlpha())
	}
	if c.NeedsAnimation() {
		t.Fatal("idle settled graph must not need animation")
	}
}

func TestHoverKeepsAnimationAlive(t *testing.T) {
	c, _ := newInstalled(t, singleNodeGraph())
	n := c.Graph().Nodes[0]

	for i := 0; i < 1000 && physics.Hot(c.SimAlpha()); i++ {
		c.Tick(time.Second / 30)
	}
	c.HandlePointer(PointerEvent{Kind: PointerMove, X: n.Pos.X, Y: n.Pos.Y})
	if c.HoveredID() != n.ID {
		t.Fatalf("hover not detected: %q", c.HoveredID())
	}
	if !c.NeedsAnimation() {
		t.Error("hover must keep the frame loop alive")
	}

	c.HandlePointer(PointerEvent{Kind: PointerMove, X: 5, Y: 5})
	if c.HoveredID() != "" {
		t.Error("hover not cleared off-node")
	}
}

func TestSearchStateIsPassive(t *testing.T) {
	c, _ := newInstalled(t, singleNodeGraph())
	alpha := c.SimAlpha()
	c.SetSearch("alp")
	if c.Search() != "alp" {
		t.Fatalf("search = %q", c.Search())
	}
	if c.SimAlpha() != alpha {
		t.Error("setting the search string must not reheat the simulation")
	}
}

func TestClockAdvances(t *testing.T) {
	c, _ := newInstalled(t, singleNodeGraph())
	c.Tick(33 * time.Millisecond)
	c.Tick(33 * time.Millisecond)
	if c.Clock() != 66*time.Millisecond {
		t.Fatalf("clock = %v, want 66ms", c.Clock())
	}
}
