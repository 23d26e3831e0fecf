package render

import (
	"image"
	"testing"
	"time"

	"github.com/vanderheijden86/huntmap/pkg/graph"
	"github.com/vanderheijden86/huntmap/pkg/testutil"
	"github.com/vanderheijden86/huntmap/pkg/viewport"
)

func testGraph() *graph.Graph {
	return testutil.GenerateGraph(testutil.DefaultGenOptions(), 640, 480)
}

func TestFrameSmoke(t *testing.T) {
	r := New(640, 480)
	img := r.Frame(testGraph(), viewport.New(), State{})
	if img == nil {
		t.Fatal("Frame returned nil image")
	}
	b := img.Bounds()
	if b.Dx() != 640 || b.Dy() != 480 {
		t.Fatalf("frame size = %dx%d, want 640x480", b.Dx(), b.Dy())
	}
}

func TestFrameNilGraph(t *testing.T) {
	r := New(320, 200)
	img := r.Frame(nil, viewport.New(), State{})
	if img == nil {
		t.Fatal("nil graph must still paint the background")
	}
}

func TestFrameWithInteractionState(t *testing.T) {
	g := testGraph()
	r := New(640, 480)
	st := State{
		HoveredID:  g.Nodes[0].ID,
		SelectedID: g.Nodes[1].ID,
		Search:     "ws-",
		Clock:      3 * time.Second,
	}
	// Must not panic with glow, dashed edges and dimming all active at once.
	if img := r.Frame(g, viewport.New(), st); img == nil {
		t.Fatal("Frame returned nil image")
	}
}

func TestFrameAtZoomExtremes(t *testing.T) {
	g := testGraph()
	r := New(640, 480)
	for _, scale := range []float64{viewport.MinZoom, viewport.MaxZoom} {
		vp := viewport.Viewport{Scale: scale}
		if img := r.Frame(g, vp, State{}); img == nil {
			t.Fatalf("Frame at scale %v returned nil", scale)
		}
	}
}

func TestResize(t *testing.T) {
	r := New(100, 100)
	r.Resize(300, 150)
	w, h := r.Size()
	if w != 300 || h != 150 {
		t.Fatalf("size after resize = %dx%d", w, h)
	}
	img := r.Frame(testGraph(), viewport.New(), State{})
	if b := img.Bounds(); b.Dx() != 300 || b.Dy() != 150 {
		t.Fatalf("frame size after resize = %dx%d", b.Dx(), b.Dy())
	}

	// Degenerate sizes clamp instead of panicking.
	r.Resize(0, -5)
	w, h = r.Size()
	if w < 1 || h < 1 {
		t.Fatalf("degenerate resize produced %dx%d", w, h)
	}
}

func TestLabelPolicy(t *testing.T) {
	r := New(10, 10)
	host := &graph.Node{Kind: graph.KindHost}
	quiet := &graph.Node{Kind: graph.KindExternal, Count: 1}
	busy := &graph.Node{Kind: graph.KindExternal, Count: 2}

	if !r.labelQualifies(host, false) {
		t.Error("hosts always carry labels")
	}
	if r.labelQualifies(quiet, false) {
		t.Error("quiet external should not carry a label")
	}
	if !r.labelQualifies(quiet, true) {
		t.Error("highlighted nodes always carry labels")
	}
	if !r.labelQualifies(busy, false) {
		t.Error("busy external should carry a label")
	}
}

func TestFrameBackgroundNotBlank(t *testing.T) {
	r := New(64, 64)
	img := r.Frame(nil, viewport.New(), State{})
	rgba, ok := img.(*image.RGBA)
	if !ok {
		t.Fatalf("unexpected image type %T", img)
	}
	// The background fill must leave no fully transparent pixels.
	if _, _, _, a := rgba.At(32, 32).RGBA(); a == 0 {
		t.Error("center pixel is transparent, background not painted")
	}
}
