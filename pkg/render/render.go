// Package render paints the topology graph onto a raster surface each
// frame. The painter is a pure function of (graph, viewport, interaction
// state, animation clock); all layout math happens in world space and is
// projected through the viewport, so pan and zoom cost nothing extra.
//
// Paint order: background (fill, world-space dot grid, screen-space
// vignette), edges, nodes, labels. Highlighted nodes and their labels are
// drawn last so they are never occluded.
package render

import (
	"fmt"
	"image"
	"math"
	"time"

	"github.com/vanderheijden86/huntmap/pkg/graph"
	"github.com/vanderheijden86/huntmap/pkg/metrics"
	"github.com/vanderheijden86/huntmap/pkg/viewport"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/basicfont"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	gridSpacing = 48.0 // world units
	gridMinPx   = 8.0  // skip the grid when dots would pack tighter than this

	edgeBowFrac = 0.15
	edgeMaxBow  = 36.0
	dashPeriod  = 10.0 // dash travel in px per second of animation clock

	glowPad    = 8.0
	dimAlpha   = 0.15
	labelPadX  = 6.0
	labelLineH = 13.0
	labelGap   = 4.0
)

// State is the per-frame interaction input to the painter.
type State struct {
	HoveredID  string
	SelectedID string
	Search     string
	Clock      time.Duration
}

// Renderer owns the backing raster surface. It holds no graph state; the
// same renderer serves successive graphs across dataset reloads.
type Renderer struct {
	dc     *gg.Context
	width  int
	height int
}

// New creates a renderer with a backing surface of the given pixel size.
func New(width, height int) *Renderer {
	r := &Renderer{}
	r.Resize(width, height)
	return r
}

// Resize replaces the backing surface. Called by the controller when the
// host surface changes size or pixel density; the next Frame call uses the
// new dimensions.
func (r *Renderer) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	r.width, r.height = width, height
	r.dc = gg.NewContext(width, height)
	r.dc.SetFontFace(basicfont.Face7x13)
}

// Size returns the backing surface dimensions in pixels.
func (r *Renderer) Size() (int, int) {
	return r.width, r.height
}

// Frame paints one frame and returns the backing image. The image is
// reused across frames; callers must not retain it past the next call.
func (r *Renderer) Frame(g *graph.Graph, vp viewport.Viewport, st State) image.Image {
	defer metrics.Timer(metrics.FrameRender)()

	r.drawBackground(vp)
	if g == nil {
		return r.dc.Image()
	}

	matches := MatchSet(g, st.Search)
	highlight := func(n *graph.Node) bool {
		if n.ID == st.HoveredID || n.ID == st.SelectedID {
			return true
		}
		return matches != nil && matches[n.ID]
	}
	dimmed := func(n *graph.Node) bool {
		return matches != nil && !matches[n.ID]
	}

	r.drawEdges(g, vp, st)

	// Two passes so highlighted nodes and their labels paint over the rest.
	var deferred []*graph.Node
	for _, n := range g.Nodes {
		if highlight(n) {
			deferred = append(deferred, n)
			continue
		}
		r.drawNode(n, vp, false, dimmed(n))
	}
	for _, n := range deferred {
		r.drawNode(n, vp, true, false)
	}
	for _, n := range g.Nodes {
		if highlight(n) {
			continue
		}
		if dimmed(n) {
			continue // dimmed nodes carry no label at all
		}
		if r.labelQualifies(n, false) {
			r.drawLabel(n, vp, false)
		}
	}
	for _, n := range deferred {
		r.drawLabel(n, vp, true)
	}

	return r.dc.Image()
}

func (r *Renderer) drawBackground(vp viewport.Viewport) {
	dc := r.dc
	dc.SetColor(colorBg)
	dc.Clear()

	// Dot grid in world space so it pans and zooms with the content.
	if gridSpacing*vp.Scale >= gridMinPx {
		topLeft := vp.ScreenToWorld(r2.Vec{X: 0, Y: 0})
		botRight := vp.ScreenToWorld(r2.Vec{X: float64(r.width), Y: float64(r.height)})
		dc.SetColor(colorGrid)
		for gx := math.Floor(topLeft.X/gridSpacing) * gridSpacing; gx <= botRight.X; gx += gridSpacing {
			for gy := math.Floor(topLeft.Y/gridSpacing) * gridSpacing; gy <= botRight.Y; gy += gridSpacing {
				p := vp.WorldToScreen(r2.Vec{X: gx, Y: gy})
				dc.DrawCircle(p.X, p.Y, 1)
			}
		}
		dc.Fill()
	}

	// Radial vignette in screen space.
	cx, cy := float64(r.width)/2, float64(r.height)/2
	outer := math.Hypot(cx, cy)
	grad := gg.NewRadialGradient(cx, cy, outer*0.45, cx, cy, outer)
	grad.AddColorStop(0, withAlpha(colorVignette, 0))
	grad.AddColorStop(1, colorVignette)
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, float64(r.width), float64(r.height))
	dc.Fill()
}

func (r *Renderer) drawEdges(g *graph.Graph, vp viewport.Viewport, st State) {
	dc := r.dc
	for _, e := range g.Edges {
		a, b := g.NodeByID(e.Source), g.NodeByID(e.Target)
		if a == nil || b == nil {
			continue
		}
		p1 := vp.WorldToScreen(a.Pos)
		p2 := vp.WorldToScreen(b.Pos)

		// Quadratic curve bowed perpendicular to the chord; the bow keeps
		// dense fan-outs readable where straight lines would overlap.
		chord := r2.Sub(p2, p1)
		chordLen := r2.Norm(chord)
		if chordLen < 1 {
			continue
		}
		bow := math.Min(edgeMaxBow, chordLen*edgeBowFrac)
		perp := r2.Scale(bow/chordLen, r2.Vec{X: -chord.Y, Y: chord.X})
		mid := r2.Scale(0.5, r2.Add(p1, p2))
		ctrl := r2.Add(mid, perp)

		active := e.Touches(st.HoveredID) || e.Touches(st.SelectedID)
		if active {
			// Soft glow pass under the dashed stroke.
			dc.SetColor(withAlpha(colorHighlight, 0.25))
			dc.SetLineWidth(5)
			dc.MoveTo(p1.X, p1.Y)
			dc.QuadraticTo(ctrl.X, ctrl.Y, p2.X, p2.Y)
			dc.Stroke()

			dc.SetColor(withAlpha(colorHighlight, 0.9))
			dc.SetLineWidth(1.6)
			dc.SetDash(6, 4)
			dc.SetDashOffset(-st.Clock.Seconds() * dashPeriod)
			dc.MoveTo(p1.X, p1.Y)
			dc.QuadraticTo(ctrl.X, ctrl.Y, p2.X, p2.Y)
			dc.Stroke()
			dc.SetDash()
			continue
		}

		alpha := math.Min(0.15+0.05*float64(e.Weight), 0.45)
		width := math.Min(1+0.3*float64(e.Weight), 3.5)
		dc.SetColor(withAlpha(colorEdge, alpha))
		dc.SetLineWidth(width)
		dc.MoveTo(p1.X, p1.Y)
		dc.QuadraticTo(ctrl.X, ctrl.Y, p2.X, p2.Y)
		dc.Stroke()
	}
}

func (r *Renderer) drawNode(n *graph.Node, vp viewport.Viewport, highlighted, dim bool) {
	dc := r.dc
	p := vp.WorldToScreen(n.Pos)
	radius := n.Radius * vp.Scale
	if radius < 1.5 {
		radius = 1.5
	}

	base, core := colorHost, colorHostCore
	if n.Kind == graph.KindExternal {
		base, core = colorExternal, colorExternalCore
	}

	if highlighted {
		halo := gg.NewRadialGradient(p.X, p.Y, radius, p.X, p.Y, radius+glowPad*vp.Scale)
		halo.AddColorStop(0, withAlpha(colorHighlight, 0.6))
		halo.AddColorStop(1, withAlpha(colorHighlight, 0))
		dc.SetFillStyle(halo)
		dc.DrawCircle(p.X, p.Y, radius+glowPad*vp.Scale)
		dc.Fill()
	}

	alpha := 1.0
	if dim {
		alpha = dimAlpha
	}
	fill := gg.NewRadialGradient(p.X-radius*0.3, p.Y-radius*0.3, radius*0.1, p.X, p.Y, radius)
	if highlighted {
		fill.AddColorStop(0, withAlpha(core, alpha))
		fill.AddColorStop(1, withAlpha(colorHighlight, alpha))
	} else {
		fill.AddColorStop(0, withAlpha(core, alpha))
		fill.AddColorStop(1, withAlpha(base, alpha*0.85))
	}
	dc.SetFillStyle(fill)
	dc.DrawCircle(p.X, p.Y, radius)
	dc.Fill()

	if n.Pinned {
		dc.SetColor(withAlpha(colorPinDot, alpha))
		dc.DrawCircle(p.X, p.Y, math.Max(2, radius*0.15))
		dc.Fill()
	}
}

// labelQualifies mirrors the label policy: hosts always, highlighted nodes
// always, external endpoints once they carry enough activity.
func (r *Renderer) labelQualifies(n *graph.Node, highlighted bool) bool {
	return n.Kind == graph.KindHost || highlighted || n.Count >= 2
}

func (r *Renderer) drawLabel(n *graph.Node, vp viewport.Viewport, highlighted bool) {
	if !r.labelQualifies(n, highlighted) {
		return
	}
	dc := r.dc
	p := vp.WorldToScreen(n.Pos)

	line1 := n.Label
	line2 := labelDetail(n)

	// Labels live in screen space with a fixed bitmap face: constant pixel
	// size at every zoom level, which is the inverse-scaling the canvas
	// needs to stay legible without text growing unboundedly.
	w1, _ := dc.MeasureString(line1)
	w2, _ := dc.MeasureString(line2)
	w := math.Max(w1, w2) + 2*labelPadX
	h := 2*labelLineH + labelGap

	x := p.X - w/2
	y := p.Y - n.Radius*vp.Scale - h - labelGap

	dc.SetColor(colorLabelBG)
	dc.DrawRoundedRectangle(x, y, w, h, 4)
	dc.Fill()
	border := colorLabelBorder
	if highlighted {
		border = colorHighlight
	}
	dc.SetColor(border)
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(x, y, w, h, 4)
	dc.Stroke()

	dc.SetColor(colorLabelText)
	dc.DrawStringAnchored(line1, p.X, y+labelLineH-3, 0.5, 0.5)
	dc.SetColor(colorLabelSubtle)
	dc.DrawStringAnchored(line2, p.X, y+2*labelLineH-3+labelGap/2, 0.5, 0.5)
}

// labelDetail picks the second label line: first IP, then OS, then the
// activity count.
func labelDetail(n *graph.Node) string {
	if len(n.Meta.IPs) > 0 {
		return n.Meta.IPs[0]
	}
	if n.Meta.OS != "" {
		return n.Meta.OS
	}
	return fmt.Sprintf("%d conns", n.Count)
}
