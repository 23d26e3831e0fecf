package export

import (
	"math"

	"github.com/vanderheijden86/huntmap/pkg/graph"
	"github.com/vanderheijden86/huntmap/pkg/viewport"
)

const fitMargin = 60.0

// FitViewport returns a viewport that frames the whole graph on a surface
// of the given pixel size, with a margin so node glyphs and labels are not
// clipped at the edges.
func FitViewport(g *graph.Graph, width, height float64) viewport.Viewport {
	vp := viewport.New()
	if g == nil || len(g.Nodes) == 0 {
		return vp
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range g.Nodes {
		minX = math.Min(minX, n.Pos.X-n.Radius)
		minY = math.Min(minY, n.Pos.Y-n.Radius)
		maxX = math.Max(maxX, n.Pos.X+n.Radius)
		maxY = math.Max(maxY, n.Pos.Y+n.Radius)
	}

	bw := maxX - minX
	bh := maxY - minY
	scale := 1.0
	if bw > 0 && bh > 0 {
		scale = math.Min((width-2*fitMargin)/bw, (height-2*fitMargin)/bh)
	}
	scale = math.Max(viewport.MinZoom, math.Min(scale, viewport.MaxZoom))

	vp.Scale = scale
	vp.PanX = width/2 - (minX+bw/2)*scale
	vp.PanY = height/2 - (minY+bh/2)*scale
	return vp
}
