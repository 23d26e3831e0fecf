// Package export writes still snapshots of the topology view. PNG goes
// through the live renderer so the file matches the screen exactly; SVG is
// drawn directly so the output stays scalable for reports.
package export

import (
	"fmt"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"time"

	svg "github.com/ajstarks/svgo"

	"github.com/vanderheijden86/huntmap/pkg/graph"
	"github.com/vanderheijden86/huntmap/pkg/metrics"
	"github.com/vanderheijden86/huntmap/pkg/render"
	"github.com/vanderheijden86/huntmap/pkg/viewport"

	"gonum.org/v1/gonum/spatial/r2"
)

// Options controls a snapshot export.
type Options struct {
	Width  int
	Height int
	// Title is printed in the header block, typically the hunt id.
	Title string
	// Timestamp overrides time.Now for deterministic output in tests.
	Timestamp time.Time
}

func (o *Options) defaults() {
	if o.Width <= 0 {
		o.Width = 1600
	}
	if o.Height <= 0 {
		o.Height = 1000
	}
	if o.Timestamp.IsZero() {
		o.Timestamp = time.Now()
	}
}

// Filename returns the conventional snapshot name for the given extension.
func Filename(dir, title string, ts time.Time, ext string) string {
	if title == "" {
		title = "topology"
	}
	return filepath.Join(dir, fmt.Sprintf("hm-%s-%s.%s", title, ts.Format("20060102-150405"), ext))
}

// WritePNG renders the graph through the frame painter and writes a PNG.
func WritePNG(path string, g *graph.Graph, vp viewport.Viewport, st render.State, opts Options) error {
	defer metrics.Timer(metrics.SnapshotExport)()
	opts.defaults()

	r := render.New(opts.Width, opts.Height)
	img := r.Frame(g, vp, st)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("export: encode png: %w", err)
	}
	return nil
}

// WriteSVG writes a scalable snapshot of the graph. The drawing mirrors
// the raster painter: bowed edges, gradient-free filled nodes, labels for
// hosts and busy externals.
func WriteSVG(path string, g *graph.Graph, vp viewport.Viewport, opts Options) error {
	defer metrics.Timer(metrics.SnapshotExport)()
	opts.defaults()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}
	defer f.Close()

	canvas := svg.New(f)
	canvas.Start(opts.Width, opts.Height)
	canvas.Rect(0, 0, opts.Width, opts.Height, "fill:#0f0f1a")

	if g != nil {
		writeSVGEdges(canvas, g, vp)
		writeSVGNodes(canvas, g, vp)
	}
	writeSVGHeader(canvas, g, opts)

	canvas.End()
	return nil
}

func writeSVGEdges(canvas *svg.SVG, g *graph.Graph, vp viewport.Viewport) {
	for _, e := range g.Edges {
		a, b := g.NodeByID(e.Source), g.NodeByID(e.Target)
		if a == nil || b == nil {
			continue
		}
		p1 := vp.WorldToScreen(a.Pos)
		p2 := vp.WorldToScreen(b.Pos)
		chord := r2.Sub(p2, p1)
		chordLen := r2.Norm(chord)
		if chordLen < 1 {
			continue
		}
		bow := math.Min(36, chordLen*0.15)
		perp := r2.Scale(bow/chordLen, r2.Vec{X: -chord.Y, Y: chord.X})
		mid := r2.Scale(0.5, r2.Add(p1, p2))
		ctrl := r2.Add(mid, perp)

		alpha := math.Min(0.15+0.05*float64(e.Weight), 0.45)
		width := math.Min(1+0.3*float64(e.Weight), 3.5)
		canvas.Path(
			fmt.Sprintf("M%.1f,%.1f Q%.1f,%.1f %.1f,%.1f", p1.X, p1.Y, ctrl.X, ctrl.Y, p2.X, p2.Y),
			fmt.Sprintf("fill:none;stroke:#94a3b8;stroke-opacity:%.2f;stroke-width:%.1f", alpha, width),
		)
	}
}

func writeSVGNodes(canvas *svg.SVG, g *graph.Graph, vp viewport.Viewport) {
	for _, n := range g.Nodes {
		p := vp.WorldToScreen(n.Pos)
		radius := math.Max(1.5, n.Radius*vp.Scale)
		fill := "#22d3ee"
		if n.Kind == graph.KindExternal {
			fill = "#f97316"
		}
		canvas.Circle(int(p.X), int(p.Y), int(radius),
			fmt.Sprintf("fill:%s;fill-opacity:0.85;stroke:%s;stroke-width:1", fill, fill))

		if n.Kind == graph.KindHost || n.Count >= 2 {
			canvas.Text(int(p.X), int(p.Y-radius-6), n.Label,
				"fill:#e2e8f0;font-family:monospace;font-size:12px;text-anchor:middle")
		}
	}
}

func writeSVGHeader(canvas *svg.SVG, g *graph.Graph, opts Options) {
	hosts, externals := 0, 0
	if g != nil {
		for _, n := range g.Nodes {
			if n.Kind == graph.KindHost {
				hosts++
			} else {
				externals++
			}
		}
	}
	edges := 0
	if g != nil {
		edges = len(g.Edges)
	}
	title := opts.Title
	if title == "" {
		title = "topology"
	}
	canvas.Text(16, 28, fmt.Sprintf("hm · %s", title),
		"fill:#e2e8f0;font-family:monospace;font-size:16px;font-weight:bold")
	canvas.Text(16, 48,
		fmt.Sprintf("%d hosts · %d externals · %d connections · %s",
			hosts, externals, edges, opts.Timestamp.Format("2006-01-02 15:04:05")),
		"fill:#64748b;font-family:monospace;font-size:12px")
}
