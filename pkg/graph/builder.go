package graph

import (
	"math"
	"math/rand"
	"time"

	"github.com/vanderheijden86/huntmap/pkg/inventory"
	"github.com/vanderheijden86/huntmap/pkg/metrics"

	"gonum.org/v1/gonum/spatial/r2"
)

// Node sizing. Host radius grows with the square root of activity so a
// chatty host stands out without dwarfing the canvas.
const (
	MinRadius      = 16.0
	MaxRadius      = 42.0
	RadiusScale    = 2.2
	ExternalRadius = 9.0

	// jitterFrac scatters initial positions around the canvas center.
	// Starting collinear or coincident stalls the repulsion solver, so the
	// jitter is load-bearing, not cosmetic.
	jitterFrac = 0.15
)

// BuildOptions controls graph construction.
type BuildOptions struct {
	// Width and Height are the canvas extent used to center and jitter
	// initial positions.
	Width, Height float64
	// Rand supplies the jitter. Nil means a time-seeded source; tests
	// inject a fixed seed for reproducible settling.
	Rand *rand.Rand
}

// HostRadius maps an activity count to a node radius, monotonic
// non-decreasing and clamped to [MinRadius, MaxRadius].
func HostRadius(activity int) float64 {
	if activity < 0 {
		activity = 0
	}
	r := MinRadius + RadiusScale*math.Sqrt(float64(activity))
	return math.Min(r, MaxRadius)
}

// Build converts an inventory snapshot into a Graph. Every host becomes a
// KindHost node; connection targets that are not host ids become
// deduplicated KindExternal nodes. An empty snapshot yields an empty graph.
func Build(snap *inventory.Snapshot, opts BuildOptions) *Graph {
	defer metrics.Timer(metrics.GraphBuild)()

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	cx, cy := opts.Width/2, opts.Height/2
	jx := opts.Width * jitterFrac
	jy := opts.Height * jitterFrac
	jitter := func() r2.Vec {
		return r2.Vec{
			X: cx + (rng.Float64()*2-1)*jx,
			Y: cy + (rng.Float64()*2-1)*jy,
		}
	}

	g := New()
	for _, h := range snap.Hosts {
		label := h.Hostname
		if label == "" {
			label = h.ID
		}
		g.AddNode(&Node{
			ID:     h.ID,
			Label:  label,
			Pos:    jitter(),
			Radius: HostRadius(h.ActivityCount),
			Kind:   KindHost,
			Count:  h.ActivityCount,
			Meta: Meta{
				Hostname: h.Hostname,
				FQDN:     h.FQDN,
				IPs:      h.IPs,
				OS:       h.OS,
				Users:    h.Users,
				Datasets: h.Datasets,
			},
		})
	}

	for _, c := range snap.Connections {
		if !g.HasNode(c.Target) {
			label := c.TargetIP
			if label == "" {
				label = c.Target
			}
			n := &Node{
				ID:     c.Target,
				Label:  label,
				Pos:    jitter(),
				Radius: ExternalRadius,
				Kind:   KindExternal,
				Count:  c.Count,
			}
			if c.TargetIP != "" {
				n.Meta.IPs = []string{c.TargetIP}
			}
			g.AddNode(n)
		}
		w := c.Count
		if w < 1 {
			w = 1
		}
		g.Edges = append(g.Edges, Edge{Source: c.Source, Target: c.Target, Weight: w})
	}
	return g
}
