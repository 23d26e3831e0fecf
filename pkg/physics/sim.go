// Package physics implements the spring-embedder layout simulation.
//
// Each step applies pairwise Coulomb-style repulsion, spring attraction
// along edges toward a fixed rest length, and a weak centering pull, then
// integrates damped velocities. The step cost is O(n²) in node count,
// which caps practical graphs at a few hundred nodes; that matches the
// inventory sizes the hunt dashboard produces.
//
// Pinned nodes still repel and attract their neighbors but never move.
package physics

import (
	"math"

	"github.com/vanderheijden86/huntmap/pkg/graph"
	"github.com/vanderheijden86/huntmap/pkg/metrics"

	"gonum.org/v1/gonum/spatial/r2"
)

// Tuning constants. Repulsion and Spring balance at an inter-node distance
// slightly above RestLength for a connected pair; the two-hosts settling
// test pins down that band.
const (
	Repulsion  = 6000.0
	Spring     = 0.06
	RestLength = 140.0
	Centering  = 0.004
	Damping    = 0.85

	// minDistance floors pair distances so coincident nodes cannot divide
	// by zero. A correctness requirement, not an optimization.
	minDistance = 1.0
)

// Live cooling schedule. A single simAlpha scalar decays geometrically per
// frame; below StopAlpha the system is settled and stepping stops.
const (
	ReheatAlpha = 0.15
	AlphaDecay  = 0.97
	StopAlpha   = 0.01
	floorAlpha  = 0.05
)

// Step runs one simulation iteration, mutating node positions and
// velocities in place. alpha scales every force, implementing the cooling
// schedule.
func Step(g *graph.Graph, cx, cy, alpha float64) {
	defer metrics.Timer(metrics.SimulationStep)()

	nodes := g.Nodes

	// Repulsion between all unordered pairs.
	for i := 0; i < len(nodes); i++ {
		a := nodes[i]
		for j := i + 1; j < len(nodes); j++ {
			b := nodes[j]
			if a.Pinned && b.Pinned {
				continue
			}
			d := r2.Sub(a.Pos, b.Pos)
			dist := math.Max(r2.Norm(d), minDistance)
			f := Repulsion * alpha / (dist * dist)
			push := r2.Scale(f/dist, d)
			if !a.Pinned {
				a.Vel = r2.Add(a.Vel, push)
			}
			if !b.Pinned {
				b.Vel = r2.Sub(b.Vel, push)
			}
		}
	}

	// Springs along edges. Rest length is constant regardless of edge
	// weight; weight drives rendering only, and changing that would make
	// layouts churn with traffic volume.
	for _, e := range g.Edges {
		a, b := g.NodeByID(e.Source), g.NodeByID(e.Target)
		if a == nil || b == nil {
			continue
		}
		d := r2.Sub(b.Pos, a.Pos)
		dist := math.Max(r2.Norm(d), minDistance)
		f := (dist - RestLength) * Spring * alpha
		pull := r2.Scale(f/dist, d)
		if !a.Pinned {
			a.Vel = r2.Add(a.Vel, pull)
		}
		if !b.Pinned {
			b.Vel = r2.Sub(b.Vel, pull)
		}
	}

	center := r2.Vec{X: cx, Y: cy}
	for _, n := range nodes {
		if n.Pinned {
			continue
		}
		// Centering keeps disconnected components from drifting off canvas.
		n.Vel = r2.Add(n.Vel, r2.Scale(Centering*alpha, r2.Sub(center, n.Pos)))

		n.Vel = r2.Scale(Damping, n.Vel)
		n.Pos = r2.Add(n.Pos, n.Vel)
	}
}

// Simulate pre-settles a freshly built graph before first paint, so the
// user never sees the raw random scatter. Alpha anneals linearly from 1
// toward 0, floored at floorAlpha.
func Simulate(g *graph.Graph, cx, cy float64, steps int) {
	defer metrics.Timer(metrics.PreSettle)()

	for i := 0; i < steps; i++ {
		alpha := math.Max(floorAlpha, 1-float64(i)/float64(steps))
		Step(g, cx, cy, alpha)
	}
}

// Decay advances the live cooling schedule by one frame and reports the
// new alpha. At or below StopAlpha the caller stops stepping.
func Decay(alpha float64) float64 {
	return alpha * AlphaDecay
}

// Hot reports whether the schedule still demands simulation steps.
func Hot(alpha float64) bool {
	return alpha > StopAlpha
}

// Reheat raises alpha to at least ReheatAlpha after a perturbation (drag,
// unpin, install) so neighbors react smoothly instead of snapping.
func Reheat(alpha float64) float64 {
	return math.Max(alpha, ReheatAlpha)
}
