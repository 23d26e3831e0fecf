// Package graph holds the topology graph mutated by the physics simulation
// and read by the renderer and hit-tester. One Graph is live at a time; it
// is built fresh per dataset load and discarded wholesale on the next.
package graph

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// Kind classifies a node for coloring and label policy.
type Kind string

const (
	// KindHost is an endpoint present in the hunt inventory.
	KindHost Kind = "host"
	// KindExternal is a remote endpoint synthesized from a connection whose
	// target is not a known host.
	KindExternal Kind = "external"
)

// Meta carries display-only host attributes. The simulation never reads it.
type Meta struct {
	Hostname string
	FQDN     string
	IPs      []string
	OS       string
	Users    []string
	Datasets []string
}

// Node is one graph vertex. Pos and Vel are in world space and are mutated
// in place by the simulation and by drag interactions.
type Node struct {
	ID     string
	Label  string
	Pos    r2.Vec
	Vel    r2.Vec
	Radius float64
	Kind   Kind
	Count  int
	Pinned bool
	Meta   Meta
}

// Edge is an undirected weighted connection. Weight scales rendering
// thickness and opacity only; layout distance is weight-independent.
// Edges are immutable once built.
type Edge struct {
	Source string
	Target string
	Weight int
}

// Graph is the live topology. Nodes are pointers so the simulation,
// renderer and controller share one copy of position data.
type Graph struct {
	Nodes []*Node
	Edges []Edge

	byID map[string]*Node
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{byID: make(map[string]*Node)}
}

// AddNode appends a node, replacing nothing: adding a duplicate id is a
// programming error surfaced by Validate.
func (g *Graph) AddNode(n *Node) {
	g.Nodes = append(g.Nodes, n)
	if g.byID == nil {
		g.byID = make(map[string]*Node)
	}
	g.byID[n.ID] = n
}

// NodeByID returns the node with the given id, or nil.
func (g *Graph) NodeByID(id string) *Node {
	if g == nil {
		return nil
	}
	return g.byID[id]
}

// HasNode reports whether an id exists in the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.byID[id]
	return ok
}

// Validate checks the referential invariant: unique node ids and edge
// endpoints that resolve to nodes in this graph.
func (g *Graph) Validate() error {
	seen := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if seen[n.ID] {
			return fmt.Errorf("graph: duplicate node id %q", n.ID)
		}
		seen[n.ID] = true
	}
	for i, e := range g.Edges {
		if !seen[e.Source] {
			return fmt.Errorf("graph: edge %d source %q has no node", i, e.Source)
		}
		if !seen[e.Target] {
			return fmt.Errorf("graph: edge %d target %q has no node", i, e.Target)
		}
		if e.Weight < 1 {
			return fmt.Errorf("graph: edge %d weight %d < 1", i, e.Weight)
		}
	}
	return nil
}

// KineticEnergy returns the sum of squared node speeds. The simulation's
// settling behavior is observable as this quantity decaying toward zero.
func (g *Graph) KineticEnergy() float64 {
	var ke float64
	for _, n := range g.Nodes {
		ke += r2.Norm2(n.Vel)
	}
	return ke
}

// Touches reports whether the edge has the given node id as an endpoint.
func (e Edge) Touches(id string) bool {
	return id != "" && (e.Source == id || e.Target == id)
}
