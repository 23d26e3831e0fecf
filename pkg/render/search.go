package render

import (
	"strings"

	"github.com/vanderheijden86/huntmap/pkg/graph"
)

// NodeMatches reports whether the lowercase search string is a substring of
// the node's label, any metadata IP, any metadata user, or its OS string.
func NodeMatches(n *graph.Node, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(n.Label), q) {
		return true
	}
	if strings.Contains(strings.ToLower(n.Meta.OS), q) {
		return true
	}
	for _, ip := range n.Meta.IPs {
		if strings.Contains(strings.ToLower(ip), q) {
			return true
		}
	}
	for _, u := range n.Meta.Users {
		if strings.Contains(strings.ToLower(u), q) {
			return true
		}
	}
	return false
}

// MatchSet classifies every node against a search string. With a non-empty
// query the returned set partitions the graph exactly: members are matched,
// everyone else is dimmed. An empty query returns nil, meaning no node is
// dimmed. The set is recomputed every paint; it is cheap next to a frame.
func MatchSet(g *graph.Graph, query string) map[string]bool {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	set := make(map[string]bool)
	for _, n := range g.Nodes {
		if NodeMatches(n, query) {
			set[n.ID] = true
		}
	}
	return set
}
