package render

import (
	"fmt"
	"testing"

	"github.com/vanderheijden86/huntmap/pkg/graph"

	"pgregory.net/rapid"
)

func node(id, label, os string, ips, users []string) *graph.Node {
	return &graph.Node{
		ID:    id,
		Label: label,
		Meta:  graph.Meta{OS: os, IPs: ips, Users: users},
	}
}

func TestNodeMatchesFields(t *testing.T) {
	n := node("h1", "WS-Alpha", "Windows Server 2019",
		[]string{"10.0.1.5"}, []string{"svc_backup"})

	cases := []struct {
		query string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"alpha", true},
		{"WS-", true},
		{"windows", true},
		{"10.0.1", true},
		{"svc_", true},
		{"SVC_BACKUP", true},
		{"beta", false},
		{"192.168", false},
	}
	for _, c := range cases {
		if got := NodeMatches(n, c.query); got != c.want {
			t.Errorf("NodeMatches(%q) = %v, want %v", c.query, got, c.want)
		}
	}
}

func TestMatchSetEmptyQueryIsNil(t *testing.T) {
	g := graph.New()
	g.AddNode(node("a", "alpha", "", nil, nil))
	if MatchSet(g, "") != nil {
		t.Error("empty query must return nil (nobody dimmed)")
	}
	if MatchSet(g, "  \t") != nil {
		t.Error("whitespace query must return nil")
	}
}

func TestMatchSetNoMatches(t *testing.T) {
	g := graph.New()
	g.AddNode(node("a", "alpha", "", nil, nil))
	set := MatchSet(g, "zzz")
	if set == nil {
		t.Fatal("non-empty query must return a non-nil set")
	}
	if len(set) != 0 {
		t.Fatalf("expected no matches, got %v", set)
	}
}

// A non-empty query partitions the graph: every node is either in the match
// set or dimmed, and membership agrees with NodeMatches.
func TestMatchSetPartitionRapid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := graph.New()
		n := rapid.IntRange(1, 30).Draw(t, "n")
		for i := 0; i < n; i++ {
			g.AddNode(node(
				fmt.Sprintf("n%d", i),
				rapid.StringMatching(`[a-z]{1,8}`).Draw(t, "label"),
				rapid.StringMatching(`[a-z]{0,8}`).Draw(t, "os"),
				nil, nil,
			))
		}
		query := rapid.StringMatching(`[a-z]{1,4}`).Draw(t, "query")

		set := MatchSet(g, query)
		if set == nil {
			t.Fatal("non-empty query returned nil set")
		}
		for _, nd := range g.Nodes {
			if set[nd.ID] != NodeMatches(nd, query) {
				t.Fatalf("set membership for %s disagrees with NodeMatches", nd.ID)
			}
		}
	})
}
