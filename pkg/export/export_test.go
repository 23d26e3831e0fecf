package export

import (
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vanderheijden86/huntmap/pkg/render"
	"github.com/vanderheijden86/huntmap/pkg/testutil"
	"github.com/vanderheijden86/huntmap/pkg/viewport"
)

func TestWritePNG(t *testing.T) {
	g := testutil.GenerateGraph(testutil.DefaultGenOptions(), 640, 480)
	path := filepath.Join(t.TempDir(), "snap.png")

	opts := Options{Width: 640, Height: 480, Title: "hunt-1"}
	if err := WritePNG(path, g, viewport.New(), render.State{}, opts); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("output is not a decodable png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 640 || b.Dy() != 480 {
		t.Fatalf("png size = %dx%d", b.Dx(), b.Dy())
	}
}

func TestWriteSVG(t *testing.T) {
	g := testutil.GenerateGraph(testutil.DefaultGenOptions(), 640, 480)
	path := filepath.Join(t.TempDir(), "snap.svg")

	ts := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	opts := Options{Width: 800, Height: 600, Title: "hunt-1", Timestamp: ts}
	if err := WriteSVG(path, g, FitViewport(g, 800, 600), opts); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	body := string(data)
	for _, want := range []string{"<svg", "hunt-1", "<circle", "2026-08-25"} {
		if !strings.Contains(body, want) {
			t.Errorf("svg missing %q", want)
		}
	}
}

func TestWriteSVGNilGraph(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.svg")
	if err := WriteSVG(path, nil, viewport.New(), Options{}); err != nil {
		t.Fatalf("nil graph must still produce a header-only svg: %v", err)
	}
}

func TestFitViewportFramesAllNodes(t *testing.T) {
	g := testutil.GenerateGraph(testutil.GenOptions{Seed: 3, Hosts: 10, ExternalFanout: 2, CrossLinks: 4}, 2000, 2000)
	const w, h = 800, 600
	vp := FitViewport(g, w, h)

	for _, n := range g.Nodes {
		p := vp.WorldToScreen(n.Pos)
		if p.X < 0 || p.X > w || p.Y < 0 || p.Y > h {
			t.Fatalf("node %s projected off-surface: %v", n.ID, p)
		}
	}
	if vp.Scale < viewport.MinZoom || vp.Scale > viewport.MaxZoom {
		t.Fatalf("fit scale %v outside zoom bounds", vp.Scale)
	}
}

func TestFitViewportEmptyGraph(t *testing.T) {
	if vp := FitViewport(nil, 800, 600); vp != viewport.New() {
		t.Fatalf("nil graph fit = %+v, want identity", vp)
	}
}

func TestFilename(t *testing.T) {
	ts := time.Date(2026, 8, 25, 9, 30, 0, 0, time.UTC)
	got := Filename("/out", "hunt-1", ts, "png")
	if got != "/out/hm-hunt-1-20260825-093000.png" {
		t.Fatalf("Filename = %q", got)
	}
	if got := Filename(".", "", ts, "svg"); !strings.Contains(got, "topology") {
		t.Fatalf("empty title fallback: %q", got)
	}
}
