// Command hm is an interactive network-topology visualizer for hunt
// inventories. It renders hosts and their observed connections as a
// force-directed graph in the terminal, with pan, zoom, drag, search and
// snapshot export.
//
// Usage:
//
//	hm --source hunt.db --hunt hunt-2024
//	hm --source snapshot.json
//	hm --source hunt.db --export topology.png   # headless snapshot
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/pprof"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/vanderheijden86/huntmap/internal/datasource"
	"github.com/vanderheijden86/huntmap/pkg/config"
	"github.com/vanderheijden86/huntmap/pkg/controller"
	"github.com/vanderheijden86/huntmap/pkg/debug"
	"github.com/vanderheijden86/huntmap/pkg/export"
	"github.com/vanderheijden86/huntmap/pkg/graph"
	"github.com/vanderheijden86/huntmap/pkg/inventory"
	"github.com/vanderheijden86/huntmap/pkg/physics"
	"github.com/vanderheijden86/huntmap/pkg/render"
	"github.com/vanderheijden86/huntmap/pkg/ui"
	"github.com/vanderheijden86/huntmap/pkg/version"
	"github.com/vanderheijden86/huntmap/pkg/watcher"
)

const (
	exportWidth  = 1600
	exportHeight = 1000
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "hm:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		sourcePath  = flag.String("source", "", "inventory source: hunt database (.db) or snapshot (.json)")
		huntID      = flag.String("hunt", "", "hunt id to load")
		exportPath  = flag.String("export", "", "write a snapshot (.png or .svg) and exit without a TUI")
		noWatch     = flag.Bool("no-watch", false, "disable auto-refresh on source file changes")
		cpuProfile  = flag.String("cpu-profile", "", "write a CPU profile to this file")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("hm", version.Version)
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		// A broken config file should not lock the user out.
		fmt.Fprintln(os.Stderr, "hm: warning:", err)
		cfg = config.DefaultConfig()
	}
	if *sourcePath == "" {
		*sourcePath = cfg.Source
	}
	if *huntID == "" {
		*huntID = cfg.Hunt
	}
	if *sourcePath == "" {
		return errors.New("no inventory source: pass --source or set source in " + config.ConfigPath())
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			return fmt.Errorf("creating profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("starting profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	src, err := datasource.Select(*sourcePath)
	if err != nil {
		return err
	}
	debug.Log("selected source: %s (%s)", src.Path, src.Type)

	inv, err := src.Open()
	if err != nil {
		return err
	}
	if closer, ok := inv.(io.Closer); ok {
		defer closer.Close()
	}

	if *exportPath != "" {
		return headlessExport(inv, *huntID, *exportPath)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("stdout is not a terminal (use --export for headless snapshots)")
	}

	var w *watcher.Watcher
	if cfg.Watch && !*noWatch {
		w = watcher.New(src.Path)
		if err := w.Start(context.Background()); err != nil {
			return err
		}
		defer w.Stop()
	}

	p := tea.NewProgram(ui.New(cfg, inv, *huntID, w),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)
	_, err = p.Run()
	return err
}

// headlessExport fetches, lays out and writes one snapshot without starting
// the TUI. Used from scripts and CI.
func headlessExport(src inventory.Source, huntID, path string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	snap, err := src.Fetch(ctx, huntID)
	if err != nil {
		return err
	}
	if len(snap.Hosts) == 0 {
		return inventory.ErrEmptySnapshot
	}

	g := graph.Build(snap, graph.BuildOptions{Width: exportWidth, Height: exportHeight})
	physics.Simulate(g, exportWidth/2, exportHeight/2, controller.PreSettleSteps)
	vp := export.FitViewport(g, exportWidth, exportHeight)
	opts := export.Options{Width: exportWidth, Height: exportHeight, Title: huntID}

	switch filepath.Ext(path) {
	case ".png":
		return export.WritePNG(path, g, vp, render.State{}, opts)
	case ".svg":
		return export.WriteSVG(path, g, vp, opts)
	default:
		return fmt.Errorf("export: unsupported format %q (want .png or .svg)", filepath.Ext(path))
	}
}
