// Package ui hosts the terminal front end: a bubbletea program that paints
// the topology raster with half-block cells, translates terminal mouse
// events into pointer events for the controller, and drives the frame loop
// with tick commands. All state mutation happens inside Update, so the
// controller's single-writer contract holds for free.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/huntmap/pkg/config"
	"github.com/vanderheijden86/huntmap/pkg/controller"
	"github.com/vanderheijden86/huntmap/pkg/debug"
	"github.com/vanderheijden86/huntmap/pkg/export"
	"github.com/vanderheijden86/huntmap/pkg/graph"
	"github.com/vanderheijden86/huntmap/pkg/inventory"
	"github.com/vanderheijden86/huntmap/pkg/render"
	"github.com/vanderheijden86/huntmap/pkg/watcher"
)

const (
	statusRows        = 1
	detailPanelWidth  = 34
	doubleClickWindow = 400 * time.Millisecond
	fetchTimeout      = 30 * time.Second
	flashDuration     = 2 * time.Second
)

type state int

const (
	stateLoading state = iota
	stateError
	stateEmpty
	stateReady
)

// SnapshotMsg delivers a fetched inventory snapshot.
type SnapshotMsg struct {
	Gen  int
	Snap *inventory.Snapshot
}

// SnapshotErrorMsg delivers a fetch failure.
type SnapshotErrorMsg struct {
	Gen int
	Err error
}

// FileChangedMsg is sent when the inventory source changes on disk.
type FileChangedMsg struct{}

type frameTickMsg time.Time

type flashExpiredMsg struct{ seq int }

// tickScheduler satisfies controller.Scheduler with a plain flag; the model
// converts the flag into a tea.Tick command after every Update.
type tickScheduler struct{ armed bool }

func (s *tickScheduler) Arm()    { s.armed = true }
func (s *tickScheduler) Disarm() { s.armed = false }

// Model is the bubbletea model for the topology view.
type Model struct {
	cfg    config.Config
	source inventory.Source
	huntID string
	watch  *watcher.Watcher

	state state
	err   error
	gen   int

	ctrl  *controller.Controller
	rend  *render.Renderer
	sched *tickScheduler

	spin      spinner.Model
	search    textinput.Model
	searching bool

	width, height          int // terminal cells
	canvasCols, canvasRows int

	tickPending bool
	lastFrame   time.Time

	flash    string
	flashSeq int

	lastClickAt time.Time
	lastClickX  int
	lastClickY  int

	quitting bool
}

// New creates the model. The watcher may be nil when auto-refresh is off.
func New(cfg config.Config, source inventory.Source, huntID string, w *watcher.Watcher) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorAccent)

	ti := textinput.New()
	ti.Placeholder = "hostname, ip, os, user..."
	ti.Prompt = "/"
	ti.CharLimit = 64

	m := Model{
		cfg:    cfg,
		source: source,
		huntID: huntID,
		watch:  w,
		spin:   sp,
		search: ti,
		sched:  &tickScheduler{},
		width:  80,
		height: 24,
	}
	m.canvasCols, m.canvasRows = m.width, m.height-statusRows
	pw, ph := canvasPixels(m.canvasCols, m.canvasRows)
	m.rend = render.New(pw, ph)
	m.ctrl = controller.New(float64(pw), float64(ph))
	m.ctrl.SetScheduler(m.sched)
	m.ctrl.SetZoomLimits(cfg.View.MinZoom, cfg.View.MaxZoom)
	return m
}

// Init starts the spinner, the first fetch, and the watch loop.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spin.Tick, fetchCmd(m.source, m.huntID, m.gen)}
	if m.watch != nil {
		cmds = append(cmds, watchCmd(m.watch))
	}
	return tea.Batch(cmds...)
}

// fetchCmd fetches a snapshot in the background. Gen travels with the
// result so a reply from an abandoned fetch is discarded on arrival.
func fetchCmd(src inventory.Source, huntID string, gen int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		snap, err := src.Fetch(ctx, huntID)
		if err != nil {
			return SnapshotErrorMsg{Gen: gen, Err: err}
		}
		return SnapshotMsg{Gen: gen, Snap: snap}
	}
}

// watchCmd blocks on the next file-change signal.
func watchCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changes()
		return FileChangedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, m.maybeFrame()

	case spinner.TickMsg:
		if m.state != stateLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case SnapshotMsg:
		if msg.Gen != m.gen {
			debug.Log("ui: dropping stale snapshot (gen %d, want %d)", msg.Gen, m.gen)
			return m, nil
		}
		return m.installSnapshot(msg.Snap)

	case SnapshotErrorMsg:
		if msg.Gen != m.gen {
			return m, nil
		}
		m.state = stateError
		m.err = msg.Err
		m.ctrl.Teardown()
		return m, nil

	case FileChangedMsg:
		m.gen++
		m.setFlash("source changed, reloading...")
		cmds := []tea.Cmd{fetchCmd(m.source, m.huntID, m.gen), m.flashExpiry()}
		if m.watch != nil {
			cmds = append(cmds, watchCmd(m.watch))
		}
		return m, tea.Batch(cmds...)

	case frameTickMsg:
		m.tickPending = false
		now := time.Time(msg)
		dt := now.Sub(m.lastFrame)
		if m.lastFrame.IsZero() || dt < 0 || dt > time.Second {
			dt = m.frameInterval()
		}
		m.lastFrame = now
		m.ctrl.Tick(dt)
		return m, m.maybeFrame()

	case flashExpiredMsg:
		if msg.seq == m.flashSeq {
			m.flash = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	return m, nil
}

func (m Model) installSnapshot(snap *inventory.Snapshot) (Model, tea.Cmd) {
	if len(snap.Hosts) == 0 {
		m.state = stateEmpty
		m.err = inventory.ErrEmptySnapshot
		m.ctrl.Teardown()
		return m, nil
	}
	pw, ph := canvasPixels(m.canvasCols, m.canvasRows)
	g := graph.Build(snap, graph.BuildOptions{Width: float64(pw), Height: float64(ph)})
	m.ctrl.Install(g)
	m.state = stateReady
	m.err = nil
	return m, m.maybeFrame()
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.searching {
		switch msg.String() {
		case "enter":
			m.searching = false
			m.search.Blur()
			return m, nil
		case "esc":
			m.searching = false
			m.search.Blur()
			m.search.SetValue("")
			m.ctrl.SetSearch("")
			return m, nil
		default:
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			m.ctrl.SetSearch(m.search.Value())
			return m, cmd
		}
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		if m.watch != nil {
			m.watch.Stop()
		}
		m.ctrl.Teardown()
		return m, tea.Quit

	case "/":
		m.searching = true
		m.search.Focus()
		return m, textinput.Blink

	case "esc":
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.ctrl.SetSearch("")
			return m, nil
		}
		if m.ctrl.SelectedID() != "" {
			m.ctrl.ClearSelection()
			m.layout()
		}
		return m, nil

	case "+", "=":
		m.ctrl.ZoomIn()
		return m, nil

	case "-", "_":
		m.ctrl.ZoomOut()
		return m, nil

	case "0":
		m.ctrl.ResetView()
		return m, nil

	case "r", "R":
		m.gen++
		m.state = stateLoading
		return m, tea.Batch(fetchCmd(m.source, m.huntID, m.gen), m.spin.Tick)

	case "s":
		return m.exportSnapshot()

	case "y":
		if n := m.ctrl.Selected(); n != nil {
			if err := clipboard.WriteAll(n.ID); err != nil {
				m.setFlash("clipboard: " + err.Error())
			} else {
				m.setFlash("copied " + n.ID)
			}
			return m, m.flashExpiry()
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	if m.state != stateReady || msg.Y >= m.canvasRows || msg.X >= m.canvasCols {
		return m, nil
	}
	px, py := cellToPixel(msg.X, msg.Y)

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.ctrl.HandlePointer(controller.PointerEvent{Kind: controller.PointerWheel, X: px, Y: py, WheelDelta: 1})

	case msg.Button == tea.MouseButtonWheelDown:
		m.ctrl.HandlePointer(controller.PointerEvent{Kind: controller.PointerWheel, X: px, Y: py, WheelDelta: -1})

	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
		m.ctrl.HandlePointer(controller.PointerEvent{Kind: controller.PointerDown, X: px, Y: py})

	case msg.Action == tea.MouseActionMotion:
		m.ctrl.HandlePointer(controller.PointerEvent{Kind: controller.PointerMove, X: px, Y: py})

	case msg.Action == tea.MouseActionRelease:
		m.ctrl.HandlePointer(controller.PointerEvent{Kind: controller.PointerUp, X: px, Y: py})
		now := time.Now()
		if now.Sub(m.lastClickAt) < doubleClickWindow &&
			abs(msg.X-m.lastClickX) <= 1 && abs(msg.Y-m.lastClickY) <= 1 {
			m.ctrl.HandlePointer(controller.PointerEvent{Kind: controller.PointerDoubleClick, X: px, Y: py})
			m.lastClickAt = time.Time{}
		} else {
			m.lastClickAt = now
			m.lastClickX, m.lastClickY = msg.X, msg.Y
		}
		m.layout() // selection may have toggled the detail panel
	}
	return m, m.maybeFrame()
}

func (m Model) exportSnapshot() (Model, tea.Cmd) {
	g := m.ctrl.Graph()
	if g == nil {
		return m, nil
	}
	now := time.Now()
	opts := export.Options{Title: m.huntID, Timestamp: now}
	vp := export.FitViewport(g, 1600, 1000)
	st := render.State{
		HoveredID:  m.ctrl.HoveredID(),
		SelectedID: m.ctrl.SelectedID(),
		Search:     m.search.Value(),
	}
	pngPath := export.Filename(m.cfg.ExportDir, m.huntID, now, "png")
	svgPath := export.Filename(m.cfg.ExportDir, m.huntID, now, "svg")
	if err := export.WritePNG(pngPath, g, vp, st, opts); err != nil {
		m.setFlash("export: " + err.Error())
		return m, m.flashExpiry()
	}
	if err := export.WriteSVG(svgPath, g, vp, opts); err != nil {
		m.setFlash("export: " + err.Error())
		return m, m.flashExpiry()
	}
	m.setFlash("exported " + pngPath)
	return m, m.flashExpiry()
}

// layout recomputes the canvas cell grid from the terminal size and the
// detail panel, then resizes the raster and the controller to match.
func (m *Model) layout() {
	cols := m.width
	if m.ctrl.SelectedID() != "" && m.width > detailPanelWidth*2 {
		cols = m.width - detailPanelWidth
	}
	rows := m.height - statusRows
	if m.searching || m.search.Value() != "" {
		rows--
	}
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	if cols == m.canvasCols && rows == m.canvasRows {
		return
	}
	m.canvasCols, m.canvasRows = cols, rows
	pw, ph := canvasPixels(cols, rows)
	m.rend.Resize(pw, ph)
	m.ctrl.Resize(float64(pw), float64(ph))
}

func (m *Model) frameInterval() time.Duration {
	fps := m.cfg.View.FPS
	if fps <= 0 {
		fps = 30
	}
	return time.Second / time.Duration(fps)
}

// maybeFrame converts an armed scheduler into a single pending tick
// command. At most one tick is ever in flight.
func (m *Model) maybeFrame() tea.Cmd {
	if !m.sched.armed || m.tickPending {
		return nil
	}
	m.sched.armed = false
	m.tickPending = true
	return tea.Tick(m.frameInterval(), func(t time.Time) tea.Msg {
		return frameTickMsg(t)
	})
}

func (m *Model) setFlash(text string) {
	m.flash = text
	m.flashSeq++
}

func (m *Model) flashExpiry() tea.Cmd {
	seq := m.flashSeq
	return tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return flashExpiredMsg{seq: seq}
	})
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	switch m.state {
	case stateLoading:
		return loadingStyle.Render(m.spin.View() + " loading hunt " + m.huntID + "...")
	case stateError:
		return errorBannerStyle.Render("error: "+m.err.Error()) + "\n\n" +
			emptyStateStyle.Render("press R to retry, q to quit")
	case stateEmpty:
		return emptyStateStyle.Render("no hosts found for hunt "+m.huntID) + "\n" +
			emptyStateStyle.Render("press R to reload, q to quit")
	}

	st := render.State{
		HoveredID:  m.ctrl.HoveredID(),
		SelectedID: m.ctrl.SelectedID(),
		Search:     m.search.Value(),
		Clock:      m.ctrl.Clock(),
	}
	img := m.rend.Frame(m.ctrl.Graph(), m.ctrl.Viewport(), st)
	canvas := rasterToCells(img, m.canvasCols, m.canvasRows)

	body := canvas
	if n := m.ctrl.Selected(); n != nil && m.canvasCols < m.width {
		panel := m.detailPanel(n)
		body = lipgloss.JoinHorizontal(lipgloss.Top, canvas, panel)
	}

	var parts []string
	parts = append(parts, body)
	if m.searching || m.search.Value() != "" {
		parts = append(parts, m.searchBar())
	}
	parts = append(parts, m.statusBar())
	return strings.Join(parts, "\n")
}

func (m Model) searchBar() string {
	bar := searchPromptStyle.Render("search ") + m.search.View()
	if q := m.search.Value(); q != "" && m.ctrl.Graph() != nil {
		matches := render.MatchSet(m.ctrl.Graph(), q)
		bar += statusMutedStyle.Render(fmt.Sprintf("  %d match(es)", len(matches)))
	}
	return bar
}

func (m Model) statusBar() string {
	g := m.ctrl.Graph()
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
	left := statusKeyStyle.Render("hm") +
		statusBarStyle.Render(fmt.Sprintf("hunt %s · %d hosts · %d ext · zoom %.0f%%",
			m.huntID, hosts, externals, m.ctrl.Viewport().Scale*100))
	if m.flash != "" {
		return left + flashStyle.Render(" "+m.flash)
	}
	hints := "/ search · +/- zoom · 0 reset · s export · q quit"
	return left + statusMutedStyle.Render(" "+hints)
}

func (m Model) detailPanel(n *graph.Node) string {
	w := detailPanelWidth - 4 // border + padding
	trunc := func(s string) string { return runewidth.Truncate(s, w, "…") }

	var b strings.Builder
	b.WriteString(detailTitleStyle.Render(trunc(n.Label)) + "\n")
	row := func(k, v string) {
		if v == "" {
			return
		}
		b.WriteString(detailKeyStyle.Render(k+" ") + trunc(v) + "\n")
	}
	row("id", n.ID)
	row("fqdn", n.Meta.FQDN)
	row("ips", strings.Join(n.Meta.IPs, ", "))
	row("os", n.Meta.OS)
	row("users", strings.Join(n.Meta.Users, ", "))
	row("data", strings.Join(n.Meta.Datasets, ", "))
	if n.Kind == graph.KindHost {
		row("activity", fmt.Sprintf("%d events", n.Count))
	} else {
		row("conns", fmt.Sprintf("%d", n.Count))
	}
	if n.Pinned {
		b.WriteString(detailKeyStyle.Render("pinned") + " double-click to release\n")
	}
	b.WriteString("\n" + detailKeyStyle.Render("y copy id · esc close"))
	return detailPanelStyle.Width(detailPanelWidth - 2).Render(strings.TrimRight(b.String(), "\n"))
}

// abs is a tiny helper for cell distances.
func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
