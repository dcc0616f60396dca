// Package ui is the Bubble Tea front end for a chart.Session.
package ui

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/glamour"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/jamgantt/pkg/chart"
	"github.com/vanderheijden86/jamgantt/pkg/export"
	"github.com/vanderheijden86/jamgantt/pkg/geometry"
	"github.com/vanderheijden86/jamgantt/pkg/logging"
	"github.com/vanderheijden86/jamgantt/pkg/scale"
)

const (
	defaultFrameInterval = time.Second / 30
	defaultWidth         = 120
	defaultHeight        = 40

	panFraction  = 0.1
	zoomInFactor = 0.8
	minZoomRatio = 200.0 // narrowest view is domain width / minZoomRatio
)

// Options configures a Model.
type Options struct {
	FrameInterval  time.Duration
	SnapshotDir    string
	SnapshotFormat string // png, svg or md
	MiniPlot       bool
	Title          string
	Logger         *slog.Logger
}

// frameTickMsg drives one Session.Frame call.
type frameTickMsg struct{}

// snapshotDoneMsg reports the result of an s-key snapshot.
type snapshotDoneMsg struct {
	path string
	err  error
}

func frameTickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return frameTickMsg{}
	})
}

// cellPos is a mouse position relative to the canvas origin.
type cellPos struct {
	col, row int
}

// Model renders a chart.Session and feeds user input back into it.
type Model struct {
	session *chart.Session
	opts    Options
	logger  *slog.Logger
	theme   Theme
	keys    keyMap
	help    help.Model

	width, height int

	// xRange is the widget's X range in plot space. Forced bounds replace
	// it; otherwise pan and zoom move it.
	xRange   scale.Bounds
	mouse    *cellPos
	frame    chart.Frame
	hasFrame bool

	showHelp bool
	helpView string
	miniPlot bool

	statusMsg     string
	statusIsError bool

	snapshotFn  func(export.SnapshotOptions) (string, error)
	clipboardFn func(string) error
}

// NewModel returns a model driving session. The model starts with default
// dimensions so the first frame renders before any WindowSizeMsg.
func NewModel(session *chart.Session, opts Options) Model {
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = defaultFrameInterval
	}
	if opts.SnapshotFormat == "" {
		opts.SnapshotFormat = "png"
	}
	if opts.Title == "" {
		opts.Title = "Jamming plan"
	}
	return Model{
		session:     session,
		opts:        opts,
		logger:      logging.OrNop(opts.Logger),
		theme:       DefaultTheme(lipgloss.DefaultRenderer()),
		keys:        newKeyMap(),
		help:        help.New(),
		width:       defaultWidth,
		height:      defaultHeight,
		xRange:      scale.DomainBounds(session.Mode()),
		miniPlot:    opts.MiniPlot,
		snapshotFn:  export.SaveSnapshot,
		clipboardFn: clipboard.WriteAll,
	}
}

func (m Model) Init() tea.Cmd {
	return frameTickCmd(m.opts.FrameInterval)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameTickMsg:
		m.tick()
		return m, frameTickCmd(m.opts.FrameInterval)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.helpView = ""
		return m, nil

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case snapshotDoneMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("Snapshot failed: %v", msg.err), true)
			m.logger.Warn("snapshot failed", "error", msg.err.Error())
		} else {
			m.setStatus("Snapshot saved to "+msg.path, false)
			m.logger.Info("snapshot saved", "path", msg.path)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// tick builds the next frame and reconciles the widget X range with it.
func (m *Model) tick() {
	var ptr *geometry.Point
	if m.mouse != nil {
		p := m.plotPoint(*m.mouse)
		ptr = &p
	}
	f := m.session.Frame(chart.FrameInput{Pointer: ptr})
	if f.ForcedBounds != nil {
		m.xRange = *f.ForcedBounds
	}
	m.session.ObserveBounds(m.xRange)
	m.frame = f
	m.hasFrame = true
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		switch {
		case key.Matches(msg, m.keys.Quit) && msg.String() == "ctrl+c":
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help), msg.String() == "esc", msg.String() == "q":
			m.showHelp = false
		}
		return m, nil
	}

	m.statusMsg = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		if m.helpView == "" {
			m.helpView = m.renderHelp()
		}
	case key.Matches(msg, m.keys.ToggleScale):
		m.session.ToggleScale()
		m.setStatus("Scale: "+m.session.Mode().String(), false)
	case key.Matches(msg, m.keys.ZoomBand):
		i := int(msg.Runes[0] - '1')
		if err := m.session.SelectBand(i); err != nil {
			m.setStatus(err.Error(), true)
		}
	case key.Matches(msg, m.keys.ShowAll):
		m.session.ShowAll()
	case key.Matches(msg, m.keys.PanLeft):
		m.pan(-panFraction)
	case key.Matches(msg, m.keys.PanRight):
		m.pan(panFraction)
	case key.Matches(msg, m.keys.ZoomIn):
		m.zoom(m.xRange.Center(), zoomInFactor)
	case key.Matches(msg, m.keys.ZoomOut):
		m.zoom(m.xRange.Center(), 1/zoomInFactor)
	case key.Matches(msg, m.keys.MiniPlot):
		m.miniPlot = !m.miniPlot
	case key.Matches(msg, m.keys.Copy):
		m.copyHover()
	case key.Matches(msg, m.keys.Snapshot):
		if !m.hasFrame {
			m.setStatus("Nothing to snapshot yet", true)
			return m, nil
		}
		return m, m.snapshotCmd()
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	l := m.layout()
	col, row := msg.X-l.col0, msg.Y-l.row0
	inside := col >= 0 && col < l.w && row >= 0 && row < l.h
	if !inside {
		m.mouse = nil
		return
	}
	m.mouse = &cellPos{col: col, row: row}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.zoom(m.plotPoint(*m.mouse).X, zoomInFactor)
	case tea.MouseButtonWheelDown:
		m.zoom(m.plotPoint(*m.mouse).X, 1/zoomInFactor)
	}
}

// plotPoint maps a canvas cell to plot space.
func (m Model) plotPoint(c cellPos) geometry.Point {
	l := m.layout()
	cv := Canvas{w: l.w, h: l.h, x: m.xRange, y: chart.TimeAxisBounds()}
	return cv.CellCenter(c.col, c.row)
}

func (m *Model) pan(fraction float64) {
	d := m.xRange.Width() * fraction
	m.xRange = clampRange(scale.Bounds{Min: m.xRange.Min + d, Max: m.xRange.Max + d}, scale.DomainBounds(m.session.Mode()))
}

// zoom scales the X range by factor about the plot-space position c.
func (m *Model) zoom(c, factor float64) {
	b := scale.Bounds{
		Min: c - (c-m.xRange.Min)*factor,
		Max: c + (m.xRange.Max-c)*factor,
	}
	m.xRange = clampRange(b, scale.DomainBounds(m.session.Mode()))
}

// clampRange keeps b inside domain and no narrower than
// domain.Width()/minZoomRatio.
func clampRange(b, domain scale.Bounds) scale.Bounds {
	w := b.Width()
	if w >= domain.Width() {
		return domain
	}
	if minW := domain.Width() / minZoomRatio; w < minW {
		c := b.Center()
		w = minW
		b = scale.Bounds{Min: c - w/2, Max: c + w/2}
	}
	if b.Min < domain.Min {
		b = scale.Bounds{Min: domain.Min, Max: domain.Min + w}
	}
	if b.Max > domain.Max {
		b = scale.Bounds{Min: domain.Max - w, Max: domain.Max}
	}
	return b
}

// hoverText is what y copies: the hovered task, else the zones and readout.
func hoverText(h *geometry.Hover) string {
	if h == nil {
		return ""
	}
	if h.Task != nil {
		return h.Task.Name + "\n" + h.Task.Describe()
	}
	if len(h.Zones) > 0 {
		return strings.Join(h.Zones, "\n") + "\n" + h.Readout
	}
	return h.Readout
}

func (m *Model) copyHover() {
	text := hoverText(m.frame.Hover)
	if text == "" {
		m.setStatus("Nothing under the pointer to copy", true)
		return
	}
	if err := m.clipboardFn(text); err != nil {
		m.setStatus(fmt.Sprintf("Clipboard error: %v", err), true)
		return
	}
	m.setStatus("Copied readout to clipboard", false)
}

// snapshotFrame is the current frame as displayed, without pointer state.
func (m Model) snapshotFrame() chart.Frame {
	f := m.frame
	f.ForcedBounds = nil
	f.Hover = nil
	f.XAxis.Bounds = m.xRange
	f.XAxis.Ticks = scale.GridTicks(m.xRange, f.Mode, 10)
	return f
}

func (m Model) snapshotCmd() tea.Cmd {
	opts := export.SnapshotOptions{
		Path:   filepath.Join(m.opts.SnapshotDir, "jg-"+time.Now().Format("20060102-150405")+"."+m.opts.SnapshotFormat),
		Format: m.opts.SnapshotFormat,
		Title:  m.opts.Title,
		Frame:  m.snapshotFrame(),
	}
	save := m.snapshotFn
	return func() tea.Msg {
		path, err := save(opts)
		return snapshotDoneMsg{path: path, err: err}
	}
}

func (m *Model) setStatus(msg string, isError bool) {
	m.statusMsg = msg
	m.statusIsError = isError
}

// helpMarkdown lists every binding of the full help as a markdown table.
func (m Model) helpMarkdown() string {
	var sb strings.Builder
	sb.WriteString("# Keys\n\n| Key | Action |\n|---|---|\n")
	for _, group := range m.keys.FullHelp() {
		for _, b := range group {
			h := b.Help()
			fmt.Fprintf(&sb, "| `%s` | %s |\n", h.Key, h.Desc)
		}
	}
	sb.WriteString("\nMouse motion shows the task or zones under the pointer; the wheel zooms about it.\n")
	return sb.String()
}

func (m Model) renderHelp() string {
	md := m.helpMarkdown()
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(60),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n ")
}
