package ui

import (
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"pgregory.net/rapid"

	"github.com/vanderheijden86/jamgantt/pkg/chart"
	"github.com/vanderheijden86/jamgantt/pkg/export"
	"github.com/vanderheijden86/jamgantt/pkg/geometry"
	"github.com/vanderheijden86/jamgantt/pkg/ingest"
	"github.com/vanderheijden86/jamgantt/pkg/model"
	"github.com/vanderheijden86/jamgantt/pkg/scale"
)

type closedFeed struct{}

func (closedFeed) TryRecv() (ingest.Token, error) {
	return ingest.Token{}, ingest.ErrDisconnected
}

func newTestModel(t *testing.T, s *chart.Session) Model {
	t.Helper()
	if s == nil {
		s = chart.NewSession(nil)
	}
	m := NewModel(s, Options{SnapshotDir: t.TempDir(), SnapshotFormat: "svg"})
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func press(t *testing.T, m Model, k string) Model {
	t.Helper()
	return update(t, m, keyMsg(k))
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func tick(t *testing.T, m Model) Model {
	t.Helper()
	return update(t, m, frameTickMsg{})
}

// mouseAt moves the pointer to the screen cell over plot point p.
func mouseAt(t *testing.T, m Model, p geometry.Point, button tea.MouseButton) Model {
	t.Helper()
	l := m.layout()
	c := Canvas{w: l.w, h: l.h, x: m.xRange, y: chart.TimeAxisBounds()}
	col, row, ok := c.CellAt(p)
	if !ok {
		t.Fatalf("point %v is outside the plot", p)
	}
	return update(t, m, tea.MouseMsg{X: l.col0 + col, Y: l.row0 + row, Button: button, Action: tea.MouseActionMotion})
}

func TestInitReturnsTick(t *testing.T) {
	m := NewModel(chart.NewSession(nil), Options{})
	if m.Init() == nil {
		t.Fatal("Init should schedule the first frame")
	}
	if m.opts.FrameInterval != defaultFrameInterval || m.opts.SnapshotFormat != "png" {
		t.Errorf("defaults not applied: %+v", m.opts)
	}
}

func TestFrameTickAppliesForcedBounds(t *testing.T) {
	m := newTestModel(t, nil)
	m.xRange = scale.Bounds{Min: 0, Max: 1}

	updated, cmd := m.Update(frameTickMsg{})
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("tick should reschedule itself")
	}
	if want := scale.DomainBounds(scale.Linear); m.xRange != want {
		t.Errorf("xRange = %v, want %v", m.xRange, want)
	}
	if !m.hasFrame || m.frame.ForcedBounds == nil {
		t.Error("first frame should carry forced bounds")
	}

	// No new request: the widget range stands and is observed.
	m.xRange = scale.Bounds{Min: 1000, Max: 2000}
	m = tick(t, m)
	if m.xRange != (scale.Bounds{Min: 1000, Max: 2000}) {
		t.Errorf("xRange overridden without a request: %v", m.xRange)
	}
	m = tick(t, m)
	if m.frame.XAxis.Bounds != m.xRange {
		t.Errorf("axis built from %v, want observed %v", m.frame.XAxis.Bounds, m.xRange)
	}
}

func TestBandKeysZoom(t *testing.T) {
	m := tick(t, newTestModel(t, nil))

	m = tick(t, press(t, m, "2"))
	want := scale.BandBounds(model.Bands()[1], scale.Linear)
	if m.xRange != want {
		t.Errorf("xRange = %v, want %v", m.xRange, want)
	}
	if m.frame.ZoomBand == nil || *m.frame.ZoomBand != 1 {
		t.Errorf("ZoomBand = %v", m.frame.ZoomBand)
	}

	m = tick(t, press(t, m, "a"))
	if m.xRange != scale.DomainBounds(scale.Linear) || m.frame.ZoomBand != nil {
		t.Errorf("show all: xRange %v zoom %v", m.xRange, m.frame.ZoomBand)
	}

	m = tick(t, press(t, m, "5"))
	m = tick(t, press(t, m, "0"))
	if m.frame.ZoomBand != nil {
		t.Error("0 should clear the zoom")
	}
}

func TestToggleScaleResetsView(t *testing.T) {
	m := tick(t, newTestModel(t, nil))
	m = tick(t, press(t, m, "3"))

	m = press(t, m, "l")
	if m.statusMsg != "Scale: log10" {
		t.Errorf("status = %q", m.statusMsg)
	}
	m = tick(t, m)
	if m.xRange != scale.DomainBounds(scale.Log10) {
		t.Errorf("xRange = %v, want log domain", m.xRange)
	}
	if m.frame.ZoomBand != nil {
		t.Error("scale change should drop the band zoom")
	}

	m = tick(t, press(t, m, "l"))
	if m.xRange != scale.DomainBounds(scale.Linear) {
		t.Errorf("xRange = %v, want linear domain", m.xRange)
	}
}

func TestPanAndZoomKeys(t *testing.T) {
	m := tick(t, newTestModel(t, nil))
	domain := scale.DomainBounds(scale.Linear)

	m = press(t, m, "left")
	if m.xRange != domain {
		t.Errorf("panning the full domain should be a no-op, got %v", m.xRange)
	}

	m = press(t, m, "+")
	zoomed := m.xRange
	if zoomed.Width() >= domain.Width() {
		t.Fatalf("zoom in did not narrow: %v", zoomed)
	}
	if zoomed.Center() != domain.Center() {
		t.Errorf("key zoom should keep the centre: %v", zoomed)
	}

	m = press(t, m, "right")
	if got := m.xRange.Min - zoomed.Min; got <= 0 {
		t.Errorf("pan right moved by %v", got)
	}
	if math.Abs(m.xRange.Width()-zoomed.Width()) > 1e-9 {
		t.Error("pan changed the width")
	}

	for i := 0; i < 20; i++ {
		m = press(t, m, "right")
	}
	if m.xRange.Max != domain.Max {
		t.Errorf("pan should stop at the domain edge, got %v", m.xRange)
	}

	for i := 0; i < 20; i++ {
		m = press(t, m, "-")
	}
	if m.xRange != domain {
		t.Errorf("zoom out should stop at the domain, got %v", m.xRange)
	}

	// The user's range is observed on the next frame and drives the axis
	// from the one after.
	m = press(t, m, "+")
	user := m.xRange
	m = tick(t, tick(t, m))
	if m.frame.XAxis.Bounds != user {
		t.Errorf("axis %v, want user range %v", m.frame.XAxis.Bounds, user)
	}
}

func TestClampRange(t *testing.T) {
	domain := scale.Bounds{Min: 0, Max: 100}
	c := scale.Bounds{Min: 50, Max: 50.1}.Center()
	tests := []struct {
		name string
		in   scale.Bounds
		want scale.Bounds
	}{
		{"inside", scale.Bounds{Min: 10, Max: 20}, scale.Bounds{Min: 10, Max: 20}},
		{"too wide", scale.Bounds{Min: -10, Max: 200}, domain},
		{"left overflow", scale.Bounds{Min: -5, Max: 5}, scale.Bounds{Min: 0, Max: 10}},
		{"right overflow", scale.Bounds{Min: 95, Max: 105}, scale.Bounds{Min: 90, Max: 100}},
		{"too narrow", scale.Bounds{Min: 50, Max: 50.1}, scale.Bounds{Min: c - 0.25, Max: c + 0.25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := clampRange(tt.in, domain)
			if got != tt.want {
				t.Errorf("clampRange(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestClampRangeStaysInDomain(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		mode := scale.Mode(rapid.IntRange(0, 1).Draw(t, "mode"))
		domain := scale.DomainBounds(mode)
		min := rapid.Float64Range(domain.Min-domain.Width(), domain.Max).Draw(t, "min")
		width := rapid.Float64Range(0, 3*domain.Width()).Draw(t, "width")

		got := clampRange(scale.Bounds{Min: min, Max: min + width}, domain)
		const eps = 1e-9
		if got.Min < domain.Min-eps || got.Max > domain.Max+eps {
			t.Fatalf("%v escapes %v", got, domain)
		}
		if got.Width() < domain.Width()/minZoomRatio-eps {
			t.Fatalf("%v narrower than the zoom limit", got)
		}
	})
}

func TestMouseHoverResolvesTask(t *testing.T) {
	s := chart.NewSession(nil)
	s.Apply(ingest.Token{Step: 0}) // Init capteurs: 100-300 MHz, 0-300 ms
	m := tick(t, newTestModel(t, s))

	m = mouseAt(t, m, geometry.Point{X: 200, Y: 150}, tea.MouseButtonNone)
	if m.mouse == nil {
		t.Fatal("pointer inside the plot was not tracked")
	}
	m = tick(t, m)
	h := m.frame.Hover
	if h == nil || h.Task == nil || h.Task.Name != "Init capteurs" {
		t.Fatalf("hover = %+v", h)
	}
	if !strings.Contains(m.View(), "Pointer") {
		t.Error("hover panel missing from view")
	}

	m = update(t, m, tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionMotion})
	if m.mouse != nil {
		t.Error("pointer outside the plot should clear hover")
	}
	m = tick(t, m)
	if m.frame.Hover != nil {
		t.Error("frame should carry no hover without a pointer")
	}
}

func TestMouseHoverZones(t *testing.T) {
	m := tick(t, newTestModel(t, nil))
	m = tick(t, mouseAt(t, m, geometry.Point{X: 3000, Y: 50}, tea.MouseButtonNone))

	h := m.frame.Hover
	if h == nil || h.Task != nil {
		t.Fatalf("hover = %+v", h)
	}
	joined := strings.Join(h.Zones, ",")
	if !strings.Contains(joined, "Receiver zone") || !strings.Contains(joined, model.BandA2400To6000.Label()) {
		t.Errorf("zones = %v", h.Zones)
	}
}

func TestMouseWheelZoomsAboutPointer(t *testing.T) {
	m := tick(t, newTestModel(t, nil))
	domain := m.xRange

	m = mouseAt(t, m, geometry.Point{X: 1000, Y: 500}, tea.MouseButtonWheelUp)
	if m.xRange.Width() >= domain.Width() {
		t.Fatalf("wheel up did not zoom in: %v", m.xRange)
	}
	if !m.xRange.Contains(1000) {
		t.Errorf("zoom lost the pointer: %v", m.xRange)
	}

	m = mouseAt(t, m, geometry.Point{X: 1000, Y: 500}, tea.MouseButtonWheelDown)
	m = mouseAt(t, m, geometry.Point{X: 1000, Y: 500}, tea.MouseButtonWheelDown)
	if m.xRange != domain {
		t.Errorf("wheel down should return to the domain, got %v", m.xRange)
	}
}

func TestCopyHover(t *testing.T) {
	s := chart.NewSession(nil)
	s.Apply(ingest.Token{Step: 1}) // Transmission: 1000-2500 MHz, 300-600 ms
	m := tick(t, newTestModel(t, s))

	var copied []string
	m.clipboardFn = func(s string) error {
		copied = append(copied, s)
		return nil
	}

	m = press(t, m, "y")
	if len(copied) != 0 || !m.statusIsError {
		t.Errorf("copy without pointer: copied %v, status %q", copied, m.statusMsg)
	}

	m = tick(t, mouseAt(t, m, geometry.Point{X: 1500, Y: 450}, tea.MouseButtonNone))
	m = press(t, m, "y")
	if len(copied) != 1 || !strings.HasPrefix(copied[0], "Transmission\nAmplifier: A1000_2500") {
		t.Fatalf("copied %q", copied)
	}
	if m.statusIsError {
		t.Errorf("status = %q", m.statusMsg)
	}

	m.clipboardFn = func(string) error { return errors.New("no clipboard") }
	m = press(t, m, "y")
	if !m.statusIsError || !strings.Contains(m.statusMsg, "no clipboard") {
		t.Errorf("status = %q", m.statusMsg)
	}
}

func TestHoverText(t *testing.T) {
	if hoverText(nil) != "" {
		t.Error("nil hover should copy nothing")
	}
	h := geometry.Hover{Readout: "50.0 MHz\n10.0 ms"}
	if got := hoverText(&h); got != h.Readout {
		t.Errorf("readout only = %q", got)
	}
	h.Zones = []string{"Receiver zone"}
	if got := hoverText(&h); got != "Receiver zone\n50.0 MHz\n10.0 ms" {
		t.Errorf("zones = %q", got)
	}
}

func TestSnapshotKey(t *testing.T) {
	m := newTestModel(t, nil)

	var got export.SnapshotOptions
	m.snapshotFn = func(opts export.SnapshotOptions) (string, error) {
		got = opts
		return opts.Path, nil
	}

	if _, cmd := m.Update(keyMsg("s")); cmd != nil {
		t.Error("snapshot before the first frame should be refused")
	}

	m = tick(t, m)
	m = press(t, m, "+")
	updated, cmd := m.Update(keyMsg("s"))
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("expected a snapshot command")
	}
	done := cmd()
	m = update(t, m, done)

	if filepath.Dir(got.Path) != m.opts.SnapshotDir || filepath.Ext(got.Path) != ".svg" {
		t.Errorf("path = %q", got.Path)
	}
	if got.Frame.XAxis.Bounds != m.xRange {
		t.Errorf("snapshot bounds %v, want widget range %v", got.Frame.XAxis.Bounds, m.xRange)
	}
	if got.Frame.Hover != nil || got.Frame.ForcedBounds != nil {
		t.Error("snapshot frame should not carry pointer or forced state")
	}
	if !strings.Contains(m.statusMsg, got.Path) || m.statusIsError {
		t.Errorf("status = %q", m.statusMsg)
	}

	m = update(t, m, snapshotDoneMsg{err: errors.New("disk full")})
	if !m.statusIsError || !strings.Contains(m.statusMsg, "disk full") {
		t.Errorf("status = %q", m.statusMsg)
	}
}

func TestSnapshotWritesFile(t *testing.T) {
	m := tick(t, newTestModel(t, nil))
	_, cmd := m.Update(keyMsg("s"))
	msg, ok := cmd().(snapshotDoneMsg)
	if !ok || msg.err != nil {
		t.Fatalf("snapshot = %+v", msg)
	}
	if filepath.Dir(msg.path) != m.opts.SnapshotDir {
		t.Errorf("written to %q", msg.path)
	}
}

func TestHelpToggle(t *testing.T) {
	m := tick(t, newTestModel(t, nil))

	md := m.helpMarkdown()
	for _, want := range []string{"toggle log scale", "zoom band", "copy readout", "snapshot"} {
		if !strings.Contains(md, want) {
			t.Errorf("help missing %q", want)
		}
	}

	m = press(t, m, "?")
	if !m.showHelp || m.helpView == "" {
		t.Fatal("? should open the rendered help")
	}
	if m.View() == "" {
		t.Error("help overlay is empty")
	}

	// Keys other than close are swallowed while help is shown.
	m = press(t, m, "l")
	if m.session.Mode() != scale.Linear {
		t.Error("l leaked through the help overlay")
	}
	m = press(t, m, "esc")
	if m.showHelp {
		t.Error("esc should close help")
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, nil)
	for _, k := range []string{"q", "ctrl+c"} {
		_, cmd := m.Update(keyMsg(k))
		if cmd == nil {
			t.Fatalf("%s: expected quit command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: expected tea.QuitMsg", k)
		}
	}
}

func TestViewShowsPlanAndFeedState(t *testing.T) {
	s := chart.NewSession(closedFeed{})
	s.Apply(ingest.Token{Step: 0})
	s.Apply(ingest.Token{Step: 1})
	m := NewModel(s, Options{MiniPlot: true, Title: "Test plan"})
	m = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 45})
	m = tick(t, m)

	if !m.frame.FeedDisconnected {
		t.Fatal("closed feed should be reported")
	}
	view := m.View()
	for _, want := range []string{"Test plan", "Tasks", "Bands", "disconnected", "Init ca", "Transmi", "MHz", "ms"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	l := m.layout()
	if l.miniRows != 3 {
		t.Errorf("miniRows = %d, want 2 tasks + divider", l.miniRows)
	}
	m = press(t, m, "m")
	if m.layout().miniRows != 0 {
		t.Error("m should hide the mini plot")
	}
}

func TestLayoutFitsWindow(t *testing.T) {
	m := tick(t, newTestModel(t, nil))
	l := m.layout()
	if got := l.col0 + l.w + sidePanelWidth; got != 120 {
		t.Errorf("width used = %d, want 120", got)
	}
	if got := l.row0 + l.h + xAxisHeight + 1 + footerHeight + l.miniRows; got != 40 {
		t.Errorf("height used = %d, want 40", got)
	}

	m = update(t, m, tea.WindowSizeMsg{Width: 10, Height: 5})
	l = m.layout()
	if l.w != minPlotWidth || l.h != minPlotHeight {
		t.Errorf("tiny window layout = %+v", l)
	}
	_ = m.View()
}

func TestFrameBudget(t *testing.T) {
	if got := frameBudget(5, 5, 20); got != 0.5 {
		t.Errorf("frameBudget = %v", got)
	}
	if got := frameBudget(5, 5, 0); got != 0 {
		t.Errorf("zero interval = %v", got)
	}
}
