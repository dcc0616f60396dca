package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/jamgantt/pkg/chart"
	"github.com/vanderheijden86/jamgantt/pkg/geometry"
	"github.com/vanderheijden86/jamgantt/pkg/metrics"
	"github.com/vanderheijden86/jamgantt/pkg/model"
	"github.com/vanderheijden86/jamgantt/pkg/scale"
)

// plotLayout places the canvas on screen.
type plotLayout struct {
	col0, row0 int // canvas origin
	w, h       int // canvas size
	miniRows   int // mini plot rows, divider included
}

func (m Model) layout() plotLayout {
	w := m.width - yGutterWidth - 1 - sidePanelWidth
	if w < minPlotWidth {
		w = minPlotWidth
	}
	mini := 0
	if m.miniPlot && len(m.frame.Tasks) > 0 {
		mini = len(m.frame.Tasks)
		if mini > miniPlotMax {
			mini = miniPlotMax
		}
		mini++
	}
	// header, x labels, bottom border, footer
	h := m.height - headerHeight - xAxisHeight - 1 - footerHeight - mini
	if h < minPlotHeight {
		h = minPlotHeight
	}
	return plotLayout{col0: yGutterWidth + 1, row0: headerHeight, w: w, h: h, miniRows: mini}
}

// renderCanvas paints f over the X range x. Paint order: receiver shading,
// band outlines, the TimeMax line, zone labels, then tasks.
func renderCanvas(f chart.Frame, x scale.Bounds, w, h int) *Canvas {
	c := NewCanvas(w, h, x, chart.TimeAxisBounds())

	for _, z := range f.Zones {
		if z.Kind == geometry.RxZone {
			c.FillPolygon(z.Area, '░', fgStyle(plotReceiverFg))
		}
	}
	// The receiver zone's hairline outline is not drawn at cell resolution.
	for _, z := range f.Zones {
		if z.Kind == geometry.BandZone {
			c.StrokePolygon(z.Area, fgStyle(z.Stroke.Color))
		}
	}
	c.HLine(model.TimeMax, '╌', fgStyle(plotLimitFg))
	for _, z := range f.Zones {
		if z.Label != nil {
			c.Text(z.Label.Anchor, z.Label.Text, fgStyle(z.Label.Color))
		}
	}
	for _, t := range f.Tasks {
		if c.FillPolygon(t.Area, '█', fgStyle(t.Fill)) == 0 {
			// Thinner than a cell: mark its centre so it stays visible.
			bx, by := t.Area.BoundingBox()
			if col, row, ok := c.CellAt(geometry.Point{X: bx.Center(), Y: by.Center()}); ok {
				c.Set(col, row, '▌', fgStyle(t.Fill))
			}
		}
	}
	return c
}

func (m Model) View() string {
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	l := m.layout()

	stop := metrics.Timer(metrics.CanvasRender)
	c := renderCanvas(m.frame, m.xRange, l.w, l.h)
	if m.mouse != nil {
		c.Set(m.mouse.col, m.mouse.row, '┼', fgStyle(plotCursorFg))
	}
	rows := c.Rows()
	stop()

	plot := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderYGutter(c, l.h),
		PlotStyle.Render(strings.Join(rows, "\n")),
	)
	plot = lipgloss.JoinVertical(lipgloss.Left, plot, m.renderXLabels(c))
	if l.miniRows > 0 {
		plot = lipgloss.JoinVertical(lipgloss.Left, plot, m.renderMiniPlot(l.w))
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, plot, m.renderPanel(l.h+xAxisHeight+1+l.miniRows))
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderFooter())
}

func (m Model) renderHeader() string {
	zoom := "all bands"
	if m.frame.ZoomBand != nil {
		zoom = model.Bands()[*m.frame.ZoomBand].Label()
	}
	title := m.theme.Header.Render("jg · " + m.opts.Title)
	info := m.theme.MutedText.Render(fmt.Sprintf(" %s │ %s │ %s", m.session.Mode(), zoom, m.xRangeLabel()))
	return truncateStyled(title+info, m.width)
}

func (m Model) xRangeLabel() string {
	f := scale.Formatter(m.session.Mode())
	return f(m.xRange.Min) + " – " + f(m.xRange.Max)
}

// renderYGutter right-aligns the time tick labels against the plot.
func (m Model) renderYGutter(c *Canvas, h int) string {
	lines := make([]string, h+1) // +1 for the bottom border row
	axis := m.frame.YAxis
	if axis.Format == nil {
		axis.Format = scale.FormatTime
		axis.Ticks = scale.GridTicks(chart.TimeAxisBounds(), scale.Linear, 12)
	}
	for _, t := range axis.Ticks {
		_, row, ok := c.CellAt(geometry.Point{X: m.xRange.Min, Y: t})
		if !ok {
			continue
		}
		lines[row] = axis.Format(t)
	}
	for i := range lines {
		lines[i] = padLeft(truncate(lines[i], yGutterWidth-1), yGutterWidth-1) + " "
	}
	return m.theme.MutedText.Render(strings.Join(lines, "\n"))
}

// renderXLabels places frequency tick labels under their columns, dropping
// labels that would collide with the previous one.
func (m Model) renderXLabels(c *Canvas) string {
	w, _ := c.Size()
	maxTicks := w / 10
	if maxTicks < 2 {
		maxTicks = 2
	}
	mode := m.session.Mode()
	format := scale.Formatter(mode)

	line := []rune(strings.Repeat(" ", yGutterWidth+1+w))
	next := 0
	for _, t := range scale.GridTicks(m.xRange, mode, maxTicks) {
		col, _, ok := c.CellAt(geometry.Point{X: t, Y: chart.TimeAxisBounds().Center()})
		if !ok {
			continue
		}
		label := []rune(format(t))
		start := yGutterWidth + 1 + col - len(label)/2
		if start < next || start < 0 || start+len(label) > len(line) {
			continue
		}
		copy(line[start:], label)
		next = start + len(label) + 1
	}
	return m.theme.MutedText.Render(string(line))
}

// renderMiniPlot draws one row per task across the shared X range.
func (m Model) renderMiniPlot(w int) string {
	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", yGutterWidth+1))
	sb.WriteString(RenderDivider(w))

	tasks := m.frame.Tasks
	more := 0
	if len(tasks) > miniPlotMax {
		more = len(tasks) - miniPlotMax + 1
		tasks = tasks[:miniPlotMax-1]
	}
	for _, t := range tasks {
		row := NewCanvas(w, 1, m.xRange, scale.Bounds{Min: 0, Max: 1})
		lo := scale.ToPlotX(t.Task.FreqStart, m.frame.Mode)
		hi := scale.ToPlotX(t.Task.FreqEnd, m.frame.Mode)
		for col := 0; col < w; col++ {
			if x := row.CellCenter(col, 0).X; x >= lo && x <= hi {
				row.Set(col, 0, '▬', fgStyle(t.Fill))
			}
		}
		sb.WriteString("\n")
		sb.WriteString(m.theme.MutedText.Render(padRight(truncate(t.Task.Name, yGutterWidth), yGutterWidth+1)))
		sb.WriteString(row.Rows()[0])
	}
	if more > 0 {
		sb.WriteString("\n")
		sb.WriteString(m.theme.MutedText.Render(fmt.Sprintf("%s+%d more", strings.Repeat(" ", yGutterWidth+1), more)))
	}
	return sb.String()
}

func (m Model) renderPanel(height int) string {
	inner := sidePanelWidth - 4 // border + padding
	var sections []string

	title := func(s string) string { return SectionTitleStyle.Render(s) }
	kv := func(k, v string) string {
		return m.theme.MutedText.Render(padRight(k, 9)) + truncate(v, inner-9)
	}

	f := m.frame
	last := f.LastApplied
	if last == "" {
		last = "-"
	}
	sections = append(sections, strings.Join([]string{
		title("Plan"),
		kv("Tasks", fmt.Sprintf("%d", f.TaskCount)),
		kv("Scale", m.session.Mode().String()),
		kv("Updates", fmt.Sprintf("%d", f.Applied)),
		kv("Last", last),
	}, "\n"))

	bands := []string{title("Bands")}
	for i, b := range model.Bands() {
		line := fmt.Sprintf("%d %s %s", i+1, m.theme.BandSwatch(b), truncate(b.Label(), inner-4))
		if f.ZoomBand != nil && *f.ZoomBand == i {
			line = m.theme.Selected.Width(inner).Render(line)
		}
		bands = append(bands, line)
	}
	sections = append(sections, strings.Join(bands, "\n"))

	label, col := m.theme.FeedStatus(f.FeedDisconnected)
	sections = append(sections, title("Feed")+"\n"+m.theme.Renderer.NewStyle().Foreground(col).Render("● "+label))

	if f.Hover != nil {
		sections = append(sections, title("Pointer")+"\n"+strings.Join(fitLines(hoverText(f.Hover), inner), "\n"))
	}

	if metrics.Enabled() {
		timing := []string{title("Timing")}
		for _, st := range metrics.PanelStages() {
			if w := st.Window(); w.Samples > 0 {
				timing = append(timing, truncate(w.Summary(), inner))
			}
		}
		budget := frameBudget(metrics.FrameBuild.Window().P95, metrics.CanvasRender.Window().P95, m.opts.FrameInterval)
		timing = append(timing, RenderMiniBar(budget, inner-8, m.theme)+" "+formatMs(m.opts.FrameInterval))
		sections = append(sections, strings.Join(timing, "\n"))
	}

	content := strings.Join(sections, "\n\n")
	return PanelStyle.
		Width(sidePanelWidth - 2).
		Height(height - 2).
		MaxHeight(height).
		Render(content)
}

func (m Model) renderFooter() string {
	if m.statusMsg != "" {
		st := m.theme.InfoText
		if m.statusIsError {
			st = m.theme.Status
		}
		return truncateStyled(st.Render(m.statusMsg), m.width)
	}
	return m.help.View(m.keys)
}

func (m Model) renderHelpOverlay() string {
	content := m.helpView
	if content == "" {
		content = m.renderHelp()
	}
	box := m.theme.Tooltip.Render(content)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// truncateStyled cuts a styled line to width cells.
func truncateStyled(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}

// frameBudget reports how much of the frame interval d building and
// rendering a frame take.
func frameBudget(build, render, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(build+render) / float64(d)
}
