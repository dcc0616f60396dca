package ui

import (
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/jamgantt/pkg/geometry"
	"github.com/vanderheijden86/jamgantt/pkg/scale"
)

// cellStyle is a cell's colours. Unset colours use the terminal default.
type cellStyle struct {
	fg, bg       color.RGBA
	hasFg, hasBg bool
}

type cell struct {
	r  rune // 0 marks the second half of a wide rune
	st cellStyle
}

// Canvas rasterises plot-space geometry onto a grid of terminal cells. Rows
// run top to bottom while time grows upwards, as in the plot.
type Canvas struct {
	w, h  int
	x, y  scale.Bounds
	cells []cell
}

// NewCanvas returns a blank w×h canvas covering x × y.
func NewCanvas(w, h int, x, y scale.Bounds) *Canvas {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	c := &Canvas{w: w, h: h, x: x, y: y, cells: make([]cell, w*h)}
	for i := range c.cells {
		c.cells[i].r = ' '
	}
	return c
}

// Size returns the canvas dimensions in cells.
func (c *Canvas) Size() (int, int) {
	return c.w, c.h
}

// CellCenter returns the plot-space point at the centre of a cell.
func (c *Canvas) CellCenter(col, row int) geometry.Point {
	return geometry.Point{
		X: c.x.Min + (float64(col)+0.5)/float64(c.w)*c.x.Width(),
		Y: c.y.Max - (float64(row)+0.5)/float64(c.h)*c.y.Width(),
	}
}

// CellAt returns the cell containing p.
func (c *Canvas) CellAt(p geometry.Point) (col, row int, ok bool) {
	if !(c.x.Width() > 0) || !(c.y.Width() > 0) {
		return 0, 0, false
	}
	col = int(math.Floor((p.X - c.x.Min) / c.x.Width() * float64(c.w)))
	row = int(math.Floor((c.y.Max - p.Y) / c.y.Width() * float64(c.h)))
	// The top and right edges belong to the last cell.
	if col == c.w && p.X == c.x.Max {
		col--
	}
	if row == -1 && p.Y == c.y.Max {
		row = 0
	}
	return col, row, col >= 0 && col < c.w && row >= 0 && row < c.h
}

func (c *Canvas) at(col, row int) *cell {
	if col < 0 || col >= c.w || row < 0 || row >= c.h {
		return nil
	}
	return &c.cells[row*c.w+col]
}

// Set writes one rune.
func (c *Canvas) Set(col, row int, r rune, st cellStyle) {
	if cl := c.at(col, row); cl != nil {
		cl.r = r
		cl.st = st
	}
}

// Rune returns the rune at a cell, or 0 outside the canvas.
func (c *Canvas) Rune(col, row int) rune {
	if cl := c.at(col, row); cl != nil {
		return cl.r
	}
	return 0
}

// FillPolygon paints every cell whose centre lies inside poly.
func (c *Canvas) FillPolygon(poly geometry.Polygon, r rune, st cellStyle) int {
	if len(poly) < 3 {
		return 0
	}
	bx, by := poly.BoundingBox()
	c0, r1, _ := c.CellAt(geometry.Point{X: bx.Min, Y: by.Min})
	c1, r0, _ := c.CellAt(geometry.Point{X: bx.Max, Y: by.Max})
	c0, c1 = clampInt(c0-1, 0, c.w-1), clampInt(c1+1, 0, c.w-1)
	r0, r1 = clampInt(r0-1, 0, c.h-1), clampInt(r1+1, 0, c.h-1)

	n := 0
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			p := c.CellCenter(col, row)
			if geometry.ContainsPoint(poly, p.X, p.Y) {
				c.Set(col, row, r, st)
				n++
			}
		}
	}
	return n
}

// StrokePolygon draws the edges of poly.
func (c *Canvas) StrokePolygon(poly geometry.Polygon, st cellStyle) {
	for i := range poly {
		a, b := poly[i], poly[(i+1)%len(poly)]
		c.line(a, b, st)
	}
}

func (c *Canvas) line(a, b geometry.Point, st cellStyle) {
	r := '•'
	switch {
	case a.Y == b.Y:
		r = '─'
	case a.X == b.X:
		r = '│'
	}
	dx := math.Abs(b.X-a.X) / c.x.Width() * float64(c.w)
	dy := math.Abs(b.Y-a.Y) / c.y.Width() * float64(c.h)
	steps := int(math.Ceil(2*math.Max(dx, dy))) + 1
	if steps > 4*(c.w+c.h) {
		steps = 4 * (c.w + c.h)
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		p := geometry.Point{X: a.X + t*(b.X-a.X), Y: a.Y + t*(b.Y-a.Y)}
		col, row, ok := c.CellAt(p)
		if !ok {
			continue
		}
		cur := c.Rune(col, row)
		switch {
		case cur == '─' && r == '│', cur == '│' && r == '─', cur == '┼':
			c.Set(col, row, '┼', st)
		default:
			c.Set(col, row, r, st)
		}
	}
}

// HLine draws a horizontal rule at plot height y.
func (c *Canvas) HLine(y float64, r rune, st cellStyle) {
	_, row, ok := c.CellAt(geometry.Point{X: c.x.Min, Y: y})
	if !ok {
		return
	}
	for col := 0; col < c.w; col++ {
		c.Set(col, row, r, st)
	}
}

// Text writes s centred on p, one line per "\n"-separated segment going
// down from p.
func (c *Canvas) Text(p geometry.Point, s string, st cellStyle) {
	col0, row, _ := c.CellAt(p)
	// CellAt reports ok=false off-canvas; partial labels are still drawn.
	if p.X < c.x.Min || p.X > c.x.Max {
		return
	}
	for i, line := range strings.Split(s, "\n") {
		c.textAt(col0-runewidth.StringWidth(line)/2, row+i, line, st)
	}
}

// TextLeft writes s starting at p.
func (c *Canvas) TextLeft(p geometry.Point, s string, st cellStyle) {
	col, row, ok := c.CellAt(p)
	if !ok {
		return
	}
	c.textAt(col, row, s, st)
}

func (c *Canvas) textAt(col, row int, s string, st cellStyle) {
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if col+w > c.w {
			return
		}
		c.Set(col, row, r, st)
		if w == 2 {
			c.Set(col+1, row, 0, st)
		}
		col += w
	}
}

// PlainRows returns the canvas as unstyled text.
func (c *Canvas) PlainRows() []string {
	rows := make([]string, c.h)
	var sb strings.Builder
	for row := 0; row < c.h; row++ {
		sb.Reset()
		for col := 0; col < c.w; col++ {
			if r := c.cells[row*c.w+col].r; r != 0 {
				sb.WriteRune(r)
			}
		}
		rows[row] = sb.String()
	}
	return rows
}

// Rows returns the canvas rendered with lipgloss, one string per row. Runs
// of equally styled cells share one style application.
func (c *Canvas) Rows() []string {
	cache := map[cellStyle]lipgloss.Style{}
	styleFor := func(st cellStyle) lipgloss.Style {
		if s, ok := cache[st]; ok {
			return s
		}
		s := lipgloss.NewStyle()
		if st.hasFg {
			s = s.Foreground(ThemeFg(hexColor(st.fg)))
		}
		if st.hasBg {
			s = s.Background(ThemeBg(hexColor(st.bg)))
		}
		cache[st] = s
		return s
	}

	rows := make([]string, c.h)
	var sb, run strings.Builder
	for row := 0; row < c.h; row++ {
		sb.Reset()
		run.Reset()
		var cur cellStyle
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if !cur.hasFg && !cur.hasBg {
				sb.WriteString(run.String())
			} else {
				sb.WriteString(styleFor(cur).Render(run.String()))
			}
			run.Reset()
		}
		for col := 0; col < c.w; col++ {
			cl := c.cells[row*c.w+col]
			if cl.r == 0 {
				continue
			}
			if cl.st != cur {
				flush()
				cur = cl.st
			}
			run.WriteRune(cl.r)
		}
		flush()
		rows[row] = sb.String()
	}
	return rows
}

func fgStyle(c color.RGBA) cellStyle {
	return cellStyle{fg: c, hasFg: true}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
