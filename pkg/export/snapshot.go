// Package export renders chart frames to static PNG or SVG images and to
// markdown plan reports.
package export

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	"github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/jamgantt/pkg/chart"
	"github.com/vanderheijden86/jamgantt/pkg/debug"
	"github.com/vanderheijden86/jamgantt/pkg/geometry"
	"github.com/vanderheijden86/jamgantt/pkg/metrics"
	"github.com/vanderheijden86/jamgantt/pkg/model"
	"github.com/vanderheijden86/jamgantt/pkg/scale"
)

// SnapshotOptions controls snapshot export.
type SnapshotOptions struct {
	Path   string      // Output path; format inferred from extension when Format empty
	Format string      // "svg", "png" or "md" (case-insensitive). If empty, inferred from Path.
	Title  string      // Optional title rendered in the header
	Frame  chart.Frame // Frame to render
	Width  int         // Image width in pixels, default 1200
	Height int         // Image height in pixels, default 800
}

// ResolveFormat returns the output format and path, inferring the format
// from the extension and appending ".png" to extensionless paths.
func ResolveFormat(path, format string) (string, string, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		case ".md", ".markdown":
			format = "md"
		default:
			format = "png"
			if path != "" && filepath.Ext(path) == "" {
				path += ".png"
			}
		}
	}
	switch format {
	case "svg", "png", "md":
	case "markdown":
		format = "md"
	default:
		return "", path, fmt.Errorf("unsupported format %q (want svg, png or md)", format)
	}
	if path == "" {
		return "", path, fmt.Errorf("output path is required")
	}
	return format, path, nil
}

// SaveSnapshot renders opts.Frame to opts.Path and returns the path written.
func SaveSnapshot(opts SnapshotOptions) (string, error) {
	defer metrics.Timer(metrics.SnapshotSave)()
	defer debug.LogEnterExit("SaveSnapshot")()

	format, path, err := ResolveFormat(opts.Path, opts.Format)
	if err != nil {
		return "", err
	}
	opts.Path = path

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return "", fmt.Errorf("create parent dir: %w", err)
	}

	l := newLayout(opts)
	switch format {
	case "md":
		err = SaveReport(opts.Frame, opts.Title, opts.Path)
	case "svg":
		err = renderSVG(opts, l)
	default:
		err = renderPNG(opts, l)
	}
	if err != nil {
		return "", err
	}
	return opts.Path, nil
}

// --- layout ----------------------------------------------------------------

const (
	defaultWidth  = 1200
	defaultHeight = 800
	headerHeight  = 70.0
	marginLeft    = 80.0
	marginRight   = 200.0 // legend column
	marginBottom  = 50.0
	padding       = 16.0
	lineHeight    = 14.0
)

type layout struct {
	Width, Height int
	// Plot rectangle in pixels.
	Left, Top, Right, Bottom float64
	X, Y                     scale.Bounds
	Title                    string
}

func newLayout(opts SnapshotOptions) layout {
	w, h := opts.Width, opts.Height
	if w < 400 {
		w = defaultWidth
	}
	if h < 300 {
		h = defaultHeight
	}
	title := opts.Title
	if strings.TrimSpace(title) == "" {
		title = "Jamming plan"
	}
	return layout{
		Width:  w,
		Height: h,
		Left:   marginLeft,
		Top:    headerHeight + padding,
		Right:  float64(w) - marginRight,
		Bottom: float64(h) - marginBottom,
		X:      opts.Frame.XAxis.Bounds,
		Y:      opts.Frame.YAxis.Bounds,
		Title:  title,
	}
}

// px maps a plot-space point to pixels, time growing upwards.
func (l layout) px(p geometry.Point) (float64, float64) {
	fx := 0.0
	if w := l.X.Width(); w > 0 {
		fx = (p.X - l.X.Min) / w
	}
	fy := 0.0
	if h := l.Y.Width(); h > 0 {
		fy = (p.Y - l.Y.Min) / h
	}
	return l.Left + fx*(l.Right-l.Left), l.Bottom - fy*(l.Bottom-l.Top)
}

func (l layout) polygon(poly geometry.Polygon) (xs, ys []float64) {
	xs = make([]float64, len(poly))
	ys = make([]float64, len(poly))
	for i, p := range poly {
		xs[i], ys[i] = l.px(p)
	}
	return xs, ys
}

func summaryLines(f chart.Frame) []string {
	zoom := "all bands"
	if f.ZoomBand != nil {
		zoom = model.Bands()[*f.ZoomBand].Label()
	}
	return []string{
		fmt.Sprintf("scale: %s  view: %s", f.Mode, zoom),
		fmt.Sprintf("tasks: %d  updates: %d", f.TaskCount, f.Applied),
	}
}

// --- rendering -------------------------------------------------------------

var (
	colorBackdrop = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorHeaderBG = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
	colorPlotBG   = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorGrid     = color.RGBA{0xe5, 0xe7, 0xeb, 0xff}
	colorAxis     = color.RGBA{0x22, 0x22, 0x22, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
	colorLimit    = color.RGBA{0xd3, 0x2f, 0x2f, 0xff}
)

// taskAlpha is the fill opacity of task rectangles.
const taskAlpha = 0xb4

// nrgba reinterprets a straight-alpha RGBA value.
func nrgba(c color.RGBA) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func withAlpha(c color.RGBA, a uint8) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: a}
}

func renderPNG(opts SnapshotOptions, l layout) error {
	dc := gg.NewContext(l.Width, l.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	// header
	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(padding, padding, float64(l.Width)-2*padding, headerHeight-padding, 10)
	dc.Fill()
	dc.SetColor(colorText)
	dc.DrawStringAnchored(l.Title, 32, 30, 0, 0.5)
	dc.SetColor(colorSubtle)
	for i, line := range summaryLines(opts.Frame) {
		dc.DrawStringAnchored(line, 32, 46+float64(i)*lineHeight, 0, 0.5)
	}

	// plot background and grid
	dc.SetColor(colorPlotBG)
	dc.DrawRectangle(l.Left, l.Top, l.Right-l.Left, l.Bottom-l.Top)
	dc.Fill()
	drawGridPNG(dc, opts.Frame, l)

	dc.DrawRectangle(l.Left, l.Top, l.Right-l.Left, l.Bottom-l.Top)
	dc.Clip()

	for _, z := range opts.Frame.Zones {
		xs, ys := l.polygon(z.Area)
		tracePolygon(dc, xs, ys)
		if z.Fill.A > 0 {
			dc.SetColor(nrgba(z.Fill))
			dc.FillPreserve()
		}
		dc.SetColor(nrgba(z.Stroke.Color))
		dc.SetLineWidth(max(z.Stroke.Width, 0.5))
		dc.Stroke()
		if z.Label != nil {
			x, y := l.px(z.Label.Anchor)
			dc.SetColor(nrgba(z.Label.Color))
			for i, line := range strings.Split(z.Label.Text, "\n") {
				dc.DrawStringAnchored(line, x, y+float64(i)*lineHeight, 0.5, 0.5)
			}
		}
	}

	for _, ts := range opts.Frame.Tasks {
		xs, ys := l.polygon(ts.Area)
		tracePolygon(dc, xs, ys)
		dc.SetColor(withAlpha(ts.Fill, taskAlpha))
		dc.FillPreserve()
		dc.SetColor(nrgba(ts.Fill))
		dc.SetLineWidth(1.5)
		dc.Stroke()
		x, y := l.px(ts.Area[3])
		dc.SetColor(colorText)
		dc.DrawStringAnchored(ts.Task.Name, x+4, y+lineHeight, 0, 0.5)
	}

	from, to := opts.Frame.TimeLimit()
	x1, y1 := l.px(from)
	x2, y2 := l.px(to)
	dc.SetColor(colorLimit)
	dc.SetLineWidth(1)
	dc.DrawLine(x1, y1, x2, y2)
	dc.Stroke()

	dc.ResetClip()
	dc.SetColor(colorAxis)
	dc.DrawRectangle(l.Left, l.Top, l.Right-l.Left, l.Bottom-l.Top)
	dc.Stroke()

	drawLegendPNG(dc, l)
	return dc.SavePNG(opts.Path)
}

func tracePolygon(dc *gg.Context, xs, ys []float64) {
	dc.NewSubPath()
	for i := range xs {
		if i == 0 {
			dc.MoveTo(xs[i], ys[i])
			continue
		}
		dc.LineTo(xs[i], ys[i])
	}
	dc.ClosePath()
}

func drawGridPNG(dc *gg.Context, f chart.Frame, l layout) {
	dc.SetLineWidth(1)
	for i, tick := range f.XAxis.Ticks {
		x, _ := l.px(geometry.Point{X: tick, Y: l.Y.Min})
		dc.SetColor(colorGrid)
		dc.DrawLine(x, l.Top, x, l.Bottom)
		dc.Stroke()
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored(f.XAxis.Labels()[i], x, l.Bottom+14, 0.5, 0.5)
	}
	for i, tick := range f.YAxis.Ticks {
		_, y := l.px(geometry.Point{X: l.X.Min, Y: tick})
		dc.SetColor(colorGrid)
		dc.DrawLine(l.Left, y, l.Right, y)
		dc.Stroke()
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored(f.YAxis.Labels()[i], l.Left-8, y, 1, 0.5)
	}
	dc.SetColor(colorText)
	dc.DrawStringAnchored(f.XAxis.Name, (l.Left+l.Right)/2, l.Bottom+34, 0.5, 0.5)
}

func drawLegendPNG(dc *gg.Context, l layout) {
	x := l.Right + 20
	y := l.Top + 10
	dc.SetColor(colorText)
	dc.DrawStringAnchored("Amplifiers", x, y, 0, 0.5)
	for i, b := range model.Bands() {
		row := y + 20 + float64(i)*18
		dc.SetColor(nrgba(b.Color()))
		dc.DrawRoundedRectangle(x, row-7, 14, 14, 3)
		dc.Fill()
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored(b.String(), x+20, row, 0, 0.5)
	}
}

func renderSVG(opts SnapshotOptions, l layout) error {
	file, err := os.Create(opts.Path)
	if err != nil {
		return err
	}
	defer file.Close()

	return renderSVGToWriter(file, opts.Frame, l)
}

func renderSVGToWriter(w io.Writer, f chart.Frame, l layout) error {
	canvas := svg.New(w)
	canvas.Start(l.Width, l.Height)
	canvas.Rect(0, 0, l.Width, l.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Roundrect(int(padding), int(padding), l.Width-2*int(padding), int(headerHeight-padding), 10, 10, fmt.Sprintf("fill:%s", css(colorHeaderBG)))
	canvas.Text(32, 34, l.Title, fmt.Sprintf("fill:%s;font-size:16px;font-family:monospace;font-weight:bold", css(colorText)))
	for i, line := range summaryLines(f) {
		canvas.Text(32, 50+i*int(lineHeight), line, fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))
	}

	left, top := int(l.Left), int(l.Top)
	pw, ph := int(l.Right-l.Left), int(l.Bottom-l.Top)
	canvas.Rect(left, top, pw, ph, fmt.Sprintf("fill:%s", css(colorPlotBG)))

	for i, tick := range f.XAxis.Ticks {
		x, _ := l.px(geometry.Point{X: tick, Y: l.Y.Min})
		canvas.Line(int(x), top, int(x), top+ph, fmt.Sprintf("stroke:%s;stroke-width:1", css(colorGrid)))
		canvas.Text(int(x), top+ph+16, f.XAxis.Labels()[i], fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace;text-anchor:middle", css(colorSubtle)))
	}
	for i, tick := range f.YAxis.Ticks {
		_, y := l.px(geometry.Point{X: l.X.Min, Y: tick})
		canvas.Line(left, int(y), left+pw, int(y), fmt.Sprintf("stroke:%s;stroke-width:1", css(colorGrid)))
		canvas.Text(left-8, int(y)+4, f.YAxis.Labels()[i], fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace;text-anchor:end", css(colorSubtle)))
	}
	canvas.Text(left+pw/2, top+ph+36, f.XAxis.Name, fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace;text-anchor:middle", css(colorText)))

	canvas.Def()
	canvas.ClipPath(`id="plot"`)
	canvas.Rect(left, top, pw, ph)
	canvas.ClipEnd()
	canvas.DefEnd()
	canvas.Group(`clip-path="url(#plot)"`)

	for _, z := range f.Zones {
		xs, ys := l.polygon(z.Area)
		fill := "none"
		if z.Fill.A > 0 {
			fill = fmt.Sprintf("%s;fill-opacity:%.2f", css(z.Fill), float64(z.Fill.A)/255)
		}
		canvas.Polygon(ints(xs), ints(ys), fmt.Sprintf("fill:%s;stroke:%s;stroke-width:%.1f",
			fill, css(z.Stroke.Color), max(z.Stroke.Width, 0.5)))
		if z.Label != nil {
			x, y := l.px(z.Label.Anchor)
			for i, line := range strings.Split(z.Label.Text, "\n") {
				canvas.Text(int(x), int(y)+i*int(lineHeight), line,
					fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace;text-anchor:middle", css(z.Label.Color)))
			}
		}
	}

	for _, ts := range f.Tasks {
		xs, ys := l.polygon(ts.Area)
		canvas.Polygon(ints(xs), ints(ys), fmt.Sprintf("fill:%s;fill-opacity:%.2f;stroke:%s;stroke-width:1.5",
			css(ts.Fill), float64(taskAlpha)/255, css(ts.Fill)))
		canvas.Text(int(xs[3])+4, int(ys[3]+lineHeight), ts.Task.Name,
			fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorText)))
	}

	from, to := f.TimeLimit()
	x1, y1 := l.px(from)
	x2, y2 := l.px(to)
	canvas.Line(int(x1), int(y1), int(x2), int(y2), fmt.Sprintf("stroke:%s;stroke-width:1", css(colorLimit)))
	canvas.Gend()

	canvas.Rect(left, top, pw, ph, fmt.Sprintf("fill:none;stroke:%s;stroke-width:1", css(colorAxis)))

	lx, ly := int(l.Right)+20, top+10
	canvas.Text(lx, ly+4, "Amplifiers", fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace;font-weight:bold", css(colorText)))
	for i, b := range model.Bands() {
		row := ly + 20 + i*18
		canvas.Roundrect(lx, row-7, 14, 14, 3, 3, fmt.Sprintf("fill:%s", css(b.Color())))
		canvas.Text(lx+20, row+4, b.String(), fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))
	}

	canvas.End()
	return nil
}

// --- helpers ---------------------------------------------------------------

func ints(v []float64) []int {
	out := make([]int, len(v))
	for i, f := range v {
		out[i] = int(f + 0.5)
	}
	return out
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
