package chart

import (
	"image/color"

	"github.com/vanderheijden86/jamgantt/pkg/geometry"
	"github.com/vanderheijden86/jamgantt/pkg/model"
	"github.com/vanderheijden86/jamgantt/pkg/scale"
)

const (
	maxXTicks = 10
	maxYTicks = 12

	// timeAxisMax leaves room above TimeMax for the band zone labels.
	timeAxisMax = 1200.0
)

// TimeAxisBounds is the displayed time range.
func TimeAxisBounds() scale.Bounds {
	return scale.Bounds{Min: 0, Max: timeAxisMax}
}

// TaskShape is a task with its plot-space polygon.
type TaskShape struct {
	Task model.Task
	Area geometry.Polygon
	Fill color.RGBA
}

// Axis describes one plot axis for the renderer.
type Axis struct {
	Name   string
	Bounds scale.Bounds
	Format func(float64) string
	Ticks  []float64
}

// Labels formats every tick.
func (a Axis) Labels() []string {
	out := make([]string, len(a.Ticks))
	for i, t := range a.Ticks {
		out[i] = a.Format(t)
	}
	return out
}

// Frame is everything a renderer needs for one tick. Zones are shared with
// the session's cache and must not be modified.
type Frame struct {
	Mode  scale.Mode
	Zones []geometry.Zone
	Tasks []TaskShape
	XAxis Axis
	YAxis Axis

	// ForcedBounds, when set, must replace the renderer's X range this frame.
	ForcedBounds *scale.Bounds
	// Hover is set when FrameInput.Pointer was.
	Hover *geometry.Hover
	// ZoomBand is the zoomed band index, if any.
	ZoomBand *int

	TaskCount        int
	Applied          uint64
	LastApplied      string
	FeedDisconnected bool
}

// TimeLimit is the horizontal marker drawn at TimeMax across the domain.
func (f Frame) TimeLimit() (from, to geometry.Point) {
	d := scale.DomainBounds(f.Mode)
	return geometry.Point{X: d.Min, Y: model.TimeMax}, geometry.Point{X: d.Max, Y: model.TimeMax}
}
