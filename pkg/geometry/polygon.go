// Package geometry builds the plot-space shapes of the chart (background
// zones and task rectangles) and resolves pointer hover against them.
package geometry

import (
	"github.com/vanderheijden86/jamgantt/pkg/model"
	"github.com/vanderheijden86/jamgantt/pkg/scale"
)

// Epsilon is added to the edge slope denominator in ContainsPoint so that a
// horizontal edge at exactly y never divides by zero.
const Epsilon = 2.220446049250313e-16

// Point is an (x, y) pair; x is frequency (or its plot projection), y is time.
type Point struct {
	X float64
	Y float64
}

// Polygon is an ordered list of vertices describing a simple closed shape.
type Polygon []Point

// ContainsPoint applies the even-odd ray casting rule. The polygon must have
// at least three vertices; this is not checked.
func ContainsPoint(poly Polygon, x, y float64) bool {
	inside := false
	n := len(poly)
	j := n - 1
	for i := 0; i < n; i++ {
		xi, yi := poly[i].X, poly[i].Y
		xj, yj := poly[j].X, poly[j].Y
		if (yi > y) != (yj > y) &&
			x < (xj-xi)*(y-yi)/(yj-yi+Epsilon)+xi {
			inside = !inside
		}
		j = i
	}
	return inside
}

// Project applies scale.ToPlotX to every vertex, leaving Y unchanged.
func (p Polygon) Project(mode scale.Mode) Polygon {
	out := make(Polygon, len(p))
	for i, v := range p {
		out[i] = Point{X: scale.ToPlotX(v.X, mode), Y: v.Y}
	}
	return out
}

// BoundingBox returns the extent of the polygon on both axes.
func (p Polygon) BoundingBox() (x, y scale.Bounds) {
	if len(p) == 0 {
		return x, y
	}
	x = scale.Bounds{Min: p[0].X, Max: p[0].X}
	y = scale.Bounds{Min: p[0].Y, Max: p[0].Y}
	for _, v := range p[1:] {
		x.Min = min(x.Min, v.X)
		x.Max = max(x.Max, v.X)
		y.Min = min(y.Min, v.Y)
		y.Max = max(y.Max, v.Y)
	}
	return x, y
}

// TaskPolygon returns the task's rectangle in plot space: always four vertices
// in the order (start,start), (end,start), (end,end), (start,end).
func TaskPolygon(t model.Task, mode scale.Mode) Polygon {
	x0 := scale.ToPlotX(t.FreqStart, mode)
	x1 := scale.ToPlotX(t.FreqEnd, mode)
	return Polygon{
		{X: x0, Y: t.TimeStart},
		{X: x1, Y: t.TimeStart},
		{X: x1, Y: t.TimeEnd},
		{X: x0, Y: t.TimeEnd},
	}
}
