package geometry

import (
	"image/color"
	"strings"

	"github.com/vanderheijden86/jamgantt/pkg/model"
	"github.com/vanderheijden86/jamgantt/pkg/scale"
)

// ZoneKind distinguishes the receiver zone from the amplifier band zones.
type ZoneKind int

const (
	RxZone ZoneKind = iota
	BandZone
)

// Zone heights, in ms.
const (
	rxZoneHeight   = 100.0
	bandZoneHeight = 1100.0
	// The 960-1215 band overlaps two neighbours, so it is drawn slightly
	// taller with its label above the others.
	raisedZoneExtra  = 25.0
	raisedLabelExtra = 50.0
)

// Stroke is an outline style.
type Stroke struct {
	Width float64
	Color color.RGBA
}

// ZoneLabel is text anchored inside a zone.
type ZoneLabel struct {
	Text   string
	Anchor Point
	Color  color.RGBA
}

// Zone is a static background polygon. Area and the label anchor are in
// domain units (MHz, ms) unless the zone was returned by ZoneSet.
type Zone struct {
	Kind   ZoneKind
	Band   model.Band // meaningful when Kind == BandZone
	Area   Polygon
	Stroke Stroke
	Fill   color.RGBA
	Label  *ZoneLabel
}

// Name returns the hover name of the zone.
func (z Zone) Name() string {
	if z.Kind == RxZone {
		return "Receiver zone"
	}
	return z.Band.Label()
}

// Contains tests (x, y) against the zone's area.
func (z Zone) Contains(x, y float64) bool {
	return ContainsPoint(z.Area, x, y)
}

// BackgroundZones builds the receiver zone followed by one outline zone per
// band, in catalogue order.
func BackgroundZones() []Zone {
	zones := make([]Zone, 0, 1+model.BandCount())
	zones = append(zones, Zone{
		Kind: RxZone,
		Area: Polygon{
			{X: model.FreqMin, Y: 0},
			{X: model.FreqMax, Y: 0},
			{X: model.FreqMax, Y: rxZoneHeight},
			{X: model.FreqMin, Y: rxZoneHeight},
		},
		Stroke: Stroke{Width: 0.1, Color: color.RGBA{100, 100, 100, 0xff}},
		Fill:   color.RGBA{200, 200, 200, 100},
	})

	for _, b := range model.Bands() {
		low, high := b.Range()
		yMax := bandZoneHeight
		labelY := bandZoneHeight - raisedLabelExtra
		if b == model.BandA960To1215 {
			yMax = bandZoneHeight + raisedZoneExtra
			labelY = bandZoneHeight + raisedLabelExtra
		}
		c := b.Color()
		zones = append(zones, Zone{
			Kind: BandZone,
			Band: b,
			Area: Polygon{
				{X: low, Y: 0},
				{X: high, Y: 0},
				{X: high, Y: yMax},
				{X: low, Y: yMax},
			},
			Stroke: Stroke{Width: 1, Color: c},
			Fill:   color.RGBA{},
			Label: &ZoneLabel{
				Text:   strings.ReplaceAll(b.Label(), " ", "\n"),
				Anchor: Point{X: (low + high) / 2, Y: labelY},
				Color:  c,
			},
		})
	}
	return zones
}

// ZonePolygon returns the zone's area in plot space for mode.
func ZonePolygon(z Zone, mode scale.Mode) Polygon {
	return z.Area.Project(mode)
}

// LabelAnchor returns the label anchor in plot space for mode.
func LabelAnchor(z Zone, mode scale.Mode) (Point, bool) {
	if z.Label == nil {
		return Point{}, false
	}
	return Point{X: scale.ToPlotX(z.Label.Anchor.X, mode), Y: z.Label.Anchor.Y}, true
}

// ZoneSet returns BackgroundZones projected into plot space for mode.
func ZoneSet(mode scale.Mode) []Zone {
	zones := BackgroundZones()
	for i := range zones {
		zones[i].Area = ZonePolygon(zones[i], mode)
		if anchor, ok := LabelAnchor(zones[i], mode); ok {
			label := *zones[i].Label
			label.Anchor = anchor
			zones[i].Label = &label
		}
	}
	return zones
}
