package geometry

import (
	"fmt"

	"github.com/vanderheijden86/jamgantt/pkg/model"
	"github.com/vanderheijden86/jamgantt/pkg/scale"
)

// Hover is the result of resolving a pointer position.
type Hover struct {
	// Task is the first task (in stored order) under the pointer, if any.
	Task *model.Task
	// Zones lists every zone under the pointer when no task matched.
	Zones []string
	// Readout is the pointer position in MHz and ms, always set.
	Readout string
	// Freq and Time are the pointer position in domain units.
	Freq float64
	Time float64
}

// ResolveHover finds what lies under the plot-space pointer (px, py).
// Tasks take precedence and at most one is reported; zones are only
// consulted when no task matched. zones must be in domain units
// (see BackgroundZones), since the pointer X is converted back to MHz first.
func ResolveHover(px, py float64, mode scale.Mode, tasks []model.Task, zones []Zone) Hover {
	freq := scale.FromPlotX(px, mode)
	h := Hover{
		Freq:    freq,
		Time:    py,
		Readout: fmt.Sprintf("%.1f MHz\n%.1f ms", freq, py),
	}

	for i := range tasks {
		if tasks[i].Contains(freq, py) {
			task := tasks[i]
			h.Task = &task
			return h
		}
	}

	for _, z := range zones {
		if z.Contains(freq, py) {
			h.Zones = append(h.Zones, z.Name())
		}
	}
	return h
}
