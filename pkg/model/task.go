package model

import (
	"errors"
	"fmt"
	"image/color"
)

// ErrInvalidTask wraps every validation failure returned by Task.Validate.
var ErrInvalidTask = errors.New("invalid task")

// Task is a scheduled item occupying a frequency sub-range for a time interval.
type Task struct {
	Name      string  `json:"name" yaml:"name"`
	FreqStart float64 `json:"freq_start" yaml:"freq_start"` // MHz
	FreqEnd   float64 `json:"freq_end" yaml:"freq_end"`     // MHz
	TimeStart float64 `json:"time_start" yaml:"time_start"` // ms
	TimeEnd   float64 `json:"time_end" yaml:"time_end"`     // ms
	Band      Band    `json:"band" yaml:"band"`
}

// Color returns the task's display color, taken from its band.
func (t Task) Color() color.RGBA {
	return t.Band.Color()
}

// Validate checks the ordering and range invariants of the task.
func (t Task) Validate() error {
	switch {
	case t.Name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidTask)
	case !t.Band.Valid():
		return fmt.Errorf("%w: %q has unknown band %d", ErrInvalidTask, t.Name, int(t.Band))
	case t.FreqStart > t.FreqEnd:
		return fmt.Errorf("%w: %q freq_start %.1f > freq_end %.1f", ErrInvalidTask, t.Name, t.FreqStart, t.FreqEnd)
	case t.TimeStart > t.TimeEnd:
		return fmt.Errorf("%w: %q time_start %.1f > time_end %.1f", ErrInvalidTask, t.Name, t.TimeStart, t.TimeEnd)
	case t.FreqStart < FreqMin || t.FreqEnd > FreqMax:
		return fmt.Errorf("%w: %q frequency outside [%.0f, %.0f] MHz", ErrInvalidTask, t.Name, FreqMin, FreqMax)
	case t.TimeStart < 0 || t.TimeEnd > TimeMax:
		return fmt.Errorf("%w: %q time outside [0, %.0f] ms", ErrInvalidTask, t.Name, TimeMax)
	}
	return nil
}

// Contains reports whether (freq, time) lies in the task's closed rectangle.
func (t Task) Contains(freq, time float64) bool {
	return freq >= t.FreqStart && freq <= t.FreqEnd &&
		time >= t.TimeStart && time <= t.TimeEnd
}

// Describe renders the tooltip body shown when the task is hovered.
func (t Task) Describe() string {
	return fmt.Sprintf("Amplifier: %s\nΔf: %.0fMHz\nΔt: %.0fms\ntmin: %.0fms\ntmax: %.0fms\nfmin: %.0fMHz\nfmax: %.0fMHz",
		t.Band,
		t.FreqEnd-t.FreqStart,
		t.TimeEnd-t.TimeStart,
		t.TimeStart, t.TimeEnd,
		t.FreqStart, t.FreqEnd,
	)
}
